// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		eventType string
		pattern   string
		want      bool
	}{
		{EventLaunchProgress, EventLaunchProgress, true},
		{EventLaunchProgress, "launch.*", true},
		{EventLaunchProgress, "*", true},
		{EventLaunchProgress, "*.progress", true},
		{EventLaunchProgress, "workspace.*", false},
		{"launcher.progress", "launch.*", false},
		{EventLaunchOutcome, "launch.outcome, launch.failed", true},
		{EventLaunchFailed, "launch.outcome,launch.failed", true},
		{EventLaunchStarted, "launch.outcome,launch.failed", false},
		{EventWorkspaceDeleted, "launch.*,*.deleted", true},
		{"", "*", false},
	}

	for _, tt := range tests {
		t.Run(tt.eventType+"~"+tt.pattern, func(t *testing.T) {
			p, err := ParsePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Match(tt.eventType))
		})
	}
}

func TestParsePattern_Invalid(t *testing.T) {
	for _, s := range []string{"", "launch.*,", "la*nch.progress", "*.*.x", "launch.**"} {
		_, err := ParsePattern(s)
		assert.ErrorIs(t, err, ErrInvalidPattern, s)
	}
}

func TestPattern_String(t *testing.T) {
	assert.Equal(t, "launch.*", MustParsePattern("launch.*").String())
	assert.Panics(t, func() { MustParsePattern("") })
}
