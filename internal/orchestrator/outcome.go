// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"fmt"

	"github.com/ruangustavo/workspace-launcher/internal/launcher"
)

// Kind classifies a finished launch.
type Kind string

const (
	KindFullSuccess    Kind = "full_success"
	KindPartialFailure Kind = "partial_failure"
	KindTotalFailure   Kind = "total_failure"
)

// Outcome summarizes the results of one launch attempt.
type Outcome struct {
	AttemptID   string            `json:"attempt_id"`
	WorkspaceID string            `json:"workspace_id"`
	Kind        Kind              `json:"kind"`
	Total       int               `json:"total"`
	Failed      int               `json:"failed"`
	Succeeded   []string          `json:"succeeded"`
	Results     []launcher.Result `json:"results"`
}

func newOutcome(attemptID, workspaceID string, results []launcher.Result) *Outcome {
	o := &Outcome{
		AttemptID:   attemptID,
		WorkspaceID: workspaceID,
		Total:       len(results),
		Succeeded:   []string{},
		Results:     append([]launcher.Result{}, results...),
	}
	for _, r := range results {
		if r.Success {
			o.Succeeded = append(o.Succeeded, r.AppID)
		} else {
			o.Failed++
		}
	}
	switch {
	case o.Total > 0 && o.Failed == 0:
		o.Kind = KindFullSuccess
	case len(o.Succeeded) > 0:
		o.Kind = KindPartialFailure
	default:
		o.Kind = KindTotalFailure
	}
	return o
}

// Message is a one-line human summary.
func (o *Outcome) Message(name string) string {
	switch o.Kind {
	case KindFullSuccess:
		return fmt.Sprintf("%s launched successfully", name)
	case KindPartialFailure:
		return fmt.Sprintf("%s launched with %d of %d apps failing", name, o.Failed, o.Total)
	default:
		return fmt.Sprintf("%s failed to launch", name)
	}
}
