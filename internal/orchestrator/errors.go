// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"errors"
	"fmt"

	"github.com/ruangustavo/workspace-launcher/internal/workspace"
)

var (
	// ErrAlreadyRunning is returned when the workspace is already running or
	// launching.
	ErrAlreadyRunning = errors.New("workspace is already running")

	// ErrLaunchDispatchFailed is returned when the launcher rejected the batch.
	ErrLaunchDispatchFailed = errors.New("failed to dispatch launch")

	// ErrLaunchTimedOut ends an attempt whose completion never arrived.
	ErrLaunchTimedOut = errors.New("launch did not complete in time")

	// ErrAttemptAbandoned ends an attempt that was stopped, deleted or shut
	// down before its completion arrived.
	ErrAttemptAbandoned = errors.New("launch attempt abandoned")

	// ErrAppNotFound is returned by LaunchApp for an unknown app id.
	ErrAppNotFound = fmt.Errorf("%w: app", workspace.ErrNotFound)
)
