// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/ruangustavo/workspace-launcher/internal/events"
)

// Attempt is a one-shot handle on a dispatched launch. It resolves exactly
// once, on completion, dispatch failure, timeout or abandonment.
type Attempt struct {
	id          string
	workspaceID string
	name        string
	total       int
	single      bool
	startedAt   time.Time

	mu        sync.Mutex
	settled   bool
	completed int
	subs      []events.SubscriptionID
	timer     *time.Timer
	outcome   *Outcome
	err       error
	done      chan struct{}
}

func newAttempt(id, workspaceID, name string, total int) *Attempt {
	return &Attempt{
		id:          id,
		workspaceID: workspaceID,
		name:        name,
		total:       total,
		startedAt:   time.Now(),
		done:        make(chan struct{}),
	}
}

// ID returns the attempt id carried by its launch events.
func (a *Attempt) ID() string { return a.id }

// WorkspaceID returns the launched workspace.
func (a *Attempt) WorkspaceID() string { return a.workspaceID }

// Total is the number of apps in the attempt.
func (a *Attempt) Total() int { return a.total }

// Done is closed when the attempt resolves.
func (a *Attempt) Done() <-chan struct{} { return a.done }

// Wait blocks until the attempt resolves or ctx ends.
func (a *Attempt) Wait(ctx context.Context) (*Outcome, error) {
	select {
	case <-a.done:
		return a.outcome, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// release drops the subscriptions and the watchdog. Caller has settled a.
func (a *Attempt) release(bus events.EventBus) {
	a.mu.Lock()
	subs, timer := a.subs, a.timer
	a.subs, a.timer = nil, nil
	a.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	for _, id := range subs {
		bus.Unsubscribe(id)
	}
}
