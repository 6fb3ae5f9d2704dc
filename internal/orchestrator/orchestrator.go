// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator runs workspace launches: it claims the workspace,
// dispatches its plan to the launcher and folds the launcher's progress and
// completion events into the status tracker.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ruangustavo/workspace-launcher/internal/events"
	"github.com/ruangustavo/workspace-launcher/internal/launcher"
	"github.com/ruangustavo/workspace-launcher/internal/plan"
	"github.com/ruangustavo/workspace-launcher/internal/status"
	"github.com/ruangustavo/workspace-launcher/internal/workspace"
)

// WorkspaceSource looks up workspaces by id.
type WorkspaceSource interface {
	Get(id string) (*workspace.Workspace, error)
}

// Config configures an Orchestrator.
type Config struct {
	// CompletionTimeout ends attempts whose completion never arrives.
	// Zero disables the watchdog.
	CompletionTimeout time.Duration
}

// Orchestrator coordinates launches across workspaces.
type Orchestrator struct {
	workspaces WorkspaceSource
	tracker    *status.Tracker
	launcher   launcher.Launcher
	bus        events.EventBus
	cfg        Config

	mu       sync.Mutex
	attempts map[string]*Attempt // by attempt id
}

// New creates an orchestrator.
func New(workspaces WorkspaceSource, tracker *status.Tracker, l launcher.Launcher, bus events.EventBus, cfg Config) *Orchestrator {
	return &Orchestrator{
		workspaces: workspaces,
		tracker:    tracker,
		launcher:   l,
		bus:        bus,
		cfg:        cfg,
		attempts:   make(map[string]*Attempt),
	}
}

// Launch starts every app of the workspace. It returns once the launcher
// accepted the batch; the attempt resolves when the launcher reports
// completion.
func (o *Orchestrator) Launch(ctx context.Context, workspaceID string) (*Attempt, error) {
	if o.tracker.Get(workspaceID).IsRunning {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, workspaceID)
	}

	ws, err := o.workspaces.Get(workspaceID)
	if err != nil {
		return nil, err
	}
	reqs, err := plan.Build(ws)
	if err != nil {
		return nil, err
	}

	if !o.tracker.TryBeginLaunch(workspaceID, status.LaunchProgress{
		Total:   len(reqs),
		Current: reqs[0].Name,
	}) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, workspaceID)
	}

	a := newAttempt(uuid.NewString(), workspaceID, ws.Name, len(reqs))
	return o.dispatch(ctx, a, reqs)
}

// LaunchApp starts a single app of the workspace. It does not claim the
// workspace; on success the app is added to the running apps.
func (o *Orchestrator) LaunchApp(ctx context.Context, workspaceID, appID string) (*Attempt, error) {
	ws, err := o.workspaces.Get(workspaceID)
	if err != nil {
		return nil, err
	}
	app, ok := ws.App(appID)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrAppNotFound, workspaceID, appID)
	}
	req, err := plan.Request(app)
	if err != nil {
		return nil, err
	}

	a := newAttempt(uuid.NewString(), workspaceID, app.Name, 1)
	a.single = true
	return o.dispatch(ctx, a, []plan.LaunchRequest{req})
}

// LaunchAndWait launches the workspace and blocks until the attempt resolves.
func (o *Orchestrator) LaunchAndWait(ctx context.Context, workspaceID string) (*Outcome, error) {
	a, err := o.Launch(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return a.Wait(ctx)
}

// Stop forgets the launch state of the workspace. Processes that were
// already started keep running and the launcher is not told to stop; an
// in-flight attempt is abandoned and its later events are ignored.
func (o *Orchestrator) Stop(ctx context.Context, workspaceID string) *status.WorkspaceStatus {
	o.abandon(workspaceID)
	st := o.tracker.Reset(workspaceID)

	log.Printf("Orchestrator: %s: stopped", workspaceID)
	o.publish(ctx, events.Event{
		Type:      events.EventWorkspaceStopped,
		Workspace: workspaceID,
		Payload:   map[string]interface{}{"id": workspaceID},
	})
	return st
}

// Prune abandons any attempt for a deleted workspace and drops its status.
func (o *Orchestrator) Prune(workspaceID string) {
	o.abandon(workspaceID)
	o.tracker.Prune(workspaceID)
}

// Status returns the current status of the workspace.
func (o *Orchestrator) Status(workspaceID string) *status.WorkspaceStatus {
	return o.tracker.Get(workspaceID)
}

// Statuses returns every tracked workspace status.
func (o *Orchestrator) Statuses() []*status.WorkspaceStatus {
	return o.tracker.List()
}

// Active returns the unresolved attempts.
func (o *Orchestrator) Active() []*Attempt {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*Attempt, 0, len(o.attempts))
	for _, a := range o.attempts {
		out = append(out, a)
	}
	return out
}

// Close abandons all in-flight attempts.
func (o *Orchestrator) Close() error {
	for _, a := range o.Active() {
		o.settle(a, nil, ErrAttemptAbandoned, o.idlePatch(a))
	}
	return nil
}

func (o *Orchestrator) dispatch(ctx context.Context, a *Attempt, reqs []plan.LaunchRequest) (*Attempt, error) {
	// Registered before subscribing so a concurrent Stop can abandon it.
	o.mu.Lock()
	o.attempts[a.id] = a
	o.mu.Unlock()

	if err := o.watch(a); err != nil {
		err = fmt.Errorf("%w: %w", ErrLaunchDispatchFailed, err)
		o.settle(a, nil, err, o.idlePatch(a))
		return nil, err
	}

	a.mu.Lock()
	abandoned := a.settled
	if !abandoned && o.cfg.CompletionTimeout > 0 {
		a.timer = time.AfterFunc(o.cfg.CompletionTimeout, func() {
			if o.settle(a, nil, ErrLaunchTimedOut, o.idlePatch(a)) {
				log.Printf("Orchestrator: %s: attempt %s timed out after %s", a.workspaceID, a.id, o.cfg.CompletionTimeout)
			}
		})
	}
	a.mu.Unlock()
	if abandoned {
		log.Printf("Orchestrator: %s: attempt %s stopped before dispatch", a.workspaceID, a.id)
		return nil, a.err
	}

	o.publish(ctx, events.Event{
		Type:      events.EventLaunchStarted,
		Workspace: a.workspaceID,
		Payload: map[string]interface{}{
			"attempt_id": a.id,
			"total":      a.total,
			"name":       a.name,
			"single":     a.single,
		},
	})

	err := o.launcher.LaunchApps(ctx, launcher.LaunchBatch{
		AttemptID:   a.id,
		WorkspaceID: a.workspaceID,
		Requests:    reqs,
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrLaunchDispatchFailed, err)
		o.settle(a, nil, err, o.idlePatch(a))
		log.Printf("Orchestrator: %s: %v", a.workspaceID, err)
		return nil, err
	}

	log.Printf("Orchestrator: %s: launch dispatched (%d apps, attempt %s)", a.workspaceID, a.total, a.id)
	return a, nil
}

// watch subscribes to the attempt's progress and completion events.
func (o *Orchestrator) watch(a *Attempt) error {
	progressID, err := o.bus.Subscribe(events.EventLaunchProgress, func(ctx context.Context, e events.Event) error {
		p, ok := launcher.ProgressFromEvent(e)
		if !ok || p.AttemptID != a.id {
			return nil
		}
		o.applyProgress(a, p)
		return nil
	})
	if err != nil {
		return err
	}

	completeID, err := o.bus.Subscribe(events.EventLaunchComplete, func(ctx context.Context, e events.Event) error {
		c, ok := launcher.CompletionFromEvent(e)
		if !ok || c.AttemptID != a.id {
			return nil
		}
		o.complete(ctx, a, c)
		return nil
	})
	if err != nil {
		o.bus.Unsubscribe(progressID)
		return err
	}

	a.mu.Lock()
	settled := a.settled
	if !settled {
		a.subs = []events.SubscriptionID{progressID, completeID}
	}
	a.mu.Unlock()
	if settled {
		o.bus.Unsubscribe(progressID)
		o.bus.Unsubscribe(completeID)
	}
	return nil
}

func (o *Orchestrator) applyProgress(a *Attempt, p launcher.Progress) {
	if a.single {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.settled || p.Current < a.completed {
		return
	}
	a.completed = p.Current
	o.tracker.Update(a.workspaceID, status.Patch{
		LaunchProgress: &status.LaunchProgress{
			Total:     a.total,
			Completed: p.Current,
			Current:   p.AppName,
		},
	})
}

func (o *Orchestrator) complete(ctx context.Context, a *Attempt, c launcher.Completion) {
	outcome := newOutcome(a.id, a.workspaceID, c.Results)

	var patch func()
	if a.single {
		patch = func() {
			if len(outcome.Succeeded) > 0 {
				o.tracker.AddRunningApps(a.workspaceID, outcome.Succeeded...)
			}
		}
	} else {
		running := len(outcome.Succeeded) > 0
		p := status.Patch{
			IsRunning:      &running,
			RunningApps:    outcome.Succeeded,
			SetRunningApps: true,
			ClearProgress:  true,
		}
		patch = func() { o.tracker.Update(a.workspaceID, p) }
	}

	if o.settle(a, outcome, nil, patch) {
		log.Printf("Orchestrator: %s: %s", a.workspaceID, outcome.Message(a.name))
	}
}

// idlePatch resets the workspace unless a is a single-app launch, which
// never claimed it.
func (o *Orchestrator) idlePatch(a *Attempt) func() {
	return func() {
		if !a.single {
			o.tracker.Reset(a.workspaceID)
		}
	}
}

// settle resolves a exactly once. patch runs under the attempt lock so a
// concurrent progress event cannot land after it. It reports whether this
// call resolved the attempt.
func (o *Orchestrator) settle(a *Attempt, outcome *Outcome, err error, patch func()) bool {
	a.mu.Lock()
	if a.settled {
		a.mu.Unlock()
		return false
	}
	a.settled = true
	a.outcome, a.err = outcome, err
	patch()
	a.mu.Unlock()

	a.release(o.bus)

	o.mu.Lock()
	delete(o.attempts, a.id)
	o.mu.Unlock()

	close(a.done)

	ctx := context.Background()
	if err != nil {
		o.publish(ctx, events.Event{
			Type:      events.EventLaunchFailed,
			Workspace: a.workspaceID,
			Payload: map[string]interface{}{
				"attempt_id": a.id,
				"error":      err.Error(),
				"timed_out":  errors.Is(err, ErrLaunchTimedOut),
				"abandoned":  errors.Is(err, ErrAttemptAbandoned),
			},
		})
		return true
	}
	o.publish(ctx, events.Event{
		Type:      events.EventLaunchOutcome,
		Workspace: a.workspaceID,
		Payload: map[string]interface{}{
			"attempt_id": a.id,
			"kind":       string(outcome.Kind),
			"total":      outcome.Total,
			"failed":     outcome.Failed,
			"succeeded":  outcome.Succeeded,
			"message":    outcome.Message(a.name),
		},
	})
	return true
}

// abandon resolves every pending attempt of the workspace.
func (o *Orchestrator) abandon(workspaceID string) {
	for _, a := range o.Active() {
		if a.workspaceID != workspaceID {
			continue
		}
		if o.settle(a, nil, ErrAttemptAbandoned, func() {}) {
			log.Printf("Orchestrator: %s: abandoned attempt %s", workspaceID, a.id)
		}
	}
}

func (o *Orchestrator) publish(ctx context.Context, e events.Event) {
	if err := o.bus.Publish(ctx, e); err != nil {
		log.Printf("Orchestrator: failed to publish %s: %v", e.Type, err)
	}
}
