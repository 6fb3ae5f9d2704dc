// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruangustavo/workspace-launcher/internal/events"
	"github.com/ruangustavo/workspace-launcher/internal/launcher"
	"github.com/ruangustavo/workspace-launcher/internal/plan"
	"github.com/ruangustavo/workspace-launcher/internal/status"
	"github.com/ruangustavo/workspace-launcher/internal/workspace"
)

type fakeSource map[string]*workspace.Workspace

func (s fakeSource) Get(id string) (*workspace.Workspace, error) {
	ws, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", workspace.ErrNotFound, id)
	}
	return ws.Clone(), nil
}

// fakeLauncher records batches; tests publish the launcher's events by hand.
type fakeLauncher struct {
	mu      sync.Mutex
	err     error
	batches []launcher.LaunchBatch
}

func (l *fakeLauncher) LaunchApps(ctx context.Context, batch launcher.LaunchBatch) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.batches = append(l.batches, batch)
	return nil
}

func (l *fakeLauncher) last(t *testing.T) launcher.LaunchBatch {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	require.NotEmpty(t, l.batches)
	return l.batches[len(l.batches)-1]
}

type harness struct {
	bus      *events.MemoryEventBus
	tracker  *status.Tracker
	launcher *fakeLauncher
	orch     *Orchestrator
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	bus := events.NewMemoryEventBus(events.MemoryBusConfig{})
	t.Cleanup(func() { bus.Close() })

	src := fakeSource{
		"dev": {ID: "dev", Name: "Dev", Apps: []workspace.App{
			{ID: "a", Name: "Editor", Path: "/a"},
			{ID: "b", Name: "Browser", Path: "/b"},
			{ID: "c", Name: "Chat", Path: "/c"},
		}},
		"empty": {ID: "empty", Name: "Empty"},
	}
	h := &harness{bus: bus, tracker: status.NewTracker(), launcher: &fakeLauncher{}}
	h.orch = New(src, h.tracker, h.launcher, bus, cfg)
	return h
}

func (h *harness) progress(t *testing.T, attemptID string, current int, name string) {
	t.Helper()
	require.NoError(t, h.bus.Publish(context.Background(), launcher.Progress{
		AttemptID: attemptID, WorkspaceID: "dev", Current: current, Total: 3, AppName: name,
	}.Event()))
}

func (h *harness) complete(t *testing.T, attemptID string, results ...launcher.Result) {
	t.Helper()
	require.NoError(t, h.bus.Publish(context.Background(), launcher.Completion{
		AttemptID: attemptID, WorkspaceID: "dev", Results: results,
	}.Event()))
}

func ok(id string) launcher.Result   { return launcher.Result{AppID: id, Success: true} }
func fail(id string) launcher.Result { return launcher.Result{AppID: id, Error: "application not found"} }

func waitAttempt(t *testing.T, a *Attempt) (*Outcome, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return a.Wait(ctx)
}

func TestLaunch_FullSuccess(t *testing.T) {
	h := newHarness(t, Config{})

	a, err := h.orch.Launch(context.Background(), "dev")
	require.NoError(t, err)

	st := h.tracker.Get("dev")
	assert.True(t, st.IsRunning)
	assert.Empty(t, st.RunningApps)
	assert.Equal(t, &status.LaunchProgress{Total: 3, Completed: 0, Current: "Editor"}, st.LaunchProgress)

	batch := h.launcher.last(t)
	assert.Equal(t, a.ID(), batch.AttemptID)
	assert.Equal(t, "dev", batch.WorkspaceID)
	assert.Len(t, batch.Requests, 3)

	h.progress(t, a.ID(), 0, "Editor")
	h.progress(t, a.ID(), 1, "Browser")
	st = h.tracker.Get("dev")
	assert.Equal(t, &status.LaunchProgress{Total: 3, Completed: 1, Current: "Browser"}, st.LaunchProgress)

	h.complete(t, a.ID(), ok("a"), ok("b"), ok("c"))

	outcome, err := waitAttempt(t, a)
	require.NoError(t, err)
	assert.Equal(t, KindFullSuccess, outcome.Kind)
	assert.Equal(t, 0, outcome.Failed)

	st = h.tracker.Get("dev")
	assert.True(t, st.IsRunning)
	assert.Equal(t, []string{"a", "b", "c"}, st.RunningApps)
	assert.Nil(t, st.LaunchProgress)
	assert.Empty(t, h.orch.Active())
}

func TestLaunch_PartialFailure(t *testing.T) {
	h := newHarness(t, Config{})

	a, err := h.orch.Launch(context.Background(), "dev")
	require.NoError(t, err)
	h.complete(t, a.ID(), ok("a"), fail("b"), ok("c"))

	outcome, err := waitAttempt(t, a)
	require.NoError(t, err)
	assert.Equal(t, KindPartialFailure, outcome.Kind)
	assert.Equal(t, 1, outcome.Failed)
	assert.Equal(t, "Dev launched with 1 of 3 apps failing", outcome.Message("Dev"))

	st := h.tracker.Get("dev")
	assert.True(t, st.IsRunning)
	assert.Equal(t, []string{"a", "c"}, st.RunningApps)
}

func TestLaunch_TotalFailure(t *testing.T) {
	h := newHarness(t, Config{})

	a, err := h.orch.Launch(context.Background(), "dev")
	require.NoError(t, err)
	h.complete(t, a.ID(), fail("a"), fail("b"), fail("c"))

	outcome, err := waitAttempt(t, a)
	require.NoError(t, err)
	assert.Equal(t, KindTotalFailure, outcome.Kind)
	assert.Equal(t, 3, outcome.Failed)

	st := h.tracker.Get("dev")
	assert.False(t, st.IsRunning)
	assert.Empty(t, st.RunningApps)
	assert.Nil(t, st.LaunchProgress)

	_, err = h.orch.Launch(context.Background(), "dev")
	assert.NoError(t, err, "a workspace with nothing running can be launched again")
}

func TestLaunch_AlreadyRunning(t *testing.T) {
	h := newHarness(t, Config{})

	a, err := h.orch.Launch(context.Background(), "dev")
	require.NoError(t, err)

	_, err = h.orch.Launch(context.Background(), "dev")
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	h.complete(t, a.ID(), ok("a"), ok("b"), ok("c"))
	_, err = waitAttempt(t, a)
	require.NoError(t, err)

	_, err = h.orch.Launch(context.Background(), "dev")
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestLaunch_ConcurrentCallsOneWins(t *testing.T) {
	h := newHarness(t, Config{})

	var accepted, rejected int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.orch.Launch(context.Background(), "dev")
			switch {
			case err == nil:
				atomic.AddInt32(&accepted, 1)
			case errors.Is(err, ErrAlreadyRunning):
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted)
	assert.Equal(t, int32(9), rejected)
}

func TestLaunch_NotFoundLeavesStatusAlone(t *testing.T) {
	h := newHarness(t, Config{})

	_, err := h.orch.Launch(context.Background(), "missing")
	assert.ErrorIs(t, err, workspace.ErrNotFound)
	assert.Empty(t, h.tracker.List())
}

func TestLaunch_EmptyPlanLeavesStatusAlone(t *testing.T) {
	h := newHarness(t, Config{})

	_, err := h.orch.Launch(context.Background(), "empty")
	assert.ErrorIs(t, err, plan.ErrEmptyPlan)
	assert.Empty(t, h.tracker.List())
}

func TestLaunch_DispatchFailure(t *testing.T) {
	h := newHarness(t, Config{})
	h.launcher.err = errors.New("launcher unavailable")

	a, err := h.orch.Launch(context.Background(), "dev")
	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrLaunchDispatchFailed)

	st := h.tracker.Get("dev")
	assert.False(t, st.IsRunning)
	assert.Nil(t, st.LaunchProgress)
	assert.Empty(t, h.orch.Active())

	failed, err := h.bus.History(events.EventFilter{Types: []string{events.EventLaunchFailed}})
	require.NoError(t, err)
	assert.Len(t, failed, 1)
}

func TestLaunch_IgnoresEventsOfOtherAttempts(t *testing.T) {
	h := newHarness(t, Config{})

	a, err := h.orch.Launch(context.Background(), "dev")
	require.NoError(t, err)

	h.progress(t, "someone-else", 2, "Chat")
	h.complete(t, "someone-else", ok("a"))

	st := h.tracker.Get("dev")
	assert.Equal(t, 0, st.LaunchProgress.Completed)
	assert.Empty(t, st.RunningApps)

	select {
	case <-a.Done():
		t.Fatal("attempt resolved by a foreign completion")
	default:
	}
}

func TestLaunch_LateEventsAfterCompletionAreDropped(t *testing.T) {
	h := newHarness(t, Config{})

	a, err := h.orch.Launch(context.Background(), "dev")
	require.NoError(t, err)
	h.complete(t, a.ID(), ok("a"), fail("b"), fail("c"))
	_, err = waitAttempt(t, a)
	require.NoError(t, err)

	h.progress(t, a.ID(), 2, "Chat")
	h.complete(t, a.ID(), ok("a"), ok("b"), ok("c"))

	st := h.tracker.Get("dev")
	assert.Nil(t, st.LaunchProgress)
	assert.Equal(t, []string{"a"}, st.RunningApps)
}

func TestStop_AbandonsAttempt(t *testing.T) {
	h := newHarness(t, Config{})

	a, err := h.orch.Launch(context.Background(), "dev")
	require.NoError(t, err)

	st := h.orch.Stop(context.Background(), "dev")
	assert.False(t, st.IsRunning)
	assert.Nil(t, st.LaunchProgress)

	_, err = waitAttempt(t, a)
	assert.ErrorIs(t, err, ErrAttemptAbandoned)

	h.progress(t, a.ID(), 1, "Browser")
	h.complete(t, a.ID(), ok("a"), ok("b"), ok("c"))
	st = h.tracker.Get("dev")
	assert.False(t, st.IsRunning)
	assert.Nil(t, st.LaunchProgress)

	b, err := h.orch.Launch(context.Background(), "dev")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestStop_IdleWorkspace(t *testing.T) {
	h := newHarness(t, Config{})

	st := h.orch.Stop(context.Background(), "dev")
	assert.False(t, st.IsRunning)

	stopped, err := h.bus.History(events.EventFilter{Types: []string{events.EventWorkspaceStopped}})
	require.NoError(t, err)
	assert.Len(t, stopped, 1)
}

func TestWatchdog_TimesOut(t *testing.T) {
	h := newHarness(t, Config{CompletionTimeout: 30 * time.Millisecond})

	a, err := h.orch.Launch(context.Background(), "dev")
	require.NoError(t, err)

	_, err = waitAttempt(t, a)
	assert.ErrorIs(t, err, ErrLaunchTimedOut)

	st := h.tracker.Get("dev")
	assert.False(t, st.IsRunning)
	assert.Nil(t, st.LaunchProgress)

	h.complete(t, a.ID(), ok("a"), ok("b"), ok("c"))
	assert.False(t, h.tracker.Get("dev").IsRunning)
}

func TestLaunchApp_Single(t *testing.T) {
	h := newHarness(t, Config{})

	a, err := h.orch.LaunchApp(context.Background(), "dev", "b")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Total())

	batch := h.launcher.last(t)
	require.Len(t, batch.Requests, 1)
	assert.Equal(t, "b", batch.Requests[0].AppID)
	assert.False(t, h.tracker.Get("dev").IsRunning, "single launches do not claim the workspace")

	h.complete(t, a.ID(), ok("b"))
	outcome, err := waitAttempt(t, a)
	require.NoError(t, err)
	assert.Equal(t, KindFullSuccess, outcome.Kind)

	st := h.tracker.Get("dev")
	assert.True(t, st.IsRunning)
	assert.Equal(t, []string{"b"}, st.RunningApps)

	_, err = h.orch.LaunchApp(context.Background(), "dev", "zzz")
	assert.ErrorIs(t, err, ErrAppNotFound)
	assert.ErrorIs(t, err, workspace.ErrNotFound)
}

func TestPrune(t *testing.T) {
	h := newHarness(t, Config{})

	a, err := h.orch.Launch(context.Background(), "dev")
	require.NoError(t, err)

	h.orch.Prune("dev")
	_, err = waitAttempt(t, a)
	assert.ErrorIs(t, err, ErrAttemptAbandoned)

	h.complete(t, a.ID(), ok("a"))
	assert.Empty(t, h.tracker.List())
}

func TestLaunchAndWait_WithExecLauncher(t *testing.T) {
	bus := events.NewMemoryEventBus(events.MemoryBusConfig{})
	defer bus.Close()

	var started []string
	var mu sync.Mutex
	l := launcher.NewExecLauncher(bus, launcher.WithStartFunc(func(req plan.LaunchRequest) error {
		mu.Lock()
		defer mu.Unlock()
		started = append(started, req.AppID)
		if req.AppID == "b" {
			return errors.New("application not found: /b")
		}
		return nil
	}))
	defer l.Close()

	src := fakeSource{"dev": {ID: "dev", Name: "Dev", Apps: []workspace.App{
		{ID: "a", Name: "Editor", Path: "/a"},
		{ID: "b", Name: "Browser", Path: "/b"},
	}}}
	tracker := status.NewTracker()
	orch := New(src, tracker, l, bus, Config{CompletionTimeout: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	outcome, err := orch.LaunchAndWait(ctx, "dev")
	require.NoError(t, err)

	assert.Equal(t, KindPartialFailure, outcome.Kind)
	assert.Equal(t, []string{"a"}, outcome.Succeeded)
	assert.Equal(t, []string{"a"}, tracker.Get("dev").RunningApps)

	mu.Lock()
	assert.Equal(t, []string{"a", "b"}, started)
	mu.Unlock()

	history, err := bus.History(events.EventFilter{Types: []string{"launch.*"}, Workspace: "dev"})
	require.NoError(t, err)
	var types []string
	for _, e := range history {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{
		events.EventLaunchStarted,
		events.EventLaunchProgress,
		events.EventLaunchProgress,
		events.EventLaunchComplete,
		events.EventLaunchOutcome,
	}, types)
}

// hookedBus runs onSubscribe once, before the first subscription is made.
type hookedBus struct {
	events.EventBus
	once        sync.Once
	onSubscribe func()
}

func (b *hookedBus) Subscribe(pattern string, handler events.EventHandler) (events.SubscriptionID, error) {
	b.once.Do(b.onSubscribe)
	return b.EventBus.Subscribe(pattern, handler)
}

func TestStop_WhileSubscribingKeepsOneLaunch(t *testing.T) {
	h := newHarness(t, Config{})
	bus := &hookedBus{EventBus: h.bus}
	orch := New(fakeSource{"dev": {ID: "dev", Name: "Dev", Apps: []workspace.App{{ID: "a", Name: "Editor", Path: "/a"}}}},
		h.tracker, h.launcher, bus, Config{})
	bus.onSubscribe = func() { orch.Stop(context.Background(), "dev") }

	a, err := orch.Launch(context.Background(), "dev")
	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrAttemptAbandoned)
	assert.Empty(t, h.launcher.batches)
	assert.Empty(t, orch.Active())
	assert.False(t, h.tracker.Get("dev").IsRunning)

	b, err := orch.Launch(context.Background(), "dev")
	require.NoError(t, err)
	assert.Len(t, h.launcher.batches, 1)
	assert.Len(t, orch.Active(), 1)

	// The abandoned attempt left no subscriptions behind.
	h.complete(t, b.ID(), ok("a"))
	out, err := waitAttempt(t, b)
	require.NoError(t, err)
	assert.Equal(t, KindFullSuccess, out.Kind)
}

func TestStop_UnknownWorkspaceIsNotTracked(t *testing.T) {
	h := newHarness(t, Config{})

	st := h.orch.Stop(context.Background(), "ghost")
	assert.False(t, st.IsRunning)
	assert.Empty(t, h.orch.Statuses())
}
