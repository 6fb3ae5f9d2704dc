// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ruangustavo/workspace-launcher/internal/events"
	"github.com/ruangustavo/workspace-launcher/internal/plan"
)

// StartFunc starts one app without waiting for it to exit.
type StartFunc func(req plan.LaunchRequest) error

// ExecOption configures an ExecLauncher.
type ExecOption func(*ExecLauncher)

// WithStartFunc replaces the process spawner.
func WithStartFunc(fn StartFunc) ExecOption {
	return func(l *ExecLauncher) { l.start = fn }
}

// WithDefaultDelay sets the wait applied before apps that have no delay of
// their own. The first app never waits for the default.
func WithDefaultDelay(d time.Duration) ExecOption {
	return func(l *ExecLauncher) { l.defaultDelay = d }
}

// ExecLauncher starts each app as a detached child process.
type ExecLauncher struct {
	bus          events.Publisher
	start        StartFunc
	defaultDelay time.Duration

	closed atomic.Bool
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewExecLauncher creates a launcher that publishes on bus.
func NewExecLauncher(bus events.Publisher, opts ...ExecOption) *ExecLauncher {
	l := &ExecLauncher{
		bus:    bus,
		start:  startProcess,
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LaunchApps starts the batch in the background and returns immediately.
func (l *ExecLauncher) LaunchApps(ctx context.Context, batch LaunchBatch) error {
	if l.closed.Load() {
		return ErrClosed
	}
	if len(batch.Requests) == 0 {
		return ErrEmptyBatch
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.run(batch)
	}()
	return nil
}

// Close stops waiting on pending delays and waits for running batches to
// publish their completion. Apps that were not started yet are reported as
// failed.
func (l *ExecLauncher) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	close(l.stopCh)
	l.wg.Wait()
	return nil
}

func (l *ExecLauncher) run(batch LaunchBatch) {
	ctx := context.Background()
	total := len(batch.Requests)
	results := make([]Result, 0, total)

	for i, req := range batch.Requests {
		l.publish(ctx, Progress{
			AttemptID:   batch.AttemptID,
			WorkspaceID: batch.WorkspaceID,
			Current:     i,
			Total:       total,
			AppName:     req.Name,
			AppID:       req.AppID,
		}.Event())

		if !l.wait(l.delayFor(i, req)) {
			results = append(results, Result{AppID: req.AppID, Error: "launcher shut down before start"})
			continue
		}

		if err := l.start(req); err != nil {
			log.Printf("Launcher: %s: failed to start %s: %v", batch.WorkspaceID, req.Name, err)
			results = append(results, Result{AppID: req.AppID, Error: err.Error()})
			continue
		}
		log.Printf("Launcher: %s: started %s", batch.WorkspaceID, req.Name)
		results = append(results, Result{AppID: req.AppID, Success: true})
	}

	l.publish(ctx, Completion{
		AttemptID:   batch.AttemptID,
		WorkspaceID: batch.WorkspaceID,
		Results:     results,
	}.Event())
}

func (l *ExecLauncher) delayFor(i int, req plan.LaunchRequest) time.Duration {
	if req.HasDelay() {
		return req.Delay
	}
	if i > 0 {
		return l.defaultDelay
	}
	return 0
}

// wait sleeps for d. It returns false if the launcher closed first.
func (l *ExecLauncher) wait(d time.Duration) bool {
	if d <= 0 {
		select {
		case <-l.stopCh:
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-l.stopCh:
		return false
	}
}

func (l *ExecLauncher) publish(ctx context.Context, e events.Event) {
	if err := l.bus.Publish(ctx, e); err != nil {
		log.Printf("Launcher: failed to publish %s: %v", e.Type, err)
	}
}

// startProcess spawns the app in its own process group and reaps it in the
// background. The launcher does not supervise it afterwards.
func startProcess(req plan.LaunchRequest) error {
	if _, err := os.Stat(req.Path); err != nil {
		if _, lerr := exec.LookPath(req.Path); lerr != nil {
			return fmt.Errorf("application not found: %s", req.Path)
		}
	}

	cmd := exec.Command(req.Path, req.Argv...)
	cmd.Env = os.Environ()
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", req.Path, err)
	}
	go cmd.Wait()
	return nil
}
