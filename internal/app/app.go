// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app wires the launcher's components together and runs them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ruangustavo/workspace-launcher/internal/api"
	"github.com/ruangustavo/workspace-launcher/internal/config"
	"github.com/ruangustavo/workspace-launcher/internal/events"
	"github.com/ruangustavo/workspace-launcher/internal/launcher"
	"github.com/ruangustavo/workspace-launcher/internal/orchestrator"
	"github.com/ruangustavo/workspace-launcher/internal/status"
	"github.com/ruangustavo/workspace-launcher/internal/storage"
	"github.com/ruangustavo/workspace-launcher/internal/watcher"
	"github.com/ruangustavo/workspace-launcher/internal/workspace"
)

// App is the main application container.
type App struct {
	mu sync.Mutex

	version  string
	config   *config.Config
	eventBus *events.MemoryEventBus
	store    storage.Store
	registry *workspace.Registry
	tracker  *status.Tracker
	launcher *launcher.ExecLauncher
	orch     *orchestrator.Orchestrator
	watcher  *watcher.FileWatcher

	apiServer *api.Server

	done     chan struct{}
	stopOnce sync.Once
}

// Options holds configuration options for the app.
type Options struct {
	ConfigPath string
	Host       string
	Port       int
	DataDir    string
	StorageURL string
	Version    string // Application version string
}

// New loads configuration and creates an App. Components are built by
// Initialize.
func New(opts Options) (*App, error) {
	loader := config.NewLoader()
	cfg, err := loader.LoadWithDefaults(context.Background(), opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Command line overrides
	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.StorageURL != "" {
		cfg.Storage.URL = opts.StorageURL
	}

	return &App{
		version: opts.Version,
		config:  cfg,
		done:    make(chan struct{}),
	}, nil
}

// Config returns the effective configuration.
func (app *App) Config() *config.Config {
	return app.config
}

// Registry returns the workspace registry.
func (app *App) Registry() *workspace.Registry {
	return app.registry
}

// Orchestrator returns the launch orchestrator.
func (app *App) Orchestrator() *orchestrator.Orchestrator {
	return app.orch
}

// EventBus returns the event bus.
func (app *App) EventBus() events.EventBus {
	return app.eventBus
}

// Handler returns the API handler. Valid after Initialize.
func (app *App) Handler() http.Handler {
	return app.apiServer.Router()
}

// Initialize sets up all components and loads the stored workspaces.
func (app *App) Initialize(ctx context.Context) error {
	cfg := app.config

	app.eventBus = events.NewMemoryEventBus(events.MemoryBusConfig{
		HistoryMaxEvents: cfg.Events.History.MaxEvents,
		HistoryMaxAge:    config.ParseDuration(cfg.Events.History.MaxAge, time.Hour),
	})

	store, err := storage.Open(cfg.Storage.URL, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	app.store = store

	app.registry = workspace.NewRegistry(store,
		workspace.WithCodec(workspace.CodecFor(store.Format())),
		workspace.WithPublisher(app.eventBus),
	)
	if err := app.registry.Load(ctx); err != nil {
		// Start empty rather than refuse to run; the next successful
		// mutation overwrites the unreadable document.
		log.Printf("Warning: %v", err)
	}

	app.tracker = status.NewTracker()
	app.launcher = launcher.NewExecLauncher(app.eventBus,
		launcher.WithDefaultDelay(cfg.DefaultDelay()),
	)
	app.orch = orchestrator.New(app.registry, app.tracker, app.launcher, app.eventBus, orchestrator.Config{
		CompletionTimeout: cfg.CompletionTimeout(),
	})
	app.registry.SetPruner(app.orch)

	if fs, ok := store.(*storage.FileStore); ok && cfg.Watch.IsEnabled() {
		debounce := config.ParseDuration(cfg.Watch.Debounce, 0)
		w, err := watcher.NewFileWatcher(fs.Path(), debounce, app.reloadFrom(fs))
		if err != nil {
			log.Printf("Warning: failed to watch %s: %v", fs.Path(), err)
		} else {
			app.watcher = w
		}
	}

	app.apiServer = api.NewServer(
		api.ServerConfig{Host: cfg.Server.Host, Port: cfg.Server.Port},
		api.Dependencies{
			Registry:     app.registry,
			Orchestrator: app.orch,
			EventBus:     app.eventBus,
			Version:      app.version,
		},
	)

	return nil
}

// reloadFrom returns the watcher callback. Writes made by the registry
// itself are recognised by content and skipped.
func (app *App) reloadFrom(fs *storage.FileStore) watcher.ReloadFunc {
	return func(ctx context.Context) error {
		changed, err := fs.Changed()
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		log.Printf("Watcher: %s changed on disk, reloading", fs.Path())
		return app.registry.Load(ctx)
	}
}

// Start runs the API server until ctx is cancelled or the server fails.
func (app *App) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting API server on %s", api.ServerConfig{Host: app.config.Server.Host, Port: app.config.Server.Port}.Addr())
		if err := app.apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-app.done:
		}
		return app.Shutdown(context.Background())
	})

	return g.Wait()
}

// Run initializes the app and blocks until a signal, Stop, or ctx ends it.
func (app *App) Run(ctx context.Context) error {
	if err := app.Initialize(ctx); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Printf("Shutdown requested...")
	}()

	return app.Start(ctx)
}

// Shutdown gracefully shuts down all components. It is safe to call more
// than once.
func (app *App) Shutdown(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var errs []error

	// Stop API server first to stop accepting new requests
	if app.apiServer != nil {
		if err := app.apiServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown API server: %w", err))
		}
		app.apiServer = nil
	}

	if app.watcher != nil {
		app.watcher.Close()
		app.watcher = nil
	}

	// Settle pending attempts before the launcher stops publishing.
	if app.orch != nil {
		app.orch.Close()
	}
	if app.launcher != nil {
		app.launcher.Close()
	}

	if app.store != nil {
		if err := app.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
		app.store = nil
	}

	if app.eventBus != nil {
		app.eventBus.Close()
	}

	log.Println("Shutdown complete")
	return errors.Join(errs...)
}

// Stop signals the app to shut down.
func (app *App) Stop() {
	app.stopOnce.Do(func() {
		close(app.done)
	})
}
