// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/ruangustavo/workspace-launcher/internal/api/handlers"
	"github.com/ruangustavo/workspace-launcher/internal/api/middleware"
	"github.com/ruangustavo/workspace-launcher/internal/api/version"
	"github.com/ruangustavo/workspace-launcher/internal/events"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Host string
	Port int
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Dependencies holds all dependencies for API handlers.
type Dependencies struct {
	Registry     handlers.WorkspaceRegistry
	Orchestrator handlers.Orchestrator
	EventBus     events.EventBus
	Version      string // Application version string
}

// NewRouter creates a new API router.
func NewRouter(deps Dependencies) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "ok",
			"version": deps.Version,
		}
		if s, ok := deps.EventBus.(interface{ Stats() events.Stats }); ok {
			body["events"] = s.Stats()
		}
		handlers.WriteJSON(w, http.StatusOK, body)
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(version.Middleware)

	workspaceHandler := handlers.NewWorkspaceHandler(deps.Registry)
	api.HandleFunc("/workspaces", workspaceHandler.List).Methods("GET")
	api.HandleFunc("/workspaces", workspaceHandler.Create).Methods("POST")
	api.HandleFunc("/workspaces/{id}", workspaceHandler.Get).Methods("GET")
	api.HandleFunc("/workspaces/{id}", workspaceHandler.Update).Methods("PATCH", "PUT")
	api.HandleFunc("/workspaces/{id}", workspaceHandler.Delete).Methods("DELETE")

	launchHandler := handlers.NewLaunchHandler(deps.Orchestrator)
	api.HandleFunc("/workspaces/{id}/launch", launchHandler.Launch).Methods("POST")
	api.HandleFunc("/workspaces/{id}/apps/{appId}/launch", launchHandler.LaunchApp).Methods("POST")
	api.HandleFunc("/workspaces/{id}/stop", launchHandler.Stop).Methods("POST")
	api.HandleFunc("/workspaces/{id}/status", launchHandler.Status).Methods("GET")
	api.HandleFunc("/status", launchHandler.StatusList).Methods("GET")

	eventHandler := handlers.NewEventHandler(deps.EventBus)
	api.HandleFunc("/events", eventHandler.History).Methods("GET")
	api.HandleFunc("/events/ws", eventHandler.WebSocket)

	api.HandleFunc("/appinfo", handlers.AppInfo).Methods("GET")

	// Unknown API paths answer with the error envelope rather than plain text.
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, handlers.ErrNotFound, "no such endpoint")
	})

	return r
}

// Server wraps the HTTP server.
type Server struct {
	router *mux.Router
	cfg    ServerConfig

	mu       sync.Mutex
	server   *http.Server
	shutdown bool
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Dependencies) *Server {
	return &Server{
		router: NewRouter(deps),
		cfg:    cfg,
	}
}

// Router returns the underlying router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// ListenAndServe starts the server. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) ListenAndServe() error {
	addr := s.cfg.Addr()

	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.server = srv
	s.mu.Unlock()

	log.Printf("API server listening on http://%s", addr)
	return srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	log.Println("Shutting down API server...")

	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	return srv.Shutdown(shutdownCtx)
}
