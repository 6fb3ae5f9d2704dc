// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package events provides the in-process event bus that carries workspace
// mutations and launch notifications.
package events

import (
	"context"
	"time"
)

// Event represents an immutable event record.
type Event struct {
	ID        string                 `json:"id"`
	Version   string                 `json:"version"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Workspace string                 `json:"workspace,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
}

// EventHandler processes received events.
type EventHandler func(ctx context.Context, event Event) error

// SubscriptionID uniquely identifies a subscription.
type SubscriptionID string

// EventFilter for querying event history.
type EventFilter struct {
	Types     []string  // patterns, see Pattern
	Workspace string    // workspace id
	Attempt   string    // launch attempt id (payload "attempt_id")
	Since     time.Time // inclusive
	Until     time.Time // inclusive
	Limit     int       // newest N of the matches
}

// Publisher is the write side of the bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventBus is the core event pub/sub system.
type EventBus interface {
	Publisher

	// Subscribe registers a synchronous handler for events matching pattern.
	Subscribe(pattern string, handler EventHandler) (SubscriptionID, error)

	// SubscribeAsync registers an async handler with buffered channel.
	SubscribeAsync(pattern string, handler EventHandler, bufferSize int) (SubscriptionID, error)

	// Unsubscribe removes a subscription.
	Unsubscribe(id SubscriptionID) error

	// History retrieves past events matching filter.
	History(filter EventFilter) ([]Event, error)

	// Close shuts down the event bus gracefully.
	Close() error
}

// Event types
const (
	// Registry events
	EventWorkspaceCreated  = "workspace.created"
	EventWorkspaceUpdated  = "workspace.updated"
	EventWorkspaceDeleted  = "workspace.deleted"
	EventWorkspaceReloaded = "workspace.reloaded"
	EventWorkspaceStopped  = "workspace.stopped"

	// Launch events. Progress and completion come from the launcher; the
	// orchestrator emits the rest.
	EventLaunchStarted  = "launch.started"
	EventLaunchProgress = "launch.progress"
	EventLaunchComplete = "launch.complete"
	EventLaunchFailed   = "launch.failed"
	EventLaunchOutcome  = "launch.outcome"
)
