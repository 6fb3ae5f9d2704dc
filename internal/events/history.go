// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"sync"
	"time"
)

const (
	defaultHistoryEvents = 10000
	defaultHistoryAge    = time.Hour
)

// EventHistoryConfig bounds the retained history.
type EventHistoryConfig struct {
	MaxEvents int
	MaxAge    time.Duration
}

// EventHistory is a fixed-capacity ring of the most recent events, kept in
// publish order. Events older than MaxAge are dropped lazily on Add and
// skipped by Query.
type EventHistory struct {
	mu     sync.RWMutex
	ring   []Event
	head   int // index of the oldest event
	size   int
	maxAge time.Duration
	now    func() time.Time
}

// NewEventHistory creates an empty history.
func NewEventHistory(cfg EventHistoryConfig) *EventHistory {
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = defaultHistoryEvents
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultHistoryAge
	}
	return &EventHistory{
		ring:   make([]Event, cfg.MaxEvents),
		maxAge: cfg.MaxAge,
		now:    time.Now,
	}
}

// Add appends event, overwriting the oldest one when the ring is full.
func (h *EventHistory) Add(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropExpired()
	if h.size == len(h.ring) {
		h.ring[h.head] = Event{}
		h.head = (h.head + 1) % len(h.ring)
		h.size--
	}
	h.ring[(h.head+h.size)%len(h.ring)] = event
	h.size++
}

// Query returns the matching events oldest first. With a Limit only the
// newest Limit matches are returned.
func (h *EventHistory) Query(filter EventFilter) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cutoff := h.now().Add(-h.maxAge)
	out := make([]Event, 0)
	for i := 0; i < h.size; i++ {
		ev := h.ring[(h.head+i)%len(h.ring)]
		if ev.Timestamp.Before(cutoff) || !filter.matches(ev) {
			continue
		}
		out = append(out, ev)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out
}

// Len reports the number of retained events, expired ones included.
func (h *EventHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Reset drops every retained event.
func (h *EventHistory) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.ring)
	h.head, h.size = 0, 0
}

// dropExpired pops events older than maxAge off the front. Callers hold mu.
// Publish order and timestamp order agree closely enough that stopping at
// the first fresh event is sufficient.
func (h *EventHistory) dropExpired() {
	cutoff := h.now().Add(-h.maxAge)
	for h.size > 0 && h.ring[h.head].Timestamp.Before(cutoff) {
		h.ring[h.head] = Event{}
		h.head = (h.head + 1) % len(h.ring)
		h.size--
	}
}

func (f EventFilter) matches(ev Event) bool {
	if len(f.Types) > 0 && !matchAny(ev.Type, f.Types) {
		return false
	}
	if f.Workspace != "" && ev.Workspace != f.Workspace {
		return false
	}
	if f.Attempt != "" {
		if id, _ := ev.Payload["attempt_id"].(string); id != f.Attempt {
			return false
		}
	}
	if !f.Since.IsZero() && ev.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && ev.Timestamp.After(f.Until) {
		return false
	}
	return true
}
