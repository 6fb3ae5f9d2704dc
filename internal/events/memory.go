// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"errors"
	"log"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBusClosed            = errors.New("event bus is closed")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrEmptyType            = errors.New("event type is required")
)

const (
	eventVersion      = "1.0"
	defaultAsyncQueue = 100
)

// MemoryBusConfig configures the memory event bus.
type MemoryBusConfig struct {
	HistoryMaxEvents int
	HistoryMaxAge    time.Duration
}

// Stats is a snapshot of bus counters.
type Stats struct {
	Subscribers int    `json:"subscribers"`
	Dropped     uint64 `json:"dropped"`
	HistorySize int    `json:"history_size"`
}

// MemoryEventBus delivers events in process. Synchronous handlers run on the
// publisher's goroutine in subscription order; async handlers each get a
// queue and a goroutine, and events that do not fit the queue are dropped.
type MemoryEventBus struct {
	mu      sync.RWMutex
	subs    []*subscription
	history *EventHistory
	closed  atomic.Bool
	dropped atomic.Uint64
	wg      sync.WaitGroup
}

type subscription struct {
	id      SubscriptionID
	pattern Pattern
	handler EventHandler
	queue   chan Event    // nil for synchronous subscriptions
	quit    chan struct{} // closed on unsubscribe
}

// NewMemoryEventBus creates a new in-memory event bus.
func NewMemoryEventBus(cfg MemoryBusConfig) *MemoryEventBus {
	return &MemoryEventBus{
		history: NewEventHistory(EventHistoryConfig{
			MaxEvents: cfg.HistoryMaxEvents,
			MaxAge:    cfg.HistoryMaxAge,
		}),
	}
}

// Publish stamps event (id, version, timestamp when unset), records it and
// hands it to every matching subscriber.
func (bus *MemoryEventBus) Publish(ctx context.Context, event Event) error {
	if bus.closed.Load() {
		return ErrBusClosed
	}
	if event.Type == "" {
		return ErrEmptyType
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Version == "" {
		event.Version = eventVersion
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	bus.history.Add(event)

	bus.mu.RLock()
	subs := slices.Clone(bus.subs)
	bus.mu.RUnlock()

	for _, sub := range subs {
		if !sub.pattern.Match(event.Type) {
			continue
		}
		if sub.queue == nil {
			invoke(ctx, sub.handler, event)
			continue
		}
		select {
		case sub.queue <- event:
		case <-sub.quit:
		default:
			bus.dropped.Add(1)
			log.Printf("EventBus: dropped %s for subscriber %s, queue full", event.Type, sub.id)
		}
	}
	return nil
}

// Subscribe registers a handler that runs synchronously inside Publish.
func (bus *MemoryEventBus) Subscribe(pattern string, handler EventHandler) (SubscriptionID, error) {
	sub, err := bus.newSubscription(pattern, handler)
	if err != nil {
		return "", err
	}
	return bus.add(sub)
}

// SubscribeAsync registers a handler fed from a queue of bufferSize events
// (100 when bufferSize <= 0).
func (bus *MemoryEventBus) SubscribeAsync(pattern string, handler EventHandler, bufferSize int) (SubscriptionID, error) {
	sub, err := bus.newSubscription(pattern, handler)
	if err != nil {
		return "", err
	}
	if bufferSize <= 0 {
		bufferSize = defaultAsyncQueue
	}
	sub.queue = make(chan Event, bufferSize)

	id, err := bus.add(sub)
	if err != nil {
		return "", err
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		for {
			select {
			case <-sub.quit:
				return
			case ev := <-sub.queue:
				invoke(context.Background(), sub.handler, ev)
			}
		}
	}()
	return id, nil
}

func (bus *MemoryEventBus) newSubscription(pattern string, handler EventHandler) (*subscription, error) {
	if bus.closed.Load() {
		return nil, ErrBusClosed
	}
	p, err := ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	return &subscription{
		id:      SubscriptionID(uuid.NewString()),
		pattern: p,
		handler: handler,
		quit:    make(chan struct{}),
	}, nil
}

func (bus *MemoryEventBus) add(sub *subscription) (SubscriptionID, error) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if bus.closed.Load() {
		return "", ErrBusClosed
	}
	bus.subs = append(bus.subs, sub)
	return sub.id, nil
}

// Unsubscribe removes a subscription. An async handler that is mid-event
// finishes that event.
func (bus *MemoryEventBus) Unsubscribe(id SubscriptionID) error {
	bus.mu.Lock()
	i := slices.IndexFunc(bus.subs, func(s *subscription) bool { return s.id == id })
	if i < 0 {
		bus.mu.Unlock()
		return ErrSubscriptionNotFound
	}
	sub := bus.subs[i]
	bus.subs = slices.Delete(bus.subs, i, i+1)
	bus.mu.Unlock()

	close(sub.quit)
	return nil
}

// History retrieves retained events matching filter.
func (bus *MemoryEventBus) History(filter EventFilter) ([]Event, error) {
	return bus.history.Query(filter), nil
}

// Stats returns current counters.
func (bus *MemoryEventBus) Stats() Stats {
	bus.mu.RLock()
	n := len(bus.subs)
	bus.mu.RUnlock()
	return Stats{
		Subscribers: n,
		Dropped:     bus.dropped.Load(),
		HistorySize: bus.history.Len(),
	}
}

// Close stops async handlers and waits for them. Publishing afterwards
// returns ErrBusClosed.
func (bus *MemoryEventBus) Close() error {
	if bus.closed.Swap(true) {
		return nil
	}

	bus.mu.Lock()
	subs := bus.subs
	bus.subs = nil
	bus.mu.Unlock()

	for _, sub := range subs {
		close(sub.quit)
	}
	bus.wg.Wait()
	bus.history.Reset()
	return nil
}

func invoke(ctx context.Context, handler EventHandler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("EventBus: handler panic for %s: %v", ev.Type, r)
		}
	}()
	if err := handler(ctx, ev); err != nil {
		log.Printf("EventBus: handler error for %s: %v", ev.Type, err)
	}
}
