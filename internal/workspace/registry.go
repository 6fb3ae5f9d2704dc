// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ruangustavo/workspace-launcher/internal/events"
)

// Storage is the durable home of the encoded workspace collection.
type Storage interface {
	// Load returns the stored document, or an empty document if none exists yet.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored document.
	Save(ctx context.Context, data []byte) error
}

// StatusPruner drops launch bookkeeping for a deleted workspace.
type StatusPruner interface {
	Prune(id string)
}

// Option configures a Registry.
type Option func(*Registry)

// WithCodec sets the document codec. The default is JSON.
func WithCodec(c Codec) Option {
	return func(r *Registry) { r.codec = c }
}

// WithPublisher sets the bus that receives mutation events.
func WithPublisher(p events.Publisher) Option {
	return func(r *Registry) { r.bus = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// Registry is the single owner of the workspace collection. It keeps an
// in-memory cache and writes every mutation through to storage.
type Registry struct {
	// saveMu is held from a mutation through its save, and by Load, so the
	// stored document always matches a cache state and saves land in
	// mutation order. Lock order: saveMu, then mu.
	saveMu sync.Mutex
	mu     sync.RWMutex
	items  []*Workspace

	store  Storage
	codec  Codec
	bus    events.Publisher
	pruner StatusPruner
	now    func() time.Time
}

// NewRegistry creates an empty registry backed by store. Call Load to
// populate it from storage.
func NewRegistry(store Storage, opts ...Option) *Registry {
	r := &Registry{
		items: []*Workspace{},
		store: store,
		codec: JSONCodec{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetPruner sets the collaborator told about deleted workspaces.
func (r *Registry) SetPruner(p StatusPruner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruner = p
}

// Load replaces the cache with the stored collection. On failure the cache
// is left untouched.
func (r *Registry) Load(ctx context.Context) error {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	data, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	items, err := r.codec.Decode(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	r.mu.Lock()
	r.items = items
	r.mu.Unlock()

	log.Printf("Registry: loaded %d workspaces", len(items))
	r.publish(ctx, events.EventWorkspaceReloaded, "", map[string]interface{}{"count": len(items)})
	return nil
}

// List returns copies of all workspaces in insertion order.
func (r *Registry) List() []*Workspace {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Workspace, 0, len(r.items))
	for _, w := range r.items {
		out = append(out, w.Clone())
	}
	return out
}

// Get returns a copy of the workspace with the given id.
func (r *Registry) Get(id string) (*Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexLocked(id); i >= 0 {
		return r.items[i].Clone(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Add validates def, stores it as a new workspace and returns it. A non-nil
// result together with an ErrPersistFailed error means the workspace exists
// in memory but was not saved.
func (r *Registry) Add(ctx context.Context, def Definition) (*Workspace, error) {
	if err := Validate(def.Name, def.Apps); err != nil {
		return nil, err
	}

	var out *Workspace
	err := r.commit(ctx, func() error {
		now := r.now().UTC()
		ws := &Workspace{
			ID:          uuid.NewString(),
			Name:        strings.TrimSpace(def.Name),
			Description: strings.TrimSpace(def.Description),
			Icon:        def.Icon,
			Apps:        normalizeApps(def.Apps),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		r.items = append(r.items, ws)
		out = ws.Clone()
		return nil
	})
	if out == nil {
		return nil, err
	}

	log.Printf("Registry: created workspace %s (%q, %d apps)", out.ID, out.Name, len(out.Apps))
	r.publish(ctx, events.EventWorkspaceCreated, out.ID, map[string]interface{}{"workspace": out})
	return out, err
}

// Update merges the non-nil fields of p into the workspace. Validation runs
// against the merged result.
func (r *Registry) Update(ctx context.Context, id string, p Patch) (*Workspace, error) {
	if p.IsEmpty() {
		return r.Get(id)
	}

	var out *Workspace
	err := r.commit(ctx, func() error {
		i := r.indexLocked(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		next := r.items[i].Clone()
		if p.Name != nil {
			next.Name = strings.TrimSpace(*p.Name)
		}
		if p.Description != nil {
			next.Description = strings.TrimSpace(*p.Description)
		}
		if p.Icon != nil {
			next.Icon = *p.Icon
		}
		if p.Apps != nil {
			next.Apps = *p.Apps
		}
		if err := Validate(next.Name, next.Apps); err != nil {
			return err
		}
		next.Apps = normalizeApps(next.Apps)
		next.UpdatedAt = r.nextUpdatedAt(next.UpdatedAt)

		r.items[i] = next
		out = next.Clone()
		return nil
	})
	if out == nil {
		return nil, err
	}

	log.Printf("Registry: updated workspace %s", id)
	r.publish(ctx, events.EventWorkspaceUpdated, id, map[string]interface{}{"workspace": out})
	return out, err
}

// Delete removes the workspace and drops its launch status.
func (r *Registry) Delete(ctx context.Context, id string) error {
	var (
		pruner  StatusPruner
		removed bool
	)
	err := r.commit(ctx, func() error {
		i := r.indexLocked(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		r.items = append(r.items[:i:i], r.items[i+1:]...)
		pruner, removed = r.pruner, true
		return nil
	})
	if !removed {
		return err
	}

	if pruner != nil {
		pruner.Prune(id)
	}

	log.Printf("Registry: deleted workspace %s", id)
	r.publish(ctx, events.EventWorkspaceDeleted, id, map[string]interface{}{"id": id})
	return err
}

// nextUpdatedAt returns the current time, nudged forward if the clock has
// not advanced past prev.
func (r *Registry) nextUpdatedAt(prev time.Time) time.Time {
	now := r.now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

func (r *Registry) indexLocked(id string) int {
	for i, w := range r.items {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// commit runs apply against the cache and saves the result before any
// other mutation or Load can start. An error from apply leaves storage
// alone and is returned as is; a failed save keeps the mutation and returns
// an error wrapping ErrPersistFailed.
func (r *Registry) commit(ctx context.Context, apply func() error) error {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	r.mu.Lock()
	if err := apply(); err != nil {
		r.mu.Unlock()
		return err
	}
	data, err := r.codec.Encode(r.items)
	r.mu.Unlock()

	if err != nil {
		log.Printf("Registry: failed to encode workspaces: %v", err)
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	if err := r.store.Save(ctx, data); err != nil {
		log.Printf("Registry: failed to save workspaces: %v", err)
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return nil
}

func (r *Registry) publish(ctx context.Context, typ, id string, payload map[string]interface{}) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, events.Event{Type: typ, Workspace: id, Payload: payload}); err != nil {
		log.Printf("Registry: failed to publish %s: %v", typ, err)
	}
}
