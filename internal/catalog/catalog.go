// Package catalog loads the list of purchasable items and tracks the state of
// that load.
//
// A Catalog starts in PhaseLoading. Each load ends in PhaseLoaded with the
// items, or in PhaseFailed with the error. Reload restarts the sequence; the
// result of a load that was superseded by a newer one is discarded.
package catalog

import (
	"context"
	"log/slog"
	"sync"
)

type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "load_failed"
)

// State is a point-in-time view of the catalog.
type State struct {
	Phase Phase
	Items []Item
	Err   error
}

type Catalog struct {
	fetcher Fetcher

	mu         sync.RWMutex
	state      State
	generation uint64
	byID       map[int]Item
}

func New(fetcher Fetcher) *Catalog {
	return &Catalog{
		fetcher: fetcher,
		state:   State{Phase: PhaseLoading},
		byID:    make(map[int]Item),
	}
}

// Start loads the catalog in the background. The returned channel is closed
// once that load has settled.
func (c *Catalog) Start(ctx context.Context) <-chan struct{} {
	gen := c.begin()
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.load(ctx, gen)
	}()
	return done
}

// Reload runs a new load synchronously and returns the resulting state.
func (c *Catalog) Reload(ctx context.Context) State {
	gen := c.begin()
	c.load(ctx, gen)
	return c.State()
}

func (c *Catalog) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.state = State{Phase: PhaseLoading, Items: c.state.Items}
	return c.generation
}

func (c *Catalog) load(ctx context.Context, gen uint64) {
	items, err := c.fetcher.Fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		slog.DebugContext(ctx, "discarding superseded catalog load", "generation", gen)
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to load products", "error", err)
		c.state = State{Phase: PhaseFailed, Err: err}
		c.byID = make(map[int]Item)
		return
	}

	byID := make(map[int]Item, len(items))
	unique := make([]Item, 0, len(items))
	for _, it := range items {
		// non-positive IDs are reserved for items built outside the catalog
		if it.ID <= 0 {
			slog.WarnContext(ctx, "skipping catalog item with non-positive id", "id", it.ID, "name", it.Name)
			continue
		}
		if _, dup := byID[it.ID]; dup {
			slog.WarnContext(ctx, "duplicate catalog id, keeping first", "id", it.ID)
			continue
		}
		byID[it.ID] = it
		unique = append(unique, it)
	}
	c.byID = byID
	c.state = State{Phase: PhaseLoaded, Items: unique}
	slog.InfoContext(ctx, "catalog loaded", "items", len(unique))
}

// State returns a copy of the current state.
func (c *Catalog) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.Items = append([]Item(nil), s.Items...)
	return s
}

// Item looks up a loaded item by ID.
func (c *Catalog) Item(id int) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.byID[id]
	return it, ok
}
