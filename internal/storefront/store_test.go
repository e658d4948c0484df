package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/coin-storefront/internal/catalog"
)

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type stubCatalog struct {
	items map[int]catalog.Item
}

func newStubCatalog(items ...catalog.Item) *stubCatalog {
	c := &stubCatalog{items: make(map[int]catalog.Item)}
	for _, it := range items {
		c.items[it.ID] = it
	}
	return c
}

func (c *stubCatalog) State() catalog.State {
	st := catalog.State{Phase: catalog.PhaseLoaded}
	for _, it := range c.items {
		st.Items = append(st.Items, it)
	}
	return st
}

func (c *stubCatalog) Item(id int) (catalog.Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

func (c *stubCatalog) Reload(context.Context) catalog.State { return c.State() }

func TestStore_GetOrCreate(t *testing.T) {
	st := NewStore(time.Hour)

	s, created := st.GetOrCreate("")
	require.True(t, created)
	require.NotEmpty(t, s.ID)

	again, created := st.GetOrCreate(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	other, created := st.GetOrCreate("unknown-id")
	assert.True(t, created)
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, 2, st.Len())
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	st := NewStore(time.Hour)
	a := st.Create()
	b := st.Create()

	a.Add(pack500, 3)
	assert.Len(t, a.Snapshot().Lines, 1)
	assert.Empty(t, b.Snapshot().Lines)
}

func TestStore_SweepExpiresIdleSessions(t *testing.T) {
	now := fixedNow
	st := NewStore(30 * time.Minute)
	st.now = func() time.Time { return now }

	idle := st.Create()
	active := st.Create()

	now = now.Add(20 * time.Minute)
	_, ok := st.Get(active.ID)
	require.True(t, ok)

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, st.Sweep())

	_, ok = st.Get(idle.ID)
	assert.False(t, ok)
	_, ok = st.Get(active.ID)
	assert.True(t, ok)
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	st := NewStore(0)
	st.Create()
	assert.Zero(t, st.Sweep())
	assert.Equal(t, 1, st.Len())
}

func TestStore_RunStopsWithContext(t *testing.T) {
	st := NewStore(time.Hour)

	// disabled interval returns at once
	st.Run(context.Background(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
