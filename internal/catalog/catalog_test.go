package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsJSON = `[
  {"id": 1, "coins": 500, "price_credits": 1000, "image_url": "/images/coins_500.png", "name": "500 Coins"},
  {"id": 2, "coins": 1000, "price_credits": 2000, "image_url": "/images/coins_1000.png", "name": "1,000 Coins"}
]`

type memCache struct {
	mu   sync.Mutex
	data map[string]string
	ttl  time.Duration
}

func newMemCache() *memCache { return &memCache{data: make(map[string]string)} }

func (m *memCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttl = ttl
	return nil
}

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memCache) GenerateKey(operation, key string) string {
	return "test:" + operation + ":" + key
}

type stubFetcher struct {
	mu    sync.Mutex
	items []Item
	err   error
}

func (s *stubFetcher) Fetch(context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items, s.err
}

// gatedFetcher holds its first Fetch until release is closed and serves
// later calls immediately.
type gatedFetcher struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	first   []Item
	later   []Item
}

func newGatedFetcher(first, later []Item) *gatedFetcher {
	return &gatedFetcher{
		started: make(chan struct{}),
		release: make(chan struct{}),
		first:   first,
		later:   later,
	}
}

func (g *gatedFetcher) Fetch(context.Context) ([]Item, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
		<-g.release
		return g.first, nil
	}
	return g.later, nil
}

func (s *stubFetcher) set(items []Item, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items, s.err = items, err
}

func TestHTTPFetcher_DecodesCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productsJSON))
	}))
	defer srv.Close()

	items, err := NewHTTPFetcher(srv.URL, srv.Client(), nil, 0).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, Item{ID: 1, Coins: 500, Price: 1000, ImageURL: "/images/coins_500.png", Name: "500 Coins"}, items[0])
	assert.Equal(t, 2000, items[1].Price)
}

func TestHTTPFetcher_FailsOnStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(srv.URL, srv.Client(), nil, 0).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestHTTPFetcher_FailsOnBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(srv.URL, srv.Client(), nil, 0).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestHTTPFetcher_ServesFromCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(productsJSON))
	}))
	defer srv.Close()

	c := newMemCache()
	f := NewHTTPFetcher(srv.URL, srv.Client(), c, time.Minute)

	for i := 0; i < 3; i++ {
		items, err := f.Fetch(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 2)
	}
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, time.Minute, c.ttl)
	assert.Contains(t, c.data, "test:catalog:"+srv.URL)
}

func TestCatalog_StartLoadsItems(t *testing.T) {
	f := &stubFetcher{items: []Item{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}}
	c := New(f)
	assert.Equal(t, PhaseLoading, c.State().Phase)

	<-c.Start(context.Background())

	st := c.State()
	assert.Equal(t, PhaseLoaded, st.Phase)
	assert.Len(t, st.Items, 2)

	it, ok := c.Item(2)
	require.True(t, ok)
	assert.Equal(t, "b", it.Name)

	_, ok = c.Item(3)
	assert.False(t, ok)
}

func TestCatalog_FailureThenReloadRecovers(t *testing.T) {
	f := &stubFetcher{err: errors.New("connection refused")}
	c := New(f)

	<-c.Start(context.Background())
	st := c.State()
	assert.Equal(t, PhaseFailed, st.Phase)
	require.Error(t, st.Err)
	assert.Empty(t, st.Items)

	f.set([]Item{{ID: 7}}, nil)
	st = c.Reload(context.Background())
	assert.Equal(t, PhaseLoaded, st.Phase)
	assert.NoError(t, st.Err)
	_, ok := c.Item(7)
	assert.True(t, ok)
}

func TestCatalog_DropsDuplicateIDs(t *testing.T) {
	f := &stubFetcher{items: []Item{{ID: 1, Name: "first"}, {ID: 1, Name: "second"}}}
	c := New(f)

	st := c.Reload(context.Background())
	require.Len(t, st.Items, 1)
	assert.Equal(t, "first", st.Items[0].Name)
}

func TestCatalog_SupersededLoadIsDiscarded(t *testing.T) {
	f := newGatedFetcher(
		[]Item{{ID: 1, Name: "stale"}},
		[]Item{{ID: 2, Name: "fresh"}},
	)
	c := New(f)

	done := c.Start(context.Background())
	<-f.started

	st := c.Reload(context.Background())
	require.Equal(t, PhaseLoaded, st.Phase)
	require.Len(t, st.Items, 1)
	assert.Equal(t, "fresh", st.Items[0].Name)

	close(f.release)
	<-done

	st = c.State()
	assert.Equal(t, PhaseLoaded, st.Phase)
	require.Len(t, st.Items, 1)
	assert.Equal(t, "fresh", st.Items[0].Name)
	_, ok := c.Item(1)
	assert.False(t, ok)
}

func TestCatalog_SkipsNonPositiveIDs(t *testing.T) {
	f := &stubFetcher{items: []Item{
		{ID: -1, Name: "reserved"},
		{ID: 0, Name: "zero"},
		{ID: 3, Name: "ok"},
	}}
	c := New(f)

	st := c.Reload(context.Background())
	require.Len(t, st.Items, 1)
	assert.Equal(t, 3, st.Items[0].ID)
	_, ok := c.Item(-1)
	assert.False(t, ok)
}
