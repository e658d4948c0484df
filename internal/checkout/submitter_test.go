package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/coin-storefront/internal/cart"
	"github.com/jcmexdev/coin-storefront/internal/orderlog"
)

type webhookRecorder struct {
	calls  atomic.Int32
	status int

	mu          sync.Mutex
	contentType string
	payload     Payload
}

func (w *webhookRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		w.calls.Add(1)
		body, _ := io.ReadAll(r.Body)

		w.mu.Lock()
		w.contentType = r.Header.Get("Content-Type")
		_ = json.Unmarshal(body, &w.payload)
		w.mu.Unlock()

		rw.WriteHeader(w.status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type memOrderLog struct {
	mu      sync.Mutex
	entries []orderlog.Entry
}

func (m *memOrderLog) Save(_ context.Context, e *orderlog.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memOrderLog) Latest(_ context.Context, id string) (*orderlog.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].OrderID == id {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, orderlog.ErrNotFound
}

func fixedClock() time.Time { return time.Date(2026, 10, 17, 15, 4, 5, 0, time.UTC) }

func TestSubmit_RejectsBlankIdentityWithoutCalling(t *testing.T) {
	rec := &webhookRecorder{status: http.StatusNoContent}
	srv := rec.server(t)
	s := NewSubmitter(srv.URL, srv.Client())

	for _, identity := range []string{"", "   ", "\t\n"} {
		_, err := s.Submit(context.Background(), Request{Identity: identity, Cart: scenarioCart()})
		require.ErrorIs(t, err, ErrIdentityRequired)
	}
	assert.Zero(t, rec.calls.Load())
}

func TestSubmit_RejectsEmptyCartWithoutCalling(t *testing.T) {
	rec := &webhookRecorder{status: http.StatusNoContent}
	srv := rec.server(t)
	s := NewSubmitter(srv.URL, srv.Client())

	_, err := s.Submit(context.Background(), Request{Identity: "player#1234", Cart: cart.New()})
	require.ErrorIs(t, err, ErrEmptyCart)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Your cart is empty", vErr.Message)
	assert.Zero(t, rec.calls.Load())
}

func TestSubmit_IdentityCheckedBeforeCart(t *testing.T) {
	err := Validate(" ", cart.New())
	assert.ErrorIs(t, err, ErrIdentityRequired)
}

func TestSubmit_PostsPayload(t *testing.T) {
	rec := &webhookRecorder{status: http.StatusNoContent}
	srv := rec.server(t)
	orders := &memOrderLog{}
	s := NewSubmitter(srv.URL, srv.Client(),
		WithClock(fixedClock),
		WithLocation(time.UTC),
		WithOrderLog(orders),
	)

	receipt, err := s.Submit(context.Background(), Request{
		SessionID: "sess-1",
		Identity:  "player#1234",
		Cart:      scenarioCart(),
	})
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.NotEmpty(t, receipt.OrderID)
	assert.Equal(t, 2000, receipt.TotalCoins)
	assert.Equal(t, 4000, receipt.TotalPrice)

	assert.Equal(t, int32(1), rec.calls.Load())
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, "application/json", rec.contentType)
	require.Len(t, rec.payload.Embeds, 1)
	assert.Equal(t, "player#1234", rec.payload.Embeds[0].Fields[2].Value)
	assert.Equal(t, "10/17/2026, 03:04:05 PM", rec.payload.Embeds[0].Fields[3].Value)

	require.Len(t, orders.entries, 2)
	assert.Equal(t, orderlog.StatusSubmitting, orders.entries[0].Status)
	assert.NotEmpty(t, orders.entries[0].Payload)
	assert.Equal(t, orderlog.StatusSubmitted, orders.entries[1].Status)
	assert.Equal(t, receipt.OrderID, orders.entries[1].OrderID)
	assert.Equal(t, "sess-1", orders.entries[1].SessionID)
}

func TestSubmit_NonSuccessStatusFailsOnce(t *testing.T) {
	rec := &webhookRecorder{status: http.StatusInternalServerError}
	srv := rec.server(t)
	orders := &memOrderLog{}
	s := NewSubmitter(srv.URL, srv.Client(), WithOrderLog(orders))

	receipt, err := s.Submit(context.Background(), Request{Identity: "player#1234", Cart: scenarioCart()})
	require.Error(t, err)
	assert.Nil(t, receipt)

	var subErr *SubmitError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, http.StatusInternalServerError, subErr.StatusCode)
	assert.Equal(t, int32(1), rec.calls.Load())

	require.Len(t, orders.entries, 2)
	assert.Equal(t, orderlog.StatusFailed, orders.entries[1].Status)
	assert.Contains(t, orders.entries[1].Error, "500")
}

func TestSubmit_TransportErrorIsSubmitError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := NewSubmitter(url, nil)
	_, err := s.Submit(context.Background(), Request{Identity: "player#1234", Cart: scenarioCart()})

	var subErr *SubmitError
	require.ErrorAs(t, err, &subErr)
	assert.Zero(t, subErr.StatusCode)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestSubmit_IgnoresCallerCancellation(t *testing.T) {
	rec := &webhookRecorder{status: http.StatusOK}
	srv := rec.server(t)
	s := NewSubmitter(srv.URL, srv.Client())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Submit(ctx, Request{Identity: "player#1234", Cart: scenarioCart()})
	require.NoError(t, err)
	assert.Equal(t, int32(1), rec.calls.Load())
}
