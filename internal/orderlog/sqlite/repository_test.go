package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/coin-storefront/internal/orderlog"
)

func openTemp(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveAndLatest(t *testing.T) {
	repo := openTemp(t)
	ctx := context.Background()

	started := time.Date(2026, 10, 17, 15, 4, 5, 0, time.UTC)
	submitting := &orderlog.Entry{
		OrderID:    "order-1",
		SessionID:  "session-1",
		Identity:   "player#1234",
		Status:     orderlog.StatusSubmitting,
		TotalCoins: 2000,
		TotalPrice: 4000,
		Payload:    `{"content":"x"}`,
		CreatedAt:  started,
	}
	require.NoError(t, repo.Save(ctx, submitting))

	done := *submitting
	done.Status = orderlog.StatusSubmitted
	done.Payload = ""
	done.CreatedAt = started.Add(250 * time.Millisecond)
	require.NoError(t, repo.Save(ctx, &done))

	got, err := repo.Latest(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, orderlog.StatusSubmitted, got.Status)
	assert.Equal(t, "player#1234", got.Identity)
	assert.Equal(t, 2000, got.TotalCoins)
	assert.Equal(t, 4000, got.TotalPrice)
	assert.Empty(t, got.Payload)
	assert.True(t, done.CreatedAt.Equal(got.CreatedAt))
}

func TestLatest_SameTimestampUsesInsertOrder(t *testing.T) {
	repo := openTemp(t)
	ctx := context.Background()
	at := time.Now().UTC()

	require.NoError(t, repo.Save(ctx, &orderlog.Entry{OrderID: "o", Status: orderlog.StatusSubmitting, CreatedAt: at}))
	require.NoError(t, repo.Save(ctx, &orderlog.Entry{OrderID: "o", Status: orderlog.StatusFailed, Error: "status 500", CreatedAt: at}))

	got, err := repo.Latest(ctx, "o")
	require.NoError(t, err)
	assert.Equal(t, orderlog.StatusFailed, got.Status)
	assert.Equal(t, "status 500", got.Error)
}

func TestLatest_NotFound(t *testing.T) {
	repo := openTemp(t)

	_, err := repo.Latest(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, orderlog.ErrNotFound))
}
