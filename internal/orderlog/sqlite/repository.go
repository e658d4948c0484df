// Package sqlite provides a SQLite-backed implementation of orderlog.Repository.
//
// WAL mode is enabled on Open so HTTP handlers reading an order's status do not
// block the checkout path writing new rows.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/coin-storefront/internal/orderlog"

	// Pure-Go driver, no CGO needed.
	_ "modernc.org/sqlite"
)

// schema is append-only: one row per status transition of an order.
const schema = `
CREATE TABLE IF NOT EXISTS order_logs (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id     TEXT    NOT NULL,
    session_id   TEXT    NOT NULL DEFAULT '',
    identity     TEXT    NOT NULL DEFAULT '',
    status       TEXT    NOT NULL,
    total_coins  INTEGER NOT NULL DEFAULT 0,
    total_price  INTEGER NOT NULL DEFAULT 0,

    -- webhook body, written once on SUBMITTING
    payload      TEXT,

    error        TEXT    NOT NULL DEFAULT '',
    trace_id     TEXT    NOT NULL DEFAULT '',
    span_id      TEXT    NOT NULL DEFAULT '',

    -- RFC3339 UTC
    created_at   TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_logs_order_id ON order_logs(order_id, created_at);
CREATE INDEX IF NOT EXISTS idx_order_logs_session_id ON order_logs(session_id);
`

// Fixed-width fraction keeps created_at sortable as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Repository struct {
	db *sql.DB
}

var _ orderlog.Repository = (*Repository)(nil)

// Open opens (or creates) the database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/orders.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// single writer
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Save(ctx context.Context, e *orderlog.Entry) error {
	const q = `
		INSERT INTO order_logs
			(order_id, session_id, identity, status, total_coins, total_price,
			 payload, error, trace_id, span_id, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		e.OrderID,
		e.SessionID,
		e.Identity,
		string(e.Status),
		e.TotalCoins,
		e.TotalPrice,
		nullableString(e.Payload),
		e.Error,
		e.TraceID,
		e.SpanID,
		e.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save order log for %q: %w", e.OrderID, err)
	}
	return nil
}

func (r *Repository) Latest(ctx context.Context, orderID string) (*orderlog.Entry, error) {
	const q = `
		SELECT order_id, session_id, identity, status, total_coins, total_price,
		       COALESCE(payload, ''), error, trace_id, span_id, created_at
		FROM   order_logs
		WHERE  order_id = ?
		ORDER  BY created_at DESC, id DESC
		LIMIT  1`

	var (
		e         orderlog.Entry
		status    string
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(
		&e.OrderID,
		&e.SessionID,
		&e.Identity,
		&status,
		&e.TotalCoins,
		&e.TotalPrice,
		&e.Payload,
		&e.Error,
		&e.TraceID,
		&e.SpanID,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: order %q: %w", orderID, orderlog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: latest for %q: %w", orderID, err)
	}
	e.Status = orderlog.Status(status)

	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// nullableString stores NULL instead of an empty string so payload is only set on the
// SUBMITTING row.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
