// Package orderlog defines an append-only audit trail of checkout attempts.
//
// Every submission writes a SUBMITTING row before the webhook call and a
// SUBMITTED or FAILED row once it resolves, so an operator can match what
// reached the fulfillment channel against what customers attempted.
// Querying the newest row for an order ID gives its current state.
package orderlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type Status string

const (
	StatusSubmitting Status = "SUBMITTING"
	StatusSubmitted  Status = "SUBMITTED"
	StatusFailed     Status = "FAILED"
)

// Entry is a single row of the order log.
type Entry struct {
	OrderID   string
	SessionID string
	Identity  string
	Status    Status

	TotalCoins int
	TotalPrice int

	// Payload is the JSON body sent to the webhook. Only set on SUBMITTING.
	Payload string

	// Error describes why a FAILED attempt failed.
	Error string

	TraceID string
	SpanID  string

	CreatedAt time.Time
}

// Repository persists order log entries.
type Repository interface {
	// Save appends an entry; it never updates an existing row.
	Save(ctx context.Context, entry *Entry) error
	// Latest returns the newest entry for orderID or ErrNotFound.
	Latest(ctx context.Context, orderID string) (*Entry, error)
}

// NewEntry builds an entry stamped with the current time and the trace of the
// span active in ctx, if any.
func NewEntry(ctx context.Context, orderID, sessionID string, status Status) *Entry {
	e := &Entry{
		OrderID:   orderID,
		SessionID: sessionID,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		e.TraceID = sc.TraceID().String()
		e.SpanID = sc.SpanID().String()
	}
	return e
}
