// Package checkout turns a cart into an order notification for the
// fulfillment webhook.
//
// Submit checks the preconditions first and makes no network call when they
// fail. Otherwise it sends exactly one POST. Any 2xx response is success;
// everything else, including transport errors, is a *SubmitError and is never
// retried.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jcmexdev/coin-storefront/internal/cart"
	"github.com/jcmexdev/coin-storefront/internal/orderlog"
)

// Messages shown to the customer after a submission.
const (
	SuccessMessage = "تم تسجيل طلبك بنجاح، سيتم التواصل معك من قبل الإدارة"
	FailureMessage = "حدث خطأ في إرسال الطلب. يرجى المحاولة مرة أخرى."
)

var tracer = otel.Tracer("github.com/jcmexdev/coin-storefront/internal/checkout")

// Request is a snapshot of what the customer is checking out.
type Request struct {
	SessionID string
	Identity  string
	Cart      *cart.Cart
}

// Receipt describes an accepted submission.
type Receipt struct {
	OrderID     string
	TotalCoins  int
	TotalPrice  int
	SubmittedAt time.Time
}

type Submitter struct {
	webhookURL string
	client     *http.Client
	location   *time.Location
	now        func() time.Time
	orders     orderlog.Repository // nil-safe: attempts are not recorded if nil
}

type Option func(*Submitter)

// WithLocation sets the time zone of the order timestamp.
func WithLocation(loc *time.Location) Option {
	return func(s *Submitter) { s.location = loc }
}

func WithClock(now func() time.Time) Option {
	return func(s *Submitter) { s.now = now }
}

func WithOrderLog(repo orderlog.Repository) Option {
	return func(s *Submitter) { s.orders = repo }
}

func NewSubmitter(webhookURL string, client *http.Client, opts ...Option) *Submitter {
	if client == nil {
		client = http.DefaultClient
	}
	s := &Submitter{
		webhookURL: webhookURL,
		client:     client,
		location:   time.Local,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks the checkout preconditions in order: identity, then cart.
func Validate(identity string, c *cart.Cart) error {
	if strings.TrimSpace(identity) == "" {
		return ErrIdentityRequired
	}
	if c == nil || c.IsEmpty() {
		return ErrEmptyCart
	}
	return nil
}

// Submit validates req and posts the order to the webhook. The outbound call
// is not cancelled when ctx is; once issued it runs to completion.
func (s *Submitter) Submit(ctx context.Context, req Request) (*Receipt, error) {
	if err := Validate(req.Identity, req.Cart); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	orderID := uuid.NewString()

	ctx, span := tracer.Start(ctx, "checkout.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.Int("order.lines", req.Cart.Len()),
		attribute.Int("order.total_price", req.Cart.TotalPrice()),
	)

	at := s.now().In(s.location)
	body, err := json.Marshal(BuildPayload(req.Identity, req.Cart, at))
	if err != nil {
		return nil, fmt.Errorf("checkout: encode payload: %w", err)
	}

	s.record(ctx, orderID, req, orderlog.StatusSubmitting, string(body), "")

	if err := s.post(ctx, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "webhook error", "order_id", orderID, "error", err)
		s.record(ctx, orderID, req, orderlog.StatusFailed, "", err.Error())
		return nil, err
	}

	slog.InfoContext(ctx, "webhook sent successfully",
		"order_id", orderID,
		"session_id", req.SessionID,
		"total_coins", req.Cart.TotalCoins(),
		"total_price", req.Cart.TotalPrice(),
	)
	s.record(ctx, orderID, req, orderlog.StatusSubmitted, "", "")

	return &Receipt{
		OrderID:     orderID,
		TotalCoins:  req.Cart.TotalCoins(),
		TotalPrice:  req.Cart.TotalPrice(),
		SubmittedAt: at,
	}, nil
}

func (s *Submitter) post(ctx context.Context, body []byte) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return &SubmitError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(httpReq)
	if err != nil {
		return &SubmitError{Err: err}
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &SubmitError{StatusCode: res.StatusCode}
	}
	return nil
}

func (s *Submitter) record(ctx context.Context, orderID string, req Request, status orderlog.Status, payload, errMsg string) {
	if s.orders == nil {
		return
	}
	entry := orderlog.NewEntry(ctx, orderID, req.SessionID, status)
	entry.Identity = req.Identity
	entry.TotalCoins = req.Cart.TotalCoins()
	entry.TotalPrice = req.Cart.TotalPrice()
	entry.Payload = payload
	entry.Error = errMsg
	if err := s.orders.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to record order log", "order_id", orderID, "status", status, "error", err)
	}
}
