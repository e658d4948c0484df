package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jcmexdev/coin-storefront/internal/cart"
	"github.com/jcmexdev/coin-storefront/internal/catalog"
	"github.com/jcmexdev/coin-storefront/internal/checkout"
)

// Submitter sends an order to fulfillment.
type Submitter interface {
	Submit(ctx context.Context, req checkout.Request) (*checkout.Receipt, error)
}

// Session is the state of one visitor: a cart and the identity they entered
// for checkout. All methods are safe for concurrent use.
type Session struct {
	ID string

	mu       sync.Mutex
	cart     *cart.Cart
	identity string
	lastSeen time.Time

	inFlight atomic.Int32
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, cart: cart.New(), lastSeen: now}
}

// View is a read-only copy of a session.
type View struct {
	ID         string      `json:"id"`
	Identity   string      `json:"identity"`
	Lines      []cart.Line `json:"-"`
	TotalCoins int         `json:"total_coins"`
	TotalPrice int         `json:"total_price"`
}

func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:         s.ID,
		Identity:   s.identity,
		Lines:      s.cart.Lines(),
		TotalCoins: s.cart.TotalCoins(),
		TotalPrice: s.cart.TotalPrice(),
	}
}

func (s *Session) Add(item catalog.Item, quantity int) (Notice, error) {
	s.mu.Lock()
	err := s.cart.Add(item, quantity)
	s.mu.Unlock()
	if err != nil {
		return failure(msgTooLarge), err
	}
	return success(fmt.Sprintf("Added %s to cart!", item.Name)), nil
}

func (s *Session) Remove(itemID int) Notice {
	s.mu.Lock()
	s.cart.Remove(itemID)
	s.mu.Unlock()
	return success(msgRemoved)
}

// SetQuantity reports whether there is a notice to show: the line was
// removed, or the quantity was rejected (err is then non-nil).
func (s *Session) SetQuantity(itemID, quantity int) (Notice, bool, error) {
	if quantity <= 0 {
		return s.Remove(itemID), true, nil
	}
	s.mu.Lock()
	err := s.cart.SetQuantity(itemID, quantity)
	s.mu.Unlock()
	if err != nil {
		return failure(msgTooLarge), true, err
	}
	return Notice{}, false, nil
}

func (s *Session) SetIdentity(identity string) {
	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()
}

func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Checkout submits the current cart. The session is not locked during the
// webhook call. On success the cart and identity are reset; on any failure
// they are left untouched.
//
// A second checkout may start while one is still in flight for the same
// session; it is logged but not blocked.
func (s *Session) Checkout(ctx context.Context, sub Submitter) (Notice, *checkout.Receipt, error) {
	s.mu.Lock()
	req := checkout.Request{
		SessionID: s.ID,
		Identity:  s.identity,
		Cart:      s.cart.Clone(),
	}
	s.mu.Unlock()

	if err := checkout.Validate(req.Identity, req.Cart); err != nil {
		return failure(validationMessage(err)), nil, err
	}

	if n := s.inFlight.Add(1); n > 1 {
		slog.WarnContext(ctx, "checkout started while another is in flight", "session_id", s.ID, "in_flight", n)
	}
	defer s.inFlight.Add(-1)

	receipt, err := sub.Submit(ctx, req)
	if err != nil {
		var vErr *checkout.ValidationError
		if errors.As(err, &vErr) {
			return failure(vErr.Message), nil, err
		}
		return failure(checkout.FailureMessage), nil, err
	}

	s.mu.Lock()
	s.cart.Clear()
	s.identity = ""
	s.mu.Unlock()

	return success(checkout.SuccessMessage), receipt, nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

func validationMessage(err error) string {
	var vErr *checkout.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	return err.Error()
}
