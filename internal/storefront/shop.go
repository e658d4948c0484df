// Package storefront owns the application state of the shop: one Session per
// visitor, the catalog they buy from and the checkout path.
package storefront

import (
	"context"
	"errors"

	"github.com/jcmexdev/coin-storefront/internal/cart"
	"github.com/jcmexdev/coin-storefront/internal/catalog"
	"github.com/jcmexdev/coin-storefront/internal/checkout"
)

// Catalog is the subset of *catalog.Catalog the shop needs.
type Catalog interface {
	State() catalog.State
	Item(id int) (catalog.Item, bool)
	Reload(ctx context.Context) catalog.State
}

// ErrUnknownItem is returned when an item ID is not in the loaded catalog.
var ErrUnknownItem = errors.New("storefront: unknown item")

type Shop struct {
	Catalog   Catalog
	Sessions  *Store
	Builder   cart.Builder
	Submitter Submitter
}

func NewShop(c Catalog, sessions *Store, builder cart.Builder, sub Submitter) *Shop {
	return &Shop{Catalog: c, Sessions: sessions, Builder: builder, Submitter: sub}
}

// AddItem adds a catalog item by ID.
func (sh *Shop) AddItem(s *Session, itemID, quantity int) (Notice, error) {
	item, ok := sh.Catalog.Item(itemID)
	if !ok {
		return failure(msgUnknownItem), ErrUnknownItem
	}
	if quantity < 1 {
		quantity = 1
	}
	return s.Add(item, quantity)
}

// AddCustom adds a synthetic item for a bulk quantity of coins. Quantities
// under the minimum leave the cart unchanged.
func (sh *Shop) AddCustom(s *Session, quantity int) (Notice, error) {
	item, err := sh.Builder.Build(quantity)
	if err != nil {
		return failure(err.Error()), err
	}
	return s.Add(item, 1)
}

func (sh *Shop) Checkout(ctx context.Context, s *Session) (Notice, *checkout.Receipt, error) {
	return s.Checkout(ctx, sh.Submitter)
}
