package cart

import (
	"errors"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/jcmexdev/coin-storefront/internal/catalog"
)

// CustomItemID is reserved for items built from a user-chosen quantity. It
// never collides with catalog IDs, which are positive.
const CustomItemID = -1

const customImageURL = "/images/coins_custom.svg"

var ErrBelowMinimum = errors.New("custom quantity below minimum")

// MinimumError is returned by Builder.Build for quantities under the minimum.
type MinimumError struct {
	Minimum int
}

func (e *MinimumError) Error() string {
	return fmt.Sprintf("Minimum quantity is %d coins", e.Minimum)
}

func (e *MinimumError) Is(target error) bool { return target == ErrBelowMinimum }

// MaximumError is returned by Builder.Build for quantities whose price does
// not fit in an int.
type MaximumError struct {
	Maximum int
}

func (e *MaximumError) Error() string {
	return fmt.Sprintf("Maximum quantity is %s coins", humanize.Comma(int64(e.Maximum)))
}

func (e *MaximumError) Is(target error) bool { return target == ErrQuantityTooLarge }

// Builder prices bulk coin orders that are not part of the catalog.
type Builder struct {
	Multiplier int
	Minimum    int
}

func NewBuilder(multiplier, minimum int) Builder {
	return Builder{Multiplier: multiplier, Minimum: minimum}
}

// Build returns the synthetic catalog item for quantity coins.
func (b Builder) Build(quantity int) (catalog.Item, error) {
	if quantity < b.Minimum {
		return catalog.Item{}, &MinimumError{Minimum: b.Minimum}
	}
	if limit := b.Maximum(); quantity > limit {
		return catalog.Item{}, &MaximumError{Maximum: limit}
	}
	return catalog.Item{
		ID:       CustomItemID,
		Coins:    quantity,
		Price:    b.Quote(quantity),
		ImageURL: customImageURL,
		Name:     fmt.Sprintf("%s Coins (Custom)", humanize.Comma(int64(quantity))),
	}, nil
}

// Maximum is the largest quantity whose price fits in an int.
func (b Builder) Maximum() int {
	if b.Multiplier <= 1 {
		return math.MaxInt
	}
	return math.MaxInt / b.Multiplier
}

// Quote is the credit price of quantity coins. Callers keep quantity within
// Maximum.
func (b Builder) Quote(quantity int) int {
	return quantity * b.Multiplier
}
