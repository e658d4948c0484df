// Package cart holds the in-memory shopping cart of a single visitor.
//
// A Cart keeps at most one Line per item ID, in the order the items were
// first added. A line never has a quantity below one: setting a quantity of
// zero or less removes the line instead.
package cart

import (
	"errors"
	"math"

	"github.com/jcmexdev/coin-storefront/internal/catalog"
)

// ErrQuantityTooLarge is returned when a quantity would push a line or cart
// total past the int range.
var ErrQuantityTooLarge = errors.New("quantity too large")

// Line is one item in the cart together with how many of it were ordered.
type Line struct {
	Item     catalog.Item
	Quantity int
}

func (l Line) Coins() int { return l.Item.Coins * l.Quantity }

func (l Line) Price() int { return l.Item.Price * l.Quantity }

// Cart is not safe for concurrent use; storefront.Session serializes access.
type Cart struct {
	lines []Line
	index map[int]int // item id -> position in lines
}

func New() *Cart {
	return &Cart{index: make(map[int]int)}
}

// Add increments the line for item.ID by quantity, creating it if needed.
// Non-positive quantities are ignored. An existing line keeps its item.
func (c *Cart) Add(item catalog.Item, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	next, ok := addInt(c.Quantity(item.ID), quantity)
	if !ok {
		return ErrQuantityTooLarge
	}
	pos, exists := c.index[item.ID]
	if exists {
		item = c.lines[pos].Item
	}
	if !c.fits(item, next) {
		return ErrQuantityTooLarge
	}

	if exists {
		c.lines[pos].Quantity = next
		return nil
	}
	c.index[item.ID] = len(c.lines)
	c.lines = append(c.lines, Line{Item: item, Quantity: quantity})
	return nil
}

// Remove deletes the line for itemID. Removing an absent item is a no-op.
// It reports whether a line was removed.
func (c *Cart) Remove(itemID int) bool {
	pos, ok := c.index[itemID]
	if !ok {
		return false
	}
	c.lines = append(c.lines[:pos], c.lines[pos+1:]...)
	delete(c.index, itemID)
	for i := pos; i < len(c.lines); i++ {
		c.index[c.lines[i].Item.ID] = i
	}
	return true
}

// SetQuantity overwrites the quantity of an existing line. A quantity of zero
// or less removes the line.
func (c *Cart) SetQuantity(itemID, quantity int) error {
	if quantity <= 0 {
		c.Remove(itemID)
		return nil
	}
	pos, ok := c.index[itemID]
	if !ok {
		return nil
	}
	if !c.fits(c.lines[pos].Item, quantity) {
		return ErrQuantityTooLarge
	}
	c.lines[pos].Quantity = quantity
	return nil
}

// fits reports whether item at quantity, together with the other lines, keeps
// every line and cart total within the int range.
func (c *Cart) fits(item catalog.Item, quantity int) bool {
	coins, ok := mulInt(item.Coins, quantity)
	if !ok {
		return false
	}
	price, ok := mulInt(item.Price, quantity)
	if !ok {
		return false
	}
	for _, l := range c.lines {
		if l.Item.ID == item.ID {
			continue
		}
		if coins, ok = addInt(coins, l.Coins()); !ok {
			return false
		}
		if price, ok = addInt(price, l.Price()); !ok {
			return false
		}
	}
	return true
}

func mulInt(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	return p, p/b == a && !(a == -1 && b == math.MinInt) && !(b == -1 && a == math.MinInt)
}

func addInt(a, b int) (int, bool) {
	s := a + b
	return s, (s > a) == (b > 0)
}

// Quantity returns the quantity held for itemID, or zero.
func (c *Cart) Quantity(itemID int) int {
	if pos, ok := c.index[itemID]; ok {
		return c.lines[pos].Quantity
	}
	return 0
}

func (c *Cart) TotalCoins() int {
	total := 0
	for _, l := range c.lines {
		total += l.Coins()
	}
	return total
}

func (c *Cart) TotalPrice() int {
	total := 0
	for _, l := range c.lines {
		total += l.Price()
	}
	return total
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Clone returns an independent copy of the cart.
func (c *Cart) Clone() *Cart {
	out := New()
	for _, l := range c.lines {
		_ = out.Add(l.Item, l.Quantity)
	}
	return out
}

func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[int]int)
}
