// Package cart holds the shopper's in-progress order. It lives on the client
// side of the system: the server only builds one transiently at checkout.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"mataam/internal/catalog"
)

// Line is one product in the cart. Product is a snapshot taken when the line
// was first added; later catalog edits do not reach it.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Subtotal is price × quantity in minor units.
func (l Line) Subtotal() decimal.Decimal {
	return decimal.NewFromInt(l.Product.Price).Mul(l.Quantity)
}

// Cart is safe for concurrent use. The zero value is an empty, closed cart.
type Cart struct {
	mu           sync.Mutex
	lines        []Line
	cartOpen     bool
	checkoutOpen bool
}

func New() *Cart { return &Cart{} }

func (c *Cart) indexOf(productID int64) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// AddItem increases the quantity of an existing line or appends a new one.
// Non-positive quantities are ignored.
func (c *Cart) AddItem(p catalog.Product, qty decimal.Decimal) {
	if !qty.IsPositive() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(p.ID); i >= 0 {
		c.lines[i].Quantity = c.lines[i].Quantity.Add(qty)
		return
	}
	c.lines = append(c.lines, Line{Product: p, Quantity: qty})
}

// UpdateQuantity sets a line's quantity. qty <= 0 removes the line; an
// unknown product is a no-op.
func (c *Cart) UpdateQuantity(productID int64, qty decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	if !qty.IsPositive() {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return
	}
	c.lines[i].Quantity = qty
}

func (c *Cart) RemoveItem(productID int64) {
	c.UpdateQuantity(productID, decimal.Zero)
}

// Increment adds one unit step (0.5 for kilo, 1 otherwise).
func (c *Cart) Increment(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(productID); i >= 0 {
		l := &c.lines[i]
		l.Quantity = l.Quantity.Add(l.Product.UnitType.Step())
	}
}

// Decrement subtracts one unit step but never goes below a single step.
// Removing a line is done with RemoveItem.
func (c *Cart) Decrement(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	l := &c.lines[i]
	step := l.Product.UnitType.Step()
	next := l.Quantity.Sub(step)
	if next.LessThan(step) {
		next = step
	}
	l.Quantity = next
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// TotalItems is the sum of quantities, so half a kilo counts as 0.5.
func (c *Cart) TotalItems() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Quantity)
	}
	return sum
}

// TotalPrice is the sum of line subtotals in minor units. It is not rounded.
func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

func (c *Cart) CartOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cartOpen
}

func (c *Cart) SetCartOpen(open bool) {
	c.mu.Lock()
	c.cartOpen = open
	c.mu.Unlock()
}

func (c *Cart) CheckoutOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkoutOpen
}

func (c *Cart) SetCheckoutOpen(open bool) {
	c.mu.Lock()
	c.checkoutOpen = open
	c.mu.Unlock()
}
