package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tilly/internal/money"
)

// LineItem is one sellable line of the active cart. A line belongs to exactly
// one cart; snapshots copy it by value.
type LineItem struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Name      string
	UnitPrice money.Money
	Quantity  int64
	Discount  money.Money
}

// Gross returns unit price times quantity, before the line discount.
func (li LineItem) Gross() money.Money {
	return li.UnitPrice.Mul(li.Quantity)
}

// Net returns the line amount after the line discount.
func (li LineItem) Net() money.Money {
	return li.Gross().Sub(li.Discount)
}

// ItemParams identifies what is being added to a cart.
type ItemParams struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice money.Money
}

// Totals is the derived money state of a cart, recomputed on every query.
type Totals struct {
	Subtotal money.Money
	Tax      money.Money
	Total    money.Money
}

// Cart holds the ordered line items of the active register session.
// It is not safe for concurrent use; a register has one active cart.
type Cart struct {
	taxRatePercent decimal.Decimal
	items          []LineItem
}

func New(taxRatePercent decimal.Decimal) *Cart {
	return &Cart{taxRatePercent: taxRatePercent}
}

// AddItem merges the quantity into an existing line for the same product, or
// appends a new line. The updated line is returned.
func (c *Cart) AddItem(p ItemParams, qty int64) (LineItem, error) {
	if qty <= 0 {
		return LineItem{}, ErrInvalidQuantity
	}

	for i := range c.items {
		if c.items[i].ProductID == p.ProductID {
			c.items[i].Quantity += qty
			return c.items[i], nil
		}
	}

	line := LineItem{
		ID:        uuid.New(),
		ProductID: p.ProductID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Quantity:  qty,
	}
	c.items = append(c.items, line)

	return line, nil
}

// SetQuantity adjusts a line to an absolute quantity. Zero removes the line.
func (c *Cart) SetQuantity(lineID uuid.UUID, qty int64) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}

	for i := range c.items {
		if c.items[i].ID != lineID {
			continue
		}

		if qty == 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}

		c.items[i].Quantity = qty

		return nil
	}

	return ErrLineNotFound
}

// SetDiscount sets the absolute discount amount on a line. The discount may
// not be negative or exceed the line gross, so totals never go below zero.
func (c *Cart) SetDiscount(lineID uuid.UUID, discount money.Money) error {
	if discount.IsNegative() {
		return ErrInvalidDiscount
	}

	for i := range c.items {
		if c.items[i].ID != lineID {
			continue
		}

		if discount.GreaterThan(c.items[i].Gross()) {
			return ErrInvalidDiscount
		}

		c.items[i].Discount = discount

		return nil
	}

	return ErrLineNotFound
}

func (c *Cart) RemoveItem(lineID uuid.UUID) error {
	for i := range c.items {
		if c.items[i].ID == lineID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}

	return ErrLineNotFound
}

// Clear empties the cart. Used after a successful checkout and when the cart
// moves to the held queue.
func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

func (c *Cart) TaxRatePercent() decimal.Decimal { return c.taxRatePercent }

// Lines returns a copy of the line items in insertion order.
func (c *Cart) Lines() []LineItem {
	lines := make([]LineItem, len(c.items))
	copy(lines, c.items)

	return lines
}

// Totals recomputes subtotal, tax, and total from the current lines. There is
// no cached state to go stale. Tax is rounded to the cent, half away from
// zero.
func (c *Cart) Totals() Totals {
	subtotal := money.Zero()
	for i := range c.items {
		subtotal = subtotal.Add(c.items[i].Net())
	}

	tax := subtotal.Percent(c.taxRatePercent).RoundCents()

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Snapshot returns an independent deep copy of the cart. Mutating the
// original afterwards does not affect the copy.
func (c *Cart) Snapshot() *Cart {
	return &Cart{
		taxRatePercent: c.taxRatePercent,
		items:          c.Lines(),
	}
}
