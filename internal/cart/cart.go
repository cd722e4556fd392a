// Package cart implements the shopping cart state and its persistence contract.
package cart

import (
	"slices"

	"github.com/abgdnv/shopcart/internal/catalog"
	"github.com/shopspring/decimal"
)

// Line is a single cart entry. Quantity is always >= 1.
type Line struct {
	Product  catalog.Product
	Quantity int
}

// Total returns unit price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.Product.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an insertion-ordered list of lines with at most one line per product id.
// The zero value is an empty cart.
type Cart struct {
	Lines []Line
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Find returns the line for productID, if present.
func (c Cart) Find(productID int) (Line, bool) {
	i := c.index(productID)
	if i < 0 {
		return Line{}, false
	}
	return c.Lines[i], true
}

// TotalItemCount returns the sum of all quantities.
func (c Cart) TotalItemCount() int {
	count := 0
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// TotalPrice returns the sum of unit price times quantity over all lines.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// Clone returns a deep copy of the cart.
func (c Cart) Clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	return Cart{Lines: slices.Clone(c.Lines)}
}

func (c Cart) index(productID int) int {
	return slices.IndexFunc(c.Lines, func(l Line) bool {
		return l.Product.ID == productID
	})
}

// withAdded returns a new cart with one more unit of p.
func (c Cart) withAdded(p catalog.Product) Cart {
	next := c.Clone()
	if i := next.index(p.ID); i >= 0 {
		next.Lines[i].Quantity++
		return next
	}
	next.Lines = append(next.Lines, Line{Product: p, Quantity: 1})
	return next
}

// withRemoved returns a new cart with one less unit of productID.
// A line reaching zero is dropped.
func (c Cart) withRemoved(productID int) Cart {
	i := c.index(productID)
	if i < 0 {
		return c.Clone()
	}
	next := c.Clone()
	if next.Lines[i].Quantity > 1 {
		next.Lines[i].Quantity--
		return next
	}
	next.Lines = slices.Delete(next.Lines, i, i+1)
	if len(next.Lines) == 0 {
		next.Lines = nil
	}
	return next
}
