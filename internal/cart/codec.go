package cart

import (
	"bytes"
	"encoding/json"
	"fmt"

	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
	"github.com/abgdnv/shopcart/internal/catalog"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// storedLine is the persisted form of a Line. Product fields are duplicated into every
// line because the key-value store has no way to reference the catalog.
type storedLine struct {
	ID       int         `json:"id" validate:"min=1"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price" validate:"required"`
	Image    string      `json:"image"`
	Quantity int         `json:"quantity" validate:"min=1"`
}

var lineValidator = validator.New()

// Encode serializes the cart into its persisted JSON form.
func Encode(c Cart) ([]byte, error) {
	lines := make([]storedLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, storedLine{
			ID:       l.Product.ID,
			Name:     l.Product.Name,
			Price:    json.Number(l.Product.UnitPrice.String()),
			Image:    l.Product.ImageRef,
			Quantity: l.Quantity,
		})
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return data, nil
}

// Decode parses a persisted cart. Any value that does not satisfy the cart invariants
// is rejected with ErrMalformedCart.
func Decode(data []byte) (Cart, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Cart{}, fmt.Errorf("empty value: %w", carterrors.ErrMalformedCart)
	}
	var lines []storedLine
	if err := json.Unmarshal(trimmed, &lines); err != nil {
		return Cart{}, fmt.Errorf("%w: %v", carterrors.ErrMalformedCart, err)
	}
	if len(lines) == 0 {
		return Cart{}, nil
	}

	seen := make(map[int]struct{}, len(lines))
	c := Cart{Lines: make([]Line, 0, len(lines))}
	for i, sl := range lines {
		if err := lineValidator.Struct(sl); err != nil {
			return Cart{}, fmt.Errorf("%w: line %d: %v", carterrors.ErrMalformedCart, i, err)
		}
		if _, dup := seen[sl.ID]; dup {
			return Cart{}, fmt.Errorf("%w: duplicate product id %d", carterrors.ErrMalformedCart, sl.ID)
		}
		seen[sl.ID] = struct{}{}

		price, err := decimal.NewFromString(sl.Price.String())
		if err != nil {
			return Cart{}, fmt.Errorf("%w: line %d: price %q: %v", carterrors.ErrMalformedCart, i, sl.Price, err)
		}
		if price.IsNegative() {
			return Cart{}, fmt.Errorf("%w: line %d: negative price", carterrors.ErrMalformedCart, i)
		}
		c.Lines = append(c.Lines, Line{
			Product: catalog.Product{
				ID:        sl.ID,
				Name:      sl.Name,
				UnitPrice: price,
				ImageRef:  sl.Image,
			},
			Quantity: sl.Quantity,
		})
	}
	return c, nil
}
