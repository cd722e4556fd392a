// Package catalog provides the static product catalog of the shop.
package catalog

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// DefaultSize is the number of products in the reference catalog.
const DefaultSize = 30

// imageVariants is the number of placeholder images the products cycle through.
const imageVariants = 5

// Product represents a read-only product entity of the catalog.
type Product struct {
	ID        int
	Name      string
	UnitPrice decimal.Decimal
	ImageRef  string
}

// Catalog is an ordered, immutable list of products with contiguous ids starting at 1.
type Catalog struct {
	products []Product
}

// New creates a deterministic catalog of size products, all priced at 20.
func New(size int) *Catalog {
	products := make([]Product, 0, size)
	for i := range size {
		products = append(products, Product{
			ID:        i + 1,
			Name:      fmt.Sprintf("Example Item %d", i+1),
			UnitPrice: decimal.NewFromInt(20),
			ImageRef:  fmt.Sprintf("/placeholder/product-%d.jpg", (i%imageVariants)+1),
		})
	}
	return &Catalog{products: products}
}

// All returns a copy of all products in catalog order.
func (c *Catalog) All() []Product {
	list := make([]Product, len(c.products))
	copy(list, c.products)
	return list
}

// FindByID returns the product with the given id.
// Returns ErrProductNotFound if the id is outside the catalog.
func (c *Catalog) FindByID(id int) (Product, error) {
	// ids are contiguous, so the id doubles as a 1-based index
	if id < 1 || id > len(c.products) {
		return Product{}, ErrProductNotFound
	}
	return c.products[id-1], nil
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}
