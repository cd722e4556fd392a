package service

import (
	"github.com/abgdnv/shopcart/internal/cart"
	"github.com/abgdnv/shopcart/internal/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// priceDecimals is the number of decimals prices are rendered with.
const priceDecimals = 2

// ProductDto represents the data transfer object for a catalog product.
type ProductDto struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	ImageRef  string `json:"image_ref"`
}

// AddItemDto is the request body of an add-item call.
type AddItemDto struct {
	ProductID int `json:"product_id" validate:"required,min=1"`
}

// LineDto is one line of a cart.
type LineDto struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	ImageRef  string `json:"image_ref"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

// CartDto represents the data transfer object for a cart with its derived totals.
type CartDto struct {
	ID             uuid.UUID `json:"id"`
	Items          []LineDto `json:"items"`
	TotalItemCount int       `json:"total_item_count"`
	TotalPrice     string    `json:"total_price"`
}

func formatPrice(d decimal.Decimal) string {
	return d.StringFixed(priceDecimals)
}

// toProductDto converts a catalog.Product to a ProductDto.
func toProductDto(p catalog.Product) ProductDto {
	return ProductDto{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: formatPrice(p.UnitPrice),
		ImageRef:  p.ImageRef,
	}
}

// toCartDto converts a cart.Cart to a CartDto.
func toCartDto(id uuid.UUID, c cart.Cart) CartDto {
	items := make([]LineDto, len(c.Lines))
	for i, l := range c.Lines {
		items[i] = LineDto{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			UnitPrice: formatPrice(l.Product.UnitPrice),
			ImageRef:  l.Product.ImageRef,
			Quantity:  l.Quantity,
			LineTotal: formatPrice(l.Total()),
		}
	}
	return CartDto{
		ID:             id,
		Items:          items,
		TotalItemCount: c.TotalItemCount(),
		TotalPrice:     formatPrice(c.TotalPrice()),
	}
}
