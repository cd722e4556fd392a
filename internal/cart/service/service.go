// Package service provides the cart and catalog use cases behind the HTTP API.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/shopcart/internal/cart"
	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
	"github.com/abgdnv/shopcart/internal/cart/store"
	"github.com/abgdnv/shopcart/internal/catalog"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/abgdnv/shopcart/internal/cart/service"

// CatalogService exposes the read-only product catalog.
type CatalogService interface {
	// FindAll returns up to limit products starting at offset, in catalog order.
	// A limit of 0 means no limit.
	FindAll(ctx context.Context, offset, limit int) ([]ProductDto, error)

	// FindByID returns a single product.
	// Returns ErrProductNotFound if the id is outside the catalog.
	FindByID(ctx context.Context, id int) (*ProductDto, error)
}

// CartService manages carts identified by a cart id.
// Each call restores the cart from storage, applies one operation and persists the result.
type CartService interface {
	// Get returns the current cart. An unknown cart id yields an empty cart.
	Get(ctx context.Context, cartID uuid.UUID) (*CartDto, error)

	// AddItem adds one unit of the product to the cart.
	// Returns ErrProductNotFound if the product is not in the catalog.
	AddItem(ctx context.Context, cartID uuid.UUID, productID int) (*CartDto, error)

	// RemoveItem removes one unit of the product. Unknown products are ignored.
	RemoveItem(ctx context.Context, cartID uuid.UUID, productID int) (*CartDto, error)

	// Clear empties the cart.
	Clear(ctx context.Context, cartID uuid.UUID) (*CartDto, error)
}

// catalogService implements CatalogService.
type catalogService struct {
	catalog *catalog.Catalog
}

// NewCatalogService creates a new instance of CatalogService backed by cat.
func NewCatalogService(cat *catalog.Catalog) CatalogService {
	return &catalogService{catalog: cat}
}

// FindAll returns a page of products.
func (s *catalogService) FindAll(ctx context.Context, offset, limit int) ([]ProductDto, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	products := s.catalog.All()
	if offset >= len(products) {
		return []ProductDto{}, nil
	}
	products = products[offset:]
	if limit > 0 && limit < len(products) {
		products = products[:limit]
	}
	list := make([]ProductDto, len(products))
	for i, p := range products {
		list[i] = toProductDto(p)
	}
	return list, nil
}

// FindByID returns the product with the given id.
func (s *catalogService) FindByID(ctx context.Context, id int) (*ProductDto, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.catalog.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product %d: %w", id, err)
	}
	dto := toProductDto(p)
	return &dto, nil
}

// cartService implements CartService on top of a key-value store.
type cartService struct {
	catalog *catalog.Catalog
	kv      store.Store
	key     string
	metrics *Metrics
	locks   *stripedLocks
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewCartService creates a CartService that keeps each cart under key:<cart id> in kv.
// metrics may be nil.
func NewCartService(cat *catalog.Catalog, kv store.Store, key string, metrics *Metrics, logger *slog.Logger) CartService {
	return &cartService{
		catalog: cat,
		kv:      kv,
		key:     key,
		metrics: metrics,
		locks:   newStripedLocks(),
		tracer:  otel.Tracer(tracerName),
		logger:  logger.With("component", "service"),
	}
}

// Get restores the cart and returns it.
func (s *cartService) Get(ctx context.Context, cartID uuid.UUID) (*CartDto, error) {
	return s.run(ctx, "get", cartID, func(_ context.Context, m *cart.Manager) cart.Cart {
		return m.Cart()
	})
}

// AddItem adds one unit of productID.
func (s *cartService) AddItem(ctx context.Context, cartID uuid.UUID, productID int) (*CartDto, error) {
	p, err := s.catalog.FindByID(productID)
	if err != nil {
		return nil, fmt.Errorf("failed to add product %d: %w", productID, err)
	}
	return s.run(ctx, string(cart.OpAdd), cartID, func(ctx context.Context, m *cart.Manager) cart.Cart {
		return m.AddItem(ctx, p)
	})
}

// RemoveItem removes one unit of productID.
func (s *cartService) RemoveItem(ctx context.Context, cartID uuid.UUID, productID int) (*CartDto, error) {
	return s.run(ctx, string(cart.OpRemove), cartID, func(ctx context.Context, m *cart.Manager) cart.Cart {
		return m.RemoveItem(ctx, productID)
	})
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, cartID uuid.UUID) (*CartDto, error) {
	return s.run(ctx, string(cart.OpClear), cartID, func(ctx context.Context, m *cart.Manager) cart.Cart {
		return m.Clear(ctx)
	})
}

// run activates a manager for cartID while holding the cart's lock, restores it and applies op.
// The whole activation is recorded as one span named cart.<name>, and op runs under it.
// A cart whose stored value cannot be read is reported as ErrStoreUnavailable and op is not applied.
func (s *cartService) run(ctx context.Context, name string, cartID uuid.UUID, op func(ctx context.Context, m *cart.Manager) cart.Cart) (*CartDto, error) {
	ctx, span := s.tracer.Start(ctx, "cart."+name, trace.WithAttributes(attribute.String("cart.id", cartID.String())))
	defer span.End()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	unlock := s.locks.lock(cartID)
	defer unlock()

	var storage cart.Storage = cart.NewStorage(s.kv, cart.SessionKey(s.key, cartID.String()))
	if s.metrics != nil {
		storage = s.metrics.InstrumentStorage(storage)
	}
	m := cart.NewManager(storage, s.logger)
	if s.metrics != nil {
		m.Subscribe(s.metrics.Observe)
	}
	m.Restore(ctx)
	if err := m.RestoreErr(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to restore cart %s: %w: %w", cartID, carterrors.ErrStoreUnavailable, err)
	}

	c := op(ctx, m)
	span.SetAttributes(attribute.Int("cart.item_count", c.TotalItemCount()))
	dto := toCartDto(cartID, c)
	return &dto, nil
}
