package cart

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
	"github.com/abgdnv/shopcart/internal/catalog"
	"github.com/shopspring/decimal"
)

// Operation names a cart mutation.
type Operation string

const (
	OpAdd    Operation = "add"
	OpRemove Operation = "remove"
	OpClear  Operation = "clear"
)

// Event is delivered to observers after every completed operation.
type Event struct {
	Operation  Operation
	ItemCount  int
	TotalPrice decimal.Decimal
}

// Observer receives cart events.
type Observer func(Event)

// Manager owns one cart and keeps it in sync with its Storage.
// All methods are safe for concurrent use; operations run one at a time.
type Manager struct {
	mu         sync.Mutex
	storage    Storage
	logger     *slog.Logger
	cart       Cart
	restored   bool
	restoreErr error
	observers  []subscription
	nextObsID  int
}

type subscription struct {
	id int
	fn Observer
}

// NewManager creates a Manager with an empty cart bound to storage.
func NewManager(storage Storage, logger *slog.Logger) *Manager {
	return &Manager{
		storage: storage,
		logger:  logger.With("component", "cart"),
	}
}

// Restore loads the persisted cart into memory. Only the first call reads storage.
// A missing, unreadable or malformed value leaves the cart empty.
// After an unreadable value the manager no longer writes to storage, see RestoreErr.
func (m *Manager) Restore(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreLocked(ctx)
}

func (m *Manager) restoreLocked(ctx context.Context) {
	if m.restored {
		return
	}
	m.restored = true

	c, found, err := m.storage.Load(ctx)
	if err != nil {
		if errors.Is(err, carterrors.ErrMalformedCart) {
			m.logger.WarnContext(ctx, "Discarding malformed persisted cart", "error", err)
		} else {
			m.restoreErr = err
			m.logger.WarnContext(ctx, "Failed to load persisted cart, starting empty without persisting", "error", err)
		}
		return
	}
	if !found {
		m.logger.DebugContext(ctx, "No persisted cart found")
		return
	}
	m.cart = c
	m.logger.DebugContext(ctx, "Cart restored", "lines", len(c.Lines), "items", c.TotalItemCount())
}

// AddItem adds one unit of p and returns the updated cart.
func (m *Manager) AddItem(ctx context.Context, p catalog.Product) Cart {
	return m.apply(ctx, OpAdd, func(c Cart) Cart {
		return c.withAdded(p)
	})
}

// RemoveItem removes one unit of productID and returns the updated cart.
// Removing a product that is not in the cart leaves it unchanged.
func (m *Manager) RemoveItem(ctx context.Context, productID int) Cart {
	return m.apply(ctx, OpRemove, func(c Cart) Cart {
		return c.withRemoved(productID)
	})
}

// Clear empties the cart and returns it.
func (m *Manager) Clear(ctx context.Context) Cart {
	return m.apply(ctx, OpClear, func(Cart) Cart {
		return Cart{}
	})
}

// RestoreErr returns the storage error that kept the persisted cart from being read, if any.
// A malformed value is not reported: it is discarded and later overwritten.
func (m *Manager) RestoreErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restoreErr
}

// Cart returns a snapshot of the current cart.
func (m *Manager) Cart() Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Clone()
}

// Subscribe registers o for cart events and returns a function that removes it.
func (m *Manager) Subscribe(o Observer) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextObsID
	m.nextObsID++
	m.observers = append(m.observers, subscription{id: id, fn: o})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.observers = slices.DeleteFunc(m.observers, func(s subscription) bool {
			return s.id == id
		})
	}
}

// apply runs one operation: transition, persist, notify.
func (m *Manager) apply(ctx context.Context, op Operation, transition func(Cart) Cart) Cart {
	m.mu.Lock()
	m.restoreLocked(ctx)
	m.cart = transition(m.cart)
	snapshot := m.cart.Clone()
	m.persistLocked(ctx, op)
	observers := make([]Observer, 0, len(m.observers))
	for _, s := range m.observers {
		observers = append(observers, s.fn)
	}
	m.mu.Unlock()

	event := Event{
		Operation:  op,
		ItemCount:  snapshot.TotalItemCount(),
		TotalPrice: snapshot.TotalPrice(),
	}
	for _, o := range observers {
		o(event)
	}
	return snapshot
}

// persistLocked writes the cart. Failures are logged and otherwise ignored:
// the in-memory cart stays authoritative.
// Nothing is written when the stored cart could not be read, so it is never replaced blindly.
func (m *Manager) persistLocked(ctx context.Context, op Operation) {
	if m.restoreErr != nil {
		m.logger.WarnContext(ctx, "Skipping persist of a cart that could not be restored", "operation", op, "error", m.restoreErr)
		return
	}
	if err := m.storage.Save(ctx, m.cart); err != nil {
		m.logger.WarnContext(ctx, "Failed to persist cart", "operation", op, "error", err)
	}
}
