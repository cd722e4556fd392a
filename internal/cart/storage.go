package cart

import (
	"context"
	"errors"
	"fmt"

	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
	"github.com/abgdnv/shopcart/internal/cart/store"
)

// DefaultKey is the namespaced key the cart is persisted under.
const DefaultKey = "justinchats-cart"

// Storage persists a single cart.
type Storage interface {
	// Load returns the persisted cart. The boolean is false when nothing is stored.
	// Returns ErrMalformedCart if the stored value cannot be decoded.
	Load(ctx context.Context) (Cart, bool, error)

	// Save overwrites the persisted cart.
	Save(ctx context.Context, c Cart) error
}

// kvStorage implements Storage on top of a byte-level key-value store.
type kvStorage struct {
	kv  store.Store
	key string
}

// NewStorage creates a Storage that keeps the cart under key in kv.
func NewStorage(kv store.Store, key string) Storage {
	return &kvStorage{kv: kv, key: key}
}

// SessionKey returns the storage key of the cart owned by session.
func SessionKey(base, session string) string {
	return fmt.Sprintf("%s:%s", base, session)
}

// Load reads and decodes the cart stored under the key.
func (s *kvStorage) Load(ctx context.Context) (Cart, bool, error) {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, carterrors.ErrNotFound) {
			return Cart{}, false, nil
		}
		return Cart{}, false, err
	}
	c, err := Decode(data)
	if err != nil {
		return Cart{}, false, err
	}
	return c, true, nil
}

// Save encodes the cart and writes it under the key.
func (s *kvStorage) Save(ctx context.Context, c Cart) error {
	data, err := Encode(c)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key, data)
}
