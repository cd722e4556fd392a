// Package store provides key-value storage backends for persisted carts.
package store

import "context"

// Store is a byte-level key-value store.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, file, redis, database).
type Store interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if nothing is stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases the resources held by the store.
	Close() error
}
