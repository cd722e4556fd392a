package store

import (
	"context"
	"fmt"

	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
)

// quota rejects values larger than limit bytes.
type quota struct {
	Store
	limit int
}

// WithQuota wraps s so that Set fails with ErrQuotaExceeded for values above limit bytes.
// A limit <= 0 returns s unchanged.
func WithQuota(s Store, limit int) Store {
	if limit <= 0 {
		return s
	}
	return &quota{Store: s, limit: limit}
}

// Set stores value if it fits in the quota.
func (q *quota) Set(ctx context.Context, key string, value []byte) error {
	if len(value) > q.limit {
		return fmt.Errorf("value of %d bytes exceeds limit of %d: %w", len(value), q.limit, carterrors.ErrQuotaExceeded)
	}
	return q.Store.Set(ctx, key, value)
}
