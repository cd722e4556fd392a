package store

import (
	"context"
	"errors"
	"fmt"

	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgSelectValue = `SELECT value FROM cart_state WHERE key = $1`
	pgUpsertValue = `INSERT INTO cart_state (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// PgStore implements Store on the cart_state table.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of Store using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// Get returns the value stored under key.
func (p *PgStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := p.db.QueryRow(ctx, pgSelectValue, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, carterrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", carterrors.ErrFailedToReadCart, err)
	}
	return value, nil
}

// Set upserts value under key.
func (p *PgStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := p.db.Exec(ctx, pgUpsertValue, key, value); err != nil {
		return fmt.Errorf("%w: %w", carterrors.ErrFailedToWriteCart, err)
	}
	return nil
}

// Close closes the connection pool.
func (p *PgStore) Close() error {
	p.db.Close()
	return nil
}
