package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
	_ "modernc.org/sqlite"
)

const (
	sqliteSelectValue = `SELECT value FROM cart_state WHERE key = ?`
	sqliteUpsertValue = `INSERT INTO cart_state (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// SQLiteStore persists values in a single SQLite file.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens the SQLite file at path and applies embedded migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrateSQLite(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Get returns the value stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, carterrors.ErrStoreClosed
	}
	var value []byte
	if err := s.sqlDB.QueryRowContext(ctx, sqliteSelectValue, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, carterrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", carterrors.ErrFailedToReadCart, err)
	}
	return value, nil
}

// Set upserts value under key.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return carterrors.ErrStoreClosed
	}
	if _, err := s.sqlDB.ExecContext(ctx, sqliteUpsertValue, key, value, time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("%w: %w", carterrors.ErrFailedToWriteCart, err)
	}
	return nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
