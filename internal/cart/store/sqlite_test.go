package store

import (
	"context"
	"path/filepath"
	"testing"

	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cart.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err, "OpenSQLite should not return an error")
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s, path
}

func Test_SQLiteStore_GetMissing(t *testing.T) {
	// given
	s, _ := openTestSQLite(t)
	// when
	_, err := s.Get(context.Background(), "missing")
	// then
	assert.ErrorIs(t, err, carterrors.ErrNotFound)
}

func Test_SQLiteStore_Upsert(t *testing.T) {
	// given
	ctx := context.Background()
	s, _ := openTestSQLite(t)

	// when
	require.NoError(t, s.Set(ctx, "k", []byte("first")))
	require.NoError(t, s.Set(ctx, "k", []byte("second")))

	// then
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func Test_SQLiteStore_PersistsAcrossReopen(t *testing.T) {
	// given
	ctx := context.Background()
	s, path := openTestSQLite(t)
	require.NoError(t, s.Set(ctx, "k", []byte(`[]`)))
	require.NoError(t, s.Close())

	// when
	reopened, err := OpenSQLite(path)
	require.NoError(t, err, "migrations must be idempotent on reopen")
	defer func() { _ = reopened.Close() }()
	got, err := reopened.Get(ctx, "k")

	// then
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func Test_OpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)
}
