package store

import (
	"context"
	"testing"

	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_WithQuota(t *testing.T) {
	testCases := []struct {
		name        string
		limit       int
		value       string
		expectError error
	}{
		{name: "Success - below limit", limit: 10, value: "12345"},
		{name: "Success - exactly at limit", limit: 5, value: "12345"},
		{name: "Success - no limit", limit: 0, value: "a long value without limit"},
		{name: "Error - above limit", limit: 4, value: "12345", expectError: carterrors.ErrQuotaExceeded},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			ctx := context.Background()
			s := WithQuota(NewInMemoryStore(), tc.limit)
			// when
			err := s.Set(ctx, "k", []byte(tc.value))
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				_, getErr := s.Get(ctx, "k")
				assert.ErrorIs(t, getErr, carterrors.ErrNotFound, "rejected value must not be stored")
				return
			}
			require.NoError(t, err)
			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, tc.value, string(got))
		})
	}
}
