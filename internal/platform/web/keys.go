package web

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

type cartIDKey struct{}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and a boolean indicating whether it was found.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// WithCartID adds a cart ID to the context.
func WithCartID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, cartIDKey{}, id)
}

// CartIDFromContext retrieves the cart ID from the context.
func CartIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(cartIDKey{}).(uuid.UUID)
	return id, ok
}
