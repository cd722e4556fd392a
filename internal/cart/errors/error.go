// Package errors provides custom error types for cart-related operations.
package errors

import "errors"

var ErrMalformedCart = errors.New("malformed cart data")

var ErrNotFound = errors.New("key not found")
var ErrQuotaExceeded = errors.New("storage quota exceeded")
var ErrFailedToReadCart = errors.New("failed to read cart")
var ErrFailedToWriteCart = errors.New("failed to write cart")

var ErrStoreClosed = errors.New("store is closed")
var ErrUnknownDriver = errors.New("unknown storage driver")
var ErrStoreUnavailable = errors.New("store temporarily unavailable")
