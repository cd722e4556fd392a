package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker in front of a remote store.
type BreakerConfig struct {
	Enabled             bool
	ConsecutiveFailures uint32
	ErrorRatePercent    int
	OpenTimeout         time.Duration
}

// breaker fails fast with ErrStoreUnavailable while the backend keeps failing.
type breaker struct {
	Store
	cb *gobreaker.CircuitBreaker[[]byte]
}

// WithBreaker wraps s in a circuit breaker. A disabled config returns s unchanged.
// It trips after cfg.ConsecutiveFailures failures in a row, or once at least that many
// calls were made and the failure rate reaches cfg.ErrorRatePercent.
// Misses and canceled calls do not count as failures.
func WithBreaker(s Store, name string, cfg BreakerConfig, logger *slog.Logger) Store {
	if !cfg.Enabled {
		return s
	}
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total >= cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 >= float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, carterrors.ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Storage circuit breaker changed state", "store", name, "from", from.String(), "to", to.String())
		},
	}
	return &breaker{Store: s, cb: gobreaker.NewCircuitBreaker[[]byte](st)}
}

// Get reads through the breaker.
func (b *breaker) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := b.cb.Execute(func() ([]byte, error) {
		return b.Store.Get(ctx, key)
	})
	return value, translateBreakerErr(err)
}

// Set writes through the breaker.
func (b *breaker) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.Store.Set(ctx, key, value)
	})
	return translateBreakerErr(err)
}

func translateBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", carterrors.ErrStoreUnavailable, err)
	}
	return err
}
