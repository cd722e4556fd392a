package service

import (
	"context"
	"errors"

	"github.com/abgdnv/shopcart/internal/cart"
	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records cart activity. A nil *Metrics is a no-op.
type Metrics struct {
	operations      *prometheus.CounterVec
	itemCount       prometheus.Histogram
	persistFailures *prometheus.CounterVec
	restores        *prometheus.CounterVec
}

// NewMetrics registers the cart metrics on the provided registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Completed cart operations.",
	}, []string{"operation"})
	itemCount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_item_count",
		Help:    "Total item count of a cart after each operation.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8),
	})
	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Failed cart writes, by reason.",
	}, []string{"reason"})
	restores := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_restores_total",
		Help: "Cart restores, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(operations, itemCount, persistFailures, restores)
	return &Metrics{
		operations:      operations,
		itemCount:       itemCount,
		persistFailures: persistFailures,
		restores:        restores,
	}
}

// Observe is a cart.Observer that counts operations and tracks cart sizes.
func (m *Metrics) Observe(e cart.Event) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(string(e.Operation)).Inc()
	m.itemCount.Observe(float64(e.ItemCount))
}

// InstrumentStorage wraps s so that restore outcomes and persist failures are counted.
func (m *Metrics) InstrumentStorage(s cart.Storage) cart.Storage {
	if m == nil {
		return s
	}
	return &instrumentedStorage{next: s, metrics: m}
}

type instrumentedStorage struct {
	next    cart.Storage
	metrics *Metrics
}

func (s *instrumentedStorage) Load(ctx context.Context) (cart.Cart, bool, error) {
	c, found, err := s.next.Load(ctx)
	outcome := "restored"
	switch {
	case errors.Is(err, carterrors.ErrMalformedCart):
		outcome = "malformed"
	case err != nil:
		outcome = "error"
	case !found:
		outcome = "empty"
	}
	s.metrics.restores.WithLabelValues(outcome).Inc()
	return c, found, err
}

func (s *instrumentedStorage) Save(ctx context.Context, c cart.Cart) error {
	err := s.next.Save(ctx, c)
	if err != nil {
		reason := "error"
		if errors.Is(err, carterrors.ErrQuotaExceeded) {
			reason = "quota"
		}
		s.metrics.persistFailures.WithLabelValues(reason).Inc()
	}
	return err
}
