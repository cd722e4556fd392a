// Package app contains the application setup for the cart service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/shopcart/internal/cart/handler"
	"github.com/abgdnv/shopcart/internal/cart/service"
	"github.com/abgdnv/shopcart/internal/cart/store"
	"github.com/abgdnv/shopcart/internal/catalog"
	"github.com/abgdnv/shopcart/internal/config"
	"github.com/abgdnv/shopcart/internal/platform/server"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Dependencies struct {
	CatalogService service.CatalogService
	CartService    service.CartService
	Registry       *prometheus.Registry
	Health         *health.Server
	Logger         *slog.Logger
}

// SetupDependencies wires the services on top of kv.
func SetupDependencies(kv store.Store, key string, logger *slog.Logger) *Dependencies {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cat := catalog.New(catalog.DefaultSize)

	return &Dependencies{
		CatalogService: service.NewCatalogService(cat),
		CartService:    service.NewCartService(cat, kv, key, service.NewMetrics(registry), logger),
		Registry:       registry,
		Health:         health.NewServer(),
		Logger:         logger,
	}
}

// OpenStore opens the storage backend selected in cfg.
func OpenStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (store.Store, error) {
	kv, err := store.Open(ctx, store.Config{
		Driver:        cfg.Driver,
		MaxValueBytes: cfg.MaxValueBytes,
		FileDir:       cfg.File.Dir,
		SQLitePath:    cfg.SQLite.Path,
		Redis: store.RedisConfig{
			URL:          cfg.Redis.URL,
			Address:      cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.Timeout.Dial,
			ReadTimeout:  cfg.Redis.Timeout.Read,
			WriteTimeout: cfg.Redis.Timeout.Write,
			TTL:          cfg.Redis.TTL,
		},
		DatabaseURL: cfg.Postgres.URL,
		ConnTimeout: cfg.Postgres.Timeout,
		Breaker: store.BreakerConfig{
			Enabled:             cfg.Breaker.Enabled,
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
			ErrorRatePercent:    cfg.Breaker.ErrorRatePercent,
			OpenTimeout:         cfg.Breaker.OpenTimeout,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Driver, err)
	}
	return kv, nil
}

// SetupHttpHandler initializes the router and routes of the cart service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(AppName, deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes of the cart service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	cartHandler := handler.NewHandler(deps.CatalogService, deps.CartService, deps.Logger)
	cartHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))
}

// SetupHttpServer creates and configures an HTTP server for the cart service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

// SetupGrpcServer initializes the gRPC server exposing the standard health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	deps.Health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, server.HealthRegistration(deps.Health))
}

// AppName identifies the service in traces.
const AppName = "cart_service"

// ServiceName is the name the service reports in gRPC health checks.
const ServiceName = "shopcart.v1.CartService"
