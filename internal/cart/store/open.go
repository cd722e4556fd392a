package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Supported storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config selects and configures a storage backend.
type Config struct {
	Driver        string
	MaxValueBytes int
	FileDir       string
	SQLitePath    string
	Redis         RedisConfig
	DatabaseURL   string
	ConnTimeout   time.Duration
	// Breaker guards the remote drivers (redis, postgres).
	Breaker BreakerConfig
	Logger  *slog.Logger
}

// Open creates the Store selected by cfg.Driver, wrapped with the configured quota.
// Remote drivers are additionally wrapped with the circuit breaker.
func Open(ctx context.Context, cfg Config) (Store, error) {
	s, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverRedis || cfg.Driver == DriverPostgres {
		logger := cfg.Logger
		if logger == nil {
			logger = slog.Default()
		}
		s = WithBreaker(s, cfg.Driver, cfg.Breaker, logger.With("component", "store"))
	}
	return WithQuota(s, cfg.MaxValueBytes), nil
}

func open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewInMemoryStore(), nil
	case DriverFile:
		return NewFileStore(cfg.FileDir)
	case DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case DriverRedis:
		connCtx, cancel := context.WithTimeout(ctx, connTimeout(cfg))
		defer cancel()
		return NewRedisStore(connCtx, cfg.Redis)
	case DriverPostgres:
		pool, err := newDbPool(ctx, cfg.DatabaseURL, connTimeout(cfg))
		if err != nil {
			return nil, err
		}
		if err := MigratePostgres(cfg.DatabaseURL); err != nil {
			pool.Close()
			return nil, err
		}
		return NewPgStore(pool), nil
	default:
		return nil, fmt.Errorf("%w: %q", carterrors.ErrUnknownDriver, cfg.Driver)
	}
}

func connTimeout(cfg Config) time.Duration {
	if cfg.ConnTimeout <= 0 {
		return 10 * time.Second
	}
	return cfg.ConnTimeout
}

// newDbPool creates a new database connection pool and pings it to fail early.
func newDbPool(ctx context.Context, url string, connectTimeout time.Duration) (*pgxpool.Pool, error) {
	poolCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	dbPool, errPool := pgxpool.New(poolCtx, url)
	if errPool != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", errPool)
	}
	if err := dbPool.Ping(poolCtx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return dbPool, nil
}
