package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
	"github.com/redis/go-redis/v9"
)

// RedisConfig has the connection settings for RedisStore.
// URL takes precedence over Address/Password/DB.
type RedisConfig struct {
	URL          string
	Address      string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TTL          time.Duration
}

// cmdable is the subset of the redis client used by RedisStore.
type cmdable interface {
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
}

// RedisStore implements Store on Redis strings.
type RedisStore struct {
	cmd cmdable
	raw *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{cmd: raw, raw: raw, ttl: cfg.TTL}, nil
}

func redisOptions(cfg RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Get returns the string stored at key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.cmd.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, carterrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", carterrors.ErrFailedToReadCart, err)
	}
	return data, nil
}

// Set stores value at key with the configured TTL (0 keeps it forever).
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.cmd.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", carterrors.ErrFailedToWriteCart, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}
