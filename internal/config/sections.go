package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type HTTPConfig struct {
	Port           int `koanf:"port"`
	MaxHeaderBytes int `koanf:"maxHeaderBytes"`
	Timeout        struct {
		Read       time.Duration `koanf:"read"`
		Write      time.Duration `koanf:"write"`
		Idle       time.Duration `koanf:"idle"`
		ReadHeader time.Duration `koanf:"readHeader"`
	} `koanf:"timeout"`
}

func (c *HTTPConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.Port)
	}
	if c.Timeout.Read <= 0 {
		return fmt.Errorf("invalid HTTP server read timeout: %v", c.Timeout.Read)
	}
	if c.Timeout.Write <= 0 {
		return fmt.Errorf("invalid HTTP server write timeout: %v", c.Timeout.Write)
	}
	if c.Timeout.Idle <= 0 {
		return fmt.Errorf("invalid HTTP server idle timeout: %v", c.Timeout.Idle)
	}
	if c.Timeout.ReadHeader <= 0 {
		return fmt.Errorf("invalid HTTP server read header timeout: %v", c.Timeout.ReadHeader)
	}
	return nil
}

type GrpcServerConfig struct {
	Enabled           bool   `koanf:"enabled"`
	Port              string `koanf:"port"`
	ReflectionEnabled bool   `koanf:"reflection"`
}

func (c *GrpcServerConfig) Validate() error {
	if c.Enabled && c.Port == "" {
		return fmt.Errorf("gRPC port is not configured")
	}
	return nil
}

// Supported storage drivers, mirrored from the store package.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var drivers = []string{DriverMemory, DriverFile, DriverRedis, DriverPostgres, DriverSQLite}

type StorageConfig struct {
	Driver        string `koanf:"driver"`
	Key           string `koanf:"key"`
	MaxValueBytes int    `koanf:"maxValueBytes"`
	File          struct {
		Dir string `koanf:"dir"`
	} `koanf:"file"`
	SQLite struct {
		Path string `koanf:"path"`
	} `koanf:"sqlite"`
	Redis    RedisConfig    `koanf:"redis"`
	Postgres DatabaseConfig `koanf:"postgres"`
	Breaker  BreakerConfig  `koanf:"breaker"`
}

func (c *StorageConfig) Validate() error {
	if !slices.Contains(drivers, c.Driver) {
		return fmt.Errorf("unknown storage driver %q, expected one of %v", c.Driver, drivers)
	}
	if c.Key == "" {
		return fmt.Errorf("storage key is not configured")
	}
	if c.MaxValueBytes < 0 {
		return fmt.Errorf("invalid storage maxValueBytes: %d", c.MaxValueBytes)
	}
	switch c.Driver {
	case DriverFile:
		if c.File.Dir == "" {
			return fmt.Errorf("storage.file.dir is not configured")
		}
	case DriverSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is not configured")
		}
	case DriverRedis:
		if err := c.Redis.Validate(); err != nil {
			return err
		}
		return c.Breaker.Validate()
	case DriverPostgres:
		if err := c.Postgres.Validate(); err != nil {
			return err
		}
		return c.Breaker.Validate()
	}
	return nil
}

// BreakerConfig configures the circuit breaker in front of remote storage.
type BreakerConfig struct {
	Enabled             bool          `koanf:"enabled"`
	ConsecutiveFailures uint32        `koanf:"consecutiveFailures"`
	ErrorRatePercent    int           `koanf:"errorRatePercent"`
	OpenTimeout         time.Duration `koanf:"openTimeout"`
}

func (c *BreakerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ConsecutiveFailures == 0 {
		return fmt.Errorf("storage.breaker.consecutiveFailures must be greater than 0")
	}
	if c.ErrorRatePercent < 0 || c.ErrorRatePercent > 100 {
		return fmt.Errorf("storage.breaker.errorRatePercent must be between 0 and 100")
	}
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("storage.breaker.openTimeout must be greater than 0")
	}
	return nil
}

type RedisConfig struct {
	URL      string `koanf:"url"`
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	PoolSize int    `koanf:"poolSize"`
	Timeout  struct {
		Dial  time.Duration `koanf:"dial"`
		Read  time.Duration `koanf:"read"`
		Write time.Duration `koanf:"write"`
	} `koanf:"timeout"`
	TTL time.Duration `koanf:"ttl"`
}

func (c *RedisConfig) Validate() error {
	if c.URL == "" && c.Address == "" {
		return fmt.Errorf("redis url or address is not configured")
	}
	if c.URL != "" && !strings.HasPrefix(c.URL, "redis://") && !strings.HasPrefix(c.URL, "rediss://") {
		return fmt.Errorf("redis URL must start with 'redis://' or 'rediss://'")
	}
	if c.DB < 0 {
		return fmt.Errorf("invalid redis db: %d", c.DB)
	}
	if c.TTL < 0 {
		return fmt.Errorf("invalid redis ttl: %v", c.TTL)
	}
	return nil
}

type DatabaseConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	if !isValidPostgresURL(c.URL) {
		return fmt.Errorf("database URL must start with 'postgres://'")
	}
	return nil
}

// isValidPostgresURL checks if the provided URL is a valid PostgreSQL URL
func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}

type LogConfig struct {
	Level string `koanf:"level"`
}

func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("invalid log level: %q", c.Level)
}

type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) Validate() error {
	if c.Enabled && c.Addr == "" {
		return fmt.Errorf("pprof is enabled but address is not configured")
	}
	return nil
}

type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown timeout is not configured")
	}
	return nil
}

type TelemetryConfig struct {
	Enabled bool         `koanf:"enabled"`
	Traces  TracesConfig `koanf:"traces"`
}

type TracesConfig struct {
	OtlpHttp OtlpHttpConfig `koanf:"otlphttp"`
}

type OtlpHttpConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Timeout  time.Duration `koanf:"timeout"`
}

func (c *TelemetryConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Traces.OtlpHttp.Endpoint == "" {
		return fmt.Errorf("OTel endpoint is not configured")
	}
	if c.Traces.OtlpHttp.Timeout <= 0 {
		return fmt.Errorf("telemetry timeout must be greater than 0")
	}
	return nil
}
