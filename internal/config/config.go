// Package config loads and validates the cart service configuration.
package config

import (
	"fmt"
	"strings"
)

type Config struct {
	HTTPServer HTTPConfig       `koanf:"server"`
	GRPC       GrpcServerConfig `koanf:"grpc"`
	Storage    StorageConfig    `koanf:"storage"`
	Log        LogConfig        `koanf:"log"`
	PProf      PProfConfig      `koanf:"pprof"`
	Shutdown   ShutdownConfig   `koanf:"shutdown"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	b.WriteString(fmt.Sprintf("  server.port: %d\n", c.HTTPServer.Port))
	b.WriteString(fmt.Sprintf("  server.maxHeaderBytes: %d\n", c.HTTPServer.MaxHeaderBytes))
	b.WriteString(fmt.Sprintf("  server.timeout.read: %v\n", c.HTTPServer.Timeout.Read))
	b.WriteString(fmt.Sprintf("  server.timeout.write: %v\n", c.HTTPServer.Timeout.Write))
	b.WriteString(fmt.Sprintf("  server.timeout.idle: %v\n", c.HTTPServer.Timeout.Idle))
	b.WriteString(fmt.Sprintf("  server.timeout.readHeader: %v\n", c.HTTPServer.Timeout.ReadHeader))

	b.WriteString("\n--- gRPC Configuration ---\n")
	b.WriteString(fmt.Sprintf("  grpc.enabled: %t\n", c.GRPC.Enabled))
	b.WriteString(fmt.Sprintf("  grpc.port: %s\n", c.GRPC.Port))
	b.WriteString(fmt.Sprintf("  grpc.reflection: %t\n", c.GRPC.ReflectionEnabled))

	b.WriteString("\n--- Storage Configuration ---\n")
	b.WriteString(fmt.Sprintf("  storage.driver: %s\n", c.Storage.Driver))
	b.WriteString(fmt.Sprintf("  storage.key: %s\n", c.Storage.Key))
	b.WriteString(fmt.Sprintf("  storage.maxValueBytes: %d\n", c.Storage.MaxValueBytes))
	switch c.Storage.Driver {
	case DriverFile:
		b.WriteString(fmt.Sprintf("  storage.file.dir: %s\n", c.Storage.File.Dir))
	case DriverSQLite:
		b.WriteString(fmt.Sprintf("  storage.sqlite.path: %s\n", c.Storage.SQLite.Path))
	case DriverRedis:
		b.WriteString(fmt.Sprintf("  storage.redis.url: %s\n", maskURL(c.Storage.Redis.URL)))
		b.WriteString(fmt.Sprintf("  storage.redis.address: %s\n", c.Storage.Redis.Address))
		b.WriteString(fmt.Sprintf("  storage.redis.password: %s\n", maskSecret(c.Storage.Redis.Password)))
		b.WriteString(fmt.Sprintf("  storage.redis.db: %d\n", c.Storage.Redis.DB))
		b.WriteString(fmt.Sprintf("  storage.redis.ttl: %v\n", c.Storage.Redis.TTL))
		b.WriteString(fmt.Sprintf("  storage.breaker.enabled: %t\n", c.Storage.Breaker.Enabled))
	case DriverPostgres:
		b.WriteString(fmt.Sprintf("  storage.postgres.url: %s\n", maskURL(c.Storage.Postgres.URL)))
		b.WriteString(fmt.Sprintf("  storage.postgres.timeout: %s\n", c.Storage.Postgres.Timeout))
		b.WriteString(fmt.Sprintf("  storage.breaker.enabled: %t\n", c.Storage.Breaker.Enabled))
	}

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))
	b.WriteString(fmt.Sprintf("  pprof.address: %s\n", c.PProf.Addr))
	b.WriteString(fmt.Sprintf("  telemetry.enabled: %t\n", c.Telemetry.Enabled))
	if c.Telemetry.Enabled {
		b.WriteString(fmt.Sprintf("  telemetry.traces.otlphttp.endpoint: %s\n", c.Telemetry.Traces.OtlpHttp.Endpoint))
		b.WriteString(fmt.Sprintf("  telemetry.traces.otlphttp.insecure: %t\n", c.Telemetry.Traces.OtlpHttp.Insecure))
		b.WriteString(fmt.Sprintf("  telemetry.traces.otlphttp.timeout: %v\n", c.Telemetry.Traces.OtlpHttp.Timeout))
	}

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))

	return b.String()
}

func maskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	// Mask the URL by replacing the username and password with "****"
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return "****"
}

func maskSecret(secret string) string {
	if secret == "" {
		return "<not configured>"
	}
	return "****"
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.GRPC.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	return nil
}
