package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix      = "CART_"
	DefaultEnvFile = ".env"
	ConfigFile     = "config.yaml"
)

// defaults are the lowest-priority layer; every key here can be overridden.
var defaults = map[string]any{
	"server.port":                8080,
	"server.maxHeaderBytes":      1 << 20,
	"server.timeout.read":        "5s",
	"server.timeout.write":       "10s",
	"server.timeout.idle":        "120s",
	"server.timeout.readHeader":  "2s",
	"grpc.enabled":               true,
	"grpc.port":                  "9090",
	"grpc.reflection":            false,
	"storage.driver":             DriverMemory,
	"storage.key":                "justinchats-cart",
	"storage.maxValueBytes":      5 << 20,
	"storage.file.dir":           "data/carts",
	"storage.sqlite.path":        "data/cart.db",
	"storage.redis.poolSize":     10,
	"storage.redis.timeout.dial": "5s",
	"storage.postgres.timeout":   "10s",
	"log.level":                  "info",
	"pprof.enabled":              false,
	"pprof.addr":                 "localhost:6060",
	"shutdown.timeout":           "15s",
}

// Load reads the configuration from config.yaml, .env and CART_ environment variables.
func Load() (*Config, error) {
	return LoadFrom(ConfigFile, DefaultEnvFile)
}

// LoadFrom reads the configuration from the given yaml and .env files, then the environment.
// Missing files are skipped.
func LoadFrom(configFile, envFile string) (*Config, error) {
	// Create a new Koanf instance
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	// 2. Load configuration from yaml file
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: error loading YAML config file '%s': %v", configFile, err)
		}
	}

	// 3. Load environment variables from .env file
	if envFileMap, err := godotenv.Read(envFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if !strings.HasPrefix(strings.ToUpper(key), EnvPrefix) {
				continue
			}
			envMap[envToKey(key)] = value
		}
		// Load the envMap into Koanf
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 4. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(EnvPrefix, ".", envToKey), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	// 5. Unmarshal the configuration into the Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 6. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envToKey maps CART_STORAGE_REDIS_ADDRESS to storage.redis.address and restores
// the camelCase spelling of known keys, so env values override yaml ones.
func envToKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(strings.ToUpper(key), EnvPrefix))
	key = strings.ReplaceAll(key, "_", ".")
	if canonical, ok := canonicalKeys[key]; ok {
		return canonical
	}
	return key
}

var canonicalKeys = func() map[string]string {
	m := make(map[string]string, len(defaults))
	for _, k := range knownKeys() {
		m[strings.ToLower(k)] = k
	}
	return m
}()

func knownKeys() []string {
	keys := make([]string, 0, len(defaults)+8)
	for k := range defaults {
		keys = append(keys, k)
	}
	return append(keys,
		"storage.redis.url",
		"storage.redis.address",
		"storage.redis.password",
		"storage.redis.db",
		"storage.redis.timeout.read",
		"storage.redis.timeout.write",
		"storage.redis.ttl",
		"storage.postgres.url",
	)
}
