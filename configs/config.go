package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Cache       CacheConfig
	Redis       RedisConfig
	SQL         SQLConfig
	Bolt        BoltConfig
	ObjectStore ObjectStoreConfig
	Log         LogConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

type CacheConfig struct {
	// DefaultTTL applies when a put omits an explicit TTL.
	DefaultTTL time.Duration
	// CleanupInterval is the pause between expiry sweeps.
	CleanupInterval time.Duration
	// Registries lists the namespaces this instance serves, in order.
	Registries []RegistrySpec
}

// RegistrySpec pairs a registry name with its backend kind. An empty Kind
// selects the default in-memory backend.
type RegistrySpec struct {
	Name string
	Kind string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type SQLConfig struct {
	Driver string
	DSN    string
}

type BoltConfig struct {
	// Path is the database file; empty lets each registry pick its own.
	Path string
}

type ObjectStoreConfig struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	registries, err := parseRegistries(getEnv("CACHE_REGISTRIES", "default"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			TLSCertFile:  getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:   getEnv("TLS_KEY_FILE", ""),
		},
		Cache: CacheConfig{
			DefaultTTL:      getDurationEnv("CACHE_DEFAULT_TTL", 24*time.Hour),
			CleanupInterval: getDurationEnv("CACHE_CLEANUP_INTERVAL", time.Hour),
			Registries:      registries,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "polycache"),
		},
		SQL: SQLConfig{
			Driver: getEnv("SQL_DRIVER", "sqlite3"),
			DSN:    getEnv("SQL_DSN", ""),
		},
		Bolt: BoltConfig{
			Path: getEnv("BOLT_PATH", ""),
		},
		ObjectStore: ObjectStoreConfig{
			Bucket:   getEnv("S3_BUCKET", ""),
			Prefix:   getEnv("S3_PREFIX", ""),
			Region:   getEnv("S3_REGION", ""),
			Endpoint: getEnv("S3_ENDPOINT", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// parseRegistries reads a comma-separated list of "name" or "name=kind"
// items, e.g. "sessions=redis,feeds=sql,scratch".
func parseRegistries(raw string) ([]RegistrySpec, error) {
	var specs []RegistrySpec
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, kind, _ := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid registry entry %q in CACHE_REGISTRIES", item)
		}
		specs = append(specs, RegistrySpec{Name: name, Kind: strings.TrimSpace(kind)})
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("CACHE_REGISTRIES resolves to no registries")
	}
	return specs, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
