package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full runtime configuration of the catalog.
type Config struct {
	Storage  Storage
	Parts    Parts
	LogLevel slog.Level
}

// Storage selects and configures the catalog backend.
type Storage struct {
	// Strategy names the backend: memory, sqlite, postgres or redis. It is
	// parsed by the catalog store when the backend is opened.
	Strategy    string
	SQLitePath  string
	DatabaseURL string
	Redis       RedisConfig
}

// RedisConfig configures the go-redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Parts configures part id generation. Zero values keep the generator's
// defaults.
type Parts struct {
	DisownmentCode string
	MaxAttempts    int
}

// Default returns the configuration used when no environment is set: an
// SQLite file in the working directory.
func Default() Config {
	return Config{
		Storage: Storage{
			Strategy:   "sqlite",
			SQLitePath: "catalog.db",
			Redis: RedisConfig{
				PoolSize:     10,
				MinIdleConns: 2,
				DialTimeout:  5 * time.Second,
				ReadTimeout:  3 * time.Second,
				WriteTimeout: 3 * time.Second,
			},
		},
		LogLevel: slog.LevelInfo,
	}
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs []error

	if v, ok := lookup("CATALOG_STORAGE"); ok && v != "" {
		cfg.Storage.Strategy = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup("CATALOG_SQLITE_PATH"); ok && v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v, ok := lookup("DATABASE_URL"); ok {
		cfg.Storage.DatabaseURL = v
	}
	if v, ok := lookup("REDIS_URL"); ok {
		cfg.Storage.Redis.URL = v
	}
	if v, ok := lookup("REDIS_POOL_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("REDIS_POOL_SIZE: %w", err))
		} else {
			cfg.Storage.Redis.PoolSize = n
		}
	}
	if v, ok := lookup("PARTS_DISOWNMENT_CODE"); ok && v != "" {
		cfg.Parts.DisownmentCode = v
	}
	if v, ok := lookup("PARTS_MAX_ATTEMPTS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PARTS_MAX_ATTEMPTS: %w", err))
		} else {
			cfg.Parts.MaxAttempts = n
		}
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
			errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks that the selected strategy has its connection settings.
// Unknown strategy names are left to the store that parses them.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Strategy)) {
	case "":
		return errors.New("storage strategy is required")
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return errors.New("sqlite storage requires CATALOG_SQLITE_PATH")
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return errors.New("postgres storage requires DATABASE_URL")
		}
	case "redis":
		if c.Storage.Redis.URL == "" {
			return errors.New("redis storage requires REDIS_URL")
		}
	}
	if c.Parts.MaxAttempts < 0 {
		return fmt.Errorf("PARTS_MAX_ATTEMPTS must not be negative, got %d", c.Parts.MaxAttempts)
	}
	return nil
}
