package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/intentflow/intentflow/pkg/errors"
	"github.com/intentflow/intentflow/pkg/store"
)

// =============================================================================
// Config File
// =============================================================================

// configFile is the name of the TOML config file inside configDir.
const configFile = "config.toml"

// duration wraps time.Duration so TOML values like "15s" parse directly.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Config holds the CLI configuration loaded from ~/.config/intentflow/config.toml.
// Missing files and missing fields fall back to defaults; only malformed TOML
// is an error.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Store   StoreConfig   `toml:"store"`
	Serve   ServeConfig   `toml:"serve"`
}

// BackendConfig configures the conversation backend client.
type BackendConfig struct {
	// BaseURL is the backend origin, e.g. "http://localhost:8000".
	BaseURL string `toml:"base_url"`

	// Timeout bounds individual backend requests. Streaming turns are exempt.
	Timeout duration `toml:"timeout"`

	// CacheTTL controls how long cached conversation reads stay fresh.
	CacheTTL duration `toml:"cache_ttl"`
}

// StoreConfig selects and configures the draft store backend.
type StoreConfig struct {
	// Backend is one of "file", "redis", "mongo". Defaults to "file".
	Backend string `toml:"backend"`

	// Dir overrides the draft directory for the file backend.
	Dir string `toml:"dir"`

	Redis RedisConfig `toml:"redis"`
	Mongo MongoConfig `toml:"mongo"`
}

// RedisConfig configures the redis draft store.
type RedisConfig struct {
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	TTL      duration `toml:"ttl"`
}

// MongoConfig configures the mongo draft store.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServeConfig configures the HTTP API server.
type ServeConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `toml:"addr"`
}

// defaultConfig returns the configuration used when no config file exists.
func defaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:  "http://localhost:8000",
			Timeout:  duration{15 * time.Second},
			CacheTTL: duration{5 * time.Minute},
		},
		Store: StoreConfig{
			Backend: "file",
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

// loadConfig reads the config file from configDir, falling back to defaults
// when the file does not exist. The INTENTFLOW_BACKEND_URL environment
// variable overrides the configured base URL.
func loadConfig() (Config, error) {
	cfg := defaultConfig()

	dir, err := configDir()
	if err == nil {
		path := filepath.Join(dir, configFile)
		if _, statErr := os.Stat(path); statErr == nil {
			if _, decodeErr := toml.DecodeFile(path, &cfg); decodeErr != nil {
				return Config{}, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, decodeErr, "parse %s", path)
			}
		}
	}

	if url := os.Getenv("INTENTFLOW_BACKEND_URL"); url != "" {
		cfg.Backend.BaseURL = url
	}
	return cfg, nil
}

// =============================================================================
// Store Factory
// =============================================================================

// newStore opens the draft store selected by cfg.Store.Backend.
func newStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "", "file":
		return store.NewFileStore(cfg.Store.Dir)
	case "redis":
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			TTL:      cfg.Store.Redis.TTL.Duration,
		})
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.Store.Mongo.URI,
			Database:   cfg.Store.Mongo.Database,
			Collection: cfg.Store.Mongo.Collection,
		})
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Store.Backend)
	}
}
