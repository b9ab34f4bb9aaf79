package registration

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Config selects and tunes the registration backend.
type Config struct {
	Backend        string `yaml:"backend" envconfig:"REGISTRATION_BACKEND"`
	Endpoint       string `yaml:"endpoint" envconfig:"REGISTRATION_ENDPOINT"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"REGISTRATION_TIMEOUT_SECONDS"`
	RedisStream    string `yaml:"redis_stream" envconfig:"REGISTRATION_REDIS_STREAM"`
}

// Normalize lowercases the backend, applies the default and checks backend-specific fields.
func (c *Config) Normalize() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = BackendSheetDB
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("registration.timeout_seconds must be >= 0")
	}
	switch c.Backend {
	case BackendSheetDB:
		if strings.TrimSpace(c.Endpoint) == "" {
			return fmt.Errorf("registration.endpoint is required for the %s backend", BackendSheetDB)
		}
	case BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("registration.backend %q is not one of sheetdb, postgres, redis", c.Backend)
	}
	return nil
}

// Backends carries the shared clients a backend may need.
type Backends struct {
	DB    *sqlx.DB
	Redis *redis.Client
}

// Open builds the store selected by cfg.Backend.
func Open(cfg Config, deps Backends) (Store, error) {
	switch cfg.Backend {
	case BackendSheetDB, "":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("registration: sheetdb endpoint is empty")
		}
		return NewSheetDB(cfg.Endpoint, time.Duration(cfg.TimeoutSeconds)*time.Second), nil
	case BackendPostgres:
		if deps.DB == nil {
			return nil, fmt.Errorf("registration: postgres backend needs a database")
		}
		return NewPostgres(deps.DB), nil
	case BackendRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("registration: redis backend needs a client")
		}
		return NewRedisStream(deps.Redis, cfg.RedisStream), nil
	default:
		return nil, fmt.Errorf("registration: unknown backend %q", cfg.Backend)
	}
}
