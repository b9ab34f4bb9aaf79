// Package config loads the arena bot configuration on top of the core settings.
package config

import (
	"fmt"
	"strings"

	coreconfig "github.com/gamersarena/arenabot/core/config"
	coredatabase "github.com/gamersarena/arenabot/core/database"
	"github.com/gamersarena/arenabot/internal/catalog"
	"github.com/gamersarena/arenabot/internal/payment"
	"github.com/gamersarena/arenabot/internal/registration"
)

// ArenaConfig holds branding.
type ArenaConfig struct {
	Name string `yaml:"name" envconfig:"ARENA_NAME"`
}

// CatalogConfig holds the game and tournament tables.
type CatalogConfig struct {
	Games       []catalog.Game       `yaml:"games"`
	Tournaments []catalog.Tournament `yaml:"tournaments"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Arena        ArenaConfig         `yaml:"arena"`
	Catalog      CatalogConfig       `yaml:"catalog"`
	Payment      payment.Config      `yaml:"payment"`
	Registration registration.Config `yaml:"registration"`
	Database     coredatabase.Config `yaml:"database"`
	Redis        RedisConfig         `yaml:"redis"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Load reads path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills defaults.
func Normalize(cfg *Config) error {
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	cfg.Arena.Name = strings.TrimSpace(cfg.Arena.Name)
	if cfg.Arena.Name == "" {
		cfg.Arena.Name = "The Gamers Arena"
	}
	if len(cfg.Catalog.Games) == 0 {
		cfg.Catalog.Games = catalog.DefaultGames()
	}
	if len(cfg.Catalog.Tournaments) == 0 {
		cfg.Catalog.Tournaments = catalog.DefaultTournaments()
	}
	if _, err := cfg.BuildCatalog(); err != nil {
		return err
	}

	if err := cfg.Payment.Normalize(); err != nil {
		return err
	}
	if err := cfg.Registration.Normalize(); err != nil {
		return err
	}

	switch cfg.Registration.Backend {
	case registration.BackendPostgres:
		if err := cfg.Database.Validate(); err != nil {
			return fmt.Errorf("registration backend postgres: %w", err)
		}
	case registration.BackendRedis:
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			return fmt.Errorf("registration backend redis: redis.addr is required")
		}
		if cfg.Redis.DB < 0 {
			return fmt.Errorf("redis.db must be >= 0")
		}
	}
	return nil
}

// BuildCatalog validates and indexes the configured tables.
func (c *Config) BuildCatalog() (*catalog.Catalog, error) {
	return catalog.New(c.Catalog.Games, c.Catalog.Tournaments)
}
