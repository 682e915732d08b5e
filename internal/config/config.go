// Package config resolves hooklens settings from flags, environment and an
// optional config file.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/tender-barbarian/hooklens/internal/signatures"
	"github.com/tender-barbarian/hooklens/internal/store"
)

// EnvPrefix is the prefix of environment overrides, e.g. HOOKLENS_STORE_DRIVER.
const EnvPrefix = "hooklens"

// StoreConfig selects the hook cache backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// Config is the resolved configuration.
type Config struct {
	Store     StoreConfig `mapstructure:"store"`
	Registry  string      `mapstructure:"registry"`
	Strict    bool        `mapstructure:"strict"`
	CacheSize int         `mapstructure:"cache-size"`
	Verbose   bool        `mapstructure:"verbose"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", store.DriverFile)
	v.SetDefault("store.path", "")
	v.SetDefault("registry", "")
	v.SetDefault("strict", false)
	v.SetDefault("cache-size", 8)
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	switch cfg.Store.Driver {
	case store.DriverFile, store.DriverSQLite:
	default:
		return nil, fmt.Errorf("invalid store.driver %q: want %q or %q", cfg.Store.Driver, store.DriverFile, store.DriverSQLite)
	}
	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("invalid cache-size %d: must be positive", cfg.CacheSize)
	}
	return &cfg, nil
}

// OpenStore opens the configured hook cache.
func (c *Config) OpenStore() (store.Store, error) {
	return store.Open(c.Store.Driver, c.Store.Path)
}

// LoadRegistry returns the configured registry override, or the built-in one.
func (c *Config) LoadRegistry() (*signatures.Registry, error) {
	if c.Registry == "" {
		return signatures.Default(), nil
	}
	return signatures.Load(c.Registry)
}
