// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"recipe-cost/core/types"
	apperrors "recipe-cost/internal/errors"
	"recipe-cost/internal/logging"
)

// Environment variables that override file configuration
const (
	EnvCurrency      = "RECIPE_COST_CURRENCY"
	EnvTargetMargin  = "RECIPE_COST_TARGET_MARGIN"
	EnvMinMargin     = "RECIPE_COST_MIN_MARGIN"
	EnvCatalogDriver = "RECIPE_COST_CATALOG_DRIVER"
	EnvCatalogDSN    = "RECIPE_COST_CATALOG_DSN"
	EnvAddr          = "RECIPE_COST_ADDR"
	EnvLogLevel      = "RECIPE_COST_LOG_LEVEL"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains pricing configuration
	Pricing PricingConfig `json:"pricing"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Catalog contains ingredient catalog configuration
	Catalog CatalogConfig `json:"catalog"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// Currency is the company currency
	Currency types.Currency `json:"currency"`

	// TargetMarginPercent is the company default target margin
	TargetMarginPercent decimal.Decimal `json:"target_margin_percent"`

	// MinMarginPercent is the company default minimum margin
	MinMarginPercent decimal.Decimal `json:"min_margin_percent"`
}

// Policy returns the configured margin policy
func (p PricingConfig) Policy() types.MarginPolicy {
	return types.MarginPolicy{
		TargetMarginPercent: p.TargetMarginPercent,
		MinMarginPercent:    p.MinMarginPercent,
	}
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// MoneyPlaces is the number of decimal places for totals
	MoneyPlaces int32 `json:"money_places"`

	// UnitCostPlaces is the number of decimal places for per-unit costs
	UnitCostPlaces int32 `json:"unit_cost_places"`
}

// CatalogConfig contains ingredient catalog settings
type CatalogConfig struct {
	// Driver is the database/sql driver: sqlite3 or pgx
	Driver string `json:"driver"`

	// DSN is the data source name
	DSN string `json:"dsn"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".recipe-cost", "catalog.db")

	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			Currency:            types.CurrencyGBP,
			TargetMarginPercent: decimal.NewFromInt(65),
			MinMarginPercent:    decimal.NewFromInt(55),
		},
		Output: OutputConfig{
			DefaultFormat:  "cli",
			MoneyPlaces:    2,
			UnitCostPlaces: 4,
		},
		Catalog: CatalogConfig{
			Driver: "sqlite3",
			DSN:    dbPath,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file, then applies .env and environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, apperrors.Config("invalid config file "+path, err)
			}
		case !os.IsNotExist(err):
			return nil, apperrors.Config("failed to read config file "+path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := config.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides settings from environment lookups
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvCurrency); v != "" {
		c.Pricing.Currency = types.Currency(strings.ToUpper(v))
	}
	if v := getenv(EnvTargetMargin); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return apperrors.Config(EnvTargetMargin+" is not a number", err)
		}
		c.Pricing.TargetMarginPercent = d
	}
	if v := getenv(EnvMinMargin); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return apperrors.Config(EnvMinMargin+" is not a number", err)
		}
		c.Pricing.MinMarginPercent = d
	}
	if v := getenv(EnvCatalogDriver); v != "" {
		c.Catalog.Driver = v
	}
	if v := getenv(EnvCatalogDSN); v != "" {
		c.Catalog.DSN = v
	}
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
