package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"recipe-cost/core/types"
	apperrors "recipe-cost/internal/errors"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	def := Default()
	if cfg.Pricing.Currency != def.Pricing.Currency || cfg.Server.Addr != def.Server.Addr {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Pricing.Currency = types.CurrencyUSD
	cfg.Pricing.TargetMarginPercent = decimal.RequireFromString("70.5")
	cfg.Catalog.Driver = "pgx"
	cfg.Catalog.DSN = "postgres://localhost/recipes"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Pricing.Currency != types.CurrencyUSD {
		t.Errorf("expected USD, got %s", loaded.Pricing.Currency)
	}
	if !loaded.Pricing.TargetMarginPercent.Equal(decimal.RequireFromString("70.5")) {
		t.Errorf("expected target 70.5, got %s", loaded.Pricing.TargetMarginPercent)
	}
	if loaded.Catalog.Driver != "pgx" || loaded.Catalog.DSN != "postgres://localhost/recipes" {
		t.Errorf("unexpected catalog: %+v", loaded.Catalog)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !apperrors.IsType(err, apperrors.TypeConfig) {
		t.Fatalf("expected CONFIG_ERROR, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvCurrency:      "eur",
		EnvTargetMargin:  "60",
		EnvMinMargin:     "45.5",
		EnvCatalogDriver: "pgx",
		EnvCatalogDSN:    "postgres://db/recipes",
		EnvAddr:          ":9090",
		EnvLogLevel:      "debug",
	}

	cfg := Default()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Pricing.Currency != types.CurrencyEUR {
		t.Errorf("expected EUR, got %s", cfg.Pricing.Currency)
	}
	policy := cfg.Pricing.Policy()
	if !policy.TargetMarginPercent.Equal(decimal.NewFromInt(60)) || !policy.MinMarginPercent.Equal(decimal.RequireFromString("45.5")) {
		t.Errorf("unexpected policy: %+v", policy)
	}
	if cfg.Catalog.Driver != "pgx" || cfg.Catalog.DSN != "postgres://db/recipes" {
		t.Errorf("unexpected catalog: %+v", cfg.Catalog)
	}
	if cfg.Server.Addr != ":9090" || cfg.Logging.Level != "debug" {
		t.Errorf("unexpected server/logging: %s %s", cfg.Server.Addr, cfg.Logging.Level)
	}
}

func TestApplyEnvRejectsBadMargin(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) string {
		if k == EnvTargetMargin {
			return "lots"
		}
		return ""
	})
	if !apperrors.IsType(err, apperrors.TypeConfig) {
		t.Fatalf("expected CONFIG_ERROR, got %v", err)
	}
}

func TestGetSet(t *testing.T) {
	orig := Get()
	defer Set(orig)

	cfg := Default()
	cfg.Server.Addr = ":1234"
	Set(cfg)
	if Get().Server.Addr != ":1234" {
		t.Error("expected Set to replace the global config")
	}
}
