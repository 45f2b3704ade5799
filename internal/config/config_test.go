package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const minimalConfig = `
[server]
port = 8080

[storage]
sqlite_path = "data/test.db"
`

func TestLoadAndValidateDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.Planner.BurnRateKgPerHour != 48 {
		t.Errorf("burn rate default = %v, want 48", cfg.Planner.BurnRateKgPerHour)
	}
	if cfg.Planner.UncertaintyFraction != 0.2 {
		t.Errorf("uncertainty default = %v, want 0.2", cfg.Planner.UncertaintyFraction)
	}
	if len(cfg.Assets) == 0 {
		t.Error("default asset fleet not installed")
	}
	if cfg.Risk.HighWindKt != 25 {
		t.Errorf("risk wind default = %v, want 25", cfg.Risk.HighWindKt)
	}
	if cfg.Resources.MinGroundTeams != 2 {
		t.Errorf("min ground teams default = %d, want 2", cfg.Resources.MinGroundTeams)
	}
	if cfg.Output.Dir != "output" {
		t.Errorf("output dir default = %q", cfg.Output.Dir)
	}
}

func TestExplicitZeroSurvivesDefaulting(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[planner]
directional_bias = 0.0

[risk]
high_wind_kt = 0.0
heavy_precip_mm_hr = 0.0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	// A written zero disables the bias; it must not be mistaken for unset
	if cfg.Planner.DirectionalBias != 0 {
		t.Errorf("directional bias = %v, want explicit 0", cfg.Planner.DirectionalBias)
	}
	if cfg.Risk.HighWindKt != 0 {
		t.Errorf("high wind threshold = %v, want explicit 0", cfg.Risk.HighWindKt)
	}
	if cfg.Risk.HeavyPrecipMmHr != 0 {
		t.Errorf("precip threshold = %v, want explicit 0", cfg.Risk.HeavyPrecipMmHr)
	}

	// Keys absent from the file still pick up their defaults
	if cfg.Risk.LowVisibilityKm != 5 {
		t.Errorf("visibility threshold default = %v, want 5", cfg.Risk.LowVisibilityKm)
	}
	if cfg.Planner.BurnRateKgPerHour != 48 {
		t.Errorf("burn rate default = %v, want 48", cfg.Planner.BurnRateKgPerHour)
	}
}

func TestExplicitZeroBurnRateRejected(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[planner]
burn_rate_kg_per_hour = 0.0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for explicit zero burn rate")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"missing sqlite path", func(c *Config) { c.Storage.SQLitePath = "" }},
		{"negative burn rate", func(c *Config) { c.Planner.BurnRateKgPerHour = -1 }},
		{"uncertainty over 1", func(c *Config) { c.Planner.UncertaintyFraction = 1.5 }},
		{"bias of 1", func(c *Config) { c.Planner.DirectionalBias = 1.0 }},
		{"asset without name", func(c *Config) { c.Assets = []AssetConfig{{SweepWidthKm: 1, SpeedKmh: 100}} }},
		{"asset zero sweep", func(c *Config) { c.Assets = []AssetConfig{{Name: "X", SpeedKmh: 100}} }},
		{"negative risk threshold", func(c *Config) { c.Risk.HighWindKt = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:  ServerConfig{Port: 8080},
				Storage: StorageConfig{SQLitePath: "data/test.db"},
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadWithFallbackPrefersExplicitPath(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := LoadWithFallback(path)
	if err != nil {
		t.Fatalf("LoadWithFallback failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadWithFallbackNothingFound(t *testing.T) {
	// Run from an empty directory so the fallback locations are absent
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	if _, err := LoadWithFallback(""); err == nil {
		t.Error("expected error when no config exists anywhere")
	}
}

func TestConfiguredAssetsValidated(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[[assets]]
name = "Helo 1"
sweep_width_km = 1.5
speed_kmh = 200
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(cfg.Assets) != 1 || cfg.Assets[0].SweepWidthKm != 1.5 {
		t.Errorf("assets = %+v", cfg.Assets)
	}
}
