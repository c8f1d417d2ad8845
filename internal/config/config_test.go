package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.PositionsFile != "./data/positions.csv" {
		t.Errorf("PositionsFile = %q", cfg.PositionsFile)
	}
	if cfg.TopHoldings != 10 {
		t.Errorf("TopHoldings = %d, want 10", cfg.TopHoldings)
	}
	if cfg.Port != 8001 {
		t.Errorf("Port = %d, want 8001", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.RefdataMaxAttempts != 3 {
		t.Errorf("RefdataMaxAttempts = %d, want 3", cfg.RefdataMaxAttempts)
	}
	if cfg.AnalyzeSchedule != "" {
		t.Errorf("AnalyzeSchedule = %q, want empty (disabled)", cfg.AnalyzeSchedule)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("POSITIONS_FILE", "/tmp/pos.csv")
	t.Setenv("TOP_HOLDINGS", "5")
	t.Setenv("FX_HEDGE_USD", "1.5")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("ANALYZE_SCHEDULE", "0 0 7 * * *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.PositionsFile != "/tmp/pos.csv" {
		t.Errorf("PositionsFile = %q", cfg.PositionsFile)
	}
	if cfg.TopHoldings != 5 {
		t.Errorf("TopHoldings = %d, want 5", cfg.TopHoldings)
	}
	if cfg.FXHedgeUSD != 1.5 {
		t.Errorf("FXHedgeUSD = %v, want 1.5", cfg.FXHedgeUSD)
	}
	if !cfg.DevMode {
		t.Error("DevMode should be true")
	}
	if cfg.AnalyzeSchedule != "0 0 7 * * *" {
		t.Errorf("AnalyzeSchedule = %q", cfg.AnalyzeSchedule)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("TOP_HOLDINGS", "not-a-number")
	t.Setenv("DEV_MODE", "not-a-bool")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.TopHoldings != 10 {
		t.Errorf("TopHoldings = %d, want default 10", cfg.TopHoldings)
	}
	if cfg.DevMode {
		t.Error("DevMode should fall back to false")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing positions file", func(c *Config) { c.PositionsFile = "" }, true},
		{"missing database path", func(c *Config) { c.DatabasePath = "" }, true},
		{"non-positive top holdings", func(c *Config) { c.TopHoldings = 0 }, true},
		{"non-positive max attempts", func(c *Config) { c.RefdataMaxAttempts = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				PositionsFile:      "./data/positions.csv",
				DatabasePath:       "./data/analyzer.db",
				TopHoldings:        10,
				RefdataMaxAttempts: 3,
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
