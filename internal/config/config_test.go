package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Clear everything the assertions depend on so a caller's environment
	// or a local .env cannot leak into the defaults.
	for _, key := range []string{
		"SYMBOLS", "THRESHOLD_UP", "THRESHOLD_DOWN", "INITIAL_MODE",
		"RELATIVE_MOVES", "PRICE_SCALE", "UI_REFRESH_MS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}

	if cfg.InitialMode != 1 {
		t.Errorf("expected default initial mode 1, got %d", cfg.InitialMode)
	}
	if !cfg.RelativeMoves {
		t.Error("expected relative moves by default")
	}
	if cfg.PriceScale != 8 {
		t.Errorf("expected default price scale 8, got %d", cfg.PriceScale)
	}
	if len(cfg.Symbols) != 2 {
		t.Errorf("expected 2 default symbols, got %v", cfg.Symbols)
	}
	if cfg.UIRefreshRate != 500*time.Millisecond {
		t.Errorf("expected 500ms UI refresh, got %v", cfg.UIRefreshRate)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("THRESHOLD_UP", "0.01")
	t.Setenv("SYMBOLS", " btcusdt , solusdt ")
	t.Setenv("RELATIVE_MOVES", "false")
	t.Setenv("INITIAL_MODE", "-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ThresholdUp != 0.01 {
		t.Errorf("expected threshold 0.01, got %f", cfg.ThresholdUp)
	}
	if len(cfg.Symbols) != 2 || cfg.Symbols[0] != "BTCUSDT" || cfg.Symbols[1] != "SOLUSDT" {
		t.Errorf("symbols should be trimmed and uppercased, got %v", cfg.Symbols)
	}
	if cfg.RelativeMoves {
		t.Error("expected relative moves disabled")
	}
	if cfg.InitialMode != -1 {
		t.Errorf("expected initial mode -1, got %d", cfg.InitialMode)
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		BinanceWSURL: "wss://example",
		Symbols:      []string{"BTCUSDT"},
		InitialMode:  1,
		PriceScale:   8,
		WorkerCount:  1,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	badMode := *valid
	badMode.InitialMode = 0
	if err := badMode.Validate(); err == nil {
		t.Error("expected error for initial mode 0")
	}

	noSymbols := *valid
	noSymbols.Symbols = nil
	if err := noSymbols.Validate(); err == nil {
		t.Error("expected error for empty symbol list without replay file")
	}

	// A replay file stands in for the live feed.
	noSymbols.ReplayFile = "ticks.csv"
	if err := noSymbols.Validate(); err != nil {
		t.Errorf("replay config rejected: %v", err)
	}

	// Degenerate thresholds are a caller contract, not a config error.
	degenerate := *valid
	degenerate.ThresholdUp = -1
	if err := degenerate.Validate(); err != nil {
		t.Errorf("non-positive threshold should pass validation: %v", err)
	}
}
