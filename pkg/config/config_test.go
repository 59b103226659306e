package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/stock-signal-backtest/internal/backtest"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, NewManager().Validate(cfg))

	assert.Equal(t, 12, cfg.Indicators.MACDFast)
	assert.Equal(t, 26, cfg.Indicators.MACDSlow)
	assert.Equal(t, 9, cfg.Indicators.MACDSignal)
	assert.Equal(t, 14, cfg.Indicators.RSIPeriod)
	assert.Equal(t, 5, cfg.Divergence.Window)
	assert.Equal(t, 0.05, cfg.Divergence.Threshold)
	assert.Equal(t, 0.03, cfg.Backtest.StopLossPct)
	assert.Equal(t, 0.08, cfg.Backtest.TakeProfitPct)
	assert.Equal(t, 20000.0, cfg.Backtest.InitialCash)
}

func TestValidator_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"fast not below slow", func(c *Config) { c.Indicators.MACDFast = 26 }},
		{"zero rsi period", func(c *Config) { c.Indicators.RSIPeriod = 0 }},
		{"stop loss out of range", func(c *Config) { c.Backtest.StopLossPct = 1.5 }},
		{"negative size", func(c *Config) { c.Backtest.OrderSize = -1 }},
		{"zero cash", func(c *Config) { c.Backtest.InitialCash = 0 }},
		{"threshold without price", func(c *Config) { c.Backtest.Profile = ProfilePriceThreshold }},
		{"unknown profile", func(c *Config) { c.Backtest.Profile = "yolo" }},
		{"bad threshold", func(c *Config) { c.Divergence.Threshold = 0 }},
		{"rsi bounds", func(c *Config) { c.Signals.RSIOversold = 80 }},
		{"stack ma missing", func(c *Config) { c.Signals.MidMA = 15 }},
		{"bad date", func(c *Config) { c.Data.StartDate = "2024/01/01" }},
		{"bad sweep", func(c *Config) { c.Backtest.Sweep.TakeProfitPct = []float64{2} }},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, v.Validate(cfg))
		})
	}
}

func TestManager_LoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"data": {"symbol": "09988"},
		"backtest": {"profile": "price_threshold", "entry_price": 80, "stop_loss_pct": 0.05}
	}`), 0644))

	t.Setenv(EnvInitialCash, "50000")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := NewManager().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "09988", cfg.Data.Symbol)
	assert.Equal(t, ProfilePriceThreshold, cfg.Backtest.Profile)
	assert.Equal(t, 80.0, cfg.Backtest.EntryPrice)
	assert.Equal(t, 0.05, cfg.Backtest.StopLossPct)
	assert.Equal(t, 0.08, cfg.Backtest.TakeProfitPct)
	assert.Equal(t, 50000.0, cfg.Backtest.InitialCash)
	assert.Equal(t, "debug", cfg.Output.LogLevel)
	require.NoError(t, NewManager().Validate(cfg))

	rule, err := cfg.EntryRule()
	require.NoError(t, err)
	assert.Equal(t, backtest.PriceThresholdEntry{Price: 80}, rule)
	assert.Equal(t, "09988", cfg.EngineConfig().Symbol)
}

func TestManager_LoadErrors(t *testing.T) {
	_, err := NewManager().Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = NewManager().Load(path)
	assert.Error(t, err)

	t.Setenv(EnvInitialCash, "lots")
	_, err = NewManager().Load("")
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, LoadEnvFile(""))
	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "none.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SSB_SYMBOL=00700\n"), 0644))
	t.Setenv(EnvSymbol, "")
	os.Unsetenv(EnvSymbol)
	require.NoError(t, LoadEnvFile(path))
	defer os.Unsetenv(EnvSymbol)

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(cfg))
	assert.Equal(t, "00700", cfg.Data.Symbol)
}

func TestApplyProfile(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyProfile(ProfilePriceThreshold))
	assert.Equal(t, ProfilePriceThreshold, cfg.Backtest.Profile)
	assert.Error(t, cfg.ApplyProfile("other"))

	rule, err := DefaultConfig().EntryRule()
	require.NoError(t, err)
	assert.Equal(t, backtest.CompositeSignalEntry{}, rule)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", EffectiveConfig)
	cfg := DefaultConfig()
	cfg.Data.Symbol = "X"
	require.NoError(t, Save(cfg, path))

	loaded, err := NewManager().Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Backtest, loaded.Backtest)
	assert.Equal(t, cfg.Indicators, loaded.Indicators)
}
