package main

import (
	"flag"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/stock-signal-backtest/pkg/config"
)

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("signal-backtest", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := NewFlags(fs)
	require.NoError(t, fs.Parse(args))
	f.MarkSet(fs)
	return f
}

func TestApply_OnlyExplicitFlagsOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backtest.StopLossPct = 0.05

	f := parseFlags(t, "-data", "data/09988_data.csv", "-take-profit", "0.1")
	require.NoError(t, ValidateFlags(f))
	require.NoError(t, f.Apply(cfg))

	assert.Equal(t, 0.05, cfg.Backtest.StopLossPct)
	assert.Equal(t, 0.1, cfg.Backtest.TakeProfitPct)
	assert.Equal(t, "09988", cfg.Data.Symbol)
	assert.Equal(t, config.ProfileComposite, cfg.Backtest.Profile)
}

func TestApply_EntryPriceSelectsThresholdProfile(t *testing.T) {
	cfg := config.DefaultConfig()
	f := parseFlags(t, "-symbol", "09988", "-entry-price", "105.7")
	require.NoError(t, f.Apply(cfg))

	assert.Equal(t, config.ProfilePriceThreshold, cfg.Backtest.Profile)
	assert.Equal(t, 105.7, cfg.Backtest.EntryPrice)
	require.NoError(t, config.NewManager().Validate(cfg))
}

func TestApply_RequiresData(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Error(t, parseFlags(t).Apply(cfg))
}

func TestValidateFlags(t *testing.T) {
	cases := [][]string{
		{"-profile", "momentum"},
		{"-stop-loss", "1.5"},
		{"-take-profit", "0"},
		{"-size", "-1"},
		{"-cash", "0"},
		{"-workers", "0"},
		{"-log-level", "loud"},
		{"-entry-price", "-3"},
	}
	for _, args := range cases {
		assert.Error(t, ValidateFlags(parseFlags(t, args...)), "%v", args)
	}
	assert.NoError(t, ValidateFlags(parseFlags(t, "-profile", "price_threshold", "-stop-loss", "0.02")))
}

func TestSymbolFromPath(t *testing.T) {
	assert.Equal(t, "09988", SymbolFromPath(filepath.Join("data", "09988_data.csv")))
	assert.Equal(t, "AAPL", SymbolFromPath("AAPL.csv"))
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "", ResolveConfigPath(""))
	assert.Equal(t, filepath.Join("configs", "hk.json"), ResolveConfigPath("hk"))
	assert.Equal(t, "./custom.json", ResolveConfigPath("./custom.json"))
}
