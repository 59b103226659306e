package config

import (
	"fmt"
	"time"

	"github.com/ducminhle1904/stock-signal-backtest/internal/annotation"
	"github.com/ducminhle1904/stock-signal-backtest/internal/backtest"
	"github.com/ducminhle1904/stock-signal-backtest/internal/indicators"
	"github.com/ducminhle1904/stock-signal-backtest/internal/signals"
)

// Config is the full analysis configuration
type Config struct {
	Data       DataConfig        `json:"data"`
	Indicators indicators.Params `json:"indicators"`
	Divergence annotation.Params `json:"divergence"`
	Signals    signals.Params    `json:"signals"`
	Backtest   BacktestConfig    `json:"backtest"`
	Output     OutputConfig      `json:"output"`
}

// DataConfig locates the input series
type DataConfig struct {
	File      string `json:"file"`
	Symbol    string `json:"symbol"`
	Root      string `json:"root"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// DateLayout is the format of StartDate and EndDate
const DateLayout = "2006-01-02"

// Range parses the optional date bounds. Unset bounds are zero.
func (d DataConfig) Range() (start, end time.Time, err error) {
	if d.StartDate != "" {
		if start, err = time.Parse(DateLayout, d.StartDate); err != nil {
			return start, end, fmt.Errorf("invalid start date %q: %w", d.StartDate, err)
		}
	}
	if d.EndDate != "" {
		if end, err = time.Parse(DateLayout, d.EndDate); err != nil {
			return start, end, fmt.Errorf("invalid end date %q: %w", d.EndDate, err)
		}
	}
	return start, end, nil
}

// BacktestConfig selects the entry profile and the engine settings
type BacktestConfig struct {
	Profile    string  `json:"profile"`
	EntryPrice float64 `json:"entry_price"`
	backtest.Config
	Sweep backtest.Grid `json:"sweep"`
}

// OutputConfig controls reports and logging
type OutputConfig struct {
	Dir         string `json:"dir"`
	ConsoleOnly bool   `json:"console_only"`
	CSV         bool   `json:"csv"`
	Excel       bool   `json:"excel"`
	JSON        bool   `json:"json"`
	RecentCount int    `json:"recent_count"`
	LogLevel    string `json:"log_level"`
	LogDir      string `json:"log_dir"`
}

// DefaultConfig returns every documented default. The threshold profile
// needs an entry price, so the default profile is composite.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Root: DefaultDataRoot,
		},
		Indicators: indicators.DefaultParams(),
		Divergence: annotation.DefaultParams(),
		Signals:    signals.DefaultParams(),
		Backtest: BacktestConfig{
			Profile: ProfileComposite,
			Config:  backtest.DefaultConfig(),
			Sweep:   backtest.DefaultGrid(),
		},
		Output: OutputConfig{
			CSV:         true,
			Excel:       true,
			JSON:        true,
			RecentCount: DefaultRecentOut,
			LogLevel:    "info",
			LogDir:      DefaultLogDir,
		},
	}
}

// EntryRule builds the backtest entry rule of the configured profile
func (c *Config) EntryRule() (backtest.EntryRule, error) {
	switch c.Backtest.Profile {
	case ProfilePriceThreshold:
		return backtest.PriceThresholdEntry{Price: c.Backtest.EntryPrice}, nil
	case ProfileComposite:
		return backtest.CompositeSignalEntry{}, nil
	}
	return nil, unknownProfile(c.Backtest.Profile)
}

// EngineConfig returns the engine settings with the symbol filled in
func (c *Config) EngineConfig() backtest.Config {
	cfg := c.Backtest.Config
	cfg.Symbol = c.Data.Symbol
	return cfg
}

// ApplyProfile switches the entry profile. The price threshold profile
// keeps the configured entry price.
func (c *Config) ApplyProfile(name string) error {
	switch name {
	case ProfilePriceThreshold, ProfileComposite:
		c.Backtest.Profile = name
		return nil
	}
	return unknownProfile(name)
}
