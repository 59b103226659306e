package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ducminhle1904/stock-signal-backtest/internal/logger"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/config"
)

// Flags holds all command line flags of the signal backtest command
type Flags struct {
	// Configuration
	ConfigFile *string
	EnvFile    *string
	DataFile   *string
	Symbol     *string
	Profile    *string

	// Backtest settings
	EntryPrice  *float64
	StopLoss    *float64
	TakeProfit  *float64
	Size        *float64
	InitialCash *float64

	// Output options
	OutputDir   *string
	ConsoleOnly *bool
	LogLevel    *string

	// Sweep
	Sweep       *bool
	Workers     *int
	MetricsAddr *string

	// Help and version
	ShowVersion *bool
	ShowHelp    *bool

	set map[string]bool
}

// NewFlags registers all command line flags on fs
func NewFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		ConfigFile: fs.String("config", "", "Path to JSON configuration file"),
		EnvFile:    fs.String("env", config.DefaultEnvFile, "Environment file path"),
		DataFile:   fs.String("data", "", "Path to the OHLCV CSV file"),
		Symbol:     fs.String("symbol", "", "Symbol, also used to locate data/<symbol>_data.csv"),
		Profile:    fs.String("profile", "", "Entry profile: composite or price_threshold"),

		EntryPrice:  fs.Float64("entry-price", 0, "Entry price for the price_threshold profile"),
		StopLoss:    fs.Float64("stop-loss", 0, "Stop loss as a fraction of entry (0.03 = 3%)"),
		TakeProfit:  fs.Float64("take-profit", 0, "Take profit as a fraction of entry (0.08 = 8%)"),
		Size:        fs.Float64("size", 0, "Shares per order"),
		InitialCash: fs.Float64("cash", 0, "Starting cash"),

		OutputDir:   fs.String("output", "", "Output directory (default results/<SYMBOL>)"),
		ConsoleOnly: fs.Bool("console-only", false, "Console output only, no file output"),
		LogLevel:    fs.String("log-level", "", "Log level: debug, info, warn, error"),

		Sweep:       fs.Bool("sweep", false, "Run the stop loss x take profit x size sweep"),
		Workers:     fs.Int("workers", 4, "Parallel workers for the sweep"),
		MetricsAddr: fs.String("metrics-addr", "", "Serve /metrics and /health on this address (e.g. :9090)"),

		ShowVersion: fs.Bool("version", false, "Show version information"),
		ShowHelp:    fs.Bool("help", false, "Show this help message"),
	}
}

// MarkSet records which flags were given explicitly. Call after parsing.
func (f *Flags) MarkSet(fs *flag.FlagSet) {
	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
}

// IsSet reports whether a flag was given on the command line
func (f *Flags) IsSet(name string) bool {
	return f.set[name]
}

// ValidateFlags checks flag values that do not need the configuration
func ValidateFlags(f *Flags) error {
	if f.IsSet("profile") {
		p := *f.Profile
		if p != config.ProfileComposite && p != config.ProfilePriceThreshold {
			return fmt.Errorf("invalid profile %q (use %s or %s)", p, config.ProfileComposite, config.ProfilePriceThreshold)
		}
	}
	if f.IsSet("entry-price") && *f.EntryPrice <= 0 {
		return fmt.Errorf("entry price must be positive, got: %.2f", *f.EntryPrice)
	}
	for name, v := range map[string]float64{"stop-loss": *f.StopLoss, "take-profit": *f.TakeProfit} {
		if f.IsSet(name) && (v <= 0 || v >= 1) {
			return fmt.Errorf("%s must be between 0 and 1, got: %.4f", name, v)
		}
	}
	if f.IsSet("size") && *f.Size <= 0 {
		return fmt.Errorf("size must be positive, got: %.4f", *f.Size)
	}
	if f.IsSet("cash") && *f.InitialCash <= 0 {
		return fmt.Errorf("cash must be positive, got: %.2f", *f.InitialCash)
	}
	if *f.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got: %d", *f.Workers)
	}
	if f.IsSet("log-level") {
		if _, err := logger.ParseLevel(*f.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies explicitly set flags over cfg
func (f *Flags) Apply(cfg *config.Config) error {
	if f.IsSet("data") {
		cfg.Data.File = *f.DataFile
	}
	if f.IsSet("symbol") {
		cfg.Data.Symbol = *f.Symbol
	}
	if f.IsSet("profile") {
		if err := cfg.ApplyProfile(*f.Profile); err != nil {
			return err
		}
	}
	if f.IsSet("entry-price") {
		cfg.Backtest.EntryPrice = *f.EntryPrice
		// An entry price without a profile selects the threshold profile
		if !f.IsSet("profile") {
			cfg.Backtest.Profile = config.ProfilePriceThreshold
		}
	}
	if f.IsSet("stop-loss") {
		cfg.Backtest.StopLossPct = *f.StopLoss
	}
	if f.IsSet("take-profit") {
		cfg.Backtest.TakeProfitPct = *f.TakeProfit
	}
	if f.IsSet("size") {
		cfg.Backtest.OrderSize = *f.Size
	}
	if f.IsSet("cash") {
		cfg.Backtest.InitialCash = *f.InitialCash
	}
	if f.IsSet("output") {
		cfg.Output.Dir = *f.OutputDir
	}
	if f.IsSet("console-only") {
		cfg.Output.ConsoleOnly = *f.ConsoleOnly
	}
	if f.IsSet("log-level") {
		cfg.Output.LogLevel = *f.LogLevel
	}

	if cfg.Data.Symbol == "" && cfg.Data.File != "" {
		cfg.Data.Symbol = SymbolFromPath(cfg.Data.File)
	}
	if cfg.Data.File == "" && cfg.Data.Symbol == "" {
		return fmt.Errorf("no data given: use -data FILE or -symbol SYMBOL")
	}
	return nil
}

// SymbolFromPath derives a symbol from data/<symbol>_data.csv or <symbol>.csv
func SymbolFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.TrimSuffix(name, "_data")
}

// ResolveConfigPath resolves the configuration file path with smart defaults
func ResolveConfigPath(configFile string) string {
	if configFile == "" {
		return ""
	}

	// If no path separators, assume it's in configs/ directory
	if !strings.ContainsAny(configFile, "/\\") {
		if !strings.HasSuffix(strings.ToLower(configFile), ".json") {
			configFile += ".json"
		}
		return filepath.Join("configs", configFile)
	}

	return configFile
}

// PrintUsageExamples prints usage examples
func PrintUsageExamples() {
	examples := []struct {
		command     string
		description string
	}{
		{
			"signal-backtest -symbol 09988",
			"Analyze and backtest data/09988_data.csv with the composite entry",
		},
		{
			"signal-backtest -data prices.csv -entry-price 105.70",
			"Enter whenever the close is at or below 105.70",
		},
		{
			"signal-backtest -config configs/hk.json -console-only",
			"Load configuration from file, print tables only",
		},
		{
			"signal-backtest -symbol 09988 -sweep -workers 8 -metrics-addr :9090",
			"Sweep stop loss and take profit, exposing progress on :9090",
		},
	}

	fmt.Printf("\n📚 USAGE EXAMPLES:\n")
	fmt.Printf("%s\n", strings.Repeat("-", 60))

	for _, example := range examples {
		fmt.Printf("\n• %s\n", example.description)
		fmt.Printf("  %s\n", example.command)
	}
}

// PrintFlagGroups prints flags organized by category
func PrintFlagGroups() {
	fmt.Printf(`
📊 CONFIGURATION FLAGS:
  -config FILE          Load configuration from JSON file
  -env FILE             Environment file path (default: .env)
  -data FILE            OHLCV CSV file
  -symbol SYMBOL        Symbol; locates data/<symbol>_data.csv when -data is not given
  -profile NAME         Entry profile: composite, price_threshold (default: composite)

💰 BACKTEST FLAGS:
  -entry-price PRICE    Entry price for price_threshold (selects that profile)
  -stop-loss PCT        Stop loss fraction (default: 0.03)
  -take-profit PCT      Take profit fraction (default: 0.08)
  -size SHARES          Shares per order (default: 1)
  -cash AMOUNT          Starting cash (default: 20000)

🔬 SWEEP FLAGS:
  -sweep                Run the parameter sweep from the configuration
  -workers N            Parallel workers (default: 4)
  -metrics-addr ADDR    Serve /metrics and /health while running

📁 OUTPUT FLAGS:
  -output DIR           Output directory (default: results/<SYMBOL>)
  -console-only         Console output only, no file output
  -log-level LEVEL      debug, info, warn, error (default: info)

❓ HELP FLAGS:
  -version              Show version information
  -help                 Show this help message
`)
}
