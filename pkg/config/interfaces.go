// Package config loads, validates and saves the analysis configuration.
package config

// Entry profiles
const (
	ProfilePriceThreshold = "price_threshold"
	ProfileComposite      = "composite"
)

// Environment variables read by ApplyEnv
const (
	EnvDataFile    = "SSB_DATA_FILE"
	EnvSymbol      = "SSB_SYMBOL"
	EnvInitialCash = "SSB_INITIAL_CASH"
	EnvOutputDir   = "SSB_OUTPUT_DIR"
	EnvLogLevel    = "SSB_LOG_LEVEL"
)

// Common configuration constants
const (
	DefaultDataRoot  = "data"
	DefaultEnvFile   = ".env"
	ResultsDir       = "results"
	EffectiveConfig  = "config.json"
	DefaultLogDir    = "logs"
	DefaultRecentOut = 5
)
