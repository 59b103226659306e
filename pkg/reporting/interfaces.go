package reporting

import (
	"github.com/ducminhle1904/stock-signal-backtest/internal/annotation"
	"github.com/ducminhle1904/stock-signal-backtest/internal/backtest"
	"github.com/ducminhle1904/stock-signal-backtest/internal/divergence"
	"github.com/ducminhle1904/stock-signal-backtest/internal/indicators"
	"github.com/ducminhle1904/stock-signal-backtest/internal/signals"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/config"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// Package reporting renders analysis and backtest output

// Output bundles everything one run produces. Results is nil when the
// backtest stage was skipped.
type Output struct {
	Symbol      string
	Series      *types.Series
	Indicators  *indicators.IndicatorFrame
	Divergence  []divergence.Flag
	Signals     *signals.Frame
	Significant []annotation.Significant
	Markers     []types.Marker
	Results     *backtest.Results
	Config      *config.Config
}

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	OutputResults(results *backtest.Results)
	PrintSnapshot(snap signals.Snapshot)
	PrintAlerts(alerts []signals.Alert)
	PrintTrades(trades []backtest.Trade)
	PrintSweep(results []backtest.JobResult, top int)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteAnalysisCSV(out *Output, path string) error
	WriteMarkersCSV(markers []types.Marker, path string) error
	WriteEquityCSV(curve []backtest.EquityPoint, path string) error
	WriteTradesCSV(trades []backtest.Trade, path string) error
	WriteWorkbook(out *Output, path string) error
	WriteReportJSON(out *Output, path string) error
}

// JSONFormatter defines interface for JSON output
type JSONFormatter interface {
	FormatReport(out *Output) ([]byte, error)
}

// PathManager defines interface for output path management
type PathManager interface {
	GetDefaultOutputDir(symbol string) string
	EnsureDirectoryExists(path string) error
}

// Reporter combines all reporting interfaces
type Reporter interface {
	ConsoleReporter
	FileReporter
	JSONFormatter
	PathManager
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	TitleStyle    int
	HeaderStyle   int
	BaseStyle     int
	NumberStyle   int
	CurrencyStyle int
	PercentStyle  int
	DateStyle     int
	BuyStyle      int
	SellStyle     int
}

// Output file names inside the run directory
const (
	MarkersFile  = "markers.csv"
	EquityFile   = "equity.csv"
	TradesFile   = "trades.csv"
	ReportFile   = "report.json"
	SweepFile    = "sweep.csv"
	WorkbookName = "analysis.xlsx"
)

// Compile-time interface check
var _ Reporter = (*DefaultReporter)(nil)
