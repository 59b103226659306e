package reporting

import (
	"io"
	"path/filepath"

	"github.com/ducminhle1904/stock-signal-backtest/internal/backtest"
	"github.com/ducminhle1904/stock-signal-backtest/internal/signals"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/config"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// DefaultReporter implements the complete Reporter interface
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	json    *DefaultJSONFormatter
	paths   *DefaultPathManager
}

// NewDefaultReporter creates a new default reporter with all functionality
func NewDefaultReporter() *DefaultReporter {
	return NewReporterTo(NewDefaultConsoleReporter().out)
}

// NewReporterTo creates a reporter whose console output goes to w
func NewReporterTo(w io.Writer) *DefaultReporter {
	return &DefaultReporter{
		console: NewConsoleReporterTo(w),
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(),
		json:    NewDefaultJSONFormatter(),
		paths:   NewDefaultPathManager(),
	}
}

// Console output methods
func (r *DefaultReporter) OutputResults(results *backtest.Results) {
	r.console.OutputResults(results)
}

func (r *DefaultReporter) PrintSnapshot(snap signals.Snapshot) {
	r.console.PrintSnapshot(snap)
}

func (r *DefaultReporter) PrintAlerts(alerts []signals.Alert) {
	r.console.PrintAlerts(alerts)
}

func (r *DefaultReporter) PrintTrades(trades []backtest.Trade) {
	r.console.PrintTrades(trades)
}

func (r *DefaultReporter) PrintSweep(results []backtest.JobResult, top int) {
	r.console.PrintSweep(results, top)
}

// File output methods
func (r *DefaultReporter) WriteAnalysisCSV(out *Output, path string) error {
	return r.csv.WriteAnalysisCSV(out, path)
}

func (r *DefaultReporter) WriteMarkersCSV(markers []types.Marker, path string) error {
	return r.csv.WriteMarkersCSV(markers, path)
}

func (r *DefaultReporter) WriteEquityCSV(curve []backtest.EquityPoint, path string) error {
	return r.csv.WriteEquityCSV(curve, path)
}

func (r *DefaultReporter) WriteTradesCSV(trades []backtest.Trade, path string) error {
	return r.csv.WriteTradesCSV(trades, path)
}

func (r *DefaultReporter) WriteSweepCSV(results []backtest.JobResult, path string) error {
	return r.csv.WriteSweepCSV(results, path)
}

func (r *DefaultReporter) WriteWorkbook(out *Output, path string) error {
	return r.excel.WriteWorkbook(out, path)
}

func (r *DefaultReporter) WriteReportJSON(out *Output, path string) error {
	return r.json.WriteReportJSON(out, path)
}

// JSON methods
func (r *DefaultReporter) FormatReport(out *Output) ([]byte, error) {
	return r.json.FormatReport(out)
}

// Path management methods
func (r *DefaultReporter) GetDefaultOutputDir(symbol string) string {
	return r.paths.GetDefaultOutputDir(symbol)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}

// ReportingManager decides which outputs a run produces
type ReportingManager struct {
	reporter *DefaultReporter
	config   config.OutputConfig
}

// NewReportingManager creates a new reporting manager with configuration
func NewReportingManager(cfg config.OutputConfig, reporter *DefaultReporter) *ReportingManager {
	if reporter == nil {
		reporter = NewDefaultReporter()
	}
	return &ReportingManager{reporter: reporter, config: cfg}
}

// OutputDir returns the configured output directory or results/<SYMBOL>
func (m *ReportingManager) OutputDir(symbol string) string {
	if m.config.Dir != "" {
		return m.config.Dir
	}
	return m.reporter.GetDefaultOutputDir(symbol)
}

// ReportConsole prints the analysis summary and, if present, the backtest results
func (m *ReportingManager) ReportConsole(out *Output) {
	if out.Indicators != nil && out.Signals != nil {
		if snap, ok := signals.Latest(out.Indicators, out.Signals); ok {
			m.reporter.PrintSnapshot(snap)
		}
		m.reporter.PrintAlerts(signals.Recent(out.Signals, m.config.RecentCount))
	}
	if out.Results != nil {
		m.reporter.OutputResults(out.Results)
		if len(out.Results.Trades) > 0 {
			m.reporter.PrintTrades(out.Results.Trades)
		}
	}
}

// ReportFiles writes every enabled file output and returns the written paths
func (m *ReportingManager) ReportFiles(out *Output) ([]string, error) {
	if m.config.ConsoleOnly {
		return nil, nil
	}
	dir := m.OutputDir(out.Symbol)
	var written []string
	write := func(name string, fn func(string) error) error {
		path := filepath.Join(dir, name)
		if err := fn(path); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if m.config.CSV {
		if err := write(AnalysisFileName(out.Symbol), func(p string) error { return m.reporter.WriteAnalysisCSV(out, p) }); err != nil {
			return written, err
		}
		if err := write(MarkersFile, func(p string) error { return m.reporter.WriteMarkersCSV(out.Markers, p) }); err != nil {
			return written, err
		}
		if out.Results != nil {
			if err := write(EquityFile, func(p string) error { return m.reporter.WriteEquityCSV(out.Results.EquityCurve, p) }); err != nil {
				return written, err
			}
			if err := write(TradesFile, func(p string) error { return m.reporter.WriteTradesCSV(out.Results.Trades, p) }); err != nil {
				return written, err
			}
		}
	}
	if m.config.Excel {
		if err := write(WorkbookName, func(p string) error { return m.reporter.WriteWorkbook(out, p) }); err != nil {
			return written, err
		}
	}
	if m.config.JSON {
		if err := write(ReportFile, func(p string) error { return m.reporter.WriteReportJSON(out, p) }); err != nil {
			return written, err
		}
	}
	return written, nil
}

// ReportSweep prints the top sweep results and writes sweep.csv
func (m *ReportingManager) ReportSweep(symbol string, results []backtest.JobResult, top int) (string, error) {
	m.reporter.PrintSweep(results, top)
	if m.config.ConsoleOnly {
		return "", nil
	}
	path := filepath.Join(m.OutputDir(symbol), SweepFile)
	if err := m.reporter.WriteSweepCSV(results, path); err != nil {
		return "", err
	}
	return path, nil
}
