package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ducminhle1904/stock-signal-backtest/internal/annotation"
	"github.com/ducminhle1904/stock-signal-backtest/internal/backtest"
	"github.com/ducminhle1904/stock-signal-backtest/internal/divergence"
	"github.com/ducminhle1904/stock-signal-backtest/internal/indicators"
	"github.com/ducminhle1904/stock-signal-backtest/internal/signals"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/config"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func generateSeries(count int) *types.Series {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, count)
	price := 100.0
	for i := 0; i < count; i++ {
		price += math.Sin(float64(i)/3) * 2.5
		bars[i] = types.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: 1000 + float64((i*37)%11)*90,
		}
	}
	return types.NewSeries("TEST", bars)
}

// buildOutput runs the analysis stages and a threshold backtest over a synthetic series.
func buildOutput(t *testing.T, bars int) *Output {
	t.Helper()
	series := generateSeries(bars)

	frame, err := indicators.NewEngine(indicators.DefaultParams()).Compute(series)
	require.NoError(t, err)
	flags := divergence.Detect(series)
	sig, err := signals.NewFuser(signals.DefaultParams()).Fuse(frame, flags)
	require.NoError(t, err)
	significant, err := annotation.Filter(series, flags, annotation.DefaultParams())
	require.NoError(t, err)

	cfg := backtest.DefaultConfig()
	cfg.Symbol = series.Symbol
	engine, err := backtest.NewEngine(cfg, backtest.PriceThresholdEntry{Price: 1000},
		backtest.Input{Series: series, Signals: sig}, zap.NewNop())
	require.NoError(t, err)
	results, err := engine.Run()
	require.NoError(t, err)

	return &Output{
		Symbol:      series.Symbol,
		Series:      series,
		Indicators:  frame,
		Divergence:  flags,
		Signals:     sig,
		Significant: significant,
		Markers:     annotation.Markers(significant),
		Results:     results,
		Config:      config.DefaultConfig(),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestDefaultOutputDir(t *testing.T) {
	assert.Equal(t, filepath.Join("results", "AAPL"), DefaultOutputDir(" aapl "))
	assert.Equal(t, filepath.Join("results", "UNKNOWN"), DefaultOutputDir(""))
	assert.Equal(t, "600519_analysis.csv", AnalysisFileName("600519"))
}

func TestWriteAnalysisCSV(t *testing.T) {
	out := buildOutput(t, 80)
	path := filepath.Join(t.TempDir(), "nested", AnalysisFileName(out.Symbol))

	require.NoError(t, NewDefaultCSVReporter().WriteAnalysisCSV(out, path))

	records := readCSV(t, path)
	require.Len(t, records, out.Series.Len()+1)
	header := records[0]
	assert.Equal(t, AnalysisHeader(out), header)
	assert.Contains(t, header, "MA60")
	assert.Contains(t, header, signals.RuleComposite)
	for _, row := range records {
		assert.Len(t, row, len(header))
	}

	// MA60 is undefined on the first row and written as an empty field
	ma60 := indexOf(header, "MA60")
	assert.Equal(t, "", records[1][ma60])
	assert.NotEqual(t, "", records[len(records)-1][ma60])
	assert.Equal(t, "2024-01-02", records[1][0])
}

func TestWriteTradesAndEquityCSV(t *testing.T) {
	out := buildOutput(t, 80)
	dir := t.TempDir()
	r := NewDefaultCSVReporter()

	require.NoError(t, r.WriteEquityCSV(out.Results.EquityCurve, filepath.Join(dir, EquityFile)))
	require.NoError(t, r.WriteTradesCSV(out.Results.Trades, filepath.Join(dir, TradesFile)))
	require.NoError(t, r.WriteMarkersCSV(out.Markers, filepath.Join(dir, MarkersFile)))

	equity := readCSV(t, filepath.Join(dir, EquityFile))
	assert.Equal(t, []string{"date", "cash", "value", "exposure"}, equity[0])
	assert.Len(t, equity, len(out.Results.EquityCurve)+1)

	trades := readCSV(t, filepath.Join(dir, TradesFile))
	assert.Len(t, trades, len(out.Results.Trades)+1)
	assert.Equal(t, "Exit_Reason", trades[0][8])

	markers := readCSV(t, filepath.Join(dir, MarkersFile))
	assert.Len(t, markers, len(out.Markers)+1)
}

func TestWriteSweepCSV(t *testing.T) {
	out := buildOutput(t, 80)
	results := []backtest.JobResult{
		{ID: "a", Config: out.Results.Config, Results: out.Results, Duration: 3 * time.Millisecond},
		{ID: "b", Config: out.Results.Config, Error: errors.New("boom")},
	}
	path := filepath.Join(t.TempDir(), SweepFile)

	require.NoError(t, NewDefaultCSVReporter().WriteSweepCSV(results, path))

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "3", records[1][10])
	assert.Equal(t, "boom", records[2][11])
	assert.Equal(t, "", records[2][4])
}

func TestWriteWorkbook(t *testing.T) {
	out := buildOutput(t, 80)
	path := filepath.Join(t.TempDir(), WorkbookName)

	require.NoError(t, NewDefaultExcelReporter().WriteWorkbook(out, path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	assert.Equal(t, []string{SheetSummary, SheetIndicators, SheetSignals, SheetTrades, SheetEquity}, fx.GetSheetList())

	rows, err := fx.GetRows(SheetIndicators)
	require.NoError(t, err)
	assert.Len(t, rows, out.Series.Len()+1)
	assert.Equal(t, "Date", rows[0][0])

	title, err := fx.GetCellValue(SheetSummary, "A1")
	require.NoError(t, err)
	assert.Contains(t, title, "TEST")
}

func TestWorkbookWithoutResults(t *testing.T) {
	out := buildOutput(t, 40)
	out.Results = nil
	path := filepath.Join(t.TempDir(), WorkbookName)

	require.NoError(t, NewDefaultExcelReporter().WriteWorkbook(out, path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()
	rows, err := fx.GetRows(SheetTrades)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFormatReport(t *testing.T) {
	out := buildOutput(t, 80)
	f := NewDefaultJSONFormatter()
	f.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	data, err := f.FormatReport(out)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "TEST", doc["symbol"])
	assert.Equal(t, float64(80), doc["bars"])

	report, ok := doc["report"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"final_cash", "sharpe_ratio", "max_drawdown_pct", "annualized_return_pct"} {
		assert.Contains(t, report, key)
	}
	assert.Contains(t, doc, "config")
	assert.Contains(t, string(data), "\n  \"symbol\"")
}

func TestFormatReportInfiniteProfitFactor(t *testing.T) {
	out := buildOutput(t, 40)
	out.Results.ProfitFactor = math.Inf(1)

	data, err := NewDefaultJSONFormatter().FormatReport(out)
	require.NoError(t, err)

	var doc ReportDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	require.NotNil(t, doc.Extended)
	assert.Nil(t, doc.Extended.ProfitFactor)
}

func TestConsoleReporter(t *testing.T) {
	out := buildOutput(t, 80)
	var buf bytes.Buffer
	r := NewConsoleReporterTo(&buf)

	snap, ok := signals.Latest(out.Indicators, out.Signals)
	require.True(t, ok)
	r.PrintSnapshot(snap)
	r.PrintAlerts(nil)
	r.OutputResults(out.Results)
	r.PrintTrades(out.Results.Trades)

	text := buf.String()
	assert.Contains(t, text, "LATEST INDICATORS")
	assert.Contains(t, text, "MA20")
	assert.Contains(t, text, "RECENT SIGNALS")
	assert.Contains(t, text, "BACKTEST RESULTS")
	assert.Contains(t, text, "TRADE JOURNAL")
}

func TestReportingManager(t *testing.T) {
	out := buildOutput(t, 80)
	dir := t.TempDir()
	var buf bytes.Buffer

	cfg := config.DefaultConfig().Output
	cfg.Dir = dir
	m := NewReportingManager(cfg, NewReporterTo(&buf))

	written, err := m.ReportFiles(out)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, AnalysisFileName("TEST")),
		filepath.Join(dir, MarkersFile),
		filepath.Join(dir, EquityFile),
		filepath.Join(dir, TradesFile),
		filepath.Join(dir, WorkbookName),
		filepath.Join(dir, ReportFile),
	}, written)
	for _, p := range written {
		assert.FileExists(t, p)
	}

	m.ReportConsole(out)
	assert.Contains(t, buf.String(), "BACKTEST RESULTS")
}

func TestReportingManagerConsoleOnly(t *testing.T) {
	out := buildOutput(t, 40)
	cfg := config.DefaultConfig().Output
	cfg.ConsoleOnly = true
	cfg.Dir = t.TempDir()
	m := NewReportingManager(cfg, NewReporterTo(&bytes.Buffer{}))

	written, err := m.ReportFiles(out)
	require.NoError(t, err)
	assert.Empty(t, written)

	path, err := m.ReportSweep("TEST", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}
