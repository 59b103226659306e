package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/ducminhle1904/stock-signal-backtest/internal/backtest"
	"github.com/ducminhle1904/stock-signal-backtest/internal/divergence"
	"github.com/ducminhle1904/stock-signal-backtest/internal/signals"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/config"
	"github.com/tidwall/pretty"
)

// ReportDocument is the content of report.json
type ReportDocument struct {
	RunID       string                 `json:"run_id,omitempty"`
	Symbol      string                 `json:"symbol"`
	EntryRule   string                 `json:"entry_rule,omitempty"`
	GeneratedAt time.Time              `json:"generated_at"`
	FirstBar    time.Time              `json:"first_bar"`
	LastBar     time.Time              `json:"last_bar"`
	Bars        int                    `json:"bars"`
	Report      *backtest.Report       `json:"report,omitempty"`
	Extended    *ExtendedMetrics       `json:"extended,omitempty"`
	Divergence  DivergenceSummary      `json:"divergence"`
	Signals     map[string]SignalCount `json:"signals,omitempty"`
	Config      *config.Config         `json:"config,omitempty"`
}

// ExtendedMetrics are the trade statistics beyond the scalar report.
// ProfitFactor is null when no trade lost money.
type ExtendedMetrics struct {
	TotalReturnPct float64  `json:"total_return_pct"`
	FinalEquity    float64  `json:"final_equity"`
	OpenAtEnd      bool     `json:"open_at_end"`
	Trades         int      `json:"trades"`
	WinRatePct     float64  `json:"win_rate_pct"`
	ProfitFactor   *float64 `json:"profit_factor"`
	Exposure       float64  `json:"exposure"`
	CanceledOrders int      `json:"canceled_orders"`
}

// DivergenceSummary counts flagged and retained divergences
type DivergenceSummary struct {
	Tops        int `json:"tops"`
	Bottoms     int `json:"bottoms"`
	Significant int `json:"significant"`
}

// SignalCount counts the buys and sells of one rule
type SignalCount struct {
	Buy  int `json:"buy"`
	Sell int `json:"sell"`
}

// DefaultJSONFormatter implements JSON output functionality
type DefaultJSONFormatter struct {
	paths *DefaultPathManager
	now   func() time.Time
}

// NewDefaultJSONFormatter creates a new JSON formatter
func NewDefaultJSONFormatter() *DefaultJSONFormatter {
	return &DefaultJSONFormatter{paths: NewDefaultPathManager(), now: time.Now}
}

// BuildDocument assembles the report document of a run
func (f *DefaultJSONFormatter) BuildDocument(out *Output) ReportDocument {
	doc := ReportDocument{
		Symbol:      out.Symbol,
		GeneratedAt: f.now().UTC(),
		Bars:        out.Series.Len(),
		Config:      out.Config,
	}
	if n := out.Series.Len(); n > 0 {
		doc.FirstBar = out.Series.Bars[0].Date
		doc.LastBar = out.Series.Bars[n-1].Date
	}

	tops, bottoms := divergence.Count(out.Divergence)
	doc.Divergence = DivergenceSummary{Tops: tops, Bottoms: bottoms, Significant: len(out.Significant)}

	if out.Signals != nil {
		doc.Signals = make(map[string]SignalCount, len(signals.Rules))
		for rule, c := range signals.Counts(out.Signals) {
			doc.Signals[rule] = SignalCount{Buy: c[0], Sell: c[1]}
		}
	}

	if res := out.Results; res != nil {
		report := res.Report()
		doc.RunID = res.RunID
		doc.EntryRule = res.EntryRule
		doc.Report = &report
		doc.Extended = &ExtendedMetrics{
			TotalReturnPct: res.TotalReturn,
			FinalEquity:    res.FinalEquity,
			OpenAtEnd:      res.OpenAtEnd,
			Trades:         res.TotalTrades,
			WinRatePct:     res.WinRate,
			ProfitFactor:   finite(res.ProfitFactor),
			Exposure:       res.Exposure,
			CanceledOrders: res.CanceledOrders,
		}
	}
	return doc
}

// FormatReport returns the pretty-printed report document
func (f *DefaultJSONFormatter) FormatReport(out *Output) ([]byte, error) {
	data, err := json.Marshal(f.BuildDocument(out))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return pretty.Pretty(data), nil
}

// PrintReport writes the report document with terminal colors
func (f *DefaultJSONFormatter) PrintReport(w io.Writer, out *Output) error {
	data, err := f.FormatReport(out)
	if err != nil {
		return err
	}
	_, err = w.Write(pretty.Color(data, nil))
	return err
}

// WriteReportJSON writes report.json
func (f *DefaultJSONFormatter) WriteReportJSON(out *Output, path string) error {
	data, err := f.FormatReport(out)
	if err != nil {
		return err
	}
	if err := f.paths.EnsureDirectoryExists(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
