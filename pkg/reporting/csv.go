package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ducminhle1904/stock-signal-backtest/internal/backtest"
	"github.com/ducminhle1904/stock-signal-backtest/internal/indicators"
	"github.com/ducminhle1904/stock-signal-backtest/internal/signals"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct {
	paths *DefaultPathManager
}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{paths: NewDefaultPathManager()}
}

// writeCSV creates path and streams header and rows into it
func (r *DefaultCSVReporter) writeCSV(path string, header []string, rows [][]string) error {
	if err := r.paths.EnsureDirectoryExists(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// AnalysisHeader returns the columns of the augmented frame
func AnalysisHeader(out *Output) []string {
	header := []string{"date", "open", "high", "low", "close", "volume"}
	if out.Indicators != nil {
		header = append(header, out.Indicators.ColumnNames()...)
	}
	header = append(header, "divergence", "significant")
	if out.Signals != nil {
		header = append(header, signals.Rules...)
	}
	return header
}

// AnalysisRows returns one row per bar, aligned with AnalysisHeader.
// Undefined indicator values are left empty.
func AnalysisRows(out *Output) [][]string {
	n := out.Series.Len()
	var columns [][]float64
	if out.Indicators != nil {
		for _, name := range out.Indicators.ColumnNames() {
			col, _ := out.Indicators.Column(name)
			columns = append(columns, col)
		}
	}
	significant := make(map[int]bool, len(out.Significant))
	for _, s := range out.Significant {
		significant[s.Index] = true
	}

	rows := make([][]string, 0, n)
	for i, bar := range out.Series.Bars {
		row := []string{
			bar.Date.Format(dateLayout),
			formatFloat(bar.Open),
			formatFloat(bar.High),
			formatFloat(bar.Low),
			formatFloat(bar.Close),
			formatFloat(bar.Volume),
		}
		for _, col := range columns {
			row = append(row, formatFloat(col[i]))
		}

		flag := "0"
		if i < len(out.Divergence) {
			flag = strconv.Itoa(int(out.Divergence[i]))
		}
		row = append(row, flag, strconv.FormatBool(significant[i]))

		if out.Signals != nil {
			for _, rule := range signals.Rules {
				col, _ := out.Signals.Get(rule)
				row = append(row, strconv.Itoa(int(col[i])))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteAnalysisCSV writes the series augmented with indicators, divergence flags and signals
func (r *DefaultCSVReporter) WriteAnalysisCSV(out *Output, path string) error {
	return r.writeCSV(path, AnalysisHeader(out), AnalysisRows(out))
}

// WriteMarkersCSV writes chart markers
func (r *DefaultCSVReporter) WriteMarkersCSV(markers []types.Marker, path string) error {
	rows := make([][]string, 0, len(markers))
	for _, m := range markers {
		rows = append(rows, []string{m.Date.Format(dateLayout), m.Kind, formatFloat(m.Price)})
	}
	return r.writeCSV(path, []string{"date", "kind", "price"}, rows)
}

// WriteEquityCSV writes the per-bar equity curve
func (r *DefaultCSVReporter) WriteEquityCSV(curve []backtest.EquityPoint, path string) error {
	rows := make([][]string, 0, len(curve))
	for _, p := range curve {
		rows = append(rows, []string{
			p.Date.Format(dateLayout),
			formatFloat(p.Cash),
			formatFloat(p.Value),
			formatFloat(p.Exposure),
		})
	}
	return r.writeCSV(path, []string{"date", "cash", "value", "exposure"}, rows)
}

// WriteTradesCSV writes the trade journal
func (r *DefaultCSVReporter) WriteTradesCSV(trades []backtest.Trade, path string) error {
	header := []string{
		"Entry_Date", "Exit_Date", "Entry_Price", "Exit_Price", "Size",
		"PnL", "Return_%", "Bars_Held", "Exit_Reason", "Entry_Order", "Exit_Order",
	}
	rows := make([][]string, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []string{
			t.EntryDate.Format(dateLayout),
			t.ExitDate.Format(dateLayout),
			formatFloat(t.EntryPrice),
			formatFloat(t.ExitPrice),
			formatFloat(t.Size),
			fmt.Sprintf("%.2f", t.PnL),
			fmt.Sprintf("%.4f", t.ReturnPct),
			strconv.Itoa(t.BarsHeld),
			t.ExitReason,
			t.EntryOrderID,
			t.ExitOrderID,
		})
	}
	return r.writeCSV(path, header, rows)
}

// WriteSweepCSV writes ranked sweep results, one row per parameter set
func (r *DefaultCSVReporter) WriteSweepCSV(results []backtest.JobResult, path string) error {
	header := []string{
		"rank", "stop_loss_pct", "take_profit_pct", "order_size", "sharpe_ratio",
		"total_return_pct", "annualized_return_pct", "max_drawdown_pct", "final_cash",
		"trades", "duration_ms", "error",
	}
	rows := make([][]string, 0, len(results))
	for i, jr := range results {
		row := []string{
			strconv.Itoa(i + 1),
			formatFloat(jr.Config.StopLossPct),
			formatFloat(jr.Config.TakeProfitPct),
			formatFloat(jr.Config.OrderSize),
		}
		if jr.Results != nil && jr.Error == nil {
			res := jr.Results
			row = append(row,
				formatFloat(res.SharpeRatio),
				formatFloat(res.TotalReturn),
				formatFloat(res.AnnualizedReturn),
				formatFloat(res.MaxDrawdown),
				formatFloat(res.FinalCash),
				strconv.Itoa(res.TotalTrades),
			)
		} else {
			row = append(row, "", "", "", "", "", "")
		}
		row = append(row, strconv.FormatInt(jr.Duration.Milliseconds(), 10))
		if jr.Error != nil {
			row = append(row, jr.Error.Error())
		} else {
			row = append(row, "")
		}
		rows = append(rows, row)
	}
	return r.writeCSV(path, header, rows)
}

func formatFloat(v float64) string {
	if !indicators.IsDefined(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
