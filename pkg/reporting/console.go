package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ducminhle1904/stock-signal-backtest/internal/backtest"
	"github.com/ducminhle1904/stock-signal-backtest/internal/indicators"
	"github.com/ducminhle1904/stock-signal-backtest/internal/signals"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const dateLayout = "2006-01-02"

// DefaultConsoleReporter implements console output functionality
type DefaultConsoleReporter struct {
	out io.Writer
}

// NewDefaultConsoleReporter creates a console reporter writing to stdout
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{out: os.Stdout}
}

// NewConsoleReporterTo creates a console reporter writing to w
func NewConsoleReporterTo(w io.Writer) *DefaultConsoleReporter {
	return &DefaultConsoleReporter{out: w}
}

func (r *DefaultConsoleReporter) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

// OutputResults prints the backtest summary
func (r *DefaultConsoleReporter) OutputResults(results *backtest.Results) {
	if results == nil {
		return
	}
	t := r.newTable(fmt.Sprintf("📊 BACKTEST RESULTS %s (%s)", results.Symbol, results.EntryRule))

	position := "flat"
	if results.OpenAtEnd {
		position = "open"
	}

	t.AppendRows([]table.Row{
		{"💰 Initial Cash", fmt.Sprintf("$%.2f", results.InitialCash)},
		{"💰 Final Cash", fmt.Sprintf("$%.2f", results.FinalCash)},
		{"💰 Final Equity", fmt.Sprintf("$%.2f", results.FinalEquity)},
		{"📈 Total Return", fmt.Sprintf("%.2f%%", results.TotalReturn)},
		{"📈 Annualized Return", fmt.Sprintf("%.2f%%", results.AnnualizedReturn)},
		{"📉 Max Drawdown", fmt.Sprintf("%.2f%%", results.MaxDrawdown)},
		{"📊 Sharpe Ratio", fmt.Sprintf("%.2f", results.SharpeRatio)},
		{"💹 Profit Factor", fmt.Sprintf("%.2f", results.ProfitFactor)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🔄 Total Trades", results.TotalTrades},
		{"✅ Winning Trades", fmt.Sprintf("%d (%.1f%%)", results.WinningTrades, results.WinRate)},
		{"❌ Losing Trades", results.LosingTrades},
		{"🚫 Canceled Orders", results.CanceledOrders},
		{"🎯 Exposure", fmt.Sprintf("%.1f%%", results.Exposure*100)},
		{"📌 Position At End", position},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 22, Align: text.AlignLeft},
		{Number: 2, WidthMin: 16, Align: text.AlignRight},
	})
	t.Render()
	fmt.Fprintln(r.out)
}

// PrintSnapshot prints the indicator values and rule outputs of the last bar
func (r *DefaultConsoleReporter) PrintSnapshot(snap signals.Snapshot) {
	t := r.newTable(fmt.Sprintf("📈 LATEST INDICATORS %s", snap.Date.Format(dateLayout)))
	t.AppendHeader(table.Row{"Indicator", "Value"})
	t.AppendRow(table.Row{"Close", formatValue(snap.Close)})
	for _, name := range snap.Columns {
		t.AppendRow(table.Row{name, formatValue(snap.Values[name])})
	}
	t.AppendSeparator()
	for _, rule := range signals.Rules {
		t.AppendRow(table.Row{rule, snap.Signals[rule].String()})
	}
	t.AppendRow(table.Row{"ma_stack", snap.Stack})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	t.Render()
	fmt.Fprintln(r.out)
}

// PrintAlerts prints the bars on which any rule fired
func (r *DefaultConsoleReporter) PrintAlerts(alerts []signals.Alert) {
	t := r.newTable("🔔 RECENT SIGNALS")
	t.AppendHeader(table.Row{"Date", "Buy", "Sell"})
	if len(alerts) == 0 {
		t.AppendRow(table.Row{"-", "none", "none"})
	}
	for _, a := range alerts {
		t.AppendRow(table.Row{a.Date.Format(dateLayout), joinOrDash(a.Buys), joinOrDash(a.Sells)})
	}
	t.Render()
	fmt.Fprintln(r.out)
}

// PrintTrades prints the trade journal
func (r *DefaultConsoleReporter) PrintTrades(trades []backtest.Trade) {
	t := r.newTable("🧾 TRADE JOURNAL")
	t.AppendHeader(table.Row{"#", "Entry", "Exit", "Entry Price", "Exit Price", "Size", "PnL", "Return", "Bars", "Reason"})
	var total float64
	for i, tr := range trades {
		total += tr.PnL
		t.AppendRow(table.Row{
			i + 1,
			tr.EntryDate.Format(dateLayout),
			tr.ExitDate.Format(dateLayout),
			fmt.Sprintf("%.2f", tr.EntryPrice),
			fmt.Sprintf("%.2f", tr.ExitPrice),
			fmt.Sprintf("%.4g", tr.Size),
			fmt.Sprintf("%.2f", tr.PnL),
			fmt.Sprintf("%.2f%%", tr.ReturnPct),
			tr.BarsHeld,
			tr.ExitReason,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Total", fmt.Sprintf("%.2f", total), "", "", ""})
	t.Render()
	fmt.Fprintln(r.out)
}

// PrintSweep prints the top ranked parameter sweep results. results must
// already be ranked.
func (r *DefaultConsoleReporter) PrintSweep(results []backtest.JobResult, top int) {
	t := r.newTable("🔬 PARAMETER SWEEP")
	t.AppendHeader(table.Row{"Rank", "Stop Loss", "Take Profit", "Size", "Sharpe", "Return", "Max DD", "Trades", "Error"})
	for i, jr := range results {
		if top > 0 && i >= top {
			break
		}
		row := table.Row{
			i + 1,
			fmt.Sprintf("%.1f%%", jr.Config.StopLossPct*100),
			fmt.Sprintf("%.1f%%", jr.Config.TakeProfitPct*100),
			fmt.Sprintf("%.4g", jr.Config.OrderSize),
		}
		if jr.Error != nil || jr.Results == nil {
			row = append(row, "-", "-", "-", "-", errString(jr.Error))
		} else {
			row = append(row,
				fmt.Sprintf("%.2f", jr.Results.SharpeRatio),
				fmt.Sprintf("%.2f%%", jr.Results.TotalReturn),
				fmt.Sprintf("%.2f%%", jr.Results.MaxDrawdown),
				jr.Results.TotalTrades,
				"",
			)
		}
		t.AppendRow(row)
	}
	t.Render()
	fmt.Fprintln(r.out)
}

func formatValue(v float64) string {
	if !indicators.IsDefined(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

func errString(err error) string {
	if err == nil {
		return "no result"
	}
	return err.Error()
}
