package signals

import (
	"time"

	"github.com/ducminhle1904/stock-signal-backtest/internal/indicators"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// Alert is the OR fan-in of all rules on one bar.
type Alert struct {
	Index int
	Date  time.Time
	Buys  []string
	Sells []string
}

// Alerts returns every bar on which at least one rule is not neutral.
func Alerts(f *Frame) []Alert {
	var out []Alert
	for i := 0; i < f.Len(); i++ {
		a := Alert{Index: i, Date: f.Dates[i]}
		for _, rule := range Rules {
			col, _ := f.Get(rule)
			switch col[i] {
			case Buy:
				a.Buys = append(a.Buys, rule)
			case Sell:
				a.Sells = append(a.Sells, rule)
			}
		}
		if len(a.Buys) > 0 || len(a.Sells) > 0 {
			out = append(out, a)
		}
	}
	return out
}

// Recent returns the last n alerts, oldest first.
func Recent(f *Frame, n int) []Alert {
	all := Alerts(f)
	if n <= 0 {
		return nil
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

// Markers returns chart markers for every non-neutral rule signal. Buys
// are placed on the bar low and sells on the bar high.
func Markers(f *Frame, series *types.Series) []types.Marker {
	var out []types.Marker
	for _, rule := range Rules {
		col, _ := f.Get(rule)
		for i, s := range col {
			bar := series.Bars[i]
			switch s {
			case Buy:
				out = append(out, types.Marker{Kind: rule + "_buy", Date: bar.Date, Price: bar.Low})
			case Sell:
				out = append(out, types.Marker{Kind: rule + "_sell", Date: bar.Date, Price: bar.High})
			}
		}
	}
	return out
}

// Counts tallies the buy and sell signals of every rule.
func Counts(f *Frame) map[string][2]int {
	out := make(map[string][2]int, len(Rules))
	for _, rule := range Rules {
		col, _ := f.Get(rule)
		var c [2]int
		for _, s := range col {
			switch s {
			case Buy:
				c[0]++
			case Sell:
				c[1]++
			}
		}
		out[rule] = c
	}
	return out
}

// Snapshot is the indicator state of a single bar.
type Snapshot struct {
	Date    time.Time
	Close   float64
	Values  map[string]float64
	Columns []string
	Signals map[string]Signal
	Stack   bool
}

// Latest returns the indicator values and signals of the last bar.
func Latest(frame *indicators.IndicatorFrame, f *Frame) (Snapshot, bool) {
	n := frame.Len()
	if n == 0 || f.Len() != n {
		return Snapshot{}, false
	}
	last := n - 1
	snap := Snapshot{
		Date:    frame.Series.Bars[last].Date,
		Close:   frame.Series.Bars[last].Close,
		Values:  make(map[string]float64),
		Columns: frame.ColumnNames(),
		Signals: make(map[string]Signal, len(Rules)),
		Stack:   f.BullishStack[last],
	}
	for _, name := range snap.Columns {
		col, _ := frame.Column(name)
		snap.Values[name] = col[last]
	}
	for _, rule := range Rules {
		col, _ := f.Get(rule)
		snap.Signals[rule] = col[last]
	}
	return snap, true
}
