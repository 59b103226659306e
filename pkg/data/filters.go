package data

import (
	"time"

	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// DefaultDataFilter implements DataFilter for common filtering operations
type DefaultDataFilter struct{}

// NewDefaultDataFilter creates a new default data filter
func NewDefaultDataFilter() *DefaultDataFilter {
	return &DefaultDataFilter{}
}

// FilterByDateRange keeps bars within [start, end]. A zero bound is open.
func (f *DefaultDataFilter) FilterByDateRange(series *types.Series, start, end time.Time) *types.Series {
	var filtered []types.Bar
	for _, bar := range series.Bars {
		if !start.IsZero() && bar.Date.Before(start) {
			continue
		}
		if !end.IsZero() && bar.Date.After(end) {
			continue
		}
		filtered = append(filtered, bar)
	}
	return types.NewSeries(series.Symbol, filtered)
}

// Tail keeps the last n bars. n <= 0 keeps everything.
func (f *DefaultDataFilter) Tail(series *types.Series, n int) *types.Series {
	if n <= 0 || n >= series.Len() {
		return series
	}
	return types.NewSeries(series.Symbol, series.Bars[series.Len()-n:])
}
