package types

import (
	"fmt"
	"math"
	"time"

	apperrors "github.com/ducminhle1904/stock-signal-backtest/internal/errors"
)

// Bar is one trading day of a single instrument.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is the ordered, read-only bar history of one instrument.
type Series struct {
	Symbol string
	Bars   []Bar
}

// NewSeries creates a series. It does not validate; call Validate before analysis.
func NewSeries(symbol string, bars []Bar) *Series {
	return &Series{Symbol: symbol, Bars: bars}
}

// Len returns the number of bars
func (s *Series) Len() int {
	return len(s.Bars)
}

func (s *Series) Closes() []float64 {
	return s.column(func(b Bar) float64 { return b.Close })
}

func (s *Series) Highs() []float64 {
	return s.column(func(b Bar) float64 { return b.High })
}

func (s *Series) Lows() []float64 {
	return s.column(func(b Bar) float64 { return b.Low })
}

func (s *Series) Opens() []float64 {
	return s.column(func(b Bar) float64 { return b.Open })
}

func (s *Series) Volumes() []float64 {
	return s.column(func(b Bar) float64 { return b.Volume })
}

// Dates returns the bar dates in order
func (s *Series) Dates() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Date
	}
	return out
}

func (s *Series) column(get func(Bar) float64) []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = get(b)
	}
	return out
}

// Validate checks the series invariants: at least one bar, strictly increasing
// dates and finite non-negative prices and volume. The first violation is returned.
func (s *Series) Validate() error {
	if s == nil || len(s.Bars) == 0 {
		return apperrors.NewInputError("types", "validate", apperrors.ErrEmptySeries, "series has no bars")
	}

	for i, b := range s.Bars {
		if i > 0 && !b.Date.After(s.Bars[i-1].Date) {
			return apperrors.NewInputError("types", "validate", apperrors.ErrNonMonotonicDates,
				"bar %d (%s) does not follow %s", i, b.Date.Format("2006-01-02"), s.Bars[i-1].Date.Format("2006-01-02"))
		}
		if err := validateBar(b); err != nil {
			return apperrors.NewInputError("types", "validate", apperrors.ErrInvalidPrice,
				"bar %d (%s): %v", i, b.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}

func validateBar(b Bar) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"open", b.Open},
		{"high", b.High},
		{"low", b.Low},
		{"close", b.Close},
		{"volume", b.Volume},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s is not a finite number", f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%s is negative (%.4f)", f.name, f.value)
		}
	}
	return nil
}
