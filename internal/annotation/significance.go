// Package annotation marks past divergences that were followed by a large
// price swing. It reads bars after the flagged one, so its output is for
// retrospective charts and reports only and must never feed signal
// generation or the backtest.
package annotation

import (
	"fmt"
	"math"
	"time"

	"github.com/ducminhle1904/stock-signal-backtest/internal/divergence"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// Marker kinds produced by this package
const (
	KindTopDivergence    = "top_divergence"
	KindBottomDivergence = "bottom_divergence"
)

// Params configures the significance filter
type Params struct {
	Recent    int     `json:"recent"`
	Window    int     `json:"window"`
	Threshold float64 `json:"threshold"`
}

// DefaultParams returns last 60 bars, 5 bar look-ahead and a 5% swing.
func DefaultParams() Params {
	return Params{Recent: 60, Window: 5, Threshold: 0.05}
}

func (p Params) Validate() error {
	if p.Recent <= 0 {
		return fmt.Errorf("recent window must be positive, got %d", p.Recent)
	}
	if p.Window <= 0 {
		return fmt.Errorf("look-ahead window must be positive, got %d", p.Window)
	}
	if p.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %.4f", p.Threshold)
	}
	return nil
}

// Significant is a retained divergence with the swing that followed it.
type Significant struct {
	Index       int
	Date        time.Time
	Flag        divergence.Flag
	Close       float64
	MaxUp       float64
	MaxDown     float64
	MarkerPrice float64
}

// Marker converts the annotation to a chart marker. Tops sit on the high,
// bottoms on the low.
func (s Significant) Marker() types.Marker {
	kind := KindBottomDivergence
	if s.Flag == divergence.Top {
		kind = KindTopDivergence
	}
	return types.Marker{Kind: kind, Date: s.Date, Price: s.MarkerPrice}
}

// Filter keeps the divergences among the last Recent bars whose following
// Window bars moved at least Threshold away from the flagged close in either
// direction. A divergence without a full window of later bars is dropped.
func Filter(series *types.Series, flags []divergence.Flag, params Params) ([]Significant, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	n := series.Len()
	if len(flags) != n {
		return nil, fmt.Errorf("flag count %d does not match series length %d", len(flags), n)
	}

	start := n - params.Recent
	if start < 0 {
		start = 0
	}

	var out []Significant
	for i := start; i < n; i++ {
		if flags[i] == divergence.None {
			continue
		}
		if i+params.Window >= n {
			continue
		}

		bar := series.Bars[i]
		if bar.Close == 0 {
			continue
		}

		maxHigh, minLow := math.Inf(-1), math.Inf(1)
		for _, next := range series.Bars[i+1 : i+1+params.Window] {
			maxHigh = math.Max(maxHigh, next.High)
			minLow = math.Min(minLow, next.Low)
		}
		up := (maxHigh - bar.Close) / bar.Close
		down := (minLow - bar.Close) / bar.Close

		if math.Abs(up) < params.Threshold && math.Abs(down) < params.Threshold {
			continue
		}

		price := bar.Low
		if flags[i] == divergence.Top {
			price = bar.High
		}
		out = append(out, Significant{
			Index:       i,
			Date:        bar.Date,
			Flag:        flags[i],
			Close:       bar.Close,
			MaxUp:       up,
			MaxDown:     down,
			MarkerPrice: price,
		})
	}
	return out, nil
}

// Markers converts a filter result to chart markers.
func Markers(significant []Significant) []types.Marker {
	out := make([]types.Marker, 0, len(significant))
	for _, s := range significant {
		out = append(out, s.Marker())
	}
	return out
}
