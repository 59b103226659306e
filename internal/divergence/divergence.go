// Package divergence flags bars where close and volume move in opposite
// directions over a single step.
package divergence

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// Flag is the per-bar divergence label. Its numeric value is what the
// composite signal tests against: Bottom is +1 and Top is -1.
type Flag int

const (
	None   Flag = 0
	Bottom Flag = 1
	Top    Flag = -1
)

func (f Flag) String() string {
	switch f {
	case Bottom:
		return "BOTTOM"
	case Top:
		return "TOP"
	default:
		return "NONE"
	}
}

// Classify labels one bar from the single-step changes of close and volume.
// Only the sign matters; undefined changes give None.
func Classify(priceChange, volumeChange float64) Flag {
	if math.IsNaN(priceChange) || math.IsNaN(volumeChange) {
		return None
	}
	switch {
	case priceChange > 0 && volumeChange < 0:
		return Top
	case priceChange < 0 && volumeChange > 0:
		return Bottom
	default:
		return None
	}
}

// PercentChange returns (v[i] - v[i-1]) / v[i-1]. Index 0 is NaN. A move
// away from zero yields a signed infinity, zero to zero yields NaN.
func PercentChange(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	out[0] = math.NaN()
	for i := 1; i < len(values); i++ {
		out[i] = (values[i] - values[i-1]) / values[i-1]
	}
	return out
}

// DetectFromChanges labels every bar from precomputed change columns.
func DetectFromChanges(priceChanges, volumeChanges []float64) ([]Flag, error) {
	if len(priceChanges) != len(volumeChanges) {
		return nil, fmt.Errorf("price changes (%d) and volume changes (%d) differ in length",
			len(priceChanges), len(volumeChanges))
	}
	flags := make([]Flag, len(priceChanges))
	for i := range flags {
		flags[i] = Classify(priceChanges[i], volumeChanges[i])
	}
	if len(flags) > 0 {
		flags[0] = None
	}
	return flags, nil
}

// Detect labels every bar of the series. The first bar is always None.
func Detect(series *types.Series) []Flag {
	flags, _ := DetectFromChanges(PercentChange(series.Closes()), PercentChange(series.Volumes()))
	return flags
}

// Count returns how many top and bottom divergences were flagged.
func Count(flags []Flag) (tops, bottoms int) {
	for _, f := range flags {
		switch f {
		case Top:
			tops++
		case Bottom:
			bottoms++
		}
	}
	return tops, bottoms
}
