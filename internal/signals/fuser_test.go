package signals

import (
	"math"
	"testing"
	"time"

	"github.com/ducminhle1904/stock-signal-backtest/internal/divergence"
	"github.com/ducminhle1904/stock-signal-backtest/internal/indicators"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func TestFuse_CompositeRequiresAllThree(t *testing.T) {
	frame := handFrame()
	flags := []divergence.Flag{divergence.None, divergence.None, divergence.Bottom, divergence.Bottom}

	out, err := NewFuser(DefaultParams()).Fuse(frame, flags)
	require.NoError(t, err)

	assert.Equal(t, []Signal{Neutral, Neutral, Buy, Neutral}, out.MACD)
	assert.Equal(t, []bool{false, true, true, false}, out.BullishStack)
	assert.Equal(t, Buy, out.Composite[2])
	assert.True(t, out.IsCompositeBuy(2))
	assert.False(t, out.IsCompositeBuy(3))

	// same bar without divergence: no composite
	flags[2] = divergence.Top
	out, err = NewFuser(DefaultParams()).Fuse(frame, flags)
	require.NoError(t, err)
	assert.Equal(t, Neutral, out.Composite[2])
}

func TestFuse_ThresholdRules(t *testing.T) {
	frame := handFrame()
	frame.RSI = []float64{nan, 25, 50, 75}
	frame.Boll = indicators.BollingerResult{
		Upper:  []float64{nan, 12, 12, 9},
		Middle: []float64{nan, 10, 10, 8},
		Lower:  []float64{nan, 8, 10.5, 7},
	}

	out, err := NewFuser(DefaultParams()).Fuse(frame, make([]divergence.Flag, 4))
	require.NoError(t, err)

	assert.Equal(t, []Signal{Neutral, Buy, Neutral, Sell}, out.RSI)
	assert.Equal(t, []Signal{Neutral, Neutral, Buy, Sell}, out.Bollinger)
}

func TestFuse_DeathCross(t *testing.T) {
	frame := handFrame()
	frame.MACD.DIF = []float64{1, 1, -1, -1}

	out, err := NewFuser(DefaultParams()).Fuse(frame, make([]divergence.Flag, 4))
	require.NoError(t, err)
	assert.Equal(t, Sell, out.MACD[2])
}

func TestFuse_LengthMismatch(t *testing.T) {
	_, err := NewFuser(DefaultParams()).Fuse(handFrame(), make([]divergence.Flag, 2))
	assert.Error(t, err)
}

func TestFuse_FlatSeriesIsNeutral(t *testing.T) {
	series := flatSeries(80)
	frame, err := indicators.NewEngine(indicators.DefaultParams()).Compute(series)
	require.NoError(t, err)

	out, err := NewFuser(DefaultParams()).Fuse(frame, divergence.Detect(series))
	require.NoError(t, err)

	assert.Empty(t, Alerts(out))
	for rule, c := range Counts(out) {
		assert.Equal(t, [2]int{0, 0}, c, rule)
	}
}

func TestAlertsAndRecent(t *testing.T) {
	frame := handFrame()
	frame.RSI = []float64{nan, 25, 50, 75}
	out, err := NewFuser(DefaultParams()).Fuse(frame, []divergence.Flag{0, 0, divergence.Bottom, 0})
	require.NoError(t, err)

	alerts := Alerts(out)
	require.Len(t, alerts, 3)
	assert.Equal(t, []string{RuleRSI}, alerts[0].Buys)
	assert.Equal(t, []string{RuleMACD, RuleComposite}, alerts[1].Buys)
	assert.Equal(t, []string{RuleRSI}, alerts[2].Sells)

	recent := Recent(out, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, 3, recent[1].Index)
	assert.Nil(t, Recent(out, 0))
}

func TestMarkers_CompositeOnLow(t *testing.T) {
	frame := handFrame()
	out, err := NewFuser(DefaultParams()).Fuse(frame, []divergence.Flag{0, 0, divergence.Bottom, 0})
	require.NoError(t, err)

	var composite []types.Marker
	for _, m := range Markers(out, frame.Series) {
		if m.Kind == RuleComposite+"_buy" {
			composite = append(composite, m)
		}
	}
	require.Len(t, composite, 1)
	assert.Equal(t, frame.Series.Bars[2].Low, composite[0].Price)
}

func TestLatest(t *testing.T) {
	series := flatSeries(70)
	frame, err := indicators.NewEngine(indicators.DefaultParams()).Compute(series)
	require.NoError(t, err)
	out, err := NewFuser(DefaultParams()).Fuse(frame, divergence.Detect(series))
	require.NoError(t, err)

	snap, ok := Latest(frame, out)
	require.True(t, ok)
	assert.Equal(t, 10.0, snap.Close)
	assert.InDelta(t, 10.0, snap.Values["MA60"], 1e-9)
	assert.Equal(t, 50.0, snap.Values[indicators.ColRSI])
	assert.Equal(t, Neutral, snap.Signals[RuleMACD])
}

// handFrame builds a four bar frame where DIF crosses above DEA on bar 2
// and the MA stack is bullish on bars 1 and 2.
func handFrame() *indicators.IndicatorFrame {
	series := flatSeries(4)
	for i := range series.Bars {
		series.Bars[i].Low = 9.5
		series.Bars[i].High = 10.5
	}
	return &indicators.IndicatorFrame{
		Series: series,
		MA: map[int][]float64{
			5:  {nan, 12, 12, 10},
			10: {nan, 11, 11, 11},
			20: {nan, 10, 10, 12},
		},
		MACD: indicators.MACDResult{
			DIF: []float64{-1, -1, 1, 1},
			DEA: []float64{0, 0, 0, 0},
		},
		RSI: []float64{nan, nan, nan, nan},
		Boll: indicators.BollingerResult{
			Upper:  []float64{nan, nan, nan, nan},
			Middle: []float64{nan, nan, nan, nan},
			Lower:  []float64{nan, nan, nan, nan},
		},
	}
}

func flatSeries(n int) *types.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, n)
	for i := range bars {
		bars[i] = types.Bar{Date: start.AddDate(0, 0, i), Open: 10, High: 10, Low: 10, Close: 10, Volume: 1000}
	}
	return types.NewSeries("FLAT", bars)
}
