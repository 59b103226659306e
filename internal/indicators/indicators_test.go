package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA_WarmUpAndValues(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	out := NewSMA(3).Compute(values)

	require.Len(t, out, len(values))
	assert.False(t, IsDefined(out[0]))
	assert.False(t, IsDefined(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-12)
	assert.InDelta(t, 5.0, out[5], 1e-12)
}

func TestSMA_ShortHistoryIsAllUndefined(t *testing.T) {
	out := NewSMA(20).Compute([]float64{1, 2, 3})
	for _, v := range out {
		assert.False(t, IsDefined(v))
	}
}

func TestSMA_UndefinedInputPropagates(t *testing.T) {
	out := NewSMA(2).Compute([]float64{NoValue(), 2, 4})
	assert.False(t, IsDefined(out[1]))
	assert.InDelta(t, 3.0, out[2], 1e-12)
}

func TestEMA_SeededByFirstValue(t *testing.T) {
	out := NewEMA(3).Compute([]float64{10, 20, 20})

	// alpha = 0.5
	assert.InDelta(t, 10.0, out[0], 1e-12)
	assert.InDelta(t, 15.0, out[1], 1e-12)
	assert.InDelta(t, 17.5, out[2], 1e-12)
}

func TestMACD_Shape(t *testing.T) {
	closes := generateCloses(80)
	res := NewMACD(12, 26, 9).Compute(closes)

	require.Len(t, res.DIF, 80)
	assert.InDelta(t, 0.0, res.DIF[0], 1e-12)
	for i := range closes {
		assert.InDelta(t, 2*(res.DIF[i]-res.DEA[i]), res.Histogram[i], 1e-9)
	}
}

func TestMACD_RisingSeriesHasPositiveDIF(t *testing.T) {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	res := NewMACD(12, 26, 9).Compute(closes)
	assert.Greater(t, res.DIF[49], 0.0)
}

func TestRSI_Bounds(t *testing.T) {
	closes := generateCloses(120)
	out := NewRSI(14).Compute(closes)

	for i := 0; i < 14; i++ {
		assert.False(t, IsDefined(out[i]))
	}
	for i := 14; i < len(out); i++ {
		require.True(t, IsDefined(out[i]))
		assert.GreaterOrEqual(t, out[i], 0.0)
		assert.LessOrEqual(t, out[i], 100.0)
	}
}

func TestRSI_Degenerate(t *testing.T) {
	flat := make([]float64, 30)
	rising := make([]float64, 30)
	for i := range flat {
		flat[i] = 42
		rising[i] = float64(i + 1)
	}

	assert.Equal(t, 50.0, NewRSI(14).Compute(flat)[29])
	assert.Equal(t, 100.0, NewRSI(14).Compute(rising)[29])
}

func TestStochastic_ZeroRangeIsNeutral(t *testing.T) {
	n := 20
	h, l, c := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		h[i], l[i], c[i] = 10, 10, 10
	}
	res := NewStochastic(14, 3).Compute(h, l, c)

	assert.False(t, IsDefined(res.K[12]))
	assert.Equal(t, 50.0, res.K[13])
	assert.False(t, IsDefined(res.D[14]))
	assert.Equal(t, 50.0, res.D[15])
	assert.Equal(t, 50.0, res.J[15])
}

func TestStochastic_KBounds(t *testing.T) {
	series := generateSeries(100)
	res := NewStochastic(14, 3).Compute(series.Highs(), series.Lows(), series.Closes())

	for i := 13; i < 100; i++ {
		assert.GreaterOrEqual(t, res.K[i], 0.0)
		assert.LessOrEqual(t, res.K[i], 100.0)
		if IsDefined(res.D[i]) {
			assert.InDelta(t, 3*res.K[i]-2*res.D[i], res.J[i], 1e-9)
		}
	}
}

func TestBollinger_Ordering(t *testing.T) {
	closes := generateCloses(60)
	res := NewBollingerBands(20, 2).Compute(closes)

	assert.False(t, IsDefined(res.Middle[18]))
	for i := 19; i < 60; i++ {
		assert.LessOrEqual(t, res.Lower[i], res.Middle[i])
		assert.LessOrEqual(t, res.Middle[i], res.Upper[i])
	}
}

func TestBollinger_PopulationStd(t *testing.T) {
	res := NewBollingerBands(4, 1).Compute([]float64{2, 4, 4, 6})
	// mean 4, population variance 2
	assert.InDelta(t, 4+math.Sqrt(2), res.Upper[3], 1e-12)
	assert.InDelta(t, 4-math.Sqrt(2), res.Lower[3], 1e-12)
}

func TestEngine_Compute(t *testing.T) {
	series := generateSeries(100)
	frame, err := NewEngine(DefaultParams()).Compute(series)
	require.NoError(t, err)

	assert.Equal(t, 100, frame.Len())
	for _, name := range frame.ColumnNames() {
		col, ok := frame.Column(name)
		require.True(t, ok, name)
		assert.Len(t, col, 100, name)
	}
	assert.False(t, IsDefined(frame.MovingAverage(60)[58]))
	assert.True(t, IsDefined(frame.MovingAverage(60)[59]))
}

func TestEngine_Causal(t *testing.T) {
	full := generateSeries(90)
	prefix := &types.Series{Symbol: full.Symbol, Bars: full.Bars[:60]}

	ff, err := NewEngine(DefaultParams()).Compute(full)
	require.NoError(t, err)
	pf, err := NewEngine(DefaultParams()).Compute(prefix)
	require.NoError(t, err)

	for _, name := range pf.ColumnNames() {
		a, _ := pf.Column(name)
		b, _ := ff.Column(name)
		for i := range a {
			if !IsDefined(a[i]) {
				assert.False(t, IsDefined(b[i]), "%s[%d]", name, i)
				continue
			}
			assert.InDelta(t, a[i], b[i], 1e-9, "%s[%d]", name, i)
		}
	}
}

func TestEngine_ShortHistory(t *testing.T) {
	frame, err := NewEngine(DefaultParams()).Compute(generateSeries(5))
	require.NoError(t, err)
	assert.False(t, IsDefined(frame.MovingAverage(20)[4]))
	assert.False(t, IsDefined(frame.RSI[4]))
}

func TestEngine_RejectsInvalidInput(t *testing.T) {
	series := generateSeries(10)
	series.Bars[5].Close = -1

	_, err := NewEngine(DefaultParams()).Compute(series)
	assert.Error(t, err)

	params := DefaultParams()
	params.MACDFast = 30
	_, err = NewEngine(params).Compute(generateSeries(10))
	assert.Error(t, err)
}

func TestCross(t *testing.T) {
	a := []float64{1, 1, 3, 1}
	b := []float64{2, 1, 2, 2}
	assert.False(t, CrossAbove(a, b, 0))
	assert.False(t, CrossAbove(a, b, 1))
	assert.True(t, CrossAbove(a, b, 2))
	assert.True(t, CrossBelow(a, b, 3))
	assert.False(t, CrossAbove([]float64{NoValue(), 3}, []float64{1, 2}, 1))
}

// Helper functions for generating test data

func generateCloses(count int) []float64 {
	return generateSeries(count).Closes()
}

func generateSeries(count int) *types.Series {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, count)
	price := 100.0
	for i := 0; i < count; i++ {
		price += math.Sin(float64(i)/4) * 2
		bars[i] = types.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: 1000 + float64(i%7)*100,
		}
	}
	return types.NewSeries("TEST", bars)
}
