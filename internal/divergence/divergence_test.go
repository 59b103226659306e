package divergence

import (
	"math"
	"testing"
	"time"

	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, Top, Classify(0.01, -0.2))
	assert.Equal(t, Bottom, Classify(-0.01, 0.2))
	assert.Equal(t, None, Classify(0.01, 0.2))
	assert.Equal(t, None, Classify(-0.01, -0.2))
	assert.Equal(t, None, Classify(0, 0.5))
	assert.Equal(t, None, Classify(math.NaN(), 0.5))
	assert.Equal(t, Bottom, Classify(-0.01, math.Inf(1)))
}

func TestClassify_AntiSymmetric(t *testing.T) {
	changes := []float64{-0.3, -0.01, 0, 0.02, 0.5}
	for _, p := range changes {
		for _, v := range changes {
			assert.Equal(t, -Classify(p, v), Classify(-p, -v), "p=%v v=%v", p, v)
		}
	}
}

func TestPercentChange(t *testing.T) {
	out := PercentChange([]float64{100, 110, 99, 0, 0, 5})

	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, 0.1, out[1], 1e-12)
	assert.InDelta(t, -0.1, out[2], 1e-12)
	assert.Equal(t, -1.0, out[3])
	assert.True(t, math.IsNaN(out[4]))
	assert.True(t, math.IsInf(out[5], 1))
}

func TestDetectFromChanges_LengthMismatch(t *testing.T) {
	_, err := DetectFromChanges([]float64{1, 2}, []float64{1})
	assert.Error(t, err)
}

func TestDetect_SharpDropWithVolumeSpike(t *testing.T) {
	series := dropSeries(30, 15)
	flags := Detect(series)

	require.Len(t, flags, 30)
	assert.Equal(t, None, flags[0])
	assert.Equal(t, Bottom, flags[15])
	assert.Equal(t, 1, int(flags[15]))

	_, bottoms := Count(flags)
	assert.GreaterOrEqual(t, bottoms, 1)
}

func TestDetect_FlatSeries(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, 10)
	for i := range bars {
		bars[i] = types.Bar{Date: start.AddDate(0, 0, i), Open: 10, High: 10, Low: 10, Close: 10, Volume: 500}
	}
	tops, bottoms := Count(Detect(types.NewSeries("FLAT", bars)))
	assert.Zero(t, tops)
	assert.Zero(t, bottoms)
}

func dropSeries(n, dropAt int) *types.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, n)
	for i := range bars {
		price, volume := 100.0, 1000.0
		if i == dropAt {
			price, volume = 90, 5000
		}
		bars[i] = types.Bar{Date: start.AddDate(0, 0, i), Open: price, High: price, Low: price, Close: price, Volume: volume}
	}
	return types.NewSeries("DROP", bars)
}
