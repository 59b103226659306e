package backtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid_Configs(t *testing.T) {
	base := DefaultConfig()
	configs := Grid{StopLossPct: []float64{0.02, 0.04}, TakeProfitPct: []float64{0.05, 0.1, 0.15}}.Configs(base)

	require.Len(t, configs, 6)
	for _, c := range configs {
		assert.Equal(t, base.OrderSize, c.OrderSize)
		assert.Equal(t, base.InitialCash, c.InitialCash)
	}
	assert.Len(t, Grid{}.Configs(base), 1)
}

func TestGridOptimizer_Optimize(t *testing.T) {
	input := Input{Series: wavySeries(200)}
	grid := Grid{StopLossPct: []float64{0.02, 0.05}, TakeProfitPct: []float64{0.04, 0.08}}

	results, err := NewGridOptimizer(2, nil).Optimize(context.Background(), DefaultConfig(), grid, PriceThresholdEntry{Price: 100}, input)
	require.NoError(t, err)
	require.Len(t, results, 4)

	ids := make(map[string]bool)
	for i, r := range results {
		require.NoError(t, r.Error)
		require.NotNil(t, r.Results)
		ids[r.ID] = true
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].Results.SharpeRatio, r.Results.SharpeRatio)
		}
	}
	assert.Len(t, ids, 4)
}

func TestGridOptimizer_AllJobsFail(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OrderSize = -1
	_, err := NewGridOptimizer(1, nil).Optimize(context.Background(), cfg, Grid{}, CompositeSignalEntry{}, Input{Series: wavySeries(10)})
	assert.Error(t, err)
}

func TestProgressTracker(t *testing.T) {
	pt := NewProgressTracker(4)
	pt.Increment()
	done, total, pct, _ := pt.GetProgress()
	assert.Equal(t, 1, done)
	assert.Equal(t, 4, total)
	assert.Equal(t, 25.0, pct)
}
