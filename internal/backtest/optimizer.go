package backtest

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Grid lists the values to sweep. An empty dimension keeps the base value.
type Grid struct {
	StopLossPct   []float64 `json:"stop_loss_pct"`
	TakeProfitPct []float64 `json:"take_profit_pct"`
	OrderSize     []float64 `json:"order_size"`
}

// DefaultGrid sweeps stop-loss 2-5%, take-profit 5-12% and the base size.
func DefaultGrid() Grid {
	return Grid{
		StopLossPct:   []float64{0.02, 0.03, 0.04, 0.05},
		TakeProfitPct: []float64{0.05, 0.08, 0.10, 0.12},
	}
}

// Configs expands the grid around base
func (g Grid) Configs(base Config) []Config {
	sls := orBase(g.StopLossPct, base.StopLossPct)
	tps := orBase(g.TakeProfitPct, base.TakeProfitPct)
	sizes := orBase(g.OrderSize, base.OrderSize)

	out := make([]Config, 0, len(sls)*len(tps)*len(sizes))
	for _, sl := range sls {
		for _, tp := range tps {
			for _, size := range sizes {
				c := base
				c.StopLossPct = sl
				c.TakeProfitPct = tp
				c.OrderSize = size
				out = append(out, c)
			}
		}
	}
	return out
}

func orBase(values []float64, base float64) []float64 {
	if len(values) == 0 {
		return []float64{base}
	}
	return values
}

// GridOptimizer runs every grid point on the worker pool
type GridOptimizer struct {
	workers int
	logger  *zap.Logger
}

// NewGridOptimizer creates an optimizer using the given number of workers
func NewGridOptimizer(workers int, logger *zap.Logger) *GridOptimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GridOptimizer{workers: workers, logger: logger}
}

// Optimize runs the sweep and returns the results ranked best first.
// Jobs that fail are dropped from the ranking and reported in the error
// only when no job succeeded.
func (o *GridOptimizer) Optimize(ctx context.Context, base Config, grid Grid, entry EntryRule, input Input) ([]JobResult, error) {
	configs := grid.Configs(base)
	if len(configs) == 0 {
		return nil, fmt.Errorf("empty parameter grid")
	}

	pool := NewWorkerPool(ctx, o.workers, len(configs), o.logger)
	pool.Start()

	submitted := 0
	for _, cfg := range configs {
		if err := pool.SubmitJob(NewJob(cfg, entry, input)); err != nil {
			break
		}
		submitted++
	}

	tracker := NewProgressTracker(submitted)
	results := make([]JobResult, 0, submitted)
	var firstErr error
	for i := 0; i < submitted; i++ {
		var res JobResult
		select {
		case res = <-pool.Results():
		case <-ctx.Done():
			pool.Stop()
			return nil, ctx.Err()
		}
		tracker.Increment()
		if res.Error != nil {
			if firstErr == nil {
				firstErr = res.Error
			}
			o.logger.Warn("⚠️ sweep job failed", zap.String("job", res.ID), zap.Error(res.Error))
			continue
		}
		results = append(results, res)
	}
	pool.Stop()

	done, total, _, elapsed := tracker.GetProgress()
	o.logger.Info("✅ sweep finished", zap.Int("completed", done), zap.Int("total", total),
		zap.Int("succeeded", len(results)), zap.Duration("elapsed", elapsed))

	if len(results) == 0 && firstErr != nil {
		return nil, fmt.Errorf("all sweep jobs failed: %w", firstErr)
	}

	Rank(results)
	return results, nil
}

// Rank orders results by Sharpe ratio, then total return, best first.
func Rank(results []JobResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Results, results[j].Results
		if a.SharpeRatio != b.SharpeRatio {
			return a.SharpeRatio > b.SharpeRatio
		}
		return a.TotalReturn > b.TotalReturn
	})
}
