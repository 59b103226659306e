package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ducminhle1904/stock-signal-backtest/internal/annotation"
	"github.com/ducminhle1904/stock-signal-backtest/internal/backtest"
	"github.com/ducminhle1904/stock-signal-backtest/internal/divergence"
	"github.com/ducminhle1904/stock-signal-backtest/internal/indicators"
	"github.com/ducminhle1904/stock-signal-backtest/internal/signals"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/config"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/reporting"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// Analysis is the output of every analysis stage for one series.
// Significant and Markers come from the look-ahead annotation pass and
// are for display only; nothing downstream trades on them.
type Analysis struct {
	Series      *types.Series
	Indicators  *indicators.IndicatorFrame
	Divergence  []divergence.Flag
	Signals     *signals.Frame
	Significant []annotation.Significant
	Markers     []types.Marker
}

// Input returns the backtest input of the analysis
func (a *Analysis) Input() backtest.Input {
	return backtest.Input{Series: a.Series, Signals: a.Signals}
}

// Output bundles the analysis with optional backtest results for reporting
func (a *Analysis) Output(results *backtest.Results, cfg *config.Config) *reporting.Output {
	return &reporting.Output{
		Symbol:      a.Series.Symbol,
		Series:      a.Series,
		Indicators:  a.Indicators,
		Divergence:  a.Divergence,
		Signals:     a.Signals,
		Significant: a.Significant,
		Markers:     a.Markers,
		Results:     results,
		Config:      cfg,
	}
}

// Pipeline runs the analysis stages and the backtest for one configuration
type Pipeline struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPipeline creates a pipeline. The configuration must already be validated.
func NewPipeline(cfg *config.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Analyze validates the series and derives indicators, divergence flags,
// signals and chart markers, in that order.
func (p *Pipeline) Analyze(series *types.Series) (*Analysis, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	frame, err := indicators.NewEngine(p.cfg.Indicators).Compute(series)
	if err != nil {
		return nil, fmt.Errorf("failed to compute indicators: %w", err)
	}

	flags := divergence.Detect(series)

	sig, err := signals.NewFuser(p.cfg.Signals).Fuse(frame, flags)
	if err != nil {
		return nil, fmt.Errorf("failed to fuse signals: %w", err)
	}

	significant, err := annotation.Filter(series, flags, p.cfg.Divergence)
	if err != nil {
		return nil, fmt.Errorf("failed to annotate divergences: %w", err)
	}

	markers := annotation.Markers(significant)
	markers = append(markers, signals.Markers(sig, series)...)

	tops, bottoms := divergence.Count(flags)
	p.logger.Info("📊 analysis complete",
		zap.String("symbol", series.Symbol),
		zap.Int("bars", series.Len()),
		zap.Int("top_divergences", tops),
		zap.Int("bottom_divergences", bottoms),
		zap.Int("significant", len(significant)),
		zap.Int("markers", len(markers)))

	return &Analysis{
		Series:      series,
		Indicators:  frame,
		Divergence:  flags,
		Signals:     sig,
		Significant: significant,
		Markers:     markers,
	}, nil
}

// Backtest runs the engine with the entry rule of the configured profile
func (p *Pipeline) Backtest(analysis *Analysis) (*backtest.Results, error) {
	entry, err := p.cfg.EntryRule()
	if err != nil {
		return nil, err
	}
	cfg := p.engineConfig(analysis)

	engine, err := backtest.NewEngine(cfg, entry, analysis.Input(), p.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return engine.Run()
}

// Sweep runs the configured engine over every point of grid on workers goroutines
func (p *Pipeline) Sweep(ctx context.Context, analysis *Analysis, grid backtest.Grid, workers int) ([]backtest.JobResult, error) {
	entry, err := p.cfg.EntryRule()
	if err != nil {
		return nil, err
	}
	return backtest.NewGridOptimizer(workers, p.logger).
		Optimize(ctx, p.engineConfig(analysis), grid, entry, analysis.Input())
}

func (p *Pipeline) engineConfig(analysis *Analysis) backtest.Config {
	cfg := p.cfg.EngineConfig()
	if cfg.Symbol == "" {
		cfg.Symbol = analysis.Series.Symbol
	}
	return cfg
}
