package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ducminhle1904/stock-signal-backtest/internal/backtest"
	apperrors "github.com/ducminhle1904/stock-signal-backtest/internal/errors"
	"github.com/ducminhle1904/stock-signal-backtest/internal/logger"
	"github.com/ducminhle1904/stock-signal-backtest/internal/monitoring"
	"github.com/ducminhle1904/stock-signal-backtest/internal/signals"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/config"
	datamanager "github.com/ducminhle1904/stock-signal-backtest/pkg/data"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/reporting"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// Options injects the collaborators of a Runner. Nil fields get defaults;
// Metrics and Health stay disabled when nil.
type Options struct {
	Logger   *logger.Session
	Metrics  *monitoring.Metrics
	Health   *monitoring.HealthChecker
	Data     *datamanager.DataManager
	Reporter *reporting.ReportingManager
	Workers  int
}

// Runner implements Orchestrator for one configuration
type Runner struct {
	cfg      *config.Config
	log      *logger.Session
	metrics  *monitoring.Metrics
	health   *monitoring.HealthChecker
	data     *datamanager.DataManager
	reporter *reporting.ReportingManager
	pipeline *Pipeline
	workers  int
}

var _ Orchestrator = (*Runner)(nil)

// NewRunner creates a runner. cfg must already be validated.
func NewRunner(cfg *config.Config, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Data == nil {
		opts.Data = datamanager.NewDataManager(opts.Logger.Logger)
	}
	if opts.Reporter == nil {
		opts.Reporter = reporting.NewReportingManager(cfg.Output, nil)
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Runner{
		cfg:      cfg,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		health:   opts.Health,
		data:     opts.Data,
		reporter: opts.Reporter,
		pipeline: NewPipeline(cfg, opts.Logger.Logger),
		workers:  opts.Workers,
	}
}

// Pipeline returns the analysis pipeline of the runner
func (r *Runner) Pipeline() *Pipeline {
	return r.pipeline
}

// LoadSeries loads the configured data file, restricted to the configured date range
func (r *Runner) LoadSeries() (*types.Series, error) {
	start, end, err := r.cfg.Data.Range()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorCategoryConfiguration, "orchestrator", "load", "bad date range")
	}
	series, err := r.data.Load(datamanager.Request{
		File:   r.cfg.Data.File,
		Root:   r.cfg.Data.Root,
		Symbol: r.cfg.Data.Symbol,
		Start:  start,
		End:    end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	r.log.Info("📂 data loaded",
		zap.String("symbol", series.Symbol),
		zap.Int("bars", series.Len()),
		zap.Time("first", series.Bars[0].Date),
		zap.Time("last", series.Bars[series.Len()-1].Date))
	return series, nil
}

// RunFile loads, analyzes, backtests and reports the configured data file
func (r *Runner) RunFile(ctx context.Context) (*RunResult, error) {
	series, err := r.LoadSeries()
	if err != nil {
		r.recordError(err)
		return nil, err
	}
	return r.RunSeries(ctx, series)
}

// RunSeries analyzes, backtests and reports an already loaded series
func (r *Runner) RunSeries(ctx context.Context, series *types.Series) (*RunResult, error) {
	started := time.Now()
	r.log.SessionStart(
		zap.String("symbol", series.Symbol),
		zap.String("profile", r.cfg.Backtest.Profile))

	analysis, err := r.analyze(ctx, series)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results, err := r.pipeline.Backtest(analysis)
	if err != nil {
		r.recordError(err)
		return nil, fmt.Errorf("backtest failed: %w", err)
	}
	for _, t := range results.Trades {
		r.log.Trade(t.EntryDate, t.ExitDate, t.EntryPrice, t.ExitPrice, t.Size, t.PnL, t.ExitReason)
	}
	r.recordRun(results, time.Since(started))

	out := analysis.Output(results, r.cfg)
	r.reporter.ReportConsole(out)
	files, err := r.writeFiles(out)
	if err != nil {
		return nil, err
	}

	duration := time.Since(started)
	r.log.SessionEnd(
		zap.Float64("final_cash", results.FinalCash),
		zap.Float64("sharpe", results.SharpeRatio),
		zap.Int("trades", results.TotalTrades),
		zap.Int("files", len(files)))

	return &RunResult{Analysis: analysis, Results: results, Files: files, Duration: duration}, nil
}

// RunSweep analyzes once and backtests every point of grid on the worker pool
func (r *Runner) RunSweep(ctx context.Context, grid backtest.Grid) (*SweepResult, error) {
	started := time.Now()
	series, err := r.LoadSeries()
	if err != nil {
		r.recordError(err)
		return nil, err
	}
	r.log.SessionStart(
		zap.String("symbol", series.Symbol),
		zap.String("mode", string(WorkflowTypeSweep)))

	analysis, err := r.analyze(ctx, series)
	if err != nil {
		return nil, err
	}

	total := len(grid.Configs(r.pipeline.engineConfig(analysis)))
	if r.health != nil {
		r.health.SetTotal(total)
	}
	r.log.Info("🔬 starting parameter sweep", zap.Int("combinations", total), zap.Int("workers", r.workers))

	results, err := r.pipeline.Sweep(ctx, analysis, grid, r.workers)
	if err != nil {
		r.recordError(err)
		return nil, fmt.Errorf("sweep failed: %w", err)
	}
	for _, jr := range results {
		r.recordRun(jr.Results, jr.Duration)
	}

	sweep := &SweepResult{Analysis: analysis, Results: results}
	if len(results) > 0 {
		sweep.Best = &results[0]
	}
	sweep.File, err = r.reporter.ReportSweep(series.Symbol, results, 10)
	if err != nil {
		r.recordError(err)
		return nil, apperrors.Wrap(err, apperrors.ErrorCategoryOutput, "orchestrator", "sweep", "could not write sweep report")
	}
	sweep.Duration = time.Since(started)

	fields := []zap.Field{zap.Int("results", len(results)), zap.String("file", sweep.File)}
	if sweep.Best != nil {
		fields = append(fields,
			zap.Float64("best_stop_loss", sweep.Best.Config.StopLossPct),
			zap.Float64("best_take_profit", sweep.Best.Config.TakeProfitPct),
			zap.Float64("best_sharpe", sweep.Best.Results.SharpeRatio))
	}
	r.log.SessionEnd(fields...)
	return sweep, nil
}

func (r *Runner) analyze(ctx context.Context, series *types.Series) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	analysis, err := r.pipeline.Analyze(series)
	if err != nil {
		r.recordError(err)
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	if r.metrics != nil {
		for rule, c := range signals.Counts(analysis.Signals) {
			r.metrics.RecordSignals(rule, c[0], c[1])
		}
	}
	return analysis, nil
}

// writeFiles writes the report files and the effective configuration
func (r *Runner) writeFiles(out *reporting.Output) ([]string, error) {
	files, err := r.reporter.ReportFiles(out)
	if err != nil {
		r.recordError(err)
		return nil, apperrors.Wrap(err, apperrors.ErrorCategoryOutput, "orchestrator", "report", "could not write reports")
	}
	if r.cfg.Output.ConsoleOnly {
		return files, nil
	}

	path := filepath.Join(r.reporter.OutputDir(out.Symbol), config.EffectiveConfig)
	if err := config.Save(r.cfg, path); err != nil {
		r.recordError(err)
		return files, apperrors.Wrap(err, apperrors.ErrorCategoryOutput, "orchestrator", "report", "could not save effective config")
	}
	files = append(files, path)
	for _, f := range files {
		r.log.Debug("💾 wrote file", zap.String("path", f))
	}
	return files, nil
}

func (r *Runner) recordRun(results *backtest.Results, d time.Duration) {
	if results == nil {
		return
	}
	if r.health != nil {
		r.health.RunCompleted()
	}
	if r.metrics == nil {
		return
	}
	r.metrics.RecordRun(results.Symbol, results.EntryRule, d, results.FinalEquity)
	for _, ev := range results.Events {
		if ev.Kind == backtest.EventOrderCompleted {
			r.metrics.RecordTrade(string(ev.Direction))
		}
	}
}

func (r *Runner) recordError(err error) {
	category := "UNKNOWN"
	if c, ok := apperrors.CategoryOf(err); ok {
		category = string(c)
	}
	r.log.Error("❌ run failed", zap.String("category", category), zap.Error(err))
	if r.metrics != nil {
		r.metrics.RecordError(category)
	}
	if r.health != nil {
		r.health.AddError(err.Error())
	}
}
