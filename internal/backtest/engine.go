package backtest

import (
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/ducminhle1904/stock-signal-backtest/internal/errors"
	"github.com/ducminhle1904/stock-signal-backtest/internal/indicators"
	"github.com/ducminhle1904/stock-signal-backtest/internal/signals"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// Config represents backtest configuration
type Config struct {
	Symbol        string  `json:"symbol"`
	InitialCash   float64 `json:"initial_cash"`
	OrderSize     float64 `json:"order_size"`
	StopLossPct   float64 `json:"stop_loss_pct"`
	TakeProfitPct float64 `json:"take_profit_pct"`
	FastMA        int     `json:"fast_ma"`
	SlowMA        int     `json:"slow_ma"`
}

// DefaultConfig returns 20000 cash, size 1, 3% stop-loss, 8% take-profit
// and an MA5/MA20 trend exit.
func DefaultConfig() Config {
	return Config{
		InitialCash:   20000,
		OrderSize:     1,
		StopLossPct:   0.03,
		TakeProfitPct: 0.08,
		FastMA:        5,
		SlowMA:        20,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.InitialCash <= 0 {
		return fmt.Errorf("initial cash must be positive")
	}
	if c.OrderSize <= 0 {
		return fmt.Errorf("order size must be positive")
	}
	if c.StopLossPct <= 0 || c.StopLossPct >= 1 {
		return fmt.Errorf("stop loss must be between 0 and 1, got %.4f", c.StopLossPct)
	}
	if c.TakeProfitPct <= 0 || c.TakeProfitPct >= 1 {
		return fmt.Errorf("take profit must be between 0 and 1, got %.4f", c.TakeProfitPct)
	}
	if c.FastMA <= 0 || c.SlowMA <= 0 || c.FastMA >= c.SlowMA {
		return fmt.Errorf("trend exit needs 0 < fast MA (%d) < slow MA (%d)", c.FastMA, c.SlowMA)
	}
	return nil
}

// Input is the read-only data a run consumes.
type Input struct {
	Series  *types.Series
	Signals *signals.Frame
}

// EntryRule decides whether a flat account opens a position on bar i.
type EntryRule interface {
	Name() string
	ShouldEnter(in Input, i int) bool
}

// PriceThresholdEntry enters when the close is at or below Price.
type PriceThresholdEntry struct {
	Price float64
}

func (r PriceThresholdEntry) Name() string {
	return fmt.Sprintf("price_threshold(%.2f)", r.Price)
}

func (r PriceThresholdEntry) ShouldEnter(in Input, i int) bool {
	return in.Series.Bars[i].Close <= r.Price
}

// CompositeSignalEntry enters on a composite buy signal.
type CompositeSignalEntry struct{}

func (CompositeSignalEntry) Name() string {
	return "composite"
}

func (CompositeSignalEntry) ShouldEnter(in Input, i int) bool {
	return in.Signals != nil && in.Signals.IsCompositeBuy(i)
}

// Engine replays a series against a single-position account
type Engine struct {
	config Config
	entry  EntryRule
	input  Input
	fast   []float64
	slow   []float64
	logger *zap.Logger
}

// NewEngine validates the inputs and prepares the trend-exit averages.
// Invalid prices are rejected here, before any bar is processed.
func NewEngine(config Config, entry EntryRule, input Input, logger *zap.Logger) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorCategoryConfiguration, "backtest", "new_engine", "invalid config")
	}
	if entry == nil {
		return nil, apperrors.NewConfigurationError("backtest", "new_engine", "entry rule is required")
	}
	if err := input.Series.Validate(); err != nil {
		return nil, err
	}
	if input.Signals != nil && input.Signals.Len() != input.Series.Len() {
		return nil, apperrors.Wrap(apperrors.ErrLengthMismatch, apperrors.ErrorCategoryData, "backtest", "new_engine",
			fmt.Sprintf("%d signal rows for %d bars", input.Signals.Len(), input.Series.Len()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	closes := input.Series.Closes()
	return &Engine{
		config: config,
		entry:  entry,
		input:  input,
		fast:   indicators.NewSMA(config.FastMA).Compute(closes),
		slow:   indicators.NewSMA(config.SlowMA).Compute(closes),
		logger: logger,
	}, nil
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// NewAccount returns the starting account for a run
func (e *Engine) NewAccount() Account {
	return NewAccount(e.config.InitialCash)
}

// Step processes bar i and returns the next account state. At most one
// position transition happens per bar, and a position closed on bar i is
// not reopened on the same bar.
func (e *Engine) Step(acct Account, i int) (Account, error) {
	if i < 0 || i >= e.input.Series.Len() {
		return acct, fmt.Errorf("bar index %d out of range", i)
	}
	bar := e.input.Series.Bars[i]
	bracket := Bracket{StopLossPct: e.config.StopLossPct, TakeProfitPct: e.config.TakeProfitPct}

	switch {
	case acct.Pending != nil:
		// orders fill on the bar they are placed, nothing to do but wait

	case acct.Position.Status == Flat:
		if !e.entry.ShouldEnter(e.input, i) {
			break
		}
		order, err := e.execute(&acct, DirectionBuy, bar, i, bracket)
		if err != nil {
			return acct, err
		}
		if order.Status == OrderCompleted {
			e.logger.Info("📈 position opened",
				zap.String("date", bar.Date.Format("2006-01-02")),
				zap.Float64("price", order.Price),
				zap.Float64("size", order.Size),
				zap.Float64("stop_loss", acct.Position.StopLossPrice),
				zap.Float64("take_profit", acct.Position.TakeProfitPrice))
		} else {
			e.logger.Warn("⚠️ entry order canceled", zap.String("date", bar.Date.Format("2006-01-02")),
				zap.Float64("price", order.Price))
		}

	case acct.Position.Status == Open:
		reason := e.exitReason(acct.Position, bar.Close, i)
		if reason == "" {
			break
		}
		pos := acct.Position
		order, err := e.execute(&acct, DirectionSell, bar, i, bracket)
		if err != nil {
			return acct, err
		}
		trade := newTrade(pos, order, reason, acct.lastBuyID())
		acct.Trades = append(acct.Trades, trade)
		e.logger.Info("📉 position closed",
			zap.String("date", bar.Date.Format("2006-01-02")),
			zap.String("reason", reason),
			zap.Float64("price", order.Price),
			zap.Float64("pnl", trade.PnL))
	}

	acct.markToMarket(bar.Date, bar.Close)
	return acct, nil
}

// execute runs one order through submit, accept and complete.
func (e *Engine) execute(acct *Account, dir OrderDirection, bar types.Bar, i int, bracket Bracket) (*Order, error) {
	if _, err := acct.submit(dir, bar.Close, e.orderSize(acct, dir), bar.Date, i); err != nil {
		return nil, err
	}
	if err := acct.accept(); err != nil {
		return nil, err
	}
	return acct.complete(bracket)
}

func (e *Engine) orderSize(acct *Account, dir OrderDirection) float64 {
	if dir == DirectionSell {
		return acct.Position.Size
	}
	return e.config.OrderSize
}

// exitReason checks stop-loss, then take-profit, then the trend cross.
func (e *Engine) exitReason(pos Position, price float64, i int) string {
	switch {
	case price <= pos.StopLossPrice:
		return ExitStopLoss
	case price >= pos.TakeProfitPrice:
		return ExitTakeProfit
	case indicators.CrossBelow(e.fast, e.slow, i):
		return ExitTrendReversal
	}
	return ""
}

// Run replays every bar in order and computes the metrics.
func (e *Engine) Run() (*Results, error) {
	acct := e.NewAccount()
	var err error
	for i := 0; i < e.input.Series.Len(); i++ {
		if acct, err = e.Step(acct, i); err != nil {
			return nil, err
		}
	}

	results := NewResults(e.config, e.entry.Name(), acct)
	results.UpdateMetrics()
	return results, nil
}

func (a *Account) lastBuyID() string {
	for i := len(a.Events) - 1; i >= 0; i-- {
		ev := a.Events[i]
		if ev.Kind == EventOrderCompleted && ev.Direction == DirectionBuy {
			return ev.OrderID
		}
	}
	return ""
}

func newTrade(pos Position, exit *Order, reason, entryID string) Trade {
	pnl := notional(exit.Price, pos.Size).Sub(notional(pos.EntryPrice, pos.Size)).InexactFloat64()
	ret := 0.0
	if pos.EntryPrice > 0 {
		ret = (exit.Price - pos.EntryPrice) / pos.EntryPrice * 100
	}
	return Trade{
		EntryOrderID: entryID,
		ExitOrderID:  exit.ID,
		EntryDate:    pos.EntryDate,
		ExitDate:     exit.Date,
		EntryPrice:   pos.EntryPrice,
		ExitPrice:    exit.Price,
		Size:         pos.Size,
		PnL:          pnl,
		ReturnPct:    ret,
		BarsHeld:     exit.Index - pos.EntryIndex,
		ExitReason:   reason,
	}
}
