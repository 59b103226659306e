// Package signals turns indicator columns and divergence flags into
// per-bar directional signals. Every rule looks at bar i and bar i-1 only.
package signals

import (
	"fmt"
	"time"

	"github.com/ducminhle1904/stock-signal-backtest/internal/divergence"
	apperrors "github.com/ducminhle1904/stock-signal-backtest/internal/errors"
	"github.com/ducminhle1904/stock-signal-backtest/internal/indicators"
)

// Frame holds one value per rule per bar.
type Frame struct {
	Dates        []time.Time
	MACD         []Signal
	RSI          []Signal
	Bollinger    []Signal
	BullishStack []bool
	Composite    []Signal
	Divergence   []divergence.Flag
}

// Len returns the number of bars
func (f *Frame) Len() int {
	return len(f.Dates)
}

// Get returns the column of a named rule.
func (f *Frame) Get(rule string) ([]Signal, bool) {
	switch rule {
	case RuleMACD:
		return f.MACD, true
	case RuleRSI:
		return f.RSI, true
	case RuleBollinger:
		return f.Bollinger, true
	case RuleComposite:
		return f.Composite, true
	}
	return nil, false
}

// IsCompositeBuy reports whether the composite entry fired on bar i.
func (f *Frame) IsCompositeBuy(i int) bool {
	return i >= 0 && i < len(f.Composite) && f.Composite[i] == Buy
}

// Fuser derives signals from an indicator frame
type Fuser struct {
	params Params
}

// NewFuser creates a signal fuser
func NewFuser(params Params) *Fuser {
	return &Fuser{params: params}
}

// Fuse evaluates every rule on every bar. A bar whose inputs are undefined
// gets Neutral for the dependent rule.
func (fu *Fuser) Fuse(frame *indicators.IndicatorFrame, flags []divergence.Flag) (*Frame, error) {
	n := frame.Len()
	if len(flags) != n {
		return nil, apperrors.Wrap(apperrors.ErrLengthMismatch, apperrors.ErrorCategoryData, "signals", "fuse",
			fmt.Sprintf("%d divergence flags for %d bars", len(flags), n))
	}

	fast := frame.MovingAverage(fu.params.FastMA)
	mid := frame.MovingAverage(fu.params.MidMA)
	slow := frame.MovingAverage(fu.params.SlowMA)
	if fast == nil || mid == nil || slow == nil {
		return nil, apperrors.NewConfigurationError("signals", "fuse",
			fmt.Sprintf("moving averages %d/%d/%d are not all computed", fu.params.FastMA, fu.params.MidMA, fu.params.SlowMA))
	}

	out := &Frame{
		Dates:        frame.Series.Dates(),
		MACD:         make([]Signal, n),
		RSI:          make([]Signal, n),
		Bollinger:    make([]Signal, n),
		BullishStack: make([]bool, n),
		Composite:    make([]Signal, n),
		Divergence:   append([]divergence.Flag(nil), flags...),
	}

	dif, dea := frame.MACD.DIF, frame.MACD.DEA
	for i := 0; i < n; i++ {
		bar := frame.Series.Bars[i]

		switch {
		case indicators.CrossAbove(dif, dea, i):
			out.MACD[i] = Buy
		case indicators.CrossBelow(dif, dea, i):
			out.MACD[i] = Sell
		}

		out.RSI[i] = fu.rsiSignal(frame.RSI[i])
		out.Bollinger[i] = bollingerSignal(bar.Close, frame.Boll.Upper[i], frame.Boll.Lower[i])
		out.BullishStack[i] = bullishStack(fast[i], mid[i], slow[i])

		if flags[i] == divergence.Bottom && out.MACD[i] == Buy && out.BullishStack[i] {
			out.Composite[i] = Buy
		}
	}

	return out, nil
}

func (fu *Fuser) rsiSignal(rsi float64) Signal {
	if !indicators.IsDefined(rsi) {
		return Neutral
	}
	switch {
	case rsi < fu.params.RSIOversold:
		return Buy
	case rsi > fu.params.RSIOverbought:
		return Sell
	}
	return Neutral
}

func bollingerSignal(close, upper, lower float64) Signal {
	if !indicators.AllDefined(upper, lower) {
		return Neutral
	}
	switch {
	case close < lower:
		return Buy
	case close > upper:
		return Sell
	}
	return Neutral
}

func bullishStack(fast, mid, slow float64) bool {
	if !indicators.AllDefined(fast, mid, slow) {
		return false
	}
	return fast > mid && mid > slow
}
