package backtest

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Results holds the outcome of one run
type Results struct {
	RunID     string
	Symbol    string
	EntryRule string
	Config    Config

	InitialCash float64
	FinalCash   float64
	FinalEquity float64
	OpenAtEnd   bool

	TotalReturn      float64 // percent
	AnnualizedReturn float64 // percent
	SharpeRatio      float64
	MaxDrawdown      float64 // percent
	WinRate          float64 // percent
	ProfitFactor     float64
	Exposure         float64 // share of bars with an open position

	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	CanceledOrders int

	Trades      []Trade
	EquityCurve []EquityPoint
	Events      []Event
}

// Report is the scalar summary of a run
type Report struct {
	FinalCash           float64 `json:"final_cash"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
}

// NewResults collects the final account state of a run
func NewResults(config Config, entryRule string, acct Account) *Results {
	r := &Results{
		RunID:       uuid.NewString(),
		Symbol:      config.Symbol,
		EntryRule:   entryRule,
		Config:      config,
		InitialCash: config.InitialCash,
		FinalCash:   acct.CashFloat(),
		FinalEquity: acct.CashFloat(),
		OpenAtEnd:   acct.Position.Status == Open,
		Trades:      acct.Trades,
		EquityCurve: acct.EquityCurve,
		Events:      acct.Events,
	}
	if n := len(acct.EquityCurve); n > 0 {
		r.FinalEquity = acct.EquityCurve[n-1].Value
	}
	for _, ev := range acct.Events {
		if ev.Kind == EventOrderCanceled {
			r.CanceledOrders++
		}
	}
	return r
}

// Report returns the scalar summary
func (r *Results) Report() Report {
	return Report{
		FinalCash:           r.FinalCash,
		SharpeRatio:         r.SharpeRatio,
		MaxDrawdownPct:      r.MaxDrawdown,
		AnnualizedReturnPct: r.AnnualizedReturn,
	}
}

// UpdateMetrics updates all calculated metrics
func (r *Results) UpdateMetrics() {
	r.SharpeRatio = SharpeRatio(r.EquityCurve)
	r.MaxDrawdown = MaxDrawdownPct(r.EquityCurve)
	r.AnnualizedReturn = AnnualizedReturnPct(r.EquityCurve)
	r.ProfitFactor = ProfitFactor(r.Trades)
	r.WinRate = WinRate(r.Trades)
	r.Exposure = Exposure(r.EquityCurve)

	if r.InitialCash > 0 {
		r.TotalReturn = (r.FinalEquity - r.InitialCash) / r.InitialCash * 100
	}

	r.TotalTrades = len(r.Trades)
	r.WinningTrades = 0
	for _, t := range r.Trades {
		if t.PnL > 0 {
			r.WinningTrades++
		}
	}
	r.LosingTrades = r.TotalTrades - r.WinningTrades
}

// periodReturns returns the simple returns between consecutive equity points.
func periodReturns(curve []EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		if curve[i-1].Value > 0 {
			returns = append(returns, curve[i].Value/curve[i-1].Value-1)
		}
	}
	return returns
}

// PeriodsPerYear estimates the sampling frequency from the average date gap.
// Curves too short to estimate fall back to 252 trading days.
func PeriodsPerYear(curve []EquityPoint) float64 {
	if len(curve) < 2 {
		return 252
	}
	duration := curve[len(curve)-1].Date.Sub(curve[0].Date)
	if duration <= 0 {
		return 252
	}
	avgInterval := duration / time.Duration(len(curve)-1)
	return float64(time.Duration(365.25*24)*time.Hour) / float64(avgInterval)
}

// SharpeRatio is mean/std of periodic equity returns, annualized by the
// sampling frequency. A zero deviation yields 0.
func SharpeRatio(curve []EquityPoint) float64 {
	returns := periodReturns(curve)
	if len(returns) == 0 {
		return 0
	}

	avg := 0.0
	for _, r := range returns {
		avg += r
	}
	avg /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += math.Pow(r-avg, 2)
	}
	variance /= float64(len(returns))
	stdDev := math.Sqrt(variance)

	if stdDev < 1e-12 {
		return 0
	}
	return avg / stdDev * math.Sqrt(PeriodsPerYear(curve))
}

// MaxDrawdownPct is the largest decline from a running peak, in percent.
func MaxDrawdownPct(curve []EquityPoint) float64 {
	peak, maxDD := 0.0, 0.0
	for _, p := range curve {
		if p.Value > peak {
			peak = p.Value
		}
		if peak > 0 {
			if dd := (peak - p.Value) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD * 100
}

// AnnualizedReturnPct is (last/first)^(1/years) - 1 in percent, years
// measured in calendar time.
func AnnualizedReturnPct(curve []EquityPoint) float64 {
	if len(curve) < 2 {
		return 0
	}
	first, last := curve[0], curve[len(curve)-1]
	years := last.Date.Sub(first.Date).Hours() / (24 * 365.25)
	if years <= 0 || first.Value <= 0 || last.Value < 0 {
		return 0
	}
	return (math.Pow(last.Value/first.Value, 1.0/years) - 1.0) * 100
}

// ProfitFactor is gross profit over gross loss. No losses with some profit is +Inf.
func ProfitFactor(trades []Trade) float64 {
	profit, loss := 0.0, 0.0
	for _, t := range trades {
		if t.PnL > 0 {
			profit += t.PnL
		} else {
			loss += math.Abs(t.PnL)
		}
	}
	if loss == 0 {
		if profit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return profit / loss
}

// WinRate is the percentage of trades with positive PnL
func WinRate(trades []Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range trades {
		if t.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(trades)) * 100
}

// Exposure is the share of bars with an open position
func Exposure(curve []EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range curve {
		total += p.Exposure
	}
	return total / float64(len(curve))
}
