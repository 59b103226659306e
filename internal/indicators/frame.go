package indicators

import (
	"fmt"
	"sort"

	apperrors "github.com/ducminhle1904/stock-signal-backtest/internal/errors"
	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// Column names of the derived indicator table.
const (
	ColDIF        = "DIF"
	ColDEA        = "DEA"
	ColMACD       = "MACD"
	ColRSI        = "RSI"
	ColK          = "K"
	ColD          = "D"
	ColJ          = "J"
	ColBollUpper  = "BOLL_UPPER"
	ColBollMiddle = "BOLL_MID"
	ColBollLower  = "BOLL_LOWER"
)

// Params configures the indicator engine.
type Params struct {
	MAPeriods       []int   `json:"ma_periods"`
	MACDFast        int     `json:"macd_fast"`
	MACDSlow        int     `json:"macd_slow"`
	MACDSignal      int     `json:"macd_signal"`
	RSIPeriod       int     `json:"rsi_period"`
	StochPeriod     int     `json:"stoch_period"`
	StochSmooth     int     `json:"stoch_smooth"`
	BollingerPeriod int     `json:"bollinger_period"`
	BollingerK      float64 `json:"bollinger_k"`
}

// DefaultParams returns the conventional daily-chart settings.
func DefaultParams() Params {
	return Params{
		MAPeriods:       []int{5, 10, 20, 60},
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		RSIPeriod:       14,
		StochPeriod:     14,
		StochSmooth:     3,
		BollingerPeriod: 20,
		BollingerK:      2,
	}
}

// Validate rejects periods that cannot produce a column.
func (p Params) Validate() error {
	if len(p.MAPeriods) == 0 {
		return fmt.Errorf("at least one moving average period is required")
	}
	for _, period := range p.MAPeriods {
		if period <= 0 {
			return fmt.Errorf("moving average period must be positive, got %d", period)
		}
	}
	if p.MACDFast <= 0 || p.MACDSlow <= 0 || p.MACDSignal <= 0 {
		return fmt.Errorf("MACD periods must be positive")
	}
	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("MACD fast period (%d) must be less than slow period (%d)", p.MACDFast, p.MACDSlow)
	}
	if p.RSIPeriod <= 0 {
		return fmt.Errorf("RSI period must be positive")
	}
	if p.StochPeriod <= 0 || p.StochSmooth <= 0 {
		return fmt.Errorf("stochastic periods must be positive")
	}
	if p.BollingerPeriod <= 0 {
		return fmt.Errorf("bollinger period must be positive")
	}
	if p.BollingerK <= 0 {
		return fmt.Errorf("bollinger multiplier must be positive")
	}
	return nil
}

// IndicatorFrame is the series augmented with derived columns. Every column
// has the same length as the series.
type IndicatorFrame struct {
	Series *types.Series
	MA     map[int][]float64
	MACD   MACDResult
	RSI    []float64
	KDJ    StochasticResult
	Boll   BollingerResult

	maPeriods []int
}

// Len returns the number of rows
func (f *IndicatorFrame) Len() int {
	return f.Series.Len()
}

// MovingAverage returns the SMA column for period, or nil if it was not computed.
func (f *IndicatorFrame) MovingAverage(period int) []float64 {
	return f.MA[period]
}

// ColumnNames lists the derived columns in output order.
func (f *IndicatorFrame) ColumnNames() []string {
	names := make([]string, 0, len(f.maPeriods)+10)
	for _, p := range f.maPeriods {
		names = append(names, maName(p))
	}
	return append(names, ColDIF, ColDEA, ColMACD, ColRSI, ColK, ColD, ColJ, ColBollUpper, ColBollMiddle, ColBollLower)
}

// Column returns a derived column by name.
func (f *IndicatorFrame) Column(name string) ([]float64, bool) {
	switch name {
	case ColDIF:
		return f.MACD.DIF, true
	case ColDEA:
		return f.MACD.DEA, true
	case ColMACD:
		return f.MACD.Histogram, true
	case ColRSI:
		return f.RSI, true
	case ColK:
		return f.KDJ.K, true
	case ColD:
		return f.KDJ.D, true
	case ColJ:
		return f.KDJ.J, true
	case ColBollUpper:
		return f.Boll.Upper, true
	case ColBollMiddle:
		return f.Boll.Middle, true
	case ColBollLower:
		return f.Boll.Lower, true
	}
	for _, p := range f.maPeriods {
		if name == maName(p) {
			return f.MA[p], true
		}
	}
	return nil, false
}

func maName(period int) string {
	return fmt.Sprintf("MA%d", period)
}

// Engine computes an IndicatorFrame from a series.
type Engine struct {
	params Params
}

// NewEngine creates an indicator engine
func NewEngine(params Params) *Engine {
	return &Engine{params: params}
}

// Params returns the engine configuration
func (e *Engine) Params() Params {
	return e.params
}

// Compute validates the series and derives every indicator column. Short
// histories are not an error: the affected cells stay undefined.
func (e *Engine) Compute(series *types.Series) (*IndicatorFrame, error) {
	if err := e.params.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorCategoryConfiguration, "indicators", "compute", "invalid parameters")
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	closes := series.Closes()
	periods := append([]int(nil), e.params.MAPeriods...)
	sort.Ints(periods)

	frame := &IndicatorFrame{
		Series:    series,
		MA:        make(map[int][]float64, len(periods)),
		maPeriods: periods,
	}
	for _, p := range periods {
		frame.MA[p] = NewSMA(p).Compute(closes)
	}

	frame.MACD = NewMACD(e.params.MACDFast, e.params.MACDSlow, e.params.MACDSignal).Compute(closes)
	frame.RSI = NewRSI(e.params.RSIPeriod).Compute(closes)
	frame.KDJ = NewStochastic(e.params.StochPeriod, e.params.StochSmooth).Compute(series.Highs(), series.Lows(), closes)
	frame.Boll = NewBollingerBands(e.params.BollingerPeriod, e.params.BollingerK).Compute(closes)

	return frame, nil
}
