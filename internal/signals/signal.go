package signals

// Signal is the direction a rule points to on one bar
type Signal int

const (
	Neutral Signal = 0
	Buy     Signal = 1
	Sell    Signal = -1
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "NEUTRAL"
	}
}

// Rule names
const (
	RuleMACD      = "macd_cross"
	RuleRSI       = "rsi"
	RuleBollinger = "bollinger"
	RuleComposite = "composite"
)

// Rules lists the per-bar directional rules in report order.
var Rules = []string{RuleMACD, RuleRSI, RuleBollinger, RuleComposite}

// Params holds the thresholds used by the rules
type Params struct {
	RSIOversold   float64 `json:"rsi_oversold"`
	RSIOverbought float64 `json:"rsi_overbought"`
	FastMA        int     `json:"fast_ma"`
	MidMA         int     `json:"mid_ma"`
	SlowMA        int     `json:"slow_ma"`
}

// DefaultParams returns RSI 30/70 and the MA5 > MA10 > MA20 stack.
func DefaultParams() Params {
	return Params{
		RSIOversold:   30,
		RSIOverbought: 70,
		FastMA:        5,
		MidMA:         10,
		SlowMA:        20,
	}
}
