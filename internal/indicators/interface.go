package indicators

// Indicator is implemented by every column calculator in this package.
type Indicator interface {
	GetName() string
	GetRequiredPeriods() int
}

var (
	_ Indicator = (*SMA)(nil)
	_ Indicator = (*EMA)(nil)
	_ Indicator = (*MACD)(nil)
	_ Indicator = (*RSI)(nil)
	_ Indicator = (*Stochastic)(nil)
	_ Indicator = (*BollingerBands)(nil)
)
