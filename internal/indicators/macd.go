package indicators

// MACD holds the fast, slow and signal periods of the MACD indicator
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// MACDResult contains the three MACD columns
type MACDResult struct {
	DIF       []float64
	DEA       []float64
	Histogram []float64
}

// NewMACD creates a new MACD instance with specified fast, slow, and signal periods
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

// Compute derives DIF = EMA(fast) - EMA(slow), DEA = EMA(DIF, signal)
// and the histogram 2 * (DIF - DEA).
func (m *MACD) Compute(closes []float64) MACDResult {
	fast := NewEMA(m.fastPeriod).Compute(closes)
	slow := NewEMA(m.slowPeriod).Compute(closes)

	dif := undefinedColumn(len(closes))
	for i := range closes {
		if AllDefined(fast[i], slow[i]) {
			dif[i] = fast[i] - slow[i]
		}
	}

	dea := NewEMA(m.signalPeriod).Compute(dif)
	hist := undefinedColumn(len(closes))
	for i := range closes {
		if AllDefined(dif[i], dea[i]) {
			hist[i] = 2 * (dif[i] - dea[i])
		}
	}

	return MACDResult{DIF: dif, DEA: dea, Histogram: hist}
}

// GetName returns the indicator name
func (m *MACD) GetName() string {
	return "MACD"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (m *MACD) GetRequiredPeriods() int {
	return 1
}
