package indicators

// Stochastic is the %K/%D/%J oscillator (KDJ)
type Stochastic struct {
	period int
	smooth int
}

// StochasticResult contains the three oscillator lines
type StochasticResult struct {
	K []float64
	D []float64
	J []float64
}

// NewStochastic creates a stochastic oscillator with a lookback and a %D smoothing window
func NewStochastic(period, smooth int) *Stochastic {
	return &Stochastic{period: period, smooth: smooth}
}

// Compute returns %K = 100*(close-LL)/(HH-LL), %D = SMA(%K) and %J = 3K - 2D.
// A zero high-low range resolves to 50.
func (s *Stochastic) Compute(highs, lows, closes []float64) StochasticResult {
	n := len(closes)
	k := undefinedColumn(n)

	for i := s.period - 1; i < n && s.period > 0; i++ {
		hh, ll := highs[i], lows[i]
		for j := i - s.period + 1; j < i; j++ {
			if highs[j] > hh {
				hh = highs[j]
			}
			if lows[j] < ll {
				ll = lows[j]
			}
		}
		if hh == ll {
			k[i] = 50
			continue
		}
		k[i] = 100 * (closes[i] - ll) / (hh - ll)
	}

	d := NewSMA(s.smooth).Compute(k)
	j := undefinedColumn(n)
	for i := range j {
		if AllDefined(k[i], d[i]) {
			j[i] = 3*k[i] - 2*d[i]
		}
	}

	return StochasticResult{K: k, D: d, J: j}
}

// GetName returns the indicator name
func (s *Stochastic) GetName() string {
	return "KDJ"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (s *Stochastic) GetRequiredPeriods() int {
	return s.period + s.smooth - 1
}
