package indicators

// BollingerBands represents the Bollinger Bands indicator
type BollingerBands struct {
	period    int
	stdDevMul float64
}

// BollingerResult contains the band columns
type BollingerResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// NewBollingerBands creates a new Bollinger Bands indicator
func NewBollingerBands(period int, stdDevMul float64) *BollingerBands {
	return &BollingerBands{
		period:    period,
		stdDevMul: stdDevMul,
	}
}

// Compute returns middle = SMA(period) and upper/lower = middle +/- k * std,
// where std is the population deviation over the same window.
func (bb *BollingerBands) Compute(closes []float64) BollingerResult {
	mid := NewSMA(bb.period).Compute(closes)
	std := rollingStd(closes, mid, bb.period)

	upper := undefinedColumn(len(closes))
	lower := undefinedColumn(len(closes))
	for i := range closes {
		if AllDefined(mid[i], std[i]) {
			upper[i] = mid[i] + bb.stdDevMul*std[i]
			lower[i] = mid[i] - bb.stdDevMul*std[i]
		}
	}

	return BollingerResult{Upper: upper, Middle: mid, Lower: lower}
}

// GetName returns the indicator name
func (bb *BollingerBands) GetName() string {
	return "BollingerBands"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (bb *BollingerBands) GetRequiredPeriods() int {
	return bb.period
}
