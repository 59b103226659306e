package indicators

// EMA represents the Exponential Moving Average technical indicator
type EMA struct {
	period int
	alpha  float64
}

// NewEMA creates a new EMA indicator
func NewEMA(period int) *EMA {
	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1), // Standard EMA alpha calculation
	}
}

// Compute returns the EMA column. The recursion is seeded with the first
// defined input, so a fully defined input yields a fully defined output.
func (e *EMA) Compute(values []float64) []float64 {
	out := undefinedColumn(len(values))
	seeded := false
	prev := 0.0

	for i, v := range values {
		if !IsDefined(v) {
			continue
		}
		if !seeded {
			prev = v
			seeded = true
		} else {
			prev = e.alpha*v + (1-e.alpha)*prev
		}
		out[i] = prev
	}
	return out
}

// GetName returns the indicator name
func (e *EMA) GetName() string {
	return "EMA"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (e *EMA) GetRequiredPeriods() int {
	return 1
}
