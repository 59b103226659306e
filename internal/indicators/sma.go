package indicators

import "math"

// SMA represents the Simple Moving Average technical indicator
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

// Compute returns the trailing mean for every index. Cells before period-1,
// and windows that contain an undefined value, hold NoValue.
func (s *SMA) Compute(values []float64) []float64 {
	out := undefinedColumn(len(values))
	if s.period <= 0 {
		return out
	}

	for i := s.period - 1; i < len(values); i++ {
		sum := 0.0
		ok := true
		for _, v := range values[i-s.period+1 : i+1] {
			if !IsDefined(v) {
				ok = false
				break
			}
			sum += v
		}
		if ok {
			out[i] = sum / float64(s.period)
		}
	}
	return out
}

// GetName returns the indicator name
func (s *SMA) GetName() string {
	return "SMA"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (s *SMA) GetRequiredPeriods() int {
	return s.period
}

// rollingStd is the population standard deviation over a trailing window,
// aligned with the SMA of the same window.
func rollingStd(values, mean []float64, period int) []float64 {
	out := undefinedColumn(len(values))
	for i := period - 1; i < len(values); i++ {
		if !IsDefined(mean[i]) {
			continue
		}
		variance := 0.0
		for _, v := range values[i-period+1 : i+1] {
			d := v - mean[i]
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(period))
	}
	return out
}
