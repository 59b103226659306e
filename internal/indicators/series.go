package indicators

import "math"

// NoValue is the sentinel stored in warm-up cells of a derived column.
func NoValue() float64 {
	return math.NaN()
}

// IsDefined reports whether v holds a computed value rather than the sentinel.
func IsDefined(v float64) bool {
	return !math.IsNaN(v)
}

// AllDefined reports whether every value is defined.
func AllDefined(values ...float64) bool {
	for _, v := range values {
		if !IsDefined(v) {
			return false
		}
	}
	return true
}

func undefinedColumn(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = NoValue()
	}
	return out
}

// CrossAbove reports whether a crossed above b at bar i:
// a[i] > b[i] and a[i-1] <= b[i-1]. Undefined inputs never cross.
func CrossAbove(a, b []float64, i int) bool {
	if i < 1 || i >= len(a) || i >= len(b) {
		return false
	}
	if !AllDefined(a[i], b[i], a[i-1], b[i-1]) {
		return false
	}
	return a[i] > b[i] && a[i-1] <= b[i-1]
}

// CrossBelow mirrors CrossAbove.
func CrossBelow(a, b []float64, i int) bool {
	if i < 1 || i >= len(a) || i >= len(b) {
		return false
	}
	if !AllDefined(a[i], b[i], a[i-1], b[i-1]) {
		return false
	}
	return a[i] < b[i] && a[i-1] >= b[i-1]
}
