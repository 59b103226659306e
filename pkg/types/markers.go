package types

import "time"

// Marker is a (date, price) point a chart can overlay on a candlestick.
type Marker struct {
	Kind  string
	Date  time.Time
	Price float64
}
