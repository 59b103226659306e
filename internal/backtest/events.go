package backtest

import "time"

// EventKind names an entry of the order log
type EventKind string

const (
	EventOrderSubmitted EventKind = "order_submitted"
	EventOrderAccepted  EventKind = "order_accepted"
	EventOrderCompleted EventKind = "order_completed"
	EventOrderCanceled  EventKind = "order_canceled"
)

// Event is one order lifecycle notification
type Event struct {
	Date      time.Time
	Index     int
	Kind      EventKind
	OrderID   string
	Direction OrderDirection
	Price     float64
	Size      float64
	Note      string
}

// Exit reasons
const (
	ExitStopLoss      = "stop_loss"
	ExitTakeProfit    = "take_profit"
	ExitTrendReversal = "trend_reversal"
)

// Trade is a completed round trip
type Trade struct {
	EntryOrderID string
	ExitOrderID  string
	EntryDate    time.Time
	ExitDate     time.Time
	EntryPrice   float64
	ExitPrice    float64
	Size         float64
	PnL          float64
	ReturnPct    float64
	BarsHeld     int
	ExitReason   string
}
