package backtest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/ducminhle1904/stock-signal-backtest/internal/errors"
)

// PositionStatus is Flat or Open
type PositionStatus int

const (
	Flat PositionStatus = iota
	Open
)

func (s PositionStatus) String() string {
	if s == Open {
		return "OPEN"
	}
	return "FLAT"
}

// Position is the single long position the account may hold
type Position struct {
	Status          PositionStatus
	EntryDate       time.Time
	EntryIndex      int
	EntryPrice      float64
	Size            float64
	StopLossPrice   float64
	TakeProfitPrice float64
	UnrealizedPnL   float64
}

// OrderDirection is Buy or Sell
type OrderDirection string

const (
	DirectionBuy  OrderDirection = "BUY"
	DirectionSell OrderDirection = "SELL"
)

// OrderStatus tracks an order through its lifecycle
type OrderStatus string

const (
	OrderSubmitted OrderStatus = "SUBMITTED"
	OrderAccepted  OrderStatus = "ACCEPTED"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCanceled  OrderStatus = "CANCELED"
)

// Order is a market order filled at the bar close
type Order struct {
	ID        string
	Direction OrderDirection
	Price     float64
	Size      float64
	Status    OrderStatus
	Date      time.Time
	Index     int
}

// EquityPoint is one row of the equity curve
type EquityPoint struct {
	Date     time.Time
	Cash     float64
	Value    float64
	Exposure float64
}

// Bracket holds the stop-loss and take-profit distances as fractions of the entry price.
type Bracket struct {
	StopLossPct   float64
	TakeProfitPct float64
}

// Account is the state of one backtest run. Engine.Step takes an Account
// and returns the next one; nothing else mutates it.
type Account struct {
	Cash        decimal.Decimal
	Position    Position
	Pending     *Order
	EquityCurve []EquityPoint
	Trades      []Trade
	Events      []Event
}

// NewAccount creates a flat account holding initial cash
func NewAccount(initialCash float64) Account {
	return Account{Cash: decimal.NewFromFloat(initialCash)}
}

// CashFloat returns the cash balance as a float
func (a *Account) CashFloat() float64 {
	return a.Cash.InexactFloat64()
}

// Equity marks the account to market at price.
func (a *Account) Equity(price float64) float64 {
	if a.Position.Status != Open {
		return a.CashFloat()
	}
	return a.Cash.Add(notional(price, a.Position.Size)).InexactFloat64()
}

// submit registers a new order. Only one order may be outstanding and the
// direction must match the position state.
func (a *Account) submit(dir OrderDirection, price, size float64, date time.Time, index int) (*Order, error) {
	if a.Pending != nil {
		return nil, apperrors.NewSimulationError("account", "submit", apperrors.ErrOrderPending,
			"order %s is %s", a.Pending.ID, a.Pending.Status)
	}
	switch {
	case dir == DirectionBuy && a.Position.Status == Open:
		return nil, apperrors.NewSimulationError("account", "submit", apperrors.ErrPositionOpen,
			"buy at bar %d", index)
	case dir == DirectionSell && a.Position.Status == Flat:
		return nil, apperrors.NewSimulationError("account", "submit", apperrors.ErrPositionFlat,
			"sell at bar %d", index)
	}

	order := &Order{
		ID:        uuid.NewString(),
		Direction: dir,
		Price:     price,
		Size:      size,
		Status:    OrderSubmitted,
		Date:      date,
		Index:     index,
	}
	a.Pending = order
	a.record(EventOrderSubmitted, order, "")
	return order, nil
}

func (a *Account) accept() error {
	if a.Pending == nil {
		return apperrors.NewSimulationError("account", "accept", apperrors.ErrNoPendingOrder, "nothing to accept")
	}
	if a.Pending.Status != OrderSubmitted {
		return apperrors.NewSimulationError("account", "accept", apperrors.ErrOrderPending,
			"order %s is already %s", a.Pending.ID, a.Pending.Status)
	}
	a.Pending.Status = OrderAccepted
	a.record(EventOrderAccepted, a.Pending, "")
	return nil
}

// complete fills the pending order at its price. A buy the cash cannot
// cover is canceled instead. The filled or canceled order is returned.
func (a *Account) complete(bracket Bracket) (*Order, error) {
	order := a.Pending
	if order == nil {
		return nil, apperrors.NewSimulationError("account", "complete", apperrors.ErrNoPendingOrder, "nothing to fill")
	}
	a.Pending = nil

	value := notional(order.Price, order.Size)
	switch order.Direction {
	case DirectionBuy:
		if a.Position.Status == Open {
			return nil, apperrors.NewSimulationError("account", "complete", apperrors.ErrPositionOpen,
				"order %s", order.ID)
		}
		if value.GreaterThan(a.Cash) {
			order.Status = OrderCanceled
			a.record(EventOrderCanceled, order, fmt.Sprintf("insufficient cash: need %s, have %s",
				value.StringFixed(2), a.Cash.StringFixed(2)))
			return order, nil
		}
		a.Cash = a.Cash.Sub(value)
		a.Position = Position{
			Status:          Open,
			EntryDate:       order.Date,
			EntryIndex:      order.Index,
			EntryPrice:      order.Price,
			Size:            order.Size,
			StopLossPrice:   order.Price * (1 - bracket.StopLossPct),
			TakeProfitPrice: order.Price * (1 + bracket.TakeProfitPct),
		}

	case DirectionSell:
		if a.Position.Status == Flat {
			return nil, apperrors.NewSimulationError("account", "complete", apperrors.ErrPositionFlat,
				"order %s", order.ID)
		}
		a.Cash = a.Cash.Add(value)
		a.Position = Position{}
	}

	order.Status = OrderCompleted
	a.record(EventOrderCompleted, order, "")
	return order, nil
}

func (a *Account) markToMarket(date time.Time, price float64) {
	exposure := 0.0
	if a.Position.Status == Open {
		a.Position.UnrealizedPnL = (price - a.Position.EntryPrice) * a.Position.Size
		exposure = 1
	}
	a.EquityCurve = append(a.EquityCurve, EquityPoint{
		Date:     date,
		Cash:     a.CashFloat(),
		Value:    a.Equity(price),
		Exposure: exposure,
	})
}

func (a *Account) record(kind EventKind, order *Order, note string) {
	a.Events = append(a.Events, Event{
		Date:      order.Date,
		Index:     order.Index,
		Kind:      kind,
		OrderID:   order.ID,
		Direction: order.Direction,
		Price:     order.Price,
		Size:      order.Size,
		Note:      note,
	})
}

func notional(price, size float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(size))
}
