package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide represents the direction of an order
type OrderSide string

// OrderType represents the execution type of an order
type OrderType string

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"

	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
	OrderTypeStop   OrderType = "stop"

	OrderStatusPending         OrderStatus = "pending"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusRejected        OrderStatus = "rejected"
)

// Order represents a trading order. Monetary fields are decimal.Decimal,
// share counts are whole int64 (the market trades round share lots).
type Order struct {
	ID         string
	Symbol     string
	Side       OrderSide
	Type       OrderType
	Quantity   int64
	LimitPrice decimal.Decimal // zero for market orders

	Status      OrderStatus
	FilledQty   int64
	FilledPrice decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder creates a pending order with the creation timestamp set.
func NewOrder(symbol string, side OrderSide, qty int64, orderType OrderType) *Order {
	return &Order{
		Symbol:    symbol,
		Side:      side,
		Type:      orderType,
		Quantity:  qty,
		Status:    OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// IsOpen checks if the order is still active.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPartiallyFilled
}

// IsTerminal reports whether the order can no longer change state.
// Partially filled orders are not terminal; they may still be cancelled.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected:
		return true
	}
	return false
}

// IsFilled returns true if the order is completely filled.
func (o *Order) IsFilled() bool {
	return o.Status == OrderStatusFilled
}
