package domain

import "github.com/shopspring/decimal"

// ExecutionGateway defines the contract every broker integration must
// implement, including the in-memory simulated one. All calls are
// synchronous; the caller owns pacing and retries.
type ExecutionGateway interface {
	// Login authenticates with the broker. Returns true on success.
	Login() bool

	// PlaceOrder submits an order. The gateway assigns its own order id
	// and returns the order with updated status and fill details.
	// A rejected order is reported via status, not via error; errors are
	// reserved for transport-level failures.
	PlaceOrder(order *Order) (*Order, error)

	// CancelOrder cancels a pending order. Returns true if the order was
	// pending and is now cancelled.
	CancelOrder(orderID string) bool

	// GetPositions returns all positions with quantity > 0.
	GetPositions() []*Position

	// GetBalance returns the current account balance snapshot.
	GetBalance() AccountBalance

	// GetOrderStatus returns the order for an id, or nil if unknown.
	GetOrderStatus(orderID string) *Order

	// GetOpenOrders returns all orders still pending at the gateway.
	GetOpenOrders() []*Order
}

// PriceSource supplies the current reference price for a symbol.
// A failing source returns an error for that symbol only; batch callers
// log and skip, they never abort.
type PriceSource func(symbol string) (decimal.Decimal, error)
