package broker

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vnquant/internal/domain"
)

// Default transaction cost rates. Both are configuration, not business
// logic; the environment and reward engine must use the same values.
var (
	DefaultFeeRate = decimal.NewFromFloat(0.003) // broker commission, both sides
	DefaultTaxRate = decimal.NewFromFloat(0.001) // selling tax, sells only
)

// SimulatedGateway is an in-memory broker for paper trading and
// episode simulation. Market orders fill immediately at the reference
// price; limit orders fill at the limit price only when the reference
// price satisfies the limit condition, otherwise they stay pending.
type SimulatedGateway struct {
	cash      decimal.Decimal
	prices    map[string]decimal.Decimal
	positions map[string]*domain.Position
	orders    map[string]*domain.Order
	feeRate   decimal.Decimal
	taxRate   decimal.Decimal
	currency  string
	loggedIn  bool
}

// NewSimulatedGateway creates a gateway with the given starting cash.
// Default fee and tax rates apply; override with SetRates.
func NewSimulatedGateway(initialCash decimal.Decimal) *SimulatedGateway {
	return &SimulatedGateway{
		cash:      initialCash,
		prices:    make(map[string]decimal.Decimal),
		positions: make(map[string]*domain.Position),
		orders:    make(map[string]*domain.Order),
		feeRate:   DefaultFeeRate,
		taxRate:   DefaultTaxRate,
		currency:  "VND",
	}
}

// SetRates overrides the fee and tax rates.
func (g *SimulatedGateway) SetRates(feeRate, taxRate decimal.Decimal) {
	g.feeRate = feeRate
	g.taxRate = taxRate
}

// UpdatePrice sets the reference price for a symbol and marks any held
// position to it.
func (g *SimulatedGateway) UpdatePrice(symbol string, price decimal.Decimal) {
	g.prices[symbol] = price
	if pos, ok := g.positions[symbol]; ok {
		pos.CurrentPrice = price
	}
}

// Login always succeeds for the simulated gateway.
func (g *SimulatedGateway) Login() bool {
	g.loggedIn = true
	return true
}

// PlaceOrder executes an order against the in-memory ledger.
// Rejections (no reference price, insufficient cash, insufficient
// shares) are reported through order status, never through an error.
func (g *SimulatedGateway) PlaceOrder(order *domain.Order) (*domain.Order, error) {
	order.ID = uuid.NewString()

	refPrice, hasRef := g.prices[order.Symbol]
	fillPrice, ok := g.fillPrice(order, refPrice, hasRef)
	if !ok {
		return g.finish(order, domain.OrderStatusRejected), nil
	}

	// Limit orders wait for the reference price to satisfy the limit.
	// An unmet limit is pending, not rejected, and moves no funds.
	if order.Type == domain.OrderTypeLimit && hasRef {
		if order.Side == domain.SideBuy && refPrice.GreaterThan(order.LimitPrice) {
			return g.finish(order, domain.OrderStatusPending), nil
		}
		if order.Side == domain.SideSell && refPrice.LessThan(order.LimitPrice) {
			return g.finish(order, domain.OrderStatusPending), nil
		}
	}

	qty := decimal.NewFromInt(order.Quantity)
	tradeValue := fillPrice.Mul(qty)

	if order.Side == domain.SideBuy {
		totalCost := tradeValue.Mul(decimal.NewFromInt(1).Add(g.feeRate))
		if totalCost.GreaterThan(g.cash) {
			return g.finish(order, domain.OrderStatusRejected), nil
		}
		g.cash = g.cash.Sub(totalCost)
		g.applyBuy(order.Symbol, order.Quantity, fillPrice)
	} else {
		pos := g.positions[order.Symbol]
		if pos == nil || pos.Quantity < order.Quantity {
			return g.finish(order, domain.OrderStatusRejected), nil
		}
		proceeds := tradeValue.Mul(decimal.NewFromInt(1).Sub(g.taxRate).Sub(g.feeRate))
		g.cash = g.cash.Add(proceeds)
		pos.Quantity -= order.Quantity
	}

	order.FilledQty = order.Quantity
	order.FilledPrice = fillPrice
	return g.finish(order, domain.OrderStatusFilled), nil
}

// CancelOrder cancels a pending order. Terminal orders are immutable.
func (g *SimulatedGateway) CancelOrder(orderID string) bool {
	order, ok := g.orders[orderID]
	if !ok || order.Status != domain.OrderStatusPending {
		return false
	}
	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = time.Now().UTC()
	return true
}

// GetPositions returns all positions with positive quantity.
func (g *SimulatedGateway) GetPositions() []*domain.Position {
	result := make([]*domain.Position, 0, len(g.positions))
	for _, pos := range g.positions {
		if pos.Quantity > 0 {
			result = append(result, pos)
		}
	}
	return result
}

// GetBalance returns a snapshot of cash and equity.
func (g *SimulatedGateway) GetBalance() domain.AccountBalance {
	equity := g.cash
	for _, pos := range g.positions {
		equity = equity.Add(pos.MarketValue())
	}
	return domain.AccountBalance{
		Cash:        g.cash,
		TotalEquity: equity,
		BuyingPower: g.cash,
		Currency:    g.currency,
	}
}

// GetOrderStatus returns the order for an id, or nil if unknown.
func (g *SimulatedGateway) GetOrderStatus(orderID string) *domain.Order {
	return g.orders[orderID]
}

// GetOpenOrders returns all orders still pending.
func (g *SimulatedGateway) GetOpenOrders() []*domain.Order {
	result := make([]*domain.Order, 0)
	for _, order := range g.orders {
		if order.Status == domain.OrderStatusPending {
			result = append(result, order)
		}
	}
	return result
}

// fillPrice determines the execution price for an order. Limit orders
// fill at the limit price (price improvement is not modelled); market
// and stop orders fill at the reference price.
func (g *SimulatedGateway) fillPrice(order *domain.Order, refPrice decimal.Decimal, hasRef bool) (decimal.Decimal, bool) {
	if order.Type == domain.OrderTypeLimit && !order.LimitPrice.IsZero() {
		return order.LimitPrice, true
	}
	if !hasRef {
		return decimal.Zero, false
	}
	return refPrice, true
}

func (g *SimulatedGateway) finish(order *domain.Order, status domain.OrderStatus) *domain.Order {
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	g.orders[order.ID] = order
	return order
}

func (g *SimulatedGateway) applyBuy(symbol string, qty int64, price decimal.Decimal) {
	pos, ok := g.positions[symbol]
	if !ok {
		g.positions[symbol] = &domain.Position{
			Symbol:       symbol,
			Quantity:     qty,
			AvgCost:      price,
			CurrentPrice: price,
		}
		return
	}
	oldQty := decimal.NewFromInt(pos.Quantity)
	newQty := decimal.NewFromInt(qty)
	totalQty := oldQty.Add(newQty)
	pos.AvgCost = pos.AvgCost.Mul(oldQty).Add(price.Mul(newQty)).Div(totalQty)
	pos.Quantity += qty
	pos.CurrentPrice = price
}
