package portfolio

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"vnquant/internal/domain"
)

// Tracker maintains open positions derived from filled orders and
// computes unrealized PnL from pushed or fetched prices.
type Tracker struct {
	positions map[string]*domain.Position
	prices    domain.PriceSource // optional; nil means push-only
	logger    *slog.Logger
}

// NewTracker creates a position tracker. The price source may be nil;
// prices are then only updated through UpdatePrice.
func NewTracker(prices domain.PriceSource, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		positions: make(map[string]*domain.Position),
		prices:    prices,
		logger:    logger,
	}
}

// ApplyFilledOrder updates position state from a filled or partially
// filled order. Orders in any other state, or without fill details,
// are ignored.
func (t *Tracker) ApplyFilledOrder(order *domain.Order) {
	if order.Status != domain.OrderStatusFilled && order.Status != domain.OrderStatusPartiallyFilled {
		return
	}
	if order.FilledQty <= 0 || order.FilledPrice.IsZero() {
		return
	}

	if order.Side == domain.SideBuy {
		t.applyBuy(order.Symbol, order.FilledQty, order.FilledPrice)
	} else {
		t.applySell(order.Symbol, order.FilledQty)
	}
}

// UpdatePrice pushes a new market price for a held symbol.
func (t *Tracker) UpdatePrice(symbol string, price decimal.Decimal) {
	if pos, ok := t.positions[symbol]; ok {
		pos.CurrentPrice = price
	}
}

// RefreshPrices marks every held position to market via the price
// source. Individual failures are logged and skipped; the batch
// always completes.
func (t *Tracker) RefreshPrices() {
	if t.prices == nil {
		return
	}
	for sym, pos := range t.positions {
		price, err := t.prices(sym)
		if err != nil {
			t.logger.Warn("price fetch failed",
				slog.String("symbol", sym),
				slog.Any("error", err))
			continue
		}
		pos.CurrentPrice = price
	}
}

// GetPosition returns the position for a symbol, or nil if not held.
func (t *Tracker) GetPosition(symbol string) *domain.Position {
	pos, ok := t.positions[symbol]
	if !ok || pos.Quantity <= 0 {
		return nil
	}
	return pos
}

// GetAllPositions returns all positions with positive quantity.
func (t *Tracker) GetAllPositions() []*domain.Position {
	result := make([]*domain.Position, 0, len(t.positions))
	for _, pos := range t.positions {
		if pos.Quantity > 0 {
			result = append(result, pos)
		}
	}
	return result
}

// TotalUnrealizedPnL sums unrealized PnL across all open positions.
func (t *Tracker) TotalUnrealizedPnL() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range t.GetAllPositions() {
		total = total.Add(pos.UnrealizedPnL())
	}
	return total
}

// TotalMarketValue sums the market value of all open positions.
func (t *Tracker) TotalMarketValue() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range t.GetAllPositions() {
		total = total.Add(pos.MarketValue())
	}
	return total
}

// Weights computes the portfolio weight of each held symbol given the
// available cash. Returns an empty map when total value is not positive.
func (t *Tracker) Weights(cash decimal.Decimal) map[string]decimal.Decimal {
	total := t.TotalMarketValue().Add(cash)
	weights := make(map[string]decimal.Decimal)
	if total.LessThanOrEqual(decimal.Zero) {
		return weights
	}
	for sym, pos := range t.positions {
		if pos.Quantity > 0 {
			weights[sym] = pos.MarketValue().Div(total)
		}
	}
	return weights
}

func (t *Tracker) applyBuy(symbol string, qty int64, price decimal.Decimal) {
	pos, ok := t.positions[symbol]
	if !ok {
		current := price
		if t.prices != nil {
			if fetched, err := t.prices(symbol); err == nil {
				current = fetched
			}
		}
		t.positions[symbol] = &domain.Position{
			Symbol:       symbol,
			Quantity:     qty,
			AvgCost:      price,
			CurrentPrice: current,
		}
		return
	}
	oldQty := decimal.NewFromInt(pos.Quantity)
	addQty := decimal.NewFromInt(qty)
	totalQty := oldQty.Add(addQty)
	pos.AvgCost = pos.AvgCost.Mul(oldQty).Add(price.Mul(addQty)).Div(totalQty)
	pos.Quantity += qty
}

func (t *Tracker) applySell(symbol string, qty int64) {
	pos, ok := t.positions[symbol]
	if !ok {
		return
	}
	pos.Quantity -= qty
	if pos.Quantity < 0 {
		pos.Quantity = 0
	}
}
