package domain

import "github.com/shopspring/decimal"

// Position represents an open holding in a single symbol.
type Position struct {
	Symbol       string
	Quantity     int64
	AvgCost      decimal.Decimal
	CurrentPrice decimal.Decimal
}

// MarketValue returns quantity x current price.
func (p *Position) MarketValue() decimal.Decimal {
	return p.CurrentPrice.Mul(decimal.NewFromInt(p.Quantity))
}

// UnrealizedPnL returns (current price - avg cost) x quantity.
func (p *Position) UnrealizedPnL() decimal.Decimal {
	return p.CurrentPrice.Sub(p.AvgCost).Mul(decimal.NewFromInt(p.Quantity))
}

// AccountBalance is a point-in-time snapshot of account funds.
type AccountBalance struct {
	Cash        decimal.Decimal
	TotalEquity decimal.Decimal
	BuyingPower decimal.Decimal
	Currency    string
}
