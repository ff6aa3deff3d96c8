package domain

import "github.com/shopspring/decimal"

// Trade is one executed buy or sell inside an episode step. Value is
// the gross trade amount; the reward engine deducts costs from it.
type Trade struct {
	Symbol string
	Side   OrderSide
	Shares int64
	Price  decimal.Decimal
	Value  decimal.Decimal
}
