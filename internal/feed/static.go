package feed

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"vnquant/internal/domain"
)

// Static is a fixed in-memory price table used for simulation and
// tests. It satisfies the same source contract as the live feed.
type Static struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// NewStatic creates a static source, optionally seeded with prices.
func NewStatic(prices map[string]decimal.Decimal) *Static {
	if prices == nil {
		prices = make(map[string]decimal.Decimal)
	}
	return &Static{prices: prices}
}

// Set updates the price for a symbol.
func (s *Static) Set(symbol string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[symbol] = price
}

// Source exposes the table as a domain.PriceSource.
func (s *Static) Source() domain.PriceSource {
	return func(symbol string) (decimal.Decimal, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		price, ok := s.prices[symbol]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrPriceUnavailable, symbol)
		}
		return price, nil
	}
}
