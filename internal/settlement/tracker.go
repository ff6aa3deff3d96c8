package settlement

import (
	"time"

	"vnquant/internal/domain"
)

// settleLag is the T+2.5 rule expressed in full trading days: bought
// shares become sellable on the third trading day after purchase (the
// half day rounds up to the next morning).
const settleLag = 3

// Tracker owns all pending lots and is the sole authority on which
// shares are legally sellable under the T+2.5 settlement rule.
// It is single-owner state: one component instance per ledger.
type Tracker struct {
	pending map[string][]domain.PendingLot
	settled map[string]int64
}

// NewTracker creates an empty settlement tracker.
func NewTracker() *Tracker {
	return &Tracker{
		pending: make(map[string][]domain.PendingLot),
		settled: make(map[string]int64),
	}
}

// RecordBuy appends a pending lot for a buy fill. The settle date is
// computed immediately and never revised.
func (t *Tracker) RecordBuy(symbol string, shares int64, buyDate time.Time) {
	day := Day(buyDate)
	t.pending[symbol] = append(t.pending[symbol], domain.PendingLot{
		Symbol:     symbol,
		Shares:     shares,
		BuyDate:    day,
		SettleDate: AdvanceWeekdays(day, settleLag),
	})
}

// flush moves every lot whose settle date has arrived into the settled
// pool. Idempotent; called before every availability read or write.
func (t *Tracker) flush(symbol string, current time.Time) {
	day := Day(current)
	lots := t.pending[symbol]
	stillPending := lots[:0]
	for _, lot := range lots {
		if lot.IsSettled(day) {
			t.settled[symbol] += lot.Shares
		} else {
			stillPending = append(stillPending, lot)
		}
	}
	t.pending[symbol] = stillPending
}

// AvailableShares returns the number of settled shares that may be sold
// as of the given date.
func (t *Tracker) AvailableShares(symbol string, current time.Time) int64 {
	t.flush(symbol, current)
	return t.settled[symbol]
}

// Consume deducts sold shares from the settled pool. The deduction is
// all-or-nothing: if fewer than shares are settled, state is untouched
// and false is returned.
func (t *Tracker) Consume(symbol string, shares int64, current time.Time) bool {
	available := t.AvailableShares(symbol, current)
	if available < shares {
		return false
	}
	t.settled[symbol] = available - shares
	return true
}

// IsSellAllowed checks whether selling shares of symbol is legal today.
// Read-only equivalent of Consume's precondition.
func (t *Tracker) IsSellAllowed(symbol string, shares int64, current time.Time) bool {
	return t.AvailableShares(symbol, current) >= shares
}

// PendingLots returns a copy of the pending lots for a symbol.
func (t *Tracker) PendingLots(symbol string) []domain.PendingLot {
	lots := t.pending[symbol]
	out := make([]domain.PendingLot, len(lots))
	copy(out, lots)
	return out
}
