package domain

import "time"

// PendingLot is a discrete purchased batch of shares awaiting settlement.
// A lot settles atomically as a whole; it never straddles two dates.
type PendingLot struct {
	Symbol     string
	Shares     int64
	BuyDate    time.Time
	SettleDate time.Time
}

// IsSettled reports whether the lot has settled as of the given date.
func (l *PendingLot) IsSettled(current time.Time) bool {
	return !current.Before(l.SettleDate)
}
