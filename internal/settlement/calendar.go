package settlement

import "time"

// Day normalizes a timestamp to midnight UTC. All settlement arithmetic
// operates on date granularity.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsTradingDay reports whether the date falls on a weekday.
func IsTradingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// AdvanceWeekdays returns the date n trading days after from, stepping
// one calendar day at a time and counting only Monday-Friday. A Friday
// purchase with n=3 settles the following Wednesday.
func AdvanceWeekdays(from time.Time, n int) time.Time {
	current := Day(from)
	counted := 0
	for counted < n {
		current = current.AddDate(0, 0, 1)
		if IsTradingDay(current) {
			counted++
		}
	}
	return current
}

// NextTradingDay returns the next weekday strictly after from.
func NextTradingDay(from time.Time) time.Time {
	return AdvanceWeekdays(from, 1)
}
