package settlement

import "time"

// ActionMask holds the per-symbol action eligibility flags for one step.
type ActionMask struct {
	Hold bool
	Buy  bool
	Sell bool
}

// BuildActionMask computes action eligibility for every symbol. Hold and
// buy are always allowed. Sell is blocked when raw holdings are zero or
// no settled shares are available; a nil tracker blocks all sells.
// The mask must be recomputed every step, never cached across a
// settlement date boundary.
func BuildActionMask(symbols []string, holdings map[string]int64, current time.Time, tracker *Tracker) []ActionMask {
	mask := make([]ActionMask, len(symbols))
	for i, sym := range symbols {
		mask[i] = ActionMask{Hold: true, Buy: true, Sell: true}
		if holdings[sym] == 0 {
			mask[i].Sell = false
			continue
		}
		if tracker == nil || tracker.AvailableShares(sym, current) <= 0 {
			mask[i].Sell = false
		}
	}
	return mask
}
