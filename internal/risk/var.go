package risk

import (
	"math"
	"sort"
)

// HistoricalVaR computes value-at-risk over a return series by
// historical simulation: the loss at the (1 - confidence) quantile,
// reported as a positive fraction. Returns 0 for an empty series.
func HistoricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	loss := -sorted[idx]
	if loss < 0 {
		return 0
	}
	return loss
}

// Limiter flags steps whose portfolio VaR exceeds a configured limit.
// It stays silent until the return window has enough observations.
type Limiter struct {
	confidence float64
	limit      float64
	minSamples int
}

// NewLimiter creates a VaR limiter. A non-positive limit disables it.
func NewLimiter(confidence, limit float64, minSamples int) *Limiter {
	if minSamples < 1 {
		minSamples = 1
	}
	return &Limiter{
		confidence: confidence,
		limit:      limit,
		minSamples: minSamples,
	}
}

// Enabled reports whether the limiter is active.
func (l *Limiter) Enabled() bool {
	return l != nil && l.limit > 0
}

// Check reports whether the current return series breaches the VaR
// limit. False while the window is still warming up.
func (l *Limiter) Check(returns []float64) bool {
	if !l.Enabled() || len(returns) < l.minSamples {
		return false
	}
	return HistoricalVaR(returns, l.confidence) > l.limit
}
