package reward

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"vnquant/internal/domain"
)

// epsilon guards the Sharpe denominator against degenerate return
// series with near-zero deviation.
const epsilon = 1e-8

// Violation penalty magnitudes.
const (
	penaltySettlement = -10.0
	penaltyVaR        = -5.0
)

// Engine converts a return series, executed trades, and rule
// violations into a single scalar training signal.
type Engine struct {
	costRate float64 // taxRate + feeRate, applied per trade
}

// NewEngine creates a reward engine with the given fee and tax rates.
func NewEngine(feeRate, taxRate decimal.Decimal) *Engine {
	return &Engine{
		costRate: feeRate.Add(taxRate).InexactFloat64(),
	}
}

// BaseReward computes the Sharpe ratio of the excess return series:
// mean(returns - rf) / std(returns - rf). Returns 0 for an empty
// series or one whose deviation is below epsilon.
func (e *Engine) BaseReward(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	n := float64(len(returns))
	var sum float64
	for _, r := range returns {
		if math.IsNaN(r) {
			r = 0
		}
		sum += r - riskFreeRate
	}
	mean := sum / n

	var sqSum float64
	for _, r := range returns {
		if math.IsNaN(r) {
			r = 0
		}
		d := (r - riskFreeRate) - mean
		sqSum += d * d
	}
	std := math.Sqrt(sqSum / n)

	if std < epsilon {
		return 0
	}
	return mean / std
}

// ApplyCost deducts the transaction cost of one trade from the reward:
// reward - costRate * |tradeValue|.
func (e *Engine) ApplyCost(reward float64, tradeValue decimal.Decimal) float64 {
	return reward - e.costRate*math.Abs(tradeValue.InexactFloat64())
}

// ApplyPenalty adds the fixed penalty for a known violation kind.
// An unrecognized kind is a programming error and fails loudly.
func (e *Engine) ApplyPenalty(reward float64, kind domain.ViolationKind) (float64, error) {
	switch kind {
	case domain.ViolationSettlement:
		return reward + penaltySettlement, nil
	case domain.ViolationVaR:
		return reward + penaltyVaR, nil
	default:
		return reward, fmt.Errorf("%w: %q", domain.ErrUnknownViolation, kind)
	}
}

// TotalReward computes the full signal: BaseReward, then costs for
// every trade in the given order, then penalties for every violation
// in the given order. The sequence is fixed and must not be reordered.
func (e *Engine) TotalReward(returns []float64, trades []domain.Trade, violations []domain.ViolationKind, riskFreeRate float64) (float64, error) {
	reward := e.BaseReward(returns, riskFreeRate)

	for _, trade := range trades {
		reward = e.ApplyCost(reward, trade.Value)
	}

	for _, v := range violations {
		var err error
		reward, err = e.ApplyPenalty(reward, v)
		if err != nil {
			return reward, err
		}
	}

	return reward, nil
}
