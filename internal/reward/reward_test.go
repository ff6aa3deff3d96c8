package reward

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"vnquant/internal/domain"
)

func testEngine() *Engine {
	return NewEngine(decimal.NewFromFloat(0.003), decimal.NewFromFloat(0.001))
}

func TestBaseReward_EmptySeries(t *testing.T) {
	e := testEngine()
	if got := e.BaseReward(nil, 0); got != 0 {
		t.Errorf("Expected 0 for empty series, got %f", got)
	}
}

func TestBaseReward_ConstantSeries(t *testing.T) {
	e := testEngine()
	if got := e.BaseReward([]float64{0.01, 0.01, 0.01}, 0); got != 0 {
		t.Errorf("Expected 0 for zero-deviation series, got %f", got)
	}
}

func TestBaseReward_Sharpe(t *testing.T) {
	e := testEngine()
	returns := []float64{0.01, -0.005, 0.02}

	// mean = 0.008333..., population std = sqrt(sum(d^2)/3)
	mean := (0.01 - 0.005 + 0.02) / 3
	var sq float64
	for _, r := range returns {
		sq += (r - mean) * (r - mean)
	}
	expected := mean / math.Sqrt(sq/3)

	got := e.BaseReward(returns, 0)
	if math.Abs(got-expected) > 1e-12 {
		t.Errorf("Expected Sharpe %f, got %f", expected, got)
	}
}

func TestBaseReward_RiskFreeRateShiftsOnlyMean(t *testing.T) {
	e := testEngine()
	returns := []float64{0.01, 0.02, 0.03}
	withRf := e.BaseReward(returns, 0.02)
	// excess = [-0.01, 0, 0.01]: mean 0, so Sharpe 0
	if math.Abs(withRf) > 1e-12 {
		t.Errorf("Expected 0 Sharpe for symmetric excess series, got %f", withRf)
	}
}

func TestApplyCost(t *testing.T) {
	e := testEngine()
	got := e.ApplyCost(1.0, decimal.NewFromInt(100_000))
	// 1.0 - 0.004 * 100000 = -399
	if math.Abs(got-(-399.0)) > 1e-9 {
		t.Errorf("Expected -399, got %f", got)
	}

	// Cost is on |value|: a sell value deducts the same
	neg := e.ApplyCost(1.0, decimal.NewFromInt(-100_000))
	if math.Abs(neg-got) > 1e-9 {
		t.Errorf("Expected symmetric cost, got %f vs %f", neg, got)
	}
}

func TestApplyPenalty_KnownKinds(t *testing.T) {
	e := testEngine()

	got, err := e.ApplyPenalty(0, domain.ViolationSettlement)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != -10 {
		t.Errorf("Expected -10 for settlement violation, got %f", got)
	}

	got, err = e.ApplyPenalty(0, domain.ViolationVaR)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != -5 {
		t.Errorf("Expected -5 for VaR violation, got %f", got)
	}
}

func TestApplyPenalty_UnknownKindFailsLoudly(t *testing.T) {
	e := testEngine()
	_, err := e.ApplyPenalty(0, domain.ViolationKind("margin_call"))
	if !errors.Is(err, domain.ErrUnknownViolation) {
		t.Errorf("Expected ErrUnknownViolation, got %v", err)
	}
}

func TestTotalReward_NoTradesNoViolationsEqualsBase(t *testing.T) {
	e := testEngine()
	returns := []float64{0.01, -0.005, 0.02}

	total, err := e.TotalReward(returns, nil, nil, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if total != e.BaseReward(returns, 0) {
		t.Errorf("Expected total == base, got %f vs %f", total, e.BaseReward(returns, 0))
	}
}

func TestTotalReward_FullDeduction(t *testing.T) {
	e := testEngine()
	returns := []float64{0.01, -0.005, 0.02}
	trades := []domain.Trade{{Value: decimal.NewFromInt(100_000)}}
	violations := []domain.ViolationKind{domain.ViolationSettlement}

	total, err := e.TotalReward(returns, trades, violations, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := e.BaseReward(returns, 0) - 0.004*100_000 - 10
	if math.Abs(total-expected) > 1e-9 {
		t.Errorf("Expected %f, got %f", expected, total)
	}
}

func TestTotalReward_UnknownViolationPropagates(t *testing.T) {
	e := testEngine()
	_, err := e.TotalReward([]float64{0.01}, nil, []domain.ViolationKind{"bogus"}, 0)
	if !errors.Is(err, domain.ErrUnknownViolation) {
		t.Errorf("Expected ErrUnknownViolation, got %v", err)
	}
}
