package risk

import (
	"math"
	"testing"
)

func TestHistoricalVaR_Empty(t *testing.T) {
	if got := HistoricalVaR(nil, 0.95); got != 0 {
		t.Errorf("Expected 0 for empty series, got %f", got)
	}
}

func TestHistoricalVaR_WorstLossAtHighConfidence(t *testing.T) {
	returns := []float64{0.01, -0.03, 0.02, -0.01, 0.005}
	got := HistoricalVaR(returns, 0.95)
	// (1-0.95)*5 = 0.25 -> index 0 -> worst return -0.03
	if math.Abs(got-0.03) > 1e-12 {
		t.Errorf("Expected VaR 0.03, got %f", got)
	}
}

func TestHistoricalVaR_NeverNegative(t *testing.T) {
	returns := []float64{0.01, 0.02, 0.03}
	if got := HistoricalVaR(returns, 0.95); got != 0 {
		t.Errorf("Expected 0 VaR for all-gain series, got %f", got)
	}
}

func TestLimiter_WarmupAndBreach(t *testing.T) {
	l := NewLimiter(0.95, 0.02, 3)

	// Too few observations: silent
	if l.Check([]float64{-0.5}) {
		t.Error("Limiter must stay silent during warmup")
	}

	// Breach: worst loss 0.05 > limit 0.02
	if !l.Check([]float64{0.01, -0.05, 0.02}) {
		t.Error("Expected breach with loss above limit")
	}

	// No breach: worst loss 0.01 < limit 0.02
	if l.Check([]float64{0.01, -0.01, 0.02}) {
		t.Error("Unexpected breach with loss below limit")
	}
}

func TestLimiter_DisabledByZeroLimit(t *testing.T) {
	l := NewLimiter(0.95, 0, 1)
	if l.Enabled() {
		t.Error("Zero limit must disable the limiter")
	}
	if l.Check([]float64{-0.9}) {
		t.Error("Disabled limiter must never flag")
	}
}
