package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"

	"vnquant/internal/domain"
)

func filledBuy(symbol string, qty int64, price int64) *domain.Order {
	o := domain.NewOrder(symbol, domain.SideBuy, qty, domain.OrderTypeMarket)
	o.Status = domain.OrderStatusFilled
	o.FilledQty = qty
	o.FilledPrice = decimal.NewFromInt(price)
	return o
}

func filledSell(symbol string, qty int64, price int64) *domain.Order {
	o := domain.NewOrder(symbol, domain.SideSell, qty, domain.OrderTypeMarket)
	o.Status = domain.OrderStatusFilled
	o.FilledQty = qty
	o.FilledPrice = decimal.NewFromInt(price)
	return o
}

func TestApplyFilledOrder_IgnoresNonFills(t *testing.T) {
	tr := NewTracker(nil, nil)

	pending := domain.NewOrder("VNM", domain.SideBuy, 100, domain.OrderTypeMarket)
	tr.ApplyFilledOrder(pending)

	rejected := domain.NewOrder("VNM", domain.SideBuy, 100, domain.OrderTypeMarket)
	rejected.Status = domain.OrderStatusRejected
	tr.ApplyFilledOrder(rejected)

	// Filled status but no fill details
	noDetails := domain.NewOrder("VNM", domain.SideBuy, 100, domain.OrderTypeMarket)
	noDetails.Status = domain.OrderStatusFilled
	tr.ApplyFilledOrder(noDetails)

	if len(tr.GetAllPositions()) != 0 {
		t.Error("Non-fill orders must not create positions")
	}
}

func TestApplyFilledOrder_WeightedAverage(t *testing.T) {
	tr := NewTracker(nil, nil)

	tr.ApplyFilledOrder(filledBuy("VNM", 100, 1000))
	tr.ApplyFilledOrder(filledBuy("VNM", 100, 2000))

	pos := tr.GetPosition("VNM")
	if pos == nil {
		t.Fatal("Expected position")
	}
	if pos.Quantity != 200 {
		t.Errorf("Expected quantity 200, got %d", pos.Quantity)
	}
	if !pos.AvgCost.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected avg cost 1500, got %s", pos.AvgCost)
	}
}

func TestApplyFilledOrder_SellFloorsAtZero(t *testing.T) {
	tr := NewTracker(nil, nil)
	tr.ApplyFilledOrder(filledBuy("VNM", 100, 1000))
	tr.ApplyFilledOrder(filledSell("VNM", 150, 1100))

	if pos := tr.GetPosition("VNM"); pos != nil {
		t.Errorf("Expected position closed, got quantity %d", pos.Quantity)
	}
}

func TestUnrealizedPnL(t *testing.T) {
	tr := NewTracker(nil, nil)
	tr.ApplyFilledOrder(filledBuy("VNM", 100, 1000))

	tr.UpdatePrice("VNM", decimal.NewFromInt(1100))

	// (1100 - 1000) * 100 = 10,000
	expected := decimal.NewFromInt(10_000)
	if !tr.TotalUnrealizedPnL().Equal(expected) {
		t.Errorf("Expected PnL %s, got %s", expected, tr.TotalUnrealizedPnL())
	}
}

func TestRefreshPrices_SkipsFailedSymbols(t *testing.T) {
	prices := func(symbol string) (decimal.Decimal, error) {
		if symbol == "BAD" {
			return decimal.Zero, domain.ErrPriceUnavailable
		}
		return decimal.NewFromInt(1200), nil
	}
	tr := NewTracker(prices, nil)
	tr.ApplyFilledOrder(filledBuy("VNM", 100, 1000))
	tr.ApplyFilledOrder(filledBuy("BAD", 50, 500))

	tr.RefreshPrices()

	if !tr.GetPosition("VNM").CurrentPrice.Equal(decimal.NewFromInt(1200)) {
		t.Error("Expected VNM marked to fetched price")
	}
	// Failed symbol keeps its last known price; batch completed anyway
	if !tr.GetPosition("BAD").CurrentPrice.Equal(decimal.NewFromInt(500)) {
		t.Error("Expected BAD to keep its previous price")
	}
}

func TestWeights(t *testing.T) {
	tr := NewTracker(nil, nil)
	tr.ApplyFilledOrder(filledBuy("VNM", 100, 1000)) // mv 100,000
	tr.ApplyFilledOrder(filledBuy("FPT", 100, 3000)) // mv 300,000

	cash := decimal.NewFromInt(600_000) // total 1,000,000
	weights := tr.Weights(cash)

	if !weights["VNM"].Equal(decimal.NewFromFloat(0.1)) {
		t.Errorf("Expected VNM weight 0.1, got %s", weights["VNM"])
	}
	if !weights["FPT"].Equal(decimal.NewFromFloat(0.3)) {
		t.Errorf("Expected FPT weight 0.3, got %s", weights["FPT"])
	}
}

func TestWeights_EmptyWhenNoValue(t *testing.T) {
	tr := NewTracker(nil, nil)
	if len(tr.Weights(decimal.Zero)) != 0 {
		t.Error("Expected empty weights with zero total value")
	}
}
