package broker

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"vnquant/internal/domain"
)

// scriptedGateway lets tests control per-attempt gateway behavior.
type scriptedGateway struct {
	attempts  int
	placeFunc func(attempt int, order *domain.Order) (*domain.Order, error)
	orders    map[string]*domain.Order
}

func newScriptedGateway(place func(attempt int, order *domain.Order) (*domain.Order, error)) *scriptedGateway {
	return &scriptedGateway{placeFunc: place, orders: make(map[string]*domain.Order)}
}

func (g *scriptedGateway) Login() bool { return true }

func (g *scriptedGateway) PlaceOrder(order *domain.Order) (*domain.Order, error) {
	g.attempts++
	result, err := g.placeFunc(g.attempts, order)
	if result != nil {
		g.orders[result.ID] = result
	}
	return result, err
}

func (g *scriptedGateway) CancelOrder(orderID string) bool {
	order, ok := g.orders[orderID]
	if !ok || order.Status != domain.OrderStatusPending {
		return false
	}
	order.Status = domain.OrderStatusCancelled
	return true
}

func (g *scriptedGateway) GetPositions() []*domain.Position { return nil }

func (g *scriptedGateway) GetBalance() domain.AccountBalance {
	return domain.AccountBalance{Cash: decimal.Zero}
}

func (g *scriptedGateway) GetOrderStatus(orderID string) *domain.Order {
	return g.orders[orderID]
}

func (g *scriptedGateway) GetOpenOrders() []*domain.Order { return nil }

func rejectAll(attempt int, order *domain.Order) (*domain.Order, error) {
	order.Status = domain.OrderStatusRejected
	return order, nil
}

func TestExecuteOrder_RetryBudgetExhausted(t *testing.T) {
	gw := newScriptedGateway(rejectAll)
	coord := NewOrderCoordinator(gw, 3, 0, nil)

	order := domain.NewOrder("VNM", domain.SideBuy, 100, domain.OrderTypeMarket)
	result := coord.ExecuteOrder(order)

	if gw.attempts != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", gw.attempts)
	}
	if result.Status != domain.OrderStatusRejected {
		t.Errorf("Expected rejected, got %s", result.Status)
	}
	if len(coord.GetOpenOrders()) != 0 {
		t.Error("Expected no open orders after exhausted retries")
	}
}

func TestExecuteOrder_TransientFailureThenFill(t *testing.T) {
	gw := newScriptedGateway(func(attempt int, order *domain.Order) (*domain.Order, error) {
		if attempt == 1 {
			return nil, domain.NewGatewayError("place_order", errors.New("timeout"))
		}
		order.Status = domain.OrderStatusFilled
		order.FilledQty = order.Quantity
		return order, nil
	})
	coord := NewOrderCoordinator(gw, 3, 0, nil)

	result := coord.ExecuteOrder(domain.NewOrder("VNM", domain.SideBuy, 100, domain.OrderTypeMarket))

	if gw.attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", gw.attempts)
	}
	if result.Status != domain.OrderStatusFilled {
		t.Errorf("Expected filled, got %s", result.Status)
	}
	if len(coord.GetFilledOrders()) != 1 {
		t.Error("Expected 1 filled order in registry")
	}
}

func TestExecuteOrder_PendingAcceptedImmediately(t *testing.T) {
	// An unmet limit order is pending; the coordinator must not
	// retry in pursuit of a fill.
	gw := newScriptedGateway(func(attempt int, order *domain.Order) (*domain.Order, error) {
		order.Status = domain.OrderStatusPending
		return order, nil
	})
	coord := NewOrderCoordinator(gw, 5, 0, nil)

	result := coord.ExecuteOrder(domain.NewOrder("VNM", domain.SideBuy, 100, domain.OrderTypeLimit))

	if gw.attempts != 1 {
		t.Errorf("Expected 1 attempt for a pending result, got %d", gw.attempts)
	}
	if result.Status != domain.OrderStatusPending {
		t.Errorf("Expected pending, got %s", result.Status)
	}
	if len(coord.GetOpenOrders()) != 1 {
		t.Error("Expected pending order to count as open")
	}
}

func TestExecuteOrder_GatewayIDAliased(t *testing.T) {
	gw := newScriptedGateway(func(attempt int, order *domain.Order) (*domain.Order, error) {
		order.ID = "gw-42" // gateway insists on its own id
		order.Status = domain.OrderStatusFilled
		return order, nil
	})
	coord := NewOrderCoordinator(gw, 3, 0, nil)

	order := domain.NewOrder("VNM", domain.SideBuy, 100, domain.OrderTypeMarket)
	order.ID = "local-1"
	coord.ExecuteOrder(order)

	byLocal := coord.GetOrder("local-1")
	byGateway := coord.GetOrder("gw-42")
	if byLocal == nil || byGateway == nil {
		t.Fatal("Order must resolve under both local and gateway ids")
	}
	if byLocal != byGateway {
		t.Error("Both ids must map to the same order")
	}

	// Deduplication keys on the stable id: one order, not two
	if n := len(coord.GetAllOrders()); n != 1 {
		t.Errorf("Expected 1 unique order, got %d", n)
	}
}

func TestCancelOrder_UpdatesRegistry(t *testing.T) {
	gw := newScriptedGateway(func(attempt int, order *domain.Order) (*domain.Order, error) {
		order.Status = domain.OrderStatusPending
		return order, nil
	})
	coord := NewOrderCoordinator(gw, 1, 0, nil)

	result := coord.ExecuteOrder(domain.NewOrder("VNM", domain.SideBuy, 100, domain.OrderTypeLimit))

	if !coord.CancelOrder(result.ID) {
		t.Fatal("Expected cancel to succeed")
	}
	if got := coord.GetOrder(result.ID); got.Status != domain.OrderStatusCancelled {
		t.Errorf("Expected cancelled in registry, got %s", got.Status)
	}
}

func TestSyncOrderStatus_PullsFromGateway(t *testing.T) {
	gw := newScriptedGateway(func(attempt int, order *domain.Order) (*domain.Order, error) {
		order.Status = domain.OrderStatusPending
		return order, nil
	})
	coord := NewOrderCoordinator(gw, 1, 0, nil)

	result := coord.ExecuteOrder(domain.NewOrder("VNM", domain.SideBuy, 100, domain.OrderTypeLimit))

	// Gateway-side fill happens out of band
	gw.orders[result.ID].Status = domain.OrderStatusFilled

	synced := coord.SyncOrderStatus(result.ID)
	if synced == nil || synced.Status != domain.OrderStatusFilled {
		t.Fatal("Expected synced order to be filled")
	}
	if got := coord.GetOrder(result.ID); got.Status != domain.OrderStatusFilled {
		t.Errorf("Registry not updated after sync: %s", got.Status)
	}

	if coord.SyncOrderStatus("no-such-id") != nil {
		t.Error("Expected nil for unknown order id")
	}
}

func TestCoordinator_AgainstSimulatedGateway(t *testing.T) {
	gw := NewSimulatedGateway(decimal.NewFromInt(1_000_000))
	gw.UpdatePrice("VNM", decimal.NewFromInt(1000))
	coord := NewOrderCoordinator(gw, 3, 0, nil)

	result := coord.ExecuteOrder(domain.NewOrder("VNM", domain.SideBuy, 100, domain.OrderTypeMarket))
	if result.Status != domain.OrderStatusFilled {
		t.Fatalf("Expected filled, got %s", result.Status)
	}
	if len(coord.GetAllOrders()) != 1 {
		t.Errorf("Expected 1 tracked order, got %d", len(coord.GetAllOrders()))
	}
}
