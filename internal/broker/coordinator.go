package broker

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vnquant/internal/domain"
	"vnquant/internal/infra"
)

// OrderCoordinator routes orders through any gateway implementation
// with bounded retries and keeps a local registry so callers can track
// every order regardless of gateway state.
//
// Retries recover from transient submission failures only; any
// non-rejected gateway result (a pending unmet limit order included)
// is accepted immediately.
type OrderCoordinator struct {
	gateway    domain.ExecutionGateway
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger

	// registry keys on the coordinator-assigned canonical id. aliases
	// maps gateway-assigned ids onto canonical ids when they differ.
	registry map[string]*domain.Order
	aliases  map[string]string
}

// NewOrderCoordinator wraps a gateway with retry and tracking logic.
func NewOrderCoordinator(gateway domain.ExecutionGateway, maxRetries int, retryDelay time.Duration, logger *slog.Logger) *OrderCoordinator {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderCoordinator{
		gateway:    gateway,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     logger,
		registry:   make(map[string]*domain.Order),
		aliases:    make(map[string]string),
	}
}

// ExecuteOrder submits an order with retry logic. The coordinator
// assigns the canonical id once, before the gateway can overwrite it.
// After exhausting retries the order is forced to rejected.
func (c *OrderCoordinator) ExecuteOrder(order *domain.Order) *domain.Order {
	localID := order.ID
	if localID == "" {
		localID = uuid.NewString()
		order.ID = localID
	}
	c.registry[localID] = order

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		result, err := c.gateway.PlaceOrder(order)
		if err != nil {
			infra.GlobalMetrics.RecordRetry()
			c.logger.Warn("order submission failed",
				slog.String("order_id", localID),
				slog.Int("attempt", attempt),
				slog.Any("error", err))
		} else {
			gatewayID := result.ID
			if gatewayID == "" {
				gatewayID = localID
				result.ID = localID
			}
			if gatewayID != localID {
				// The gateway insisted on its own id; both resolve to
				// the same registry entry.
				c.aliases[gatewayID] = localID
			}
			c.registry[localID] = result

			if result.Status != domain.OrderStatusRejected {
				c.logger.Info("order placed",
					slog.String("order_id", gatewayID),
					slog.String("status", string(result.Status)),
					slog.Int("attempt", attempt))
				infra.GlobalMetrics.RecordOrderPlaced()
				if result.Status == domain.OrderStatusFilled {
					infra.GlobalMetrics.RecordOrderFilled()
				}
				return result
			}
		}

		if attempt < c.maxRetries {
			time.Sleep(c.retryDelay)
		}
	}

	order.Status = domain.OrderStatusRejected
	c.registry[localID] = order
	infra.GlobalMetrics.RecordOrderRejected()
	c.logger.Error("order rejected after retries",
		slog.String("order_id", localID),
		slog.Int("attempts", c.maxRetries))
	return order
}

// CancelOrder cancels an order via the gateway and updates the registry.
func (c *OrderCoordinator) CancelOrder(orderID string) bool {
	ok := c.gateway.CancelOrder(orderID)
	if ok {
		if order := c.lookup(orderID); order != nil {
			order.Status = domain.OrderStatusCancelled
		}
	}
	return ok
}

// GetOrder retrieves a tracked order by canonical or gateway id.
func (c *OrderCoordinator) GetOrder(orderID string) *domain.Order {
	return c.lookup(orderID)
}

// GetAllOrders returns every tracked order exactly once, keyed on the
// order's stable id.
func (c *OrderCoordinator) GetAllOrders() []*domain.Order {
	result := make([]*domain.Order, 0, len(c.registry))
	for _, order := range c.registry {
		result = append(result, order)
	}
	return result
}

// GetOpenOrders returns tracked orders that are pending or partially filled.
func (c *OrderCoordinator) GetOpenOrders() []*domain.Order {
	result := make([]*domain.Order, 0)
	for _, order := range c.registry {
		if order.IsOpen() {
			result = append(result, order)
		}
	}
	return result
}

// GetFilledOrders returns tracked orders with filled status.
func (c *OrderCoordinator) GetFilledOrders() []*domain.Order {
	result := make([]*domain.Order, 0)
	for _, order := range c.registry {
		if order.Status == domain.OrderStatusFilled {
			result = append(result, order)
		}
	}
	return result
}

// SyncOrderStatus pulls fresh status from the gateway and updates the
// registry. Returns nil if the gateway does not know the order.
func (c *OrderCoordinator) SyncOrderStatus(orderID string) *domain.Order {
	fresh := c.gateway.GetOrderStatus(orderID)
	if fresh == nil {
		return nil
	}
	key := c.canonical(orderID)
	if _, tracked := c.registry[key]; tracked {
		c.registry[key] = fresh
	}
	return fresh
}

func (c *OrderCoordinator) canonical(orderID string) string {
	if local, ok := c.aliases[orderID]; ok {
		return local
	}
	return orderID
}

func (c *OrderCoordinator) lookup(orderID string) *domain.Order {
	return c.registry[c.canonical(orderID)]
}
