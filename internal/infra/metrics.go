package infra

import (
	"sync/atomic"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	ordersPlaced   atomic.Uint64
	ordersFilled   atomic.Uint64
	ordersRejected atomic.Uint64
	retries        atomic.Uint64
	violations     atomic.Uint64
	episodeSteps   atomic.Uint64
	errorsTotal    atomic.Uint64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordOrderPlaced records a successfully submitted order.
func (m *Metrics) RecordOrderPlaced() {
	m.ordersPlaced.Add(1)
}

// RecordOrderFilled records a filled order.
func (m *Metrics) RecordOrderFilled() {
	m.ordersFilled.Add(1)
}

// RecordOrderRejected records an order that ended rejected.
func (m *Metrics) RecordOrderRejected() {
	m.ordersRejected.Add(1)
}

// RecordRetry records a retried order submission.
func (m *Metrics) RecordRetry() {
	m.retries.Add(1)
}

// RecordViolation records a trading rule violation.
func (m *Metrics) RecordViolation() {
	m.violations.Add(1)
}

// RecordStep records one environment step.
func (m *Metrics) RecordStep() {
	m.episodeSteps.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// Snapshot holds a point-in-time copy of all counters.
type Snapshot struct {
	OrdersPlaced   uint64
	OrdersFilled   uint64
	OrdersRejected uint64
	Retries        uint64
	Violations     uint64
	EpisodeSteps   uint64
	ErrorsTotal    uint64
}

// GetSnapshot returns a consistent-enough copy for logging and tests.
func (m *Metrics) GetSnapshot() Snapshot {
	return Snapshot{
		OrdersPlaced:   m.ordersPlaced.Load(),
		OrdersFilled:   m.ordersFilled.Load(),
		OrdersRejected: m.ordersRejected.Load(),
		Retries:        m.retries.Load(),
		Violations:     m.violations.Load(),
		EpisodeSteps:   m.episodeSteps.Load(),
		ErrorsTotal:    m.errorsTotal.Load(),
	}
}

// Reset zeroes all counters (used between episodes in tests).
func (m *Metrics) Reset() {
	m.ordersPlaced.Store(0)
	m.ordersFilled.Store(0)
	m.ordersRejected.Store(0)
	m.retries.Store(0)
	m.violations.Store(0)
	m.episodeSteps.Store(0)
	m.errorsTotal.Store(0)
}
