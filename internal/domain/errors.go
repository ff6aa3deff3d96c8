package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// GatewayError represents a transient gateway submission failure.
// The order coordinator retries these within its retry budget.
type GatewayError struct {
	Op        string // Operation that failed (e.g., "place_order", "cancel_order")
	Err       error  // Underlying error
	Retriable bool
}

func (e *GatewayError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *GatewayError) IsRetriable() bool {
	return e.Retriable
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError creates a retriable gateway error
func NewGatewayError(op string, err error) *GatewayError {
	return &GatewayError{Op: op, Err: err, Retriable: true}
}

// NewFatalGatewayError creates a non-retriable gateway error
func NewFatalGatewayError(op string, err error) *GatewayError {
	return &GatewayError{Op: op, Err: err, Retriable: false}
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrUnknownViolation is returned when the reward engine is asked to
	// penalize an unrecognized violation kind. This is a programming error
	// and intentionally fails loudly rather than being swallowed.
	ErrUnknownViolation = errors.New("unknown violation kind")

	// ErrPriceUnavailable is returned by a price source when no quote
	// exists for a symbol. Callers skip the symbol and continue.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrOrderNotFound is returned when an order id is not tracked
	ErrOrderNotFound = errors.New("order not found")

	// ErrNotLoggedIn is returned when gateway calls precede authentication
	ErrNotLoggedIn = errors.New("gateway not logged in")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)
