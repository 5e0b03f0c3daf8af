package patterns

import (
	"errors"
	"fmt"
	"time"

	"github.com/ashendes/store-dashboard/internal/metrics"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// CircuitBreakerWrapper wraps gobreaker with metrics
type CircuitBreakerWrapper struct {
	*gobreaker.CircuitBreaker
	name    string
	service string
}

// CircuitStatus is the externally visible state of a circuit breaker
type CircuitStatus struct {
	Name     string `json:"name"`
	State    string `json:"state"`
	Value    int    `json:"value"`
	Requests uint32 `json:"requests"`
	Failures uint32 `json:"total_failures"`
}

// NewCircuitBreaker creates a new circuit breaker with Prometheus metrics
func NewCircuitBreaker(name, service string) *CircuitBreakerWrapper {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // Max requests allowed in half-open state
		Interval:    15 * time.Second, // Window to track failures
		Timeout:     30 * time.Second, // Time to wait before half-open
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			// Trip if 60% or more requests fail and at least 5 requests have been made
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(cbName string, from gobreaker.State, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(service, cbName).Set(float64(stateValue(to)))

			log.WithFields(log.Fields{
				"circuit": cbName,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	metrics.CircuitBreakerState.WithLabelValues(service, name).Set(0)

	return &CircuitBreakerWrapper{
		CircuitBreaker: cb,
		name:           name,
		service:        service,
	}
}

// Execute runs a function through the circuit breaker with metrics
func (cb *CircuitBreakerWrapper) Execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cb.CircuitBreaker.Execute(fn)
	if err != nil {
		metrics.CircuitBreakerFailures.WithLabelValues(cb.service, cb.name).Inc()
	}
	return result, FormatError(cb.name, err)
}

// Status returns a snapshot of the breaker for status endpoints
func (cb *CircuitBreakerWrapper) Status() CircuitStatus {
	counts := cb.Counts()
	return CircuitStatus{
		Name:     cb.name,
		State:    cb.State().String(),
		Value:    stateValue(cb.State()),
		Requests: counts.Requests,
		Failures: counts.TotalFailures,
	}
}

func stateValue(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return -1
	}
}

// FormatError formats an error message with circuit breaker info
func FormatError(circuitName string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) {
		return fmt.Errorf("circuit breaker %s is open (service unavailable): %w", circuitName, err)
	}
	if errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("circuit breaker %s: too many requests in half-open state: %w", circuitName, err)
	}
	return err
}
