package qreg

import (
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

/*
CircuitState represents the operational mode of the circuit breaker.
*/
type CircuitState int

const (
	CircuitClosed   CircuitState = iota // Normal operation
	CircuitOpen                         // Operations are echoed, not applied
	CircuitHalfOpen                     // Probationary, a few operations are let through
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	}
	return "unknown"
}

/*
CircuitBreaker implements both the circuit breaker pattern and the Regulator
interface. The orchestrator reports every operation that ended in a
recovered internal fault as a failure; once maxFailures consecutive faults
have been seen the breaker opens and operations are answered with the
reconciled register until resetTimeout has passed.

The circuit breaker operates in three states:
  - Closed: all operations are applied
  - Open: no operation is applied
  - Half-Open: up to halfOpenMax operations probe whether the fault has cleared
*/
type CircuitBreaker struct {
	mu               sync.Mutex
	maxFailures      int           // Maximum failures before opening circuit
	resetTimeout     time.Duration // Time to wait before attempting recovery
	halfOpenMax      int           // Maximum requests allowed in half-open state
	failureCount     int           // Current count of consecutive failures
	state            CircuitState  // Current state of the circuit breaker
	openTime         time.Time     // Time when circuit was opened
	halfOpenAttempts int           // Number of attempts made in half-open state
	metrics          *Metrics
}

/*
NewCircuitBreaker creates a new circuit breaker in the closed state.

Parameters:
  - maxFailures: Number of consecutive faults allowed before opening the circuit
  - resetTimeout: Duration to wait before probing an open circuit
  - halfOpenMax: Number of successful probes needed to close it again
*/
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, halfOpenMax int) *CircuitBreaker {
	if halfOpenMax <= 0 {
		halfOpenMax = 1
	}
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		halfOpenMax:  halfOpenMax,
		state:        CircuitClosed,
	}
}

// Observe keeps a handle on the metrics so state changes are published.
func (cb *CircuitBreaker) Observe(metrics *Metrics) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.metrics = metrics
	cb.publish()
}

// Limit implements the Regulator interface.
func (cb *CircuitBreaker) Limit() bool {
	return !cb.Allow()
}

/*
Renormalize moves an open circuit to half-open once the reset timeout has
passed.
*/
func (cb *CircuitBreaker) Renormalize() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && time.Since(cb.openTime) > cb.resetTimeout {
		cb.transition(CircuitHalfOpen)
	}
}

/*
RecordFailure counts a fault. A failed probe in half-open state reopens the
circuit immediately.
*/
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++

	switch cb.state {
	case CircuitHalfOpen:
		cb.openTime = time.Now()
		cb.transition(CircuitOpen)
	case CircuitClosed:
		if cb.maxFailures > 0 && cb.failureCount >= cb.maxFailures {
			cb.openTime = time.Now()
			cb.transition(CircuitOpen)
		}
	}
}

/*
RecordSuccess closes a half-open circuit after enough successful probes and
resets the failure count in closed state.
*/
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitHalfOpen:
		cb.halfOpenAttempts++
		if cb.halfOpenAttempts >= cb.halfOpenMax {
			cb.failureCount = 0
			cb.transition(CircuitClosed)
		}
	case CircuitClosed:
		cb.failureCount = 0
	}
}

// Allow reports whether the next operation may be applied.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Since(cb.openTime) > cb.resetTimeout {
			cb.transition(CircuitHalfOpen)
			return true
		}
		return false
	case CircuitHalfOpen:
		return cb.halfOpenAttempts < cb.halfOpenMax
	default:
		return false
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Caller holds cb.mu.
func (cb *CircuitBreaker) transition(to CircuitState) {
	if cb.state == to {
		return
	}
	errnie.Warn("CircuitBreaker - %s -> %s", cb.state, to)
	cb.state = to
	if to == CircuitHalfOpen {
		cb.halfOpenAttempts = 0
	}
	cb.publish()
}

// Caller holds cb.mu.
func (cb *CircuitBreaker) publish() {
	if cb.metrics != nil {
		cb.metrics.SetBreakerState(cb.state)
	}
}
