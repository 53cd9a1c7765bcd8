package ai

import (
	"log/slog"
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	// CircuitClosed indicates the circuit is allowing requests to pass through.
	CircuitClosed CircuitState = iota
	// CircuitOpen indicates the circuit is blocking requests due to failures.
	CircuitOpen
	// CircuitHalfOpen indicates the circuit is letting a probe through after the recovery timeout.
	CircuitHalfOpen
)

// Defaults applied by NewCircuitBreaker.
const (
	DefaultFailureThreshold = 3
	DefaultRecoveryTimeout  = 30 * time.Second
)

// CircuitBreaker guards one similarity backend. After failureThreshold
// consecutive failures it opens and the backend reports itself unavailable
// until recoveryTimeout has elapsed.
type CircuitBreaker struct {
	mu               sync.Mutex
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration
	now              func() time.Time

	state           CircuitState
	probing         bool
	failureCount    int
	lastFailureTime time.Time
	totalRequests   int
	totalFailures   int
}

// BreakerStats is a point-in-time snapshot of a breaker.
type BreakerStats struct {
	Name          string  `json:"name"`
	State         string  `json:"state"`
	FailureCount  int     `json:"failure_count"`
	TotalRequests int     `json:"total_requests"`
	TotalFailures int     `json:"total_failures"`
	FailureRate   float64 `json:"failure_rate"`
}

// NewCircuitBreaker creates a breaker for the named backend. Non-positive
// threshold or recovery select the defaults.
func NewCircuitBreaker(name string, threshold int, recovery time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if recovery <= 0 {
		recovery = DefaultRecoveryTimeout
	}
	return &CircuitBreaker{
		name:             name,
		failureThreshold: threshold,
		recoveryTimeout:  recovery,
		now:              time.Now,
		state:            CircuitClosed,
	}
}

// ShouldAttempt reports whether a call may go through and, when it returns
// true, the caller must report the outcome with RecordSuccess or
// RecordFailure. An open circuit whose recovery timeout has passed moves to
// half-open; a half-open circuit admits a single in-flight probe.
func (cb *CircuitBreaker) ShouldAttempt() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if !cb.recovered() {
			return false
		}
		cb.state = CircuitHalfOpen
		cb.probing = true
		slog.Info("circuit breaker half-open", slog.String("backend", cb.name))
		return true
	case CircuitHalfOpen:
		if cb.probing {
			return false
		}
		cb.probing = true
		return true
	default:
		return false
	}
}

// Ready is ShouldAttempt without side effects: it never changes state and
// never claims the half-open probe.
func (cb *CircuitBreaker) Ready() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		return cb.recovered()
	case CircuitHalfOpen:
		return !cb.probing
	default:
		return false
	}
}

func (cb *CircuitBreaker) recovered() bool {
	return cb.now().Sub(cb.lastFailureTime) > cb.recoveryTimeout
}

// RecordSuccess records a successful call and closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.totalRequests++
	cb.failureCount = 0
	cb.probing = false
	if cb.state != CircuitClosed {
		cb.state = CircuitClosed
		slog.Info("circuit breaker closed after successful recovery",
			slog.String("backend", cb.name),
			slog.Float64("failure_rate", cb.failureRate()))
	}
}

// RecordFailure records a failed call. A failed half-open probe reopens the
// circuit immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probing = false
	cb.failureCount++
	cb.totalFailures++
	cb.totalRequests++
	cb.lastFailureTime = cb.now()

	if cb.state == CircuitHalfOpen || (cb.state == CircuitClosed && cb.failureCount >= cb.failureThreshold) {
		cb.state = CircuitOpen
		slog.Warn("circuit breaker opened due to consecutive failures",
			slog.String("backend", cb.name),
			slog.Int("failure_count", cb.failureCount),
			slog.Int("threshold", cb.failureThreshold),
			slog.Float64("failure_rate", cb.failureRate()))
	}
}

// GetState returns the current circuit state
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns a snapshot of the breaker counters.
func (cb *CircuitBreaker) Stats() BreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return BreakerStats{
		Name:          cb.name,
		State:         cb.state.String(),
		FailureCount:  cb.failureCount,
		TotalRequests: cb.totalRequests,
		TotalFailures: cb.totalFailures,
		FailureRate:   cb.failureRate(),
	}
}

// failureRate expects cb.mu to be held.
func (cb *CircuitBreaker) failureRate() float64 {
	if cb.totalRequests == 0 {
		return 0.0
	}
	return float64(cb.totalFailures) / float64(cb.totalRequests)
}

// String returns a string representation of the circuit state
func (cs CircuitState) String() string {
	switch cs {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
