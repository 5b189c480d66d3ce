// Package resilience implements the circuit breaker, retrier, error
// classifier, LRU/TTL cache and graceful-shutdown registry described in
// spec §4.8. It is depended on by every other layer.
package resilience

import (
	"context"
	"sync"
	"time"

	"anamnesis/internal/anaerr"
	"anamnesis/internal/logging"
)

// State is one of the three circuit breaker states.
type State string

const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF_OPEN"
)

// BreakerConfig configures a CircuitBreaker.
type BreakerConfig struct {
	FailureThreshold  int
	RecoveryTimeout   time.Duration
	RequestTimeout    time.Duration
	MonitoringWindow  time.Duration
}

// DefaultBreakerConfig mirrors spec §4.8's defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		RequestTimeout:   30 * time.Second,
		MonitoringWindow: 300 * time.Second,
	}
}

// Stats tracks breaker usage for observability and for CircuitBreakerError.
type Stats struct {
	TotalRequests int64
	Successes     int64
	Failures      int64
	Transitions   int64
}

// SuccessRate returns successes/total, or 0 when there have been no calls.
func (s Stats) SuccessRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.TotalRequests)
}

// CircuitBreaker guards a possibly-failing operation behind a three-state
// gate, per spec §4.8.
type CircuitBreaker struct {
	name   string
	cfg    BreakerConfig
	mu     sync.Mutex
	state  State
	fails  int
	stats  Stats
	openedAt time.Time
}

// NewCircuitBreaker constructs a breaker in the CLOSED state.
func NewCircuitBreaker(name string, cfg BreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{name: name, cfg: cfg, state: StateClosed}
}

// State returns the current state.
func (b *CircuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns a snapshot of usage counters.
func (b *CircuitBreaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// allow decides whether a call may proceed, transitioning OPEN->HALF_OPEN
// when the recovery timeout has elapsed.
func (b *CircuitBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(b.openedAt) >= b.cfg.RecoveryTimeout {
			b.state = StateHalfOpen
			b.stats.Transitions++
			logging.Get(logging.CategoryResilience).Info("breaker %s: OPEN -> HALF_OPEN", b.name)
			return true
		}
		return false
	case StateHalfOpen:
		// Only one probe call is allowed through at a time in the textbook
		// design; a single-threaded caller pattern is assumed here, matching
		// the synchronous service callers described in spec §5.
		return true
	default:
		return true
	}
}

func (b *CircuitBreaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Successes++
	switch b.state {
	case StateHalfOpen:
		b.state = StateClosed
		b.fails = 0
		b.stats.Transitions++
		logging.Get(logging.CategoryResilience).Info("breaker %s: HALF_OPEN -> CLOSED", b.name)
	case StateClosed:
		b.fails = 0
	}
}

func (b *CircuitBreaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Failures++
	switch b.state {
	case StateHalfOpen:
		b.state = StateOpen
		b.openedAt = time.Now()
		b.stats.Transitions++
		logging.Get(logging.CategoryResilience).Warn("breaker %s: HALF_OPEN -> OPEN", b.name)
	case StateClosed:
		b.fails++
		if b.fails >= b.cfg.FailureThreshold {
			b.state = StateOpen
			b.openedAt = time.Now()
			b.stats.Transitions++
			logging.Get(logging.CategoryResilience).Warn("breaker %s: CLOSED -> OPEN after %d failures", b.name, b.fails)
		}
	}
}

// Operation is the primary call guarded by the breaker.
type Operation func(ctx context.Context) (any, error)

// Execute runs op through the breaker. If op fails, or the breaker rejects
// the call outright, fallback (if non-nil) is invoked and its result
// returned instead of the error.
func (b *CircuitBreaker) Execute(ctx context.Context, op Operation, fallback Operation) (any, error) {
	b.mu.Lock()
	b.stats.TotalRequests++
	b.mu.Unlock()

	if !b.allow() {
		err := &anaerr.CircuitBreakerError{
			State:       string(b.State()),
			Failures:    b.fails,
			SuccessRate: b.Stats().SuccessRate(),
		}
		if fallback != nil {
			return fallback(ctx)
		}
		return nil, err
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if b.cfg.RequestTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, b.cfg.RequestTimeout)
		defer cancel()
	}

	result, err := op(callCtx)
	if err != nil {
		b.onFailure()
		if fallback != nil {
			return fallback(ctx)
		}
		return nil, err
	}
	b.onSuccess()
	return result, nil
}
