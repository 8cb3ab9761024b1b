package circuitbreaker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrOpen = errors.New("circuit breaker is open")

const defaultResetTimeout = 30 * time.Second

// Breaker is a generic, thread-safe circuit breaker.
type Breaker[T any] struct {
	maxFailures      int64
	resetTimeout     time.Duration
	halfOpenRequests int64
	onStateChange    func(from, to State)

	state           atomic.Int32
	failures        atomic.Int64
	lastFailureTime atomic.Int64 // Unix nano
	successCount    atomic.Int64
}

// Option configures a Breaker.
type Option[T any] func(*Breaker[T])

// WithResetTimeout sets how long the breaker stays open before probing again.
func WithResetTimeout[T any](d time.Duration) Option[T] {
	return func(cb *Breaker[T]) {
		if d > 0 {
			cb.resetTimeout = d
		}
	}
}

// WithHalfOpenRequests sets how many successful probes close the circuit.
func WithHalfOpenRequests[T any](n int64) Option[T] {
	return func(cb *Breaker[T]) {
		if n > 0 {
			cb.halfOpenRequests = n
		}
	}
}

// WithOnStateChange registers a callback invoked on every state transition.
// The callback must not block.
func WithOnStateChange[T any](fn func(from, to State)) Option[T] {
	return func(cb *Breaker[T]) {
		cb.onStateChange = fn
	}
}

// New creates a new generic circuit breaker.
func New[T any](maxFailures int, opts ...Option[T]) *Breaker[T] {
	cb := &Breaker[T]{
		maxFailures:      int64(maxFailures),
		resetTimeout:     defaultResetTimeout,
		halfOpenRequests: 1, // one successful probe closes the circuit
	}
	for _, opt := range opts {
		opt(cb)
	}
	cb.state.Store(int32(StateClosed))
	return cb
}

// Execute wraps a function call with the circuit breaker logic.
func (cb *Breaker[T]) Execute(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	if !cb.canExecute() {
		var zero T
		return zero, ErrOpen
	}

	result, err := fn(ctx)
	cb.recordResult(err)

	return result, err
}

// State reports the breaker's current state.
func (cb *Breaker[T]) State() State {
	return State(cb.state.Load())
}

func (cb *Breaker[T]) canExecute() bool {
	currentState := State(cb.state.Load())

	switch currentState {
	case StateClosed:
		return true
	case StateOpen:
		now := time.Now().UnixNano()
		lastFailure := cb.lastFailureTime.Load()
		if now > lastFailure+cb.resetTimeout.Nanoseconds() {
			if cb.transition(StateOpen, StateHalfOpen) {
				cb.successCount.Store(0)
			}
			return true
		}
		return false
	case StateHalfOpen:
		return cb.successCount.Load() < cb.halfOpenRequests
	default:
		return false
	}
}

func (cb *Breaker[T]) recordResult(err error) {
	now := time.Now().UnixNano()

	if err != nil {
		newFailures := cb.failures.Add(1)
		cb.lastFailureTime.Store(now)

		currentState := State(cb.state.Load())
		if currentState == StateHalfOpen || (currentState == StateClosed && newFailures >= cb.maxFailures) {
			cb.transition(currentState, StateOpen)
		}
	} else {
		currentState := State(cb.state.Load())
		if currentState == StateHalfOpen {
			newSuccesses := cb.successCount.Add(1)
			if newSuccesses >= cb.halfOpenRequests {
				if cb.transition(StateHalfOpen, StateClosed) {
					cb.failures.Store(0)
				}
			}
		} else {
			cb.failures.Store(0)
		}
	}
}

func (cb *Breaker[T]) transition(from, to State) bool {
	if !cb.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	if cb.onStateChange != nil {
		cb.onStateChange(from, to)
	}
	return true
}
