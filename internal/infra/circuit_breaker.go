package infra

import (
	"errors"
	"sync"
	"time"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Closed → Open → Half-Open breaker guarding an optional dependency (the Redis
// suggestion cache). While open, callers skip the dependency entirely and fall
// back to the database.

// CBState represents the current circuit breaker state.
type CBState int

const (
	CBClosed   CBState = iota // calls flow
	CBOpen                    // calls skipped
	CBHalfOpen                // one probe at a time
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned by Execute while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds tunable parameters. Zero values take defaults.
type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures to trip open (default 5)
	OpenTimeout      time.Duration // time spent open before probing (default 30s)
}

// CircuitBreaker is safe for concurrent use. A nil breaker always allows calls.
type CircuitBreaker struct {
	mu           sync.Mutex
	state        CBState
	failures     int
	openedAt     time.Time
	probing      bool
	threshold    int
	openTimeout  time.Duration
	now          func() time.Time
	onTransition func(from, to CBState)
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		threshold:   cfg.FailureThreshold,
		openTimeout: cfg.OpenTimeout,
		now:         time.Now,
	}
}

// OnTransition registers a callback invoked (under lock) on every state change.
func (cb *CircuitBreaker) OnTransition(fn func(from, to CBState)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onTransition = fn
}

func (cb *CircuitBreaker) State() CBState {
	if cb == nil {
		return CBClosed
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.advance()
	return cb.state
}

// Execute runs fn unless the breaker is open, recording its outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}
	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) allow() bool {
	if cb == nil {
		return true
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.advance()
	switch cb.state {
	case CBOpen:
		return false
	case CBHalfOpen:
		if cb.probing {
			return false
		}
		cb.probing = true
	}
	return true
}

func (cb *CircuitBreaker) record(err error) {
	if cb == nil {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.failures = 0
		if cb.state == CBHalfOpen {
			cb.probing = false
			cb.transition(CBClosed)
		}
		return
	}

	cb.failures++
	switch cb.state {
	case CBClosed:
		if cb.failures >= cb.threshold {
			cb.openedAt = cb.now()
			cb.transition(CBOpen)
		}
	case CBHalfOpen:
		cb.probing = false
		cb.openedAt = cb.now()
		cb.transition(CBOpen)
	}
}

// advance moves open → half-open once the timeout elapsed. Must hold mu.
func (cb *CircuitBreaker) advance() {
	if cb.state == CBOpen && cb.now().Sub(cb.openedAt) >= cb.openTimeout {
		cb.failures = 0
		cb.transition(CBHalfOpen)
	}
}

func (cb *CircuitBreaker) transition(to CBState) {
	from := cb.state
	cb.state = to
	if cb.onTransition != nil && from != to {
		cb.onTransition(from, to)
	}
}
