package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Guards calls to a notification provider. After FailureThreshold consecutive
// failures the breaker opens and every send fails fast with ErrCircuitOpen.
// Once OpenTimeout has passed a single probe is let through; SuccessThreshold
// successful probes close it again, one failed probe re-opens it.

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
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

// ErrCircuitOpen is returned by Execute while the provider is considered down.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	// Name tags state-change logs, e.g. "whatsapp".
	Name             string
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

// DefaultCBConfig is the WhatsApp Cloud API breaker: 5 failures trip it for a
// minute, 2 good probes close it.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "whatsapp",
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      time.Minute,
	}
}

// CBStats is a point-in-time view of a breaker, reported by /health.
type CBStats struct {
	State    string     `json:"state"`
	Failures int        `json:"consecutive_failures"`
	OpenedAt *time.Time `json:"opened_at,omitempty"`
}

type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     CBState
	failures  int
	successes int
	openedAt  time.Time
	probing   bool
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	d := DefaultCBConfig()
	if cfg.Name == "" {
		cfg.Name = d.Name
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = d.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = d.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = d.OpenTimeout
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now, state: CBClosed}
}

func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.expireOpen()
	return cb.state
}

func (cb *CircuitBreaker) Stats() CBStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.expireOpen()
	s := CBStats{State: cb.state.String(), Failures: cb.failures}
	if cb.state != CBClosed {
		at := cb.openedAt
		s.OpenedAt = &at
	}
	return s
}

// Execute runs fn unless the breaker is open. While half-open only one probe
// runs at a time; concurrent callers get ErrCircuitOpen.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.expireOpen()
	switch cb.state {
	case CBOpen:
		return ErrCircuitOpen
	case CBHalfOpen:
		if cb.probing {
			return ErrCircuitOpen
		}
		cb.probing = true
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probing = false

	if err != nil {
		cb.failures++
		switch {
		case cb.state == CBHalfOpen:
			cb.transition(CBOpen, err)
		case cb.state == CBClosed && cb.failures >= cb.cfg.FailureThreshold:
			cb.transition(CBOpen, err)
		}
		return
	}

	switch cb.state {
	case CBClosed:
		cb.failures = 0
	case CBHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.transition(CBClosed, nil)
		}
	}
}

// expireOpen moves open to half-open once OpenTimeout elapsed. Caller holds mu.
func (cb *CircuitBreaker) expireOpen() {
	if cb.state == CBOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.transition(CBHalfOpen, nil)
	}
}

// transition changes state and resets the counters. Caller holds mu.
func (cb *CircuitBreaker) transition(to CBState, cause error) {
	from := cb.state
	cb.state = to
	cb.successes = 0
	switch to {
	case CBOpen:
		cb.openedAt = cb.now()
	case CBClosed:
		cb.failures = 0
	}

	ev := log.Info()
	if to == CBOpen {
		ev = log.Warn().AnErr("cause", cause).Int("failures", cb.failures)
	}
	ev.Str("breaker", cb.cfg.Name).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("circuit breaker state change")
}
