package infra

import (
	"log/slog"
	"sync"
	"time"
)

const (
	breakerClosed = iota // normal operation
	breakerOpen          // failing fast
	breakerProbing       // cooled down, testing recovery
)

// BreakerOptions tunes a Breaker. Zero values fall back to defaults
// sized for the persistence-service clients: a 10s poll cycle recovers
// within three cycles of the service coming back.
type BreakerOptions struct {
	// FailureLimit is the consecutive-failure count that opens the breaker.
	FailureLimit int
	// ProbeSuccesses is how many successful probes close it again.
	ProbeSuccesses int
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
}

func (o *BreakerOptions) fill() {
	if o.FailureLimit <= 0 {
		o.FailureLimit = 5
	}
	if o.ProbeSuccesses <= 0 {
		o.ProbeSuccesses = 2
	}
	if o.Cooldown <= 0 {
		o.Cooldown = 30 * time.Second
	}
}

// Breaker fails calls fast while a downstream service is unhealthy, so a
// dead dependency costs one rejected call per cycle instead of a hung
// request. Safe for concurrent use.
type Breaker struct {
	name string
	opts BreakerOptions
	now  func() time.Time // injectable for tests

	mu       sync.Mutex
	state    int
	fails    int
	probeOKs int
	openedAt time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(name string, opts BreakerOptions) *Breaker {
	opts.fill()
	return &Breaker{name: name, opts: opts, now: time.Now}
}

// Allow reports whether a call may proceed. An open breaker that has
// cooled down moves to probing and lets the call through.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerOpen {
		if b.now().Sub(b.openedAt) <= b.opts.Cooldown {
			return false
		}
		b.state = breakerProbing
		b.probeOKs = 0
		slog.Info("Breaker probing downstream", "breaker", b.name)
	}
	return true
}

// RecordSuccess feeds a successful call back into the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		b.fails = 0
	case breakerProbing:
		b.probeOKs++
		if b.probeOKs >= b.opts.ProbeSuccesses {
			b.state = breakerClosed
			b.fails = 0
			slog.Info("Breaker closed, downstream recovered", "breaker", b.name)
		}
	}
}

// RecordFailure feeds a failed call back into the breaker. A failure
// during probing reopens immediately.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		b.fails++
		if b.fails >= b.opts.FailureLimit {
			b.trip()
		}
	case breakerProbing:
		b.trip()
	}
}

func (b *Breaker) trip() {
	b.state = breakerOpen
	b.openedAt = b.now()
	slog.Warn("Breaker open, failing fast",
		"breaker", b.name, "fails", b.fails, "cooldown", b.opts.Cooldown)
}

// State returns the current state for logging and monitoring.
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case breakerOpen:
		return "open"
	case breakerProbing:
		return "probing"
	default:
		return "closed"
	}
}
