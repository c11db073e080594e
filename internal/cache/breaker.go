package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Breaker is the circuit breaker guarding the cache store. It opens on any
// retriable failure and, while open, callers must skip the network call
// entirely. After the cooldown elapses the next operation is allowed
// through; the breaker only closes again when that operation succeeds.
type Breaker struct {
	mu          sync.Mutex
	open        bool
	lastFailure time.Time
	cooldown    time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// NewBreaker creates a breaker with the given cooldown.
func NewBreaker(cooldown time.Duration, logger *slog.Logger) *Breaker {
	return &Breaker{
		cooldown: cooldown,
		now:      time.Now,
		logger:   logger,
	}
}

// Allow reports whether an operation may be attempted. It returns false only
// while the breaker is open and the cooldown has not elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open && b.now().Sub(b.lastFailure) < b.cooldown {
		b.logger.Warn("circuit breaker open, skipping operation")
		return false
	}
	return true
}

// RecordFailure opens the breaker and restarts the cooldown.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.open = true
	b.lastFailure = b.now()
	b.logger.Error("circuit breaker opened after cache failure")
}

// RecordSuccess closes the breaker if it was open.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		b.open = false
		b.logger.Info("circuit breaker closed after successful operation")
	}
}

// IsOpen reports the raw open flag, ignoring the cooldown.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}
