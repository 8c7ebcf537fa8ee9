package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
)

const backendMemory = "memory"

// MemoryLimiter keeps RateLimitRecords in a go-cache store. Entries expire
// one window after they are created and the go-cache janitor sweeps them, so
// the map does not grow without bound.
type MemoryLimiter struct {
	policy Policy
	now    func() time.Time
	store  *gocache.Cache
	mu     sync.Mutex
}

// MemoryOption configures a MemoryLimiter
type MemoryOption func(*MemoryLimiter)

// WithClock overrides the time source used for window decisions
func WithClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) {
		l.now = now
	}
}

// NewMemoryLimiter creates an in-process limiter. sweepInterval controls how
// often expired records are removed; zero disables the sweep.
func NewMemoryLimiter(policy Policy, sweepInterval time.Duration, opts ...MemoryOption) *MemoryLimiter {
	policy = policy.normalized()
	l := &MemoryLimiter{
		policy: policy,
		now:    time.Now,
		store:  gocache.New(policy.Window, sweepInterval),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow implements Limiter
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	var record *models.RateLimitRecord
	if cached, found := l.store.Get(key); found {
		record, _ = cached.(*models.RateLimitRecord)
	}

	if record == nil || now.After(record.ResetAt) {
		record = &models.RateLimitRecord{Count: 1, ResetAt: now.Add(l.policy.Window)}
		l.store.Set(key, record, l.policy.Window)
		metrics.RateLimitDecisions.WithLabelValues(backendMemory, "allowed").Inc()
		metrics.RateLimitTrackedKeys.Set(float64(l.store.ItemCount()))
		return Decision{Allowed: true, Count: record.Count, ResetAt: record.ResetAt}, nil
	}

	if record.Count >= l.policy.MaxAttempts {
		metrics.RateLimitDecisions.WithLabelValues(backendMemory, "denied").Inc()
		return Decision{Allowed: false, Count: record.Count, ResetAt: record.ResetAt}, nil
	}

	record.Count++
	metrics.RateLimitDecisions.WithLabelValues(backendMemory, "allowed").Inc()
	return Decision{Allowed: true, Count: record.Count, ResetAt: record.ResetAt}, nil
}

// Record returns a copy of the current record for key
func (l *MemoryLimiter) Record(key string) (models.RateLimitRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cached, found := l.store.Get(key)
	if !found {
		return models.RateLimitRecord{}, false
	}
	record, ok := cached.(*models.RateLimitRecord)
	if !ok {
		return models.RateLimitRecord{}, false
	}
	return *record, true
}

// Sweep removes expired records immediately
func (l *MemoryLimiter) Sweep() {
	l.store.DeleteExpired()
	metrics.RateLimitTrackedKeys.Set(float64(l.store.ItemCount()))
}

// Len returns the number of tracked client identifiers, including expired
// records the janitor has not removed yet
func (l *MemoryLimiter) Len() int {
	return l.store.ItemCount()
}
