package ratelimit

import (
	"context"
	"time"
)

const (
	// DefaultMaxAttempts is the number of submissions allowed per window
	DefaultMaxAttempts = 5
	// DefaultWindow is the fixed window length
	DefaultWindow = 15 * time.Minute
)

// Decision is the result of one Allow call
type Decision struct {
	Allowed bool
	Count   int
	ResetAt time.Time
}

// RetryAfter returns how long until the window resets, never negative
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.ResetAt.Before(now) {
		return 0
	}
	return d.ResetAt.Sub(now)
}

// Limiter decides whether a client may submit now, counting the attempt if so.
//
// Semantics are a fixed window: the first request (or the first after the
// window expires) starts a window with count 1. Within a window a request is
// denied once count reaches the limit, otherwise count is incremented.
// Denied requests do not change the count. Implementations must make the
// check-and-increment atomic per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Policy holds the fixed-window parameters
type Policy struct {
	MaxAttempts int
	Window      time.Duration
}

// DefaultPolicy is 5 attempts per 15 minutes
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Window: DefaultWindow}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Window <= 0 {
		p.Window = DefaultWindow
	}
	return p
}
