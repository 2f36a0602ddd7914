package core

import (
	"context"
	"errors"
	"sync"
	"time"
)

// RateLimiter throttles provider calls across extraction workers.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Limiter is a token bucket replenished at a fixed rate. Tokens accumulate
// lazily on each Wait, so an idle limiter costs nothing.
type Limiter struct {
	mu     sync.Mutex
	rps    float64
	burst  float64
	tokens float64
	last   time.Time
}

func NewRateLimiter(rps float64, burst int) (*Limiter, error) {
	if rps <= 0 {
		return nil, errors.New("rate limiter: rps must be > 0")
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		rps:    rps,
		burst:  float64(burst),
		tokens: float64(burst),
		last:   time.Now(),
	}, nil
}

// Wait blocks until a token is available or the context ends.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()
		l.tokens += now.Sub(l.last).Seconds() * l.rps
		if l.tokens > l.burst {
			l.tokens = l.burst
		}
		l.last = now
		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - l.tokens) / l.rps * float64(time.Second))
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
