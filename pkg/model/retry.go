package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinex/pkg/core"
)

// retryPolicy is the shared per-request timeout and backoff loop for provider
// clients. Rate-limit and transient errors are retried with linear backoff;
// context cancellation is returned immediately.
type retryPolicy struct {
	provider   string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
}

func (p retryPolicy) normalized() retryPolicy {
	if p.timeout <= 0 {
		p.timeout = 60 * time.Second
	}
	if p.maxRetries < 0 {
		p.maxRetries = 0
	}
	if p.backoff <= 0 {
		p.backoff = 500 * time.Millisecond
	}
	return p
}

func (p retryPolicy) do(ctx context.Context, call func(ctx context.Context) (core.Response, error)) (core.Response, error) {
	p = p.normalized()

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		response, err := call(attemptCtx)
		cancel()
		if err == nil {
			return response, nil
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return core.Response{}, err
		}
		lastErr = err

		if attempt < p.maxRetries {
			select {
			case <-ctx.Done():
				return core.Response{}, ctx.Err()
			case <-time.After(p.backoff * time.Duration(attempt+1)):
			}
		}
	}

	return core.Response{}, fmt.Errorf("%s: request failed after retries: %w", p.provider, lastErr)
}
