package llm

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// LimitedClient gates calls to the wrapped client. It caps the number of
// requests in flight and, optionally, the request rate.
type LimitedClient struct {
	next    Client
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// LimitOption configures a LimitedClient.
type LimitOption func(*LimitedClient)

// WithMaxInFlight caps concurrent requests. Zero or less means unbounded.
func WithMaxInFlight(n int) LimitOption {
	return func(l *LimitedClient) {
		if n > 0 {
			l.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithRateLimit allows at most requestsPerSecond requests per second with
// the given burst. Non-positive values disable rate limiting.
func WithRateLimit(requestsPerSecond float64, burst int) LimitOption {
	return func(l *LimitedClient) {
		if requestsPerSecond > 0 {
			if burst <= 0 {
				burst = 1
			}
			l.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
		}
	}
}

// NewLimitedClient wraps next with the given limits.
func NewLimitedClient(next Client, opts ...LimitOption) *LimitedClient {
	l := &LimitedClient{next: next}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ChatCompletion waits for a free slot and rate budget, then calls the
// wrapped client.
func (l *LimitedClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if l.sem != nil {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("waiting for request slot: %w", err)
		}
		defer l.sem.Release(1)
	}
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}
	return l.next.ChatCompletion(ctx, req)
}
