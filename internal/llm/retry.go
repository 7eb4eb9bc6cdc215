package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultMaxAttempts is the total number of attempts per call.
	DefaultMaxAttempts = 5
	// DefaultInitialDelay is the backoff after the first failed attempt.
	DefaultInitialDelay = time.Second
)

// ExhaustedError is returned when every attempt of a call failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("max retries reached after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryClient retries failed calls of the wrapped client with exponential
// backoff: after failed attempt k it waits initialDelay * 2^k. No wait follows
// the last attempt.
type RetryClient struct {
	next         Client
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	sleep        SleepFunc
	logger       *slog.Logger
}

// RetryOption configures a RetryClient.
type RetryOption func(*RetryClient)

// WithMaxAttempts sets the total number of attempts per call.
func WithMaxAttempts(n int) RetryOption {
	return func(r *RetryClient) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithInitialDelay sets the delay after the first failed attempt.
func WithInitialDelay(d time.Duration) RetryOption {
	return func(r *RetryClient) {
		if d >= 0 {
			r.initialDelay = d
		}
	}
}

// WithMaxDelay caps a single backoff delay. Zero means no cap.
func WithMaxDelay(d time.Duration) RetryOption {
	return func(r *RetryClient) {
		r.maxDelay = d
	}
}

// WithSleepFunc replaces the function used to wait between attempts.
func WithSleepFunc(fn SleepFunc) RetryOption {
	return func(r *RetryClient) {
		r.sleep = fn
	}
}

// WithLogger sets the logger used to report failed attempts.
func WithLogger(l *slog.Logger) RetryOption {
	return func(r *RetryClient) {
		r.logger = l
	}
}

// NewRetryClient wraps next with the retry policy.
func NewRetryClient(next Client, opts ...RetryOption) *RetryClient {
	r := &RetryClient{
		next:         next,
		maxAttempts:  DefaultMaxAttempts,
		initialDelay: DefaultInitialDelay,
		sleep:        sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// ChatCompletion calls the wrapped client until an attempt succeeds or the
// attempt budget is spent.
func (r *RetryClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		resp, err := r.next.ChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		r.logger.Warn("API call failed",
			"attempt", attempt+1,
			"max_attempts", r.maxAttempts,
			"error", err,
		)

		if attempt == r.maxAttempts-1 {
			break
		}
		if err := r.sleep(ctx, r.Backoff(attempt)); err != nil {
			return nil, fmt.Errorf("retry wait interrupted: %w", err)
		}
	}

	r.logger.Error("max retries reached, failing", "attempts", r.maxAttempts, "error", lastErr)
	return nil, &ExhaustedError{Attempts: r.maxAttempts, Err: lastErr}
}

// Backoff returns the delay after the given 0-based failed attempt.
func (r *RetryClient) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		return 0
	}
	// Shifting past 62 bits overflows int64.
	if attempt >= 63 {
		return r.capDelay(time.Duration(1<<62 - 1))
	}
	delay := time.Duration(int64(1)<<uint(attempt)) * r.initialDelay
	if delay < 0 {
		delay = time.Duration(1<<62 - 1)
	}
	return r.capDelay(delay)
}

func (r *RetryClient) capDelay(d time.Duration) time.Duration {
	if r.maxDelay > 0 && d > r.maxDelay {
		return r.maxDelay
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
