package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/amishk599/jobapplicator/internal/model"
)

// Policy describes an exponential backoff: the wait before retry n is
// Multiplier * 2^(n-1) clamped to [MinDelay, MaxDelay], then jittered.
type Policy struct {
	MaxAttempts int           // total attempts including the first
	Multiplier  time.Duration // base unit of the exponential
	MinDelay    time.Duration
	MaxDelay    time.Duration
	Jitter      float64 // fraction, e.g. 0.3 for ±30%
}

// ScrapePolicy is used for board page fetches.
var ScrapePolicy = Policy{
	MaxAttempts: 3,
	Multiplier:  time.Second,
	MinDelay:    2 * time.Second,
	MaxDelay:    20 * time.Second,
}

// OpenAIPolicy is used for embedding and completion calls.
var OpenAIPolicy = Policy{
	MaxAttempts: 4,
	Multiplier:  2 * time.Second,
	MinDelay:    4 * time.Second,
	MaxDelay:    60 * time.Second,
}

// Do runs fn until it succeeds, returns a non-retryable error, or the policy
// runs out of attempts. op names the operation in log lines.
func Do[T any](ctx context.Context, p Policy, logger *slog.Logger, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := p.Backoff(attempt-1, lastErr)
			if logger != nil {
				logger.Warn("retrying after transient error",
					"op", op,
					"attempt", attempt-1,
					"max_retries", attempts-1,
					"delay", delay,
					"error", lastErr,
				)
			}
			select {
			case <-ctx.Done():
				return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !IsRetryable(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}

// Backoff computes the delay before the given retry (1-based).
// A Retry-After carried by an HTTPError takes precedence.
func (p Policy) Backoff(retry int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := p.Multiplier
	for i := 1; i < retry; i++ {
		delay *= 2
	}
	if delay < p.MinDelay {
		delay = p.MinDelay
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	if p.Jitter > 0 {
		jitter := float64(delay) * p.Jitter
		delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
	}
	return delay
}

// IsRetryable returns true if the error represents a transient failure worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation: never retry.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 {
			return true
		}
		if httpErr.StatusCode >= 500 {
			return true
		}
		return false
	}

	// Non-HTTP errors (network, DNS) are retryable.
	return true
}

// RetryFetcher is a decorator that retries transient board failures before
// delegating to the wrapped JobFetcher.
type RetryFetcher struct {
	inner  model.JobFetcher
	policy Policy
	board  string
	logger *slog.Logger
}

// NewRetryFetcher wraps a JobFetcher with retry logic.
func NewRetryFetcher(inner model.JobFetcher, board string, policy Policy, logger *slog.Logger) *RetryFetcher {
	return &RetryFetcher{
		inner:  inner,
		policy: policy,
		board:  board,
		logger: logger,
	}
}

// FetchJobs attempts to fetch jobs, retrying on transient errors.
func (f *RetryFetcher) FetchJobs(ctx context.Context) ([]model.Job, error) {
	return Do(ctx, f.policy, f.logger, "fetch "+f.board, f.inner.FetchJobs)
}
