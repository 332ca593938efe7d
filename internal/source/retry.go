package source

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/utils"
)

const (
	defaultMaxAttempts = 2
	defaultCooldown    = 30 * time.Second
)

// RetryPolicy is the single retry/backoff policy shared by every adapter
// call site. A rate-limited request is retried once after a fixed cooldown;
// a second 429 is surfaced to the caller so the fetch loop can abandon the
// source for this batch.
type RetryPolicy struct {
	MaxAttempts int
	Cooldown    time.Duration

	logger *zap.Logger
	wait   func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy returns a policy with the given bounds. Zero values fall
// back to one retry with a 30s cooldown.
func NewRetryPolicy(maxAttempts int, cooldown time.Duration, logger *zap.Logger) *RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &RetryPolicy{
		MaxAttempts: maxAttempts,
		Cooldown:    cooldown,
		logger:      logger,
		wait:        utils.WaitFor,
	}
}

// Retryable reports whether an error is worth another attempt.
func (p *RetryPolicy) Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// Do runs fn up to MaxAttempts times, cooling down between attempts on
// retryable errors. Non-retryable errors are returned immediately.
func (p *RetryPolicy) Do(ctx context.Context, adapter string, fn func() ([]RawPosting, error)) ([]RawPosting, error) {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		postings, err := fn()
		if err == nil {
			return postings, nil
		}

		lastErr = err
		if !p.Retryable(err) {
			return nil, err
		}
		if attempt == p.MaxAttempts {
			break
		}

		if p.logger != nil {
			p.logger.Warn("source rate limited, cooling down",
				zap.String("source", adapter),
				zap.Duration("cooldown", p.Cooldown),
				zap.Int("attempt", attempt),
			)
		}
		if err := p.wait(ctx, p.Cooldown); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}
