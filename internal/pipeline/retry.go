package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/model"
)

// RetryPolicy controls the retry loop for recoverable stage failures.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Delay is the wait before the second attempt.
	Delay time.Duration

	// Multiplier scales the delay after each failed attempt.
	Multiplier float64
}

// PolicyFromConfig derives the retry policy from the run configuration.
// A disabled retry collapses to a single attempt.
func PolicyFromConfig(cfg *config.Config) RetryPolicy {
	if !cfg.EnableRetry {
		return RetryPolicy{MaxAttempts: 1}
	}
	return RetryPolicy{
		MaxAttempts: cfg.MaxRetryAttempts,
		Delay:       cfg.RetryDelay,
		Multiplier:  cfg.RetryMultiplier,
	}
}

// Retry runs fn up to policy.MaxAttempts times, sleeping an exponentially
// growing delay between attempts. It returns the number of attempts made
// and the last error.
//
// Only recoverable failures are retried: a *model.PipelineError with
// Recoverable false fails fast on the first attempt, as does context
// cancellation. The original error is returned unwrapped so callers see
// the failure from the final attempt, not a retry wrapper.
func Retry(ctx context.Context, policy RetryPolicy, logger *slog.Logger, stage string, fn func() error) (int, error) {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	delay := policy.Delay
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return attempt, nil
		}

		if !retryable(lastErr) {
			return attempt, lastErr
		}
		if attempt == policy.MaxAttempts {
			break
		}

		logger.Warn("stage attempt failed, retrying",
			"stage", stage,
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"delay", delay,
			"error", lastErr,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * policy.Multiplier)
	}

	return policy.MaxAttempts, lastErr
}

// retryable reports whether the error is worth another attempt.
// Context errors never are; classified errors carry their own verdict;
// anything unclassified is treated as non-recoverable.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var perr *model.PipelineError
	if errors.As(err, &perr) {
		return perr.Recoverable
	}
	return false
}
