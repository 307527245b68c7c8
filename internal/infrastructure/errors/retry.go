package errors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"deskbridge/internal/infrastructure/logging"
)

// RetryConfig holds configuration for retry logic
type RetryConfig struct {
	MaxAttempts     int           // total attempts including the first
	InitialDelay    time.Duration // delay before the second attempt
	MaxDelay        time.Duration // upper bound on any delay
	BackoffFactor   float64       // exponential backoff factor
	Jitter          bool          // add up to 25% random delay
	RetryableErrors []ErrorCode   // codes worth retrying
	Logger          logging.Logger
}

// DefaultRetryConfig retries SQLite busy and connection failures briefly
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
		RetryableErrors: []ErrorCode{
			ErrCodeBusy,
			ErrCodeConnection,
			ErrCodeTimeout,
		},
	}
}

// RetryableOperation represents an operation that can be retried
type RetryableOperation func() error

// WithRetry executes an operation with retry logic
func WithRetry(ctx context.Context, config *RetryConfig, operation RetryableOperation) error {
	return WithRetryContext(ctx, config, operation, "")
}

// WithRetryContext executes operation until it succeeds, fails with a
// non-retryable error, runs out of attempts, or ctx ends.
func WithRetryContext(ctx context.Context, config *RetryConfig, operation RetryableOperation, operationName string) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if operationName == "" {
		operationName = "repository operation"
	}
	attempts := max(config.MaxAttempts, 1)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 0 {
				config.debug("Operation succeeded after retry", "operation", operationName, "attempts", attempt+1)
			}
			return nil
		}
		lastErr = err

		if !shouldRetry(err, config) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		delay := calculateDelay(attempt, config)
		config.debug("Operation failed, retrying",
			"operation", operationName,
			"attempt", attempt+1,
			"max_attempts", attempts,
			"delay", delay.String(),
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s cancelled during retry: %w", operationName, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, lastErr)
}

func (c *RetryConfig) debug(msg string, fields ...interface{}) {
	if c.Logger != nil {
		c.Logger.Debug(msg, fields...)
	}
}

// shouldRetry reports whether err is a retryable RepositoryError whose code is listed
func shouldRetry(err error, config *RetryConfig) bool {
	var repoErr *RepositoryError
	if !errors.As(err, &repoErr) || !repoErr.IsRetryable() {
		return false
	}
	return slices.Contains(config.RetryableErrors, repoErr.Code)
}

// calculateDelay returns the backoff for the attempt, jittered and capped at MaxDelay
func calculateDelay(attempt int, config *RetryConfig) time.Duration {
	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= config.BackoffFactor
	}
	delay := time.Duration(float64(config.InitialDelay) * multiplier)

	if config.Jitter {
		if spread := int64(delay) / 4; spread > 0 {
			delay += time.Duration(rand.Int63n(spread))
		}
	}
	if config.MaxDelay > 0 {
		delay = min(delay, config.MaxDelay)
	}
	return delay
}
