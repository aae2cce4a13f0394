package errors

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"
)

// RetryLogger receives retry progress messages
type RetryLogger interface {
	Printf(format string, v ...any)
}

// RetryConfig configures WithRetry
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	Jitter          bool
	RetryableErrors []ErrorCode
}

var retryLogger RetryLogger

// SetRetryLogger sets the package wide retry logger
func SetRetryLogger(logger RetryLogger) {
	retryLogger = logger
}

func logRetry(format string, v ...any) {
	if retryLogger != nil {
		retryLogger.Printf(format, v...)
	}
}

// DefaultRetryConfig is used for store transactions
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
		RetryableErrors: []ErrorCode{
			ErrCodeConnection,
			ErrCodeTimeout,
			ErrCodeTransaction,
			ErrCodeBusy,
		},
	}
}

// SaveRetryConfig is used for snapshot writes, which fail on transient file
// system errors rather than on database locks.
func SaveRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   4,
		InitialDelay:  200 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 1.5,
		Jitter:        true,
		RetryableErrors: []ErrorCode{
			ErrCodeRetryable,
			ErrCodeBusy,
		},
	}
}

// RetryableOperation is a unit of work passed to WithRetry
type RetryableOperation func() error

// WithRetry runs operation until it succeeds, fails with a non retryable
// error, ctx is done or the attempts are exhausted.
func WithRetry(ctx context.Context, config *RetryConfig, operation RetryableOperation) error {
	return WithRetryContext(ctx, config, operation, "")
}

// WithRetryContext is WithRetry with an operation name used in log messages
func WithRetryContext(ctx context.Context, config *RetryConfig, operation RetryableOperation, name string) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if name == "" {
		name = "operation"
	}

	var lastErr error
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 0 {
				logRetry("%s succeeded after %d attempts", name, attempt+1)
			}
			return nil
		}
		lastErr = err

		if !shouldRetry(err, config) {
			return err
		}
		if attempt == config.MaxAttempts-1 {
			break
		}

		delay := calculateDelay(attempt, config)
		logRetry("%s failed (attempt %d/%d), retrying in %v: %v", name, attempt+1, config.MaxAttempts, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s cancelled during retry: %w", name, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, config.MaxAttempts, lastErr)
}

func shouldRetry(err error, config *RetryConfig) bool {
	var repoErr *RepositoryError
	if !errors.As(err, &repoErr) || !repoErr.IsRetryable() {
		return false
	}
	return slices.Contains(config.RetryableErrors, repoErr.Code)
}

func calculateDelay(attempt int, config *RetryConfig) time.Duration {
	multiplier := 1.0
	for range attempt {
		multiplier *= config.BackoffFactor
	}
	delay := time.Duration(float64(config.InitialDelay) * multiplier)

	// up to 25% jitter
	if config.Jitter && delay > 0 {
		if jitter := int64(delay) / 4; jitter > 0 {
			delay += time.Duration(rand.Int64N(jitter))
		}
	}

	return min(delay, config.MaxDelay)
}
