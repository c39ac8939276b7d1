package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "wcmirror/pkg/errors"
	"wcmirror/pkg/logger"
)

// Operation is a function that performs an operation that might need retrying
type Operation func() error

// OperationWithResult is a function that returns a result and might need retrying
type OperationWithResult[T any] func() (T, error)

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the maximum number of attempts
	MaxAttempts int
	// Backoff strategy to use
	Backoff BackoffStrategy
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnRetry is called before each retry attempt
	OnRetry func(attempt int, err error, delay time.Duration)
	// Context for cancellation
	Context context.Context
	// Logger for retry attempts
	Logger logger.Logger
}

// DefaultConfig returns a retry configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 5,
		Backoff: &ExponentialBackoff{
			BaseDelay:  time.Second,
			MaxDelay:   16 * time.Second,
			Multiplier: 2.0,
		},
		RetryIf: DefaultRetryIf,
		Context: context.Background(),
		Logger:  logger.GetLogger(),
	}
}

// DefaultRetryIf is the default retry predicate
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		return errs.IsRetryable(apiErr.Type)
	}

	// Context errors are never retried
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Default to retrying unknown errors
	return true
}

// Do executes an operation with retry logic. The last attempt's failure is
// returned without a trailing backoff wait.
func Do(op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := op()
		if err == nil {
			if attempt > 1 && cfg.Logger != nil {
				cfg.Logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}

		lastErr = err

		if !cfg.RetryIf(err) {
			if cfg.Logger != nil {
				cfg.Logger.DebugWithFields("error is not retryable", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		if obs, ok := cfg.Backoff.(ErrorObserver); ok {
			obs.Observe(err)
		}
		delay := cfg.Backoff.NextDelay(attempt)

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}

		if cfg.Logger != nil {
			cfg.Logger.WarnWithFields("retrying operation", map[string]interface{}{
				"attempt":      attempt,
				"error":        err.Error(),
				"delay_ms":     delay.Milliseconds(),
				"max_attempts": cfg.MaxAttempts,
			})
		}

		if err := Wait(cfg.Context, delay); err != nil {
			if cfg.Logger != nil {
				cfg.Logger.WarnWithFields("retry cancelled", map[string]interface{}{
					"attempt": attempt,
					"reason":  err.Error(),
				})
			}
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}

	if cfg.Logger != nil {
		cfg.Logger.ErrorWithFields("max retry attempts exceeded", map[string]interface{}{
			"attempts":   cfg.MaxAttempts,
			"last_error": lastErr.Error(),
		})
	}
	return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
}

// DoWithResult executes an operation that returns a result with retry logic
func DoWithResult[T any](op OperationWithResult[T], cfg *Config) (T, error) {
	var result T

	err := Do(func() error {
		var opErr error
		result, opErr = op()
		return opErr
	}, cfg)

	return result, err
}

// ErrorObserver is implemented by backoff strategies that adjust their
// schedule based on the error being retried. Do calls Observe before asking
// for the next delay.
type ErrorObserver interface {
	Observe(err error)
}

// ErrorTypeBackoff selects a backoff strategy based on the error type, so that
// rate-limit responses can back off on a longer schedule than other transient
// failures.
type ErrorTypeBackoff struct {
	// RateLimitBackoff for rate limit responses
	RateLimitBackoff BackoffStrategy
	// DefaultBackoff for every other retryable error
	DefaultBackoff BackoffStrategy

	current BackoffStrategy
}

// NewErrorTypeBackoff creates an error-type backoff with the given schedules
func NewErrorTypeBackoff(rateLimit, fallback BackoffStrategy) *ErrorTypeBackoff {
	return &ErrorTypeBackoff{
		RateLimitBackoff: rateLimit,
		DefaultBackoff:   fallback,
		current:          fallback,
	}
}

// Observe records the error about to be retried and switches the active
// schedule accordingly.
func (etb *ErrorTypeBackoff) Observe(err error) {
	var apiErr *errs.Error
	if errors.As(err, &apiErr) && apiErr.Type == errs.ErrorTypeRateLimit {
		etb.current = etb.RateLimitBackoff
		return
	}
	etb.current = etb.DefaultBackoff
}

// NextDelay returns the delay from the currently active schedule
func (etb *ErrorTypeBackoff) NextDelay(attempt int) time.Duration {
	if etb.current == nil {
		etb.current = etb.DefaultBackoff
	}
	return etb.current.NextDelay(attempt)
}
