package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "wcmirror/pkg/errors"
	"wcmirror/pkg/logger"
)

func TestExponentialBackoffMetadataSchedule(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    1 * time.Second,
		MaxDelay:     16 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.0, // No jitter for predictable testing
	}

	expected := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}

	for i, want := range expected {
		if got := backoff.NextDelay(i + 1); got != want {
			t.Errorf("attempt %d: expected delay %v, got %v", i+1, want, got)
		}
	}

	// Capped past the schedule
	if got := backoff.NextDelay(6); got != 16*time.Second {
		t.Errorf("expected capped delay 16s, got %v", got)
	}
}

func TestExponentialBackoffDownloadRateLimitSchedule(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  4 * time.Second,
		MaxDelay:   64 * time.Second,
		Multiplier: 2.0,
	}

	expected := []time.Duration{
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
		64 * time.Second,
	}

	for i, want := range expected {
		if got := backoff.NextDelay(i + 1); got != want {
			t.Errorf("attempt %d: expected delay %v, got %v", i+1, want, got)
		}
	}
}

func TestExponentialBackoffWithJitter(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	delays := make(map[time.Duration]bool)
	for i := 0; i < 10; i++ {
		delays[backoff.NextDelay(2)] = true
	}

	if len(delays) < 2 {
		t.Error("Expected multiple different delays with jitter, but got consistent delays")
	}
}

func TestErrorTypeBackoffSwitchesSchedule(t *testing.T) {
	backoff := NewErrorTypeBackoff(
		&ExponentialBackoff{BaseDelay: 4 * time.Second, MaxDelay: 64 * time.Second, Multiplier: 2.0},
		&ExponentialBackoff{BaseDelay: 1 * time.Second, MaxDelay: 8 * time.Second, Multiplier: 2.0},
	)

	rateLimited := &errs.Error{Type: errs.ErrorTypeRateLimit, Message: "rate limit exceeded", Code: 429}
	network := &errs.Error{Type: errs.ErrorTypeNetwork, Message: "connection reset", Code: 0}

	backoff.Observe(rateLimited)
	if got := backoff.NextDelay(1); got != 4*time.Second {
		t.Errorf("expected rate-limit delay 4s, got %v", got)
	}
	if got := backoff.NextDelay(3); got != 16*time.Second {
		t.Errorf("expected rate-limit delay 16s, got %v", got)
	}

	backoff.Observe(network)
	if got := backoff.NextDelay(1); got != 1*time.Second {
		t.Errorf("expected default delay 1s, got %v", got)
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
		Logger:      logger.NewNopLogger(),
	}

	if err := Do(op, cfg); err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		return errors.New("persistent error")
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
		Logger:      logger.NewNopLogger(),
	}

	err := Do(op, cfg)
	if err == nil {
		t.Error("Expected error when max attempts exceeded")
	}
	if attempts != 5 {
		t.Errorf("Expected 5 attempts, got %d", attempts)
	}
}

func TestRetryConsumedScheduleMatchesBackoff(t *testing.T) {
	backoff := NewErrorTypeBackoff(
		&ExponentialBackoff{BaseDelay: 4 * time.Millisecond, MaxDelay: 64 * time.Millisecond, Multiplier: 2.0},
		&ExponentialBackoff{BaseDelay: 1 * time.Millisecond, MaxDelay: 8 * time.Millisecond, Multiplier: 2.0},
	)

	// Three rate-limit responses, then success
	attempts := 0
	op := func() error {
		attempts++
		if attempts <= 3 {
			return &errs.Error{Type: errs.ErrorTypeRateLimit, Message: "rate limit exceeded", Code: 429}
		}
		return nil
	}

	var waited []time.Duration
	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     backoff,
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewNopLogger(),
		OnRetry: func(attempt int, err error, delay time.Duration) {
			waited = append(waited, delay)
		},
	}

	if err := Do(op, cfg); err != nil {
		t.Fatalf("Expected success within attempt cap, got error: %v", err)
	}
	if attempts != 4 {
		t.Fatalf("Expected 4 attempts, got %d", attempts)
	}

	expected := []time.Duration{4 * time.Millisecond, 8 * time.Millisecond, 16 * time.Millisecond}
	if len(waited) != len(expected) {
		t.Fatalf("Expected %d waits, got %d", len(expected), len(waited))
	}
	var total time.Duration
	for i, want := range expected {
		if waited[i] != want {
			t.Errorf("wait %d: expected %v, got %v", i, want, waited[i])
		}
		total += want
	}
	if total != 28*time.Millisecond {
		t.Errorf("Expected total consumed schedule 28ms, got %v", total)
	}
}

func TestRetryWithNonRetryableError(t *testing.T) {
	attempts := 0
	notFound := &errs.Error{
		Type:    errs.ErrorTypeNotFound,
		Message: "resource not found",
		Code:    404,
	}
	op := func() error {
		attempts++
		return notFound
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewNopLogger(),
	}

	err := Do(op, cfg)
	if !errors.Is(err, notFound) {
		t.Errorf("Expected the not-found error back, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for non-retryable error, got %d", attempts)
	}
}

func TestRetryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	op := func() error {
		attempts++
		cancel()
		return errors.New("transient")
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Second},
		RetryIf:     func(err error) bool { return true },
		Context:     ctx,
		Logger:      logger.NewNopLogger(),
	}

	err := Do(op, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before cancellation, got %d", attempts)
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	op := func() (int, error) {
		attempts++
		if attempts < 2 {
			return 0, errors.New("temporary error")
		}
		return 42, nil
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
		Logger:      logger.NewNopLogger(),
	}

	result, err := DoWithResult(op, cfg)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if result != 42 {
		t.Errorf("Expected result 42, got %d", result)
	}
}
