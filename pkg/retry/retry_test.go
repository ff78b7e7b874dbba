package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"xhsharvest/pkg/config"
	errs "xhsharvest/pkg/errors"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.0, // No jitter for predictable testing
	}

	tests := []struct {
		attempt     int
		expected    time.Duration
		description string
	}{
		{1, 100 * time.Millisecond, "First attempt"},
		{2, 200 * time.Millisecond, "Second attempt"},
		{3, 400 * time.Millisecond, "Third attempt"},
		{4, 800 * time.Millisecond, "Fourth attempt"},
		{5, 1 * time.Second, "Fifth attempt (capped at max)"},
		{6, 1 * time.Second, "Sixth attempt (still capped)"},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			delay := backoff.NextDelay(test.attempt)
			if delay != test.expected {
				t.Errorf("Expected delay %v, got %v", test.expected, delay)
			}
		})
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
		delay := backoff.NextDelay(2)
		delays[delay] = true
	}

	// With jitter, we should get different delays
	if len(delays) < 2 {
		t.Error("Expected multiple different delays with jitter, but got consistent delays")
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
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
	}

	err := Do(op, cfg)
	if err != nil {
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
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 5 * time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
	}

	err := Do(op, cfg)
	if err == nil {
		t.Error("Expected error after max attempts exceeded")
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"navigation error", errs.New(errs.ErrorTypeNavigation, "page load failed"), true},
		{"timeout error", errs.New(errs.ErrorTypeTimeout, "selector wait expired"), true},
		{"filter error", errs.New(errs.ErrorTypeFilter, "unknown option"), false},
		{"parsing error", errs.New(errs.ErrorTypeParsing, "bad payload"), false},
		{"storage error", errs.New(errs.ErrorTypeStorage, "write failed"), false},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
		{"plain error", errors.New("something"), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := DefaultRetryIf(test.err); got != test.expected {
				t.Errorf("DefaultRetryIf(%v) = %v, want %v", test.err, got, test.expected)
			}
		})
	}
}

func TestRetryNotRetryableStopsImmediately(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		return errs.New(errs.ErrorTypeFilter, "unknown option")
	}

	err := Do(op, &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 5 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	})

	if err == nil {
		t.Error("Expected the filter error to surface")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for non-retryable error, got %d", attempts)
	}
}

func TestRetryContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	op := func() error {
		attempts++
		return errors.New("keep failing")
	}

	err := Do(op, &Config{
		MaxAttempts: 10,
		Backoff:     &ConstantBackoff{Delay: 50 * time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     ctx,
	})

	if err == nil {
		t.Error("Expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got %v", err)
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
			return 0, errs.New(errs.ErrorTypeNavigation, "flaky")
		}
		return 42, nil
	}

	result, err := DoWithResult(op, &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 5 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	})

	if err != nil {
		t.Errorf("Expected success, got %v", err)
	}
	if result != 42 {
		t.Errorf("Expected result 42, got %d", result)
	}
}

func TestNewNavigationRetrierUsesConfiguredBackoff(t *testing.T) {
	retrier := NewNavigationRetrier(&config.RetryConfig{
		MaxAttempts:  4,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     200 * time.Millisecond,
		Multiplier:   3.0,
	}, nil)

	if retrier.config.MaxAttempts != 4 {
		t.Errorf("Expected max attempts 4, got %d", retrier.config.MaxAttempts)
	}

	backoff, ok := retrier.config.Backoff.(*ExponentialBackoff)
	if !ok {
		t.Fatalf("Expected exponential backoff, got %T", retrier.config.Backoff)
	}
	if backoff.BaseDelay != 50*time.Millisecond {
		t.Errorf("Expected base delay 50ms, got %v", backoff.BaseDelay)
	}
	if backoff.MaxDelay != 200*time.Millisecond {
		t.Errorf("Expected max delay 200ms, got %v", backoff.MaxDelay)
	}
	if backoff.Multiplier != 3.0 {
		t.Errorf("Expected multiplier 3.0, got %v", backoff.Multiplier)
	}
}

func TestNewNavigationRetrierDefaults(t *testing.T) {
	retrier := NewNavigationRetrier(&config.RetryConfig{MaxAttempts: 2}, nil)

	backoff, ok := retrier.config.Backoff.(*ExponentialBackoff)
	if !ok {
		t.Fatalf("Expected exponential backoff, got %T", retrier.config.Backoff)
	}
	// Unset knobs keep the navigation defaults
	if backoff.BaseDelay != 2*time.Second {
		t.Errorf("Expected default base delay 2s, got %v", backoff.BaseDelay)
	}
	if backoff.Multiplier != 2.0 {
		t.Errorf("Expected default multiplier 2.0, got %v", backoff.Multiplier)
	}
}

func TestRetrierWithMaxAttempts(t *testing.T) {
	retrier := NewRetrier(&Config{
		MaxAttempts: 1,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
	}).WithMaxAttempts(4)

	attempts := 0
	_ = retrier.Do(func() error {
		attempts++
		return errors.New("fail")
	})

	if attempts != 4 {
		t.Errorf("Expected 4 attempts, got %d", attempts)
	}
}
