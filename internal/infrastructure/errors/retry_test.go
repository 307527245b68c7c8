package errors

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"deskbridge/internal/testutils"
)

func fastRetryConfig() *RetryConfig {
	config := DefaultRetryConfig()
	config.InitialDelay = time.Millisecond
	config.Jitter = false
	return config
}

func TestWithRetry_Success(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("expected one successful call, got %d calls and %v", calls, err)
	}
}

func TestWithRetry_SucceedsAfterBusy(t *testing.T) {
	logger := &testutils.RecordingLogger{}
	config := fastRetryConfig()
	config.Logger = logger

	calls := 0
	err := WithRetryContext(context.Background(), config, func() error {
		calls++
		if calls < 3 {
			return NewRepositoryError("add_star", errors.New("database is locked"), ErrCodeBusy)
		}
		return nil
	}, "add_star")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(logger.Calls("DEBUG")) != 3 {
		t.Errorf("expected 2 retry entries and 1 success entry, got %d", len(logger.Calls("DEBUG")))
	}
}

func TestWithRetry_NonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"plain error", errors.New("plain")},
		{"duplicate", NewRepositoryError("op", errors.New("dup"), ErrCodeDuplicate)},
		{"retryable code not listed", &RepositoryError{Code: ErrCodeDiskSpace, Retryable: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), fastRetryConfig(), func() error {
				calls++
				return tt.err
			})
			if err != tt.err {
				t.Errorf("expected error passed through, got %v", err)
			}
			if calls != 1 {
				t.Errorf("expected no retries, got %d calls", calls)
			}
		})
	}
}

func TestWithRetry_Exhausted(t *testing.T) {
	busy := NewRepositoryError("op", errors.New("locked"), ErrCodeBusy)
	calls := 0
	err := WithRetryContext(context.Background(), fastRetryConfig(), func() error {
		calls++
		return busy
	}, "save_options")
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if !errors.Is(err, busy) || !strings.Contains(err.Error(), "save_options failed after 3 attempts") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := fastRetryConfig()
	config.InitialDelay = time.Hour
	config.MaxDelay = time.Hour

	err := WithRetry(ctx, config, func() error {
		cancel()
		return NewRepositoryError("op", errors.New("locked"), ErrCodeBusy)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
}

func TestCalculateDelay(t *testing.T) {
	config := &RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, BackoffFactor: 2}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}
	for attempt, expected := range want {
		if got := calculateDelay(attempt, config); got != expected {
			t.Errorf("attempt %d: delay = %v, want %v", attempt, got, expected)
		}
	}

	config.Jitter = true
	config.MaxDelay = time.Second
	for i := 0; i < 20; i++ {
		d := calculateDelay(0, config)
		if d < 100*time.Millisecond || d >= 125*time.Millisecond {
			t.Fatalf("jittered delay out of range: %v", d)
		}
	}
}
