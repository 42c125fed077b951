package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() = %v, want nil", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_NonRetryableReturnsImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Retry() = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_RetryableExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("transient")
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return &RetryableError{Err: boom}
	})
	if !errors.Is(err, boom) {
		t.Errorf("Retry() = %v, want %v", err, boom)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_RetryableRecovers(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: errors.New("transient")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_RetryAfterUsesCarriedDelay(t *testing.T) {
	calls := 0
	start := time.Now()
	err := Retry(context.Background(), 2, time.Hour, func() error {
		calls++
		return &RetryAfterError{Err: errors.New("pending"), After: 5 * time.Millisecond}
	})
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Retry() = nil, want error")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	// The hour-long base delay must not apply; only the carried 5ms wait.
	if elapsed > time.Second {
		t.Errorf("elapsed = %v, want well under the base delay", elapsed)
	}
}

func TestRetry_ExhaustedErrorIsUnwrapped(t *testing.T) {
	boom := errors.New("transient")
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		return &RetryableError{Err: boom}
	})
	var re *RetryableError
	if errors.As(err, &re) {
		t.Error("Retry() surfaced the retry marker, want the underlying error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("Retry() = %v, want %v", err, boom)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Minute, func() error {
		return &RetryableError{Err: errors.New("transient")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() = %v, want context.Canceled", err)
	}
}

func TestUnwrap(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"retryable", &RetryableError{Err: boom}, boom},
		{"retry after", &RetryAfterError{Err: boom, After: time.Second}, boom},
		{"plain", boom, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unwrap(tt.err); got != tt.want {
				t.Errorf("Unwrap() = %v, want %v", got, tt.want)
			}
		})
	}
}
