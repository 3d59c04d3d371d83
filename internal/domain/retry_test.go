package domain

import (
	"errors"
	"testing"
	"time"
)

func TestRetryPolicy_DelayExponential(t *testing.T) {
	p := RetryPolicy{
		InitialDelayMs: 1000,
		Multiplier:     2.0,
		MaxDelayMs:     15000,
		Strategy:       BackoffExponential,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 15 * time.Second}, // cap
		{10, 15 * time.Second},
	}

	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.want, got)
		}
	}
}

func TestRetryPolicy_DelayLinear(t *testing.T) {
	p := RetryPolicy{
		InitialDelayMs: 500,
		MaxDelayMs:     2000,
		Strategy:       BackoffLinear,
	}

	if got := p.Delay(1); got != 500*time.Millisecond {
		t.Errorf("attempt 1: expected 500ms, got %v", got)
	}
	if got := p.Delay(3); got != 1500*time.Millisecond {
		t.Errorf("attempt 3: expected 1500ms, got %v", got)
	}
	if got := p.Delay(10); got != 2*time.Second {
		t.Errorf("attempt 10: expected cap 2s, got %v", got)
	}
}

func TestRetryPolicy_DelayFixed(t *testing.T) {
	p := RetryPolicy{
		InitialDelayMs: 500,
		Strategy:       BackoffFixed,
	}

	for attempt := 1; attempt <= 5; attempt++ {
		if got := p.Delay(attempt); got != 500*time.Millisecond {
			t.Errorf("attempt %d: expected 500ms, got %v", attempt, got)
		}
	}
}

func TestRetryPolicy_DelayDefaults(t *testing.T) {
	// Пустая политика получает безопасные значения по умолчанию
	var p RetryPolicy

	if got := p.Delay(1); got != time.Second {
		t.Errorf("expected default 1s, got %v", got)
	}
	if got := p.Delay(0); got != 0 {
		t.Errorf("expected 0 for attempt 0, got %v", got)
	}
}

func TestRetryPolicy_IsRetryable(t *testing.T) {
	p := RetryPolicy{
		RetryableErrors: []string{"timeout", "HTTP 503"},
	}

	if !p.IsRetryable(errors.New("connection timeout after 30s")) {
		t.Error("expected timeout error to be retryable")
	}
	if !p.IsRetryable(errors.New("processing service returned HTTP 503: busy")) {
		t.Error("expected 503 error to be retryable")
	}
	if p.IsRetryable(errors.New("HTTP 404: not found")) {
		t.Error("expected 404 error to be non-retryable")
	}
	if p.IsRetryable(nil) {
		t.Error("nil error is never retryable")
	}
}

func TestRetryPolicy_IsRetryableEmptyList(t *testing.T) {
	var p RetryPolicy

	if !p.IsRetryable(errors.New("anything")) {
		t.Error("empty RetryableErrors should retry any error")
	}
}
