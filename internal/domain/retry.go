package domain

import (
	"strings"
	"time"
)

// Стратегии backoff для повторных попыток.
const (
	BackoffExponential = "exponential"
	BackoffLinear      = "linear"
	BackoffFixed       = "fixed"
)

// RetryPolicy — политика повторных попыток для внешних задач.
//
// Применяется обёрткой taskworker к задачам, делегируемым внешним
// сервисам (загрузка снимков, вычисление индексов, сохранение).
type RetryPolicy struct {
	// MaxAttempts — максимальное количество попыток (включая первую).
	MaxAttempts int `json:"max_attempts" koanf:"max_attempts"`

	// InitialDelayMs — начальная задержка перед retry в миллисекундах.
	InitialDelayMs int64 `json:"initial_delay_ms" koanf:"initial_delay_ms"`

	// Multiplier — множитель экспоненциального backoff.
	Multiplier float64 `json:"multiplier" koanf:"multiplier"`

	// MaxDelayMs — максимальная задержка в миллисекундах.
	MaxDelayMs int64 `json:"max_delay_ms" koanf:"max_delay_ms"`

	// Strategy — стратегия: "exponential", "linear", "fixed".
	Strategy string `json:"strategy" koanf:"strategy"`

	// RetryableErrors — подстроки ошибок, при которых делается retry.
	// Пустой список — retry на любую ошибку.
	RetryableErrors []string `json:"retryable_errors" koanf:"retryable_errors"`
}

// DefaultRetryPolicy возвращает политику по умолчанию:
// 3 попытки, экспоненциальный backoff 1s → 15s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialDelayMs: 1000,
		Multiplier:     2.0,
		MaxDelayMs:     15000,
		Strategy:       BackoffExponential,
	}
}

// Delay вычисляет задержку перед попыткой attempt+1.
// attempt — номер завершившейся попытки (начиная с 1).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := p.InitialDelayMs
	if initial <= 0 {
		initial = 1000
	}
	maxDelay := p.MaxDelayMs
	if maxDelay <= 0 {
		maxDelay = 15000
	}

	var delayMs int64
	switch p.Strategy {
	case BackoffLinear:
		delayMs = initial * int64(attempt)
	case BackoffFixed:
		delayMs = initial
	default: // exponential
		mult := p.Multiplier
		if mult <= 0 {
			mult = 2.0
		}
		d := float64(initial)
		for i := 1; i < attempt; i++ {
			d *= mult
			if int64(d) >= maxDelay {
				break
			}
		}
		delayMs = int64(d)
	}

	if delayMs > maxDelay {
		delayMs = maxDelay
	}
	return time.Duration(delayMs) * time.Millisecond
}

// IsRetryable проверяет, подпадает ли ошибка под retry.
// Пустой RetryableErrors означает retry на любую ошибку.
func (p RetryPolicy) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if len(p.RetryableErrors) == 0 {
		return true
	}
	msg := err.Error()
	for _, substr := range p.RetryableErrors {
		if substr != "" && strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}
