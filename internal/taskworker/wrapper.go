package taskworker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fedibbm/geoflow/internal/domain"
	"github.com/fedibbm/geoflow/internal/nodes"
)

// Outcome — классификация исхода попытки.
type Outcome string

const (
	// OutcomeCompleted — узел выполнен успешно.
	OutcomeCompleted Outcome = "COMPLETED"

	// OutcomeFailedRetryable — попытка провалилась, но имеет смысл повтор.
	OutcomeFailedRetryable Outcome = "FAILED_RETRYABLE"

	// OutcomeFailedTerminal — провал окончательный, повторы исчерпаны
	// или бессмысленны.
	OutcomeFailedTerminal Outcome = "FAILED_TERMINAL"
)

// Task — одна попытка выполнения узла workflow.
type Task struct {
	// ExecutionID — запуск, к которому относится узел.
	ExecutionID uuid.UUID

	// Node — выполняемый узел.
	Node domain.WorkflowNode

	// Attempt — номер попытки, начиная с 1.
	Attempt int

	// SoftTimeout — мягкий таймаут попытки. Превышение не прерывает
	// выполнение, но фиксируется в логе. 0 — без таймаута.
	SoftTimeout time.Duration

	// Compensate — компенсация побочных эффектов узла.
	// Регистрируется до выполнения: частично выполненная работа
	// тоже подлежит откату.
	Compensate CompensationFunc
}

// TaskResult — результат одной попытки.
type TaskResult struct {
	// Outcome — классификация исхода.
	Outcome Outcome

	// Outputs — выходные данные узла при успехе.
	Outputs map[string]any

	// Error — текст ошибки при провале.
	Error string

	// Attempt — номер завершившейся попытки.
	Attempt int

	// MaxAttempts — предел попыток по политике.
	MaxAttempts int

	// RetryAfterMs — задержка до следующей попытки при
	// OutcomeFailedRetryable. Вызывающий сам планирует повтор.
	RetryAfterMs int64

	// Duration — длительность попытки.
	Duration time.Duration

	// CompensationsInvoked — сколько компенсаций запуска выполнено
	// на терминальном провале.
	CompensationsInvoked int
}

// Completed сообщает, успешна ли попытка.
func (r *TaskResult) Completed() bool {
	return r.Outcome == OutcomeCompleted
}

// Terminal сообщает, окончателен ли провал.
func (r *TaskResult) Terminal() bool {
	return r.Outcome == OutcomeFailedTerminal
}

// Wrapper выполняет попытки узлов с валидацией, таймингом и
// классификацией провалов по retry-политикам.
type Wrapper struct {
	registry      *nodes.Registry
	policies      *PolicySet
	compensations *CompensationLog
	stats         *Stats
	logger        *slog.Logger
}

// Config — конфигурация Wrapper.
type Config struct {
	// Registry — реестр исполнителей узлов.
	Registry *nodes.Registry

	// Policies — retry-политики по типу узла.
	// Если nil — используется DefaultPolicySet().
	Policies *PolicySet

	// Compensations — журнал компенсаций.
	// Если nil — создаётся новый.
	Compensations *CompensationLog

	// Stats — счётчики исходов. Если nil — создаются новые.
	Stats *Stats

	// Logger — structured logger.
	Logger *slog.Logger
}

// New создаёт новый Wrapper.
func New(cfg Config) *Wrapper {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	policies := cfg.Policies
	if policies == nil {
		policies = DefaultPolicySet()
	}
	compensations := cfg.Compensations
	if compensations == nil {
		compensations = NewCompensationLog(logger)
	}
	stats := cfg.Stats
	if stats == nil {
		stats = NewStats()
	}

	return &Wrapper{
		registry:      cfg.Registry,
		policies:      policies,
		compensations: compensations,
		stats:         stats,
		logger:        logger,
	}
}

// Compensations возвращает журнал компенсаций wrapper-а.
func (w *Wrapper) Compensations() *CompensationLog {
	return w.compensations
}

// Statistics возвращает счётчики исходов wrapper-а.
func (w *Wrapper) Statistics() *Stats {
	return w.stats
}

// Run выполняет одну попытку задачи и классифицирует исход.
//
// Порядок:
//  1. Валидация конфигурации узла — ошибка терминальна
//  2. Регистрация компенсации
//  3. Выполнение с замером длительности и мягким таймаутом
//  4. Классификация провала по retry-политике типа узла
//  5. На терминальном провале — откат зарегистрированных компенсаций
//     запуска в обратном порядке
//
// Ошибка возвращается только при отмене контекста; провалы узла
// выражаются через TaskResult.
func (w *Wrapper) Run(ctx context.Context, task Task, ec *nodes.Context) (*TaskResult, error) {
	result, err := w.attempt(ctx, task, ec)
	if err != nil {
		return nil, err
	}

	if result.Terminal() {
		reason := fmt.Sprintf("node %s failed after %d attempts: %s",
			task.Node.ID, result.Attempt, result.Error)
		result.CompensationsInvoked = w.compensations.Invoke(ctx, task.ExecutionID, reason)
	}

	return result, nil
}

// attempt — одна попытка без обработки терминального исхода.
func (w *Wrapper) attempt(ctx context.Context, task Task, ec *nodes.Context) (*TaskResult, error) {
	attempt := task.Attempt
	if attempt < 1 {
		attempt = 1
	}

	executor, err := w.registry.Resolve(task.Node.Type)
	if err != nil {
		return w.terminal(task, attempt, 1, err.Error(), 0), nil
	}

	policy, hasPolicy := w.policies.Get(task.Node.Type)
	maxAttempts := 1
	if hasPolicy && policy.MaxAttempts > 0 {
		maxAttempts = policy.MaxAttempts
	}

	// Валидация: ошибки конфигурации не лечатся повторами
	if err := executor.Validate(task.Node); err != nil {
		w.logger.Warn("node validation failed",
			"execution_id", task.ExecutionID,
			"node_id", task.Node.ID,
			"error", err,
		)
		w.stats.RecordTerminal(task.Node.Type)
		return w.terminal(task, attempt, maxAttempts, err.Error(), 0), nil
	}

	if task.Compensate != nil {
		w.compensations.Register(task.ExecutionID, task.Node.ID, task.Compensate)
	}

	started := time.Now()
	result, execErr := executor.Execute(ctx, task.Node, ec)
	elapsed := time.Since(started)

	if task.SoftTimeout > 0 && elapsed > task.SoftTimeout {
		w.logger.Warn("node exceeded soft timeout",
			"execution_id", task.ExecutionID,
			"node_id", task.Node.ID,
			"elapsed", elapsed,
			"soft_timeout", task.SoftTimeout,
		)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Успех
	if execErr == nil && result != nil && result.Success {
		w.stats.RecordCompleted(task.Node.Type, elapsed)
		return &TaskResult{
			Outcome:     OutcomeCompleted,
			Outputs:     result.Outputs,
			Attempt:     attempt,
			MaxAttempts: maxAttempts,
			Duration:    elapsed,
		}, nil
	}

	// Логический провал: исполнитель сам решил, что повтор бессмыслен
	if execErr == nil {
		errMsg := "node reported failure"
		if result != nil && result.Error != "" {
			errMsg = result.Error
		}
		w.stats.RecordTerminal(task.Node.Type)
		return w.terminal(task, attempt, maxAttempts, errMsg, elapsed), nil
	}

	return w.classify(task, attempt, maxAttempts, policy, hasPolicy, execErr, elapsed), nil
}

// RunToCompletion выполняет задачу до терминального исхода, повторяя
// попытки с задержками из TaskResult.RetryAfterMs.
//
// Удобная обёртка над Run для вызывающих, которым не нужно собственное
// планирование повторов. Задержка прерывается отменой контекста.
func (w *Wrapper) RunToCompletion(ctx context.Context, task Task, ec *nodes.Context) (*TaskResult, error) {
	if task.Attempt < 1 {
		task.Attempt = 1
	}

	for {
		result, err := w.Run(ctx, task, ec)
		if err != nil {
			return nil, err
		}
		if result.Outcome != OutcomeFailedRetryable {
			return result, nil
		}

		select {
		case <-time.After(time.Duration(result.RetryAfterMs) * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		task.Attempt++
		// Компенсация уже зарегистрирована первой попыткой
		task.Compensate = nil
	}
}

// classify определяет исход провалившейся попытки.
func (w *Wrapper) classify(task Task, attempt, maxAttempts int, policy domain.RetryPolicy, hasPolicy bool, execErr error, elapsed time.Duration) *TaskResult {
	if !hasPolicy {
		// Без политики узел получает одну попытку
		w.logger.Warn("no retry policy for node type, failing terminally",
			"execution_id", task.ExecutionID,
			"node_id", task.Node.ID,
			"node_type", task.Node.Type,
			"error", execErr,
		)
		w.stats.RecordTerminal(task.Node.Type)
		return w.terminal(task, attempt, maxAttempts, execErr.Error(), elapsed)
	}

	if attempt >= maxAttempts || !policy.IsRetryable(execErr) {
		w.logger.Warn("node failed terminally",
			"execution_id", task.ExecutionID,
			"node_id", task.Node.ID,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", execErr,
		)
		w.stats.RecordTerminal(task.Node.Type)
		return w.terminal(task, attempt, maxAttempts, execErr.Error(), elapsed)
	}

	delay := policy.Delay(attempt)

	w.logger.Info("node failed, retry scheduled",
		"execution_id", task.ExecutionID,
		"node_id", task.Node.ID,
		"attempt", attempt,
		"max_attempts", maxAttempts,
		"retry_after", delay,
		"error", execErr,
	)
	w.stats.RecordRetry(task.Node.Type)

	return &TaskResult{
		Outcome:      OutcomeFailedRetryable,
		Error:        execErr.Error(),
		Attempt:      attempt,
		MaxAttempts:  maxAttempts,
		RetryAfterMs: delay.Milliseconds(),
		Duration:     elapsed,
	}
}

func (w *Wrapper) terminal(task Task, attempt, maxAttempts int, errMsg string, elapsed time.Duration) *TaskResult {
	return &TaskResult{
		Outcome:     OutcomeFailedTerminal,
		Error:       errMsg,
		Attempt:     attempt,
		MaxAttempts: maxAttempts,
		Duration:    elapsed,
	}
}
