package domain

import (
	"time"

	"github.com/google/uuid"
)

// TriggerType — тип триггера workflow.
type TriggerType string

const (
	// TriggerScheduled — запуск по cron-расписанию.
	TriggerScheduled TriggerType = "SCHEDULED"

	// TriggerWebhook — запуск внешним HTTP webhook.
	TriggerWebhook TriggerType = "WEBHOOK"

	// TriggerEvent — запуск внутренним событием платформы (через MQ).
	TriggerEvent TriggerType = "EVENT"

	// TriggerManual — только ручной запуск.
	TriggerManual TriggerType = "MANUAL"
)

// WorkflowTrigger — настроенный триггер запуска workflow.
//
// Scheduler обрабатывает SCHEDULED-триггеры, consumer событий — EVENT.
// MANUAL и WEBHOOK приводят к прямому вызову StartExecution снаружи.
type WorkflowTrigger struct {
	// ID — уникальный идентификатор триггера.
	ID uuid.UUID `json:"id"`

	// WorkflowID — какой workflow запускать.
	WorkflowID uuid.UUID `json:"workflow_id"`

	// Name — имя триггера.
	Name string `json:"name,omitempty"`

	// Type — тип триггера.
	Type TriggerType `json:"type"`

	// CronExpr — cron-выражение (только для SCHEDULED).
	CronExpr string `json:"cron_expr,omitempty"`

	// EventKey — ключ события (только для EVENT).
	EventKey string `json:"event_key,omitempty"`

	// DefaultInput — входные параметры, подставляемые при автозапуске.
	DefaultInput map[string]any `json:"default_input,omitempty"`

	// Enabled — выключенные триггеры не срабатывают.
	Enabled bool `json:"enabled"`

	// NextDueAt — следующее время срабатывания (для SCHEDULED).
	NextDueAt *time.Time `json:"next_due_at,omitempty"`

	// LastExecutedAt — время последнего срабатывания.
	LastExecutedAt *time.Time `json:"last_executed_at,omitempty"`

	// ExecutionCount — сколько раз триггер срабатывал.
	ExecutionCount int64 `json:"execution_count"`

	// LastExecutionStatus — статус последнего запущенного execution.
	LastExecutionStatus string `json:"last_execution_status,omitempty"`

	// CreatedBy — кто создал триггер.
	CreatedBy string `json:"created_by,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

// MarkFired обновляет bookkeeping триггера после срабатывания.
func (t *WorkflowTrigger) MarkFired(status string, next *time.Time) {
	now := time.Now()
	t.LastExecutedAt = &now
	t.ExecutionCount++
	t.LastExecutionStatus = status
	t.NextDueAt = next
}

// MergeInput накладывает payload срабатывания на default_input триггера.
// Ключи payload имеют приоритет.
func MergeInput(defaults, payload map[string]any) map[string]any {
	if len(defaults) == 0 {
		return payload
	}

	merged := make(map[string]any, len(defaults)+len(payload))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range payload {
		merged[k] = v
	}
	return merged
}
