package domain

import (
	"time"

	"github.com/google/uuid"
)

// SystemNode — sentinel для системных записей лога (не привязанных к узлу).
const SystemNode = "system"

// WorkflowExecution — один запуск версии workflow.
//
// Создаётся триггером (manual, scheduled, webhook, event), мутируется
// только координатором в процессе выполнения и становится неизменяемым
// после перехода в терминальный статус. Движок никогда не удаляет
// executions — retention решается снаружи.
type WorkflowExecution struct {
	// ID — уникальный идентификатор execution.
	ID uuid.UUID `json:"id"`

	// WorkflowID — ссылка на workflow.
	WorkflowID uuid.UUID `json:"workflow_id"`

	// Version — номер выполняемой версии.
	Version int `json:"version"`

	// Status — текущий статус выполнения.
	Status ExecutionStatus `json:"status"`

	// TriggeredBy — кто/что инициировал запуск (email пользователя
	// или идентификатор триггера).
	TriggeredBy string `json:"triggered_by,omitempty"`

	// ProjectID — проект, в рамках которого выполняется запуск.
	ProjectID string `json:"project_id,omitempty"`

	// Input — входные параметры, переданные триггером.
	// Мержатся в глобальные переменные контекста при старте.
	Input map[string]any `json:"input,omitempty"`

	// StartedAt — время перехода в RUNNING.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt — время перехода в терминальный статус.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Logs — журнал выполнения, append-only.
	Logs []WorkflowLog `json:"logs,omitempty"`

	// Results — выходы узлов: node_id → output.
	// Заполняется при успешном завершении.
	Results map[string]map[string]any `json:"results,omitempty"`

	// Error — текст ошибки при статусе FAILED.
	Error string `json:"error,omitempty"`

	// RestartOf — ссылка на предыдущий execution при перезапуске.
	// Терминальные executions не "воскрешаются" — перезапуск создаёт новый.
	RestartOf *uuid.UUID `json:"restart_of,omitempty"`

	// CreatedAt — время создания записи (статус PENDING).
	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если execution ещё не завершён.
func (e *WorkflowExecution) Duration() time.Duration {
	if e.StartedAt == nil || e.CompletedAt == nil {
		return 0
	}
	return e.CompletedAt.Sub(*e.StartedAt)
}

// IsFinished возвращает true, если execution в терминальном статусе.
func (e *WorkflowExecution) IsFinished() bool {
	return e.Status.IsTerminal()
}

// MarkRunning переводит execution в статус RUNNING.
func (e *WorkflowExecution) MarkRunning() {
	now := time.Now()
	e.Status = ExecutionRunning
	e.StartedAt = &now
}

// MarkCompleted переводит execution в статус COMPLETED с результатами.
func (e *WorkflowExecution) MarkCompleted(results map[string]map[string]any) {
	now := time.Now()
	e.Status = ExecutionCompleted
	e.CompletedAt = &now
	e.Results = results
}

// MarkFailed переводит execution в статус FAILED с ошибкой.
func (e *WorkflowExecution) MarkFailed(errMsg string) {
	now := time.Now()
	e.Status = ExecutionFailed
	e.CompletedAt = &now
	e.Error = errMsg
}

// MarkCancelled переводит execution в статус CANCELLED.
func (e *WorkflowExecution) MarkCancelled(reason string) {
	now := time.Now()
	e.Status = ExecutionCancelled
	e.CompletedAt = &now
	e.Error = reason
}

// AppendLog добавляет запись в журнал выполнения.
func (e *WorkflowExecution) AppendLog(nodeID string, level LogLevel, message string) {
	e.Logs = append(e.Logs, WorkflowLog{
		Timestamp: time.Now(),
		NodeID:    nodeID,
		Level:     level,
		Message:   message,
	})
}

// ExecutionFilter — фильтр списка executions.
// Нулевые поля не фильтруют.
type ExecutionFilter struct {
	// WorkflowID — только executions указанного workflow.
	WorkflowID uuid.UUID

	// Status — только executions в указанном статусе.
	Status ExecutionStatus

	// Limit — максимум записей (0 — без ограничения).
	Limit int
}

// WorkflowLog — одна запись журнала выполнения.
// Порядок записей = порядок добавления.
type WorkflowLog struct {
	// Timestamp — время записи.
	Timestamp time.Time `json:"timestamp"`

	// NodeID — узел, к которому относится запись, или SystemNode.
	NodeID string `json:"node_id"`

	// Level — уровень: INFO, WARNING, ERROR.
	Level LogLevel `json:"level"`

	// Message — текст записи.
	Message string `json:"message"`
}

// LogLevel — уровень записи журнала.
type LogLevel string

// Уровни журнала.
const (
	LogInfo    LogLevel = "INFO"
	LogWarning LogLevel = "WARNING"
	LogError   LogLevel = "ERROR"
)
