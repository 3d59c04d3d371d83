package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/fedibbm/geoflow/internal/domain"
)

// Workflow DTOs

// CreateWorkflowRequest — запрос на создание workflow.
type CreateWorkflowRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	ProjectID   string                `json:"project_id,omitempty"`
	CreatedBy   string                `json:"created_by,omitempty"`
	Nodes       []domain.WorkflowNode `json:"nodes"`
	Edges       []domain.WorkflowEdge `json:"edges,omitempty"`
}

// WorkflowResponse — ответ с workflow.
type WorkflowResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	ProjectID      string    `json:"project_id,omitempty"`
	CurrentVersion int       `json:"current_version"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// WorkflowFromDomain конвертирует domain.WorkflowDefinition в WorkflowResponse.
func WorkflowFromDomain(d *domain.WorkflowDefinition) WorkflowResponse {
	return WorkflowResponse{
		ID:             d.ID,
		Name:           d.Name,
		Description:    d.Description,
		ProjectID:      d.ProjectID,
		CurrentVersion: d.CurrentVersion,
		CreatedBy:      d.CreatedBy,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// CreateVersionRequest — запрос на создание версии workflow.
type CreateVersionRequest struct {
	Nodes     []domain.WorkflowNode `json:"nodes"`
	Edges     []domain.WorkflowEdge `json:"edges,omitempty"`
	Changelog string                `json:"changelog,omitempty"`
	CreatedBy string                `json:"created_by,omitempty"`
}

// VersionResponse — ответ с версией workflow.
type VersionResponse struct {
	WorkflowID uuid.UUID             `json:"workflow_id"`
	Version    int                   `json:"version"`
	Nodes      []domain.WorkflowNode `json:"nodes"`
	Edges      []domain.WorkflowEdge `json:"edges,omitempty"`
	Changelog  string                `json:"changelog,omitempty"`
	CreatedBy  string                `json:"created_by,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

// VersionFromDomain конвертирует domain.WorkflowVersion в VersionResponse.
func VersionFromDomain(v domain.WorkflowVersion) VersionResponse {
	return VersionResponse{
		WorkflowID: v.WorkflowID,
		Version:    v.Version,
		Nodes:      v.Nodes,
		Edges:      v.Edges,
		Changelog:  v.Changelog,
		CreatedBy:  v.CreatedBy,
		CreatedAt:  v.CreatedAt,
	}
}

// Execution DTOs

// StartExecutionRequest — запрос на запуск workflow.
type StartExecutionRequest struct {
	Version     int            `json:"version,omitempty"`
	TriggeredBy string         `json:"triggered_by,omitempty"`
	Input       map[string]any `json:"input,omitempty"`
}

// TerminateRequest — запрос на завершение execution.
type TerminateRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ExecutionResponse — ответ с execution.
type ExecutionResponse struct {
	ID          uuid.UUID                 `json:"id"`
	WorkflowID  uuid.UUID                 `json:"workflow_id"`
	Version     int                       `json:"version"`
	Status      string                    `json:"status"`
	TriggeredBy string                    `json:"triggered_by,omitempty"`
	ProjectID   string                    `json:"project_id,omitempty"`
	Input       map[string]any            `json:"input,omitempty"`
	StartedAt   *time.Time                `json:"started_at,omitempty"`
	CompletedAt *time.Time                `json:"completed_at,omitempty"`
	Logs        []LogEntryResponse        `json:"logs,omitempty"`
	Results     map[string]map[string]any `json:"results,omitempty"`
	Error       string                    `json:"error,omitempty"`
	RestartOf   *uuid.UUID                `json:"restart_of,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// LogEntryResponse — запись журнала выполнения.
type LogEntryResponse struct {
	Timestamp time.Time `json:"timestamp"`
	NodeID    string    `json:"node_id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// ExecutionFromDomain конвертирует domain.WorkflowExecution в ExecutionResponse.
func ExecutionFromDomain(e *domain.WorkflowExecution) ExecutionResponse {
	logs := make([]LogEntryResponse, len(e.Logs))
	for i, l := range e.Logs {
		logs[i] = LogEntryResponse{
			Timestamp: l.Timestamp,
			NodeID:    l.NodeID,
			Level:     string(l.Level),
			Message:   l.Message,
		}
	}

	return ExecutionResponse{
		ID:          e.ID,
		WorkflowID:  e.WorkflowID,
		Version:     e.Version,
		Status:      string(e.Status),
		TriggeredBy: e.TriggeredBy,
		ProjectID:   e.ProjectID,
		Input:       e.Input,
		StartedAt:   e.StartedAt,
		CompletedAt: e.CompletedAt,
		Logs:        logs,
		Results:     e.Results,
		Error:       e.Error,
		RestartOf:   e.RestartOf,
		CreatedAt:   e.CreatedAt,
	}
}

// Trigger DTOs

// CreateTriggerRequest — запрос на создание триггера.
type CreateTriggerRequest struct {
	Name         string         `json:"name,omitempty"`
	Type         string         `json:"type"`
	CronExpr     string         `json:"cron_expr,omitempty"`
	EventKey     string         `json:"event_key,omitempty"`
	DefaultInput map[string]any `json:"default_input,omitempty"`
	Enabled      bool           `json:"enabled"`
	CreatedBy    string         `json:"created_by,omitempty"`
}

// SetEnabledRequest — запрос на включение/выключение.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// TriggerResponse — ответ с триггером.
type TriggerResponse struct {
	ID                  uuid.UUID      `json:"id"`
	WorkflowID          uuid.UUID      `json:"workflow_id"`
	Name                string         `json:"name,omitempty"`
	Type                string         `json:"type"`
	CronExpr            string         `json:"cron_expr,omitempty"`
	EventKey            string         `json:"event_key,omitempty"`
	DefaultInput        map[string]any `json:"default_input,omitempty"`
	Enabled             bool           `json:"enabled"`
	NextDueAt           *time.Time     `json:"next_due_at,omitempty"`
	LastExecutedAt      *time.Time     `json:"last_executed_at,omitempty"`
	ExecutionCount      int64          `json:"execution_count"`
	LastExecutionStatus string         `json:"last_execution_status,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}

// TriggerFromDomain конвертирует domain.WorkflowTrigger в TriggerResponse.
func TriggerFromDomain(t *domain.WorkflowTrigger) TriggerResponse {
	if t == nil {
		return TriggerResponse{}
	}
	return TriggerResponse{
		ID:                  t.ID,
		WorkflowID:          t.WorkflowID,
		Name:                t.Name,
		Type:                string(t.Type),
		CronExpr:            t.CronExpr,
		EventKey:            t.EventKey,
		DefaultInput:        t.DefaultInput,
		Enabled:             t.Enabled,
		NextDueAt:           t.NextDueAt,
		LastExecutedAt:      t.LastExecutedAt,
		ExecutionCount:      t.ExecutionCount,
		LastExecutionStatus: t.LastExecutionStatus,
		CreatedAt:           t.CreatedAt,
	}
}
