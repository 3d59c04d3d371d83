package coordinator

import (
	"context"

	"github.com/google/uuid"

	"github.com/fedibbm/geoflow/internal/domain"
)

// WorkflowStore — доступ к определениям workflow.
type WorkflowStore interface {
	// GetWorkflow возвращает workflow со всеми версиями.
	GetWorkflow(ctx context.Context, id uuid.UUID) (*domain.WorkflowDefinition, error)
}

// ExecutionStore — хранилище executions.
//
// Координатор сохраняет execution после каждого перехода состояния:
// упавший процесс движка оставляет в хранилище последний зафиксированный
// прогресс.
type ExecutionStore interface {
	// CreateExecution сохраняет новый execution.
	CreateExecution(ctx context.Context, exec *domain.WorkflowExecution) error

	// UpdateExecution сохраняет изменённый execution.
	UpdateExecution(ctx context.Context, exec *domain.WorkflowExecution) error

	// GetExecution возвращает execution по ID.
	GetExecution(ctx context.Context, id uuid.UUID) (*domain.WorkflowExecution, error)

	// ListExecutions возвращает executions по фильтру,
	// отсортированные по времени создания (новые первыми).
	ListExecutions(ctx context.Context, filter domain.ExecutionFilter) ([]domain.WorkflowExecution, error)
}

// EventPublisher — публикация событий жизненного цикла executions.
// Реализуется поверх очереди сообщений; nil отключает публикацию.
type EventPublisher interface {
	// PublishExecutionFinished публикует событие о завершении execution.
	PublishExecutionFinished(ctx context.Context, exec *domain.WorkflowExecution) error
}
