package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fedibbm/geoflow/internal/coordinator"
	"github.com/fedibbm/geoflow/internal/domain"
)

// WorkflowStore — операции над определениями workflow, нужные API.
// Реализуется repo.WorkflowRepo.
type WorkflowStore interface {
	Create(ctx context.Context, wf *domain.WorkflowDefinition) error
	GetWorkflow(ctx context.Context, id uuid.UUID) (*domain.WorkflowDefinition, error)
	List(ctx context.Context) ([]domain.WorkflowDefinition, error)
	CreateVersion(ctx context.Context, workflowID uuid.UUID, version domain.WorkflowVersion) (*domain.WorkflowVersion, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TriggerStore — операции над триггерами, нужные API.
// Реализуется repo.TriggerRepo.
type TriggerStore interface {
	Create(ctx context.Context, t *domain.WorkflowTrigger) error
	Update(ctx context.Context, t *domain.WorkflowTrigger) error
	Get(ctx context.Context, id uuid.UUID) (*domain.WorkflowTrigger, error)
	ListByWorkflow(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowTrigger, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// WorkflowInvalidator сбрасывает закэшированное определение workflow.
// Координатор читает определения через кэш, а API пишет мимо него;
// мутирующие обработчики обязаны сбрасывать запись.
type WorkflowInvalidator interface {
	Invalidate(id uuid.UUID)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	workflows   WorkflowStore
	triggers    TriggerStore
	coordinator *coordinator.Coordinator
	invalidator WorkflowInvalidator
	logger      *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Workflows   WorkflowStore
	Triggers    TriggerStore
	Coordinator *coordinator.Coordinator

	// Invalidator — кэш определений workflow (опционально).
	Invalidator WorkflowInvalidator

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		workflows:   cfg.Workflows,
		triggers:    cfg.Triggers,
		coordinator: cfg.Coordinator,
		invalidator: cfg.Invalidator,
		logger:      cfg.Logger,
	}
}

// invalidateWorkflow сбрасывает кэш определения, если кэш подключён.
func (h *Handler) invalidateWorkflow(id uuid.UUID) {
	if h.invalidator != nil {
		h.invalidator.Invalidate(id)
	}
}
