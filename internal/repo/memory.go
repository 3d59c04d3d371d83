package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fedibbm/geoflow/internal/domain"
)

// MemoryStore — in-memory хранилище workflow и executions.
//
// Используется в тестах и в dry-run режиме CLI, где поднимать Postgres
// не нужно. Семантика повторяет WorkflowRepo/ExecutionRepo, включая
// ErrNotFound.
type MemoryStore struct {
	mu         sync.RWMutex
	workflows  map[uuid.UUID]*domain.WorkflowDefinition
	executions map[uuid.UUID]*domain.WorkflowExecution
}

// NewMemoryStore создаёт пустой MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workflows:  make(map[uuid.UUID]*domain.WorkflowDefinition),
		executions: make(map[uuid.UUID]*domain.WorkflowExecution),
	}
}

// PutWorkflow сохраняет определение workflow.
func (s *MemoryStore) PutWorkflow(wf *domain.WorkflowDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[wf.ID] = wf
}

// GetWorkflow возвращает определение workflow по ID.
func (s *MemoryStore) GetWorkflow(_ context.Context, id uuid.UUID) (*domain.WorkflowDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.workflows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return wf, nil
}

// CreateExecution сохраняет новый execution.
func (s *MemoryStore) CreateExecution(_ context.Context, exec *domain.WorkflowExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.executions[exec.ID]; ok {
		return ErrAlreadyExists
	}
	s.executions[exec.ID] = snapshotExecution(exec)
	return nil
}

// UpdateExecution сохраняет изменённый execution.
func (s *MemoryStore) UpdateExecution(_ context.Context, exec *domain.WorkflowExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.executions[exec.ID]; !ok {
		return ErrNotFound
	}
	s.executions[exec.ID] = snapshotExecution(exec)
	return nil
}

// GetExecution возвращает execution по ID.
func (s *MemoryStore) GetExecution(_ context.Context, id uuid.UUID) (*domain.WorkflowExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exec, ok := s.executions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshotExecution(exec), nil
}

// ListExecutions возвращает executions по фильтру, новые первыми.
func (s *MemoryStore) ListExecutions(_ context.Context, filter domain.ExecutionFilter) ([]domain.WorkflowExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var executions []domain.WorkflowExecution
	for _, exec := range s.executions {
		if filter.WorkflowID != uuid.Nil && exec.WorkflowID != filter.WorkflowID {
			continue
		}
		if filter.Status != "" && exec.Status != filter.Status {
			continue
		}
		executions = append(executions, *snapshotExecution(exec))
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].CreatedAt.After(executions[j].CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(executions) > limit {
		executions = executions[:limit]
	}
	return executions, nil
}

// snapshotExecution делает неглубокую копию, чтобы чтения не видели
// последующих мутаций координатора.
func snapshotExecution(exec *domain.WorkflowExecution) *domain.WorkflowExecution {
	cp := *exec
	cp.Logs = append([]domain.WorkflowLog(nil), exec.Logs...)
	if exec.Results != nil {
		cp.Results = make(map[string]map[string]any, len(exec.Results))
		for k, v := range exec.Results {
			cp.Results[k] = v
		}
	}
	return &cp
}
