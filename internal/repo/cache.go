package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"

	"github.com/fedibbm/geoflow/internal/domain"
)

// defaultWorkflowTTL — время жизни закэшированного workflow.
// Определения меняются редко; минутный TTL покрывает burst-запуски
// одного workflow без риска долго держать устаревшую версию.
const defaultWorkflowTTL = time.Minute

// workflowLoader — источник определений workflow, который оборачивает кэш.
type workflowLoader interface {
	GetWorkflow(ctx context.Context, id uuid.UUID) (*domain.WorkflowDefinition, error)
}

// CachedWorkflowStore — read-through кэш над workflowLoader.
//
// Координатор перечитывает определение на каждом запуске; кэш снимает
// эту нагрузку с БД. Мутации workflow должны звать Invalidate.
type CachedWorkflowStore struct {
	loader workflowLoader
	cache  *ristretto.Cache
	ttl    time.Duration
}

// NewCachedWorkflowStore создаёт кэш на size определений.
func NewCachedWorkflowStore(loader workflowLoader, size int64) (*CachedWorkflowStore, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * size,
		MaxCost:     size,
		BufferItems: 64,
		// Каждое определение стоит 1; без этого ristretto прибавляет
		// к стоимости размер служебной структуры и вмещает сильно
		// меньше size определений
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create workflow cache: %w", err)
	}
	return &CachedWorkflowStore{
		loader: loader,
		cache:  cache,
		ttl:    defaultWorkflowTTL,
	}, nil
}

// GetWorkflow возвращает определение из кэша или из loader.
func (s *CachedWorkflowStore) GetWorkflow(ctx context.Context, id uuid.UUID) (*domain.WorkflowDefinition, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		if wf, ok := cached.(*domain.WorkflowDefinition); ok {
			return wf, nil
		}
	}

	wf, err := s.loader.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.SetWithTTL(id.String(), wf, 1, s.ttl)
	return wf, nil
}

// Invalidate сбрасывает закэшированное определение.
func (s *CachedWorkflowStore) Invalidate(id uuid.UUID) {
	s.cache.Del(id.String())
}

// Close освобождает ресурсы кэша.
func (s *CachedWorkflowStore) Close() {
	s.cache.Close()
}
