package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/fedibbm/geoflow/internal/domain"
)

// countingLoader отдаёт копию текущего определения и считает обращения.
type countingLoader struct {
	wf    domain.WorkflowDefinition
	calls int
}

func (l *countingLoader) GetWorkflow(ctx context.Context, id uuid.UUID) (*domain.WorkflowDefinition, error) {
	l.calls++
	if id != l.wf.ID {
		return nil, ErrNotFound
	}
	wf := l.wf
	return &wf, nil
}

func TestCachedWorkflowStore_ReadThrough(t *testing.T) {
	loader := &countingLoader{wf: domain.WorkflowDefinition{
		ID:             uuid.New(),
		Name:           "ndvi-pipeline",
		CurrentVersion: 1,
	}}
	store, err := NewCachedWorkflowStore(loader, 10)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer store.Close()

	wf, err := store.GetWorkflow(context.Background(), loader.wf.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wf.CurrentVersion != 1 {
		t.Fatalf("expected version 1, got %d", wf.CurrentVersion)
	}
	store.cache.Wait()

	if _, err := store.GetWorkflow(context.Background(), loader.wf.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loader.calls != 1 {
		t.Errorf("expected 1 loader call after warm cache, got %d", loader.calls)
	}
}

func TestCachedWorkflowStore_InvalidateDropsStaleEntry(t *testing.T) {
	loader := &countingLoader{wf: domain.WorkflowDefinition{
		ID:             uuid.New(),
		Name:           "ndvi-pipeline",
		CurrentVersion: 1,
	}}
	store, err := NewCachedWorkflowStore(loader, 10)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer store.Close()

	if _, err := store.GetWorkflow(context.Background(), loader.wf.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.cache.Wait()

	// Новая версия опубликована мимо кэша
	loader.wf.CurrentVersion = 2

	wf, err := store.GetWorkflow(context.Background(), loader.wf.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wf.CurrentVersion != 1 {
		t.Fatalf("expected stale version 1 before invalidation, got %d", wf.CurrentVersion)
	}

	store.Invalidate(loader.wf.ID)

	wf, err = store.GetWorkflow(context.Background(), loader.wf.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wf.CurrentVersion != 2 {
		t.Errorf("expected fresh version 2 after invalidation, got %d", wf.CurrentVersion)
	}
}

func TestCachedWorkflowStore_LoaderErrorNotCached(t *testing.T) {
	loader := &countingLoader{wf: domain.WorkflowDefinition{ID: uuid.New()}}
	store, err := NewCachedWorkflowStore(loader, 10)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer store.Close()

	if _, err := store.GetWorkflow(context.Background(), uuid.New()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if loader.calls != 1 {
		t.Errorf("expected 1 loader call, got %d", loader.calls)
	}
}
