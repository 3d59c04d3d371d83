package nodes

import (
	"fmt"
	"sort"
	"sync"
)

// Registry — реестр исполнителей узлов.
//
// Позволяет регистрировать и получать реализации Executor по типу узла.
// Потокобезопасен.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]Executor),
	}
}

// DefaultRegistry создаёт реестр со всеми встроенными исполнителями.
func DefaultRegistry(catalog *CatalogClient, processing *ProcessingClient) *Registry {
	r := NewRegistry()

	r.Register(NewTriggerExecutor())
	r.Register(NewDataInputExecutor(catalog))
	r.Register(NewProcessingExecutor(processing))
	r.Register(NewDecisionExecutor())
	r.Register(NewOutputExecutor(nil))

	return r
}

// Register регистрирует исполнителя в реестре.
// Если исполнитель для такого типа уже существует, он будет перезаписан.
func (r *Registry) Register(executor Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[executor.Type()] = executor
}

// Resolve возвращает исполнителя по типу узла.
// Возвращает ErrNoExecutor, если тип не зарегистрирован.
func (r *Registry) Resolve(nodeType string) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	executor, exists := r.executors[nodeType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNoExecutor, nodeType)
	}

	return executor, nil
}

// Has проверяет, зарегистрирован ли тип узла.
func (r *Registry) Has(nodeType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.executors[nodeType]
	return exists
}

// Types возвращает отсортированный список зарегистрированных типов узлов.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.executors))
	for t := range r.executors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Count возвращает количество зарегистрированных исполнителей.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.executors)
}

// Unregister удаляет исполнителя из реестра.
func (r *Registry) Unregister(nodeType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.executors, nodeType)
}
