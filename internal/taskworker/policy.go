package taskworker

import (
	"sync"

	"github.com/fedibbm/geoflow/internal/domain"
)

// PolicySet — набор retry-политик по типу задачи.
//
// Тип задачи — это тип узла workflow. Политики загружаются из
// конфигурации сервиса; отсутствующая политика означает одну попытку
// без повторов.
type PolicySet struct {
	mu       sync.RWMutex
	policies map[string]domain.RetryPolicy
}

// NewPolicySet создаёт набор политик.
func NewPolicySet(policies map[string]domain.RetryPolicy) *PolicySet {
	if policies == nil {
		policies = make(map[string]domain.RetryPolicy)
	}
	return &PolicySet{policies: policies}
}

// DefaultPolicySet создаёт набор политик по умолчанию для встроенных
// типов узлов: загрузка данных повторяется агрессивнее обработки,
// триггеры почти не повторяются.
func DefaultPolicySet() *PolicySet {
	return NewPolicySet(map[string]domain.RetryPolicy{
		domain.NodeTypeDataInput: {
			MaxAttempts:    5,
			InitialDelayMs: 2000,
			Multiplier:     2.0,
			MaxDelayMs:     30000,
			Strategy:       domain.BackoffExponential,
		},
		domain.NodeTypeProcessing: {
			MaxAttempts:    3,
			InitialDelayMs: 1000,
			Multiplier:     1.5,
			MaxDelayMs:     10000,
			Strategy:       domain.BackoffExponential,
		},
		domain.NodeTypeOutput: {
			MaxAttempts:    4,
			InitialDelayMs: 500,
			Multiplier:     2.0,
			MaxDelayMs:     8000,
			Strategy:       domain.BackoffExponential,
		},
		domain.NodeTypeTrigger: {
			MaxAttempts:    2,
			InitialDelayMs: 500,
			Strategy:       domain.BackoffFixed,
		},
	})
}

// Get возвращает политику для типа задачи.
func (s *PolicySet) Get(taskType string) (domain.RetryPolicy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	policy, ok := s.policies[taskType]
	return policy, ok
}

// Set устанавливает политику для типа задачи.
func (s *PolicySet) Set(taskType string, policy domain.RetryPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[taskType] = policy
}
