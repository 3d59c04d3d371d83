package taskworker

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики попыток выполнения узлов.
var (
	taskCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geoflow_task_completed_total",
		Help: "Completed node tasks by node type.",
	}, []string{"node_type"})

	taskRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geoflow_task_retries_total",
		Help: "Retryable node task failures by node type.",
	}, []string{"node_type"})

	taskTerminalFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geoflow_task_terminal_failures_total",
		Help: "Terminal node task failures by node type.",
	}, []string{"node_type"})

	taskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geoflow_task_duration_seconds",
		Help:    "Duration of successful node task attempts.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"node_type"})
)

// Counters — снимок счётчиков одного типа узла.
type Counters struct {
	Completed        int64
	Retries          int64
	TerminalFailures int64
}

// Stats — счётчики исходов по типам узлов.
//
// Дублирует prometheus-метрики локальными счётчиками: их читают тесты
// и CLI без /metrics endpoint.
type Stats struct {
	mu       sync.Mutex
	counters map[string]*Counters
}

// NewStats создаёт пустые счётчики.
func NewStats() *Stats {
	return &Stats{counters: make(map[string]*Counters)}
}

func (s *Stats) get(nodeType string) *Counters {
	c, ok := s.counters[nodeType]
	if !ok {
		c = &Counters{}
		s.counters[nodeType] = c
	}
	return c
}

// RecordCompleted фиксирует успешную попытку.
func (s *Stats) RecordCompleted(nodeType string, elapsed time.Duration) {
	s.mu.Lock()
	s.get(nodeType).Completed++
	s.mu.Unlock()

	taskCompleted.WithLabelValues(nodeType).Inc()
	taskDuration.WithLabelValues(nodeType).Observe(elapsed.Seconds())
}

// RecordRetry фиксирует повторяемый провал.
func (s *Stats) RecordRetry(nodeType string) {
	s.mu.Lock()
	s.get(nodeType).Retries++
	s.mu.Unlock()

	taskRetries.WithLabelValues(nodeType).Inc()
}

// RecordTerminal фиксирует терминальный провал.
func (s *Stats) RecordTerminal(nodeType string) {
	s.mu.Lock()
	s.get(nodeType).TerminalFailures++
	s.mu.Unlock()

	taskTerminalFailures.WithLabelValues(nodeType).Inc()
}

// Snapshot возвращает копию счётчиков типа узла.
func (s *Stats) Snapshot(nodeType string) Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.counters[nodeType]; ok {
		return *c
	}
	return Counters{}
}
