package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики запусков workflow.
var (
	executionsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geoflow_executions_finished_total",
		Help: "Finished workflow executions by terminal status.",
	}, []string{"status"})

	executionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "geoflow_execution_duration_seconds",
		Help:    "Wall-clock duration of finished workflow executions.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
	})

	nodesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geoflow_nodes_skipped_total",
		Help: "Workflow nodes skipped by inactive conditional edges.",
	})

	activeExecutions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "geoflow_active_executions",
		Help: "Executions currently being driven by the coordinator.",
	})
)
