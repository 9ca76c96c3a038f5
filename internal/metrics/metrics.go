// Package metrics exposes Prometheus instruments for avatar operations
// and the media engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts avatar operations by operation and outcome.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avatarkit_operations_total",
		Help: "Total avatar operations by outcome",
	}, []string{"operation", "outcome"})

	// OperationDuration tracks end-to-end duration of avatar operations.
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "avatarkit_operation_duration_seconds",
		Help:    "Duration of avatar operations including fetch and encode",
		Buckets: prometheus.ExponentialBuckets(0.01, 2.0, 12), // 10ms to ~40s
	}, []string{"operation"})

	// EngineExecDuration tracks the duration of single engine invocations.
	EngineExecDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "avatarkit_engine_exec_duration_seconds",
		Help:    "Duration of media engine executions",
		Buckets: prometheus.ExponentialBuckets(0.01, 2.0, 12),
	})

	// EngineExecErrors counts failed engine invocations.
	EngineExecErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avatarkit_engine_exec_errors_total",
		Help: "Total failed media engine executions",
	})

	// QueueWait tracks how long operations wait for the engine.
	QueueWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "avatarkit_engine_queue_wait_seconds",
		Help:    "Time spent waiting for admission to the media engine",
		Buckets: prometheus.ExponentialBuckets(0.001, 2.0, 15),
	})

	// QueueAbandoned counts operations whose caller gave up while the engine kept running.
	QueueAbandoned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avatarkit_engine_queue_abandoned_total",
		Help: "Operations drained after their caller stopped waiting",
	})
)
