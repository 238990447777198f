// internal/utils/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "launchpad"

// MetricType представляет тип метрики
type MetricType string

const (
	TransactionCounterType  MetricType = "transaction_counter"
	TransactionDurationType MetricType = "transaction_duration"
	ComputeUnitsType        MetricType = "compute_units"
	InstructionCounterType  MetricType = "instruction_counter"
	FeesCollectedType       MetricType = "fees_collected"
	LaunchCounterType       MetricType = "launch_counter"
)

func newMetrics() map[MetricType]prometheus.Collector {
	return map[MetricType]prometheus.Collector{
		TransactionCounterType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Total number of executed transactions",
			},
			[]string{"status"},
		),
		TransactionDurationType: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transaction_duration_seconds",
				Help:      "Time spent executing and committing a transaction",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
		),
		ComputeUnitsType: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compute_units",
				Help:      "Compute units consumed per transaction",
				Buckets:   prometheus.ExponentialBuckets(1000, 2, 11),
			},
		),
		InstructionCounterType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "instructions_total",
				Help:      "Top-level instructions dispatched per program",
			},
			[]string{"program"},
		),
		FeesCollectedType: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fees_collected_lamports_total",
				Help:      "Platform fees paid into the treasury",
			},
		),
		LaunchCounterType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "launches_total",
				Help:      "Launch tasks by outcome",
			},
			[]string{"status"},
		),
	}
}
