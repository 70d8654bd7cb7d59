package scheduler

import (
	"errors"

	"github.com/kbtwatch/tracker/app/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle outcome label values
const (
	outcomeOK           = "ok"
	outcomeNetworkError = "network_error"
	outcomeParseError   = "parse_error"
	outcomeStoreError   = "store_error"
	outcomePanic        = "panic"
)

var (
	// Completed ingestion cycles partitioned by outcome
	ingestionCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_cycles_total",
			Help: "Total number of ingestion cycles executed, by outcome",
		},
		[]string{"outcome"},
	)

	// Newly stored results across all cycles
	ingestionResultsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingestion_results_stored_total",
			Help: "Total number of new results written by ingestion cycles",
		},
	)

	// Cycle duration in seconds
	ingestionCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingestion_cycle_duration_seconds",
			Help:    "Ingestion cycle latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// parseErrorBody extracts the captured raw body from a ParseError chain
func parseErrorBody(err error) []byte {
	var pe *services.ParseError
	if errors.As(err, &pe) {
		return pe.Body
	}
	return nil
}
