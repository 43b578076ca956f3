package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK               = "ok"
	OutcomeQueryError       = "query_error"
	OutcomeInvalidQuestion  = "invalid_question"
	OutcomeSchemaFetch      = "schema_error"
	OutcomeModelUnavailable = "model_unavailable"
)

var (
	askRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askdb_ask_requests_total",
			Help: "Total number of questions handled, by outcome.",
		},
		[]string{"outcome"},
	)
	modelLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "askdb_model_latency_ms",
			Help:    "Completion endpoint round-trip latency in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		},
	)
	queryLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "askdb_query_latency_ms",
			Help:    "Generated query execution latency in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000, 30000},
		},
	)
	extractionStrategyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "askdb_extraction_strategy_total",
			Help: "Total number of SQL extractions, by the rule that matched.",
		},
		[]string{"strategy"},
	)
	auditWriteFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "askdb_audit_write_failures_total",
			Help: "Total number of audit records that could not be persisted.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		askRequestsTotal,
		modelLatencyMs,
		queryLatencyMs,
		extractionStrategyTotal,
		auditWriteFailuresTotal,
	)
}

func ObserveAsk(outcome string) {
	if outcome == "" {
		outcome = OutcomeOK
	}
	askRequestsTotal.WithLabelValues(outcome).Inc()
}

func ObserveModelLatency(elapsed time.Duration) {
	modelLatencyMs.Observe(float64(elapsed.Milliseconds()))
}

func ObserveQueryLatency(elapsed time.Duration) {
	queryLatencyMs.Observe(float64(elapsed.Milliseconds()))
}

func ObserveExtraction(strategy string) {
	extractionStrategyTotal.WithLabelValues(strategy).Inc()
}

func IncrementAuditWriteFailure() {
	auditWriteFailuresTotal.Inc()
}
