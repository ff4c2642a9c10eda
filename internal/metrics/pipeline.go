package metrics

import "github.com/prometheus/client_golang/prometheus"

// Chunking, ingestion and retrieval Prometheus metrics.
var (
	ChunksCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_created_total",
			Help:      "Chunks produced by the chunking engine",
		},
		[]string{"strategy"},
	)

	IngestFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_files_total",
			Help:      "Files seen by the ingestion pipeline",
		},
		[]string{"status"}, // "ok" / "skipped" / "error"
	)

	IngestChunksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_chunks_total",
			Help:      "Chunks written to the vector store by ingestion",
		},
	)

	RouteDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_decisions_total",
			Help:      "Query router decisions",
		},
		[]string{"route"},
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Time from query to first generated token",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"task"},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "Chat completion streams opened",
		},
		[]string{"model", "status"},
	)

	GenerationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_errors_total",
			Help:      "Errors surfaced as error tokens",
		},
		[]string{"stage"}, // "embed" / "search" / "generate"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers chunking, ingestion and retrieval metrics.
// Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(ChunksCreatedTotal)
	prometheus.MustRegister(IngestFilesTotal)
	prometheus.MustRegister(IngestChunksTotal)
	prometheus.MustRegister(RouteDecisionsTotal)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationErrorsTotal)
	pipelineMetricsRegistered = true
}
