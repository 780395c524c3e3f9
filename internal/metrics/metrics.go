// Package metrics records studyrag operation outcomes as Prometheus metrics.
//
// Collectors live on a private registry so tests and multiple containers in
// one process never collide on the default registerer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

const namespace = "studyrag"

// Metrics holds the collectors and the registry they are registered on.
type Metrics struct {
	registry *prometheus.Registry

	documentsIngested *prometheus.CounterVec
	chunksIndexed     *prometheus.CounterVec
	ingestFailures    *prometheus.CounterVec
	queries           *prometheus.CounterVec
	queryDuration     *prometheus.HistogramVec
	providerRetries   *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documentsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_ingested_total",
			Help:      "Documents committed to the index.",
		}, []string{"file_type"}),
		chunksIndexed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_indexed_total",
			Help:      "Chunks committed to the index.",
		}, []string{"file_type"}),
		ingestFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_failures_total",
			Help:      "Ingestions that failed, by error kind.",
		}, []string{"kind"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Query operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Latency of query operations.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		providerRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_retries_total",
			Help:      "Retried calls to embedding and generative providers.",
		}, []string{"provider"}),
	}

	m.registry.MustRegister(
		m.documentsIngested,
		m.chunksIndexed,
		m.ingestFailures,
		m.queries,
		m.queryDuration,
		m.providerRetries,
	)
	return m
}

// DocumentIngested counts a committed document and its chunks.
func (m *Metrics) DocumentIngested(fileType string, chunks int) {
	m.documentsIngested.WithLabelValues(fileType).Inc()
	m.chunksIndexed.WithLabelValues(fileType).Add(float64(chunks))
}

// IngestFailed counts a failed ingestion.
func (m *Metrics) IngestFailed(kind string) {
	m.ingestFailures.WithLabelValues(kind).Inc()
}

// QueryCompleted records the outcome and latency of ask, quiz or summarize.
func (m *Metrics) QueryCompleted(operation, outcome string, elapsed time.Duration) {
	m.queries.WithLabelValues(operation, outcome).Inc()
	m.queryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ProviderRetry counts a retried provider call.
// Its signature matches resilience.WithRetryHook.
func (m *Metrics) ProviderRetry(provider string, _ error) {
	m.providerRetries.WithLabelValues(provider).Inc()
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
