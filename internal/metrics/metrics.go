// Package metrics provides Prometheus metrics for ingestion, embedding and search.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	DocumentsIngested   *prometheus.CounterVec
	SectionsPerDocument *prometheus.HistogramVec
	EmbeddingBatches    *prometheus.CounterVec
	EmbeddingDuration   prometheus.Histogram
	SearchRequests      *prometheus.CounterVec
	SearchDuration      prometheus.Histogram
	SearchResults       prometheus.Histogram
	BackfillJobs        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DocumentsIngested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dokrag_documents_ingested_total",
				Help: "Documents ingested, by genre and final status",
			},
			[]string{"genre", "status"},
		),
		SectionsPerDocument: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dokrag_sections_per_document",
				Help:    "Number of sections produced per segmented document",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
			},
			[]string{"genre"},
		),
		EmbeddingBatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dokrag_embedding_batches_total",
				Help: "Embedding provider batches, by outcome",
			},
			[]string{"outcome"},
		),
		EmbeddingDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dokrag_embedding_batch_duration_seconds",
				Help:    "Duration of embedding provider batches including retries",
				Buckets: prometheus.DefBuckets,
			},
		),
		SearchRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dokrag_search_requests_total",
				Help: "Search requests, by result mode",
			},
			[]string{"mode"},
		),
		SearchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dokrag_search_duration_seconds",
				Help:    "Duration of hybrid search requests",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		SearchResults: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dokrag_search_results",
				Help:    "Number of hits returned per search",
				Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
			},
		),
		BackfillJobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dokrag_backfill_jobs_total",
				Help: "Embedding backfill jobs, by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveIngest records a finished ingestion.
func (m *Metrics) ObserveIngest(genre, status string, sections int) {
	if m == nil {
		return
	}
	m.DocumentsIngested.WithLabelValues(genre, status).Inc()
	m.SectionsPerDocument.WithLabelValues(genre).Observe(float64(sections))
}

// ObserveEmbedding records one embedding batch.
func (m *Metrics) ObserveEmbedding(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.EmbeddingBatches.WithLabelValues(outcome).Inc()
	m.EmbeddingDuration.Observe(d.Seconds())
}

// ObserveSearch records one search request.
func (m *Metrics) ObserveSearch(mode string, results int, d time.Duration) {
	if m == nil {
		return
	}
	m.SearchRequests.WithLabelValues(mode).Inc()
	m.SearchResults.Observe(float64(results))
	m.SearchDuration.Observe(d.Seconds())
}

// ObserveBackfill records one processed backfill job.
func (m *Metrics) ObserveBackfill(outcome string) {
	if m == nil {
		return
	}
	m.BackfillJobs.WithLabelValues(outcome).Inc()
}
