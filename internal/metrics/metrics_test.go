package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveIngest("SKEP", "indexed", 6)
	m.ObserveIngest("SKEP", "indexed", 4)
	m.ObserveEmbedding("ok", 20*time.Millisecond)
	m.ObserveSearch("vector_fallback", 3, 5*time.Millisecond)
	m.ObserveBackfill("failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsIngested.WithLabelValues("SKEP", "indexed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmbeddingBatches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchRequests.WithLabelValues("vector_fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackfillJobs.WithLabelValues("failed")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.SectionsPerDocument))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveIngest("SE", "cleaned", 1)
		m.ObserveEmbedding("error", time.Second)
		m.ObserveSearch("hybrid", 0, time.Second)
		m.ObserveBackfill("completed")
	})
}

func TestNewUsesSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
