package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_NoDSN(t *testing.T) {
	shutdown, err := Init(Config{}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NotPanics(t, shutdown)
}

func TestStartSpan_WithoutSentry(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "ingest", SpanAttributes{
		SourceKey: "skep-001.txt",
		Genre:     "SKEP",
		Operation: "ingest",
	})
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	assert.NotPanics(t, func() {
		span.SetTag("document_id", "doc-1")
		span.SetError(errors.New("boom"))
		span.End()
	})
}

func TestStartSpan_NestsUnderParent(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "search", SpanAttributes{Operation: "search"})
	defer parent.End()

	childCtx, child := StartSpan(ctx, "search.lexical", SpanAttributes{})
	defer child.End()

	assert.NotNil(t, childCtx)
	assert.Equal(t, parent.inner.TraceID, child.inner.TraceID)
}

func TestSpan_NilInner(t *testing.T) {
	var s Span
	assert.NotPanics(t, func() {
		s.SetTag("k", "v")
		s.SetError(errors.New("x"))
		s.End()
	})
	assert.NotNil(t, s.Context())
}
