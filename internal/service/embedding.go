package service

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/metrics"
	"github.com/cloo-solutions/dokrag/internal/telemetry"
	"github.com/rs/zerolog"
)

// EmbeddingService completes documents that were stored without a full set
// of vectors. It is driven by the backfill worker.
type EmbeddingService struct {
	documents DocumentRepository
	chunks    ChunkRepository
	embedder  BatchEmbedder
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(documents DocumentRepository, chunks ChunkRepository, embedder BatchEmbedder, m *metrics.Metrics, log zerolog.Logger) *EmbeddingService {
	return &EmbeddingService{
		documents: documents,
		chunks:    chunks,
		embedder:  embedder,
		metrics:   m,
		log:       log.With().Str("component", "backfill").Logger(),
	}
}

// EmbedDocument embeds every chunk of the document that lacks a vector under
// the current model and promotes the document to indexed once none is left.
func (s *EmbeddingService) EmbedDocument(ctx context.Context, documentID string) error {
	ctx, span := telemetry.StartSpan(ctx, "EmbeddingService.EmbedDocument", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "backfill",
	})
	defer span.End()

	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	switch doc.Status {
	case domain.DocumentStatusIndexed:
		return nil
	case domain.DocumentStatusFailed:
		return fmt.Errorf("document %s is failed", documentID)
	}

	model := s.embedder.ModelTag()
	pending, err := s.chunks.ListUnembedded(ctx, documentID, model)
	if err != nil {
		return fmt.Errorf("list unembedded chunks: %w", err)
	}

	var (
		vectors  [][]float32
		embedErr error
	)
	if len(pending) > 0 {
		texts := make([]string, len(pending))
		for i, c := range pending {
			texts[i] = c.Content
		}
		vectors, embedErr = s.embedder.EmbedAll(ctx, texts)
	}

	stored := 0
	for i, c := range pending {
		if i >= len(vectors) || len(vectors[i]) == 0 {
			continue
		}
		if err := s.chunks.UpdateEmbedding(ctx, c.ID, vectors[i], model); err != nil {
			return fmt.Errorf("store embedding for chunk %d: %w", c.ChunkID, err)
		}
		stored++
	}
	if embedErr != nil {
		span.SetError(embedErr)
		s.log.Warn().Err(embedErr).
			Str("document_id", documentID).
			Int("stored", stored).
			Int("pending", len(pending)).
			Msg("backfill incomplete")
		return embedErr
	}

	if err := promoteToIndexed(doc); err != nil {
		return err
	}
	if err := s.documents.UpdateStatus(ctx, documentID, doc.Status); err != nil {
		return fmt.Errorf("update document status: %w", err)
	}

	s.log.Info().Str("document_id", documentID).Int("embedded", stored).Msg("document indexed")
	return nil
}

func promoteToIndexed(doc *domain.Document) error {
	if doc.Status == domain.DocumentStatusSegmented {
		if err := doc.Transition(domain.DocumentStatusEmbedded); err != nil {
			return err
		}
	}
	return doc.Transition(domain.DocumentStatusIndexed)
}
