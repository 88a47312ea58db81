package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/metrics"
	"github.com/cloo-solutions/dokrag/internal/parser"
	"github.com/cloo-solutions/dokrag/internal/telemetry"
	"github.com/rs/zerolog"
)

// BatchEmbedder embeds chunk texts. EmbedAll returns partial results
// alongside an error when some batches failed.
type BatchEmbedder interface {
	EmbedAll(ctx context.Context, texts []string) ([][]float32, error)
	ModelTag() string
}

// IngestInput is one document to ingest.
type IngestInput struct {
	SourceKey string
	Filename  string
	Text      string
	Genre     domain.Genre
}

// IngestOutput reports what was stored.
type IngestOutput struct {
	Document        *domain.Document
	Chunks          []*domain.Chunk
	Warnings        []domain.Warning
	Unchanged       bool
	EmbeddingFailed bool
	ReusedVectors   int
}

// IngestionService parses, embeds and persists documents.
type IngestionService struct {
	documents DocumentRepository
	chunks    ChunkRepository
	txRunner  TxRunner
	embedder  BatchEmbedder
	uuidGen   UUIDGenerator
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewIngestionService creates a new IngestionService instance
func NewIngestionService(
	documents DocumentRepository,
	chunks ChunkRepository,
	txRunner TxRunner,
	embedder BatchEmbedder,
	uuidGen UUIDGenerator,
	m *metrics.Metrics,
	log zerolog.Logger,
) *IngestionService {
	if uuidGen == nil {
		uuidGen = &DefaultUUIDGenerator{}
	}
	return &IngestionService{
		documents: documents,
		chunks:    chunks,
		txRunner:  txRunner,
		embedder:  embedder,
		uuidGen:   uuidGen,
		metrics:   m,
		log:       log.With().Str("component", "ingest").Logger(),
	}
}

// Ingest runs the whole pipeline for one document. Re-ingesting the same
// source key replaces the previous version; chunks whose content hash is
// unchanged keep their vectors.
func (s *IngestionService) Ingest(ctx context.Context, in IngestInput) (*IngestOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestionService.Ingest", telemetry.SpanAttributes{
		SourceKey: in.SourceKey,
		Genre:     string(in.Genre),
		Operation: "ingest",
	})
	defer span.End()
	start := time.Now()

	if strings.TrimSpace(in.SourceKey) == "" {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation,
			domain.ErrMissingRequiredField.Message, errors.New("source key"))
	}
	if err := domain.ValidateGenre(in.Genre); in.Genre != "" && err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, domain.ErrEmptyText
	}

	res := parser.Parse(in.Text, in.Genre)
	if strings.TrimSpace(res.CleanText) == "" {
		return nil, domain.ErrEmptyText
	}

	doc, err := s.buildDocument(in, res)
	if err != nil {
		return nil, err
	}
	span.SetTag("document_id", doc.ID)
	span.SetTag("genre", string(doc.Genre))
	chunks := AssembleChunks(doc, s.uuidGen)
	modelTag := s.embedder.ModelTag()

	prior, priorChunks, err := s.loadPrior(ctx, in.SourceKey)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if prior != nil && unchanged(prior, priorChunks, chunks, modelTag) {
		s.log.Info().
			Str("document_id", prior.ID).
			Str("source_key", prior.SourceKey).
			Msg("document unchanged, skipping re-ingest")
		return &IngestOutput{
			Document:      prior,
			Chunks:        priorChunks,
			Warnings:      prior.Warnings,
			Unchanged:     true,
			ReusedVectors: len(priorChunks),
		}, nil
	}

	reused := reuseEmbeddings(chunks, priorChunks, modelTag)
	embedErr := s.embedMissing(ctx, chunks, modelTag)
	if embedErr != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	out := &IngestOutput{Document: doc, Chunks: chunks, ReusedVectors: reused}
	if embedErr != nil {
		out.EmbeddingFailed = true
		doc.AddWarning(domain.NewWarning(domain.ErrCodeEmbeddingFailure, embedErr.Error()))
		if err := doc.Transition(domain.DocumentStatusCleaned); err != nil {
			return nil, err
		}
		s.log.Warn().Err(embedErr).Str("document_id", doc.ID).Msg("embedding failed, storing document as cleaned")
	} else {
		if err := doc.Transition(domain.DocumentStatusEmbedded); err != nil {
			return nil, err
		}
		if err := doc.Transition(domain.DocumentStatusIndexed); err != nil {
			return nil, err
		}
	}

	if err := s.persist(ctx, prior, doc, chunks, out.EmbeddingFailed); err != nil {
		span.SetError(err)
		telemetry.CaptureError(ctx, err)
		return nil, err
	}

	out.Warnings = doc.Warnings
	s.metrics.ObserveIngest(string(doc.Genre), string(doc.Status), len(doc.Sections))
	s.log.Info().
		Str("document_id", doc.ID).
		Str("source_key", doc.SourceKey).
		Str("genre", string(doc.Genre)).
		Str("status", string(doc.Status)).
		Int("sections", len(doc.Sections)).
		Int("chunks", len(chunks)).
		Int("reused_vectors", reused).
		Int("warnings", len(doc.Warnings)).
		Dur("duration", time.Since(start)).
		Msg("document ingested")
	return out, nil
}

// List returns stored documents without their text.
func (s *IngestionService) List(ctx context.Context, filter DocumentFilter) ([]*domain.Document, error) {
	return s.documents.List(ctx, filter)
}

func (s *IngestionService) buildDocument(in IngestInput, res *parser.Result) (*domain.Document, error) {
	now := time.Now().UTC()
	filename := in.Filename
	if filename == "" {
		filename = in.SourceKey
	}
	doc := &domain.Document{
		ID:        s.uuidGen.NewString(),
		SourceKey: in.SourceKey,
		Filename:  filename,
		Genre:     res.Genre,
		Nomor:     res.Metadata.Nomor,
		Tanggal:   res.Metadata.Tanggal,
		Judul:     res.Metadata.Judul,
		Tentang:   res.Metadata.Tentang,
		Tempat:    res.Metadata.Tempat,
		RawText:   in.Text,
		CleanText: res.CleanText,
		Status:    domain.DocumentStatusPending,
		Warnings:  append([]domain.Warning(nil), res.Warnings...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.Sections = FinalizeSections(res)
	AssignSectionIDs(doc.Sections, s.uuidGen)
	if err := doc.Transition(domain.DocumentStatusSegmented); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *IngestionService) loadPrior(ctx context.Context, sourceKey string) (*domain.Document, []*domain.Chunk, error) {
	prior, err := s.documents.GetBySourceKey(ctx, sourceKey)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, persistenceError(fmt.Errorf("look up source key: %w", err))
	}
	priorChunks, err := s.chunks.ListByDocument(ctx, prior.ID)
	if err != nil {
		return nil, nil, persistenceError(fmt.Errorf("load previous chunks: %w", err))
	}
	return prior, priorChunks, nil
}

func (s *IngestionService) embedMissing(ctx context.Context, chunks []*domain.Chunk, modelTag string) error {
	var (
		pending []*domain.Chunk
		texts   []string
	)
	for _, c := range chunks {
		if !c.Embedded() {
			pending = append(pending, c)
			texts = append(texts, c.Content)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	vectors, err := s.embedder.EmbedAll(ctx, texts)
	for i, c := range pending {
		if i < len(vectors) && len(vectors[i]) > 0 {
			c.Embedding = vectors[i]
			c.EmbeddingModel = modelTag
		}
	}
	return err
}

func (s *IngestionService) persist(ctx context.Context, prior, doc *domain.Document, chunks []*domain.Chunk, enqueue bool) error {
	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if prior != nil {
			if err := repos.Documents().Delete(ctx, prior.ID); err != nil {
				return fmt.Errorf("delete previous version: %w", err)
			}
		}
		if err := repos.Documents().Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := repos.Sections().CreateBatch(ctx, doc.ID, doc.Sections); err != nil {
			return fmt.Errorf("create sections: %w", err)
		}
		if err := repos.Chunks().CreateBatch(ctx, chunks); err != nil {
			return fmt.Errorf("create chunks: %w", err)
		}
		if enqueue {
			job := domain.NewBackfillJob(s.uuidGen.NewString(), doc.ID, time.Now().UTC())
			if err := repos.EmbeddingJobs().Create(ctx, job); err != nil {
				return fmt.Errorf("enqueue embedding job: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return persistenceError(err)
	}
	return nil
}

// reuseEmbeddings copies vectors from the previous version onto chunks with
// the same content hash and model tag. It returns how many were reused.
func reuseEmbeddings(chunks, prior []*domain.Chunk, modelTag string) int {
	byHash := make(map[string][]float32, len(prior))
	for _, p := range prior {
		if p.Embedded() && p.EmbeddingModel == modelTag {
			byHash[p.ContentHash] = p.Embedding
		}
	}
	reused := 0
	for _, c := range chunks {
		if v, ok := byHash[c.ContentHash]; ok {
			c.Embedding = v
			c.EmbeddingModel = modelTag
			reused++
		}
	}
	return reused
}

// unchanged reports whether prior is an indexed version with exactly the same
// chunk hashes, all embedded under modelTag.
func unchanged(prior *domain.Document, priorChunks, chunks []*domain.Chunk, modelTag string) bool {
	if prior.Status != domain.DocumentStatusIndexed || len(priorChunks) != len(chunks) {
		return false
	}
	for i, p := range priorChunks {
		c := chunks[i]
		if p.ChunkID != c.ChunkID || p.ContentHash != c.ContentHash {
			return false
		}
		if !p.Embedded() || p.EmbeddingModel != modelTag {
			return false
		}
	}
	return true
}

func persistenceError(err error) error {
	var de *domain.DomainError
	if errors.As(err, &de) && de.Code == domain.ErrCodePersistence {
		return err
	}
	return domain.NewDomainErrorWithCause(domain.ErrCodePersistence, domain.ErrPersistence.Message, err)
}
