package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/metrics"
	"github.com/cloo-solutions/dokrag/internal/telemetry"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SearchMode says how a result set was produced.
type SearchMode string

const (
	SearchModeHybrid         SearchMode = "hybrid"
	SearchModeVectorFallback SearchMode = "vector_fallback"
	SearchModeUnavailable    SearchMode = "unavailable"
	SearchModeEmptyQuery     SearchMode = "empty_query"
)

const (
	DefaultSearchLimit   = 10
	DefaultThreshold     = 0.7
	DefaultLexicalWeight = 0.4
	DefaultVectorWeight  = 0.6
	DefaultSearchTimeout = 5 * time.Second

	searchLogTimeout = 2 * time.Second
)

// Fallback reasons.
const (
	ReasonNoFusedHits     = "no hybrid hits above threshold"
	ReasonLexicalFailed   = "lexical search failed"
	ReasonVectorFailed    = "vector search failed"
	ReasonTimeout         = "search timed out"
	ReasonQueryEmbedding  = "query embedding failed"
	ReasonFallbackFailure = "vector fallback failed"
)

// ScoredChunk is one candidate from a single search side.
type ScoredChunk struct {
	ChunkRowID string
	ChunkID    int
	DocumentID string
	Content    string
	Metadata   map[string]any
	Score      float64
}

// SearchRepository runs the two independent candidate searches. Both only
// consider chunks of indexed documents.
type SearchRepository interface {
	LexicalSearch(ctx context.Context, query string, limit int) ([]ScoredChunk, error)
	VectorSearch(ctx context.Context, embedding []float32, model string, limit int) ([]ScoredChunk, error)
}

// QueryEmbedder embeds search queries.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	ModelTag() string
}

// DocumentLookup fetches documents for hit enrichment.
type DocumentLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]*domain.Document, error)
}

// Weights are the fusion coefficients.
type Weights struct {
	Lexical float64
	Vector  float64
}

// RetrievalConfig holds search defaults. Zero fields take the package
// defaults; a query that wants no similarity floor sets SearchInput.Threshold.
type RetrievalConfig struct {
	Limit     int
	Threshold float64
	Weights   Weights
	Timeout   time.Duration
}

// DefaultRetrievalConfig returns K=10, T=0.7, 0.4/0.6 and a 5s budget.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		Limit:     DefaultSearchLimit,
		Threshold: DefaultThreshold,
		Weights:   Weights{Lexical: DefaultLexicalWeight, Vector: DefaultVectorWeight},
		Timeout:   DefaultSearchTimeout,
	}
}

// SearchInput is one query. Zero Limit and Timeout take the service
// defaults. A nil Threshold takes the configured floor; Threshold(0)
// disables it. Values outside [0, 1] are ignored.
type SearchInput struct {
	Query     string
	Limit     int
	Threshold *float64
	Timeout   time.Duration
}

// Threshold returns a similarity floor for SearchInput.
func Threshold(v float64) *float64 {
	return &v
}

// SearchOutput is a ranked result set together with how it was produced.
type SearchOutput struct {
	Query          string                `json:"query"`
	Mode           SearchMode            `json:"mode"`
	FallbackReason string                `json:"fallback_reason,omitempty"`
	Threshold      float64               `json:"threshold"`
	Limit          int                   `json:"limit"`
	Hits           []domain.RetrievalHit `json:"hits"`
	Duration       time.Duration         `json:"duration"`
}

// RetrievalService fuses lexical and semantic search over chunks.
type RetrievalService struct {
	repo      SearchRepository
	documents DocumentLookup
	embedder  QueryEmbedder
	logs      SearchLogRepository
	cfg       RetrievalConfig
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewRetrievalService creates a RetrievalService. logs may be nil.
func NewRetrievalService(
	repo SearchRepository,
	documents DocumentLookup,
	embedder QueryEmbedder,
	logs SearchLogRepository,
	cfg RetrievalConfig,
	m *metrics.Metrics,
	log zerolog.Logger,
) *RetrievalService {
	def := DefaultRetrievalConfig()
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = def.Weights
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &RetrievalService{
		repo:      repo,
		documents: documents,
		embedder:  embedder,
		logs:      logs,
		cfg:       cfg,
		metrics:   m,
		log:       log.With().Str("component", "search").Logger(),
	}
}

// Search never fails because of the embedding provider or the store: those
// end in a fallback or an unavailable result. It returns an error only when
// ctx itself is done.
func (s *RetrievalService) Search(ctx context.Context, in SearchInput) (*SearchOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()
	start := time.Now()

	out := &SearchOutput{
		Query:     strings.TrimSpace(in.Query),
		Mode:      SearchModeHybrid,
		Threshold: s.cfg.Threshold,
		Limit:     in.Limit,
		Hits:      []domain.RetrievalHit{},
	}
	if out.Limit <= 0 {
		out.Limit = s.cfg.Limit
	}
	if t := in.Threshold; t != nil && *t >= 0 && *t <= 1 {
		out.Threshold = *t
	}
	timeout := in.Timeout
	if timeout <= 0 {
		timeout = s.cfg.Timeout
	}

	if out.Query == "" {
		out.Mode = SearchModeEmptyQuery
		return out, nil
	}

	if err := s.run(ctx, out, timeout); err != nil {
		return nil, err
	}
	s.enrich(ctx, out.Hits)

	out.Duration = time.Since(start)
	s.metrics.ObserveSearch(string(out.Mode), len(out.Hits), out.Duration)
	s.record(ctx, out)

	ev := s.log.Info()
	if out.Mode != SearchModeHybrid {
		ev = s.log.Warn().Str("fallback_reason", out.FallbackReason)
	}
	ev.Str("mode", string(out.Mode)).
		Int("hits", len(out.Hits)).
		Float64("threshold", out.Threshold).
		Dur("duration", out.Duration).
		Msg("search completed")
	return out, nil
}

func (s *RetrievalService) run(ctx context.Context, out *SearchOutput, timeout time.Duration) error {
	subCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	model := s.embedder.ModelTag()
	embedding, err := s.embedder.EmbedQuery(subCtx, out.Query)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		out.Mode = SearchModeUnavailable
		out.FallbackReason = fmt.Sprintf("%s: %v", ReasonQueryEmbedding, err)
		return nil
	}

	var (
		lexical, vector []ScoredChunk
		lexErr, vecErr  error
		g               errgroup.Group
	)
	g.Go(func() error {
		lexical, lexErr = s.repo.LexicalSearch(subCtx, out.Query, out.Limit)
		return lexErr
	})
	g.Go(func() error {
		vector, vecErr = s.repo.VectorSearch(subCtx, embedding, model, out.Limit)
		return vecErr
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	var reason string
	switch {
	case errors.Is(subCtx.Err(), context.DeadlineExceeded) && (lexErr != nil || vecErr != nil):
		reason = ReasonTimeout
	case lexErr != nil:
		reason = fmt.Sprintf("%s: %v", ReasonLexicalFailed, lexErr)
	case vecErr != nil:
		reason = fmt.Sprintf("%s: %v", ReasonVectorFailed, vecErr)
	default:
		out.Hits = FuseScores(lexical, vector, s.cfg.Weights, out.Threshold, out.Limit)
		if len(out.Hits) > 0 {
			return nil
		}
		reason = ReasonNoFusedHits
	}

	out.Mode = SearchModeVectorFallback
	out.FallbackReason = reason

	if vecErr != nil {
		fallbackCtx, cancelFallback := context.WithTimeout(ctx, timeout)
		defer cancelFallback()
		vector, vecErr = s.repo.VectorSearch(fallbackCtx, embedding, model, out.Limit)
		if vecErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			out.Mode = SearchModeUnavailable
			out.FallbackReason = fmt.Sprintf("%s; %s: %v", reason, ReasonFallbackFailure, vecErr)
			return nil
		}
	}
	out.Hits = VectorOnly(vector, out.Threshold, out.Limit)
	return nil
}

// FusedScore combines a lexical rank and a vector similarity.
func FusedScore(lexical, vector float64, w Weights) float64 {
	return w.Lexical*lexical + w.Vector*vector
}

// FuseScores unions both candidate sets by chunk row id, scores each with
// FusedScore (a missing side counts as 0), drops everything whose vector
// similarity is below threshold or that the vector side never returned, and
// returns the top limit hits.
func FuseScores(lexical, vector []ScoredChunk, w Weights, threshold float64, limit int) []domain.RetrievalHit {
	type entry struct {
		hit      domain.RetrievalHit
		inVector bool
	}
	merged := make(map[string]*entry, len(lexical)+len(vector))
	get := func(c ScoredChunk) *entry {
		e, ok := merged[c.ChunkRowID]
		if !ok {
			e = &entry{hit: hitFrom(c)}
			merged[c.ChunkRowID] = e
		}
		return e
	}
	for _, c := range lexical {
		get(c).hit.LexicalScore = c.Score
	}
	for _, c := range vector {
		e := get(c)
		e.hit.VectorSimilarity = c.Score
		e.inVector = true
	}

	hits := make([]domain.RetrievalHit, 0, len(merged))
	for _, e := range merged {
		if !e.inVector || e.hit.VectorSimilarity < threshold {
			continue
		}
		e.hit.FusedScore = FusedScore(e.hit.LexicalScore, e.hit.VectorSimilarity, w)
		hits = append(hits, e.hit)
	}
	return rankHits(hits, limit)
}

// VectorOnly ranks vector candidates alone with the same floor.
func VectorOnly(vector []ScoredChunk, threshold float64, limit int) []domain.RetrievalHit {
	hits := make([]domain.RetrievalHit, 0, len(vector))
	for _, c := range vector {
		if c.Score < threshold {
			continue
		}
		h := hitFrom(c)
		h.VectorSimilarity = c.Score
		h.FusedScore = c.Score
		hits = append(hits, h)
	}
	return rankHits(hits, limit)
}

func hitFrom(c ScoredChunk) domain.RetrievalHit {
	return domain.RetrievalHit{
		ChunkRowID: c.ChunkRowID,
		ChunkID:    c.ChunkID,
		DocumentID: c.DocumentID,
		Content:    c.Content,
		Metadata:   c.Metadata,
	}
}

func rankHits(hits []domain.RetrievalHit, limit int) []domain.RetrievalHit {
	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.FusedScore != b.FusedScore {
			return a.FusedScore > b.FusedScore
		}
		if a.VectorSimilarity != b.VectorSimilarity {
			return a.VectorSimilarity > b.VectorSimilarity
		}
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		return a.ChunkID < b.ChunkID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func (s *RetrievalService) enrich(ctx context.Context, hits []domain.RetrievalHit) {
	if len(hits) == 0 || s.documents == nil {
		return
	}
	seen := make(map[string]bool, len(hits))
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if !seen[h.DocumentID] {
			seen[h.DocumentID] = true
			ids = append(ids, h.DocumentID)
		}
	}
	docs, err := s.documents.GetMany(ctx, ids)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load document metadata for hits")
		return
	}
	for i := range hits {
		d, ok := docs[hits[i].DocumentID]
		if !ok {
			continue
		}
		hits[i].Judul = d.Judul
		hits[i].Nomor = d.Nomor
		hits[i].Tanggal = d.Tanggal
		hits[i].Tempat = d.Tempat
		hits[i].Filename = d.Filename
		hits[i].Genre = d.Genre
	}
}

// record stores a search log entry. Failures are logged and ignored.
func (s *RetrievalService) record(ctx context.Context, out *SearchOutput) {
	if s.logs == nil {
		return
	}
	results := make([]SearchLogResult, len(out.Hits))
	for i, h := range out.Hits {
		results[i] = SearchLogResult{
			ID:               h.ChunkRowID,
			DocumentID:       h.DocumentID,
			ChunkID:          h.ChunkID,
			FusedScore:       h.FusedScore,
			VectorSimilarity: h.VectorSimilarity,
		}
	}
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), searchLogTimeout)
	defer cancel()
	if _, err := s.logs.CreateSearchLog(logCtx, SearchLogEntry{
		Query:          out.Query,
		Mode:           out.Mode,
		FallbackReason: out.FallbackReason,
		Threshold:      out.Threshold,
		Limit:          out.Limit,
		DurationMs:     int(out.Duration.Milliseconds()),
		Results:        results,
	}); err != nil {
		s.log.Warn().Err(err).Msg("failed to record search log")
	}
}
