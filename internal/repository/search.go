package repository

import (
	"context"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// TextSearchConfig is the Postgres text search configuration used both by the
// generated content_tsv column and by query parsing.
const TextSearchConfig = "indonesian"

// SearchRepository runs candidate searches over chunks of indexed documents.
type SearchRepository struct {
	db dbtx
}

func NewSearchRepository(pool *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{db: pool}
}

// LexicalSearch ranks chunks with ts_rank_cd (normalization 1, log length).
func (r *SearchRepository) LexicalSearch(ctx context.Context, query string, limit int) ([]service.ScoredChunk, error) {
	return r.scored(ctx,
		`SELECT c.id, c.chunk_id, c.document_id, c.content, c.metadata,
		        ts_rank_cd(c.content_tsv, q, 1)::float8 AS score
		 FROM chunks c
		 JOIN documents d ON d.id = c.document_id,
		      plainto_tsquery('`+TextSearchConfig+`', $1) q
		 WHERE d.status = $2
		   AND c.content_tsv @@ q
		 ORDER BY score DESC, c.document_id, c.chunk_id
		 LIMIT $3`,
		query, domain.DocumentStatusIndexed, limit,
	)
}

// VectorSearch returns cosine similarity (1 - cosine distance) against
// chunks embedded by model with the same dimensionality as embedding.
func (r *SearchRepository) VectorSearch(ctx context.Context, embedding []float32, model string, limit int) ([]service.ScoredChunk, error) {
	if len(embedding) == 0 {
		return []service.ScoredChunk{}, nil
	}
	return r.scored(ctx,
		`SELECT c.id, c.chunk_id, c.document_id, c.content, c.metadata,
		        1 - (c.embedding <=> $1) AS score
		 FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 WHERE d.status = $2
		   AND c.embedding IS NOT NULL
		   AND c.embedding_model = $3
		   AND vector_dims(c.embedding) = $4
		 ORDER BY c.embedding <=> $1, c.document_id, c.chunk_id
		 LIMIT $5`,
		pgvector.NewVector(embedding), domain.DocumentStatusIndexed, model, len(embedding), limit,
	)
}

func (r *SearchRepository) scored(ctx context.Context, sql string, args ...any) ([]service.ScoredChunk, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (service.ScoredChunk, error) {
		var c service.ScoredChunk
		err := row.Scan(&c.ChunkRowID, &c.ChunkID, &c.DocumentID, &c.Content, &c.Metadata, &c.Score)
		return c, err
	})
}
