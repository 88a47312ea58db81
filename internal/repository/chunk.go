package repository

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

func vectorArg(embedding []float32) *pgvector.Vector {
	if len(embedding) == 0 {
		return nil
	}
	v := pgvector.NewVector(embedding)
	return &v
}

func (r *ChunkRepository) CreateBatch(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range chunks {
		md := c.Metadata
		if md == nil {
			md = map[string]any{}
		}
		var model *string
		if c.Embedded() {
			model = nullableString(c.EmbeddingModel)
		}
		batch.Queue(
			`INSERT INTO chunks (id, document_id, section_id, chunk_id, content, content_hash, embedding, embedding_model, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ID, c.DocumentID, nullableString(c.SectionID), c.ChunkID, c.Content, c.ContentHash,
			vectorArg(c.Embedding), model, md,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for _, c := range chunks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert chunk %d: %w", c.ChunkID, err)
		}
	}
	return nil
}

const chunkColumns = `c.id, c.document_id, c.section_id, s.section_order, c.chunk_id, c.content, c.content_hash,
	c.embedding, c.embedding_model, c.metadata, c.created_at`

func scanChunk(row pgx.Row) (*domain.Chunk, error) {
	var c domain.Chunk
	var sectionID, model pgtype.Text
	var sectionOrder pgtype.Int4
	var embedding *pgvector.Vector
	if err := row.Scan(&c.ID, &c.DocumentID, &sectionID, &sectionOrder, &c.ChunkID, &c.Content, &c.ContentHash,
		&embedding, &model, &c.Metadata, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.SectionID = textValue(sectionID)
	if sectionOrder.Valid {
		c.SectionOrder = int(sectionOrder.Int32)
	}
	if embedding != nil {
		c.Embedding = embedding.Slice()
		c.EmbeddingModel = textValue(model)
	}
	return &c, nil
}

func (r *ChunkRepository) queryChunks(ctx context.Context, sql string, args ...any) ([]*domain.Chunk, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (r *ChunkRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	return r.queryChunks(ctx,
		`SELECT `+chunkColumns+`
		 FROM chunks c
		 LEFT JOIN sections s ON s.id = c.section_id
		 WHERE c.document_id = $1
		 ORDER BY c.chunk_id`,
		documentID,
	)
}

// ListUnembedded returns chunks with no vector or a vector from another model.
func (r *ChunkRepository) ListUnembedded(ctx context.Context, documentID, model string) ([]*domain.Chunk, error) {
	return r.queryChunks(ctx,
		`SELECT `+chunkColumns+`
		 FROM chunks c
		 LEFT JOIN sections s ON s.id = c.section_id
		 WHERE c.document_id = $1
		   AND (c.embedding IS NULL OR c.embedding_model IS DISTINCT FROM $2)
		 ORDER BY c.chunk_id`,
		documentID, model,
	)
}

func (r *ChunkRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32, model string) error {
	if len(embedding) == 0 {
		return domain.ErrEmbeddingDimensionMismatch
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE chunks SET embedding = $1, embedding_model = $2 WHERE id = $3`,
		pgvector.NewVector(embedding), model, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("chunk %s not found", id)
	}
	return nil
}
