//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/testutil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func setupPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pc.Terminate(context.Background()) })

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	t.Cleanup(pool.Close)
	return pool
}

func newDocument(sourceKey string, status domain.DocumentStatus) *domain.Document {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Document{
		ID:        uuid.NewString(),
		SourceKey: sourceKey,
		Filename:  sourceKey,
		Genre:     domain.GenreCircular,
		Nomor:     "SE/05/2022",
		Tanggal:   "1 Juni 2022",
		Judul:     "SURAT EDARAN",
		Tentang:   "PENGGUNAAN ALAT PELINDUNG DIRI",
		Tempat:    "Jakarta",
		RawText:   "raw",
		CleanText: "clean",
		Status:    status,
		Warnings:  []domain.Warning{domain.NewWarning(domain.ErrCodeExtractionMiss, "tanggal not found")},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// seedDocument stores a document with one section and one chunk per content.
func seedDocument(ctx context.Context, t *testing.T, pool *pgxpool.Pool, doc *domain.Document, contents []string, vectors [][]float32, model string) []*domain.Chunk {
	t.Helper()
	require.NoError(t, NewDocumentRepository(pool).Create(ctx, doc))

	sections := make([]*domain.Section, len(contents))
	chunks := make([]*domain.Chunk, len(contents))
	for i, content := range contents {
		sections[i] = &domain.Section{
			ID:       uuid.NewString(),
			Kind:     domain.SectionKindClause,
			Title:    content,
			Content:  content,
			Order:    i + 1,
			Metadata: map[string]any{"clause_number": i + 1},
		}
		chunks[i] = &domain.Chunk{
			ID:          uuid.NewString(),
			DocumentID:  doc.ID,
			SectionID:   sections[i].ID,
			ChunkID:     i + 1,
			Content:     content,
			ContentHash: uuid.NewString(),
			Metadata:    map[string]any{"section_title": content},
		}
		if i < len(vectors) && vectors[i] != nil {
			chunks[i].Embedding = vectors[i]
			chunks[i].EmbeddingModel = model
		}
	}
	require.NoError(t, NewSectionRepository(pool).CreateBatch(ctx, doc.ID, sections))
	require.NoError(t, NewChunkRepository(pool).CreateBatch(ctx, chunks))
	return chunks
}
