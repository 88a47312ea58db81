package service

import (
	"context"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/google/uuid"
)

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	Status domain.DocumentStatus
	Genre  domain.Genre
	Limit  int
}

// DocumentRepository persists documents. Lookups return
// domain.ErrDocumentNotFound when nothing matches.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetBySourceKey(ctx context.Context, sourceKey string) (*domain.Document, error)
	GetMany(ctx context.Context, ids []string) (map[string]*domain.Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error
	Delete(ctx context.Context, id string) error
}

// SectionRepository persists the sections of one document. Sections must
// arrive in order so that parents are written before their children.
type SectionRepository interface {
	CreateBatch(ctx context.Context, documentID string, sections []*domain.Section) error
	ListByDocument(ctx context.Context, documentID string) ([]*domain.Section, error)
}

// ChunkRepository persists chunks and their embeddings.
type ChunkRepository interface {
	CreateBatch(ctx context.Context, chunks []*domain.Chunk) error
	ListByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error)
	// ListUnembedded returns chunks without a vector under model, ordered by chunk id.
	ListUnembedded(ctx context.Context, documentID, model string) ([]*domain.Chunk, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32, model string) error
}

// EmbeddingJobRepository enqueues backfill work.
type EmbeddingJobRepository interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
}

// UUIDGenerator generates unique identifiers
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}
