package domain

import "time"

// Chunk is the persisted, embeddable projection of a non-empty Section.
type Chunk struct {
	ID             string
	DocumentID     string
	SectionID      string
	SectionOrder   int
	ChunkID        int
	Content        string
	ContentHash    string
	Embedding      []float32
	EmbeddingModel string
	Metadata       map[string]any
	CreatedAt      time.Time
}

// Embedded reports whether the chunk carries a vector.
func (c *Chunk) Embedded() bool {
	return len(c.Embedding) > 0
}

// RetrievalHit is a ranked chunk returned by hybrid search.
type RetrievalHit struct {
	ChunkRowID       string         `json:"id"`
	ChunkID          int            `json:"chunk_id"`
	DocumentID       string         `json:"document_id"`
	Content          string         `json:"content"`
	Metadata         map[string]any `json:"metadata"`
	LexicalScore     float64        `json:"lexical_score"`
	VectorSimilarity float64        `json:"vector_similarity"`
	FusedScore       float64        `json:"fused_score"`
	Judul            string         `json:"judul,omitempty"`
	Nomor            string         `json:"nomor,omitempty"`
	Tanggal          string         `json:"tanggal,omitempty"`
	Tempat           string         `json:"tempat,omitempty"`
	Filename         string         `json:"filename,omitempty"`
	Genre            Genre          `json:"genre,omitempty"`
}
