package service

import "context"

// SearchLogResult captures a single result entry for logging.
type SearchLogResult struct {
	ID               string  `json:"id"`
	DocumentID       string  `json:"document_id"`
	ChunkID          int     `json:"chunk_id"`
	FusedScore       float64 `json:"fused_score"`
	VectorSimilarity float64 `json:"vector_similarity"`
}

// SearchLogEntry captures a search request and its results.
type SearchLogEntry struct {
	Query          string
	Mode           SearchMode
	FallbackReason string
	Threshold      float64
	Limit          int
	DurationMs     int
	Results        []SearchLogResult
}

// SearchLogRepository persists search logs.
type SearchLogRepository interface {
	CreateSearchLog(ctx context.Context, entry SearchLogEntry) (string, error)
}
