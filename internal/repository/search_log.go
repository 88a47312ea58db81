package repository

import (
	"context"
	"encoding/json"

	"github.com/cloo-solutions/dokrag/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchLogRepository stores one row per search for offline evaluation.
type SearchLogRepository struct {
	pool *pgxpool.Pool
}

func NewSearchLogRepository(pool *pgxpool.Pool) *SearchLogRepository {
	return &SearchLogRepository{pool: pool}
}

func (r *SearchLogRepository) CreateSearchLog(ctx context.Context, entry service.SearchLogEntry) (string, error) {
	results := entry.Results
	if results == nil {
		results = []service.SearchLogResult{}
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return "", err
	}

	var id string
	err = r.pool.QueryRow(ctx,
		`INSERT INTO search_logs (query, mode, fallback_reason, threshold, result_limit, result_count, results, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		entry.Query,
		string(entry.Mode),
		nullableString(entry.FallbackReason),
		entry.Threshold,
		entry.Limit,
		len(results),
		resultsJSON,
		entry.DurationMs,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
