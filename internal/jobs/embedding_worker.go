package jobs

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/metrics"
	"github.com/cloo-solutions/dokrag/internal/telemetry"
	"github.com/rs/zerolog"
)

const (
	// MaxRetries is the maximum number of attempts for a backfill job
	MaxRetries = 3

	// ClaimBatchSize bounds how many jobs one poll claims.
	ClaimBatchSize = 20
)

// Backfill outcomes reported to metrics.
const (
	OutcomeCompleted = "completed"
	OutcomeRetry     = "retry"
	OutcomeFailed    = "failed"
)

// EmbeddingJobRepository defines the interface for embedding job persistence
type EmbeddingJobRepository interface {
	// ClaimPending moves pending jobs to processing and returns them
	ClaimPending(ctx context.Context, limit int) ([]*domain.EmbeddingJob, error)

	UpdateStatus(ctx context.Context, jobID string, status domain.EmbeddingJobStatus, errMsg string) error

	IncrementRetries(ctx context.Context, jobID string) error
}

// EmbeddingService completes the vectors of one document.
type EmbeddingService interface {
	EmbedDocument(ctx context.Context, documentID string) error
}

// EmbeddingWorker processes backfill jobs for documents stored as cleaned.
type EmbeddingWorker struct {
	repo    EmbeddingJobRepository
	service EmbeddingService
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewEmbeddingWorker creates a new EmbeddingWorker instance
func NewEmbeddingWorker(repo EmbeddingJobRepository, service EmbeddingService, m *metrics.Metrics, log zerolog.Logger) *EmbeddingWorker {
	return &EmbeddingWorker{
		repo:    repo,
		service: service,
		metrics: m,
		log:     log.With().Str("component", "backfill_worker").Logger(),
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *EmbeddingWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, ClaimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	w.log.Debug().Int("jobs", len(jobs)).Msg("processing pending embedding jobs")

	for _, job := range jobs {
		if ctx.Err() != nil {
			w.release(ctx, job)
			continue
		}
		if err := w.processJob(ctx, job); err != nil {
			w.log.Error().Err(err).Str("job_id", job.ID).Msg("error processing job")
		}
	}

	return nil
}

func (w *EmbeddingWorker) processJob(ctx context.Context, job *domain.EmbeddingJob) error {
	if job.DocumentID == "" {
		return fmt.Errorf("job %s has no document_id", job.ID)
	}

	ctx, span := telemetry.StartTransaction(ctx, "backfill "+job.DocumentID, "jobs.backfill")
	defer span.End()
	span.SetTag("job_id", job.ID)
	span.SetTag("document_id", job.DocumentID)

	w.log.Debug().Str("job_id", job.ID).Str("document_id", job.DocumentID).Msg("processing job")
	if err := w.service.EmbedDocument(ctx, job.DocumentID); err != nil {
		span.SetError(err)
		if ctx.Err() != nil {
			w.release(ctx, job)
			return nil
		}
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	w.metrics.ObserveBackfill(OutcomeCompleted)
	w.log.Info().Str("job_id", job.ID).Str("document_id", job.DocumentID).Msg("job completed")
	return nil
}

// handleJobFailure handles a failed job with retry logic. After MaxRetries
// attempts only the job is marked failed; the document stays cleaned.
func (w *EmbeddingWorker) handleJobFailure(ctx context.Context, job *domain.EmbeddingJob, jobErr error) error {
	w.log.Warn().Err(jobErr).Str("job_id", job.ID).Msg("job failed")

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Exhausted(MaxRetries) {
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		w.log.Error().Str("job_id", job.ID).Int("max_retries", MaxRetries).Msg("job exceeded max retries, marking as failed")
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		w.metrics.ObserveBackfill(OutcomeFailed)
		telemetry.CaptureError(ctx, fmt.Errorf("backfill job %s: %w", job.ID, jobErr))
		w.log.Warn().Str("document_id", job.DocumentID).Msg("document left cleaned until re-queued")
		return nil
	}

	telemetry.AddBreadcrumb(ctx, "backfill", fmt.Sprintf("job %s attempt %d failed", job.ID, job.Attempt()))
	w.log.Info().Str("job_id", job.ID).Int32("attempt", job.Attempt()).Int("max_retries", MaxRetries).Msg("job will be retried")
	errMsg := fmt.Sprintf("retry %d: %v", job.Attempt(), jobErr)
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}
	w.metrics.ObserveBackfill(OutcomeRetry)

	return nil
}

// release puts a claimed job back to pending after shutdown interrupted it.
func (w *EmbeddingWorker) release(ctx context.Context, job *domain.EmbeddingJob) {
	if err := w.repo.UpdateStatus(context.WithoutCancel(ctx), job.ID, domain.EmbeddingJobStatusPending, ""); err != nil {
		w.log.Error().Err(err).Str("job_id", job.ID).Msg("failed to release job")
	}
}
