package domain

import (
	"errors"
	"fmt"
	"time"
)

// EmbeddingJobStatus is the lifecycle state of a backfill job.
type EmbeddingJobStatus string

const (
	EmbeddingJobStatusPending    EmbeddingJobStatus = "pending"
	EmbeddingJobStatusProcessing EmbeddingJobStatus = "processing"
	EmbeddingJobStatusCompleted  EmbeddingJobStatus = "completed"
	EmbeddingJobStatusFailed     EmbeddingJobStatus = "failed"
)

// Valid reports whether s is one of the known job states.
func (s EmbeddingJobStatus) Valid() bool {
	switch s {
	case EmbeddingJobStatusPending, EmbeddingJobStatusProcessing,
		EmbeddingJobStatusCompleted, EmbeddingJobStatusFailed:
		return true
	}
	return false
}

// EmbeddingJob asks the backfill worker to embed the remaining chunks of a
// document that was stored without a complete set of vectors.
type EmbeddingJob struct {
	ID          string
	DocumentID  string
	Status      EmbeddingJobStatus
	Retries     int32
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// NewBackfillJob returns a pending job for documentID.
func NewBackfillJob(id, documentID string, now time.Time) *EmbeddingJob {
	return &EmbeddingJob{
		ID:         id,
		DocumentID: documentID,
		Status:     EmbeddingJobStatusPending,
		CreatedAt:  now,
	}
}

// Attempt is the 1-based number of the run currently in progress.
func (j *EmbeddingJob) Attempt() int32 {
	return j.Retries + 1
}

// Exhausted reports whether the current attempt is the last one allowed.
func (j *EmbeddingJob) Exhausted(maxAttempts int) bool {
	return int(j.Attempt()) >= maxAttempts
}

// Validate checks the fields a repository needs before persisting j.
func (j *EmbeddingJob) Validate() error {
	if j == nil {
		return errors.New("embedding job is nil")
	}
	if j.ID == "" {
		return errors.New("embedding job id is required")
	}
	if j.DocumentID == "" {
		return errors.New("embedding job document id is required")
	}
	if !j.Status.Valid() {
		return fmt.Errorf("embedding job status %q is invalid", j.Status)
	}
	if j.Retries < 0 {
		return errors.New("embedding job retries cannot be negative")
	}
	return nil
}
