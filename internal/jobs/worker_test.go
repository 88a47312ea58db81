package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEmbeddingJobRepository is a mock implementation of EmbeddingJobRepository
type MockEmbeddingJobRepository struct {
	mock.Mock
}

func (m *MockEmbeddingJobRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.EmbeddingJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EmbeddingJob), args.Error(1)
}

func (m *MockEmbeddingJobRepository) UpdateStatus(ctx context.Context, jobID string, status domain.EmbeddingJobStatus, errMsg string) error {
	args := m.Called(ctx, jobID, status, errMsg)
	return args.Error(0)
}

func (m *MockEmbeddingJobRepository) IncrementRetries(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

// MockEmbeddingService is a mock implementation of EmbeddingService
type MockEmbeddingService struct {
	mock.Mock
}

func (m *MockEmbeddingService) EmbedDocument(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func newTestWorker(repo EmbeddingJobRepository, svc EmbeddingService) (*EmbeddingWorker, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return NewEmbeddingWorker(repo, svc, m, zerolog.Nop()), m
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(errors.New("transient"))

	worker := NewWorker(mockProcessor, 100*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

func TestWorker_FirstPassRunsImmediately(t *testing.T) {
	ran := make(chan struct{}, 1)
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Run(func(mock.Arguments) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}).Return(nil)

	worker := NewWorker(mockProcessor, time.Hour, zerolog.Nop())
	go worker.Start(context.Background())

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("first pass did not run before the poll interval")
	}

	worker.Stop()
	worker.Stop()
}

func TestEmbeddingWorker_ProcessJobs_NoPendingJobs(t *testing.T) {
	mockRepo := new(MockEmbeddingJobRepository)
	mockService := new(MockEmbeddingService)

	mockRepo.On("ClaimPending", mock.Anything, ClaimBatchSize).Return([]*domain.EmbeddingJob{}, nil)

	worker, _ := newTestWorker(mockRepo, mockService)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockService.AssertNotCalled(t, "EmbedDocument", mock.Anything, mock.Anything)
}

func TestEmbeddingWorker_ProcessJobs_Success(t *testing.T) {
	mockRepo := new(MockEmbeddingJobRepository)
	mockService := new(MockEmbeddingService)

	job := &domain.EmbeddingJob{
		ID:         "job-1",
		DocumentID: "doc-1",
		Status:     domain.EmbeddingJobStatusProcessing,
	}

	mockRepo.On("ClaimPending", mock.Anything, ClaimBatchSize).Return([]*domain.EmbeddingJob{job}, nil)
	mockService.On("EmbedDocument", mock.Anything, "doc-1").Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.EmbeddingJobStatusCompleted, "").Return(nil)

	worker, m := newTestWorker(mockRepo, mockService)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockService.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackfillJobs.WithLabelValues(OutcomeCompleted)))
}

func TestEmbeddingWorker_ProcessJobs_FailureWithRetry(t *testing.T) {
	mockRepo := new(MockEmbeddingJobRepository)
	mockService := new(MockEmbeddingService)

	job := &domain.EmbeddingJob{
		ID:         "job-1",
		DocumentID: "doc-1",
		Status:     domain.EmbeddingJobStatusProcessing,
		Retries:    0,
	}

	mockRepo.On("ClaimPending", mock.Anything, ClaimBatchSize).Return([]*domain.EmbeddingJob{job}, nil)
	mockService.On("EmbedDocument", mock.Anything, "doc-1").Return(domain.ErrEmbeddingProvider)
	mockRepo.On("IncrementRetries", mock.Anything, "job-1").Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.EmbeddingJobStatusPending, mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(nil)

	worker, m := newTestWorker(mockRepo, mockService)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockService.AssertNumberOfCalls(t, "EmbedDocument", 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackfillJobs.WithLabelValues(OutcomeRetry)))
}

func TestEmbeddingWorker_ProcessJobs_MaxRetriesExceeded(t *testing.T) {
	mockRepo := new(MockEmbeddingJobRepository)
	mockService := new(MockEmbeddingService)

	job := &domain.EmbeddingJob{
		ID:         "job-1",
		DocumentID: "doc-1",
		Status:     domain.EmbeddingJobStatusProcessing,
		Retries:    2,
	}

	mockRepo.On("ClaimPending", mock.Anything, ClaimBatchSize).Return([]*domain.EmbeddingJob{job}, nil)
	mockService.On("EmbedDocument", mock.Anything, "doc-1").Return(errors.New("embedding failed"))
	mockRepo.On("IncrementRetries", mock.Anything, "job-1").Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.EmbeddingJobStatusFailed, mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(nil)

	worker, m := newTestWorker(mockRepo, mockService)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockService.AssertExpectations(t)
	// The document keeps its cleaned status: the worker touches nothing but the job.
	assert.Len(t, mockService.Calls, 1)
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, "job-1", domain.EmbeddingJobStatusPending, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackfillJobs.WithLabelValues(OutcomeFailed)))
}

func TestEmbeddingWorker_ProcessJobs_MultipleJobs(t *testing.T) {
	mockRepo := new(MockEmbeddingJobRepository)
	mockService := new(MockEmbeddingService)

	jobs := []*domain.EmbeddingJob{
		{ID: "job-1", DocumentID: "doc-1", Status: domain.EmbeddingJobStatusProcessing},
		{ID: "job-2", DocumentID: "doc-2", Status: domain.EmbeddingJobStatusProcessing},
	}

	mockRepo.On("ClaimPending", mock.Anything, ClaimBatchSize).Return(jobs, nil)

	mockService.On("EmbedDocument", mock.Anything, "doc-1").Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.EmbeddingJobStatusCompleted, "").Return(nil)

	mockService.On("EmbedDocument", mock.Anything, "doc-2").Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-2", domain.EmbeddingJobStatusCompleted, "").Return(nil)

	worker, _ := newTestWorker(mockRepo, mockService)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockService.AssertExpectations(t)
}

func TestEmbeddingWorker_ProcessJobs_CancelledReleasesJobs(t *testing.T) {
	mockRepo := new(MockEmbeddingJobRepository)
	mockService := new(MockEmbeddingService)

	ctx, cancel := context.WithCancel(context.Background())
	jobs := []*domain.EmbeddingJob{
		{ID: "job-1", DocumentID: "doc-1", Status: domain.EmbeddingJobStatusProcessing},
		{ID: "job-2", DocumentID: "doc-2", Status: domain.EmbeddingJobStatusProcessing},
	}

	mockRepo.On("ClaimPending", mock.Anything, ClaimBatchSize).Return(jobs, nil)
	mockService.On("EmbedDocument", mock.Anything, "doc-1").Run(func(mock.Arguments) { cancel() }).Return(context.Canceled)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.EmbeddingJobStatusPending, "").Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-2", domain.EmbeddingJobStatusPending, "").Return(nil)

	worker, _ := newTestWorker(mockRepo, mockService)
	err := worker.ProcessJobs(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "IncrementRetries", mock.Anything, mock.Anything)
	mockService.AssertNotCalled(t, "EmbedDocument", mock.Anything, "doc-2")
}

func TestEmbeddingWorker_ProcessJobs_RepositoryError(t *testing.T) {
	mockRepo := new(MockEmbeddingJobRepository)
	mockService := new(MockEmbeddingService)

	mockRepo.On("ClaimPending", mock.Anything, ClaimBatchSize).Return(nil, errors.New("database error"))

	worker, _ := newTestWorker(mockRepo, mockService)
	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch pending jobs")
	mockRepo.AssertExpectations(t)
}
