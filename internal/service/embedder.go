package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/metrics"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
)

// EmbeddingClient defines the interface for generating embeddings in batches.
type EmbeddingClient interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	ModelTag() string
}

// EmbedderConfig bounds concurrency and retries of embedding calls.
type EmbedderConfig struct {
	Workers         int
	BatchSize       int
	MaxRetries      int
	InitialInterval time.Duration
}

// DefaultEmbedderConfig returns the ingestion defaults.
func DefaultEmbedderConfig() EmbedderConfig {
	return EmbedderConfig{
		Workers:         4,
		BatchSize:       16,
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
	}
}

func (c EmbedderConfig) normalized() EmbedderConfig {
	def := DefaultEmbedderConfig()
	if c.Workers < 1 {
		c.Workers = def.Workers
	}
	if c.BatchSize < 1 {
		c.BatchSize = def.BatchSize
	}
	if c.MaxRetries < 1 {
		c.MaxRetries = def.MaxRetries
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = def.InitialInterval
	}
	return c
}

// Embedder fans batches of texts out over a bounded goroutine pool and
// retries each batch with exponential backoff.
type Embedder struct {
	client  EmbeddingClient
	pool    *ants.Pool
	cfg     EmbedderConfig
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewEmbedder creates the pool. Call Release when done.
func NewEmbedder(client EmbeddingClient, cfg EmbedderConfig, m *metrics.Metrics, log zerolog.Logger) (*Embedder, error) {
	cfg = cfg.normalized()
	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("create embedding pool: %w", err)
	}
	return &Embedder{
		client:  client,
		pool:    pool,
		cfg:     cfg,
		metrics: m,
		log:     log.With().Str("component", "embedder").Logger(),
	}, nil
}

// Release stops the worker pool.
func (e *Embedder) Release() {
	e.pool.Release()
}

// ModelTag returns the tag of the underlying client.
func (e *Embedder) ModelTag() string {
	return e.client.ModelTag()
}

// EmbedAll embeds texts and returns one vector per text, in order. Batches
// that still fail after retries leave nil vectors behind, and the returned
// error wraps domain.ErrEmbeddingProvider. Vectors of successful batches are
// returned even when other batches failed.
func (e *Embedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	if len(texts) == 0 {
		return vectors, nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for start := 0; start < len(texts); start += e.cfg.BatchSize {
		end := min(start+e.cfg.BatchSize, len(texts))
		wg.Add(1)
		submitErr := e.pool.Submit(func() {
			defer wg.Done()
			out, err := e.embedBatch(ctx, texts[start:end])
			if err != nil {
				fail(fmt.Errorf("batch %d-%d: %w", start, end-1, err))
				return
			}
			copy(vectors[start:end], out)
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("batch %d-%d: submit: %w", start, end-1, submitErr))
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		return vectors, domain.NewDomainErrorWithCause(domain.ErrCodeEmbeddingFailure,
			domain.ErrEmbeddingProvider.Message, errors.Join(errs...))
	}
	return vectors, nil
}

// EmbedQuery embeds a single search query with the same retry policy.
func (e *Embedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	out, err := e.embedBatch(ctx, []string{query})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbeddingFailure,
			domain.ErrEmbeddingProvider.Message, err)
	}
	return out[0], nil
}

func (e *Embedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	start := time.Now()
	var out [][]float32
	attempt := 0

	op := func() error {
		attempt++
		vectors, err := e.client.GenerateEmbeddings(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			e.log.Debug().Err(err).Int("attempt", attempt).Int("batch_size", len(batch)).Msg("embedding batch failed")
			return err
		}
		if len(vectors) != len(batch) {
			return backoff.Permanent(fmt.Errorf("%w: got %d, want %d",
				domain.ErrEmbeddingDimensionMismatch, len(vectors), len(batch)))
		}
		out = vectors
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.cfg.InitialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(e.cfg.MaxRetries-1)), ctx)

	err := backoff.Retry(op, policy)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	e.metrics.ObserveEmbedding(outcome, time.Since(start))
	return out, err
}
