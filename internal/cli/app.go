package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/cloo-solutions/dokrag/internal/config"
	"github.com/cloo-solutions/dokrag/internal/database"
	"github.com/cloo-solutions/dokrag/internal/logger"
	"github.com/cloo-solutions/dokrag/internal/metrics"
	"github.com/cloo-solutions/dokrag/internal/openai"
	"github.com/cloo-solutions/dokrag/internal/repository"
	"github.com/cloo-solutions/dokrag/internal/service"
	"github.com/cloo-solutions/dokrag/internal/storage"
	"github.com/cloo-solutions/dokrag/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

var (
	ErrEmbeddingsNotConfigured = errors.New("embedding provider not configured: set DOKRAG_OPENAI_API_KEY or DOKRAG_EMBEDDING_BASE_URL")
	ErrStorageNotConfigured    = errors.New("object storage not configured: set DOKRAG_S3_ENDPOINT and credentials")
)

// App owns the process-wide resources of a command. Everything except the
// logger and the metrics registry is created on first use, so commands that
// never touch the database do not need one.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	mu       sync.Mutex
	pool     *pgxpool.Pool
	embedder *service.Embedder
	store    *storage.S3Client
	closers  []func()
}

// NewApp builds the logger, metrics and Sentry client for one process.
func NewApp(cfg *config.Config, component string) *App {
	log := logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Pretty:    cfg.LogPretty,
		Output:    os.Stderr,
		Component: component,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := &App{
		Config:   cfg,
		Log:      log,
		Registry: reg,
		Metrics:  metrics.New(reg),
	}

	if cfg.HasSentry() {
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}
		flush, _ := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
		}, log)
		app.closers = append(app.closers, flush)
	}
	return app
}

// LoadApp loads the configuration from the environment and builds an App.
func LoadApp(component string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewApp(cfg, component), nil
}

// Close releases resources in reverse order of creation.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Pool connects to Postgres on first call.
func (a *App) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pool != nil {
		return a.pool, nil
	}

	pool, err := database.NewPool(ctx, database.Config{
		URL:      a.Config.DatabaseURL,
		MaxConns: a.Config.DBMaxConns,
	})
	if err != nil {
		return nil, err
	}
	a.pool = pool
	a.closers = append(a.closers, pool.Close)
	a.Log.Debug().Msg("connected to database")
	return pool, nil
}

// Embedder builds the pooled embedder for the configured provider.
func (a *App) Embedder() (*service.Embedder, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.embedder != nil {
		return a.embedder, nil
	}
	if !a.Config.HasEmbeddings() {
		return nil, ErrEmbeddingsNotConfigured
	}

	client, err := openai.NewClientWithConfig(openai.Config{
		Provider:            a.Config.EmbeddingProvider,
		APIKey:              a.Config.OpenAIAPIKey,
		BaseURL:             a.Config.EmbeddingBaseURL,
		EmbeddingModel:      a.Config.EmbeddingModel,
		EmbeddingDimensions: a.Config.EmbeddingDimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	embedder, err := service.NewEmbedder(client, service.EmbedderConfig{
		Workers:    a.Config.EmbedWorkers,
		BatchSize:  a.Config.EmbedBatchSize,
		MaxRetries: a.Config.EmbedMaxRetries,
	}, a.Metrics, a.Log)
	if err != nil {
		return nil, err
	}
	a.embedder = embedder
	a.closers = append(a.closers, embedder.Release)
	return embedder, nil
}

// Storage returns the S3 client used for s3:// sources and raw text archiving.
func (a *App) Storage(ctx context.Context) (*storage.S3Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store != nil {
		return a.store, nil
	}
	if !a.Config.HasS3() {
		return nil, ErrStorageNotConfigured
	}

	store, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        a.Config.S3Endpoint,
		Region:          a.Config.S3Region,
		AccessKeyID:     a.Config.S3AccessKey,
		SecretAccessKey: a.Config.S3SecretKey,
		Bucket:          a.Config.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

// RetrievalConfig maps the search settings onto the service defaults.
func (a *App) RetrievalConfig() service.RetrievalConfig {
	return service.RetrievalConfig{
		Limit:     a.Config.SearchLimit,
		Threshold: a.Config.SimilarityThreshold,
		Weights: service.Weights{
			Lexical: a.Config.LexicalWeight,
			Vector:  a.Config.VectorWeight,
		},
		Timeout: a.Config.SearchTimeout,
	}
}

func (a *App) IngestionService(ctx context.Context) (*service.IngestionService, error) {
	pool, err := a.Pool(ctx)
	if err != nil {
		return nil, err
	}
	embedder, err := a.Embedder()
	if err != nil {
		return nil, err
	}
	return service.NewIngestionService(
		repository.NewDocumentRepository(pool),
		repository.NewChunkRepository(pool),
		repository.NewTxRunner(pool),
		embedder,
		&service.DefaultUUIDGenerator{},
		a.Metrics,
		a.Log,
	), nil
}

func (a *App) RetrievalService(ctx context.Context) (*service.RetrievalService, error) {
	pool, err := a.Pool(ctx)
	if err != nil {
		return nil, err
	}
	embedder, err := a.Embedder()
	if err != nil {
		return nil, err
	}
	return service.NewRetrievalService(
		repository.NewSearchRepository(pool),
		repository.NewDocumentRepository(pool),
		embedder,
		repository.NewSearchLogRepository(pool),
		a.RetrievalConfig(),
		a.Metrics,
		a.Log,
	), nil
}

func (a *App) EmbeddingService(ctx context.Context) (*service.EmbeddingService, error) {
	pool, err := a.Pool(ctx)
	if err != nil {
		return nil, err
	}
	embedder, err := a.Embedder()
	if err != nil {
		return nil, err
	}
	return service.NewEmbeddingService(
		repository.NewDocumentRepository(pool),
		repository.NewChunkRepository(pool),
		embedder,
		a.Metrics,
		a.Log,
	), nil
}
