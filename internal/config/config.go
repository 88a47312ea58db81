package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix for every setting.
const Prefix = "DOKRAG"

type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`

	EmbeddingProvider   string `envconfig:"EMBEDDING_PROVIDER" default:"openai"`
	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingBaseURL    string `envconfig:"EMBEDDING_BASE_URL"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"0"`

	EmbedWorkers    int `envconfig:"EMBED_WORKERS" default:"4"`
	EmbedBatchSize  int `envconfig:"EMBED_BATCH_SIZE" default:"16"`
	EmbedMaxRetries int `envconfig:"EMBED_MAX_RETRIES" default:"3"`

	SearchLimit         int           `envconfig:"SEARCH_LIMIT" default:"10"`
	SimilarityThreshold float64       `envconfig:"SIMILARITY_THRESHOLD" default:"0.7"`
	LexicalWeight       float64       `envconfig:"LEXICAL_WEIGHT" default:"0.4"`
	VectorWeight        float64       `envconfig:"VECTOR_WEIGHT" default:"0.6"`
	SearchTimeout       time.Duration `envconfig:"SEARCH_TIMEOUT" default:"5s"`

	WorkerPollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"5s"`

	OpsAddr string `envconfig:"OPS_ADDR" default:":9090"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"dokrag-raw"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.EmbeddingProvider {
	case "openai", "local":
	default:
		errs = append(errs, fmt.Errorf("EMBEDDING_PROVIDER must be openai or local, got %q", c.EmbeddingProvider))
	}
	if c.EmbedWorkers < 1 {
		errs = append(errs, errors.New("EMBED_WORKERS must be at least 1"))
	}
	if c.EmbedBatchSize < 1 {
		errs = append(errs, errors.New("EMBED_BATCH_SIZE must be at least 1"))
	}
	if c.EmbedMaxRetries < 1 {
		errs = append(errs, errors.New("EMBED_MAX_RETRIES must be at least 1"))
	}
	if c.SearchLimit < 1 {
		errs = append(errs, errors.New("SEARCH_LIMIT must be at least 1"))
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		errs = append(errs, errors.New("SIMILARITY_THRESHOLD must be within [0, 1]"))
	}
	if c.LexicalWeight < 0 || c.VectorWeight < 0 {
		errs = append(errs, errors.New("search weights must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// HasEmbeddings reports whether an embedding provider can be constructed.
func (c *Config) HasEmbeddings() bool {
	if c.EmbeddingProvider == "local" {
		return c.EmbeddingBaseURL != ""
	}
	return c.OpenAIAPIKey != ""
}
