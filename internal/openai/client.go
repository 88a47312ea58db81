package openai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/embeddings"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.AdaEmbeddingV2
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from ada-002
	DefaultEmbeddingDimensions = 1536

	ProviderOpenAI = "openai"
	ProviderLocal  = "local"
)

var (
	// ErrEmptyText is returned when a text in the batch is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding has the wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when the hosted provider has no API key
	ErrNoAPIKey = errors.New("openai provider requires an API key")
	// ErrNoBaseURL is returned when the local provider has no host
	ErrNoBaseURL = errors.New("embedding base URL is required for the local provider")
	// ErrCountMismatch is returned when the provider answers with a different number of vectors
	ErrCountMismatch = errors.New("embedding count does not match input count")
)

// EmbeddingAPI is a batched embedding backend.
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Client validates batches and vectors around an EmbeddingAPI.
type Client struct {
	api        EmbeddingAPI
	dimensions int
	modelTag   string
}

// OpenAIAdapter talks to the hosted OpenAI API (or any base URL speaking it) via go-openai.
type OpenAIAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIAdapter(apiKey, baseURL string, model openai.EmbeddingModel) *OpenAIAdapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// CreateEmbeddings sends the whole batch in one request and returns vectors
// in input order.
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	out := make([][]float32, len(data))
	for i, d := range data {
		out[i] = d.Embedding
	}
	return out, nil
}

// LocalAdapter embeds through an OpenAI-compatible local host using langchaingo.
type LocalAdapter struct {
	embedder embeddings.Embedder
}

func NewLocalAdapter(baseURL, token, model string) (*LocalAdapter, error) {
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if token == "" {
		token = "none"
	}
	llm, err := lcopenai.New(
		lcopenai.WithBaseURL(baseURL),
		lcopenai.WithToken(token),
		lcopenai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create local embedding client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create local embedder: %w", err)
	}
	return &LocalAdapter{embedder: embedder}, nil
}

func (a *LocalAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	return a.embedder.EmbedDocuments(ctx, texts)
}

type Config struct {
	Provider            string
	APIKey              string
	BaseURL             string
	EmbeddingModel      string
	EmbeddingDimensions int
}

// ModelTag identifies the provider and model that produced a vector. Vectors
// with different tags are never compared.
func (c Config) ModelTag() string {
	provider := strings.ToLower(c.Provider)
	if provider == "" {
		provider = ProviderOpenAI
	}
	model := c.EmbeddingModel
	if model == "" && provider == ProviderOpenAI {
		model = string(DefaultEmbeddingModel)
	}
	return provider + "/" + model
}

// NewClient creates a hosted OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return &Client{
		api:        NewOpenAIAdapter(apiKey, "", DefaultEmbeddingModel),
		dimensions: DefaultEmbeddingDimensions,
		modelTag:   Config{APIKey: apiKey}.ModelTag(),
	}
}

// NewClientWithConfig picks the adapter for cfg.Provider.
func NewClientWithConfig(cfg Config) (*Client, error) {
	var (
		api        EmbeddingAPI
		dimensions = cfg.EmbeddingDimensions
	)
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, ErrNoAPIKey
		}
		api = NewOpenAIAdapter(cfg.APIKey, cfg.BaseURL, openai.EmbeddingModel(cfg.EmbeddingModel))
		if dimensions <= 0 {
			dimensions = DefaultEmbeddingDimensions
		}
	case ProviderLocal:
		local, err := NewLocalAdapter(cfg.BaseURL, cfg.APIKey, cfg.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		api = local
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	return &Client{api: api, dimensions: dimensions, modelTag: cfg.ModelTag()}, nil
}

// ModelTag returns the tag stored next to every vector this client produces.
func (c *Client) ModelTag() string {
	return c.modelTag
}

// GenerateEmbeddings embeds texts as one batch. The result has one vector per
// input, in input order. A dimensions value of zero disables the size check.
func (c *Client) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, ErrEmptyText
		}
	}

	vectors, err := c.api.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCountMismatch, len(vectors), len(texts))
	}

	for _, v := range vectors {
		if c.dimensions > 0 && len(v) != c.dimensions {
			return nil, fmt.Errorf("%w: got %d, expected %d", ErrWrongDimensions, len(v), c.dimensions)
		}
	}
	return vectors, nil
}
