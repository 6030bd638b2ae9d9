// Package embedding adapts hosted embedding services to the
// repositories.Embedder interface.
package embedding

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/voxdocs/voxdocs/domain/repositories"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "text-embedding-3-small"
)

// OpenAIConfig holds configuration for the OpenAI embedding adapter.
// Required fields:
// - APIKey: Your OpenAI API key
// Optional fields with defaults:
// - BaseURL: API base URL (default: "https://api.openai.com/v1")
// - Model: embedding model (default: "text-embedding-3-small")
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewOpenAIConfigFromEnv creates an OpenAIConfig from environment variables.
func NewOpenAIConfigFromEnv() OpenAIConfig {
	return OpenAIConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("EMBEDDING_BASE_URL"),
		Model:   os.Getenv("EMBEDDING_MODEL"),
	}
}

// ValidateOpenAIConfig validates the OpenAIConfig.
func ValidateOpenAIConfig(config OpenAIConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("openai API key is required")
	}
	return nil
}

// OpenAIEmbedder implements the Embedder interface over the OpenAI
// embeddings API (or any OpenAI-compatible endpoint).
type OpenAIEmbedder struct {
	embedder *embeddings.EmbedderImpl
	model    string
	logger   *zap.Logger
}

var _ repositories.Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder creates a new embedding adapter.
func NewOpenAIEmbedder(config OpenAIConfig, logger *zap.Logger) (*OpenAIEmbedder, error) {
	if err := ValidateOpenAIConfig(config); err != nil {
		return nil, err
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultModel
		logger.Info("Using default embedding model", zap.String("model", model))
	}

	llm, err := openai.New(
		openai.WithToken(config.APIKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &OpenAIEmbedder{
		embedder: embedder,
		model:    model,
		logger:   logger,
	}, nil
}

// EmbedDocuments embeds a batch of texts, one vector per text.
func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}

	e.logger.Debug("Embedded documents",
		zap.Int("count", len(vectors)),
		zap.String("model", e.model))
	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return vector, nil
}
