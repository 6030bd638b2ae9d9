// Package llm adapts hosted chat-completion services to the
// repositories.Answerer interface.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/voxdocs/voxdocs/domain/entities"
	"github.com/voxdocs/voxdocs/domain/repositories"
)

const defaultOpenAIModel = "gpt-3.5-turbo"

// OpenAIConfig holds configuration for the OpenAI answerer.
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// NewOpenAIConfigFromEnv creates an OpenAIConfig from environment variables.
func NewOpenAIConfigFromEnv() OpenAIConfig {
	return OpenAIConfig{
		APIKey: os.Getenv("OPENAI_API_KEY"),
		Model:  os.Getenv("OPENAI_CHAT_MODEL"),
	}
}

// OpenAIAnswerer answers queries with an OpenAI chat-completion model
// conditioned on retrieved passages.
type OpenAIAnswerer struct {
	llm    *openai.LLM
	model  string
	logger *zap.Logger
}

var _ repositories.Answerer = (*OpenAIAnswerer)(nil)

// NewOpenAIAnswerer creates a new OpenAI answerer.
func NewOpenAIAnswerer(config OpenAIConfig, logger *zap.Logger) (*OpenAIAnswerer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
		logger.Info("Using default chat model", zap.String("model", model))
	}

	client, err := openai.New(
		openai.WithToken(config.APIKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	return &OpenAIAnswerer{
		llm:    client,
		model:  model,
		logger: logger,
	}, nil
}

// Answer generates a reply to the query from the retrieved passages.
// Service errors propagate; there is no local retry.
func (a *OpenAIAnswerer) Answer(ctx context.Context, query string, passages []entities.DocumentSegment) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query cannot be empty")
	}

	prompt := buildPrompt(query, passages)
	answer, err := llms.GenerateFromSinglePrompt(ctx, a.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	a.logger.Info("Generated answer",
		zap.String("model", a.model),
		zap.Int("passages", len(passages)),
		zap.Int("answer_length", len(answer)))
	return strings.TrimSpace(answer), nil
}
