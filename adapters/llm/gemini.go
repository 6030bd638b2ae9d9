package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/voxdocs/voxdocs/domain/entities"
	"github.com/voxdocs/voxdocs/domain/repositories"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiAnswerer is an alternative Answerer backed by Google's Gemini API,
// selected with LLM_PROVIDER=gemini.
type GeminiAnswerer struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.Answerer = (*GeminiAnswerer)(nil)

// NewGeminiAnswerer creates a new Gemini answerer.
func NewGeminiAnswerer(logger *zap.Logger) (*GeminiAnswerer, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiAnswerer{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Answer generates a reply to the query from the retrieved passages.
func (a *GeminiAnswerer) Answer(ctx context.Context, query string, passages []entities.DocumentSegment) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query cannot be empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buildPrompt(query, passages), genai.RoleUser),
	}

	response, err := a.client.Models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var answer string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			answer += part.Text
		}
	}
	if answer == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}

	a.logger.Info("Generated answer",
		zap.String("model", a.model),
		zap.Int("passages", len(passages)))
	return strings.TrimSpace(answer), nil
}
