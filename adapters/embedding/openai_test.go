package embedding

import (
	"os"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestNewOpenAIEmbedder(t *testing.T) {
	logger := zaptest.NewLogger(t)

	os.Unsetenv("OPENAI_API_KEY")
	config := NewOpenAIConfigFromEnv()
	_, err := NewOpenAIEmbedder(config, logger)
	if err == nil {
		t.Error("Expected error when API key is not set")
	}

	os.Setenv("OPENAI_API_KEY", "test-api-key")
	defer os.Unsetenv("OPENAI_API_KEY")

	config = NewOpenAIConfigFromEnv()
	embedder, err := NewOpenAIEmbedder(config, logger)
	if err != nil {
		t.Fatalf("Failed to create OpenAIEmbedder: %v", err)
	}

	if embedder.model != defaultModel {
		t.Errorf("Expected default model %q, got %q", defaultModel, embedder.model)
	}
}
