package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultQdrantHost = "localhost"
	defaultQdrantPort = 6334
	defaultPort       = "8080"

	// datasetName is the fixed dataset under the configured organization,
	// addressed as hub://<org>/<dataset>.
	datasetName = "voice-assistant"
)

// Config is the process-wide configuration, sourced from the environment.
// A missing SPEECHIFY_API_KEY disables voice synthesis only; a missing
// OPENAI_API_KEY disables core answering and is rejected at startup.
type Config struct {
	Port string

	OpenAIAPIKey    string
	SpeechifyAPIKey string

	VectorOrgID string
	QdrantHost  string
	QdrantPort  int

	LLMProvider  string // "openai" (default) or "gemini"
	GeminiAPIKey string

	MongoURI      string
	MongoDatabase string

	JWTSecret string
}

// Load reads configuration from .env (when present) and the environment.
func Load() (*Config, error) {
	// Best effort: running without a .env file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", defaultPort),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		SpeechifyAPIKey: os.Getenv("SPEECHIFY_API_KEY"),
		VectorOrgID:     os.Getenv("VECTOR_ORG_ID"),
		QdrantHost:      getEnv("QDRANT_HOST", defaultQdrantHost),
		QdrantPort:      getEnvInt("QDRANT_PORT", defaultQdrantPort),
		LLMProvider:     getEnv("LLM_PROVIDER", "openai"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "voxdocs"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the credentials required by the core answering path.
// Optional features degrade on their own and are not validated here.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	if c.VectorOrgID == "" {
		return fmt.Errorf("VECTOR_ORG_ID environment variable is required")
	}
	if c.LLMProvider == "gemini" && c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
	}
	return nil
}

// DatasetPath addresses the vector index namespace for this deployment.
func (c *Config) DatasetPath() string {
	return "hub://" + c.VectorOrgID + "/" + datasetName
}

// VoiceEnabled reports whether speech synthesis is configured.
func (c *Config) VoiceEnabled() bool {
	return c.SpeechifyAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
