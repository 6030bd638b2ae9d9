// Package stt adapts speech recognition services to the
// repositories.SpeechToText interface.
package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voxdocs/voxdocs/domain/repositories"
)

const (
	defaultWhisperBaseURL = "https://api.openai.com/v1"
	defaultWhisperModel   = "whisper-1"
	defaultWhisperTimeout = 60 * time.Second
)

// WhisperConfig holds configuration for the Whisper transcription adapter.
// Required fields:
// - APIKey: Your OpenAI API key
// Optional fields with defaults:
// - APIBaseURL: API base URL (default: "https://api.openai.com/v1")
// - Model: transcription model (default: "whisper-1")
type WhisperConfig struct {
	APIKey     string
	APIBaseURL string
	Model      string
}

// NewWhisperConfigFromEnv creates a WhisperConfig from environment variables.
func NewWhisperConfigFromEnv() WhisperConfig {
	return WhisperConfig{
		APIKey:     os.Getenv("OPENAI_API_KEY"),
		APIBaseURL: os.Getenv("WHISPER_API_BASE_URL"),
		Model:      os.Getenv("WHISPER_MODEL"),
	}
}

// WhisperSTT implements SpeechToText using OpenAI's Whisper API.
type WhisperSTT struct {
	apiKey     string
	apiBaseURL string
	model      string
	client     *http.Client
	logger     *zap.Logger
}

var _ repositories.SpeechToText = (*WhisperSTT)(nil)

// NewWhisperSTT creates a new Whisper transcription adapter.
func NewWhisperSTT(config WhisperConfig, logger *zap.Logger) (*WhisperSTT, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultWhisperBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultWhisperModel
	}

	return &WhisperSTT{
		apiKey:     config.APIKey,
		apiBaseURL: apiBaseURL,
		model:      model,
		client:     &http.Client{Timeout: defaultWhisperTimeout},
		logger:     logger,
	}, nil
}

// TranscribeAudio submits a recorded clip and returns its transcript.
func (w *WhisperSTT) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if len(audioData) == 0 {
		return "", fmt.Errorf("audio data cannot be empty")
	}

	filename := "audio." + encodingExtension(config.Encoding)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart request: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return "", fmt.Errorf("failed to write audio payload: %w", err)
	}
	if err := writer.WriteField("model", w.model); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	if config.Language != "" {
		if err := writer.WriteField("language", config.Language); err != nil {
			return "", fmt.Errorf("failed to write language field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart request: %w", err)
	}

	url := fmt.Sprintf("%s/audio/transcriptions", w.apiBaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("whisper API returned error %d: %s", resp.StatusCode, string(errorBody))
	}

	var transcription struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&transcription); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	w.logger.Info("Transcription completed",
		zap.Int("audioBytes", len(audioData)),
		zap.Int("transcriptLength", len(transcription.Text)))
	return strings.TrimSpace(transcription.Text), nil
}

func encodingExtension(encoding string) string {
	switch strings.ToLower(encoding) {
	case "mp3":
		return "mp3"
	case "ogg_opus", "opus":
		return "ogg"
	case "webm_opus", "webm":
		return "webm"
	default:
		return "wav"
	}
}
