// Package tts adapts the Speechify text-to-speech service to the
// repositories.TextToSpeech interface.
package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voxdocs/voxdocs/domain/entities"
	"github.com/voxdocs/voxdocs/domain/repositories"
)

const (
	defaultAPIBaseURL  = "https://api.sws.speechify.com"
	defaultAudioFormat = "mp3"
	defaultLanguage    = "en-US"
	defaultModelID     = "simba-english"
	defaultTimeout     = 60 * time.Second
)

// SpeechifyConfig holds configuration for the Speechify TTS adapter.
// Required fields:
// - APIKey: Your Speechify API key
// Optional fields with defaults:
// - APIBaseURL: The base URL for the Speechify API (default: "https://api.sws.speechify.com")
// - AudioFormat: The output audio format (default: "mp3")
// - Language: The synthesis language code (default: "en-US")
// - ModelID: The model ID to use (default: "simba-english")
type SpeechifyConfig struct {
	APIKey      string
	APIBaseURL  string
	AudioFormat string
	Language    string
	ModelID     string
}

// ValidateSpeechifyConfig validates the SpeechifyConfig.
func ValidateSpeechifyConfig(config SpeechifyConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("speechify API key is required")
	}
	return nil
}

// NewSpeechifyConfigFromEnv creates a new SpeechifyConfig from environment
// variables.
func NewSpeechifyConfigFromEnv() SpeechifyConfig {
	return SpeechifyConfig{
		APIKey:      os.Getenv("SPEECHIFY_API_KEY"),
		APIBaseURL:  os.Getenv("SPEECHIFY_API_BASE_URL"),
		AudioFormat: os.Getenv("SPEECHIFY_AUDIO_FORMAT"),
		Language:    os.Getenv("SPEECHIFY_LANGUAGE"),
		ModelID:     os.Getenv("SPEECHIFY_MODEL_ID"),
	}
}

// SpeechifyTTS implements TextToSpeech using the Speechify API.
type SpeechifyTTS struct {
	apiKey      string
	apiBaseURL  string
	audioFormat string
	language    string
	modelID     string
	client      *http.Client
	logger      *zap.Logger
}

var _ repositories.TextToSpeech = (*SpeechifyTTS)(nil)

// speechifyOptions mirrors the synthesis options payload. Both
// normalizations are always requested.
type speechifyOptions struct {
	LoudnessNormalization bool `json:"loudness_normalization"`
	TextNormalization     bool `json:"text_normalization"`
}

type speechifyRequest struct {
	Input       string           `json:"input"`
	VoiceID     string           `json:"voice_id"`
	AudioFormat string           `json:"audio_format"`
	Language    string           `json:"language,omitempty"`
	Model       string           `json:"model,omitempty"`
	Options     speechifyOptions `json:"options"`
}

type speechifyResponse struct {
	AudioData               string `json:"audio_data"`
	AudioFormat             string `json:"audio_format"`
	BillableCharactersCount int    `json:"billable_characters_count"`
}

type speechifyVoice struct {
	ID          string   `json:"id"`
	Gender      string   `json:"gender"`
	DisplayName string   `json:"display_name"`
	Locale      string   `json:"locale"`
	Tags        []string `json:"tags"`
}

// NewSpeechifyTTS creates a new Speechify TTS instance.
func NewSpeechifyTTS(config SpeechifyConfig, logger *zap.Logger) (*SpeechifyTTS, error) {
	if err := ValidateSpeechifyConfig(config); err != nil {
		return nil, err
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}

	audioFormat := config.AudioFormat
	if audioFormat == "" {
		audioFormat = defaultAudioFormat
	}

	language := config.Language
	if language == "" {
		language = defaultLanguage
	}

	modelID := config.ModelID
	if modelID == "" {
		modelID = defaultModelID
		logger.Info("Using default model ID", zap.String("modelID", modelID))
	}

	return &SpeechifyTTS{
		apiKey:      config.APIKey,
		apiBaseURL:  apiBaseURL,
		audioFormat: audioFormat,
		language:    language,
		modelID:     modelID,
		client:      &http.Client{Timeout: defaultTimeout},
		logger:      logger,
	}, nil
}

// SynthesizeSpeech converts text to audio with the given voice. The
// returned payload is decoded from the service's base64 envelope.
func (s *SpeechifyTTS) SynthesizeSpeech(ctx context.Context, text string, voiceID string) (*repositories.Synthesis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	if voiceID == "" {
		voiceID = entities.FallbackVoiceID
	}

	request := speechifyRequest{
		Input:       text,
		VoiceID:     voiceID,
		AudioFormat: s.audioFormat,
		Language:    s.language,
		Model:       s.modelID,
		Options: speechifyOptions{
			LoudnessNormalization: true,
			TextNormalization:     true,
		},
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/audio/speech", s.apiBaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("speechify API returned error %d: %s", resp.StatusCode, string(errorBody))
	}

	var synthesis speechifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&synthesis); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(synthesis.AudioData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio payload: %w", err)
	}

	s.logger.Info("Synthesized speech",
		zap.String("voiceID", voiceID),
		zap.Int("audioBytes", len(audio)),
		zap.Int("billableCharacters", synthesis.BillableCharactersCount))

	format := synthesis.AudioFormat
	if format == "" {
		format = s.audioFormat
	}

	return &repositories.Synthesis{
		Audio:              audio,
		Format:             format,
		BillableCharacters: synthesis.BillableCharactersCount,
	}, nil
}

// ListVoices retrieves the available voice catalog in service order.
// Missing optional attributes resolve to empty values here, at the
// service boundary.
func (s *SpeechifyTTS) ListVoices(ctx context.Context) ([]entities.Voice, error) {
	url := fmt.Sprintf("%s/v1/voices", s.apiBaseURL)

	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("speechify API returned error %d: %s", resp.StatusCode, string(errorBody))
	}

	var catalog []speechifyVoice
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	voices := make([]entities.Voice, 0, len(catalog))
	for _, v := range catalog {
		voices = append(voices, entities.Voice{
			ID:          v.ID,
			Gender:      v.Gender,
			DisplayName: v.DisplayName,
			Locale:      v.Locale,
			Tags:        v.Tags,
		})
	}

	s.logger.Info("Retrieved available voices", zap.Int("count", len(voices)))
	return voices, nil
}
