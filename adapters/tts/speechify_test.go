package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestNewSpeechifyTTS(t *testing.T) {
	logger := zaptest.NewLogger(t)

	// Test without API key
	os.Unsetenv("SPEECHIFY_API_KEY")
	config := NewSpeechifyConfigFromEnv()
	_, err := NewSpeechifyTTS(config, logger)
	if err == nil {
		t.Error("Expected error when API key is not set")
	}

	// Test with API key
	os.Setenv("SPEECHIFY_API_KEY", "test-api-key")
	defer os.Unsetenv("SPEECHIFY_API_KEY")

	config = NewSpeechifyConfigFromEnv()
	speechify, err := NewSpeechifyTTS(config, logger)
	if err != nil {
		t.Fatalf("Failed to create SpeechifyTTS: %v", err)
	}

	if speechify.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", speechify.apiKey)
	}

	if speechify.audioFormat != defaultAudioFormat {
		t.Errorf("Expected default audio format '%s', got '%s'", defaultAudioFormat, speechify.audioFormat)
	}

	if speechify.modelID != defaultModelID {
		t.Errorf("Expected default model ID '%s', got '%s'", defaultModelID, speechify.modelID)
	}
}

func TestSynthesizeSpeechEmptyText(t *testing.T) {
	speechify, err := NewSpeechifyTTS(SpeechifyConfig{APIKey: "test-api-key"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create SpeechifyTTS: %v", err)
	}

	ctx := context.Background()
	if _, err := speechify.SynthesizeSpeech(ctx, "", "voice-1"); err == nil {
		t.Error("Expected error for empty text")
	}
	if _, err := speechify.SynthesizeSpeech(ctx, "   ", "voice-1"); err == nil {
		t.Error("Expected error for whitespace-only text")
	}
}

func TestSynthesizeSpeech(t *testing.T) {
	audio := []byte("fake-mp3-bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		var request speechifyRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if request.AudioFormat != "mp3" {
			t.Errorf("Expected mp3 format, got %q", request.AudioFormat)
		}
		if !request.Options.LoudnessNormalization || !request.Options.TextNormalization {
			t.Error("Expected both normalization options enabled")
		}
		if request.VoiceID != "voice-1" {
			t.Errorf("Expected voice-1, got %q", request.VoiceID)
		}

		json.NewEncoder(w).Encode(speechifyResponse{
			AudioData:               base64.StdEncoding.EncodeToString(audio),
			AudioFormat:             "mp3",
			BillableCharactersCount: 42,
		})
	}))
	defer server.Close()

	speechify, err := NewSpeechifyTTS(SpeechifyConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create SpeechifyTTS: %v", err)
	}

	synthesis, err := speechify.SynthesizeSpeech(context.Background(), "hello world", "voice-1")
	if err != nil {
		t.Fatalf("SynthesizeSpeech failed: %v", err)
	}

	if string(synthesis.Audio) != string(audio) {
		t.Errorf("Decoded audio does not match payload")
	}
	if synthesis.BillableCharacters != 42 {
		t.Errorf("Expected 42 billable characters, got %d", synthesis.BillableCharacters)
	}
	if synthesis.Format != "mp3" {
		t.Errorf("Expected mp3 format, got %q", synthesis.Format)
	}
}

func TestListVoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/voices" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]speechifyVoice{
			{ID: "v1", Gender: "female", DisplayName: "Aria"},
			{ID: "v2", Gender: "male"},
		})
	}))
	defer server.Close()

	speechify, err := NewSpeechifyTTS(SpeechifyConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create SpeechifyTTS: %v", err)
	}

	voices, err := speechify.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices failed: %v", err)
	}

	if len(voices) != 2 {
		t.Fatalf("Expected 2 voices, got %d", len(voices))
	}
	if voices[0].ID != "v1" || voices[0].DisplayName != "Aria" {
		t.Errorf("Unexpected first voice %+v", voices[0])
	}
	// Missing display name resolves to the zero value at the boundary.
	if voices[1].DisplayName != "" {
		t.Errorf("Expected empty display name, got %q", voices[1].DisplayName)
	}
}

func TestListVoicesServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	speechify, err := NewSpeechifyTTS(SpeechifyConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create SpeechifyTTS: %v", err)
	}

	if _, err := speechify.ListVoices(context.Background()); err == nil {
		t.Error("Expected error from failing catalog service")
	}
}
