package api

import (
	"time"

	"github.com/voxdocs/voxdocs/domain/entities"
)

// CreateSessionResponse represents a newly started conversation session.
// The greeting exchange is included so clients can render it immediately.
type CreateSessionResponse struct {
	ConversationID string        `json:"conversation_id"`
	Token          string        `json:"token"`
	ExpiresAt      time.Time     `json:"expires_at"`
	Greeting       entities.Turn `json:"greeting"`
	SelectedVoice  string        `json:"selected_voice_id"`
}

// QueryRequest represents one question within a session.
type QueryRequest struct {
	Query string `json:"query" validate:"required"`
}

// SourceRef points at the corpus segment an answer drew from.
type SourceRef struct {
	Source string `json:"source"`
	Index  int    `json:"index"`
}

// QueryResponse represents an answered question. AudioData carries the
// base64-encoded spoken answer and is omitted when synthesis is off.
type QueryResponse struct {
	Answer      string      `json:"answer"`
	Sources     []SourceRef `json:"sources"`
	AudioData   string      `json:"audio_data,omitempty"`
	AudioFormat string      `json:"audio_format,omitempty"`
}

// TranscribeResponse represents a transcription result. Text is empty
// when nothing intelligible was heard.
type TranscribeResponse struct {
	Text string `json:"text"`
}

// SelectVoiceRequest represents a voice selection.
type SelectVoiceRequest struct {
	VoiceID string `json:"voice_id"`
}

// VoicesResponse represents the filtered voice catalog.
type VoicesResponse struct {
	Voices []entities.Voice `json:"voices"`
}

// HistoryResponse represents a session's exchanges in order.
type HistoryResponse struct {
	ConversationID string          `json:"conversation_id"`
	Turns          []entities.Turn `json:"turns"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
