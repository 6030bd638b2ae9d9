package repositories

import "context"

// AudioConfig describes a recorded clip submitted for transcription.
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}

// SpeechToText abstracts speech recognition services.
type SpeechToText interface {
	// TranscribeAudio converts audio data to text.
	TranscribeAudio(ctx context.Context, audioData []byte, config AudioConfig) (string, error)
}
