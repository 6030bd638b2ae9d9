package repositories

import (
	"context"

	"github.com/voxdocs/voxdocs/domain/entities"
)

// Synthesis is the decoded result of one text-to-speech request.
type Synthesis struct {
	Audio              []byte
	Format             string
	BillableCharacters int
}

// TextToSpeech abstracts speech synthesis services, including the remote
// voice catalog.
type TextToSpeech interface {
	// SynthesizeSpeech renders text as audio with the given voice.
	SynthesizeSpeech(ctx context.Context, text string, voiceID string) (*Synthesis, error)
	// ListVoices fetches the available voice catalog in service order.
	ListVoices(ctx context.Context) ([]entities.Voice, error)
}
