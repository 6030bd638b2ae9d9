package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/voxdocs/voxdocs/domain/repositories"
)

// GoogleSTT is an alternative SpeechToText adapter backed by Google Cloud
// Speech-to-Text, selected with STT_PROVIDER=google. Credentials come from
// the ambient Google application default credentials.
type GoogleSTT struct {
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSTT)(nil)

// NewGoogleSTT creates a new Google Cloud transcription adapter.
func NewGoogleSTT(logger *zap.Logger) *GoogleSTT {
	return &GoogleSTT{logger: logger}
}

// TranscribeAudio converts a recorded clip to text with a single
// synchronous Recognize call.
func (g *GoogleSTT) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if len(audioData) == 0 {
		return "", fmt.Errorf("audio data cannot be empty")
	}

	client, err := speech.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	encoding, err := googleAudioEncoding(config.Encoding)
	if err != nil {
		return "", err
	}

	language := config.Language
	if language == "" {
		language = "en-US"
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: int32(config.SampleRate),
			LanguageCode:    language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize request failed: %w", err)
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript.WriteString(result.Alternatives[0].Transcript)
		}
	}
	if transcript.Len() == 0 {
		return "", fmt.Errorf("%w: no speech detected in audio", repositories.ErrEmptyResult)
	}

	g.logger.Info("Transcription completed",
		zap.Int("audioBytes", len(audioData)),
		zap.Int("results", len(resp.Results)))
	return transcript.String(), nil
}

func googleAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToUpper(encoding) {
	case "", "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported audio encoding: %s", encoding)
	}
}
