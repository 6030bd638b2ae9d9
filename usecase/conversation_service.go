package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/voxdocs/voxdocs/domain/entities"
	"github.com/voxdocs/voxdocs/domain/repositories"
)

// QueryResult is one answered exchange. Audio is nil when synthesis is
// disabled or failed; the answer text is always present.
type QueryResult struct {
	Answer      string
	Sources     []entities.DocumentSegment
	Audio       []byte
	AudioFormat string
}

// ConversationService orchestrates the conversation flow: sessions,
// transcription, answering, history, and voice selection. The
// text-to-speech and speech-to-text dependencies are optional; passing
// nil disables the corresponding feature without affecting answering.
type ConversationService struct {
	conversations repositories.ConversationRepository
	answerService *AnswerService
	speechToText  repositories.SpeechToText
	textToSpeech  repositories.TextToSpeech
	logger        *zap.Logger
}

// NewConversationService creates a new conversation service.
func NewConversationService(
	conversations repositories.ConversationRepository,
	answerService *AnswerService,
	stt repositories.SpeechToText,
	tts repositories.TextToSpeech,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		answerService: answerService,
		speechToText:  stt,
		textToSpeech:  tts,
		logger:        logger,
	}
}

// StartConversation creates a session seeded with the greeting exchange.
func (s *ConversationService) StartConversation(ctx context.Context) (*entities.Conversation, error) {
	conversation := entities.NewConversation()
	if err := s.conversations.Create(ctx, conversation); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	s.logger.Info("Conversation started", zap.String("conversationID", conversation.ID))
	return conversation, nil
}

// HandleQuery answers one user question within a session, records the
// exchange, and synthesizes the spoken answer with the session's voice.
// Synthesis failures degrade to a text-only result.
func (s *ConversationService) HandleQuery(ctx context.Context, conversationID string, query string) (*QueryResult, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	result, err := s.answerService.Answer(ctx, query)
	if err != nil {
		return nil, err
	}

	conversation.AppendTurn(query, result.Answer)
	if err := s.conversations.Save(ctx, conversation); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	response := &QueryResult{
		Answer:  result.Answer,
		Sources: result.Sources,
	}

	if s.textToSpeech != nil {
		synthesis, err := s.textToSpeech.SynthesizeSpeech(ctx, result.Answer, conversation.SelectedVoiceID)
		if err != nil {
			// Voice is an enhancement; the answer still stands.
			s.logger.Warn("Speech synthesis failed, returning text only",
				zap.String("conversationID", conversationID),
				zap.Error(err))
		} else {
			response.Audio = synthesis.Audio
			response.AudioFormat = synthesis.Format
		}
	}

	return response, nil
}

// Transcribe converts a recorded clip to text. When transcription is
// unavailable or fails, the transcript is empty and no error is raised;
// the caller simply has nothing to ask.
func (s *ConversationService) Transcribe(ctx context.Context, audioData []byte, config repositories.AudioConfig) string {
	if s.speechToText == nil {
		s.logger.Warn("Transcription requested but no speech-to-text is configured")
		return ""
	}

	transcript, err := s.speechToText.TranscribeAudio(ctx, audioData, config)
	if err != nil {
		s.logger.Warn("Transcription failed", zap.Error(err))
		return ""
	}
	return transcript
}

// ListVoices returns the filtered voice catalog. When the catalog
// service is unavailable the hardcoded fallback voice is offered instead
// of an error, keeping voice selection usable.
func (s *ConversationService) ListVoices(ctx context.Context, filter entities.VoiceFilter) []entities.Voice {
	if s.textToSpeech == nil {
		return []entities.Voice{{ID: entities.FallbackVoiceID}}
	}

	catalog, err := s.textToSpeech.ListVoices(ctx)
	if err != nil {
		s.logger.Warn("Voice catalog unavailable, falling back to default voice", zap.Error(err))
		return []entities.Voice{{ID: entities.FallbackVoiceID}}
	}

	voices := entities.FilterVoices(catalog, filter)
	if len(voices) == 0 {
		return []entities.Voice{{ID: entities.FallbackVoiceID}}
	}
	return voices
}

// SelectVoice sets the session's synthesis voice. An empty id resets to
// the fallback voice.
func (s *ConversationService) SelectVoice(ctx context.Context, conversationID string, voiceID string) error {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}

	conversation.SelectVoice(voiceID)
	if err := s.conversations.Save(ctx, conversation); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	s.logger.Info("Voice selected",
		zap.String("conversationID", conversationID),
		zap.String("voiceID", conversation.SelectedVoiceID))
	return nil
}

// History returns the session's exchanges in chronological order,
// greeting first.
func (s *ConversationService) History(ctx context.Context, conversationID string) ([]entities.Turn, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return conversation.Turns(), nil
}
