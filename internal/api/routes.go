// Package api exposes the conversation flows over HTTP and WebSocket.
package api

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/voxdocs/voxdocs/domain/entities"
	"github.com/voxdocs/voxdocs/domain/repositories"
	"github.com/voxdocs/voxdocs/internal/auth"
	"github.com/voxdocs/voxdocs/usecase"
)

// maxAudioUploadBytes bounds transcription uploads.
const maxAudioUploadBytes = 10 << 20

// Server carries the handler dependencies.
type Server struct {
	conversations *usecase.ConversationService
	tokens        *auth.TokenManager
	logger        *zap.Logger
}

// NewServer creates the API server.
func NewServer(conversations *usecase.ConversationService, tokens *auth.TokenManager, logger *zap.Logger) *Server {
	return &Server{
		conversations: conversations,
		tokens:        tokens,
		logger:        logger,
	}
}

// InitRoutes initializes all API routes
func (s *Server) InitRoutes(e *echo.Echo) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "voxdocs-server",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.POST("/sessions", s.createSession)
	v1.GET("/voices", s.listVoices)

	v1.POST("/sessions/:id/query", s.query)
	v1.POST("/sessions/:id/transcribe", s.transcribe)
	v1.PUT("/sessions/:id/voice", s.selectVoice)
	v1.GET("/sessions/:id/history", s.history)

	// WebSocket endpoint with JWT validation
	e.GET("/ws", s.websocketWithAuth)
}

func (s *Server) createSession(c echo.Context) error {
	conversation, err := s.conversations.StartConversation(c.Request().Context())
	if err != nil {
		s.logger.Error("Failed to start conversation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "session_creation_failed",
			Message: "Failed to start a conversation",
		})
	}

	token, err := s.tokens.GenerateSessionToken(conversation.ID)
	if err != nil {
		s.logger.Error("Failed to generate session token",
			zap.String("conversationID", conversation.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate session token",
		})
	}

	return c.JSON(http.StatusCreated, CreateSessionResponse{
		ConversationID: conversation.ID,
		Token:          token,
		ExpiresAt:      time.Now().Add(24 * time.Hour),
		Greeting: entities.Turn{
			UserInput:       entities.GreetingUserInput,
			GeneratedAnswer: entities.GreetingAnswer,
		},
		SelectedVoice: conversation.SelectedVoiceID,
	})
}

func (s *Server) query(c echo.Context) error {
	conversationID, ok := s.authorizeSession(c)
	if !ok {
		return nil
	}

	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Query is required",
		})
	}

	result, err := s.conversations.HandleQuery(c.Request().Context(), conversationID, req.Query)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "session_not_found",
				Message: "Unknown conversation",
			})
		}
		s.logger.Error("Query failed",
			zap.String("conversationID", conversationID),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "answer_failed",
			Message: "Failed to answer the question",
		})
	}

	return c.JSON(http.StatusOK, queryResponseFrom(result))
}

func (s *Server) transcribe(c echo.Context) error {
	if _, ok := s.authorizeSession(c); !ok {
		return nil
	}

	file, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Multipart field 'audio' is required",
		})
	}
	if file.Size > maxAudioUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "audio_too_large",
			Message: "Audio upload exceeds the size limit",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to read audio upload",
		})
	}
	defer src.Close()

	audioData, err := io.ReadAll(io.LimitReader(src, maxAudioUploadBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to read audio upload",
		})
	}

	sampleRate, _ := strconv.Atoi(c.FormValue("sample_rate"))
	config := repositories.AudioConfig{
		SampleRate: sampleRate,
		Encoding:   c.FormValue("encoding"),
		Language:   c.FormValue("language"),
	}

	// Failed or silent transcriptions come back as empty text, not errors.
	text := s.conversations.Transcribe(c.Request().Context(), audioData, config)
	return c.JSON(http.StatusOK, TranscribeResponse{Text: text})
}

func (s *Server) listVoices(c echo.Context) error {
	filter := entities.VoiceFilter{
		Gender: c.QueryParam("gender"),
		Locale: c.QueryParam("locale"),
		Tag:    c.QueryParam("tag"),
	}

	voices := s.conversations.ListVoices(c.Request().Context(), filter)
	return c.JSON(http.StatusOK, VoicesResponse{Voices: voices})
}

func (s *Server) selectVoice(c echo.Context) error {
	conversationID, ok := s.authorizeSession(c)
	if !ok {
		return nil
	}

	var req SelectVoiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	err := s.conversations.SelectVoice(c.Request().Context(), conversationID, req.VoiceID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "session_not_found",
				Message: "Unknown conversation",
			})
		}
		s.logger.Error("Voice selection failed",
			zap.String("conversationID", conversationID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "voice_selection_failed",
			Message: "Failed to select voice",
		})
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) history(c echo.Context) error {
	conversationID, ok := s.authorizeSession(c)
	if !ok {
		return nil
	}

	turns, err := s.conversations.History(c.Request().Context(), conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "session_not_found",
				Message: "Unknown conversation",
			})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "history_failed",
			Message: "Failed to load history",
		})
	}

	return c.JSON(http.StatusOK, HistoryResponse{
		ConversationID: conversationID,
		Turns:          turns,
	})
}

// authorizeSession validates the bearer token and checks it matches the
// session named in the path. On rejection the error response has already
// been written and ok is false.
func (s *Server) authorizeSession(c echo.Context) (conversationID string, ok bool) {
	claims, err := s.claimsFromRequest(c)
	if err != nil {
		s.logger.Warn("Request rejected: invalid token", zap.Error(err))
		_ = c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Missing, invalid or expired session token",
		})
		return "", false
	}

	conversationID = c.Param("id")
	if conversationID == "" || conversationID != claims.ConversationID {
		_ = c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "session_mismatch",
			Message: "Token is not valid for this session",
		})
		return "", false
	}

	return conversationID, true
}

func (s *Server) claimsFromRequest(c echo.Context) (*auth.SessionClaims, error) {
	var token string
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if token == "" {
		// WebSocket clients cannot always set headers.
		token = c.QueryParam("token")
	}
	if token == "" {
		return nil, errors.New("missing session token")
	}
	return s.tokens.ValidateToken(token)
}

func queryResponseFrom(result *usecase.QueryResult) QueryResponse {
	response := QueryResponse{
		Answer:  result.Answer,
		Sources: make([]SourceRef, 0, len(result.Sources)),
	}
	for _, source := range result.Sources {
		response.Sources = append(response.Sources, SourceRef{
			Source: source.Source,
			Index:  source.Index,
		})
	}
	if len(result.Audio) > 0 {
		response.AudioData = base64.StdEncoding.EncodeToString(result.Audio)
		response.AudioFormat = result.AudioFormat
	}
	return response
}
