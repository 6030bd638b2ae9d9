package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/voxdocs/voxdocs/adapters/memory"
	"github.com/voxdocs/voxdocs/domain/entities"
	"github.com/voxdocs/voxdocs/domain/repositories"
	"github.com/voxdocs/voxdocs/internal/auth"
	"github.com/voxdocs/voxdocs/usecase"
)

type stubEmbedder struct{}

func (stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

func (stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type stubStore struct{}

func (stubStore) EnsureReady(ctx context.Context, dimension int) error { return nil }
func (stubStore) Upsert(ctx context.Context, segments []entities.DocumentSegment, vectors [][]float32) error {
	return nil
}
func (stubStore) Search(ctx context.Context, vector []float32, params repositories.SearchParams) ([]repositories.ScoredSegment, error) {
	return []repositories.ScoredSegment{
		{Segment: entities.DocumentSegment{Text: "listeners collect results", Source: "content.txt", Index: 7}, Score: 0.9},
	}, nil
}
func (stubStore) Close() error { return nil }

type stubAnswerer struct{}

func (stubAnswerer) Answer(ctx context.Context, query string, passages []entities.DocumentSegment) (string, error) {
	return "A listener collects results.", nil
}

func newTestServer(t *testing.T) (*echo.Echo, *Server) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	answerService := usecase.NewAnswerService(stubEmbedder{}, stubStore{}, stubAnswerer{}, logger)
	conversations := usecase.NewConversationService(memory.NewConversationRepository(), answerService, nil, nil, logger)
	tokens, err := auth.NewTokenManager("test-secret")
	if err != nil {
		t.Fatalf("Failed to create token manager: %v", err)
	}

	server := NewServer(conversations, tokens, logger)
	e := echo.New()
	server.InitRoutes(e)
	return e, server
}

func createSession(t *testing.T, e *echo.Echo) CreateSessionResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var session CreateSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("Failed to decode session response: %v", err)
	}
	return session
}

func TestHealthEndpoint(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestCreateSession(t *testing.T) {
	e, _ := newTestServer(t)

	session := createSession(t, e)
	if session.ConversationID == "" {
		t.Error("Expected a conversation ID")
	}
	if session.Token == "" {
		t.Error("Expected a session token")
	}
	if session.Greeting.UserInput != entities.GreetingUserInput {
		t.Errorf("Unexpected greeting input %q", session.Greeting.UserInput)
	}
	if session.Greeting.GeneratedAnswer != entities.GreetingAnswer {
		t.Errorf("Unexpected greeting answer %q", session.Greeting.GeneratedAnswer)
	}
	if session.SelectedVoice != entities.FallbackVoiceID {
		t.Errorf("Expected fallback voice, got %q", session.SelectedVoice)
	}
}

func TestQueryRequiresToken(t *testing.T) {
	e, _ := newTestServer(t)
	session := createSession(t, e)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+session.ConversationID+"/query",
		strings.NewReader(`{"query":"what is a listener?"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rec.Code)
	}
}

func TestQueryRejectsForeignSession(t *testing.T) {
	e, _ := newTestServer(t)
	first := createSession(t, e)
	second := createSession(t, e)

	// First session's token against the second session's path.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+second.ConversationID+"/query",
		strings.NewReader(`{"query":"what is a listener?"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+first.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for mismatched session, got %d", rec.Code)
	}
}

func TestQueryAndHistoryFlow(t *testing.T) {
	e, _ := newTestServer(t)
	session := createSession(t, e)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+session.ConversationID+"/query",
		strings.NewReader(`{"query":"what is a listener?"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var answer QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &answer); err != nil {
		t.Fatalf("Failed to decode query response: %v", err)
	}
	if answer.Answer == "" {
		t.Error("Expected a non-empty answer")
	}
	if len(answer.Sources) != 1 || answer.Sources[0].Index != 7 {
		t.Errorf("Unexpected sources %+v", answer.Sources)
	}
	if answer.AudioData != "" {
		t.Error("Expected no audio when synthesis is not configured")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+session.ConversationID+"/history", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var history HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("Failed to decode history response: %v", err)
	}
	if len(history.Turns) != 2 {
		t.Fatalf("Expected greeting plus one exchange, got %d turns", len(history.Turns))
	}
	if history.Turns[0].UserInput != entities.GreetingUserInput {
		t.Errorf("Expected greeting first, got %q", history.Turns[0].UserInput)
	}
	if history.Turns[1].UserInput != "what is a listener?" {
		t.Errorf("Unexpected recorded input %q", history.Turns[1].UserInput)
	}
}

func TestQueryValidation(t *testing.T) {
	e, _ := newTestServer(t)
	session := createSession(t, e)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+session.ConversationID+"/query",
		strings.NewReader(`{"query":"  "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for blank query, got %d", rec.Code)
	}
}

func TestListVoicesWithoutSynthesis(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/voices?gender=female", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var voices VoicesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &voices); err != nil {
		t.Fatalf("Failed to decode voices response: %v", err)
	}
	if len(voices.Voices) != 1 || voices.Voices[0].ID != entities.FallbackVoiceID {
		t.Errorf("Expected fallback voice catalog, got %+v", voices.Voices)
	}
}

func TestSelectVoice(t *testing.T) {
	e, _ := newTestServer(t)
	session := createSession(t, e)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/"+session.ConversationID+"/voice",
		strings.NewReader(`{"voice_id":"v-aria"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
}
