package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsMaxMessage   = 1 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The demo client is served from anywhere.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsClientMessage is what clients send over the socket.
type wsClientMessage struct {
	Type  string `json:"type"` // "query"
	Query string `json:"query"`
}

// wsServerMessage is what the server sends back.
type wsServerMessage struct {
	Type        string      `json:"type"` // "answer" or "error"
	Answer      string      `json:"answer,omitempty"`
	Sources     []SourceRef `json:"sources,omitempty"`
	AudioData   string      `json:"audio_data,omitempty"`
	AudioFormat string      `json:"audio_format,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// websocketWithAuth upgrades an authenticated connection and serves the
// query/answer exchange over it. The session token travels in the
// Authorization header or the token query parameter.
func (s *Server) websocketWithAuth(c echo.Context) error {
	claims, err := s.claimsFromRequest(c)
	if err != nil {
		s.logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Missing, invalid or expired session token",
		})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	s.logger.Info("WebSocket connection established",
		zap.String("conversationID", claims.ConversationID))

	go s.serveConversationSocket(conn, claims.ConversationID)
	return nil
}

func (s *Server) serveConversationSocket(conn *websocket.Conn, conversationID string) {
	defer conn.Close()

	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(conn, done)

	for {
		var msg wsClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("WebSocket read error",
					zap.String("conversationID", conversationID),
					zap.Error(err))
			}
			return
		}

		if msg.Type != "query" {
			s.writeSocket(conn, wsServerMessage{
				Type:    "error",
				Message: "Unsupported message type",
			})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		result, err := s.conversations.HandleQuery(ctx, conversationID, msg.Query)
		cancel()
		if err != nil {
			s.logger.Error("WebSocket query failed",
				zap.String("conversationID", conversationID),
				zap.Error(err))
			s.writeSocket(conn, wsServerMessage{
				Type:    "error",
				Message: "Failed to answer the question",
			})
			continue
		}

		response := wsServerMessage{
			Type:   "answer",
			Answer: result.Answer,
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
		s.writeSocket(conn, response)
	}
}

func (s *Server) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(wsWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) writeSocket(conn *websocket.Conn, msg wsServerMessage) {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Warn("WebSocket write failed", zap.Error(err))
	}
}
