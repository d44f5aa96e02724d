package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kohanfikr/netai/internal/chat"
	"github.com/kohanfikr/netai/internal/llm"
)

// WebSocket message types
const (
	messageTypeText     = "text"
	messageTypeError    = "error"
	messageTypeComplete = "complete"
)

// wsMessage is one frame sent to the client.
type wsMessage struct {
	Type           string    `json:"type"`
	Content        string    `json:"content,omitempty"`
	Error          string    `json:"error,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Outcome        string    `json:"outcome,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// wsRequest is the single request frame expected from the client.
type wsRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	Model          string `json:"model,omitempty"`
	Source         string `json:"source,omitempty"`
	Destination    string `json:"destination,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsConn serializes writes to one connection.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(msg wsMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg.Timestamp = time.Now().UTC()
	return c.conn.WriteJSON(msg)
}

// handleChatStream streams one assistant reply over a WebSocket. The
// client sends one request frame; the server answers with text frames
// followed by a complete (or error) frame, then closes.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	ws := &wsConn{conn: conn}
	defer conn.Close()

	var req wsRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = ws.send(wsMessage{Type: messageTypeError, Error: "invalid request frame"})
		return
	}
	if req.Message == "" {
		_ = ws.send(wsMessage{Type: messageTypeError, Error: "message is required"})
		return
	}

	var model llm.Model
	if req.Model != "" {
		m, err := llm.ParseModel(req.Model)
		if err != nil {
			_ = ws.send(wsMessage{Type: messageTypeError, Error: err.Error()})
			return
		}
		model = m
	}

	ctx := r.Context()
	comp, err := s.composer.Compose(ctx, req.ConversationID, req.Message, req.Source, req.Destination)
	if err != nil {
		_ = ws.send(wsMessage{Type: messageTypeError, Error: "failed to compose turn"})
		return
	}

	fragments, errc, err := s.llmClient.Stream(ctx, llm.Request{
		Messages: comp.Messages,
		Model:    model,
	})
	if err != nil {
		_ = ws.send(wsMessage{Type: messageTypeError, Error: "language model request failed"})
		return
	}

	// Forward each fragment to the client while teeing it into the
	// accumulator, which owns the single assistant-turn commit.
	tee := make(chan string, 16)
	go func() {
		defer close(tee)
		for frag := range fragments {
			if err := ws.send(wsMessage{Type: messageTypeText, Content: frag}); err != nil {
				s.log.Debug("websocket write failed, client gone", zap.Error(err))
			}
			select {
			case tee <- frag:
			case <-ctx.Done():
				return
			}
		}
	}()

	_, outcome, streamErr := s.composer.AccumulateStream(ctx, comp.ConversationID, tee, errc)
	switch outcome {
	case chat.StreamCompleted:
		_ = ws.send(wsMessage{
			Type:           messageTypeComplete,
			ConversationID: comp.ConversationID,
			Outcome:        string(outcome),
		})
	default:
		msg := wsMessage{
			Type:           messageTypeError,
			ConversationID: comp.ConversationID,
			Outcome:        string(outcome),
		}
		if streamErr != nil {
			msg.Error = streamErr.Error()
		}
		_ = ws.send(msg)
	}
}
