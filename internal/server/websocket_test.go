package server

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kohanfikr/netai/internal/llm"
)

func dialStream(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/chat/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestChatStreamDeliversFragmentsThenComplete(t *testing.T) {
	srv, store := newTestServer(t)
	conn := dialStream(t, srv)

	require.NoError(t, conn.WriteJSON(wsRequest{Message: "explain the anomaly"}))

	var (
		text     strings.Builder
		final    wsMessage
		gotFinal bool
	)
	for !gotFinal {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		switch msg.Type {
		case messageTypeText:
			text.WriteString(msg.Content)
		case messageTypeComplete, messageTypeError:
			final = msg
			gotFinal = true
		}
	}

	require.Equal(t, messageTypeComplete, final.Type)
	assert.Equal(t, "completed", final.Outcome)
	require.NotEmpty(t, final.ConversationID)
	assert.Contains(t, text.String(), "Anomaly Detection Report")

	// The accumulator committed exactly one assistant turn.
	conv, ok := store.Get(final.ConversationID)
	require.True(t, ok)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, llm.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, text.String(), conv.Messages[1].Content)
	assert.Empty(t, conv.Messages[1].Metadata)
}

func TestChatStreamRejectsEmptyMessage(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dialStream(t, srv)

	require.NoError(t, conn.WriteJSON(wsRequest{}))

	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, messageTypeError, msg.Type)
	assert.Contains(t, msg.Error, "message is required")
}

func TestChatStreamRejectsUnknownModel(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dialStream(t, srv)

	require.NoError(t, conn.WriteJSON(wsRequest{Message: "hi", Model: "gpt-5"}))

	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, messageTypeError, msg.Type)
	assert.Contains(t, msg.Error, "unknown model")
}
