package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{}, zap.NewNop())
	assert.Error(t, err, "missing API key must be rejected")

	_, err = NewClient(Config{APIKey: "k", DefaultModel: "gpt-5"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrUnknownModel)

	c, err := NewClient(Config{APIKey: "k"}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestCompleteRejectsUnknownModelBeforeDispatch(t *testing.T) {
	// The handler must never run: an invalid model is rejected locally.
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), Request{
		Model:    "gpt-5",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	assert.ErrorIs(t, err, ErrUnknownModel)
	assert.False(t, called, "no request may leave the process for an unknown model")
}

func TestCompleteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "qwen3-vl", body["model"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "cmpl-1",
			"object": "chat.completion",
			"model": "qwen3-vl",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "All paths healthy."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
		}`)
	}))
	defer srv.Close()

	// Timeout swaps in a bounded http.Client; the request must still
	// complete through it.
	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 5 * time.Second}, zap.NewNop())
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "status?"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "All paths healthy.", resp.Content)
	assert.Equal(t, "qwen3-vl", resp.Model)
	assert.Equal(t, 16, resp.Usage.TotalTokens)
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestCompleteTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "status?"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.False(t, errors.Is(err, ErrUnknownModel))
}

func TestStreamSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"All ", "paths ", "healthy."} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", delta)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	fragments, errc, err := c.Stream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "status?"}},
	})
	require.NoError(t, err)

	var b strings.Builder
	for frag := range fragments {
		b.WriteString(frag)
	}
	assert.NoError(t, <-errc, "normal completion delivers no error")
	assert.Equal(t, "All paths healthy.", b.String())
}

func TestStreamRejectsUnknownModel(t *testing.T) {
	c, err := NewClient(Config{APIKey: "k", BaseURL: "http://127.0.0.1:0"}, zap.NewNop())
	require.NoError(t, err)

	_, _, err = c.Stream(context.Background(), Request{Model: "nope"})
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestParseModel(t *testing.T) {
	m, err := ParseModel("glm-4.7")
	require.NoError(t, err)
	assert.Equal(t, ModelGLM47, m)

	_, err = ParseModel("gpt-5")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestModelsCatalog(t *testing.T) {
	models := Models()
	require.Len(t, models, 3)
	assert.Equal(t, ModelQwen3VL, models[0].Model)
	assert.Equal(t, ModelGLM47, models[1].Model)
	assert.Equal(t, ModelGPTOSS, models[2].Model)

	info, ok := Info(ModelQwen3VL)
	require.True(t, ok)
	assert.True(t, info.SupportsVision)

	_, ok = Info("gpt-5")
	assert.False(t, ok)
}
