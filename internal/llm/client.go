package llm

// Package llm wraps the managed OpenAI-compatible inference service behind
// a narrow client interface.
//
// Responsibilities:
//   - Validate model identifiers before any request leaves the process
//   - Issue chat completion requests and surface transport failures as
//     distinguishable errors (never silently degraded to empty responses)
//   - Stream completions as an ordered, cancellable fragment sequence with
//     an explicit end signal (closed channels)
//   - Record request counts, durations, and token usage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kohanfikr/netai/internal/metrics"
)

// ErrTransport marks a failure talking to the inference endpoint. Callers
// can distinguish it from validation errors such as ErrUnknownModel.
var ErrTransport = errors.New("llm transport failure")

// Client is the boundary to the inference service. The rest of the system
// depends only on this interface.
type Client interface {
	// Complete sends the message list and returns the full reply.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Stream sends the message list and returns a fragment channel plus an
	// error channel. On normal completion both channels close with no error
	// delivered; on failure one error is delivered before close. Cancel the
	// context to stop the stream.
	Stream(ctx context.Context, req Request) (<-chan string, <-chan error, error)
}

// Config configures the OpenAI-compatible client.
type Config struct {
	BaseURL      string
	APIKey       string
	DefaultModel Model
	Temperature  float32
	MaxTokens    int
	Timeout      time.Duration
}

type openAIClient struct {
	cfg Config
	api *openai.Client
	log *zap.Logger
}

// NewClient creates a client for the managed inference endpoints.
func NewClient(cfg Config, log *zap.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = ModelQwen3VL
	}
	if _, ok := catalog[cfg.DefaultModel]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, cfg.DefaultModel)
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &openAIClient{
		cfg: cfg,
		api: openai.NewClientWithConfig(clientConfig),
		log: log,
	}, nil
}

// resolve fills request defaults and validates the model.
func (c *openAIClient) resolve(req Request) (Request, error) {
	if req.Model == "" {
		req.Model = c.cfg.DefaultModel
	}
	if _, ok := catalog[req.Model]; !ok {
		return req, fmt.Errorf("%w: %q", ErrUnknownModel, req.Model)
	}
	if req.Temperature == 0 {
		req.Temperature = c.cfg.Temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.cfg.MaxTokens
	}
	return req, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

func (c *openAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	req, err := c.resolve(req)
	if err != nil {
		return nil, err
	}

	c.log.Info("llm request",
		zap.String("model", string(req.Model)),
		zap.Int("message_count", len(req.Messages)),
		zap.Int("max_tokens", req.MaxTokens),
	)

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       string(req.Model),
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	metrics.LLMRequestDuration.WithLabelValues(string(req.Model)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(string(req.Model), "error").Inc()
		c.log.Error("llm request failed", zap.String("model", string(req.Model)), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(string(req.Model), "error").Inc()
		return nil, fmt.Errorf("%w: no choices in response", ErrTransport)
	}

	metrics.LLMRequestsTotal.WithLabelValues(string(req.Model), "success").Inc()
	metrics.LLMTokensUsed.WithLabelValues(string(req.Model), "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues(string(req.Model), "completion").Add(float64(resp.Usage.CompletionTokens))

	choice := resp.Choices[0]
	return &Response{
		Content: choice.Message.Content,
		Model:   resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		FinishReason: string(choice.FinishReason),
	}, nil
}

func (c *openAIClient) Stream(ctx context.Context, req Request) (<-chan string, <-chan error, error) {
	req, err := c.resolve(req)
	if err != nil {
		return nil, nil, err
	}

	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       string(req.Model),
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(string(req.Model), "error").Inc()
		return nil, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	fragments := make(chan string, 16)
	errc := make(chan error, 1)

	go func() {
		defer close(fragments)
		defer close(errc)
		defer stream.Close()

		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				metrics.LLMRequestsTotal.WithLabelValues(string(req.Model), "success").Inc()
				return
			}
			if err != nil {
				metrics.LLMRequestsTotal.WithLabelValues(string(req.Model), "error").Inc()
				errc <- fmt.Errorf("%w: %v", ErrTransport, err)
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case fragments <- delta:
			case <-ctx.Done():
				return
			}
		}
	}()

	return fragments, errc, nil
}
