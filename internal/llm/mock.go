package llm

import (
	"context"
	"strings"
)

// mockResponses are canned replies keyed by a keyword in the last user
// message. Used for demo mode and tests; no network calls.
var mockResponses = map[string]string{
	"throughput": "## Throughput Analysis\n\n" +
		"Based on the current network telemetry data:\n\n" +
		"- **Current throughput**: 8.2 Gbps (expected: 10 Gbps)\n" +
		"- **Degradation**: ~18% below baseline\n" +
		"- **Affected path**: Chicago -> Denver segment\n\n" +
		"### Recommended Actions\n" +
		"- Check interface counters on router-chi-02 for CRC errors\n" +
		"- Verify MTU settings along the path (should be 9000 for jumbo frames)\n" +
		"- Consider traffic engineering to redistribute load\n",
	"latency": "## Latency Analysis\n\n" +
		"- **Current RTT**: 45ms (baseline: 28ms)\n" +
		"- **Jitter**: 12ms (elevated, baseline: 3ms)\n" +
		"- **Packet loss**: 0.3%\n\n" +
		"The increased latency correlates with a routing change. Traffic now " +
		"traverses an additional hop through the Kansas City exchange point.\n\n" +
		"### Recommendations\n" +
		"- Review BGP route advertisements from AS64512\n" +
		"- Check if the primary path has been withdrawn\n" +
		"- Monitor for route flapping on the affected prefix\n",
	"anomaly": "## Anomaly Detection Report\n\n" +
		"**Anomaly detected** on the San Diego <-> Seattle path\n\n" +
		"- **Type**: Intermittent packet loss burst\n" +
		"- **Severity**: High (4.2% packet loss, threshold: 1%)\n" +
		"- **Pattern**: Loss occurs in 30-second bursts every ~5 minutes\n\n" +
		"### Suggested Remediation\n" +
		"1. **Immediate**: Inspect fiber optic connections at hop 6\n" +
		"2. **Short-term**: Reroute traffic via the alternate path through Portland\n" +
		"3. **Long-term**: Schedule fiber cleaning for the affected span\n",
	"default": "## Network Diagnostics Assistant\n\n" +
		"I can help you with:\n\n" +
		"- **Throughput analysis**: identify bandwidth bottlenecks and degradation\n" +
		"- **Latency diagnostics**: analyze RTT, jitter, and routing issues\n" +
		"- **Anomaly detection**: detect and explain unusual network behavior\n" +
		"- **Traceroute analysis**: examine network paths and problematic hops\n" +
		"- **Remediation strategies**: actionable recommendations for network issues\n",
}

// MockClient implements Client with canned responses keyed on the last
// user message. It validates models exactly like the real client.
type MockClient struct {
	cfg Config
}

// NewMockClient creates a mock transport client.
func NewMockClient(cfg Config) *MockClient {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = ModelQwen3VL
	}
	return &MockClient{cfg: cfg}
}

func (c *MockClient) pick(messages []Message) string {
	last := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			last = strings.ToLower(messages[i].Content)
			break
		}
	}
	for key, resp := range mockResponses {
		if key != "default" && strings.Contains(last, key) {
			return resp
		}
	}
	return mockResponses["default"]
}

func (c *MockClient) validate(req Request) (Model, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.DefaultModel
	}
	if _, ok := catalog[model]; !ok {
		return "", ErrUnknownModel
	}
	return model, nil
}

func (c *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	model, err := c.validate(req)
	if err != nil {
		return nil, err
	}
	content := c.pick(req.Messages)
	return &Response{
		Content:      content,
		Model:        string(model),
		Usage:        Usage{PromptTokens: 150, CompletionTokens: 300, TotalTokens: 450},
		FinishReason: "stop",
	}, nil
}

func (c *MockClient) Stream(ctx context.Context, req Request) (<-chan string, <-chan error, error) {
	if _, err := c.validate(req); err != nil {
		return nil, nil, err
	}
	content := c.pick(req.Messages)

	fragments := make(chan string, 16)
	errc := make(chan error, 1)
	go func() {
		defer close(fragments)
		defer close(errc)
		for _, word := range strings.SplitAfter(content, " ") {
			select {
			case fragments <- word:
			case <-ctx.Done():
				return
			}
		}
	}()
	return fragments, errc, nil
}
