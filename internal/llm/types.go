package llm

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in the ordered list sent to the model.
type Message struct {
	Role    string `json:"role"`    // system, user, assistant
	Content string `json:"content"` // message text
}

// Request is a completion request. Zero-value Model, Temperature, and
// MaxTokens fall back to the client's configured defaults.
type Request struct {
	Messages    []Message `json:"messages"`
	Model       Model     `json:"model,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Usage tracks token consumption for one request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a completed model reply.
type Response struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	Usage        Usage  `json:"usage"`
	FinishReason string `json:"finish_reason"`
}
