package prompt

// Package prompt selects and renders prompt templates for the diagnostics
// domain.
//
// Responsibilities:
//   - Classify a free-text query onto a template via an ordered keyword
//     rule table (precedence is data, not control flow)
//   - Assemble the ordered message list: system prompt (with optional
//     telemetry block), windowed history, current user turn

import (
	"strings"

	"github.com/kohanfikr/netai/internal/llm"
)

// classifierRule is one entry in the ordered intent table. Rules are
// checked top to bottom and the first keyword hit wins, so a query that
// matches several rules resolves to the earliest.
type classifierRule struct {
	key      string
	keywords []string
}

var classifierRules = []classifierRule{
	{TemplateAnomalyExplanation, []string{"anomaly", "unusual", "strange", "weird", "spike"}},
	{TemplateRemediation, []string{"fix", "remediat", "resolve", "repair", "action"}},
	{TemplateTelemetryAnalysis, []string{"telemetry", "metric", "measurement", "perfsonar", "data"}},
}

// Engine selects prompt templates and assembles message lists.
type Engine struct{}

// NewEngine creates a prompt engine over the fixed template catalog.
func NewEngine() *Engine {
	return &Engine{}
}

// Classify maps a user query onto a template key. Total and deterministic:
// unmatched queries get the general template.
func (e *Engine) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range classifierRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.key
			}
		}
	}
	return TemplateGeneralDiagnostics
}

// SystemPrompt returns the system prompt for a template key, falling back
// to the general template for unknown keys.
func (e *Engine) SystemPrompt(key string) string {
	if t, ok := templates[key]; ok {
		return t.SystemPrompt
	}
	return networkDiagnosticsSystemPrompt
}

// Template returns the template for a key.
func (e *Engine) Template(key string) (Template, bool) {
	t, ok := templates[key]
	return t, ok
}

// List returns the template catalog in fixed order.
func (e *Engine) List() []Template {
	out := make([]Template, 0, len(templateOrder))
	for _, key := range templateOrder {
		out = append(out, templates[key])
	}
	return out
}

// BuildMessages assembles the ordered message list for a model call: one
// system message, the windowed history, then the fresh user turn. When a
// telemetry block is present it is appended to the system prompt so the
// model has live network awareness.
func (e *Engine) BuildMessages(userMessage string, history []llm.Message, templateKey, telemetryContext string) []llm.Message {
	system := e.SystemPrompt(templateKey)
	if telemetryContext != "" {
		system += "\n\n---\n**Current Network Telemetry Context**:\n" + telemetryContext
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})
	return messages
}
