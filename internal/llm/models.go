package llm

import (
	"errors"
	"fmt"
)

// Model identifies one of the managed inference endpoints. The set is a
// closed enumeration; anything else is rejected before dispatch.
type Model string

const (
	ModelQwen3VL Model = "qwen3-vl"
	ModelGLM47   Model = "glm-4.7"
	ModelGPTOSS  Model = "gpt-oss"
)

// ErrUnknownModel marks a model identifier outside the supported set. It is
// distinct from transport failures so callers can reject bad input before a
// request goes out.
var ErrUnknownModel = errors.New("unknown model")

// ModelInfo describes a managed model endpoint.
type ModelInfo struct {
	Model              Model    `json:"model"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	MaxContextLength   int      `json:"max_context_length"`
	SupportsStreaming  bool     `json:"supports_streaming"`
	SupportsVision     bool     `json:"supports_vision"`
	OptimalTemperature float32  `json:"optimal_temperature"`
	RecommendedFor     []string `json:"recommended_for,omitempty"`
}

// modelOrder fixes the catalog listing order.
var modelOrder = []Model{ModelQwen3VL, ModelGLM47, ModelGPTOSS}

var catalog = map[Model]ModelInfo{
	ModelQwen3VL: {
		Model: ModelQwen3VL,
		Name:  "Qwen3-VL",
		Description: "Multimodal model with vision capabilities. Excellent for analyzing " +
			"network topology diagrams and visual representations of network data.",
		MaxContextLength:   32768,
		SupportsStreaming:  true,
		SupportsVision:     true,
		OptimalTemperature: 0.7,
		RecommendedFor: []string{
			"topology visualization analysis",
			"network diagram interpretation",
			"complex multi-step reasoning",
		},
	},
	ModelGLM47: {
		Model: ModelGLM47,
		Name:  "GLM-4.7",
		Description: "Fast inference model optimized for real-time interactions. " +
			"Best suited for quick network diagnostics queries.",
		MaxContextLength:   16384,
		SupportsStreaming:  true,
		OptimalTemperature: 0.6,
		RecommendedFor: []string{
			"real-time diagnostics",
			"quick Q&A",
			"streaming responses",
		},
	},
	ModelGPTOSS: {
		Model: ModelGPTOSS,
		Name:  "GPT-OSS",
		Description: "Open-source GPT model with balanced performance. " +
			"Good all-around choice for network diagnostics assistance.",
		MaxContextLength:   16384,
		SupportsStreaming:  true,
		OptimalTemperature: 0.7,
		RecommendedFor: []string{
			"general network queries",
			"remediation strategies",
			"documentation generation",
		},
	},
}

// ParseModel validates a model identifier against the closed set.
func ParseModel(s string) (Model, error) {
	m := Model(s)
	if _, ok := catalog[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, s)
	}
	return m, nil
}

// Info returns catalog metadata for a model.
func Info(m Model) (ModelInfo, bool) {
	info, ok := catalog[m]
	return info, ok
}

// Models lists the catalog in fixed order.
func Models() []ModelInfo {
	out := make([]ModelInfo, 0, len(modelOrder))
	for _, m := range modelOrder {
		out = append(out, catalog[m])
	}
	return out
}
