package anomaly

import (
	"fmt"
	"strings"
	"time"
)

// Severity ranks how serious a detected anomaly is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRank orders severities for presentation, critical first.
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// Rank returns the sort position of the severity (critical=0 .. low=3).
func (s Severity) Rank() int { return severityRank[s] }

// Type identifies the class of a network anomaly.
type Type string

const (
	TypeThroughputDrop Type = "throughput_drop"
	TypeLatencySpike   Type = "latency_spike"
	TypePacketLoss     Type = "packet_loss"
	TypeJitterIncrease Type = "jitter_increase"
	TypePathChange     Type = "path_change"
	TypeLinkFlap       Type = "link_flap"
)

// Anomaly is a detected deviation from baseline behavior. Created only by
// the Detector; immutable afterwards.
type Anomaly struct {
	Type          Type      `json:"type"`
	Severity      Severity  `json:"severity"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	Description   string    `json:"description"`
	DetectedAt    time.Time `json:"detected_at"`
	CurrentValue  float64   `json:"current_value"`
	BaselineValue float64   `json:"baseline_value"`
	Threshold     float64   `json:"threshold"`
	Unit          string    `json:"unit"`
}

// FormatForLLM renders the anomaly as a compact block suitable for
// injection into a model prompt.
func (a Anomaly) FormatForLLM() string {
	title := titleWords(strings.ReplaceAll(string(a.Type), "_", " "))
	return fmt.Sprintf(
		"**%s** [%s]\nPath: %s -> %s\nCurrent: %g %s (baseline: %g %s, threshold: %g %s)\nDetected: %s\nDescription: %s",
		title, strings.ToUpper(string(a.Severity)),
		a.Source, a.Destination,
		a.CurrentValue, a.Unit, a.BaselineValue, a.Unit, a.Threshold, a.Unit,
		a.DetectedAt.Format(time.RFC3339), a.Description,
	)
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
