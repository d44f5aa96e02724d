package measure

// Package measure defines the measurement data model shared by the
// diagnostics subsystem.
//
// Responsibilities:
//   - Model individual scalar measurements (throughput, latency) per path
//   - Model per-path health snapshots with derived health classification
//   - Define the Source interface through which all measurement data enters
//     the system, so simulated and production backends are interchangeable

import "time"

// Kind identifies a measurement test type.
type Kind string

const (
	KindThroughput Kind = "throughput"
	KindLatency    Kind = "latency"
	KindTrace      Kind = "trace"
	KindRTT        Kind = "rtt"
)

// Measurement is a single scalar measurement result for a path. Immutable
// once produced.
type Measurement struct {
	Kind        Kind              `json:"test_type"`
	Source      string            `json:"source"`
	Destination string            `json:"destination"`
	Timestamp   time.Time         `json:"timestamp"`
	Value       float64           `json:"value"`
	Unit        string            `json:"unit"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// HealthStatus classifies the condition of a network path.
type HealthStatus string

const (
	StatusHealthy  HealthStatus = "healthy"
	StatusWarning  HealthStatus = "warning"
	StatusDegraded HealthStatus = "degraded"
	StatusCritical HealthStatus = "critical"
)

// PathHealth is a snapshot of metrics for one monitored (source, destination)
// pair. Optional metrics are pointers; nil means the metric was not measured
// and never triggers a classification rule.
type PathHealth struct {
	Source         string     `json:"source"`
	Destination    string     `json:"destination"`
	ThroughputGbps *float64   `json:"throughput_gbps"`
	LatencyMs      *float64   `json:"latency_ms"`
	PacketLossPct  *float64   `json:"packet_loss_pct"`
	JitterMs       *float64   `json:"jitter_ms"`
	RetransmitsPct *float64   `json:"retransmits_pct"`
	HopCount       *int       `json:"hop_count"`
	LastUpdated    *time.Time `json:"last_updated"`
}

// healthRule is one entry in the ordered classification table. Rules are
// evaluated top to bottom; the first match wins.
type healthRule struct {
	status HealthStatus
	match  func(p *PathHealth) bool
}

var healthRules = []healthRule{
	{StatusCritical, func(p *PathHealth) bool { return above(p.PacketLossPct, 1.0) }},
	{StatusDegraded, func(p *PathHealth) bool { return above(p.PacketLossPct, 0.5) }},
	{StatusWarning, func(p *PathHealth) bool { return above(p.LatencyMs, 100) || belowPos(p.ThroughputGbps, 1.0) }},
}

// HealthStatus derives the path's health from its numeric fields. It is a
// pure function of the snapshot and is recomputed on every call, never cached.
func (p *PathHealth) HealthStatus() HealthStatus {
	for _, r := range healthRules {
		if r.match(p) {
			return r.status
		}
	}
	return StatusHealthy
}

func above(v *float64, limit float64) bool {
	return v != nil && *v > limit
}

// belowPos matches only measured, positive values under the limit. A nil or
// zero reading does not trigger the rule.
func belowPos(v *float64, limit float64) bool {
	return v != nil && *v > 0 && *v < limit
}

// Float64 returns a pointer to v. Convenience for building snapshots.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
