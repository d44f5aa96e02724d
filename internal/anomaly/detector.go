package anomaly

// Package anomaly detects deviations in measurement series using classical
// statistics.
//
// Responsibilities:
//   - Compute a baseline (mean, sample standard deviation) over a series
//   - Flag recent samples deviating from baseline by percentage or z-score
//   - Bucket deviations into severities via an ordered threshold table
//   - Return anomalies ordered critical-first with a stable sort
//
// The detector is deterministic and fully interpretable: every anomaly
// carries its baseline, threshold, and z-score in the description.

import (
	"fmt"
	"math"
	"sort"

	"github.com/kohanfikr/netai/internal/measure"
)

// recencyWindow is how many trailing samples are evaluated against the
// baseline. Older outliers never re-trigger.
const recencyWindow = 10

// minSamples is the minimum series length for detection. Shorter series
// yield a defined empty result, not an error.
const minSamples = 5

// Thresholds configures detection sensitivity. Zero-value fields are not
// defaulted; construct with DefaultThresholds and override as needed.
type Thresholds struct {
	ThroughputDropPct float64 `json:"throughput_drop_pct"`
	LatencySpikePct   float64 `json:"latency_spike_pct"`
	PacketLossPct     float64 `json:"packet_loss_pct"`
	JitterMs          float64 `json:"jitter_ms"`
}

// DefaultThresholds returns the standard alerting thresholds for the
// research platform network.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ThroughputDropPct: 20,
		LatencySpikePct:   50,
		PacketLossPct:     0.5,
		JitterMs:          10,
	}
}

// Detector runs threshold and statistical anomaly detection over
// measurement series.
type Detector struct {
	thresholds Thresholds
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(t Thresholds) *Detector {
	return &Detector{thresholds: t}
}

// baseline holds the population estimate for a series.
type baseline struct {
	mean   float64
	stdDev float64
}

func computeBaseline(values []float64) baseline {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	// Sample standard deviation; zero when fewer than 2 samples so the
	// downstream z-score division is guarded.
	var stdDev float64
	if len(values) > 1 {
		var ss float64
		for _, v := range values {
			d := v - mean
			ss += d * d
		}
		stdDev = math.Sqrt(ss / float64(len(values)-1))
	}
	return baseline{mean: mean, stdDev: stdDev}
}

// DetectThroughput flags recent throughput samples that dropped below
// baseline by more than the configured percentage, or whose z-score is
// below -2. The two conditions are an OR: either alone triggers.
func (d *Detector) DetectThroughput(samples []measure.Measurement, source, destination string) []Anomaly {
	if len(samples) < minSamples {
		return nil
	}

	bl := computeBaseline(values(samples))
	thresholdPct := d.thresholds.ThroughputDropPct

	var anomalies []Anomaly
	for _, m := range recent(samples) {
		var dropPct, z float64
		if bl.mean > 0 {
			dropPct = (bl.mean - m.Value) / bl.mean * 100
		}
		if bl.stdDev > 0 {
			z = (m.Value - bl.mean) / bl.stdDev
		}
		if dropPct <= thresholdPct && z >= -2 {
			continue
		}
		anomalies = append(anomalies, Anomaly{
			Type:        TypeThroughputDrop,
			Severity:    classifySeverity(dropPct, [3]float64{20, 40, 60}),
			Source:      endpoint(source, m.Source),
			Destination: endpoint(destination, m.Destination),
			Description: fmt.Sprintf(
				"Throughput dropped %.1f%% below baseline (%.2f Gbps vs %.2f Gbps baseline). Z-score: %.2f",
				dropPct, m.Value, bl.mean, z),
			DetectedAt:    m.Timestamp,
			CurrentValue:  round2(m.Value),
			BaselineValue: round2(bl.mean),
			Threshold:     round2(bl.mean * (1 - thresholdPct/100)),
			Unit:          "Gbps",
		})
	}
	return anomalies
}

// DetectLatency flags recent latency samples that spiked above baseline by
// more than the configured percentage, or whose z-score exceeds 2.
func (d *Detector) DetectLatency(samples []measure.Measurement, source, destination string) []Anomaly {
	if len(samples) < minSamples {
		return nil
	}

	bl := computeBaseline(values(samples))
	thresholdPct := d.thresholds.LatencySpikePct

	var anomalies []Anomaly
	for _, m := range recent(samples) {
		var spikePct, z float64
		if bl.mean > 0 {
			spikePct = (m.Value - bl.mean) / bl.mean * 100
		}
		if bl.stdDev > 0 {
			z = (m.Value - bl.mean) / bl.stdDev
		}
		if spikePct <= thresholdPct && z <= 2 {
			continue
		}
		anomalies = append(anomalies, Anomaly{
			Type:        TypeLatencySpike,
			Severity:    classifySeverity(spikePct, [3]float64{50, 100, 200}),
			Source:      endpoint(source, m.Source),
			Destination: endpoint(destination, m.Destination),
			Description: fmt.Sprintf(
				"Latency spiked %.1f%% above baseline (%.2fms vs %.2fms baseline). Z-score: %.2f",
				spikePct, m.Value, bl.mean, z),
			DetectedAt:    m.Timestamp,
			CurrentValue:  round2(m.Value),
			BaselineValue: round2(bl.mean),
			Threshold:     round2(bl.mean * (1 + thresholdPct/100)),
			Unit:          "ms",
		})
	}
	return anomalies
}

// DetectAll runs both detectors over their independent series and returns
// the concatenation ordered by severity. The sort is stable, so ties keep
// detector-then-sample order.
func (d *Detector) DetectAll(throughput, latency []measure.Measurement, source, destination string) []Anomaly {
	anomalies := d.DetectThroughput(throughput, source, destination)
	anomalies = append(anomalies, d.DetectLatency(latency, source, destination)...)

	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].Severity.Rank() < anomalies[j].Severity.Rank()
	})
	return anomalies
}

// classifySeverity buckets a deviation percentage against ordered edges
// {medium, high, critical}. Buckets are strictly nested: deviation >= the
// highest edge is critical, and anything under the lowest edge is low.
func classifySeverity(deviationPct float64, edges [3]float64) Severity {
	buckets := []struct {
		min float64
		sev Severity
	}{
		{edges[2], SeverityCritical},
		{edges[1], SeverityHigh},
		{edges[0], SeverityMedium},
	}
	for _, b := range buckets {
		if deviationPct >= b.min {
			return b.sev
		}
	}
	return SeverityLow
}

func values(samples []measure.Measurement) []float64 {
	out := make([]float64, len(samples))
	for i, m := range samples {
		out[i] = m.Value
	}
	return out
}

func recent(samples []measure.Measurement) []measure.Measurement {
	if len(samples) <= recencyWindow {
		return samples
	}
	return samples[len(samples)-recencyWindow:]
}

func endpoint(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
