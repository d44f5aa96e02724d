package telemetry

// Package telemetry aggregates measurement, trace, and anomaly data into
// health summaries, per-path diagnostics bundles, and the bounded context
// text injected into model prompts.
//
// Responsibilities:
//   - Enumerate all monitored paths and classify each independently
//   - Assemble per-path diagnostics from concurrent sub-fetches
//   - Render a short, fixed-order telemetry block for prompt injection

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kohanfikr/netai/internal/anomaly"
	"github.com/kohanfikr/netai/internal/measure"
	"github.com/kohanfikr/netai/internal/metrics"
	"github.com/kohanfikr/netai/internal/route"
)

const (
	// diagnosticsWindow is the measurement lookback for a full diagnostics
	// bundle.
	diagnosticsWindow = 24 * time.Hour

	// contextWindow is the shorter lookback used when rendering prompt
	// context, where only fresh anomalies matter.
	contextWindow = 6 * time.Hour

	// maxContextAnomalies caps how many anomalies the prompt block carries.
	maxContextAnomalies = 3
)

// Summary is the classification of every monitored path at one instant.
// Paths are classified independently; there is no cross-path correlation.
type Summary struct {
	Timestamp  time.Time            `json:"timestamp"`
	TotalPaths int                  `json:"total_paths"`
	Healthy    int                  `json:"healthy"`
	Warning    int                  `json:"warning"`
	Degraded   int                  `json:"degraded"`
	Critical   int                  `json:"critical"`
	Paths      []measure.PathHealth `json:"paths"`
}

// Diagnostics bundles everything known about one path.
type Diagnostics struct {
	Path              *measure.PathHealth  `json:"path"`
	HealthStatus      measure.HealthStatus `json:"health_status"`
	Trace             *route.TraceResult   `json:"traceroute"`
	Anomalies         []anomaly.Anomaly    `json:"anomalies"`
	MeasurementCounts map[string]int       `json:"measurement_count"`
}

// Processor orchestrates the measurement source, tracer, and detector.
type Processor struct {
	source   measure.Source
	tracer   route.Tracer
	detector *anomaly.Detector
	log      *zap.Logger
}

// NewProcessor wires the diagnostics components together.
func NewProcessor(source measure.Source, tracer route.Tracer, detector *anomaly.Detector, log *zap.Logger) *Processor {
	return &Processor{source: source, tracer: tracer, detector: detector, log: log}
}

// NetworkSummary classifies all monitored paths.
func (p *Processor) NetworkSummary(ctx context.Context) (*Summary, error) {
	paths, err := p.source.Paths(ctx)
	if err != nil {
		metrics.TelemetryFetchFailures.WithLabelValues("paths").Inc()
		return nil, fmt.Errorf("fetch paths: %w", err)
	}

	s := &Summary{
		Timestamp:  time.Now().UTC(),
		TotalPaths: len(paths),
		Paths:      paths,
	}
	for i := range paths {
		switch paths[i].HealthStatus() {
		case measure.StatusHealthy:
			s.Healthy++
		case measure.StatusWarning:
			s.Warning++
		case measure.StatusDegraded:
			s.Degraded++
		case measure.StatusCritical:
			s.Critical++
		}
	}
	return s, nil
}

// PathDiagnostics assembles the full bundle for one path. The four
// sub-fetches run concurrently and are independent; the bundle fails if any
// sub-fetch fails, because for a direct diagnostics request the data is the
// entire point.
func (p *Processor) PathDiagnostics(ctx context.Context, source, destination string) (*Diagnostics, error) {
	var (
		wg sync.WaitGroup

		health     *measure.PathHealth
		trace      *route.TraceResult
		throughput []measure.Measurement
		latency    []measure.Measurement

		healthErr, traceErr, tpErr, latErr error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		health, healthErr = p.source.PathHealth(ctx, source, destination)
	}()
	go func() {
		defer wg.Done()
		trace, traceErr = p.tracer.Trace(ctx, source, destination)
	}()
	go func() {
		defer wg.Done()
		throughput, tpErr = p.source.Measurements(ctx, measure.KindThroughput, source, destination, diagnosticsWindow)
	}()
	go func() {
		defer wg.Done()
		latency, latErr = p.source.Measurements(ctx, measure.KindLatency, source, destination, diagnosticsWindow)
	}()
	wg.Wait()

	subfetches := []struct {
		kind string
		err  error
	}{
		{"health", healthErr},
		{"trace", traceErr},
		{"throughput", tpErr},
		{"latency", latErr},
	}
	for _, sf := range subfetches {
		if sf.err != nil {
			metrics.TelemetryFetchFailures.WithLabelValues(sf.kind).Inc()
			return nil, fmt.Errorf("fetch %s for %s->%s: %w", sf.kind, source, destination, sf.err)
		}
	}

	anomalies := p.detector.DetectAll(throughput, latency, source, destination)
	for _, a := range anomalies {
		metrics.AnomaliesDetected.WithLabelValues(string(a.Type), string(a.Severity)).Inc()
	}

	return &Diagnostics{
		Path:         health,
		HealthStatus: health.HealthStatus(),
		Trace:        trace,
		Anomalies:    anomalies,
		MeasurementCounts: map[string]int{
			"throughput": len(throughput),
			"latency":    len(latency),
		},
	}, nil
}

// FormatContext renders current telemetry as a short text block for prompt
// injection. With both endpoints set it emits the fixed-order path block;
// otherwise the aggregate summary counts. The output is bounded: at most
// the path header, status, four metrics, and three anomalies.
func (p *Processor) FormatContext(ctx context.Context, source, destination string) (string, error) {
	if source != "" && destination != "" {
		return p.formatPathContext(ctx, source, destination)
	}
	return p.formatSummaryContext(ctx)
}

func (p *Processor) formatPathContext(ctx context.Context, source, destination string) (string, error) {
	path, err := p.source.PathHealth(ctx, source, destination)
	if err != nil {
		metrics.TelemetryFetchFailures.WithLabelValues("health").Inc()
		return "", fmt.Errorf("fetch path health: %w", err)
	}

	var lines []string
	lines = append(lines,
		fmt.Sprintf("**Path**: %s -> %s", source, destination),
		fmt.Sprintf("**Status**: %s", strings.ToUpper(string(path.HealthStatus()))),
		fmt.Sprintf("**Throughput**: %s Gbps", formatOpt(path.ThroughputGbps)),
		fmt.Sprintf("**Latency**: %sms", formatOpt(path.LatencyMs)),
		fmt.Sprintf("**Packet Loss**: %s%%", formatOpt(path.PacketLossPct)),
		fmt.Sprintf("**Jitter**: %sms", formatOpt(path.JitterMs)),
	)

	// Anomaly lookups are best-effort here: a failed window fetch degrades
	// to "no anomalies" rather than losing the whole context block.
	anomalies := p.recentAnomalies(ctx, source, destination)
	if len(anomalies) > 0 {
		lines = append(lines, fmt.Sprintf("\n**Active Anomalies** (%d):", len(anomalies)))
		for i, a := range anomalies {
			if i >= maxContextAnomalies {
				break
			}
			lines = append(lines, "- "+a.FormatForLLM())
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (p *Processor) recentAnomalies(ctx context.Context, source, destination string) []anomaly.Anomaly {
	throughput, err := p.source.Measurements(ctx, measure.KindThroughput, source, destination, contextWindow)
	if err != nil {
		metrics.TelemetryFetchFailures.WithLabelValues("throughput").Inc()
		p.log.Warn("throughput window fetch failed", zap.Error(err))
		throughput = nil
	}
	latency, err := p.source.Measurements(ctx, measure.KindLatency, source, destination, contextWindow)
	if err != nil {
		metrics.TelemetryFetchFailures.WithLabelValues("latency").Inc()
		p.log.Warn("latency window fetch failed", zap.Error(err))
		latency = nil
	}
	return p.detector.DetectAll(throughput, latency, source, destination)
}

func (p *Processor) formatSummaryContext(ctx context.Context) (string, error) {
	summary, err := p.NetworkSummary(ctx)
	if err != nil {
		return "", err
	}
	return strings.Join([]string{
		fmt.Sprintf("**Network Overview** (%d monitored paths)", summary.TotalPaths),
		fmt.Sprintf("- Healthy: %d", summary.Healthy),
		fmt.Sprintf("- Warning: %d", summary.Warning),
		fmt.Sprintf("- Degraded: %d", summary.Degraded),
		fmt.Sprintf("- Critical: %d", summary.Critical),
	}, "\n"), nil
}

// FormatAnomalies renders an anomaly list for prompt injection.
func (p *Processor) FormatAnomalies(anomalies []anomaly.Anomaly) string {
	if len(anomalies) == 0 {
		return "No active anomalies detected."
	}
	parts := []string{fmt.Sprintf("**%d Active Anomalies:**\n", len(anomalies))}
	for i, a := range anomalies {
		parts = append(parts, fmt.Sprintf("%d. %s\n", i+1, a.FormatForLLM()))
	}
	return strings.Join(parts, "\n")
}

func formatOpt(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%g", *v)
}
