package measure

import (
	"testing"
	"time"
)

func TestHealthStatusClassification(t *testing.T) {
	cases := []struct {
		name string
		path PathHealth
		want HealthStatus
	}{
		{
			name: "healthy path",
			path: PathHealth{
				ThroughputGbps: Float64(9.4),
				LatencyMs:      Float64(12),
				PacketLossPct:  Float64(0.01),
			},
			want: StatusHealthy,
		},
		{
			name: "critical on heavy loss",
			path: PathHealth{PacketLossPct: Float64(2.0)},
			want: StatusCritical,
		},
		{
			name: "degraded on moderate loss",
			path: PathHealth{PacketLossPct: Float64(0.8)},
			want: StatusDegraded,
		},
		{
			name: "warning on high latency",
			path: PathHealth{LatencyMs: Float64(150)},
			want: StatusWarning,
		},
		{
			name: "warning on low throughput",
			path: PathHealth{ThroughputGbps: Float64(0.4)},
			want: StatusWarning,
		},
		{
			name: "loss outranks latency",
			path: PathHealth{PacketLossPct: Float64(1.5), LatencyMs: Float64(200)},
			want: StatusCritical,
		},
		{
			name: "no metrics measured",
			path: PathHealth{},
			want: StatusHealthy,
		},
		{
			name: "zero throughput does not warn",
			path: PathHealth{ThroughputGbps: Float64(0)},
			want: StatusHealthy,
		},
		{
			name: "loss exactly at degraded edge stays healthy",
			path: PathHealth{PacketLossPct: Float64(0.5)},
			want: StatusHealthy,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.path.HealthStatus(); got != tc.want {
				t.Errorf("HealthStatus() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestHealthStatusIsPure(t *testing.T) {
	now := time.Now()
	p := PathHealth{
		Source:        "a",
		Destination:   "b",
		PacketLossPct: Float64(0.8),
		LastUpdated:   &now,
	}
	first := p.HealthStatus()
	second := p.HealthStatus()
	if first != second || first != StatusDegraded {
		t.Errorf("repeated calls diverged: %s then %s", first, second)
	}

	*p.PacketLossPct = 0.01
	if got := p.HealthStatus(); got != StatusHealthy {
		t.Errorf("classification must follow current fields, got %s", got)
	}
}
