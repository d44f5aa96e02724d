package measure

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// NRPNodes lists the research-platform endpoints used by the simulated
// source to build a realistic topology.
var NRPNodes = []string{
	"sdsc-prp.ucsd.edu",
	"fiona-10g.ucsd.edu",
	"stashcache.t2.ucsd.edu",
	"k8s-gen4-01.sdsc.edu",
	"nrp-chi.uchicago.edu",
	"nrp-den.colorado.edu",
	"nrp-sea.washington.edu",
	"nrp-nyc.columbia.edu",
	"nrp-atl.gatech.edu",
	"nrp-aus.utexas.edu",
}

// SimulatedSource generates realistic measurement data without touching real
// instrumentation. It is one concrete Source implementation; the diagnostics
// core treats it exactly like a production backend.
type SimulatedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedSource returns a simulated source seeded from the clock.
func NewSimulatedSource() *SimulatedSource {
	return NewSeededSource(time.Now().UnixNano())
}

// NewSeededSource returns a simulated source with a fixed seed, for
// reproducible test data.
func NewSeededSource(seed int64) *SimulatedSource {
	return &SimulatedSource{rng: rand.New(rand.NewSource(seed))}
}

// Measurements generates a measurement series for the path. Throughput is
// sampled at 15-minute intervals with occasional dips; latency at 1-minute
// intervals with occasional spikes.
func (s *SimulatedSource) Measurements(ctx context.Context, kind Kind, source, destination string, window time.Duration) ([]Measurement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hours := int(window.Hours())
	if hours < 1 {
		hours = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case KindLatency, KindRTT:
		return s.latencySeries(source, destination, hours), nil
	default:
		return s.throughputSeries(source, destination, hours), nil
	}
}

func (s *SimulatedSource) throughputSeries(source, destination string, hours int) []Measurement {
	now := time.Now().UTC()
	baseline := 5.0 + s.rng.Float64()*5.0
	out := make([]Measurement, 0, hours*4)

	for i := 0; i < hours*4; i++ {
		ts := now.Add(-time.Duration(15*i) * time.Minute)
		value := baseline + s.rng.NormFloat64()*0.3
		if s.rng.Float64() < 0.05 {
			value -= 2.0 // occasional dip
		}
		if value < 0.5 {
			value = 0.5
		}
		out = append(out, Measurement{
			Kind:        KindThroughput,
			Source:      source,
			Destination: destination,
			Timestamp:   ts,
			Value:       round2(value),
			Unit:        "Gbps",
			Metadata:    map[string]string{"tool": "iperf3", "duration": "20"},
		})
	}
	return out
}

func (s *SimulatedSource) latencySeries(source, destination string, hours int) []Measurement {
	now := time.Now().UTC()
	baseline := 10.0 + s.rng.Float64()*40.0
	out := make([]Measurement, 0, hours*60)

	for i := 0; i < hours*60; i++ {
		ts := now.Add(-time.Duration(i) * time.Minute)
		value := baseline + s.rng.NormFloat64()*2.0
		if s.rng.Float64() < 0.02 {
			value += 30.0 // occasional spike
		}
		if value < 1.0 {
			value = 1.0
		}
		out = append(out, Measurement{
			Kind:        KindLatency,
			Source:      source,
			Destination: destination,
			Timestamp:   ts,
			Value:       round2(value),
			Unit:        "ms",
			Metadata:    map[string]string{"tool": "owping", "sample_size": "100"},
		})
	}
	return out
}

// Paths returns snapshots for adjacent node pairs in the simulated topology.
func (s *SimulatedSource) Paths(ctx context.Context) ([]PathHealth, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	paths := make([]PathHealth, 0, len(NRPNodes)/2)
	for i := 0; i+1 < len(NRPNodes); i += 2 {
		updated := now.Add(-time.Duration(s.rng.Intn(31)) * time.Minute)
		p := s.snapshot(NRPNodes[i], NRPNodes[i+1])
		p.LastUpdated = &updated
		paths = append(paths, p)
	}
	return paths, nil
}

// PathHealth returns a fresh snapshot for the given path.
func (s *SimulatedSource) PathHealth(ctx context.Context, source, destination string) (*PathHealth, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p := s.snapshot(source, destination)
	p.LastUpdated = &now
	return &p, nil
}

func (s *SimulatedSource) snapshot(source, destination string) PathHealth {
	// Loss distribution: mostly clean, sometimes minor, occasionally lossy.
	var loss float64
	switch r := s.rng.Float64(); {
	case r < 0.7:
		loss = 0.0
	case r < 0.9:
		loss = 0.01 + s.rng.Float64()*0.29
	default:
		loss = 0.5 + s.rng.Float64()*1.5
	}

	return PathHealth{
		Source:         source,
		Destination:    destination,
		ThroughputGbps: Float64(round2(3.0 + s.rng.Float64()*7.0)),
		LatencyMs:      Float64(round2(5.0 + s.rng.Float64()*75.0)),
		PacketLossPct:  Float64(round3(loss)),
		JitterMs:       Float64(round2(0.5 + s.rng.Float64()*7.5)),
		RetransmitsPct: Float64(round3(s.rng.Float64() * 0.5)),
		HopCount:       Int(4 + s.rng.Intn(12)),
	}
}

func round2(v float64) float64 { return float64(int(v*100+0.5)) / 100 }
func round3(v float64) float64 { return float64(int(v*1000+0.5)) / 1000 }
