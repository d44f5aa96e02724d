package route

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

type topologyHop struct {
	address  string
	hostname string
	location string
	asn      int
}

// mockTopology holds fixed paths between well-known endpoint pairs so
// repeated traces of the same path stay recognizable.
var mockTopology = map[[2]string][]topologyHop{
	{"sdsc-prp.ucsd.edu", "nrp-chi.uchicago.edu"}: {
		{"10.0.1.1", "gw-sdsc.ucsd.edu", "San Diego, CA", 64512},
		{"198.17.46.1", "cenic-la.cenic.org", "Los Angeles, CA", 2152},
		{"134.55.40.1", "esnet-snv.es.net", "Sunnyvale, CA", 293},
		{"134.55.50.5", "esnet-den.es.net", "Denver, CO", 293},
		{"134.55.60.1", "esnet-chi.es.net", "Chicago, IL", 293},
		{"192.170.232.1", "i2-chi.internet2.edu", "Chicago, IL", 11537},
		{"10.10.1.1", "gw-chi.uchicago.edu", "Chicago, IL", 160},
	},
	{"nrp-chi.uchicago.edu", "nrp-sea.washington.edu"}: {
		{"10.10.1.1", "gw-chi.uchicago.edu", "Chicago, IL", 160},
		{"192.170.232.5", "i2-chi.internet2.edu", "Chicago, IL", 11537},
		{"192.170.233.1", "i2-den.internet2.edu", "Denver, CO", 11537},
		{"192.170.234.1", "i2-sea.internet2.edu", "Seattle, WA", 11537},
		{"10.20.1.1", "gw-sea.washington.edu", "Seattle, WA", 73},
	},
}

// SimulatedTracer generates realistic traceroutes over a fixed mock
// topology, falling back to a random path for unknown endpoint pairs.
type SimulatedTracer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedTracer returns a tracer seeded from the clock.
func NewSimulatedTracer() *SimulatedTracer {
	return NewSeededTracer(time.Now().UnixNano())
}

// NewSeededTracer returns a tracer with a fixed seed for reproducible traces.
func NewSeededTracer(seed int64) *SimulatedTracer {
	return &SimulatedTracer{rng: rand.New(rand.NewSource(seed))}
}

// Trace produces a traceroute with cumulative per-hop RTTs and an
// occasional silent hop.
func (t *SimulatedTracer) Trace(ctx context.Context, source, destination string) (*TraceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	path, ok := mockTopology[[2]string{source, destination}]
	if !ok {
		path = t.randomPath()
	}

	hops := make([]Hop, 0, len(path))
	cumulative := 0.0
	for i, th := range path {
		cumulative += 1.0 + t.rng.Float64()*14.0
		responding := t.rng.Float64() > 0.05

		hop := Hop{
			Number:     i + 1,
			Address:    th.address,
			Hostname:   th.hostname,
			Location:   th.location,
			Responding: responding,
		}
		asn := th.asn
		hop.ASN = &asn
		if responding {
			rtt := roundTo(cumulative, 2)
			hop.RTTMs = &rtt
		}
		hops = append(hops, hop)
	}

	return &TraceResult{
		Source:      source,
		Destination: destination,
		Timestamp:   time.Now().UTC(),
		Hops:        hops,
		Completed:   true,
	}, nil
}

func (t *SimulatedTracer) randomPath() []topologyHop {
	locations := []struct {
		name string
		asn  int
	}{
		{"San Diego, CA", 64512},
		{"Los Angeles, CA", 2152},
		{"Denver, CO", 293},
		{"Kansas City, MO", 11537},
		{"Chicago, IL", 160},
	}

	count := 5 + t.rng.Intn(8)
	path := make([]topologyHop, 0, count)
	for i := 0; i < count; i++ {
		loc := locations[t.rng.Intn(len(locations))]
		city := strings.ToLower(strings.ReplaceAll(strings.Split(loc.name, ",")[0], " ", ""))
		path = append(path, topologyHop{
			address: fmt.Sprintf("%d.%d.%d.%d",
				10+t.rng.Intn(189), t.rng.Intn(256), t.rng.Intn(256), 1+t.rng.Intn(254)),
			hostname: fmt.Sprintf("router-%d.%s.net", i+1, city),
			location: loc.name,
			asn:      loc.asn,
		})
	}
	return path
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int(v*scale+0.5)) / scale
}
