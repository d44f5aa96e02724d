package route

import (
	"context"
	"strings"
	"testing"
	"time"
)

func rtt(v float64) *float64 { return &v }

func trace(hops ...Hop) *TraceResult {
	return &TraceResult{
		Source:      "src.edu",
		Destination: "dst.edu",
		Timestamp:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Hops:        hops,
		Completed:   true,
	}
}

func TestProblematicHops(t *testing.T) {
	tr := trace(
		Hop{Number: 1, Address: "10.0.0.1", RTTMs: rtt(2), Responding: true},
		Hop{Number: 2, Address: "10.0.0.2", RTTMs: rtt(8), Responding: true},
		Hop{Number: 3, Address: "10.0.0.3", Responding: false},
		// Hop 4's predecessor has no RTT, so the delta rule cannot apply.
		Hop{Number: 4, Address: "10.0.0.4", RTTMs: rtt(45), Responding: true},
		Hop{Number: 5, Address: "10.0.0.5", RTTMs: rtt(90), Responding: true},
	)

	problems := tr.ProblematicHops()
	if len(problems) != 2 {
		t.Fatalf("expected 2 problematic hops, got %d: %+v", len(problems), problems)
	}
	if problems[0].Number != 3 {
		t.Errorf("expected non-responding hop 3 first, got hop %d", problems[0].Number)
	}
	if problems[1].Number != 5 {
		t.Errorf("expected high-delta hop 5, got hop %d", problems[1].Number)
	}
}

func TestProblematicHopsFirstHopOnlyByNonResponse(t *testing.T) {
	// Hop 1 has no predecessor; even a huge RTT cannot mark it problematic.
	tr := trace(
		Hop{Number: 1, Address: "10.0.0.1", RTTMs: rtt(500), Responding: true},
		Hop{Number: 2, Address: "10.0.0.2", RTTMs: rtt(505), Responding: true},
	)
	if problems := tr.ProblematicHops(); len(problems) != 0 {
		t.Fatalf("first hop must only qualify by non-response, got %+v", problems)
	}

	tr2 := trace(Hop{Number: 1, Address: "10.0.0.1", Responding: false})
	if problems := tr2.ProblematicHops(); len(problems) != 1 {
		t.Fatalf("non-responding first hop must qualify, got %+v", problems)
	}
}

func TestProblematicHopsDeltaEdge(t *testing.T) {
	// Exactly 20ms of increase is allowed; only a strictly greater delta flags.
	tr := trace(
		Hop{Number: 1, Address: "a", RTTMs: rtt(10), Responding: true},
		Hop{Number: 2, Address: "b", RTTMs: rtt(30), Responding: true},
		Hop{Number: 3, Address: "c", RTTMs: rtt(50.1), Responding: true},
	)
	problems := tr.ProblematicHops()
	if len(problems) != 1 || problems[0].Number != 3 {
		t.Fatalf("expected only hop 3 past the delta edge, got %+v", problems)
	}
}

func TestTotalRTT(t *testing.T) {
	tr := trace(
		Hop{Number: 1, Address: "a", RTTMs: rtt(5), Responding: true},
		Hop{Number: 2, Address: "b", RTTMs: rtt(42.5), Responding: true},
	)
	if got := tr.TotalRTTMs(); got == nil || *got != 42.5 {
		t.Fatalf("expected total RTT 42.5, got %v", got)
	}

	silent := trace(
		Hop{Number: 1, Address: "a", RTTMs: rtt(5), Responding: true},
		Hop{Number: 2, Address: "b", Responding: false},
	)
	if got := silent.TotalRTTMs(); got != nil {
		t.Fatalf("silent last hop must yield nil total RTT, got %v", *got)
	}

	if got := trace().TotalRTTMs(); got != nil {
		t.Fatalf("empty trace must yield nil total RTT")
	}
}

func TestFormatText(t *testing.T) {
	tr := trace(
		Hop{Number: 1, Address: "10.0.0.1", Hostname: "gw.src.edu", RTTMs: rtt(1.2), Responding: true},
		Hop{Number: 2, Address: "10.0.0.2", Responding: false},
	)
	out := tr.FormatText()
	for _, want := range []string{
		"Traceroute from src.edu to dst.edu",
		"gw.src.edu",
		"* * *",
		"Problematic hops detected",
		"possible firewall",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered trace missing %q:\n%s", want, out)
		}
	}
}

func TestCompareUnchanged(t *testing.T) {
	a := trace(
		Hop{Number: 1, Address: "10.0.0.1", RTTMs: rtt(5), Responding: true},
		Hop{Number: 2, Address: "10.0.0.2", RTTMs: rtt(12), Responding: true},
	)
	b := trace(
		Hop{Number: 1, Address: "10.0.0.1", RTTMs: rtt(6), Responding: true},
		Hop{Number: 2, Address: "10.0.0.2", RTTMs: rtt(15), Responding: true},
	)

	delta := Compare(a, b)
	if delta.PathChanged {
		t.Error("identical address sets must not report a path change")
	}
	if delta.RTTChangeMs != 3 {
		t.Errorf("expected RTT change 3ms, got %g", delta.RTTChangeMs)
	}
}

func TestCompareRerouted(t *testing.T) {
	a := trace(
		Hop{Number: 1, Address: "10.0.0.1", RTTMs: rtt(5), Responding: true},
		Hop{Number: 2, Address: "10.0.0.2", RTTMs: rtt(12), Responding: true},
	)
	b := trace(
		Hop{Number: 1, Address: "10.0.0.1", RTTMs: rtt(5), Responding: true},
		Hop{Number: 2, Address: "10.0.0.9", RTTMs: rtt(20), Responding: true},
		Hop{Number: 3, Address: "10.0.0.2", RTTMs: rtt(25), Responding: true},
	)

	delta := Compare(a, b)
	if !delta.PathChanged {
		t.Fatal("new hop must report a path change")
	}
	if len(delta.HopsAdded) != 1 || delta.HopsAdded[0] != "10.0.0.9" {
		t.Errorf("expected added hop 10.0.0.9, got %v", delta.HopsAdded)
	}
	if len(delta.HopsRemoved) != 0 {
		t.Errorf("expected no removed hops, got %v", delta.HopsRemoved)
	}
	if delta.OldHopCount != 2 || delta.NewHopCount != 3 {
		t.Errorf("hop counts wrong: %d -> %d", delta.OldHopCount, delta.NewHopCount)
	}
}

func TestSimulatedTracerKnownPath(t *testing.T) {
	tracer := NewSeededTracer(3)

	tr, err := tracer.Trace(context.Background(), "sdsc-prp.ucsd.edu", "nrp-chi.uchicago.edu")
	if err != nil {
		t.Fatalf("Trace() error: %v", err)
	}
	if tr.HopCount() != 7 {
		t.Fatalf("expected the fixed 7-hop topology, got %d hops", tr.HopCount())
	}
	if tr.Hops[0].Hostname != "gw-sdsc.ucsd.edu" {
		t.Errorf("unexpected first hop %q", tr.Hops[0].Hostname)
	}

	// Cumulative RTT must be nondecreasing across responding hops.
	last := 0.0
	for _, hop := range tr.Hops {
		if hop.RTTMs == nil {
			continue
		}
		if *hop.RTTMs < last {
			t.Errorf("RTT decreased at hop %d: %g after %g", hop.Number, *hop.RTTMs, last)
		}
		last = *hop.RTTMs
	}
}

func TestSimulatedTracerUnknownPathFallsBack(t *testing.T) {
	tracer := NewSeededTracer(3)

	tr, err := tracer.Trace(context.Background(), "nowhere.example", "elsewhere.example")
	if err != nil {
		t.Fatalf("Trace() error: %v", err)
	}
	if tr.HopCount() < 5 {
		t.Errorf("random fallback path too short: %d hops", tr.HopCount())
	}
	if !tr.Completed {
		t.Error("simulated trace must complete")
	}
}
