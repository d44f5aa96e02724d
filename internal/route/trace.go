package route

// Package route analyzes traceroute data for path-level diagnostics:
// problematic-hop identification and routing-change detection between
// snapshots.

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Hop is one network-layer relay reported by a route trace. RTT, ASN, and
// location are optional; a non-responding hop has no RTT.
type Hop struct {
	Number     int      `json:"hop"`
	Address    string   `json:"ip"`
	Hostname   string   `json:"hostname,omitempty"`
	RTTMs      *float64 `json:"rtt_ms"`
	ASN        *int     `json:"asn,omitempty"`
	Location   string   `json:"location,omitempty"`
	Responding bool     `json:"responding"`
}

// hopRTTDeltaMs is the per-hop cumulative RTT increase above which a
// responding hop is considered problematic.
const hopRTTDeltaMs = 20.0

// TraceResult is a complete traceroute between two endpoints. Hop numbers
// are contiguous starting at 1.
type TraceResult struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Timestamp   time.Time `json:"timestamp"`
	Hops        []Hop     `json:"hops"`
	Completed   bool      `json:"completed"`
}

// HopCount returns the number of hops in the trace.
func (t *TraceResult) HopCount() int { return len(t.Hops) }

// TotalRTTMs returns the cumulative RTT at the last hop, or nil if the last
// hop did not respond.
func (t *TraceResult) TotalRTTMs() *float64 {
	if len(t.Hops) == 0 {
		return nil
	}
	return t.Hops[len(t.Hops)-1].RTTMs
}

// ProblematicHops returns the hops that are non-responding, plus responding
// hops whose RTT increased more than 20ms over the preceding hop. The first
// hop has no predecessor, so it can only qualify by non-response.
func (t *TraceResult) ProblematicHops() []Hop {
	var problems []Hop
	for i, hop := range t.Hops {
		switch {
		case !hop.Responding:
			problems = append(problems, hop)
		case i > 0 && hop.RTTMs != nil && t.Hops[i-1].RTTMs != nil:
			if *hop.RTTMs-*t.Hops[i-1].RTTMs > hopRTTDeltaMs {
				problems = append(problems, hop)
			}
		}
	}
	return problems
}

// FormatText renders the trace as a readable hop table with a footnote for
// problematic hops, suitable for model context or operator display.
func (t *TraceResult) FormatText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Traceroute from %s to %s\n", t.Source, t.Destination)
	fmt.Fprintf(&b, "Time: %s\n", t.Timestamp.Format(time.RFC3339))
	b.WriteString(strings.Repeat("-", 70) + "\n")

	for _, hop := range t.Hops {
		if !hop.Responding {
			fmt.Fprintf(&b, "  %2d  * * *  (no response)\n", hop.Number)
			continue
		}
		host := hop.Hostname
		if host == "" {
			host = hop.Address
		}
		rtt := "N/A"
		if hop.RTTMs != nil {
			rtt = fmt.Sprintf("%.1fms", *hop.RTTMs)
		}
		asn := ""
		if hop.ASN != nil {
			asn = fmt.Sprintf("  AS%d", *hop.ASN)
		}
		loc := ""
		if hop.Location != "" {
			loc = fmt.Sprintf("  [%s]", hop.Location)
		}
		fmt.Fprintf(&b, "  %2d  %-40s %10s%s%s\n", hop.Number, host, rtt, asn, loc)
	}

	if problems := t.ProblematicHops(); len(problems) > 0 {
		b.WriteString("\nProblematic hops detected:\n")
		for _, hop := range problems {
			if !hop.Responding {
				fmt.Fprintf(&b, "  - Hop %d: No response (possible firewall)\n", hop.Number)
				continue
			}
			host := hop.Hostname
			if host == "" {
				host = hop.Address
			}
			fmt.Fprintf(&b, "  - Hop %d (%s): High latency (%.1fms)\n", hop.Number, host, *hop.RTTMs)
		}
	}
	return b.String()
}

// PathDelta describes the routing difference between two traces of the same
// path.
type PathDelta struct {
	PathChanged bool     `json:"path_changed"`
	HopsAdded   []string `json:"hops_added"`
	HopsRemoved []string `json:"hops_removed"`
	OldHopCount int      `json:"old_hop_count"`
	NewHopCount int      `json:"new_hop_count"`
	RTTChangeMs float64  `json:"rtt_change_ms"`
}

// Compare computes the symmetric difference of hop address sets between two
// traces. PathChanged is true iff any address appears in exactly one trace.
func Compare(old, updated *TraceResult) PathDelta {
	oldSet := addressSet(old)
	newSet := addressSet(updated)

	var added, removed []string
	for addr := range newSet {
		if !oldSet[addr] {
			added = append(added, addr)
		}
	}
	for addr := range oldSet {
		if !newSet[addr] {
			removed = append(removed, addr)
		}
	}

	var oldRTT, newRTT float64
	if v := old.TotalRTTMs(); v != nil {
		oldRTT = *v
	}
	if v := updated.TotalRTTMs(); v != nil {
		newRTT = *v
	}

	return PathDelta{
		PathChanged: len(added) > 0 || len(removed) > 0,
		HopsAdded:   added,
		HopsRemoved: removed,
		OldHopCount: old.HopCount(),
		NewHopCount: updated.HopCount(),
		RTTChangeMs: newRTT - oldRTT,
	}
}

func addressSet(t *TraceResult) map[string]bool {
	set := make(map[string]bool, len(t.Hops))
	for _, hop := range t.Hops {
		set[hop.Address] = true
	}
	return set
}

// Tracer executes route traces. Production deployments shell out to real
// instrumentation; the simulated tracer replays a fixed topology.
type Tracer interface {
	Trace(ctx context.Context, source, destination string) (*TraceResult, error)
}
