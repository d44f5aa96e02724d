package measure

import (
	"context"
	"time"
)

// Source supplies measurement data for monitored paths. Production
// deployments back this with a perfSONAR measurement archive; development
// and demo deployments use the simulated source. Core logic never
// distinguishes the two.
//
// Any method may fail with a retrievable error; callers treat such failures
// as "no data" unless the data itself is the point of the request.
type Source interface {
	// Measurements returns the ordered measurements of the given kind for a
	// path over the trailing window.
	Measurements(ctx context.Context, kind Kind, source, destination string, window time.Duration) ([]Measurement, error)

	// Paths returns health snapshots for all monitored paths.
	Paths(ctx context.Context) ([]PathHealth, error)

	// PathHealth returns the current health snapshot for one path.
	PathHealth(ctx context.Context, source, destination string) (*PathHealth, error)
}
