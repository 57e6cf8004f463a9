package flatface

import (
	"context"

	"github.com/akmonengine/flatface/mesh"
	"github.com/akmonengine/flatface/plane"
)

const (
	DEFAULT_ITERATIONS = 10
	// SOFT_MAX_ITERATIONS is a practical ceiling for callers, the flattener itself accepts any count
	SOFT_MAX_ITERATIONS = 25
)

// Outcome tags what a single pass did to a polygon
type Outcome uint8

const (
	APPLIED Outcome = iota
	SKIPPED_DEGENERATE
	SKIPPED_MALFORMED
)

func (o Outcome) String() string {
	switch o {
	case APPLIED:
		return "applied"
	case SKIPPED_DEGENERATE:
		return "skipped-degenerate"
	case SKIPPED_MALFORMED:
		return "skipped-malformed"
	}
	return "unknown"
}

// FlattenPolygon runs one pass on p: every vertex is projected onto the plane
// through the ring centroid, perpendicular to the current Newell normal.
// A ring with no usable normal (collinear or coincident vertices) is left untouched,
// as is a ring with less than 3 vertices or nil vertex references.
func FlattenPolygon(p *mesh.Polygon) Outcome {
	if !p.Valid() {
		return SKIPPED_MALFORMED
	}

	fit, ok := plane.Fit(p.Positions())
	if !ok {
		return SKIPPED_DEGENERATE
	}

	flatten := plane.FlattenMatrix(fit.Point, fit.Normal)
	for _, v := range p.Vertices {
		v.Position = plane.Transform(flatten, v.Position)
	}

	return APPLIED
}

// FlattenPolygons runs iterations passes over polygons, each pass visiting the
// polygons in slice order. Center and normal are derived again for every polygon
// on every pass, from the positions left by the previous ones.
//
// Polygons sharing a vertex are not reconciled: the last polygon processed in a
// pass decides where the shared vertex ends up. The result only depends on the
// slice order, so the same input always gives the same output.
//
// Convergence is empirical. An isolated polygon is planar after the first pass,
// but meshes with shared vertices may need more passes, and no count is
// guaranteed to be enough for arbitrarily warped rings.
func FlattenPolygons(polygons []*mesh.Polygon, iterations int) {
	for i := 0; i < iterations; i++ {
		for _, p := range polygons {
			FlattenPolygon(p)
		}
	}
}

// Report counts the outcomes of a Flattener run
type Report struct {
	Iterations int
	Applied    int
	Degenerate int
	Malformed  int
}

func (r *Report) record(outcome Outcome) {
	switch outcome {
	case APPLIED:
		r.Applied++
	case SKIPPED_DEGENERATE:
		r.Degenerate++
	case SKIPPED_MALFORMED:
		r.Malformed++
	}
}

// Flattener drives FlattenPolygon over a selection, emitting events and
// honoring cancellation between passes
type Flattener struct {
	Iterations int
	Events     Events
}

func NewFlattener(iterations int) *Flattener {
	return &Flattener{
		Iterations: iterations,
		Events:     NewEvents(),
	}
}

// Flatten runs the passes over polygons. The context is checked once before
// each pass, never in the middle of one: a cancelled run returns the report of
// the completed passes with ctx.Err(), the vertices keep the positions of the
// last completed pass.
func (f *Flattener) Flatten(ctx context.Context, polygons []*mesh.Polygon) (Report, error) {
	iterations := f.Iterations
	if iterations <= 0 {
		iterations = DEFAULT_ITERATIONS
	}

	var report Report
	for iteration := 0; iteration < iterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		for _, p := range polygons {
			outcome := FlattenPolygon(p)
			report.record(outcome)
			f.Events.emitOutcome(p, iteration, outcome)
		}

		report.Iterations++
		f.Events.emitIteration(iteration, len(polygons))
		f.Events.flush()
	}

	return report, nil
}
