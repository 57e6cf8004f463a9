package flatface

import (
	"math"

	"github.com/akmonengine/flatface/mesh"
)

// Deviation returns the largest distance between a vertex of p and the plane
// through its center, oriented by its current Newell normal.
// ok is false when p is malformed or degenerate.
func Deviation(p *mesh.Polygon) (float64, bool) {
	fit, ok := p.Plane()
	if !ok {
		return 0, false
	}

	deviation := 0.0
	for _, v := range p.Vertices {
		deviation = math.Max(deviation, math.Abs(fit.SignedDistance(v.Position)))
	}
	return deviation, true
}

// Planarity summarizes the deviations of a polygon set
type Planarity struct {
	Polygons      int
	MaxDeviation  float64
	MeanDeviation float64
	// NonPlanar counts the polygons above the tolerance given to Measure
	NonPlanar  int
	Degenerate int
	Worst      *mesh.Polygon
}

// Normalized divides the max deviation by a reference length, usually the mesh bounds diagonal
func (p Planarity) Normalized(length float64) float64 {
	if length <= 0 {
		return p.MaxDeviation
	}
	return p.MaxDeviation / length
}

// Measure computes the deviation of every polygon, spread over workers goroutines.
// It only reads vertex positions and must not run concurrently with a flatten.
func Measure(polygons []*mesh.Polygon, tolerance float64, workers int) Planarity {
	deviations := make([]float64, len(polygons))
	valid := make([]bool, len(polygons))

	indices := make([]int, len(polygons))
	for i := range indices {
		indices[i] = i
	}

	task(workers, indices, func(i int) {
		deviations[i], valid[i] = Deviation(polygons[i])
	})

	planarity := Planarity{Polygons: len(polygons)}
	sum, measured := 0.0, 0
	for i, deviation := range deviations {
		if !valid[i] {
			planarity.Degenerate++
			continue
		}

		measured++
		sum += deviation
		if deviation > tolerance {
			planarity.NonPlanar++
		}
		if planarity.Worst == nil || deviation > planarity.MaxDeviation {
			planarity.MaxDeviation = deviation
			planarity.Worst = polygons[i]
		}
	}

	if measured > 0 {
		planarity.MeanDeviation = sum / float64(measured)
	}
	return planarity
}
