package mesh

import (
	"github.com/akmonengine/flatface/plane"
	"github.com/go-gl/mathgl/mgl64"
)

// Vertex is shared by every polygon referencing it.
// Moving a shared vertex moves it for all of them.
type Vertex struct {
	Index    int
	Position mgl64.Vec3
}

// Polygon is an ordered ring of vertices. Center and normal are never stored,
// they are derived from the current positions on each call.
type Polygon struct {
	Index    int
	Vertices []*Vertex
	Group    string
	Selected bool
}

// Valid reports whether the ring has at least 3 vertices, none of them nil
func (p *Polygon) Valid() bool {
	if p == nil || len(p.Vertices) < 3 {
		return false
	}
	for _, v := range p.Vertices {
		if v == nil {
			return false
		}
	}
	return true
}

// Positions copies the current ring positions
func (p *Polygon) Positions() []mgl64.Vec3 {
	positions := make([]mgl64.Vec3, 0, len(p.Vertices))
	for _, v := range p.Vertices {
		if v == nil {
			continue
		}
		positions = append(positions, v.Position)
	}
	return positions
}

// Center is the arithmetic mean of the current vertex positions
func (p *Polygon) Center() mgl64.Vec3 {
	return plane.Centroid(p.Positions())
}

// Normal returns the unit Newell normal of the current ring.
// ok is false for a degenerate ring.
func (p *Polygon) Normal() (mgl64.Vec3, bool) {
	fit, ok := p.Plane()
	return fit.Normal, ok
}

// Plane returns the plane through Center, oriented by Normal
func (p *Polygon) Plane() (plane.Plane, bool) {
	if !p.Valid() {
		return plane.Plane{}, false
	}
	return plane.Fit(p.Positions())
}

// Shares reports whether both polygons reference at least one common vertex
func (p *Polygon) Shares(other *Polygon) bool {
	for _, a := range p.Vertices {
		for _, b := range other.Vertices {
			if a != nil && a == b {
				return true
			}
		}
	}
	return false
}
