// Package mesh holds the polygon soup the flattener works on: vertices shared by
// pointer, polygons as ordered rings, selection and snapshots.
package mesh

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrIndexOutOfRange is returned when a vertex or polygon index does not exist
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrTooFewVertices is returned when a polygon has less than 3 vertices
	ErrTooFewVertices = errors.New("polygon needs at least 3 vertices")

	// ErrSnapshotMismatch is returned when a snapshot does not belong to the mesh
	ErrSnapshotMismatch = errors.New("snapshot does not match mesh")
)

type Mesh struct {
	Vertices []*Vertex
	Polygons []*Polygon
}

func New() *Mesh {
	return &Mesh{
		Vertices: make([]*Vertex, 0, 64),
		Polygons: make([]*Polygon, 0, 16),
	}
}

// AddVertex appends a vertex and returns it
func (m *Mesh) AddVertex(position mgl64.Vec3) *Vertex {
	v := &Vertex{Index: len(m.Vertices), Position: position}
	m.Vertices = append(m.Vertices, v)
	return v
}

// AddPolygon appends a polygon referencing existing vertices by index
func (m *Mesh) AddPolygon(indices ...int) (*Polygon, error) {
	if len(indices) < 3 {
		return nil, fmt.Errorf("polygon %d: %w", len(m.Polygons), ErrTooFewVertices)
	}

	vertices := make([]*Vertex, len(indices))
	for i, index := range indices {
		if index < 0 || index >= len(m.Vertices) {
			return nil, fmt.Errorf("polygon %d, vertex %d: %w", len(m.Polygons), index, ErrIndexOutOfRange)
		}
		vertices[i] = m.Vertices[index]
	}

	p := &Polygon{Index: len(m.Polygons), Vertices: vertices}
	m.Polygons = append(m.Polygons, p)
	return p, nil
}

// Select resolves the selection set once, in polygon order.
// With selectedOnly false, every polygon is returned.
// The returned slice is fixed: later edits to the Selected flags do not change it.
func (m *Mesh) Select(selectedOnly bool) []*Polygon {
	selection := make([]*Polygon, 0, len(m.Polygons))
	for _, p := range m.Polygons {
		if !selectedOnly || p.Selected {
			selection = append(selection, p)
		}
	}
	return selection
}

// SelectIndices marks the polygons with the given indices as selected
func (m *Mesh) SelectIndices(indices ...int) error {
	for _, index := range indices {
		if index < 0 || index >= len(m.Polygons) {
			return fmt.Errorf("polygon %d: %w", index, ErrIndexOutOfRange)
		}
		m.Polygons[index].Selected = true
	}
	return nil
}

// SelectGroups marks the polygons belonging to one of the groups as selected,
// it returns how many polygons matched
func (m *Mesh) SelectGroups(groups ...string) int {
	count := 0
	for _, p := range m.Polygons {
		if slices.Contains(groups, p.Group) {
			p.Selected = true
			count++
		}
	}
	return count
}

// ClearSelection deselects every polygon
func (m *Mesh) ClearSelection() {
	for _, p := range m.Polygons {
		p.Selected = false
	}
}

// Bounds returns the bounding box of every vertex
func (m *Mesh) Bounds() AABB {
	aabb := EmptyAABB()
	for _, v := range m.Vertices {
		aabb = aabb.Extend(v.Position)
	}
	return aabb
}

// Reindex sets Vertex.Index and Polygon.Index to their slice position
func (m *Mesh) Reindex() {
	for i, v := range m.Vertices {
		v.Index = i
	}
	for i, p := range m.Polygons {
		p.Index = i
	}
}
