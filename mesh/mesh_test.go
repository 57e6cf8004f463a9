package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func vec3ApproxEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

// createGrid builds a 2x1 strip of quads sharing the middle edge
func createGrid(t *testing.T) *Mesh {
	t.Helper()

	m := New()
	for _, position := range []mgl64.Vec3{
		{0, 0, 0}, {1, 0, 0}, {2, 0, 0},
		{0, 1, 0}, {1, 1, 0}, {2, 1, 0},
	} {
		m.AddVertex(position)
	}

	if _, err := m.AddPolygon(0, 1, 4, 3); err != nil {
		t.Fatalf("AddPolygon() error = %v", err)
	}
	if _, err := m.AddPolygon(1, 2, 5, 4); err != nil {
		t.Fatalf("AddPolygon() error = %v", err)
	}
	return m
}

func TestAddVertex(t *testing.T) {
	m := New()
	a := m.AddVertex(mgl64.Vec3{1, 2, 3})
	b := m.AddVertex(mgl64.Vec3{4, 5, 6})

	if a.Index != 0 || b.Index != 1 {
		t.Errorf("indices = %d, %d, want 0, 1", a.Index, b.Index)
	}
	if len(m.Vertices) != 2 || m.Vertices[1] != b {
		t.Errorf("vertices not stored in order")
	}
}

func TestAddPolygon(t *testing.T) {
	m := createGrid(t)

	if len(m.Polygons) != 2 {
		t.Fatalf("got %d polygons, want 2", len(m.Polygons))
	}
	p := m.Polygons[1]
	if p.Index != 1 {
		t.Errorf("Index = %d, want 1", p.Index)
	}
	if p.Vertices[0] != m.Vertices[1] || p.Vertices[3] != m.Vertices[4] {
		t.Errorf("polygon does not reference the mesh vertices")
	}
	if !m.Polygons[0].Shares(p) {
		t.Errorf("neighbour quads should share vertices")
	}
}

func TestAddPolygon_Errors(t *testing.T) {
	tests := []struct {
		name     string
		indices  []int
		expected error
	}{
		{"empty", nil, ErrTooFewVertices},
		{"two vertices", []int{0, 1}, ErrTooFewVertices},
		{"negative index", []int{0, 1, -1}, ErrIndexOutOfRange},
		{"index too large", []int{0, 1, 6}, ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := createGrid(t)
			_, err := m.AddPolygon(tt.indices...)
			if !errors.Is(err, tt.expected) {
				t.Errorf("AddPolygon(%v) error = %v, want %v", tt.indices, err, tt.expected)
			}
			if len(m.Polygons) != 2 {
				t.Errorf("failed AddPolygon should not add a polygon")
			}
		})
	}
}

func TestSelect(t *testing.T) {
	m := createGrid(t)

	if got := m.Select(true); len(got) != 0 {
		t.Errorf("Select(true) with nothing selected = %d polygons, want 0", len(got))
	}
	if got := m.Select(false); len(got) != 2 {
		t.Errorf("Select(false) = %d polygons, want 2", len(got))
	}

	if err := m.SelectIndices(1); err != nil {
		t.Fatalf("SelectIndices() error = %v", err)
	}
	selection := m.Select(true)
	if len(selection) != 1 || selection[0] != m.Polygons[1] {
		t.Fatalf("Select(true) = %v, want polygon 1", selection)
	}

	// the resolved selection does not follow later changes
	m.ClearSelection()
	if len(selection) != 1 || selection[0] != m.Polygons[1] {
		t.Errorf("resolved selection changed after ClearSelection")
	}
	if got := m.Select(true); len(got) != 0 {
		t.Errorf("Select(true) after ClearSelection = %d polygons, want 0", len(got))
	}
}

func TestSelectIndices_OutOfRange(t *testing.T) {
	m := createGrid(t)
	if err := m.SelectIndices(0, 2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("SelectIndices(0, 2) error = %v, want %v", err, ErrIndexOutOfRange)
	}
}

func TestSelectGroups(t *testing.T) {
	m := createGrid(t)
	m.Polygons[0].Group = "roof"
	m.Polygons[1].Group = "wall"

	if count := m.SelectGroups("wall", "door"); count != 1 {
		t.Errorf("SelectGroups() = %d, want 1", count)
	}
	if m.Polygons[0].Selected || !m.Polygons[1].Selected {
		t.Errorf("only the wall polygon should be selected")
	}
}

func TestBounds(t *testing.T) {
	m := createGrid(t)
	m.Vertices[4].Position = mgl64.Vec3{1, 1, -3}

	aabb := m.Bounds()
	if !vec3ApproxEqual(aabb.Min, mgl64.Vec3{0, 0, -3}, 1e-12) || !vec3ApproxEqual(aabb.Max, mgl64.Vec3{2, 1, 0}, 1e-12) {
		t.Errorf("Bounds() = %v", aabb)
	}
	if d := aabb.Diagonal(); math.Abs(d-math.Sqrt(14)) > 1e-12 {
		t.Errorf("Diagonal() = %v, want %v", d, math.Sqrt(14))
	}

	if d := New().Bounds().Diagonal(); d != 0 {
		t.Errorf("empty mesh Diagonal() = %v, want 0", d)
	}
}

func TestSnapshotRestore(t *testing.T) {
	m := createGrid(t)
	snapshot := m.Snapshot()

	for _, v := range m.Vertices {
		v.Position = v.Position.Add(mgl64.Vec3{0, 0, 5})
	}

	if err := m.Restore(snapshot); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	for _, v := range m.Vertices {
		if v.Position.Z() != 0 {
			t.Errorf("vertex %d not restored: %v", v.Index, v.Position)
		}
	}
}

func TestRestore_Mismatch(t *testing.T) {
	m := createGrid(t)
	snapshot := m.Snapshot()
	m.AddVertex(mgl64.Vec3{9, 9, 9})

	if err := m.Restore(snapshot); !errors.Is(err, ErrSnapshotMismatch) {
		t.Errorf("Restore() error = %v, want %v", err, ErrSnapshotMismatch)
	}
}

func TestReindex(t *testing.T) {
	m := createGrid(t)
	m.Vertices = m.Vertices[1:]
	m.Polygons = m.Polygons[1:]
	m.Reindex()

	for i, v := range m.Vertices {
		if v.Index != i {
			t.Errorf("vertex at %d has Index %d", i, v.Index)
		}
	}
	if m.Polygons[0].Index != 0 {
		t.Errorf("polygon Index = %d, want 0", m.Polygons[0].Index)
	}
}
