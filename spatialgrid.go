package flatface

import (
	"math"

	"github.com/akmonengine/flatface/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// CellKey - coordinates of a cell in 3D space
type CellKey struct {
	X, Y, Z int
}

// Cell - vertex indices stored in a cell
type Cell struct {
	vertexIndices []int
}

// SpatialGrid - uniform grid hashed into a fixed array of cells
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// NewSpatialGrid - numCells is rounded up to a power of two
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].vertexIndices = make([]int, 0, 4)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}

// Insert - stores a vertex index in the cell containing position
func (sg *SpatialGrid) Insert(vertexIndex int, position mgl64.Vec3) {
	cellIdx := sg.hashCell(sg.worldToCell(position))
	sg.cells[cellIdx].vertexIndices = append(sg.cells[cellIdx].vertexIndices, vertexIndex)
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].vertexIndices = sg.cells[i].vertexIndices[:0]
	}
}

// Nearest - lowest inserted vertex index within tolerance of position.
// The cells around the one of position are visited, which covers the tolerance
// as long as it does not exceed the cell size.
func (sg *SpatialGrid) Nearest(position mgl64.Vec3, vertices []*mesh.Vertex, tolerance float64) (int, bool) {
	center := sg.worldToCell(position)
	toleranceSqr := tolerance * tolerance
	found := -1

	for x := center.X - 1; x <= center.X+1; x++ {
		for y := center.Y - 1; y <= center.Y+1; y++ {
			for z := center.Z - 1; z <= center.Z+1; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})

				// hash collisions bring unrelated vertices, the distance test filters them
				for _, index := range sg.cells[cellIdx].vertexIndices {
					if found != -1 && index >= found {
						continue
					}
					if vertices[index].Position.Sub(position).LenSqr() <= toleranceSqr {
						found = index
					}
				}
			}
		}
	}

	return found, found != -1
}

// worldToCell - converts a world position into cell coordinates
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell - hashes a cell into an index of the array
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}

// Weld merges the vertices closer than tolerance, so that polygons written with
// split vertices share them again. Vertices are visited in order and each one is
// merged into the first kept vertex within tolerance. Consecutive duplicates left
// in a ring are dropped, and polygons reduced below 3 vertices are removed from
// the mesh since no file format can store them.
// It returns the number of removed vertices and removed polygons.
func Weld(m *mesh.Mesh, tolerance float64) (vertices, polygons int) {
	if tolerance <= 0 || len(m.Vertices) < 2 {
		return 0, 0
	}

	grid := NewSpatialGrid(tolerance, len(m.Vertices))
	remap := make(map[*mesh.Vertex]*mesh.Vertex, len(m.Vertices))
	kept := make([]*mesh.Vertex, 0, len(m.Vertices))

	for i, v := range m.Vertices {
		if index, ok := grid.Nearest(v.Position, m.Vertices, tolerance); ok {
			remap[v] = m.Vertices[index]
			continue
		}
		grid.Insert(i, v.Position)
		kept = append(kept, v)
	}

	vertices = len(m.Vertices) - len(kept)
	if vertices == 0 {
		return 0, 0
	}

	survivors := m.Polygons[:0]
	for _, p := range m.Polygons {
		ring := make([]*mesh.Vertex, 0, len(p.Vertices))
		for _, v := range p.Vertices {
			if target, ok := remap[v]; ok {
				v = target
			}
			if len(ring) > 0 && ring[len(ring)-1] == v {
				continue
			}
			ring = append(ring, v)
		}
		for len(ring) > 1 && ring[0] == ring[len(ring)-1] {
			ring = ring[:len(ring)-1]
		}
		p.Vertices = ring

		if len(ring) < 3 {
			polygons++
			continue
		}
		survivors = append(survivors, p)
	}
	clear(m.Polygons[len(survivors):])

	m.Polygons = survivors
	m.Vertices = kept
	m.Reindex()

	return vertices, polygons
}
