package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Snapshot stores every vertex position, in Mesh.Vertices order.
// Restoring it undoes a whole flatten run, whatever the iteration count.
type Snapshot struct {
	positions []mgl64.Vec3
}

func (m *Mesh) Snapshot() Snapshot {
	positions := make([]mgl64.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = v.Position
	}
	return Snapshot{positions: positions}
}

// Restore puts back the positions of a snapshot taken on the same mesh
func (m *Mesh) Restore(s Snapshot) error {
	if len(s.positions) != len(m.Vertices) {
		return fmt.Errorf("%d positions for %d vertices: %w", len(s.positions), len(m.Vertices), ErrSnapshotMismatch)
	}
	for i, v := range m.Vertices {
		v.Position = s.positions[i]
	}
	return nil
}

// Len returns the number of stored positions
func (s Snapshot) Len() int {
	return len(s.positions)
}
