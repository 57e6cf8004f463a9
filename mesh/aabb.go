package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyAABB returns an inverted box, so that the first Extend sets both corners
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// Extend grows the box to include point
func (a AABB) Extend(point mgl64.Vec3) AABB {
	for i := 0; i < 3; i++ {
		a.Min[i] = math.Min(a.Min[i], point[i])
		a.Max[i] = math.Max(a.Max[i], point[i])
	}
	return a
}

// IsEmpty is true until a point was added
func (a AABB) IsEmpty() bool {
	return a.Min.X() > a.Max.X() || a.Min.Y() > a.Max.Y() || a.Min.Z() > a.Max.Z()
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Diagonal is the length between both corners, 0 for an empty box.
// It is the unit used to normalize planarity deviations.
func (a AABB) Diagonal() float64 {
	if a.IsEmpty() {
		return 0
	}
	return a.Max.Sub(a.Min).Len()
}
