package plane

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DEGENERATE_EPSILON is the smallest accepted ratio between the raw Newell
// vector length and the squared ring radius. Below it the ring has no area.
const DEGENERATE_EPSILON = 1e-12

// Plane passes through Point, Normal is unit length
type Plane struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// New creates a plane through point, normal is normalized
func New(point, normal mgl64.Vec3) Plane {
	return Plane{
		Point:  point,
		Normal: normal.Normalize(),
	}
}

// SignedDistance returns the distance from v to the plane, positive on the normal side
func (p Plane) SignedDistance(v mgl64.Vec3) float64 {
	return v.Sub(p.Point).Dot(p.Normal)
}

// Project returns the orthogonal projection of v onto the plane
func (p Plane) Project(v mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(p.Normal.Mul(p.SignedDistance(v)))
}

// Centroid returns the component-wise arithmetic mean of the ring.
// It is not area weighted.
func Centroid(ring []mgl64.Vec3) mgl64.Vec3 {
	var center mgl64.Vec3
	if len(ring) == 0 {
		return center
	}

	for _, point := range ring {
		center = center.Add(point)
	}

	return center.Mul(1.0 / float64(len(ring)))
}

// NewellNormal returns the unnormalized Newell normal of the ring around center.
// Its length is twice the area of a planar ring, and it stays well defined for
// non-planar rings.
func NewellNormal(ring []mgl64.Vec3, center mgl64.Vec3) mgl64.Vec3 {
	var normal mgl64.Vec3
	n := len(ring)

	for i := 0; i < n; i++ {
		a := ring[i].Sub(center)
		b := ring[(i+1)%n].Sub(center)
		normal = normal.Add(a.Cross(b))
	}

	return normal
}

// Fit returns the plane through the ring centroid, oriented by the Newell normal.
// ok is false when the ring is degenerate (collinear or coincident points, or
// fewer than 3 points): no orientation can be derived from it.
func Fit(ring []mgl64.Vec3) (Plane, bool) {
	if len(ring) < 3 {
		return Plane{}, false
	}

	center := Centroid(ring)
	normal := NewellNormal(ring, center)

	// squared radius, so that the threshold scales like the normal length
	radius := 0.0
	for _, point := range ring {
		radius = math.Max(radius, point.Sub(center).LenSqr())
	}

	length := normal.Len()
	if radius == 0 || length <= DEGENERATE_EPSILON*radius || math.IsNaN(length) || math.IsInf(length, 0) {
		return Plane{Point: center}, false
	}

	return Plane{
		Point:  center,
		Normal: normal.Mul(1.0 / length),
	}, true
}

// Projection returns the rank-2 transform I - n nᵀ, which keeps the two
// directions orthogonal to normal and collapses the normal direction to zero.
// normal must be unit length.
func Projection(normal mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Ident3().Sub(normal.OuterProd3(normal))
}

// FlattenMatrix returns T(center) · P · T(-center): the projection onto the plane
// through center perpendicular to normal, as a single affine transform.
func FlattenMatrix(center, normal mgl64.Vec3) mgl64.Mat4 {
	toOrigin := mgl64.Translate3D(-center.X(), -center.Y(), -center.Z())
	back := mgl64.Translate3D(center.X(), center.Y(), center.Z())

	return back.Mul4(Projection(normal).Mat4()).Mul4(toOrigin)
}

// Transform applies an affine transform to a point
func Transform(m mgl64.Mat4, v mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(v.Vec4(1)).Vec3()
}
