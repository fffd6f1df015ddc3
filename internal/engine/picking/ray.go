// Package picking provides ray casting against boxes, triangles and meshes.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/orthoview/pkg/math"
	"github.com/Faultbox/orthoview/pkg/mesh"
)

// parallelEpsilon is the determinant below which a ray is treated as lying
// in the plane of a triangle.
const parallelEpsilon = 1e-7

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// NewRay creates a ray, normalizing the direction.
func NewRay(origin, direction math.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// NewAABB creates an AABB from two corners in any order.
func NewAABB(a, b math.Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// FromBounds converts mesh bounds into an AABB moved by offset.
func FromBounds(b mesh.Bounds, offset math.Vec3) AABB {
	return NewAABB(b.Min.Add(offset), b.Max.Add(offset))
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	origin, dir := r.Origin.Array(), r.Direction.Array()
	lo, hi := box.Min.Array(), box.Max.Array()

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}

	// Return entry point, or exit point if starting inside
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle runs the Möller-Trumbore test. Hits exactly on a
// triangle edge count. Rays parallel to the triangle never hit.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (t float32, hit bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < parallelEpsilon {
		return 0, false
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectMesh returns the nearest hit of the ray against a mesh placed at
// offset. The mesh bounds are tested first.
func (r Ray) IntersectMesh(m *mesh.Mesh, offset math.Vec3) (t float32, hit bool) {
	if m.TriangleCount() == 0 {
		return 0, false
	}
	if _, ok := r.IntersectAABB(FromBounds(m.Bounds(), offset)); !ok {
		return 0, false
	}

	// Move the ray into model space instead of moving every triangle.
	local := Ray{Origin: r.Origin.Sub(offset), Direction: r.Direction}
	nearest := float32(math32.MaxFloat32)
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		if d, ok := local.IntersectTriangle(a, b, c); ok && d < nearest {
			nearest = d
			hit = true
		}
	}
	if !hit {
		return 0, false
	}
	return nearest, true
}
