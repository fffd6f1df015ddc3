// Package mesh holds the closed triangulated solids that get projected, the
// built-in teaching shapes and feature edge extraction.
package mesh

import (
	"errors"

	"github.com/Faultbox/orthoview/pkg/math"
)

var (
	// ErrEmptyMesh is returned when a mesh has no usable triangles.
	ErrEmptyMesh = errors.New("mesh has no triangles")
	// ErrNonManifold is returned when an edge is shared by more than two triangles.
	ErrNonManifold = errors.New("mesh is not manifold")
)

// Mesh is an indexed triangle mesh. Indices holds 3 entries per triangle.
// A mesh is treated as immutable once built.
type Mesh struct {
	Name     string
	Vertices []math.Vec3
	Indices  []uint32
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c math.Vec3) {
	return m.Vertices[m.Indices[i*3]], m.Vertices[m.Indices[i*3+1]], m.Vertices[m.Indices[i*3+2]]
}

// Bounds returns the axis-aligned bounding box of all referenced vertices.
func (m *Mesh) Bounds() Bounds {
	b := EmptyBounds()
	if m == nil {
		return b
	}
	for _, idx := range m.Indices {
		b = b.Extend(m.Vertices[idx])
	}
	return b
}

// Translate returns a copy of the mesh moved by offset.
func (m *Mesh) Translate(offset math.Vec3) *Mesh {
	out := &Mesh{
		Name:     m.Name,
		Vertices: make([]math.Vec3, len(m.Vertices)),
		Indices:  append([]uint32(nil), m.Indices...),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = v.Add(offset)
	}
	return out
}

// Merge concatenates meshes into one. Components stay disconnected.
func Merge(name string, parts ...*Mesh) *Mesh {
	out := &Mesh{Name: name}
	for _, p := range parts {
		base := uint32(len(out.Vertices))
		out.Vertices = append(out.Vertices, p.Vertices...)
		for _, idx := range p.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
	return out
}

// faceNormal returns the unit normal of a triangle and twice its area.
func faceNormal(a, b, c math.Vec3) (math.Vec3, float32) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Length()
	if l == 0 {
		return math.Vec3{}, 0
	}
	return n.Scale(1 / l), l
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max math.Vec3
}

// EmptyBounds returns an inverted box that any point will extend.
func EmptyBounds() Bounds {
	return Bounds{
		Min: math.Vec3{X: 1e30, Y: 1e30, Z: 1e30},
		Max: math.Vec3{X: -1e30, Y: -1e30, Z: -1e30},
	}
}

// Extend returns the box grown to contain p.
func (b Bounds) Extend(p math.Vec3) Bounds {
	return Bounds{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Valid reports whether the box contains at least one point.
func (b Bounds) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Midpoint(b.Max)
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Translate returns the box moved by offset.
func (b Bounds) Translate(offset math.Vec3) Bounds {
	return Bounds{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}
