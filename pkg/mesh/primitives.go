package mesh

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/Faultbox/orthoview/pkg/math"
)

// ErrUnknownShape is returned by ParseShape for names outside the catalog.
var ErrUnknownShape = errors.New("unknown shape")

// Shape names one of the built-in teaching solids.
type Shape string

const (
	ShapeCube     Shape = "cube"
	ShapeCylinder Shape = "cylinder"
	ShapeCone     Shape = "cone"
	ShapeCompound Shape = "compound"
)

// DefaultSegments is the radial resolution of round shapes.
const DefaultSegments = 32

// Shapes lists the catalog in display order.
var Shapes = []Shape{ShapeCube, ShapeCylinder, ShapeCone, ShapeCompound}

// ParseShape converts a name into a Shape. "complex" is accepted for compound.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cube", "box":
		return ShapeCube, nil
	case "cylinder":
		return ShapeCylinder, nil
	case "cone":
		return ShapeCone, nil
	case "compound", "complex":
		return ShapeCompound, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownShape, s)
}

// Build returns the mesh for a catalog shape, centered on the origin.
func Build(shape Shape) (*Mesh, error) {
	switch shape {
	case ShapeCube:
		return Box("cube", math.Vec3{X: 1.5, Y: 1.5, Z: 1.5}), nil
	case ShapeCylinder:
		return Cylinder("cylinder", 0.75, 1.5, DefaultSegments), nil
	case ShapeCone:
		return Cone("cone", 0.75, 1.5, DefaultSegments), nil
	case ShapeCompound:
		base := Box("base", math.Vec3{X: 1.5, Y: 0.8, Z: 1.5}).Translate(math.Vec3{Y: -0.5})
		boss := Cylinder("boss", 0.5, 1, DefaultSegments).Translate(math.Vec3{Y: 0.5})
		return Merge("compound", base, boss), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownShape, string(shape))
}

// builder accumulates a convex primitive and orients every triangle away
// from the primitive center so windings are consistent.
type builder struct {
	mesh   *Mesh
	center math.Vec3
}

func newBuilder(name string) *builder {
	return &builder{mesh: &Mesh{Name: name}}
}

func (b *builder) vertex(v math.Vec3) uint32 {
	b.mesh.Vertices = append(b.mesh.Vertices, v)
	return uint32(len(b.mesh.Vertices) - 1)
}

func (b *builder) tri(i0, i1, i2 uint32) {
	v0, v1, v2 := b.mesh.Vertices[i0], b.mesh.Vertices[i1], b.mesh.Vertices[i2]
	n := v1.Sub(v0).Cross(v2.Sub(v0))
	centroid := v0.Add(v1).Add(v2).Scale(1.0 / 3.0)
	if n.Dot(centroid.Sub(b.center)) < 0 {
		i1, i2 = i2, i1
	}
	b.mesh.Indices = append(b.mesh.Indices, i0, i1, i2)
}

func (b *builder) quad(i0, i1, i2, i3 uint32) {
	b.tri(i0, i1, i2)
	b.tri(i0, i2, i3)
}

// Box builds an axis-aligned box of the given size with shared corners.
func Box(name string, size math.Vec3) *Mesh {
	b := newBuilder(name)
	h := size.Scale(0.5)
	var c [8]uint32
	for i := range c {
		v := math.Vec3{X: -h.X, Y: -h.Y, Z: -h.Z}
		if i&1 != 0 {
			v.X = h.X
		}
		if i&2 != 0 {
			v.Y = h.Y
		}
		if i&4 != 0 {
			v.Z = h.Z
		}
		c[i] = b.vertex(v)
	}
	b.quad(c[0], c[2], c[6], c[4]) // -X
	b.quad(c[1], c[3], c[7], c[5]) // +X
	b.quad(c[0], c[1], c[5], c[4]) // -Y
	b.quad(c[2], c[3], c[7], c[6]) // +Y
	b.quad(c[0], c[1], c[3], c[2]) // -Z
	b.quad(c[4], c[5], c[7], c[6]) // +Z
	return b.mesh
}

// ring returns n points on a circle of radius r at height y. The first point
// sits on +Z.
func ring(b *builder, r, y float32, n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		theta := 2 * math32.Pi * float32(i) / float32(n)
		s, c := math32.Sincos(theta)
		out[i] = b.vertex(math.Vec3{X: r * s, Y: y, Z: r * c})
	}
	return out
}

// Cylinder builds a capped cylinder along Y.
func Cylinder(name string, radius, height float32, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	b := newBuilder(name)
	hy := height / 2
	bottom := ring(b, radius, -hy, segments)
	top := ring(b, radius, hy, segments)
	bc := b.vertex(math.Vec3{Y: -hy})
	tc := b.vertex(math.Vec3{Y: hy})
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		b.quad(bottom[i], bottom[j], top[j], top[i])
		b.tri(bc, bottom[i], bottom[j])
		b.tri(tc, top[i], top[j])
	}
	return b.mesh
}

// Cone builds a capped cone along Y with the apex on top.
func Cone(name string, radius, height float32, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	b := newBuilder(name)
	hy := height / 2
	// The centroid of a cone sits a quarter of the height above the base,
	// which keeps the orientation test away from the slanted faces.
	b.center = math.Vec3{Y: -hy + height/4}
	base := ring(b, radius, -hy, segments)
	apex := b.vertex(math.Vec3{Y: hy})
	bc := b.vertex(math.Vec3{Y: -hy})
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		b.tri(apex, base[i], base[j])
		b.tri(bc, base[i], base[j])
	}
	return b.mesh
}
