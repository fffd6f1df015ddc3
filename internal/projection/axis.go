package projection

import (
	"github.com/Faultbox/orthoview/pkg/math"
)

// Axis is a principal viewing direction together with the plane's display
// "up". Right is derived so that (right, up) is the plane-local 2D frame.
type Axis struct {
	Name      string
	Direction math.Vec3 // from observer toward the object
	Up        math.Vec3
}

var (
	// AxisFront looks along -Z; the plane shows (x, y).
	AxisFront = Axis{Name: "front", Direction: math.Vec3{Z: -1}, Up: math.UnitY}
	// AxisTop looks down -Y; the plane shows (x, -z) so world Z becomes the
	// vertical axis of the drawing.
	AxisTop = Axis{Name: "top", Direction: math.Vec3{Y: -1}, Up: math.Vec3{Z: -1}}
	// AxisRight observes from +X looking along -X; the plane shows (-z, y).
	AxisRight = Axis{Name: "right", Direction: math.Vec3{X: -1}, Up: math.UnitY}
	// AxisLeft observes from -X looking along +X; the plane shows (z, y).
	AxisLeft = Axis{Name: "left", Direction: math.UnitX, Up: math.UnitY}
)

// Right returns the plane-local horizontal axis in world space.
func (a Axis) Right() math.Vec3 {
	return a.Direction.Cross(a.Up)
}

// Flatten drops the viewing coordinate of p and returns its plane-local 2D
// position relative to origin.
func (a Axis) Flatten(p, origin math.Vec3) math.Vec2 {
	d := p.Sub(origin)
	return math.Vec2{X: d.Dot(a.Right()), Y: d.Dot(a.Up)}
}
