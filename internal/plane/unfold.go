package plane

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/orthoview/pkg/math"
)

// DefaultDistance is the gap between the object and each plane.
const DefaultDistance = 2

// Spec is the fixed geometry of one plane for a projection type.
type Spec struct {
	ID ID
	// Anchor is the world position of the plane-local origin in the flat layout.
	Anchor math.Vec3
	// Hinge is a point on the fold line shared with the front plane.
	Hinge math.Vec3
	// HingeAxis is the oriented fold axis; zero for the front plane.
	HingeAxis math.Vec3
	// InitialAngle is the closed-box rotation in degrees.
	InitialAngle float32
}

// hingeRow is one entry of the unfold table in units of the plane distance,
// with s standing for the projection type sign.
type hingeRow struct {
	anchor     [3]float32 // multiplied by s*distance
	hinge      [3]float32 // multiplied by s*distance
	axis       math.Vec3  // multiplied by s
	firstAngle float32
	thirdAngle float32
}

var hingeTable = map[ID]hingeRow{
	Front:    {anchor: [3]float32{0, 1, 0}},
	Top:      {anchor: [3]float32{0, -1, 0}, axis: math.UnitX, firstAngle: -90, thirdAngle: 90},
	Side:     {anchor: [3]float32{-2, 1, 0}, hinge: [3]float32{-1, 0, 0}, axis: math.UnitY, firstAngle: 90, thirdAngle: -90},
	LeftSide: {anchor: [3]float32{2, 1, 0}, hinge: [3]float32{1, 0, 0}, axis: math.UnitY.Neg(), firstAngle: 90, thirdAngle: -90},
}

// Registry resolves plane geometry for one projection type.
type Registry struct {
	Type     ProjectionType
	Distance float32
}

// NewRegistry creates a registry. A non-positive distance uses DefaultDistance.
func NewRegistry(pt ProjectionType, distance float32) Registry {
	if distance <= 0 {
		distance = DefaultDistance
	}
	return Registry{Type: pt, Distance: distance}
}

// Placement returns the object position.
func (r Registry) Placement() math.Vec3 {
	return Placement(r.Type, r.Distance)
}

// Spec returns the fixed geometry of a plane.
func (r Registry) Spec(id ID) Spec {
	row := hingeTable[id]
	s := r.Type.Sign()
	k := s * r.Distance
	spec := Spec{
		ID:        id,
		Anchor:    math.Vec3{X: row.anchor[0] * k, Y: row.anchor[1] * k, Z: row.anchor[2] * k},
		Hinge:     math.Vec3{X: row.hinge[0] * k, Y: row.hinge[1] * k, Z: row.hinge[2] * k},
		HingeAxis: row.axis.Scale(s),
	}
	if r.Type == ThirdAngle {
		spec.InitialAngle = row.thirdAngle
	} else {
		spec.InitialAngle = row.firstAngle
	}
	return spec
}

// Pose evaluates the unfold transform of a plane. progress is clamped to
// [0, 1]; 0 is the closed box and 1 the flat layout.
func (r Registry) Pose(id ID, progress float32) Pose {
	spec := r.Spec(id)
	progress = clamp01(progress)
	return Pose{
		ID:        id,
		Anchor:    spec.Anchor,
		Hinge:     spec.Hinge,
		HingeAxis: spec.HingeAxis,
		Angle:     spec.InitialAngle * (1 - progress),
	}
}

// Layout returns the poses of all planes in IDs order.
func (r Registry) Layout(progress float32) []Pose {
	out := make([]Pose, len(IDs))
	for i, id := range IDs {
		out[i] = r.Pose(id, progress)
	}
	return out
}

// PoseOf evaluates the unfold transform with the default plane distance.
func PoseOf(id ID, pt ProjectionType, progress float32) Pose {
	return NewRegistry(pt, DefaultDistance).Pose(id, progress)
}

// Pose is the rigid transform of a plane at some unfold progress.
type Pose struct {
	ID        ID        `yaml:"plane"`
	Anchor    math.Vec3 `yaml:"anchor"`
	Hinge     math.Vec3 `yaml:"hinge"`
	HingeAxis math.Vec3 `yaml:"hinge_axis"`
	Angle     float32   `yaml:"angle"` // degrees
}

// Matrix maps plane-local coordinates (u, v, 0) into world space.
func (p Pose) Matrix() math.Mat4 {
	place := math.Translate(p.Anchor)
	if p.Angle == 0 || p.HingeAxis == (math.Vec3{}) {
		return place
	}
	rot := math.RotateAround(p.Hinge, p.HingeAxis, p.Angle*math32.Pi/180)
	return rot.Mul(place)
}

// Apply maps a plane-local 2D point into world space.
func (p Pose) Apply(uv math.Vec2) math.Vec3 {
	return p.Matrix().TransformVec3(math.Vec3{X: uv.X, Y: uv.Y})
}

// Orientation is the hinge rotation as a quaternion.
func (p Pose) Orientation() math.Quat {
	return math.QuatFromAxisAngle(p.HingeAxis, p.Angle*math32.Pi/180)
}

// Normal returns the plane's facing direction in world space.
func (p Pose) Normal() math.Vec3 {
	return p.Orientation().Rotate(math.UnitZ)
}

// Origin returns the world position of the plane-local origin.
func (p Pose) Origin() math.Vec3 {
	return p.Matrix().Translation()
}

func clamp01(v float32) float32 {
	if v < 0 || math32.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
