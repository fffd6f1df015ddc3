// Package camera provides camera poses, easing and the fixed poses used by
// the view choreography.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/orthoview/pkg/math"
)

// Pose is a camera placement: where it is, what it looks at and which way is up.
type Pose struct {
	Position math.Vec3 `yaml:"position"`
	Target   math.Vec3 `yaml:"target"`
	Up       math.Vec3 `yaml:"up"`
}

// Forward returns the unit viewing direction.
func (p Pose) Forward() math.Vec3 {
	return p.Target.Sub(p.Position).Normalize()
}

// upVector returns a unit up vector that is not parallel to the viewing
// direction. Interpolated poses can pass through such a configuration.
func (p Pose) upVector() math.Vec3 {
	f := p.Forward()
	up := p.Up.Normalize()
	if up.Cross(f).Length() > 1e-4 {
		return up
	}
	for _, alt := range []math.Vec3{math.UnitY, math.UnitZ.Neg(), math.UnitX} {
		if alt.Cross(f).Length() > 1e-4 {
			return alt
		}
	}
	return math.UnitY
}

// ViewMatrix returns the view matrix for this pose.
func (p Pose) ViewMatrix() math.Mat4 {
	return math.LookAt(p.Position, p.Target, p.upVector())
}

// DefaultExtent is the half-height of the orthographic view volume in world
// units; it frames the flat layout from the flat pose.
const DefaultExtent = 6

const (
	nearPlane = 0.1
	farPlane  = 100
)

// ViewProjection returns the orthographic projection of a volume extent
// units above and below the target, combined with the view matrix.
func (p Pose) ViewProjection(extent, aspect float32) math.Mat4 {
	w := extent * aspect
	return math.Ortho(-w, w, -extent, extent, nearPlane, farPlane).Mul(p.ViewMatrix())
}

// Basis returns the camera's right, up and back axes in world space.
func (p Pose) Basis() (right, up, back math.Vec3) {
	f := p.Forward()
	right = f.Cross(p.upVector()).Normalize()
	up = right.Cross(f)
	return right, up, f.Neg()
}

// Orientation returns the camera rotation as a quaternion.
func (p Pose) Orientation() math.Quat {
	r, u, b := p.Basis()
	return math.QuatFromBasis(r, u, b)
}

// EulerDegrees returns the camera rotation as XYZ Euler angles in degrees,
// rounded to 0.01.
func (p Pose) EulerDegrees() math.Vec3 {
	r, u, b := p.Basis()
	// Rotation matrix columns are the basis vectors.
	m11, m12, m13 := r.X, u.X, b.X
	m22, m23 := u.Y, b.Y
	m32, m33 := u.Z, b.Z

	var x, z float32
	y := math32.Asin(clamp(m13, -1, 1))
	if math32.Abs(m13) < 0.9999999 {
		x = math32.Atan2(-m23, m33)
		z = math32.Atan2(-m12, m11)
	} else {
		x = math32.Atan2(m32, m22)
	}

	const toDeg = 180 / math32.Pi
	return math.Vec3{X: round2(x * toDeg), Y: round2(y * toDeg), Z: round2(z * toDeg)}
}

// ApproxEqual reports whether two poses match within eps per component.
func (p Pose) ApproxEqual(o Pose, eps float32) bool {
	return p.Position.ApproxEqual(o.Position, eps) &&
		p.Target.ApproxEqual(o.Target, eps) &&
		p.Up.ApproxEqual(o.Up, eps)
}

// Lerp interpolates position, target and up independently.
func Lerp(a, b Pose, t float32) Pose {
	return Pose{
		Position: a.Position.Lerp(b.Position, t),
		Target:   a.Target.Lerp(b.Target, t),
		Up:       a.Up.Lerp(b.Up, t),
	}
}

// EaseInOutCubic maps linear progress to eased progress. Input is clamped
// to [0, 1].
func EaseInOutCubic(t float32) float32 {
	t = clamp(t, 0, 1)
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float32) float32 {
	return math32.Floor(v*100+0.5) / 100
}
