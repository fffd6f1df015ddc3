package math

import "github.com/chewxy/math32"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians. A zero axis gives the
// identity.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	if axis == (Vec3{}) {
		return QuatIdentity()
	}
	s, c := math32.Sincos(angle / 2)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: c,
	}
}

// QuatFromBasis creates a quaternion from an orthonormal basis given as the
// columns of a rotation matrix.
func QuatFromBasis(x, y, z Vec3) Quat {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	trace := m00 + m11 + m22
	var q Quat
	switch {
	case trace > 0:
		s := 0.5 / math32.Sqrt(trace+1)
		q = Quat{
			X: (m21 - m12) * s,
			Y: (m02 - m20) * s,
			Z: (m10 - m01) * s,
			W: 0.25 / s,
		}
	case m00 > m11 && m00 > m22:
		s := 2 * math32.Sqrt(1+m00-m11-m22)
		q = Quat{
			X: 0.25 * s,
			Y: (m01 + m10) / s,
			Z: (m02 + m20) / s,
			W: (m21 - m12) / s,
		}
	case m11 > m22:
		s := 2 * math32.Sqrt(1+m11-m00-m22)
		q = Quat{
			X: (m01 + m10) / s,
			Y: 0.25 * s,
			Z: (m12 + m21) / s,
			W: (m02 - m20) / s,
		}
	default:
		s := 2 * math32.Sqrt(1+m22-m00-m11)
		q = Quat{
			X: (m02 + m20) / s,
			Y: (m12 + m21) / s,
			Z: 0.25 * s,
			W: (m10 - m01) / s,
		}
	}
	return q.Normalize()
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math32.Sqrt(q.Dot(q))
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}
