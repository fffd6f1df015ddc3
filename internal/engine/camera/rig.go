package camera

import "github.com/Faultbox/orthoview/pkg/math"

// Rig holds the fixed poses of the choreography and the distance at which
// view poses are placed from the object.
type Rig struct {
	Home     Pose    `yaml:"home"`
	Flat     Pose    `yaml:"flat"`
	Distance float32 `yaml:"distance"`
}

// DefaultRig returns the three-quarter home pose, the straight-on flat pose
// and a view distance of 8.
func DefaultRig() Rig {
	return Rig{
		Home: Pose{
			Position: math.Vec3{X: -8, Y: 6, Z: 8},
			Up:       math.UnitY,
		},
		Flat: Pose{
			Position: math.Vec3{Z: 14},
			Up:       math.UnitY,
		},
		Distance: 8,
	}
}

// ViewPose places the camera at Distance from the object, opposite to the
// viewing direction, looking at the object.
func (r Rig) ViewPose(object, direction, up math.Vec3) Pose {
	return Pose{
		Position: object.Sub(direction.Normalize().Scale(r.Distance)),
		Target:   object,
		Up:       up,
	}
}
