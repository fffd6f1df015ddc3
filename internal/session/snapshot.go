package session

import (
	"github.com/Faultbox/orthoview/internal/choreo"
	"github.com/Faultbox/orthoview/internal/engine/camera"
	"github.com/Faultbox/orthoview/internal/plane"
	"github.com/Faultbox/orthoview/internal/projection"
	"github.com/Faultbox/orthoview/pkg/math"
	"github.com/Faultbox/orthoview/pkg/mesh"
)

// Snapshot is a copy of a session's observable state after a tick. It
// shares no memory with the session.
type Snapshot struct {
	Frame   uint64  `yaml:"frame"`
	Elapsed float64 `yaml:"elapsed"`

	Shape      mesh.Shape           `yaml:"shape"`
	Projection plane.ProjectionType `yaml:"projection"`
	Stage      Stage                `yaml:"stage"`
	Flow       choreo.FlowPhase     `yaml:"flow"`

	Step      choreo.Step `yaml:"step"`
	View      string      `yaml:"view,omitempty"`
	Progress  float64     `yaml:"progress"`
	Unfold    float64     `yaml:"unfold"`
	Animating bool        `yaml:"animating"`

	Camera      CameraSnapshot  `yaml:"camera"`
	Highlighted string          `yaml:"highlighted,omitempty"`
	Planes      []PlaneSnapshot `yaml:"planes"`
}

// CameraSnapshot is the camera pose plus its orientation for debug display.
type CameraSnapshot struct {
	Pose        camera.Pose `yaml:",inline"`
	Orientation math.Quat   `yaml:"orientation"`
	Rotation    math.Vec3   `yaml:"rotation_deg"`

	// ViewProjection is the orthographic clip transform for the pose.
	ViewProjection math.Mat4 `yaml:"view_projection"`
}

// PlaneSnapshot is one plane with its pose and drawn projection.
type PlaneSnapshot struct {
	ID       plane.ID          `yaml:"id"`
	Pose     plane.Pose        `yaml:"pose"`
	Opacity  float32           `yaml:"opacity"`
	Revealed bool              `yaml:"revealed"`
	Edges    projection.Result `yaml:"edges"`
}

// Plane returns the snapshot of one plane.
func (s Snapshot) Plane(id plane.ID) (PlaneSnapshot, bool) {
	for _, p := range s.Planes {
		if p.ID == id {
			return p, true
		}
	}
	return PlaneSnapshot{}, false
}

func cameraSnapshot(p camera.Pose) CameraSnapshot {
	return CameraSnapshot{
		Pose:        p,
		Orientation: p.Orientation(),
		Rotation:    p.EulerDegrees(),

		ViewProjection: p.ViewProjection(camera.DefaultExtent, 1),
	}
}
