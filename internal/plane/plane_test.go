package plane

import (
	"errors"
	"testing"

	"github.com/Faultbox/orthoview/pkg/math"
)

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

var types = []ProjectionType{FirstAngle, ThirdAngle}

func TestPoseClosedAndFlat(t *testing.T) {
	tests := []struct {
		id          ID
		first       float32
		third       float32
		flatAnchorY float32 // multiplied by the type sign and distance
	}{
		{Front, 0, 0, 1},
		{Top, -90, 90, -1},
		{Side, 90, -90, 1},
		{LeftSide, 90, -90, 1},
	}

	for _, tt := range tests {
		for _, pt := range types {
			t.Run(tt.id.String()+"/"+pt.String(), func(t *testing.T) {
				want := tt.first
				if pt == ThirdAngle {
					want = tt.third
				}
				closed := PoseOf(tt.id, pt, 0)
				if abs(closed.Angle-want) > 1e-6 {
					t.Errorf("closed angle: got %v, want %v", closed.Angle, want)
				}

				flat := PoseOf(tt.id, pt, 1)
				if flat.Angle != 0 {
					t.Errorf("flat angle: got %v, want 0", flat.Angle)
				}
				// Flat planes are coplanar with the front plane (z = 0).
				for _, uv := range []math.Vec2{{}, {X: 1}, {Y: 1}, {X: -3, Y: 2}} {
					if p := flat.Apply(uv); abs(p.Z) > 1e-5 {
						t.Errorf("flat point %v off the front plane: %v", uv, p)
					}
				}
				wantY := tt.flatAnchorY * pt.Sign() * DefaultDistance
				if o := flat.Origin(); abs(o.Y-wantY) > 1e-5 {
					t.Errorf("flat anchor Y: got %v, want %v", o.Y, wantY)
				}
			})
		}
	}
}

// A point of the object, flattened by a plane's axis and mapped back through
// the closed pose, must land on the orthographic projection of that point:
// offset only along the viewing direction, beyond the object for first-angle
// and in front of it for third-angle.
func TestClosedPoseReceivesProjection(t *testing.T) {
	for _, pt := range types {
		reg := NewRegistry(pt, DefaultDistance)
		placement := reg.Placement()
		for _, id := range IDs {
			t.Run(id.String()+"/"+pt.String(), func(t *testing.T) {
				axis := id.Axis()
				for _, local := range []math.Vec3{{}, {X: 0.3, Y: 0.5, Z: -0.2}, {X: -0.7, Y: -0.1, Z: 0.6}} {
					p := placement.Add(local)
					w := reg.Pose(id, 0).Apply(axis.Flatten(p, placement))
					d := w.Sub(p)
					if d.Cross(axis.Direction).Length() > 1e-4 {
						t.Errorf("point %v lands at %v, not along %v", p, w, axis.Direction)
					}
					along := d.Dot(axis.Direction)
					if pt == FirstAngle && along <= 0 {
						t.Errorf("first-angle plane should lie beyond the object, got offset %v", along)
					}
					if pt == ThirdAngle && along >= 0 {
						t.Errorf("third-angle plane should lie in front of the object, got offset %v", along)
					}
				}
			})
		}
	}
}

func TestPoseMonotonic(t *testing.T) {
	for _, pt := range types {
		for _, id := range IDs {
			prev := PoseOf(id, pt, 0).Angle
			for i := 1; i <= 50; i++ {
				a := PoseOf(id, pt, float32(i)/50).Angle
				if abs(a) > abs(prev)+1e-6 {
					t.Fatalf("%s/%s: |angle| grew from %v to %v", id, pt, prev, a)
				}
				if prev*a < 0 {
					t.Fatalf("%s/%s: angle changed sign from %v to %v", id, pt, prev, a)
				}
				if abs(a-prev) > 90.0/50+1e-4 {
					t.Fatalf("%s/%s: jump from %v to %v", id, pt, prev, a)
				}
				prev = a
			}
		}
	}
}

func TestPoseClampsProgress(t *testing.T) {
	if got, want := PoseOf(Top, FirstAngle, -1), PoseOf(Top, FirstAngle, 0); got != want {
		t.Errorf("progress -1: got %+v, want %+v", got, want)
	}
	if got, want := PoseOf(Top, FirstAngle, 7), PoseOf(Top, FirstAngle, 1); got != want {
		t.Errorf("progress 7: got %+v, want %+v", got, want)
	}
}

func TestFlatLayoutArrangement(t *testing.T) {
	// First-angle: top below front, right view on the left.
	first := NewRegistry(FirstAngle, DefaultDistance)
	front := first.Pose(Front, 1).Origin()
	if top := first.Pose(Top, 1).Origin(); top.Y >= front.Y {
		t.Errorf("first-angle top at %v should be below front at %v", top, front)
	}
	if side := first.Pose(Side, 1).Origin(); side.X >= front.X {
		t.Errorf("first-angle side at %v should be left of front at %v", side, front)
	}

	// Third-angle: top above front, right view on the right.
	third := NewRegistry(ThirdAngle, DefaultDistance)
	front = third.Pose(Front, 1).Origin()
	if top := third.Pose(Top, 1).Origin(); top.Y <= front.Y {
		t.Errorf("third-angle top at %v should be above front at %v", top, front)
	}
	if side := third.Pose(Side, 1).Origin(); side.X <= front.X {
		t.Errorf("third-angle side at %v should be right of front at %v", side, front)
	}
}

func TestTopPlaneNormalWhenClosed(t *testing.T) {
	n := PoseOf(Top, FirstAngle, 0).Normal()
	if abs(abs(n.Y)-1) > 1e-5 {
		t.Errorf("closed top plane normal: got %v, want +-Y", n)
	}
	if n := PoseOf(Top, FirstAngle, 1).Normal(); !n.ApproxEqual(math.UnitZ, 1e-5) {
		t.Errorf("flat top plane normal: got %v, want +Z", n)
	}
}

func TestOrientationMatchesMatrix(t *testing.T) {
	for _, pt := range types {
		r := NewRegistry(pt, DefaultDistance)
		for _, id := range IDs {
			for _, progress := range []float32{0, 0.3, 1} {
				pose := r.Pose(id, progress)
				want := pose.Matrix().TransformDirection(math.UnitZ)
				if got := pose.Normal(); !got.ApproxEqual(want, 1e-5) {
					t.Errorf("%v %v at %v: normal %v, matrix gives %v", pt, id, progress, got, want)
				}
			}
		}
	}
}

func TestParse(t *testing.T) {
	ids := []struct {
		in   string
		want ID
	}{
		{"front", Front}, {"Top", Top}, {"side", Side}, {"right", Side},
		{"leftSide", LeftSide}, {"left", LeftSide},
	}
	for _, tt := range ids {
		got, err := ParseID(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseID(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseID("bottom"); !errors.Is(err, ErrUnknownView) {
		t.Errorf("ParseID(bottom) error = %v, want ErrUnknownView", err)
	}

	for _, in := range []string{"first", "first-angle", "1"} {
		if pt, err := ParseProjectionType(in); err != nil || pt != FirstAngle {
			t.Errorf("ParseProjectionType(%q) = %v, %v", in, pt, err)
		}
	}
	if pt, err := ParseProjectionType("third-angle"); err != nil || pt != ThirdAngle {
		t.Errorf("ParseProjectionType(third-angle) = %v, %v", pt, err)
	}
	if _, err := ParseProjectionType("second"); !errors.Is(err, ErrUnknownProjectionType) {
		t.Errorf("ParseProjectionType(second) error = %v", err)
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, id := range IDs {
		text, err := id.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got ID
		if err := got.UnmarshalText(text); err != nil || got != id {
			t.Errorf("round trip %v: got %v, %v", id, got, err)
		}
	}
	if _, err := ID(9).MarshalText(); !errors.Is(err, ErrUnknownView) {
		t.Errorf("invalid ID marshal error = %v", err)
	}
}
