package session

import (
	"testing"

	"github.com/Faultbox/orthoview/internal/choreo"
	"github.com/Faultbox/orthoview/internal/plane"
	"github.com/Faultbox/orthoview/internal/projection"
	"github.com/Faultbox/orthoview/pkg/mesh"
)

const frame = 1.0 / 60

func newSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func runFor(s *Session, seconds float64) Snapshot {
	var snap Snapshot
	for i := 0; i < int(seconds/frame+0.5); i++ {
		snap = s.Tick(frame)
	}
	return snap
}

func TestCubeFrontThenUnfold(t *testing.T) {
	s := newSession(t)
	s.Submit(Machine(choreo.RequestView(plane.Front)))
	snap := runFor(s, 7.5)

	if snap.Step != choreo.StepIdle {
		t.Fatalf("step: got %s, want idle", snap.Step)
	}
	front, _ := snap.Plane(plane.Front)
	if !front.Revealed {
		t.Fatal("front not revealed")
	}
	if len(front.Edges.Visible) != 8 || len(front.Edges.Hidden) != 4 {
		t.Errorf("front edges: got %d visible / %d hidden, want 8 / 4",
			len(front.Edges.Visible), len(front.Edges.Hidden))
	}
	if top, _ := snap.Plane(plane.Top); !top.Edges.Empty() {
		t.Errorf("top should be empty until drawn, got %d edges", top.Edges.Len())
	}

	s.Submit(Machine(choreo.SetUnfoldProgress(1)))
	snap = s.Tick(0)

	top, _ := snap.Plane(plane.Top)
	front, _ = snap.Plane(plane.Front)
	if top.Pose.Angle != 0 {
		t.Errorf("top angle: got %v, want 0", top.Pose.Angle)
	}
	if rel := top.Pose.Origin().Y - front.Pose.Origin().Y; rel >= 0 {
		t.Errorf("top anchor relative to front: got %v, want negative Y", rel)
	}
	for _, p := range snap.Planes {
		if n := p.Pose.Normal(); n.Z < 0.9999 {
			t.Errorf("%s not coplanar with front: normal %v", p.ID, n)
		}
	}
}

func TestSnapshotsPublished(t *testing.T) {
	s := newSession(t)
	var got []Snapshot
	cancel := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	s.Tick(frame)
	s.Tick(frame)
	cancel()
	s.Tick(frame)

	if len(got) != 2 {
		t.Fatalf("snapshots: got %d, want 2", len(got))
	}
	if got[1].Frame != 2 {
		t.Errorf("frame counter: got %d, want 2", got[1].Frame)
	}
	if got[0].Camera.Pose != s.Machine().Rig.Home {
		t.Errorf("camera should start at home, got %+v", got[0].Camera.Pose)
	}
}

func TestSnapshotEdgesAreCopies(t *testing.T) {
	s := newSession(t)
	s.Submit(Machine(choreo.RequestView(plane.Front)))
	runFor(s, 3.1)

	var seen Snapshot
	s.Subscribe(func(snap Snapshot) { seen = snap })
	s.Tick(frame)

	front, ok := seen.Plane(plane.Front)
	if !ok || len(front.Edges.Visible) == 0 {
		t.Fatalf("front not projected: %+v", front)
	}
	want := s.Edges(plane.Front).Visible[0]
	front.Edges.Visible[0] = projection.Segment{}
	front.Edges.Hidden = append(front.Edges.Hidden[:0], projection.Segment{})

	if got := s.Edges(plane.Front).Visible[0]; got != want {
		t.Errorf("subscriber write reached the session: got %+v, want %+v", got, want)
	}
	if again, _ := s.Snapshot().Plane(plane.Front); again.Edges.Len() != 12 {
		t.Errorf("later snapshot: got %d edges, want 12", again.Edges.Len())
	}
}

func TestShapeChangeReprojects(t *testing.T) {
	s := newSession(t)
	s.Submit(Machine(choreo.RequestView(plane.Front)))
	runFor(s, 7.5)

	s.Submit(SelectShape(mesh.ShapeCylinder))
	snap := s.Tick(frame)

	if snap.Shape != mesh.ShapeCylinder {
		t.Fatalf("shape: got %s", snap.Shape)
	}
	front := s.Edges(plane.Front)
	if front.Len() != 2*mesh.DefaultSegments {
		t.Errorf("cylinder front edges: got %d, want %d", front.Len(), 2*mesh.DefaultSegments)
	}
	if !s.State().IsRevealed(plane.Front) {
		t.Error("shape change should keep drawn views")
	}
}

func TestUnknownShapeIgnored(t *testing.T) {
	s := newSession(t)
	s.Submit(SelectShape(mesh.Shape("torus")))
	if snap := s.Tick(frame); snap.Shape != mesh.ShapeCube {
		t.Errorf("shape: got %s, want cube", snap.Shape)
	}
}

func TestProjectionTypeResets(t *testing.T) {
	s := newSession(t)
	s.Submit(Machine(choreo.RequestView(plane.Top)))
	runFor(s, 7.5)
	if s.Edges(plane.Top).Empty() {
		t.Fatal("top should be drawn")
	}

	s.Submit(SetProjectionType(plane.ThirdAngle))
	snap := s.Tick(frame)

	if snap.Projection != plane.ThirdAngle {
		t.Fatalf("projection: got %s", snap.Projection)
	}
	if !s.Edges(plane.Top).Empty() || s.State().RevealedCount() != 0 {
		t.Error("projection type change should clear drawn views")
	}
	if p := s.Solid().Placement; p.Y != -plane.DefaultDistance || p.Z != -plane.DefaultDistance {
		t.Errorf("third-angle placement: got %v", p)
	}
	if snap.Stage != StageDrawing {
		t.Errorf("stage: got %s, want drawing", snap.Stage)
	}
}

func TestWorkflowStages(t *testing.T) {
	s := newSession(t)
	if snap := s.Tick(0); snap.Stage != StageShapeSelection || snap.Highlighted != "" {
		t.Fatalf("initial: stage %s highlighted %q", snap.Stage, snap.Highlighted)
	}

	s.Submit(SelectShape(mesh.ShapeCone))
	if snap := s.Tick(0); snap.Stage != StageProjectionType {
		t.Fatalf("after shape: got %s", snap.Stage)
	}

	s.Submit(SetProjectionType(plane.FirstAngle))
	snap := s.Tick(0)
	if snap.Stage != StageDrawing || snap.Highlighted != "front" {
		t.Fatalf("after projection type: stage %s highlighted %q", snap.Stage, snap.Highlighted)
	}

	for i, id := range plane.IDs {
		s.Submit(Machine(choreo.RequestView(id)))
		snap = runFor(s, 7.5)
		if i < len(plane.IDs)-1 {
			if want := plane.IDs[i+1].String(); snap.Highlighted != want {
				t.Errorf("after %s: highlighted %q, want %q", id, snap.Highlighted, want)
			}
		}
	}
	if snap.Stage != StageUnfolding {
		t.Errorf("after all views: got %s, want unfolding", snap.Stage)
	}

	s.Submit(Machine(choreo.ResetWorkflow()))
	snap = s.Tick(0)
	if snap.Stage != StageShapeSelection {
		t.Errorf("after reset: got %s", snap.Stage)
	}
	for _, p := range snap.Planes {
		if p.Revealed || !p.Edges.Empty() {
			t.Errorf("%s still drawn after reset", p.ID)
		}
	}
}

func TestIntentsAppliedBeforeTime(t *testing.T) {
	s := newSession(t)
	s.Submit(Machine(choreo.RequestView(plane.Side)))
	snap := s.Tick(frame)
	if snap.Step != choreo.StepMovingTo || snap.View != "side" {
		t.Fatalf("got %s %q", snap.Step, snap.View)
	}
	if snap.Progress <= 0 {
		t.Error("the tick's time should apply to the new flight")
	}
}
