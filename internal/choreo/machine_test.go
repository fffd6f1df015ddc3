package choreo

import (
	"math"
	"testing"

	"github.com/Faultbox/orthoview/internal/engine/camera"
	"github.com/Faultbox/orthoview/internal/plane"
)

const frame = 1.0 / 60

func newMachine() Machine {
	return NewMachine(DefaultTiming(), camera.DefaultRig(), plane.Placement(plane.FirstAngle, plane.DefaultDistance))
}

// run advances s by whole frames covering seconds and collects the events.
func run(m Machine, s State, seconds float64) (State, []Event) {
	var all []Event
	n := int(seconds/frame + 0.5)
	for i := 0; i < n; i++ {
		var ev []Event
		s, ev = m.Advance(s, frame, nil)
		all = append(all, ev...)
	}
	return s, all
}

// frames advances s by n frames of dt and collects the events.
func frames(m Machine, s State, dt float64, n int) (State, []Event) {
	var all []Event
	for i := 0; i < n; i++ {
		var ev []Event
		s, ev = m.Advance(s, dt, nil)
		all = append(all, ev...)
	}
	return s, all
}

// framesFor is the number of dt frames needed to cover seconds.
func framesFor(seconds, dt float64) int {
	return int(math.Ceil(seconds/dt - 1e-9))
}

var frameSizes = []struct {
	name string
	dt   float64
}{
	{"10fps", 1.0 / 10},
	{"30fps", 1.0 / 30},
	{"60fps", 1.0 / 60},
	{"120fps", 1.0 / 120},
	{"144fps", 1.0 / 144},
	{"0.3s", 0.3},
	{"0.7s", 0.7},
	{"2.5s", 2.5},
}

func count(events []Event, kind EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func TestFrontViewCycle(t *testing.T) {
	m := newMachine()
	s := m.Initial()

	s, ev := m.Advance(s, 0, []Intent{RequestView(plane.Front)})
	if s.Step != StepMovingTo || s.View != plane.Front {
		t.Fatalf("after request: step %s view %s", s.Step, s.View)
	}

	s, more := run(m, s, 7.5)
	ev = append(ev, more...)

	if s.Step != StepIdle {
		t.Fatalf("step: got %s, want idle", s.Step)
	}
	if !s.Camera.ApproxEqual(m.Rig.Home, 1e-3) {
		t.Errorf("camera: got %+v, want home %+v", s.Camera, m.Rig.Home)
	}
	if got := count(ev, EventViewRevealed); got != 1 {
		t.Errorf("reveal events: got %d, want 1", got)
	}
	if !s.IsRevealed(plane.Front) || s.RevealedCount() != 1 {
		t.Errorf("revealed flags: %v", s.Revealed)
	}

	// Visiting the same view again does not reveal it twice.
	s, _ = m.Advance(s, 0, []Intent{RequestView(plane.Front)})
	_, ev = run(m, s, 7.5)
	if got := count(ev, EventViewRevealed); got != 0 {
		t.Errorf("second visit reveal events: got %d, want 0", got)
	}
}

func TestViewCycleTakesExactlySevenSeconds(t *testing.T) {
	m := newMachine()
	for _, fs := range frameSizes {
		t.Run(fs.name, func(t *testing.T) {
			start, _ := m.Advance(m.Initial(), 0, []Intent{RequestView(plane.Front)})
			n := framesFor(7, fs.dt)

			before, _ := frames(m, start, fs.dt, n-1)
			if before.Step == StepIdle {
				t.Errorf("idle after %d frames (%.4fs), before 7s", n-1, float64(n-1)*fs.dt)
			}

			s, ev := frames(m, start, fs.dt, n)
			if s.Step != StepIdle {
				t.Fatalf("after %d frames (%.4fs): got %s, want idle", n, float64(n)*fs.dt, s.Step)
			}
			if s.Camera != m.Rig.Home {
				t.Errorf("camera not snapped home: %+v", s.Camera)
			}
			if got := count(ev, EventViewRevealed); got != 1 {
				t.Errorf("reveal events: got %d, want 1", got)
			}
			if got := count(ev, EventStepChanged); got != 3 {
				t.Errorf("step changes: got %d, want 3 (paused, returning, idle)", got)
			}
		})
	}
}

func TestAutomatedFlowFrameSizes(t *testing.T) {
	m := newMachine()
	for _, fs := range frameSizes {
		t.Run(fs.name, func(t *testing.T) {
			s, _ := m.Advance(m.Initial(), 0, []Intent{StartAutomatedUnfold()})
			s, _ = frames(m, s, fs.dt, framesFor(3, fs.dt))
			if s.Step != StepUnfoldLocked {
				t.Fatalf("after 3s: got %s, want unfoldLocked", s.Step)
			}
			if s.Camera != m.Target(plane.Front) {
				t.Errorf("camera not snapped to front: %+v", s.Camera)
			}

			// 2s of animation then the 3s flight to the flat pose.
			n := framesFor(5, fs.dt)
			s, ev := m.Advance(s, fs.dt, []Intent{AnimateUnfold()})
			s, more := frames(m, s, fs.dt, n-1)
			ev = append(ev, more...)

			if s.Step != StepIdle || s.Flow != FlowComplete {
				t.Fatalf("after %d frames: step %s flow %s", n, s.Step, s.Flow)
			}
			if s.Camera != m.Rig.Flat {
				t.Errorf("camera not snapped to flat pose: %+v", s.Camera)
			}
			if s.Unfold != 1 || s.Animating {
				t.Errorf("unfold %v animating %v", s.Unfold, s.Animating)
			}
			if count(ev, EventUnfoldFinished) != 1 || count(ev, EventFlowComplete) != 1 {
				t.Errorf("events: %v", ev)
			}
		})
	}
}

func TestLeftoverTimeCarriesOver(t *testing.T) {
	m := newMachine()
	s, _ := m.Advance(m.Initial(), 0, []Intent{RequestView(plane.Top)})

	// 3.5s: the flight ends and half of the 1s pause has passed.
	s, _ = m.Advance(s, 3.5, nil)
	if s.Step != StepPaused {
		t.Fatalf("got %s, want paused", s.Step)
	}
	if d := s.Progress - 0.5; d > 1e-9 || d < -1e-9 {
		t.Errorf("pause progress: got %v, want 0.5", s.Progress)
	}
}

func TestStepSequence(t *testing.T) {
	m := newMachine()
	s, _ := m.Advance(m.Initial(), 0, []Intent{RequestView(plane.Top)})

	s, _ = run(m, s, 3.05)
	if s.Step != StepPaused {
		t.Fatalf("after flight: got %s, want paused", s.Step)
	}
	if s.Camera != m.Target(plane.Top) {
		t.Errorf("camera not snapped to target: %+v", s.Camera)
	}
	if s.Progress != 0 && s.Progress > 0.1 {
		t.Errorf("progress should restart on transition, got %v", s.Progress)
	}

	s, _ = run(m, s, 1.05)
	if s.Step != StepReturning {
		t.Fatalf("after pause: got %s, want returning", s.Step)
	}
	s, _ = run(m, s, 3.05)
	if s.Step != StepIdle || s.Camera != m.Rig.Home {
		t.Fatalf("after return: step %s camera %+v", s.Step, s.Camera)
	}
}

func TestRequestIgnoredWhileBusy(t *testing.T) {
	m := newMachine()
	s, _ := m.Advance(m.Initial(), 0, []Intent{RequestView(plane.Front)})
	s, _ = run(m, s, 0.5)

	with, ev := m.Advance(s, frame, []Intent{RequestView(plane.Top)})
	without, _ := m.Advance(s, frame, nil)

	if with != without {
		t.Errorf("ignored request changed state:\n with    %+v\n without %+v", with, without)
	}
	if count(ev, EventIgnored) != 1 {
		t.Errorf("expected one ignored event, got %v", ev)
	}
	if with.View != plane.Front || with.Step != StepMovingTo {
		t.Errorf("active transition changed: %s %s", with.Step, with.View)
	}
}

func TestUnknownViewIgnored(t *testing.T) {
	m := newMachine()
	s, ev := m.Advance(m.Initial(), 0, []Intent{RequestView(plane.ID(9))})
	if s != m.Initial() {
		t.Errorf("state changed on unknown view")
	}
	if count(ev, EventIgnored) != 1 {
		t.Errorf("events: %v", ev)
	}
}

func TestUpVectorInterpolated(t *testing.T) {
	m := newMachine()
	s, _ := m.Advance(m.Initial(), 0, []Intent{RequestView(plane.Top)})
	s, _ = run(m, s, 1.5)

	want := camera.Lerp(m.Rig.Home, m.Target(plane.Top), camera.EaseInOutCubic(float32(s.Progress)))
	if !s.Camera.ApproxEqual(want, 1e-5) {
		t.Errorf("mid-flight camera: got %+v, want %+v", s.Camera, want)
	}
	if s.Camera.Up.Z >= 0 {
		t.Errorf("up should be tilting toward -Z, got %v", s.Camera.Up)
	}
}

func TestAutomatedUnfoldFlow(t *testing.T) {
	m := newMachine()
	s, _ := m.Advance(m.Initial(), 0, []Intent{SetUnfoldProgress(0.4), StartAutomatedUnfold()})
	if s.Flow != FlowUnfolding {
		t.Fatalf("flow: got %s, want unfolding", s.Flow)
	}

	s, ev := run(m, s, 3.1)
	if s.Step != StepUnfoldLocked {
		t.Fatalf("after front flight: got %s, want unfoldLocked", s.Step)
	}
	if s.Unfold != 0 {
		t.Errorf("unfold should reset to 0 on lock, got %v", s.Unfold)
	}
	if count(ev, EventViewRevealed) != 1 {
		t.Errorf("front should be revealed on arrival")
	}

	// The camera stays locked until the unfold completes.
	locked := s.Camera
	s, _ = run(m, s, 2)
	if s.Step != StepUnfoldLocked || s.Camera != locked {
		t.Fatalf("lock broken: %s %+v", s.Step, s.Camera)
	}

	s, _ = m.Advance(s, 0, []Intent{AnimateUnfold()})
	s, ev = run(m, s, 2.1)
	if s.Unfold != 1 {
		t.Errorf("unfold: got %v, want 1", s.Unfold)
	}
	if s.Step != StepFrontViewFlat {
		t.Fatalf("after unfold: got %s, want frontViewFlat", s.Step)
	}
	if count(ev, EventUnfoldFinished) != 1 {
		t.Errorf("expected unfoldFinished event, got %v", ev)
	}

	s, ev = run(m, s, 3.1)
	if s.Step != StepIdle || s.Flow != FlowComplete {
		t.Fatalf("end of flow: step %s flow %s", s.Step, s.Flow)
	}
	if s.Camera != m.Rig.Flat {
		t.Errorf("camera: got %+v, want flat pose", s.Camera)
	}
	if count(ev, EventFlowComplete) != 1 {
		t.Errorf("expected flowComplete event, got %v", ev)
	}
}

func TestManualUnfoldReleasesLock(t *testing.T) {
	m := newMachine()
	s, _ := m.Advance(m.Initial(), 0, []Intent{StartAutomatedUnfold()})
	s, _ = run(m, s, 3.1)
	if s.Step != StepUnfoldLocked {
		t.Fatalf("got %s, want unfoldLocked", s.Step)
	}

	s, _ = m.Advance(s, frame, []Intent{SetUnfoldProgress(0.6)})
	if s.Step != StepUnfoldLocked {
		t.Fatalf("partial unfold released the lock")
	}
	s, _ = m.Advance(s, frame, []Intent{SetUnfoldProgress(1)})
	if s.Step != StepFrontViewFlat {
		t.Fatalf("got %s, want frontViewFlat", s.Step)
	}
}

func TestAnimateToggle(t *testing.T) {
	m := newMachine()
	s, _ := m.Advance(m.Initial(), 0, []Intent{AnimateUnfold()})
	if !s.Animating || s.Flow != FlowUnfolding {
		t.Fatalf("animation not started: %+v", s)
	}

	s, _ = run(m, s, 1)
	if d := s.Unfold - 0.5; d > 1e-6 || d < -1e-6 {
		t.Errorf("after 1s: got %v, want 0.5", s.Unfold)
	}

	s, _ = m.Advance(s, 0, []Intent{AnimateUnfold()})
	if s.Animating {
		t.Fatal("second toggle should stop the animation")
	}
	stopped := s.Unfold
	s, _ = run(m, s, 1)
	if s.Unfold != stopped {
		t.Errorf("unfold moved after stop: %v -> %v", stopped, s.Unfold)
	}

	// Restarting runs linearly from the current value over the full duration.
	s, _ = m.Advance(s, 0, []Intent{AnimateUnfold()})
	s, _ = run(m, s, 1)
	if d := s.Unfold - 0.75; d > 1e-6 || d < -1e-6 {
		t.Errorf("resumed after 1s: got %v, want 0.75", s.Unfold)
	}

	// Views cannot be requested while the planes are animating.
	_, ev := m.Advance(s, 0, []Intent{RequestView(plane.Top)})
	if count(ev, EventIgnored) != 1 {
		t.Errorf("request during animation should be ignored, got %v", ev)
	}
}

func TestAnimateGatedToIdle(t *testing.T) {
	m := newMachine()
	s, _ := m.Advance(m.Initial(), 0, []Intent{RequestView(plane.Side)})
	s, ev := m.Advance(s, frame, []Intent{AnimateUnfold()})
	if s.Animating || count(ev, EventIgnored) != 1 {
		t.Errorf("animate during flight: animating=%v events=%v", s.Animating, ev)
	}
}

func TestSetUnfoldProgressClamps(t *testing.T) {
	m := newMachine()
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0.25, 0.25},
		{3, 1},
	}
	for _, tt := range tests {
		s, _ := m.Advance(m.Initial(), 0, []Intent{SetUnfoldProgress(tt.in)})
		if s.Unfold != tt.want {
			t.Errorf("SetUnfoldProgress(%v): got %v, want %v", tt.in, s.Unfold, tt.want)
		}
	}
}

func TestResetWorkflow(t *testing.T) {
	m := newMachine()
	s, _ := m.Advance(m.Initial(), 0, []Intent{RequestView(plane.Front), SetUnfoldProgress(0.3)})
	s, _ = run(m, s, 3.5)

	s, ev := m.Advance(s, 0, []Intent{ResetWorkflow()})
	if s != m.Initial() {
		t.Errorf("reset state: got %+v", s)
	}
	if count(ev, EventReset) != 1 {
		t.Errorf("events: %v", ev)
	}
}

func TestReturnToStartFromAnyState(t *testing.T) {
	m := newMachine()
	s, _ := m.Advance(m.Initial(), 0, []Intent{RequestView(plane.LeftSide)})
	s, _ = run(m, s, 3.3)
	if s.Step != StepPaused {
		t.Fatalf("got %s, want paused", s.Step)
	}

	s, _ = m.Advance(s, 0, []Intent{ReturnToStart()})
	if s.Step != StepReturnToStart {
		t.Fatalf("got %s, want returnToStart", s.Step)
	}
	s, _ = run(m, s, 3.1)
	if s.Step != StepIdle || s.Camera != m.Rig.Home {
		t.Errorf("after return: step %s camera %+v", s.Step, s.Camera)
	}
}

func TestProfileCrossFade(t *testing.T) {
	m := newMachine()
	s, _ := m.Advance(m.Initial(), 0, []Intent{RequestView(plane.LeftSide)})

	s, _ = run(m, s, 1.5)
	if a := s.Approach(); a <= 0 || a >= 1 {
		t.Errorf("approach mid-flight: got %v", a)
	}
	if got, want := s.Opacity(plane.Side), 1-s.Approach(); got != want {
		t.Errorf("side opacity: got %v, want %v", got, want)
	}

	s, _ = run(m, s, 1.6)
	if s.Step != StepPaused {
		t.Fatalf("got %s, want paused", s.Step)
	}
	if s.Opacity(plane.Side) != 0 || s.Opacity(plane.LeftSide) != 1 || s.Opacity(plane.Front) != 1 {
		t.Errorf("paused opacities: side %v left %v front %v",
			s.Opacity(plane.Side), s.Opacity(plane.LeftSide), s.Opacity(plane.Front))
	}

	s, _ = run(m, s, 4.5)
	if s.Opacity(plane.Side) != 1 {
		t.Errorf("idle side opacity: got %v, want 1", s.Opacity(plane.Side))
	}
}
