package choreo

import (
	"time"

	"github.com/Faultbox/orthoview/internal/engine/camera"
	"github.com/Faultbox/orthoview/internal/plane"
	"github.com/Faultbox/orthoview/pkg/math"
)

// Timing holds the durations of the choreography.
type Timing struct {
	Step   time.Duration `yaml:"step_duration"`
	Pause  time.Duration `yaml:"pause_duration"`
	Unfold time.Duration `yaml:"unfold_duration"`
}

// DefaultTiming returns 3s flights, a 1s hold and a 2s unfold animation.
func DefaultTiming() Timing {
	return Timing{
		Step:   3 * time.Second,
		Pause:  time.Second,
		Unfold: 2 * time.Second,
	}
}

// Machine is the choreography configuration. Advance is a pure function of
// its arguments and the machine value.
type Machine struct {
	Timing Timing
	Rig    camera.Rig
	// Object is where the solid sits; view poses look at it.
	Object math.Vec3
}

// NewMachine creates a machine for an object placement.
func NewMachine(timing Timing, rig camera.Rig, object math.Vec3) Machine {
	return Machine{Timing: timing, Rig: rig, Object: object}
}

// Initial returns the idle state with the camera at home.
func (m Machine) Initial() State {
	return State{
		Step:   StepIdle,
		Camera: m.Rig.Home,
		From:   m.Rig.Home,
		To:     m.Rig.Home,
		Flow:   FlowSetup,
	}
}

// Target returns the camera pose for a view.
func (m Machine) Target(id plane.ID) camera.Pose {
	axis := id.Axis()
	return m.Rig.ViewPose(m.Object, axis.Direction, axis.Up)
}

// Advance applies the intents in order, then advances time by dt seconds.
// A step that completes during dt snaps to its end pose and the rest of dt
// runs in the next step, so a sequence of steps takes exactly the sum of
// their durations whatever the frame size.
func (m Machine) Advance(s State, dt float64, intents []Intent) (State, []Event) {
	var events []Event
	for _, in := range intents {
		s, events = m.apply(s, in, events)
	}
	if dt < 0 || dt != dt {
		dt = 0
	}
	var left float64
	s, left, events = m.animate(s, dt, events)
	if s.Step == StepUnfoldLocked {
		// The flat flight starts when the unfold animation ends.
		dt = left
	}
	return m.tick(s, dt, events)
}

func (m Machine) apply(s State, in Intent, events []Event) (State, []Event) {
	ignore := func(reason string) (State, []Event) {
		return s, append(events, Event{Kind: EventIgnored, Intent: in, Reason: reason})
	}

	switch in.Kind {
	case IntentRequestView:
		if !in.View.Valid() {
			return ignore("unknown view")
		}
		if !s.Idle() {
			return ignore("busy: " + s.Step.String())
		}
		return m.fly(s, StepMovingTo, in.View, m.Target(in.View), events)

	case IntentStartAutomatedUnfold:
		if !s.Idle() {
			return ignore("busy: " + s.Step.String())
		}
		s.AutoUnfold = true
		s.Flow = FlowUnfolding
		return m.fly(s, StepMovingTo, plane.Front, m.Target(plane.Front), events)

	case IntentSetUnfoldProgress:
		s.Unfold = clamp01(in.Value)
		s.Animating = false
		return s, events

	case IntentAnimateUnfold:
		if s.Animating {
			s.Animating = false
			return s, events
		}
		if s.Step != StepIdle && s.Step != StepUnfoldLocked {
			return ignore("busy: " + s.Step.String())
		}
		if s.Unfold >= 1 {
			return ignore("already unfolded")
		}
		s.Animating = true
		s.animateFrom = s.Unfold
		s.animateTime = 0
		if s.Flow == FlowSetup {
			s.Flow = FlowUnfolding
		}
		return s, events

	case IntentStopUnfold:
		s.Animating = false
		return s, events

	case IntentReturnToStart:
		s.AutoUnfold = false
		return m.fly(s, StepReturnToStart, s.View, m.Rig.Home, events)

	case IntentResetWorkflow:
		from := s.Step
		s = m.Initial()
		if from != s.Step {
			events = append(events, Event{Kind: EventStepChanged, From: from, To: s.Step})
		}
		return s, append(events, Event{Kind: EventReset})
	}
	return ignore("unknown intent")
}

// fly starts a camera flight from the current pose.
func (m Machine) fly(s State, step Step, view plane.ID, to camera.Pose, events []Event) (State, []Event) {
	from := s.Step
	s.Step = step
	s.View = view
	s.Progress = 0
	s.stepTime = 0
	s.From = s.Camera
	s.To = to
	return s, append(events, Event{Kind: EventStepChanged, From: from, To: step, View: view})
}

func (m Machine) enter(s State, step Step, events []Event) (State, []Event) {
	from := s.Step
	s.Step = step
	s.Progress = 0
	s.stepTime = 0
	return s, append(events, Event{Kind: EventStepChanged, From: from, To: step, View: s.View})
}

// animate runs the unfold animation and returns the part of dt left after
// it finishes: all of dt when nothing is animating, none while it runs.
func (m Machine) animate(s State, dt float64, events []Event) (State, float64, []Event) {
	if !s.Animating {
		return s, dt, events
	}
	var left float64
	var done bool
	s.animateTime, left, done = elapse(s.animateTime, dt, m.Timing.Unfold)
	if !done {
		s.Unfold = s.animateFrom + (1-s.animateFrom)*fraction(s.animateTime, m.Timing.Unfold)
		return s, 0, events
	}
	s.Unfold = 1
	s.Animating = false
	return s, left, append(events, Event{Kind: EventUnfoldFinished})
}

// tick advances the active step by dt, entering as many following steps as
// dt covers.
func (m Machine) tick(s State, dt float64, events []Event) (State, []Event) {
	for {
		from := s.Step
		s, dt, events = m.tickStep(s, dt, events)
		if s.Step == from {
			return s, events
		}
	}
}

// tickStep advances the active step and returns the time left over when it
// completes.
func (m Machine) tickStep(s State, dt float64, events []Event) (State, float64, []Event) {
	switch s.Step {
	case StepMovingTo:
		left, done := s.elapse(dt, m.Timing.Step)
		if !done {
			s.Camera = m.interpolate(s)
			return s, 0, events
		}
		s.Camera = s.To
		if !s.Revealed[s.View] {
			s.Revealed[s.View] = true
			events = append(events, Event{Kind: EventViewRevealed, View: s.View})
		}
		if s.AutoUnfold && s.View == plane.Front {
			s.Unfold = 0
			s.Animating = false
			s, events = m.enter(s, StepUnfoldLocked, events)
			return s, left, events
		}
		s, events = m.enter(s, StepPaused, events)
		return s, left, events

	case StepPaused:
		left, done := s.elapse(dt, m.Timing.Pause)
		if !done {
			return s, 0, events
		}
		s, events = m.enter(s, StepReturning, events)
		s.From = s.Camera
		s.To = m.Rig.Home
		return s, left, events

	case StepReturning, StepReturnToStart:
		left, done := s.elapse(dt, m.Timing.Step)
		if !done {
			s.Camera = m.interpolate(s)
			return s, 0, events
		}
		s.Camera = s.To
		s, events = m.enter(s, StepIdle, events)
		return s, left, events

	case StepUnfoldLocked:
		if s.Unfold < 1 {
			return s, 0, events
		}
		s, events = m.enter(s, StepFrontViewFlat, events)
		s.From = s.Camera
		s.To = m.Rig.Flat
		return s, dt, events

	case StepFrontViewFlat:
		left, done := s.elapse(dt, m.Timing.Step)
		if !done {
			s.Camera = m.interpolate(s)
			return s, 0, events
		}
		s.Camera = s.To
		s.Flow = FlowComplete
		s.AutoUnfold = false
		s, events = m.enter(s, StepIdle, events)
		return s, left, append(events, Event{Kind: EventFlowComplete})
	}
	return s, 0, events
}

func (m Machine) interpolate(s State) camera.Pose {
	return camera.Lerp(s.From, s.To, camera.EaseInOutCubic(float32(s.Progress)))
}

// settle absorbs rounding in summed frame times: a phase ends on the frame
// where the frames add up to its duration.
const settle = 1e-6

// elapse adds dt to the active step's time and updates Progress. It reports
// whether the step is complete and how much of dt remains after it.
func (s *State) elapse(dt float64, d time.Duration) (left float64, done bool) {
	s.stepTime, left, done = elapse(s.stepTime, dt, d)
	s.Progress = fraction(s.stepTime, d)
	return left, done
}

// elapse adds dt seconds to a phase of length d that has run for t seconds.
// A non-positive duration completes at once.
func elapse(t, dt float64, d time.Duration) (next, left float64, done bool) {
	total := d.Seconds()
	next = t + dt
	if total <= 0 {
		return 0, next, true
	}
	if next < total-settle {
		return next, 0, false
	}
	if left = next - total; left < 0 {
		left = 0
	}
	return total, left, true
}

// fraction is the progress of a phase of length d after t seconds.
func fraction(t float64, d time.Duration) float64 {
	total := d.Seconds()
	if total <= 0 {
		return 1
	}
	return clamp01(t / total)
}

func clamp01(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
