// Package choreo implements the view choreography: camera flights to each
// principal view, projection reveals and the gated unfold of the planes.
//
// The machine is a pure step function. Machine.Advance takes a State, the
// elapsed frame time and the intents received since the previous frame and
// returns the next State together with the events that happened.
package choreo

import (
	"fmt"

	"github.com/Faultbox/orthoview/internal/engine/camera"
	"github.com/Faultbox/orthoview/internal/plane"
)

// Step is the active phase of the choreography.
type Step int

const (
	StepIdle Step = iota
	StepMovingTo
	StepPaused
	StepReturning
	StepUnfoldLocked
	StepFrontViewFlat
	StepReturnToStart
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepMovingTo:
		return "movingTo"
	case StepPaused:
		return "paused"
	case StepReturning:
		return "returning"
	case StepUnfoldLocked:
		return "unfoldLocked"
	case StepFrontViewFlat:
		return "frontViewFlat"
	case StepReturnToStart:
		return "returnToStart"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FlowPhase tracks the automated unfold flow.
type FlowPhase int

const (
	FlowSetup FlowPhase = iota
	FlowUnfolding
	FlowComplete
)

func (f FlowPhase) String() string {
	switch f {
	case FlowUnfolding:
		return "unfolding"
	case FlowComplete:
		return "complete"
	}
	return "setup"
}

// MarshalText implements encoding.TextMarshaler.
func (f FlowPhase) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// State is the complete choreography state. It is a plain value; copies are
// independent.
type State struct {
	Step     Step
	View     plane.ID // view targeted by movingTo/paused/returning
	Progress float64  // of the active step, in [0, 1]
	stepTime float64  // seconds spent in the active step

	Camera camera.Pose
	From   camera.Pose // camera pose when the active flight started
	To     camera.Pose // destination of the active flight

	Revealed [4]bool // indexed by plane.ID
	Flow     FlowPhase

	// AutoUnfold is set while the automated unfold flow owns the camera.
	AutoUnfold bool

	Unfold      float64 // global unfold progress in [0, 1]
	Animating   bool
	animateFrom float64
	animateTime float64 // seconds since the animation started
}

// Idle reports whether a new view may be requested.
func (s State) Idle() bool {
	return s.Step == StepIdle && !s.Animating
}

// IsRevealed reports whether a view's projection has been drawn.
func (s State) IsRevealed(id plane.ID) bool {
	return id.Valid() && s.Revealed[id]
}

// RevealedCount returns how many views have been drawn.
func (s State) RevealedCount() int {
	n := 0
	for _, r := range s.Revealed {
		if r {
			n++
		}
	}
	return n
}

// Approach describes how close the camera is to the current view: rising
// to 1 while flying in, 1 while paused, falling back to 0 while returning.
func (s State) Approach() float32 {
	switch s.Step {
	case StepMovingTo:
		return float32(s.Progress)
	case StepPaused:
		return 1
	case StepReturning:
		return float32(1 - s.Progress)
	}
	return 0
}

// Opacity returns the display opacity of a plane. The two profile planes
// face each other across the object, so each fades out while the camera
// visits the opposite one.
func (s State) Opacity(id plane.ID) float32 {
	if s.Step != StepMovingTo && s.Step != StepPaused && s.Step != StepReturning {
		return 1
	}
	switch {
	case id == plane.Side && s.View == plane.LeftSide,
		id == plane.LeftSide && s.View == plane.Side:
		return 1 - s.Approach()
	}
	return 1
}
