package choreo

import (
	"fmt"

	"github.com/Faultbox/orthoview/internal/plane"
)

// IntentKind enumerates the user intents the machine accepts.
type IntentKind int

const (
	IntentRequestView IntentKind = iota
	IntentSetUnfoldProgress
	IntentStartAutomatedUnfold
	IntentResetWorkflow
	IntentAnimateUnfold
	IntentStopUnfold
	IntentReturnToStart
)

func (k IntentKind) String() string {
	switch k {
	case IntentRequestView:
		return "requestView"
	case IntentSetUnfoldProgress:
		return "setUnfoldProgress"
	case IntentStartAutomatedUnfold:
		return "startAutomatedUnfold"
	case IntentResetWorkflow:
		return "resetWorkflow"
	case IntentAnimateUnfold:
		return "animateUnfold"
	case IntentStopUnfold:
		return "stopUnfold"
	case IntentReturnToStart:
		return "returnToStart"
	}
	return fmt.Sprintf("IntentKind(%d)", int(k))
}

// Intent is a request from outside the machine.
type Intent struct {
	Kind  IntentKind
	View  plane.ID // IntentRequestView
	Value float64  // IntentSetUnfoldProgress
}

func (i Intent) String() string {
	switch i.Kind {
	case IntentRequestView:
		return fmt.Sprintf("%s(%s)", i.Kind, i.View)
	case IntentSetUnfoldProgress:
		return fmt.Sprintf("%s(%.3f)", i.Kind, i.Value)
	}
	return i.Kind.String()
}

// RequestView asks the camera to visit a view and reveal its projection.
func RequestView(id plane.ID) Intent {
	return Intent{Kind: IntentRequestView, View: id}
}

// SetUnfoldProgress sets the unfold progress directly. The value is clamped.
func SetUnfoldProgress(v float64) Intent {
	return Intent{Kind: IntentSetUnfoldProgress, Value: v}
}

// StartAutomatedUnfold flies to the front view and locks the camera there
// until the planes are fully unfolded.
func StartAutomatedUnfold() Intent {
	return Intent{Kind: IntentStartAutomatedUnfold}
}

// ResetWorkflow clears all progress and returns the camera home.
func ResetWorkflow() Intent {
	return Intent{Kind: IntentResetWorkflow}
}

// AnimateUnfold toggles the linear unfold animation.
func AnimateUnfold() Intent {
	return Intent{Kind: IntentAnimateUnfold}
}

// StopUnfold stops the unfold animation where it is.
func StopUnfold() Intent {
	return Intent{Kind: IntentStopUnfold}
}

// ReturnToStart flies the camera home from any state.
func ReturnToStart() Intent {
	return Intent{Kind: IntentReturnToStart}
}

// EventKind enumerates what Advance reports.
type EventKind int

const (
	EventStepChanged EventKind = iota
	EventViewRevealed
	EventFlowComplete
	EventUnfoldFinished
	EventReset
	EventIgnored
)

func (k EventKind) String() string {
	switch k {
	case EventStepChanged:
		return "stepChanged"
	case EventViewRevealed:
		return "viewRevealed"
	case EventFlowComplete:
		return "flowComplete"
	case EventUnfoldFinished:
		return "unfoldFinished"
	case EventReset:
		return "reset"
	case EventIgnored:
		return "ignored"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a notable transition produced by Advance.
type Event struct {
	Kind   EventKind
	From   Step     // EventStepChanged
	To     Step     // EventStepChanged
	View   plane.ID // EventViewRevealed, EventStepChanged into movingTo
	Intent Intent   // EventIgnored
	Reason string   // EventIgnored
}

func (e Event) String() string {
	switch e.Kind {
	case EventStepChanged:
		return fmt.Sprintf("%s %s->%s", e.Kind, e.From, e.To)
	case EventViewRevealed:
		return fmt.Sprintf("%s %s", e.Kind, e.View)
	case EventIgnored:
		return fmt.Sprintf("%s %s: %s", e.Kind, e.Intent, e.Reason)
	}
	return e.Kind.String()
}
