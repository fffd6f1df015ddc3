package session

import (
	"fmt"

	"github.com/Faultbox/orthoview/internal/choreo"
	"github.com/Faultbox/orthoview/internal/plane"
	"github.com/Faultbox/orthoview/pkg/mesh"
)

// IntentKind separates choreography intents from workflow changes the
// session handles itself.
type IntentKind int

const (
	IntentMachine IntentKind = iota
	IntentSelectShape
	IntentSetProjectionType
)

// Intent is a queued request. Intents are applied at the start of the next
// Tick, in submission order.
type Intent struct {
	Kind       IntentKind
	Machine    choreo.Intent
	Shape      mesh.Shape
	Projection plane.ProjectionType
}

func (i Intent) String() string {
	switch i.Kind {
	case IntentSelectShape:
		return fmt.Sprintf("selectShape(%s)", i.Shape)
	case IntentSetProjectionType:
		return fmt.Sprintf("setProjectionType(%s)", i.Projection)
	}
	return i.Machine.String()
}

// Machine wraps a choreography intent.
func Machine(in choreo.Intent) Intent {
	return Intent{Kind: IntentMachine, Machine: in}
}

// SelectShape replaces the solid. Revealed projections are recomputed.
func SelectShape(shape mesh.Shape) Intent {
	return Intent{Kind: IntentSelectShape, Shape: shape}
}

// SetProjectionType switches the drafting convention and resets the workflow.
func SetProjectionType(pt plane.ProjectionType) Intent {
	return Intent{Kind: IntentSetProjectionType, Projection: pt}
}

// Stage is the teaching workflow position shown to the user.
type Stage int

const (
	StageShapeSelection Stage = iota
	StageProjectionType
	StageDrawing
	StageUnfolding
)

func (s Stage) String() string {
	switch s {
	case StageProjectionType:
		return "projection-type"
	case StageDrawing:
		return "drawing"
	case StageUnfolding:
		return "unfolding"
	}
	return "shape-selection"
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
