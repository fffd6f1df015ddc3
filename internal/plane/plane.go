// Package plane describes the projection planes, where each one sits for a
// projection type and how it unfolds into the flat drafting layout.
package plane

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/orthoview/internal/projection"
	"github.com/Faultbox/orthoview/pkg/math"
)

var (
	// ErrUnknownView is returned for view names outside front/top/side/leftSide.
	ErrUnknownView = errors.New("unknown view")
	// ErrUnknownProjectionType is returned for names other than first/third angle.
	ErrUnknownProjectionType = errors.New("unknown projection type")
)

// ID identifies a projection plane and the view drawn on it.
type ID int

const (
	Front ID = iota
	Top
	Side
	LeftSide
)

// IDs lists all planes in drawing order.
var IDs = []ID{Front, Top, Side, LeftSide}

func (id ID) String() string {
	switch id {
	case Front:
		return "front"
	case Top:
		return "top"
	case Side:
		return "side"
	case LeftSide:
		return "leftSide"
	}
	return fmt.Sprintf("ID(%d)", int(id))
}

// Valid reports whether id names a known plane.
func (id ID) Valid() bool {
	return id >= Front && id <= LeftSide
}

// ParseID converts a view name into an ID.
func ParseID(s string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "front", "vertical":
		return Front, nil
	case "top", "horizontal":
		return Top, nil
	case "side", "right", "rightside", "right-side":
		return Side, nil
	case "leftside", "left", "left-side":
		return LeftSide, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownView, int(id))
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	v, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// Axis returns the viewing axis whose projection this plane displays.
func (id ID) Axis() projection.Axis {
	switch id {
	case Top:
		return projection.AxisTop
	case Side:
		return projection.AxisRight
	case LeftSide:
		return projection.AxisLeft
	}
	return projection.AxisFront
}

// ProjectionType selects the drafting convention.
type ProjectionType int

const (
	// FirstAngle places the object between the observer and the planes.
	FirstAngle ProjectionType = iota
	// ThirdAngle places the planes between the observer and the object.
	ThirdAngle
)

func (pt ProjectionType) String() string {
	if pt == ThirdAngle {
		return "third-angle"
	}
	return "first-angle"
}

// Sign is +1 for first-angle and -1 for third-angle.
func (pt ProjectionType) Sign() float32 {
	if pt == ThirdAngle {
		return -1
	}
	return 1
}

// Quadrant returns the dihedral quadrant that holds the object.
func (pt ProjectionType) Quadrant() int {
	if pt == ThirdAngle {
		return 3
	}
	return 1
}

// ParseProjectionType converts a name such as "first-angle" or "third".
func ParseProjectionType(s string) (ProjectionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "first-angle", "firstangle", "first_angle", "1":
		return FirstAngle, nil
	case "third", "third-angle", "thirdangle", "third_angle", "3":
		return ThirdAngle, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProjectionType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (pt ProjectionType) MarshalText() ([]byte, error) {
	return []byte(pt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pt *ProjectionType) UnmarshalText(text []byte) error {
	v, err := ParseProjectionType(string(text))
	if err != nil {
		return err
	}
	*pt = v
	return nil
}

// Placement returns the object position for a projection type: distance
// above the horizontal plane and in front of the vertical plane for
// first-angle, mirrored for third-angle.
func Placement(pt ProjectionType, distance float32) math.Vec3 {
	s := pt.Sign() * distance
	return math.Vec3{Y: s, Z: s}
}
