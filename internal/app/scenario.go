package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/orthoview/internal/choreo"
	"github.com/Faultbox/orthoview/internal/plane"
	"github.com/Faultbox/orthoview/internal/session"
	"github.com/Faultbox/orthoview/pkg/mesh"
)

// ErrUnknownIntent is returned for scenario steps naming no known intent.
var ErrUnknownIntent = errors.New("unknown intent")

// Scenario is a scripted sequence of intents.
type Scenario struct {
	Name string `yaml:"name"`
	// Duration is the minimum simulated time; the run also waits for the
	// choreography to settle after the last step.
	Duration time.Duration `yaml:"duration"`
	Steps    []Step        `yaml:"steps"`
}

// Step submits one intent once its conditions hold. Steps run in order.
type Step struct {
	At         time.Duration `yaml:"at"`                   // earliest simulated time
	WaitFor    string        `yaml:"wait_for,omitempty"`   // choreography step to wait for, e.g. idle
	Intent     string        `yaml:"intent"`               // e.g. requestView
	View       string        `yaml:"view,omitempty"`       // requestView
	Progress   float64       `yaml:"progress,omitempty"`   // setUnfoldProgress
	Shape      string        `yaml:"shape,omitempty"`      // selectShape
	Projection string        `yaml:"projection,omitempty"` // setProjectionType
}

// ToIntent converts the step into a session intent.
func (s Step) ToIntent() (session.Intent, error) {
	switch strings.ToLower(s.Intent) {
	case "requestview":
		id, err := plane.ParseID(s.View)
		if err != nil {
			return session.Intent{}, err
		}
		return session.Machine(choreo.RequestView(id)), nil
	case "setunfoldprogress":
		return session.Machine(choreo.SetUnfoldProgress(s.Progress)), nil
	case "startautomatedunfold":
		return session.Machine(choreo.StartAutomatedUnfold()), nil
	case "resetworkflow":
		return session.Machine(choreo.ResetWorkflow()), nil
	case "animateunfold":
		return session.Machine(choreo.AnimateUnfold()), nil
	case "stopunfold":
		return session.Machine(choreo.StopUnfold()), nil
	case "returntostart":
		return session.Machine(choreo.ReturnToStart()), nil
	case "selectshape":
		shape, err := mesh.ParseShape(s.Shape)
		if err != nil {
			return session.Intent{}, err
		}
		return session.SelectShape(shape), nil
	case "setprojectiontype":
		pt, err := plane.ParseProjectionType(s.Projection)
		if err != nil {
			return session.Intent{}, err
		}
		return session.SetProjectionType(pt), nil
	}
	return session.Intent{}, fmt.Errorf("%w: %q", ErrUnknownIntent, s.Intent)
}

// ready reports whether the step may be submitted at elapsed time t with
// the given snapshot.
func (s Step) ready(t time.Duration, snap session.Snapshot) bool {
	if t < s.At {
		return false
	}
	switch s.WaitFor {
	case "":
		return true
	case choreo.StepIdle.String():
		return snap.Step == choreo.StepIdle && !snap.Animating
	}
	return snap.Step.String() == s.WaitFor
}

// Validate checks every step.
func (sc *Scenario) Validate() error {
	for i, st := range sc.Steps {
		if _, err := st.ToIntent(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if st.WaitFor != "" && !knownStep(st.WaitFor) {
			return fmt.Errorf("step %d: unknown wait_for %q", i+1, st.WaitFor)
		}
	}
	return nil
}

func knownStep(name string) bool {
	for s := choreo.StepIdle; s <= choreo.StepReturnToStart; s++ {
		if s.String() == name {
			return true
		}
	}
	return false
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return sc, nil
}

// DefaultScenario draws the four views in order, then runs the automated
// unfold to the flat layout.
func DefaultScenario() *Scenario {
	idle := choreo.StepIdle.String()
	return &Scenario{
		Name: "full-lesson",
		Steps: []Step{
			{WaitFor: idle, Intent: "requestView", View: "front"},
			{WaitFor: idle, Intent: "requestView", View: "top"},
			{WaitFor: idle, Intent: "requestView", View: "side"},
			{WaitFor: idle, Intent: "requestView", View: "leftSide"},
			{WaitFor: idle, Intent: "startAutomatedUnfold"},
			{WaitFor: choreo.StepUnfoldLocked.String(), Intent: "animateUnfold"},
		},
	}
}
