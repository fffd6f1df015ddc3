// Package session owns the running teaching session: the solid, the plane
// registry, the choreography state and the projections drawn so far. It is
// the single place where intents enter and snapshots leave.
package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/orthoview/internal/choreo"
	"github.com/Faultbox/orthoview/internal/engine/camera"
	"github.com/Faultbox/orthoview/internal/plane"
	"github.com/Faultbox/orthoview/internal/projection"
	"github.com/Faultbox/orthoview/pkg/mesh"
)

// Config holds everything needed to start a session.
type Config struct {
	Shape         mesh.Shape
	Projection    plane.ProjectionType
	Timing        choreo.Timing
	Rig           camera.Rig
	Options       projection.Options
	PlaneDistance float32
}

// DefaultConfig returns a cube in first-angle projection with default timing.
func DefaultConfig() Config {
	return Config{
		Shape:         mesh.ShapeCube,
		Projection:    plane.FirstAngle,
		Timing:        choreo.DefaultTiming(),
		Rig:           camera.DefaultRig(),
		Options:       projection.DefaultOptions(),
		PlaneDistance: plane.DefaultDistance,
	}
}

// Subscriber receives a snapshot after every tick.
type Subscriber func(Snapshot)

// Session is not safe for concurrent use; drive it from one goroutine.
type Session struct {
	cfg    Config
	log    *zap.Logger
	engine *projection.Engine

	shape    mesh.Shape
	solid    *mesh.Mesh
	registry plane.Registry
	machine  choreo.Machine
	state    choreo.State
	stage    Stage

	edges [4]projection.Result

	queue   []Intent
	subs    map[int]Subscriber
	nextSub int

	frame   uint64
	elapsed float64
}

// New creates a session. A nil logger disables logging.
func New(cfg Config, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	solid, err := mesh.Build(cfg.Shape)
	if err != nil {
		return nil, fmt.Errorf("build shape: %w", err)
	}

	s := &Session{
		cfg:    cfg,
		log:    log,
		engine: projection.NewEngine(cfg.Options, log.Named("projection")),
		shape:  cfg.Shape,
		solid:  solid,
		subs:   make(map[int]Subscriber),
	}
	s.setProjectionType(cfg.Projection)
	s.stage = StageShapeSelection

	log.Info("session started",
		zap.String("shape", string(cfg.Shape)),
		zap.Stringer("projection", cfg.Projection),
		zap.Int("triangles", solid.TriangleCount()))
	return s, nil
}

// Submit queues an intent for the next tick.
func (s *Session) Submit(in Intent) {
	s.queue = append(s.queue, in)
}

// Subscribe registers fn for snapshots. The returned func unsubscribes.
func (s *Session) Subscribe(fn Subscriber) func() {
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

// State returns the current choreography state.
func (s *Session) State() choreo.State {
	return s.state
}

// Machine returns the choreography machine for the current placement.
func (s *Session) Machine() choreo.Machine {
	return s.machine
}

// Registry returns the plane registry for the current projection type.
func (s *Session) Registry() plane.Registry {
	return s.registry
}

// Solid returns the current mesh and placement.
func (s *Session) Solid() projection.Solid {
	return projection.Solid{Mesh: s.solid, Placement: s.registry.Placement()}
}

// Edges returns a copy of the projection drawn on a plane; empty until
// revealed.
func (s *Session) Edges(id plane.ID) projection.Result {
	if !id.Valid() {
		return projection.Result{}
	}
	return s.edges[id].Clone()
}

// Tick applies the queued intents, advances time by dt seconds and
// publishes a snapshot.
func (s *Session) Tick(dt float64) Snapshot {
	queue := s.queue
	s.queue = nil

	var batch []choreo.Intent
	flush := func(dt float64) {
		next, events := s.machine.Advance(s.state, dt, batch)
		s.state = next
		batch = batch[:0]
		s.handle(events)
	}

	for _, in := range queue {
		if in.Kind == IntentMachine {
			batch = append(batch, in.Machine)
			continue
		}
		// Workflow changes see every machine intent queued before them.
		if len(batch) > 0 {
			flush(0)
		}
		s.applyWorkflow(in)
	}
	flush(dt)

	s.frame++
	s.elapsed += dt
	s.updateStage()

	snap := s.Snapshot()
	for _, fn := range s.subs {
		fn(snap)
	}
	return snap
}

func (s *Session) applyWorkflow(in Intent) {
	switch in.Kind {
	case IntentSelectShape:
		solid, err := mesh.Build(in.Shape)
		if err != nil {
			s.log.Warn("shape rejected", zap.String("shape", string(in.Shape)), zap.Error(err))
			return
		}
		s.engine.Forget(s.solid)
		s.shape = in.Shape
		s.solid = solid
		s.reproject()
		if s.stage == StageShapeSelection {
			s.stage = StageProjectionType
		}
		s.log.Info("shape selected", zap.String("shape", string(in.Shape)))

	case IntentSetProjectionType:
		if in.Projection != plane.FirstAngle && in.Projection != plane.ThirdAngle {
			s.log.Warn("projection type rejected", zap.Int("value", int(in.Projection)))
			return
		}
		s.setProjectionType(in.Projection)
		if s.stage < StageDrawing {
			s.stage = StageDrawing
		}
		s.log.Info("projection type selected", zap.Stringer("projection", in.Projection))
	}
}

// setProjectionType rebuilds the placement-dependent parts and resets the
// workflow.
func (s *Session) setProjectionType(pt plane.ProjectionType) {
	s.registry = plane.NewRegistry(pt, s.cfg.PlaneDistance)
	s.machine = choreo.NewMachine(s.cfg.Timing, s.cfg.Rig, s.registry.Placement())
	s.state = s.machine.Initial()
	s.edges = [4]projection.Result{}
}

// reproject recomputes the projections of every revealed plane.
func (s *Session) reproject() {
	for _, id := range plane.IDs {
		if s.state.IsRevealed(id) {
			s.edges[id] = s.engine.Project(s.Solid(), id.Axis())
		} else {
			s.edges[id] = projection.Result{}
		}
	}
}

func (s *Session) handle(events []choreo.Event) {
	for _, e := range events {
		switch e.Kind {
		case choreo.EventViewRevealed:
			s.edges[e.View] = s.engine.Project(s.Solid(), e.View.Axis())
			s.log.Info("view revealed",
				zap.Stringer("view", e.View),
				zap.Int("visible", len(s.edges[e.View].Visible)),
				zap.Int("hidden", len(s.edges[e.View].Hidden)))
		case choreo.EventReset:
			s.edges = [4]projection.Result{}
			s.stage = StageShapeSelection
			s.log.Info("workflow reset")
		case choreo.EventIgnored:
			s.log.Debug("intent ignored",
				zap.Stringer("intent", e.Intent),
				zap.String("reason", e.Reason))
		case choreo.EventFlowComplete:
			s.log.Info("flow complete")
		default:
			s.log.Debug("choreography", zap.Stringer("event", e))
		}
	}
}

func (s *Session) updateStage() {
	if s.stage != StageDrawing {
		return
	}
	if s.state.RevealedCount() == len(plane.IDs) || s.state.Flow != choreo.FlowSetup {
		s.stage = StageUnfolding
	}
}

// highlighted returns the next view to draw while in the drawing stage.
func (s *Session) highlighted() (plane.ID, bool) {
	if s.stage != StageDrawing {
		return 0, false
	}
	for _, id := range plane.IDs {
		if !s.state.IsRevealed(id) {
			return id, true
		}
	}
	return 0, false
}

// Snapshot builds a snapshot of the current state without advancing.
func (s *Session) Snapshot() Snapshot {
	st := s.state
	snap := Snapshot{
		Frame:      s.frame,
		Elapsed:    s.elapsed,
		Shape:      s.shape,
		Projection: s.registry.Type,
		Stage:      s.stage,
		Flow:       st.Flow,
		Step:       st.Step,
		Progress:   st.Progress,
		Unfold:     st.Unfold,
		Animating:  st.Animating,
		Camera:     cameraSnapshot(st.Camera),
	}
	switch st.Step {
	case choreo.StepMovingTo, choreo.StepPaused, choreo.StepReturning:
		snap.View = st.View.String()
	}
	if id, ok := s.highlighted(); ok {
		snap.Highlighted = id.String()
	}

	snap.Planes = make([]PlaneSnapshot, 0, len(plane.IDs))
	for _, id := range plane.IDs {
		snap.Planes = append(snap.Planes, PlaneSnapshot{
			ID:       id,
			Pose:     s.registry.Pose(id, float32(st.Unfold)),
			Opacity:  st.Opacity(id),
			Revealed: st.IsRevealed(id),
			Edges:    s.edges[id].Clone(),
		})
	}
	return snap
}
