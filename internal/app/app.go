// Package app runs orthoview sessions headlessly with a fixed frame step.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/orthoview/internal/choreo"
	"github.com/Faultbox/orthoview/internal/config"
	"github.com/Faultbox/orthoview/internal/session"
)

// ErrTimeout is returned when a run hits its maximum duration before the
// scenario settles.
var ErrTimeout = errors.New("simulation exceeded max duration")

// SessionConfig converts loaded configuration into a session configuration.
func SessionConfig(cfg *config.Config) (session.Config, error) {
	shape, err := cfg.Shape()
	if err != nil {
		return session.Config{}, err
	}
	pt, err := cfg.ProjectionType()
	if err != nil {
		return session.Config{}, err
	}
	return session.Config{
		Shape:         shape,
		Projection:    pt,
		Timing:        cfg.Choreography.Timing,
		Rig:           cfg.Rig(),
		Options:       cfg.Projection,
		PlaneDistance: cfg.Layout.PlaneDistance,
	}, nil
}

// NewSession builds a session from loaded configuration.
func NewSession(cfg *config.Config, log *zap.Logger) (*session.Session, error) {
	scfg, err := SessionConfig(cfg)
	if err != nil {
		return nil, err
	}
	return session.New(scfg, log)
}

// Transition records one change of choreography step.
type Transition struct {
	At   float64     `yaml:"at"`
	From choreo.Step `yaml:"from"`
	To   choreo.Step `yaml:"to"`
	View string      `yaml:"view,omitempty"`
}

// Result summarizes a finished run.
type Result struct {
	Scenario    string           `yaml:"scenario"`
	Frames      uint64           `yaml:"frames"`
	Elapsed     float64          `yaml:"elapsed"`
	Transitions []Transition     `yaml:"transitions"`
	Final       session.Snapshot `yaml:"final"`
}

// Runner drives a session frame by frame.
type Runner struct {
	session     *session.Session
	fps         int
	maxDuration time.Duration
	realtime    bool
	log         *zap.Logger
}

// NewRunner creates a runner. Non-positive fps falls back to 60.
func NewRunner(s *session.Session, sim config.SimulationConfig, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	fps := sim.FPS
	if fps <= 0 {
		fps = 60
	}
	return &Runner{
		session:     s,
		fps:         fps,
		maxDuration: sim.MaxDuration,
		log:         log,
	}
}

// SetRealtime paces frames against the wall clock instead of running as
// fast as possible. The simulated step stays fixed.
func (r *Runner) SetRealtime(on bool) {
	r.realtime = on
}

// Run plays the scenario until every step has been submitted, the scenario
// duration has passed and the choreography has settled. It stops early when
// ctx is done or the maximum duration is reached.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	if sc == nil {
		sc = &Scenario{}
	}
	dt := 1.0 / float64(r.fps)
	frameDur := time.Second / time.Duration(r.fps)

	var ticker *time.Ticker
	if r.realtime {
		ticker = time.NewTicker(frameDur)
		defer ticker.Stop()
	}

	res := &Result{Scenario: sc.Name}
	snap := r.session.Snapshot()
	base := snap.Elapsed
	next := 0
	var simTime time.Duration
	var lastLog time.Duration
	startTime := time.Now()

	r.log.Info("simulation started",
		zap.String("scenario", sc.Name),
		zap.Int("steps", len(sc.Steps)),
		zap.Int("fps", r.fps))

	for {
		if err := ctx.Err(); err != nil {
			res.Final = snap
			return res, err
		}
		if next == len(sc.Steps) && simTime >= sc.Duration && settled(snap) && snap.Frame > 0 {
			break
		}
		if r.maxDuration > 0 && simTime >= r.maxDuration {
			res.Final = snap
			return res, fmt.Errorf("%w (%v)", ErrTimeout, r.maxDuration)
		}

		next = r.submit(sc.Steps, next, simTime, snap)

		prev := snap
		snap = r.session.Tick(dt)
		simTime = seconds(snap.Elapsed - base)
		if snap.Step != prev.Step {
			res.Transitions = append(res.Transitions, Transition{
				At:   snap.Elapsed,
				From: prev.Step,
				To:   snap.Step,
				View: snap.View,
			})
		}

		if simTime-lastLog >= time.Second {
			r.log.Debug("progress",
				zap.Duration("sim", simTime),
				zap.Uint64("frame", snap.Frame),
				zap.Stringer("step", snap.Step),
				zap.Float64("unfold", snap.Unfold))
			lastLog = simTime
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
			case <-ticker.C:
			}
		}
	}

	res.Frames = snap.Frame
	res.Elapsed = snap.Elapsed
	res.Final = snap
	r.log.Info("simulation finished",
		zap.String("scenario", sc.Name),
		zap.Uint64("frames", res.Frames),
		zap.Float64("elapsed", res.Elapsed),
		zap.Duration("wall", time.Since(startTime)))
	return res, nil
}

// submit queues every ready step starting at next and returns the index of
// the first step still pending. A step that waits on the choreography needs
// a snapshot taken after the previous submission, so it ends the batch.
func (r *Runner) submit(steps []Step, next int, t time.Duration, snap session.Snapshot) int {
	submitted := false
	for next < len(steps) {
		st := steps[next]
		if st.WaitFor != "" && submitted {
			break
		}
		if !st.ready(t, snap) {
			break
		}
		in, err := st.ToIntent()
		if err != nil {
			// Validated scenarios never get here.
			r.log.Warn("skipping step", zap.Int("step", next+1), zap.Error(err))
			next++
			continue
		}
		r.log.Debug("submit", zap.Duration("at", t), zap.Stringer("intent", in))
		r.session.Submit(in)
		submitted = true
		next++
	}
	return next
}

// seconds converts simulated seconds to a Duration, rounding away the error
// accumulated by summing frame steps.
func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// settled reports whether the choreography waits for input. The unfold lock
// counts as settled since only an intent can release it.
func settled(s session.Snapshot) bool {
	if s.Animating {
		return false
	}
	return s.Step == choreo.StepIdle || s.Step == choreo.StepUnfoldLocked
}
