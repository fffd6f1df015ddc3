// Package projection classifies the feature edges of a solid as visible or
// hidden when viewed along a principal axis, and flattens them to 2D.
package projection

import (
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/orthoview/internal/engine/picking"
	"github.com/Faultbox/orthoview/pkg/math"
	"github.com/Faultbox/orthoview/pkg/mesh"
)

// zeroLength is the projected length below which an edge is drawn as a point
// and always counts as visible.
const zeroLength = 1e-6

// Solid is a mesh with a translation-only world placement.
type Solid struct {
	Mesh      *mesh.Mesh
	Placement math.Vec3
}

// Options tunes the visibility test.
type Options struct {
	// FeatureAngle is the dihedral threshold in degrees.
	FeatureAngle float32 `yaml:"feature_angle"`
	// Tolerance is how far in front of the midpoint a hit must be to hide an edge.
	Tolerance float32 `yaml:"occlusion_tolerance"`
	// GrazeOffset moves the sample point toward the solid's center in the
	// drawing plane so rays do not run along silhouette faces.
	GrazeOffset float32 `yaml:"graze_offset"`
}

// DefaultOptions returns a 15 degree feature angle and a 0.1 tolerance.
func DefaultOptions() Options {
	return Options{
		FeatureAngle: mesh.DefaultFeatureAngle,
		Tolerance:    0.1,
		GrazeOffset:  1e-3,
	}
}

// Segment is a projected edge in plane-local coordinates.
type Segment struct {
	A math.Vec2 `yaml:"a"`
	B math.Vec2 `yaml:"b"`
}

// Length returns the segment length.
func (s Segment) Length() float32 {
	return s.A.Distance(s.B)
}

// Result holds the two line sets of one view.
type Result struct {
	Visible []Segment `yaml:"visible"`
	Hidden  []Segment `yaml:"hidden"`
}

// Len returns the total number of segments.
func (r Result) Len() int {
	return len(r.Visible) + len(r.Hidden)
}

// Clone returns a copy that shares no memory with r.
func (r Result) Clone() Result {
	return Result{Visible: slices.Clone(r.Visible), Hidden: slices.Clone(r.Hidden)}
}

// Empty reports whether there is nothing to draw.
func (r Result) Empty() bool {
	return r.Len() == 0
}

type cacheEntry struct {
	features *mesh.Features
	err      error
}

// Engine projects solids and caches feature edges per mesh. It is not safe
// for concurrent use.
type Engine struct {
	opts  Options
	log   *zap.Logger
	cache map[*mesh.Mesh]cacheEntry
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		opts:  opts,
		log:   log,
		cache: make(map[*mesh.Mesh]cacheEntry),
	}
}

// Options returns the engine options.
func (e *Engine) Options() Options {
	return e.opts
}

// Features returns the cached feature edges of m, extracting them on first use.
func (e *Engine) Features(m *mesh.Mesh) (*mesh.Features, error) {
	if entry, ok := e.cache[m]; ok {
		return entry.features, entry.err
	}
	f, err := m.FeatureEdges(e.opts.FeatureAngle)
	if err != nil {
		e.log.Warn("mesh rejected, projecting nothing",
			zap.String("mesh", m.Name),
			zap.Error(err))
	} else {
		e.log.Debug("feature edges extracted",
			zap.String("mesh", m.Name),
			zap.Int("edges", len(f.Edges)),
			zap.Int("boundary", f.Boundary),
			zap.Int("triangles", f.Triangles))
	}
	e.cache[m] = cacheEntry{features: f, err: err}
	return f, err
}

// Forget drops the cached features of m.
func (e *Engine) Forget(m *mesh.Mesh) {
	delete(e.cache, m)
}

// Project returns the visible and hidden edges of solid seen along axis.
// Degenerate or non-manifold meshes yield an empty result.
func (e *Engine) Project(solid Solid, axis Axis) Result {
	if solid.Mesh == nil {
		return Result{}
	}
	f, err := e.Features(solid.Mesh)
	if err != nil {
		return Result{}
	}
	return classify(solid, f.Edges, axis, e.opts)
}

// Project is the uncached form of Engine.Project.
func Project(solid Solid, axis Axis, opts Options) Result {
	return NewEngine(opts, nil).Project(solid, axis)
}

func classify(solid Solid, edges []mesh.Edge, axis Axis, opts Options) Result {
	var res Result

	bounds := solid.Mesh.Bounds().Translate(solid.Placement)
	center := bounds.Center()
	// Any start point this far behind a sample lies outside the bounding box.
	reach := bounds.Size().Length() + 1
	dir := axis.Direction.Normalize()

	for _, edge := range edges {
		a := edge.A.Add(solid.Placement)
		b := edge.B.Add(solid.Placement)
		seg := Segment{
			A: axis.Flatten(a, solid.Placement),
			B: axis.Flatten(b, solid.Placement),
		}

		if seg.Length() < zeroLength {
			res.Visible = append(res.Visible, seg)
			continue
		}

		sample := nudge(a.Midpoint(b), center, dir, opts.GrazeOffset)
		ray := picking.Ray{Origin: sample.Sub(dir.Scale(reach)), Direction: dir}
		t, hit := ray.IntersectMesh(solid.Mesh, solid.Placement)
		if hit && t < reach-opts.Tolerance {
			res.Hidden = append(res.Hidden, seg)
		} else {
			res.Visible = append(res.Visible, seg)
		}
	}
	return res
}

// nudge moves p by amount toward center along each axis perpendicular to dir.
func nudge(p, center, dir math.Vec3, amount float32) math.Vec3 {
	if amount == 0 {
		return p
	}
	d := center.Sub(p)
	d = d.Sub(dir.Scale(d.Dot(dir)))
	return p.Add(math.Vec3{
		X: sign(d.X) * amount,
		Y: sign(d.Y) * amount,
		Z: sign(d.Z) * amount,
	})
}

func sign(v float32) float32 {
	switch {
	case v > 1e-6:
		return 1
	case v < -1e-6:
		return -1
	}
	return 0
}
