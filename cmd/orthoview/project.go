package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/orthoview/internal/logger"
	"github.com/Faultbox/orthoview/internal/plane"
	"github.com/Faultbox/orthoview/internal/projection"
	"github.com/Faultbox/orthoview/pkg/math"
	"github.com/Faultbox/orthoview/pkg/mesh"
)

var (
	projectViews   []string
	projectSummary bool
	projectWorld   bool
	projectUnfold  float32
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Compute visible and hidden edges of the configured shape",
	Long: `Project the configured shape onto one or more views and print the
visible and hidden edge segments in plane coordinates. With --world the
segments are mapped onto the projection planes at the given unfold progress.`,
	Args: cobra.NoArgs,
	RunE: runProject,
}

func init() {
	rootCmd.AddCommand(projectCmd)

	projectCmd.Flags().StringSliceVarP(&projectViews, "view", "v", []string{"front", "top", "side", "leftSide"}, "Views to project")
	projectCmd.Flags().BoolVar(&projectSummary, "summary", false, "Print edge counts only")
	projectCmd.Flags().BoolVar(&projectWorld, "world", false, "Map segments onto the projection planes in world space")
	projectCmd.Flags().Float32Var(&projectUnfold, "unfold", 0, "Unfold progress used with --world (0 closed, 1 flat)")
}

type worldSegment struct {
	A math.Vec3 `yaml:"a"`
	B math.Vec3 `yaml:"b"`
}

type viewOutput struct {
	View    plane.ID `yaml:"view"`
	Visible int      `yaml:"visible_count"`
	Hidden  int      `yaml:"hidden_count"`

	Edges *projection.Result `yaml:"edges,omitempty"`

	WorldVisible []worldSegment `yaml:"world_visible,omitempty"`
	WorldHidden  []worldSegment `yaml:"world_hidden,omitempty"`
}

type projectOutput struct {
	Shape      mesh.Shape           `yaml:"shape"`
	Projection plane.ProjectionType `yaml:"projection"`
	Placement  math.Vec3            `yaml:"placement"`
	Features   int                  `yaml:"feature_edges"`
	Views      []viewOutput         `yaml:"views"`
}

func runProject(cmd *cobra.Command, args []string) error {
	shape, err := cfg.Shape()
	if err != nil {
		return err
	}
	pt, err := cfg.ProjectionType()
	if err != nil {
		return err
	}
	ids := make([]plane.ID, 0, len(projectViews))
	for _, v := range projectViews {
		id, err := plane.ParseID(v)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	m, err := mesh.Build(shape)
	if err != nil {
		return err
	}
	engine := projection.NewEngine(cfg.Projection, logger.Named("projection"))
	features, err := engine.Features(m)
	if err != nil {
		return fmt.Errorf("extracting edges of %s: %w", shape, err)
	}

	registry := plane.NewRegistry(pt, cfg.Layout.PlaneDistance)
	solid := projection.Solid{Mesh: m, Placement: registry.Placement()}

	out := projectOutput{
		Shape:      shape,
		Projection: pt,
		Placement:  solid.Placement,
		Features:   len(features.Edges),
	}
	for _, id := range ids {
		res := engine.Project(solid, id.Axis())
		logger.Debug("projected",
			zap.Stringer("view", id),
			zap.Int("visible", len(res.Visible)),
			zap.Int("hidden", len(res.Hidden)))

		vo := viewOutput{View: id, Visible: len(res.Visible), Hidden: len(res.Hidden)}
		switch {
		case projectSummary:
		case projectWorld:
			pose := registry.Pose(id, projectUnfold)
			vo.WorldVisible = toWorld(pose, res.Visible)
			vo.WorldHidden = toWorld(pose, res.Hidden)
		default:
			vo.Edges = &res
		}
		out.Views = append(out.Views, vo)
	}

	return writeYAML(out)
}

func toWorld(pose plane.Pose, segs []projection.Segment) []worldSegment {
	out := make([]worldSegment, len(segs))
	for i, s := range segs {
		out[i] = worldSegment{A: pose.Apply(s.A), B: pose.Apply(s.B)}
	}
	return out
}

// writeYAML prints v to stdout.
func writeYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return enc.Close()
}
