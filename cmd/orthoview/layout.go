package main

import (
	"github.com/spf13/cobra"

	"github.com/Faultbox/orthoview/internal/plane"
	"github.com/Faultbox/orthoview/pkg/math"
)

var layoutProgress float32

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print projection plane poses at an unfold progress",
	Args:  cobra.NoArgs,
	RunE:  runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().Float32Var(&layoutProgress, "progress", 0, "Unfold progress (0 closed, 1 flat)")
}

type planeOutput struct {
	Pose   plane.Pose `yaml:",inline"`
	Origin math.Vec3  `yaml:"origin"`
	Normal math.Vec3  `yaml:"normal"`
}

type layoutOutput struct {
	Projection plane.ProjectionType `yaml:"projection"`
	Placement  math.Vec3            `yaml:"placement"`
	Progress   float32              `yaml:"progress"`
	Planes     []planeOutput        `yaml:"planes"`
}

func runLayout(cmd *cobra.Command, args []string) error {
	pt, err := cfg.ProjectionType()
	if err != nil {
		return err
	}
	registry := plane.NewRegistry(pt, cfg.Layout.PlaneDistance)

	out := layoutOutput{
		Projection: pt,
		Placement:  registry.Placement(),
		Progress:   layoutProgress,
	}
	for _, pose := range registry.Layout(layoutProgress) {
		out.Planes = append(out.Planes, planeOutput{
			Pose:   pose,
			Origin: pose.Origin(),
			Normal: pose.Normal(),
		})
	}
	return writeYAML(out)
}
