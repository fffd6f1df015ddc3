package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/orthoview/internal/app"
	"github.com/Faultbox/orthoview/internal/config"
	"github.com/Faultbox/orthoview/internal/logger"
	"github.com/Faultbox/orthoview/internal/session"
	"github.com/Faultbox/orthoview/internal/watcher"
)

var (
	simulateRealtime bool
	simulateWatch    bool
	simulateSummary  bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [scenario.yaml]",
	Short: "Play a scenario through the camera choreography",
	Long: `Run a session headlessly with a fixed frame step and print the step
transitions and the final snapshot. Without a scenario file the full lesson
is played: the four views in order, then the automated unfold.

With --watch the scenario is re-run every time it or the --config file
changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().BoolVar(&simulateRealtime, "realtime", false, "Pace frames against the wall clock")
	simulateCmd.Flags().BoolVarP(&simulateWatch, "watch", "w", false, "Re-run when the scenario file changes")
	simulateCmd.Flags().BoolVar(&simulateSummary, "summary", false, "Omit plane edges from the final snapshot")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	if !simulateWatch {
		return simulateOnce(ctx, path)
	}
	if path == "" {
		return errors.New("--watch needs a scenario file")
	}

	fw, err := watcher.NewFileWatcher(300*time.Millisecond, logger.Named("watcher"))
	if err != nil {
		return err
	}
	defer fw.Close()
	watched := []string{path}
	if cp := flags.ConfigPath(); cp != "" {
		watched = append(watched, cp)
	}
	if err := fw.Watch(watched...); err != nil {
		return err
	}
	fw.Start()

	for {
		if err := simulateOnce(ctx, path); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("simulation failed", zap.Error(err))
		}
		logger.Info("waiting for changes", zap.String("scenario", path))
		select {
		case <-ctx.Done():
			return nil
		case changed := <-fw.Changes():
			logger.Info("file changed", zap.String("file", changed))
			reloadConfig()
		}
	}
}

// reloadConfig picks up config file edits between runs. A broken file keeps
// the previous configuration.
func reloadConfig() {
	loaded, err := config.Load(flags)
	if err != nil {
		logger.Warn("keeping previous config", zap.Error(err))
		return
	}
	cfg = loaded
}

func simulateOnce(ctx context.Context, path string) error {
	sc := app.DefaultScenario()
	if path != "" {
		loaded, err := app.LoadScenario(path)
		if err != nil {
			return err
		}
		sc = loaded
	}

	s, err := app.NewSession(cfg, logger.Named("session"))
	if err != nil {
		return err
	}
	runner := app.NewRunner(s, cfg.Simulation, logger.Named("runner"))
	runner.SetRealtime(simulateRealtime)

	res, err := runner.Run(ctx, sc)
	if res != nil {
		if simulateSummary {
			res.Final.Planes = summarize(res.Final.Planes)
		}
		if werr := writeYAML(res); werr != nil {
			return werr
		}
	}
	return err
}

// summarize drops edge geometry, keeping poses and reveal flags.
func summarize(planes []session.PlaneSnapshot) []session.PlaneSnapshot {
	out := make([]session.PlaneSnapshot, len(planes))
	for i, p := range planes {
		p.Edges.Visible, p.Edges.Hidden = nil, nil
		out[i] = p
	}
	return out
}
