// Package main is the orthoview command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/orthoview/internal/config"
	"github.com/Faultbox/orthoview/internal/logger"
	"github.com/Faultbox/orthoview/internal/version"
)

var (
	flags *config.Flags
	cfg   *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "orthoview",
	Short: "Orthographic projection teaching tool",
	Long: `orthoview builds the standard orthographic views of simple solids,
classifies their edges as visible or hidden, and plays the camera
choreography that reveals each view and unfolds the projection planes.

Results are written to stdout as YAML; logs go to stderr.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	flags = config.BindFlags(rootCmd.PersistentFlags())
	rootCmd.Version = version.Full()
}

// setup loads configuration and initializes logging for every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(flags)
	if err != nil {
		return err
	}
	cfg = loaded

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.FileConfig{
			Path:       cfg.Logging.LogFile,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		}
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("config: %+v", cfg)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
