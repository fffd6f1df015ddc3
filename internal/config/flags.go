package config

import "github.com/spf13/pflag"

// Flags holds command-line overrides. Zero values mean "not set".
type Flags struct {
	Config     string
	Debug      bool
	Shape      string
	Projection string
	FPS        int
	LogFile    string
}

// BindFlags registers the configuration flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVarP(&f.Shape, "shape", "s", "", "Shape: cube, cylinder, cone, compound")
	fs.StringVarP(&f.Projection, "projection", "p", "", "Projection type: first-angle or third-angle")
	fs.IntVar(&f.FPS, "fps", 0, "Simulation frames per second")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file")
	return f
}

// ConfigPath returns the explicit config path if provided via --config flag.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.Config
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Shape != "" {
		cfg.Session.Shape = f.Shape
	}
	if f.Projection != "" {
		cfg.Session.Projection = f.Projection
	}
	if f.FPS > 0 {
		cfg.Simulation.FPS = f.FPS
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
