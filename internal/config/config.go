// Package config handles orthoview configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/orthoview/internal/choreo"
	"github.com/Faultbox/orthoview/internal/engine/camera"
	"github.com/Faultbox/orthoview/internal/plane"
	"github.com/Faultbox/orthoview/internal/projection"
	"github.com/Faultbox/orthoview/pkg/mesh"
)

// Config holds all settings.
type Config struct {
	Session      SessionConfig      `yaml:"session"`
	Choreography ChoreographyConfig `yaml:"choreography"`
	Projection   projection.Options `yaml:"projection"`
	Layout       LayoutConfig       `yaml:"layout"`
	Simulation   SimulationConfig   `yaml:"simulation"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// SessionConfig selects what is shown when a session starts.
type SessionConfig struct {
	Shape      string `yaml:"shape"`      // cube, cylinder, cone, compound
	Projection string `yaml:"projection"` // first-angle or third-angle
}

// ChoreographyConfig holds camera timing and the fixed camera poses.
type ChoreographyConfig struct {
	Timing         choreo.Timing `yaml:",inline"`
	CameraDistance float32       `yaml:"camera_distance"`
	Home           camera.Pose   `yaml:"home"`
	Flat           camera.Pose   `yaml:"flat"`
}

// LayoutConfig holds plane geometry.
type LayoutConfig struct {
	PlaneDistance float32 `yaml:"plane_distance"`
}

// SimulationConfig holds settings of the headless frame loop.
type SimulationConfig struct {
	FPS         int           `yaml:"fps"`
	MaxDuration time.Duration `yaml:"max_duration"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	rig := camera.DefaultRig()
	return &Config{
		Session: SessionConfig{
			Shape:      string(mesh.ShapeCube),
			Projection: plane.FirstAngle.String(),
		},
		Choreography: ChoreographyConfig{
			Timing:         choreo.DefaultTiming(),
			CameraDistance: rig.Distance,
			Home:           rig.Home,
			Flat:           rig.Flat,
		},
		Projection: projection.DefaultOptions(),
		Layout: LayoutConfig{
			PlaneDistance: plane.DefaultDistance,
		},
		Simulation: SimulationConfig{
			FPS:         60,
			MaxDuration: 2 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Rig returns the camera rig described by the choreography section.
func (c *Config) Rig() camera.Rig {
	return camera.Rig{
		Home:     c.Choreography.Home,
		Flat:     c.Choreography.Flat,
		Distance: c.Choreography.CameraDistance,
	}
}

// Shape parses the configured shape.
func (c *Config) Shape() (mesh.Shape, error) {
	return mesh.ParseShape(c.Session.Shape)
}

// ProjectionType parses the configured projection type.
func (c *Config) ProjectionType() (plane.ProjectionType, error) {
	return plane.ParseProjectionType(c.Session.Projection)
}

// Validate checks values that would otherwise fail later.
func (c *Config) Validate() error {
	if _, err := c.Shape(); err != nil {
		return fmt.Errorf("session.shape: %w", err)
	}
	if _, err := c.ProjectionType(); err != nil {
		return fmt.Errorf("session.projection: %w", err)
	}
	if c.Simulation.FPS <= 0 {
		return fmt.Errorf("simulation.fps must be positive, got %d", c.Simulation.FPS)
	}
	if c.Choreography.CameraDistance <= 0 {
		return fmt.Errorf("choreography.camera_distance must be positive, got %v", c.Choreography.CameraDistance)
	}
	if c.Projection.FeatureAngle <= 0 || c.Projection.FeatureAngle >= 180 {
		return fmt.Errorf("projection.feature_angle must be in (0, 180), got %v", c.Projection.FeatureAngle)
	}
	return nil
}
