package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrExists is returned by WriteNew when the target file already exists.
var ErrExists = errors.New("config file already exists")

// UserPath is the config file in the user's config directory.
func UserPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Marshal encodes the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// Save writes the config to UserPath.
func (c *Config) Save() error {
	return c.SaveTo(UserPath())
}

// SaveTo writes the config to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// WriteNew is SaveTo that refuses to replace an existing file.
func (c *Config) WriteNew(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return c.SaveTo(path)
}
