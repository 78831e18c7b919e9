// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Chart ChartConfig `toml:"chart"`
	Log   LogConfig   `toml:"log"`
}

// ChartConfig maps chart rendering defaults.
type ChartConfig struct {
	Label  *string `toml:"label"`
	Format *string `toml:"format"`
	Width  *int    `toml:"width"`
	Height *int    `toml:"height"`
	Color  *bool   `toml:"color"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if cfg.Chart.Width != nil && *cfg.Chart.Width <= 0 {
		return FileConfig{}, fmt.Errorf("chart.width must be positive")
	}
	if cfg.Chart.Height != nil && *cfg.Chart.Height <= 0 {
		return FileConfig{}, fmt.Errorf("chart.height must be positive")
	}
	return cfg, nil
}
