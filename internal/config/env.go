package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds overrides read from the environment.
type EnvConfig struct {
	LogLevel string `env:"CONTRIBPLOT_LOG_LEVEL"`
	LogFile  string `env:"CONTRIBPLOT_LOG_FILE"`
	DBPath   string `env:"CONTRIBPLOT_DB"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv reads the CONTRIBPLOT_* overrides.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := ParseEnv(&cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Apply overlays non-empty environment values onto the file config.
func (e EnvConfig) Apply(cfg *FileConfig) {
	if e.LogLevel != "" {
		level := e.LogLevel
		cfg.Log.Level = &level
	}
	if e.LogFile != "" {
		file := e.LogFile
		cfg.Log.File = &file
	}
}
