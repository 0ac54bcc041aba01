package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds overrides read from the environment.
type EnvConfig struct {
	ConfigPath string `env:"BINGO_CONFIG"`
	DBPath     string `env:"BINGO_DB_PATH"`
	LogPath    string `env:"BINGO_LOG_PATH"`
	LogLevel   string `env:"BINGO_LOG_LEVEL" envDefault:"info"`
}

// LoadEnv reads environment overrides, falling back to XDG defaults.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = DefaultConfigPath()
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if cfg.LogPath == "" {
		cfg.LogPath = DefaultLogPath()
	}
	return cfg, nil
}
