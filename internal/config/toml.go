// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game     GameConfig     `toml:"game"`
	Simulate SimulateConfig `toml:"simulate"`
}

// GameConfig maps card and draw settings.
type GameConfig struct {
	Cards     *int      `toml:"cards"`
	Rows      *int      `toml:"rows"`
	Universe  *int      `toml:"universe"`
	Labels    *[]string `toml:"labels"`
	NamesFile *string   `toml:"names-file"`
	Seed      *int64    `toml:"seed"`
}

// SimulateConfig maps simulation settings.
type SimulateConfig struct {
	Runs *int `toml:"runs"`
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
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
