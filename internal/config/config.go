// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package config provides the viewer configuration: defaults, an optional
// YAML file and an environment overlay, which the command line flags then
// override.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Application configuration as stored in YAML
type Config struct {
	Server struct {
		// Addr is the listen address of the HTTP API
		Addr string `yaml:"addr"`

		// Release switches gin to release mode
		Release bool `yaml:"release"`
	} `yaml:"server"`

	Display struct {
		// Parameter is the initially displayed field: d, strain or lambda
		Parameter string `yaml:"parameter"`

		// Colormap is viridis or jet
		Colormap string `yaml:"colormap"`

		// Interpolation names one of the interpolation kernels
		Interpolation string `yaml:"interpolation"`

		// Mode is interpolated or full
		Mode string `yaml:"mode"`
	} `yaml:"display"`

	Resources struct {
		// MemoryFraction bounds the working set of a session as a fraction of physical memory, 0 for no limit
		MemoryFraction float64 `yaml:"memoryFraction"`
	} `yaml:"resources"`

	Output struct {
		// Log is an optional file receiving a copy of the log
		Log string `yaml:"log"`

		// JPEGQuality for radiograph previews
		JPEGQuality int `yaml:"jpegQuality"`
	} `yaml:"output"`
}

// Returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Display.Parameter = "lambda"
	cfg.Display.Colormap = "viridis"
	cfg.Display.Interpolation = "none"
	cfg.Display.Mode = "interpolated"
	cfg.Resources.MemoryFraction = 0.7
	cfg.Output.JPEGQuality = 95
	return cfg
}

// Loads configuration from a YAML file on top of the defaults.
// A missing file yields the defaults
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// Saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Overlays STRAINVIEW_* environment variables, after loading a .env file
// from the working directory if there is one
func (cfg *Config) ApplyEnv() error {
	_ = godotenv.Load()

	if v := os.Getenv("STRAINVIEW_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("STRAINVIEW_RELEASE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STRAINVIEW_RELEASE: %w", err)
		}
		cfg.Server.Release = b
	}
	if v := os.Getenv("STRAINVIEW_MEMORY_FRACTION"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("STRAINVIEW_MEMORY_FRACTION: %w", err)
		}
		cfg.Resources.MemoryFraction = f
	}
	if v := os.Getenv("STRAINVIEW_LOG"); v != "" {
		cfg.Output.Log = v
	}
	return nil
}
