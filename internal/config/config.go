// Package config handles generator configuration loading and management.
package config

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/rtshader/internal/lighting"
	"github.com/Faultbox/rtshader/internal/program"
	"github.com/Faultbox/rtshader/pkg/light"
)

// Config holds all generator settings.
type Config struct {
	Shader  ShaderConfig  `yaml:"shader"`
	Lights  LightsConfig  `yaml:"lights"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`

	path string
}

// Path returns the file the config was loaded from, or "" for defaults only.
func (c *Config) Path() string {
	return c.path
}

// ShaderConfig holds program generation settings.
type ShaderConfig struct {
	LightingModel string `yaml:"lighting_model"` // ffp or per_pixel
	MaxUniforms   int    `yaml:"max_uniforms"`
	MaxInputs     int    `yaml:"max_inputs"`
	MaxOutputs    int    `yaml:"max_outputs"`
	MaxLocals     int    `yaml:"max_locals"`
}

// LightsConfig holds the light counts passes are compiled against.
type LightsConfig struct {
	Point       int `yaml:"point"`
	Directional int `yaml:"directional"`
	Spot        int `yaml:"spot"`
}

// WatchConfig holds settings for recompiling materials on change.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	limits := program.DefaultLimits()
	return &Config{
		Shader: ShaderConfig{
			LightingModel: string(lighting.ModelFFP),
			MaxUniforms:   limits.Uniforms,
			MaxInputs:     limits.Inputs,
			MaxOutputs:    limits.Outputs,
			MaxLocals:     limits.Locals,
		},
		Lights: LightsConfig{
			Point:       2,
			Directional: 1,
			Spot:        0,
		},
		Watch: WatchConfig{
			DebounceMS: 100,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Limits returns the program limits.
func (c *Config) Limits() program.Limits {
	return program.Limits{
		Uniforms: c.Shader.MaxUniforms,
		Inputs:   c.Shader.MaxInputs,
		Outputs:  c.Shader.MaxOutputs,
		Locals:   c.Shader.MaxLocals,
	}
}

// LightCount returns the configured light counts indexed by light type.
func (c *Config) LightCount() light.Counts {
	var counts light.Counts
	counts[light.Point] = c.Lights.Point
	counts[light.Directional] = c.Lights.Directional
	counts[light.Spot] = c.Lights.Spot
	return counts
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var err error
	if _, e := lighting.ParseModel(c.Shader.LightingModel); e != nil {
		err = multierr.Append(err, fmt.Errorf("shader.lighting_model: %w", e))
	}
	nonNegative := []struct {
		name  string
		value int
	}{
		{"shader.max_uniforms", c.Shader.MaxUniforms},
		{"shader.max_inputs", c.Shader.MaxInputs},
		{"shader.max_outputs", c.Shader.MaxOutputs},
		{"shader.max_locals", c.Shader.MaxLocals},
		{"lights.point", c.Lights.Point},
		{"lights.directional", c.Lights.Directional},
		{"lights.spot", c.Lights.Spot},
		{"watch.debounce_ms", c.Watch.DebounceMS},
	}
	for _, v := range nonNegative {
		if v.value < 0 {
			err = multierr.Append(err, fmt.Errorf("%s: must not be negative, got %d", v.name, v.value))
		}
	}
	return err
}
