// Package config handles meshtool configuration loading and management.
package config

import (
	"fmt"
	"math"

	"github.com/Faultbox/polymesh/internal/logger"
	"github.com/Faultbox/polymesh/pkg/formats"
	"github.com/Faultbox/polymesh/pkg/meshing"
)

// Config holds all meshtool settings.
type Config struct {
	Output       OutputConfig       `yaml:"output"`
	Welding      WeldingConfig      `yaml:"welding"`
	Tessellation TessellationConfig `yaml:"tessellation"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// OutputConfig selects the shape encoding.
type OutputConfig struct {
	Format string `yaml:"format"` // text or binary
}

// WeldingConfig controls vertex deduplication.
type WeldingConfig struct {
	Tolerance float64 `yaml:"tolerance"` // 0 welds exact duplicates only
}

// TessellationConfig controls face triangulation.
type TessellationConfig struct {
	FastPath bool `yaml:"fast_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "binary",
		},
		Tessellation: TessellationConfig{
			FastPath: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that would otherwise fail deep inside meshing.
func (c *Config) Validate() error {
	if _, err := c.GeometryType(); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.Welding.Tolerance < 0 || math.IsNaN(c.Welding.Tolerance) || math.IsInf(c.Welding.Tolerance, 0) {
		return fmt.Errorf("welding.tolerance: must be a finite value >= 0, got %v", c.Welding.Tolerance)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// GeometryType returns the configured output encoding.
func (c *Config) GeometryType() (formats.GeometryType, error) {
	return formats.ParseGeometryType(c.Output.Format)
}

// MesherOptions translates the meshing settings into mesher options.
func (c *Config) MesherOptions() []meshing.Option {
	var opts []meshing.Option
	if c.Welding.Tolerance > 0 {
		opts = append(opts, meshing.WithWeldTolerance(c.Welding.Tolerance))
	}
	if !c.Tessellation.FastPath {
		opts = append(opts, meshing.WithoutFastPath())
	}
	return opts
}
