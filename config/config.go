// Package config loads reader and CLI settings from a YAML file.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/obinnaokechukwu/vidreader"
	"github.com/obinnaokechukwu/vidreader/engine"
)

// Config represents the full configuration for vidreader.
type Config struct {
	// Reader
	FallbackFPS     float64 `yaml:"fallback_fps"`
	EndOffsetFrames int     `yaml:"end_offset_frames"`
	ScaleAlgorithm  string  `yaml:"scale_algorithm"`
	Audio           bool    `yaml:"audio"`

	// Logging
	LogLevel       string `yaml:"log_level"`
	EngineLogLevel string `yaml:"engine_log_level"`

	// CLI
	Frames FramesConfig `yaml:"frames"`
}

// FramesConfig holds defaults for the frames command.
type FramesConfig struct {
	OutputDir string `yaml:"output_dir"`
	Format    string `yaml:"format"`
	Every     int    `yaml:"every"`
	Limit     int    `yaml:"limit"`
	Workers   int    `yaml:"workers"`
}

var scaleAlgorithms = map[string]engine.ScaleAlgorithm{
	"fast_bilinear": engine.ScaleFastBilinear,
	"bilinear":      engine.ScaleBilinear,
	"bicubic":       engine.ScaleBicubic,
	"point":         engine.ScalePoint,
	"area":          engine.ScaleArea,
	"lanczos":       engine.ScaleLanczos,
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		FallbackFPS:     vidreader.DefaultFallbackFPS,
		EndOffsetFrames: vidreader.DefaultEndOffsetFrames,
		ScaleAlgorithm:  "bilinear",
		Audio:           true,

		LogLevel: "info",

		Frames: FramesConfig{
			OutputDir: "frames",
			Format:    "png",
			Every:     1,
			Workers:   4,
		},
	}
}

// LoadFromFile loads configuration from a YAML file. Keys missing from
// the file keep their defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks every value.
func (c Config) Validate() error {
	if c.FallbackFPS <= 0 {
		return fmt.Errorf("config: fallback_fps must be positive, got %v", c.FallbackFPS)
	}
	if c.EndOffsetFrames < 0 {
		return fmt.Errorf("config: end_offset_frames must not be negative, got %d", c.EndOffsetFrames)
	}
	if _, err := ParseScaleAlgorithm(c.ScaleAlgorithm); err != nil {
		return err
	}
	if _, err := vidreader.ParseSlogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	if c.EngineLogLevel != "" {
		if _, err := vidreader.ParseLogLevel(c.EngineLogLevel); err != nil {
			return fmt.Errorf("config: engine_log_level: %w", err)
		}
	}

	switch c.Frames.Format {
	case "png", "bmp", "jpeg", "jpg":
	default:
		return fmt.Errorf("config: frames.format %q is not one of png, bmp, jpeg", c.Frames.Format)
	}
	if c.Frames.Every < 1 {
		return fmt.Errorf("config: frames.every must be at least 1, got %d", c.Frames.Every)
	}
	if c.Frames.Limit < 0 {
		return fmt.Errorf("config: frames.limit must not be negative, got %d", c.Frames.Limit)
	}
	if c.Frames.Workers < 1 {
		return fmt.Errorf("config: frames.workers must be at least 1, got %d", c.Frames.Workers)
	}
	return nil
}

// ParseScaleAlgorithm maps a scale_algorithm name to its engine value. The
// empty name selects the reader default.
func ParseScaleAlgorithm(name string) (engine.ScaleAlgorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return vidreader.DefaultScaleAlgorithm, nil
	}
	alg, ok := scaleAlgorithms[name]
	if !ok {
		return 0, fmt.Errorf("config: unknown scale_algorithm %q", name)
	}
	return alg, nil
}

// Options converts c to reader options.
func (c Config) Options() ([]vidreader.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	alg, _ := ParseScaleAlgorithm(c.ScaleAlgorithm)

	opts := []vidreader.Option{
		vidreader.WithFallbackFPS(c.FallbackFPS),
		vidreader.WithEndOffsetFrames(c.EndOffsetFrames),
		vidreader.WithScaleAlgorithm(alg),
		vidreader.WithAudio(c.Audio),
	}
	if c.EngineLogLevel != "" {
		l, _ := vidreader.ParseLogLevel(c.EngineLogLevel)
		opts = append(opts, vidreader.WithEngineLogLevel(l))
	}
	return opts, nil
}
