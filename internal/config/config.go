// Package config handles loading gjulia rendering settings from files.
//
// Settings can be specified in a YAML file named gjulia.yaml or .gjulia.yaml.
// The file is searched for in the current directory and parent directories.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the configuration file structure.
// All fields are optional and unset fields keep their default value.
type Config struct {
	// Width and Height of rendered images and viewer windows in pixels.
	Width  *int `yaml:"width,omitempty"`
	Height *int `yaml:"height,omitempty"`
	// Zoom is the natural logarithm of the visible half height of the plane.
	Zoom *float32 `yaml:"zoom,omitempty"`
	// OffsetX and OffsetY are subtracted from the scaled pixel position.
	OffsetX *float32 `yaml:"offsetX,omitempty"`
	OffsetY *float32 `yaml:"offsetY,omitempty"`
	// Iterations is the amount of times the formula is applied.
	Iterations *int `yaml:"iterations,omitempty"`
	// EscapeRadius is the modulus of z under which an iteration counts towards the progress.
	EscapeRadius *float32 `yaml:"escapeRadius,omitempty"`
	// LUT is the path to a lookup texture image. Viridis is used when empty.
	LUT *string `yaml:"lut,omitempty"`
	// Label draws the formula on rendered images.
	Label *bool `yaml:"label,omitempty"`
	// GPU enables GPU evaluation when rendering images.
	GPU *bool `yaml:"gpu,omitempty"`
}

// Settings are the resolved rendering settings.
type Settings struct {
	Width        int
	Height       int
	Zoom         float32
	OffsetX      float32
	OffsetY      float32
	Iterations   int
	EscapeRadius float32
	LUT          string
	Label        bool
	GPU          bool
}

// DefaultSettings returns the settings used when no file or flag sets them.
func DefaultSettings() Settings {
	return Settings{
		Width:        800,
		Height:       600,
		Iterations:   100,
		EscapeRadius: 3,
	}
}

// EscapeRadius2 returns the squared escape radius used by the evaluators and shaders.
func (s Settings) EscapeRadius2() float32 {
	return s.EscapeRadius * s.EscapeRadius
}

// Validate returns all problems found in the settings joined in one error.
func (s Settings) Validate() error {
	var errs []error
	if s.Width <= 0 || s.Height <= 0 {
		errs = append(errs, fmt.Errorf("dimensions must be positive, got %dx%d", s.Width, s.Height))
	}
	if s.Iterations < 1 {
		errs = append(errs, fmt.Errorf("iterations must be positive, got %d", s.Iterations))
	}
	if s.EscapeRadius <= 0 {
		errs = append(errs, fmt.Errorf("escape radius must be positive, got %g", s.EscapeRadius))
	}
	return errors.Join(errs...)
}

// Apply overwrites the fields of s that are set in c. A nil Config leaves s unchanged.
func (c *Config) Apply(s *Settings) {
	if c == nil {
		return
	}
	setIf(&s.Width, c.Width)
	setIf(&s.Height, c.Height)
	setIf(&s.Zoom, c.Zoom)
	setIf(&s.OffsetX, c.OffsetX)
	setIf(&s.OffsetY, c.OffsetY)
	setIf(&s.Iterations, c.Iterations)
	setIf(&s.EscapeRadius, c.EscapeRadius)
	setIf(&s.LUT, c.LUT)
	setIf(&s.Label, c.Label)
	setIf(&s.GPU, c.GPU)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// FileNames are the names searched for config files, in order of preference.
var FileNames = []string{
	"gjulia.yaml",
	".gjulia.yaml",
}

// Load searches for a config file starting from the given directory
// and walking up to parent directories. Returns nil if no config file is found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path. Unknown fields are an error.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err = dec.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}
