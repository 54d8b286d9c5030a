// Package config holds batch-run configuration loaded from an optional
// TOML file with command-line overrides applied on top.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/socialfx/fxrender/effects"
)

// maxAutoWaveSize caps the wave size chosen by "auto" so a large host
// does not oversubscribe memory with concurrent decodes.
const maxAutoWaveSize = 8

// Config describes one batch render run.
type Config struct {
	Sources    []string `toml:"sources"`
	PresetDir  string   `toml:"preset_dir"`
	OutputDir  string   `toml:"output_dir"`
	FxType     string   `toml:"fx_type"`
	WaveSize   string   `toml:"wave_size"` // "auto" or an integer >= 1
	RangeScale float64  `toml:"range_scale"`
	TargetRate int      `toml:"target_rate"` // 0 keeps each source's rate
	TimeoutMin int      `toml:"timeout_minutes"`
	LogLevel   string   `toml:"log_level"`
	ReportPath string   `toml:"report_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		FxType:     effects.TypeEQ,
		WaveSize:   "auto",
		RangeScale: 1,
		TimeoutMin: 30,
		LogLevel:   "info",
	}
}

// Load reads a TOML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for a runnable batch.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("config: no sources")
	}
	if strings.TrimSpace(c.PresetDir) == "" {
		return fmt.Errorf("config: preset_dir is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("config: output_dir is required")
	}
	if _, err := effects.ParamCount(c.FxType); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := ParseWaveSize(c.WaveSize); err != nil {
		return fmt.Errorf("config: wave_size: %w", err)
	}
	if c.TimeoutMin < 1 {
		return fmt.Errorf("config: timeout_minutes %d (must be >= 1)", c.TimeoutMin)
	}
	if c.TargetRate < 0 {
		return fmt.Errorf("config: target_rate %d (must be >= 0)", c.TargetRate)
	}
	return nil
}

// EffectiveWaveSize resolves the configured wave size, mapping "auto" to
// the host CPU count capped at maxAutoWaveSize.
func (c *Config) EffectiveWaveSize() (int, error) {
	n, err := ParseWaveSize(c.WaveSize)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		n = runtime.NumCPU()
		if n > maxAutoWaveSize {
			n = maxAutoWaveSize
		}
		if n < 1 {
			n = 1
		}
	}
	return n, nil
}

// ParseWaveSize parses a wave-size value: "auto" yields 0 (resolve at
// runtime), otherwise an integer >= 1.
func ParseWaveSize(raw string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return 0, fmt.Errorf("empty value (use integer >= 1 or 'auto')")
	}
	if v == "auto" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q (use integer >= 1 or 'auto')", raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%d (must be >= 1 or 'auto')", n)
	}
	return n, nil
}
