// Package config defines the JSON-tagged runtime configuration for the
// balancer daemon, adapted from _examples/config.go: the same
// Validate(path) ([]string, []string, error) shape and
// zero-value-defaulting convention, generalized from servo/arm tunables
// to the balancer's controller gains and port settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// PidConfig holds one axis pair's tunable PID gains.
type PidConfig struct {
	Kp              uint16 `json:"kp,omitempty"`
	Ki              uint16 `json:"ki,omitempty"`
	Kd              uint16 `json:"kd,omitempty"`
	OutputScale     uint16 `json:"output_scale,omitempty"`
	DeltaFilterSize int    `json:"delta_filter_size,omitempty"`
}

// FuzzyConfig holds the Mamdani controller's tunable scales.
type FuzzyConfig struct {
	ErrorScale    int32 `json:"error_scale,omitempty"`
	ErrorDotScale int32 `json:"error_dot_scale,omitempty"`
	OutputScale   int32 `json:"output_scale,omitempty"`
}

// HumanConfig holds the manual controller's tunable gain curve.
type HumanConfig struct {
	GainMin int `json:"gain_min,omitempty"`
	GainMax int `json:"gain_max,omitempty"`
}

// Config is the top-level balancer daemon configuration.
type Config struct {
	Port     string        `json:"port,omitempty"`
	Baudrate int           `json:"baudrate,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty"`

	Pid   PidConfig   `json:"pid,omitempty"`
	Fuzzy FuzzyConfig `json:"fuzzy,omitempty"`
	Human HumanConfig `json:"human,omitempty"`

	NnModelFile string `json:"nn_model_file,omitempty"`

	Debug bool `json:"debug,omitempty"`
}

// Default returns a Config populated with every controller's
// spec-default values, leaving Port empty for auto-discovery.
func Default() Config {
	return Config{
		Baudrate: 115200,
		Timeout:  100 * time.Millisecond,
		Pid: PidConfig{
			Kp:              600,
			Ki:              20,
			Kd:              8000,
			OutputScale:     256,
			DeltaFilterSize: 5,
		},
		Fuzzy: FuzzyConfig{
			ErrorScale:    1200,
			ErrorDotScale: 2500,
			OutputScale:   170,
		},
		Human: HumanConfig{
			GainMin: 20,
			GainMax: 75,
		},
	}
}

// Validate fills in zero-valued fields with defaults and reports
// warnings for values outside their sane operating range, matching the
// Validate(path) ([]string, []string, error) convention in
// _examples/config.go (the first slice names implicit dependencies,
// unused here; the second names optional dependencies, also unused).
func (c *Config) Validate(path string) ([]string, []string, error) {
	defaults := Default()

	if c.Baudrate == 0 {
		c.Baudrate = defaults.Baudrate
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}

	if c.Pid.Kp == 0 && c.Pid.Ki == 0 && c.Pid.Kd == 0 {
		c.Pid = defaults.Pid
	}
	if c.Pid.OutputScale == 0 {
		c.Pid.OutputScale = defaults.Pid.OutputScale
	}
	if c.Pid.DeltaFilterSize == 0 {
		c.Pid.DeltaFilterSize = defaults.Pid.DeltaFilterSize
	}

	if c.Fuzzy.ErrorScale == 0 {
		c.Fuzzy.ErrorScale = defaults.Fuzzy.ErrorScale
	}
	if c.Fuzzy.ErrorDotScale == 0 {
		c.Fuzzy.ErrorDotScale = defaults.Fuzzy.ErrorDotScale
	}
	if c.Fuzzy.OutputScale == 0 {
		c.Fuzzy.OutputScale = defaults.Fuzzy.OutputScale
	}

	if c.Human.GainMin == 0 {
		c.Human.GainMin = defaults.Human.GainMin
	}
	if c.Human.GainMax == 0 {
		c.Human.GainMax = defaults.Human.GainMax
	}

	if c.Human.GainMin > c.Human.GainMax {
		return nil, nil, fmt.Errorf("config at %s: human gain_min (%d) exceeds gain_max (%d)", path, c.Human.GainMin, c.Human.GainMax)
	}

	if c.Pid.DeltaFilterSize < 1 || c.Pid.DeltaFilterSize > 10 {
		return nil, nil, fmt.Errorf("config at %s: pid delta_filter_size (%d) must be in [1, 10]", path, c.Pid.DeltaFilterSize)
	}

	return nil, nil, nil
}

// Load reads and validates a Config from a JSON file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	if _, _, err := cfg.Validate(path); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
