package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// A RunConfig describes one coupled demo run. The first participant listed
// plays the first (serial) or controller (multi) role.
type RunConfig struct {
	Participants []string `yaml:"participants"`

	Mode           string  `yaml:"mode"`
	TimeWindowSize float64 `yaml:"timeWindowSize"`
	MaxTime        float64 `yaml:"maxTime"`
	MaxTimeWindows int     `yaml:"maxTimeWindows"`
	MaxIterations  int     `yaml:"maxIterations"`
	ValidDigits    int     `yaml:"validDigits"`

	ExtrapolationDegree int     `yaml:"extrapolationDegree"`
	Relaxation          float64 `yaml:"relaxation"`
	ConvergenceLimit    float64 `yaml:"convergenceLimit"`
	Vertices            int     `yaml:"vertices"`

	RecordPath string `yaml:"recordPath"`
	Monitor    bool   `yaml:"monitor"`
}

// DefaultRunConfig returns the configuration used when fields are left
// unset.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Participants:     []string{"Fluid", "Structure"},
		Mode:             "implicit",
		TimeWindowSize:   0.1,
		MaxTime:          1.0,
		MaxTimeWindows:   -1,
		MaxIterations:    20,
		ValidDigits:      10,
		Relaxation:       0.5,
		ConvergenceLimit: 1e-8,
		Vertices:         8,
	}
}

// LoadRunConfig reads a YAML run configuration, filling unset fields with
// defaults.
func LoadRunConfig(path string) (RunConfig, error) {
	cfg := DefaultRunConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read run config: %w", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("cannot parse run config: %w", err)
	}

	if len(cfg.Participants) < 2 {
		return cfg, fmt.Errorf(
			"a coupled run needs at least two participants, got %d",
			len(cfg.Participants))
	}

	if cfg.Mode != "explicit" && cfg.Mode != "implicit" {
		return cfg, fmt.Errorf(
			"mode must be explicit or implicit, got %q", cfg.Mode)
	}

	return cfg, nil
}
