// Package config loads the flatten settings from a TOML file.
//
//	iterations = 10
//	selected_only = true
//	workers = 4
//	weld_tolerance = 0.0
//	tolerance = 1e-5
package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/akmonengine/flatface"
)

var (
	ErrInvalidIterations = errors.New("iterations must be at least 1")
	ErrInvalidWorkers    = errors.New("workers must be at least 1")
	ErrInvalidTolerance  = errors.New("tolerance must not be negative")
	ErrUnknownKey        = errors.New("unknown key")
)

// Config holds the settings of a flatten run
type Config struct {
	// Iterations is the number of passes over the selection
	Iterations int `toml:"iterations"`
	// SelectedOnly restricts the run to the selected polygons
	SelectedOnly bool `toml:"selected_only"`
	// Workers is the goroutine count used to measure planarity
	Workers int `toml:"workers"`
	// WeldTolerance merges vertices closer than this distance after loading, 0 disables it
	WeldTolerance float64 `toml:"weld_tolerance"`
	// Tolerance is the normalized deviation above which a polygon counts as non planar
	Tolerance float64 `toml:"tolerance"`
}

func Default() Config {
	return Config{
		Iterations:   flatface.DEFAULT_ITERATIONS,
		SelectedOnly: true,
		Workers:      runtime.NumCPU(),
		Tolerance:    1e-5,
	}
}

// Load decodes path on top of the defaults, keys missing from the file keep their default value
func Load(path string) (Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("config %s: %w %q", path, ErrUnknownKey, undecoded[0].String())
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("%d: %w", c.Iterations, ErrInvalidIterations)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%d: %w", c.Workers, ErrInvalidWorkers)
	}
	if c.Tolerance < 0 || c.WeldTolerance < 0 {
		return ErrInvalidTolerance
	}
	return nil
}

// AboveSoftMax reports an iteration count worth a warning, it is still valid
func (c Config) AboveSoftMax() bool {
	return c.Iterations > flatface.SOFT_MAX_ITERATIONS
}
