// Package tuning loads the server's terrain and loop parameters from
// configs/tuning.yaml.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int   `yaml:"tick_rate_hz"`
	Seed       int64 `yaml:"seed"` // 0 = time-seeded at startup

	// Terrain generation tuple, fixed for the life of a world.
	SquareSize float64 `yaml:"square_size"`
	Detail     int     `yaml:"detail"`
	Roughness  float64 `yaml:"roughness"`

	// EvictRadius 0 keeps every chunk forever (the default semantics).
	EvictRadius        int `yaml:"evict_radius"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`

	Shade Shade `yaml:"shade"`
}

type Shade struct {
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Frequency   float64 `yaml:"frequency"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		TickRateHz:         10,
		Seed:               0,
		SquareSize:         100,
		Detail:             5,
		Roughness:          1.0,
		EvictRadius:        0,
		SnapshotEveryTicks: 600,
		Shade: Shade{
			Octaves:     3,
			Persistence: 0.5,
			Frequency:   0.05,
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz %d, want > 0", t.TickRateHz)
	}
	if t.SquareSize <= 0 {
		return fmt.Errorf("square_size %v, want > 0", t.SquareSize)
	}
	if t.Detail < 1 {
		return fmt.Errorf("detail %d, want >= 1", t.Detail)
	}
	if t.Roughness <= 0 {
		return fmt.Errorf("roughness %v, want > 0", t.Roughness)
	}
	return nil
}
