// Package config provides configuration loading and access for the buoyancy
// simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters. Values are static
// once loaded; nothing is hot-reloaded.
type Config struct {
	Physics   PhysicsConfig   `yaml:"physics"`
	Buoyancy  BuoyancyConfig  `yaml:"buoyancy"`
	Water     WaterConfig     `yaml:"water"`
	Fleet     FleetConfig     `yaml:"fleet"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Screen    ScreenConfig    `yaml:"screen"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PhysicsConfig holds stepping parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"` // seconds per tick
}

// BuoyancyConfig holds the sampling pipeline parameters.
type BuoyancyConfig struct {
	PoolCapacity   int     `yaml:"pool_capacity"`   // max samples per tick across all bodies
	MaxIterations  int     `yaml:"max_iterations"`  // solver iteration bound per sample
	ErrorThreshold float64 `yaml:"error_threshold"` // solver convergence threshold, length units
	DropPolicy     string  `yaml:"drop_policy"`     // "log" (truncate + warn) or "fail"
}

// WaterConfig bounds the randomized wave set.
type WaterConfig struct {
	WaveCount     int     `yaml:"wave_count"`
	MinAmplitude  float64 `yaml:"min_amplitude"`
	MaxAmplitude  float64 `yaml:"max_amplitude"`
	MinWavelength float64 `yaml:"min_wavelength"`
	MaxWavelength float64 `yaml:"max_wavelength"`
	Steepness     float64 `yaml:"steepness"` // 0..1 horizontal chop
	MinSpeed      float64 `yaml:"min_speed"`
	MaxSpeed      float64 `yaml:"max_speed"`
}

// FleetConfig holds the spawned fleet parameters.
type FleetConfig struct {
	Count           int     `yaml:"count"`             // hulls to spawn
	PontoonsPerHull int     `yaml:"pontoons_per_hull"` // 1..components.MaxPontoons
	PontoonSpread   float64 `yaml:"pontoon_spread"`    // pontoon ring radius, length units
	SpawnArea       float64 `yaml:"spawn_area"`        // square side length hulls spawn within
	DriftSpeed      float64 `yaml:"drift_speed"`       // max horizontal drift, length units/sec
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// ScreenConfig holds display settings for the preview tool.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	DT32             float32
	StatsWindowTicks int32
}

// global is the process-wide config instance, set by Init.
var global *Config

// Init loads config from path (empty = embedded defaults only) and installs
// it as the global instance.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is Init that panics on error, for tools.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(err)
	}
}

// Cfg returns the global config. Panics if Init was never called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg called before Init")
	}
	return global
}

// Load reads configuration: embedded defaults first, then an optional user
// file overlaid on top (only fields present in the file are overwritten).
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) computeDerived() {
	if c.Physics.DT <= 0 {
		c.Physics.DT = 1.0 / 60.0
	}
	c.Derived.DT32 = float32(c.Physics.DT)
	if c.Telemetry.StatsWindow > 0 {
		c.Derived.StatsWindowTicks = int32(c.Telemetry.StatsWindow / c.Physics.DT)
	}
	if c.Derived.StatsWindowTicks < 1 {
		c.Derived.StatsWindowTicks = 1
	}
}

// WriteYAML writes the config to a file, for output snapshots.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
