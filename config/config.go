// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/simulation-tree/particle-systems/distribution"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Physics    PhysicsConfig    `yaml:"physics" toml:"physics"`
	Simulation SimulationConfig `yaml:"simulation" toml:"simulation"`
	Limits     LimitsConfig     `yaml:"limits" toml:"limits"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" toml:"telemetry"`
	Emitters   []EmitterConfig  `yaml:"emitters" toml:"emitters"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-" toml:"-"`
}

// PhysicsConfig holds the fixed tick length.
type PhysicsConfig struct {
	DT float64 `yaml:"dt" toml:"dt"` // seconds per tick
}

// SimulationConfig holds run-length settings.
type SimulationConfig struct {
	MaxTicks int `yaml:"max_ticks" toml:"max_ticks"` // 0 = unlimited
}

// LimitsConfig holds the opt-in guards for the particle update.
// Zero disables a limit.
type LimitsConfig struct {
	MaxParticles     int `yaml:"max_particles" toml:"max_particles"`             // per emitter
	MaxSpawnsPerTick int `yaml:"max_spawns_per_tick" toml:"max_spawns_per_tick"` // per emitter per tick
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window" toml:"stats_window"`                   // seconds
	PerfCollectorWindow int     `yaml:"perf_collector_window" toml:"perf_collector_window"` // ticks
}

// EmitterConfig defines a template for emitter entities.
type EmitterConfig struct {
	Name     string  `yaml:"name" toml:"name"`
	Count    int     `yaml:"count" toml:"count"`       // entities created from this template
	Lifespan float64 `yaml:"lifespan" toml:"lifespan"` // seconds before removal (0 = forever)
	Respawn  bool    `yaml:"respawn" toml:"respawn"`   // replace the entity when its lifespan ends

	Position [3]float32              `yaml:"position,flow" toml:"position"`
	Interval distribution.ScalarSpec `yaml:"interval" toml:"interval"`
	Lifetime distribution.ScalarSpec `yaml:"lifetime" toml:"lifetime"`
	Velocity distribution.VectorSpec `yaml:"velocity" toml:"velocity"`
	Drag     distribution.VectorSpec `yaml:"drag" toml:"drag"`
	Size     distribution.VectorSpec `yaml:"size" toml:"size"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32          float32        // Physics.DT as float32
	TotalEmitters int            // sum of Emitters[i].Count
	EmitterIndex  map[string]int // name -> index into Emitters
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML or TOML file, merging with embedded
// defaults. The format is chosen by extension (.toml, anything else is YAML).
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			if err := decodeTOML(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// decodeTOML merges a TOML document into cfg. A TOML emitter list replaces
// the defaults instead of being merged element-wise, matching YAML.
func decodeTOML(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if _, ok := raw["emitters"]; ok {
		cfg.Emitters = nil
	}
	return toml.Unmarshal(data, cfg)
}

// Validate checks values the simulation cannot run with.
// Emission intervals must be strictly positive or the spawn loop never ends.
func (c *Config) Validate() error {
	var errs []error
	if c.Physics.DT <= 0 {
		errs = append(errs, fmt.Errorf("%w: physics.dt must be > 0, got %v", ErrInvalid, c.Physics.DT))
	}
	if c.Limits.MaxParticles < 0 || c.Limits.MaxSpawnsPerTick < 0 {
		errs = append(errs, fmt.Errorf("%w: limits must be >= 0", ErrInvalid))
	}

	seen := make(map[string]bool, len(c.Emitters))
	for i, em := range c.Emitters {
		name := em.Name
		if name == "" {
			errs = append(errs, fmt.Errorf("%w: emitter %d has no name", ErrInvalid, i))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("%w: duplicate emitter %q", ErrInvalid, name))
		}
		seen[name] = true

		if em.Count < 0 {
			errs = append(errs, fmt.Errorf("%w: emitter %q count must be >= 0", ErrInvalid, name))
		}
		if em.Lifespan < 0 {
			errs = append(errs, fmt.Errorf("%w: emitter %q lifespan must be >= 0", ErrInvalid, name))
		}
		if !em.Interval.Positive() {
			errs = append(errs, fmt.Errorf("%w: emitter %q interval must be strictly positive", ErrInvalid, name))
		}
		if err := em.checkDistributions(); err != nil {
			errs = append(errs, fmt.Errorf("%w: emitter %q: %w", ErrInvalid, name, err))
		}
	}
	return errors.Join(errs...)
}

func (em *EmitterConfig) checkDistributions() error {
	if _, err := em.Interval.Build(); err != nil {
		return fmt.Errorf("interval: %w", err)
	}
	if _, err := em.Lifetime.Build(); err != nil {
		return fmt.Errorf("lifetime: %w", err)
	}
	for _, v := range []struct {
		name string
		spec distribution.VectorSpec
	}{{"velocity", em.Velocity}, {"drag", em.Drag}, {"size", em.Size}} {
		if _, err := v.spec.Build(); err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)

	c.Derived.TotalEmitters = 0
	c.Derived.EmitterIndex = make(map[string]int, len(c.Emitters))
	for i, em := range c.Emitters {
		c.Derived.TotalEmitters += em.Count
		c.Derived.EmitterIndex[em.Name] = i
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
