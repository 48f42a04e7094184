// Package game wires the emitter world, the particle system and telemetry
// into a fixed-step headless simulation.
package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/simulation-tree/particle-systems/components"
	"github.com/simulation-tree/particle-systems/config"
	"github.com/simulation-tree/particle-systems/systems"
	"github.com/simulation-tree/particle-systems/telemetry"
)

// Options configures a Game.
type Options struct {
	Config         *config.Config // nil uses config.Cfg()
	LogStats       bool           // log window stats and perf via slog
	StatsWindowSec float64        // 0 uses the config's telemetry.stats_window
	OutputDir      string         // root for per-run CSV output; empty disables it
	StatsCallback  func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World

	// Entity mappers
	emitterMapper *ecs.Map3[
		components.Emitter,
		components.ParticleBuffer,
		components.EmitterInfo,
	]
	lifespanMap    *ecs.Map[components.Lifespan]
	lifespanFilter *ecs.Filter2[components.Lifespan, components.EmitterInfo]
	bufferFilter   *ecs.Filter1[components.ParticleBuffer]

	// Emitter descriptors built from config, indexed like cfg.Emitters
	templates []components.Emitter

	particles *systems.ParticleSystem

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	sample           telemetry.Sample
	events           []telemetry.Event

	// State
	tick     int32
	emitters int
}

// NewGameWithOptions creates a game and spawns the configured emitters.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	templates, err := buildTemplates(cfg.Emitters)
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:   cfg,
		world: world,
		emitterMapper: ecs.NewMap3[
			components.Emitter,
			components.ParticleBuffer,
			components.EmitterInfo,
		](world),
		lifespanMap:    ecs.NewMap[components.Lifespan](world),
		lifespanFilter: ecs.NewFilter2[components.Lifespan, components.EmitterInfo](world),
		bufferFilter:   ecs.NewFilter1[components.ParticleBuffer](world),
		templates:      templates,
		particles: systems.NewParticleSystem(world, systems.Limits{
			MaxParticles:     cfg.Limits.MaxParticles,
			MaxSpawnsPerTick: cfg.Limits.MaxSpawnsPerTick,
		}),
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Derived.DT32)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("setting up output: %w", err)
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		g.outputManager.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}
	if g.outputManager != nil {
		slog.Info("writing run output", "run_id", g.outputManager.RunID(), "dir", g.outputManager.Dir())
	}

	g.spawnInitialEmitters()

	return g, nil
}

// Update advances the simulation by one tick.
// The returned error reports particle limits that tripped this tick; the
// tick itself always completes.
func (g *Game) Update() error {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseLifecycle)
	g.updateLifespans()

	g.perfCollector.StartPhase(telemetry.PhaseParticles)
	err := g.particles.Update(g.cfg.Derived.DT32)
	if err != nil {
		g.recordLimitHits(err)
	}

	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
	return err
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// EmitterCount returns the number of live emitter entities.
func (g *Game) EmitterCount() int {
	return g.emitters
}

// World returns the ECS world.
func (g *Game) World() *ecs.World {
	return g.world
}

// Particles returns the particle system.
func (g *Game) Particles() *systems.ParticleSystem {
	return g.particles
}

// PerfStats returns tick timing over the current perf window.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// OutputDir returns the run output directory, or "" when output is disabled.
func (g *Game) OutputDir() string {
	return g.outputManager.Dir()
}

// Unload writes pending events and closes output files.
func (g *Game) Unload() error {
	g.writeEvents()
	return g.outputManager.Close()
}
