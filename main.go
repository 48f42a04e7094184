package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/simulation-tree/particle-systems/config"
	"github.com/simulation-tree/particle-systems/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config file, .yaml or .toml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Root directory for per-run CSV logs and config snapshot")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	ticks := cfg.Simulation.MaxTicks
	if *maxTicks > 0 {
		ticks = *maxTicks
	}

	g, err := game.NewGameWithOptions(game.Options{
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
	})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting simulation",
		"emitters", g.EmitterCount(),
		"dt", cfg.Physics.DT,
		"max_ticks", ticks,
		"max_particles", cfg.Limits.MaxParticles,
		"max_spawns_per_tick", cfg.Limits.MaxSpawnsPerTick,
	)

	for ctx.Err() == nil {
		if err := g.Update(); err != nil {
			slog.Warn("particle limit reached", "tick", g.Tick(), "error", err)
		}

		if ticks > 0 && int(g.Tick()) >= ticks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}

	counters := g.Particles().Counters()
	slog.Info("simulation finished",
		"tick", g.Tick(),
		"spawned", counters.Spawned,
		"expired", counters.Expired,
		"dropped", counters.Dropped,
		slog.Any("perf", g.PerfStats()),
	)

	if err := g.Unload(); err != nil {
		slog.Error("failed to close output", "error", err)
		os.Exit(1)
	}
}
