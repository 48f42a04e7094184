package main

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/simulation-tree/particle-systems/config"
	"github.com/simulation-tree/particle-systems/game"
	"github.com/simulation-tree/particle-systems/telemetry"
)

// Fitness weights.
const (
	weightWaste   = 0.25 // share of allocated slots left free
	weightDropped = 1.0  // any window that dropped spawns

	warmupWindows = 2 // skip first N windows while pools fill
)

// FitnessEvaluator runs headless simulations and scores how closely the
// alive particle count tracks a target.
type FitnessEvaluator struct {
	params      *ParamVector
	ticks       int32
	targetAlive float64
	baseConfig  *config.Config
	statsWindow float64

	lastWindows []telemetry.WindowStats
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int32, targetAlive float64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		ticks:       ticks,
		targetAlive: targetAlive,
		baseConfig:  baseCfg,
		statsWindow: 1.0,
	}
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Runs are deterministic, so one simulation per evaluation suffices.
func (fe *FitnessEvaluator) Evaluate(x []float64) (float64, error) {
	cfg := fe.params.ApplyToConfig(fe.baseConfig, x)

	windows, err := fe.runSimulation(cfg)
	if err != nil {
		return math.Inf(1), err
	}
	fe.lastWindows = windows
	return fe.computeFitness(windows), nil
}

// LastWindows returns the window stats of the most recent evaluation.
func (fe *FitnessEvaluator) LastWindows() []telemetry.WindowStats {
	return fe.lastWindows
}

func (fe *FitnessEvaluator) runSimulation(cfg *config.Config) ([]telemetry.WindowStats, error) {
	var windows []telemetry.WindowStats
	g, err := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		StatsWindowSec: fe.statsWindow,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}
	defer g.Unload()

	// Limit errors are part of the score, not a failure.
	for g.Tick() < fe.ticks {
		g.Update()
	}
	return windows, nil
}

// computeFitness combines squared relative error of the alive count, pool
// waste, and the fraction of windows that dropped spawns.
func (fe *FitnessEvaluator) computeFitness(windows []telemetry.WindowStats) float64 {
	if len(windows) <= warmupWindows || fe.targetAlive <= 0 {
		return math.Inf(1)
	}
	valid := windows[warmupWindows:]

	errs := make([]float64, len(valid))
	waste := make([]float64, len(valid))
	var dropped float64
	for i, w := range valid {
		rel := (float64(w.Alive) - fe.targetAlive) / fe.targetAlive
		errs[i] = rel * rel
		if w.Slots > 0 {
			waste[i] = 1 - w.Occupancy
		}
		if w.Dropped > 0 {
			dropped++
		}
	}

	return stat.Mean(errs, nil) +
		weightWaste*stat.Mean(waste, nil) +
		weightDropped*dropped/float64(len(valid))
}
