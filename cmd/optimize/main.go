// Package main searches for emission interval and particle lifetime scales
// that hold the alive particle count near a target budget.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/simulation-tree/particle-systems/config"
)

// EvalRecord is one row of optimize_log.csv.
type EvalRecord struct {
	Eval          int     `csv:"eval"`
	Fitness       float64 `csv:"fitness"`
	IntervalScale float64 `csv:"interval_scale"`
	LifetimeScale float64 `csv:"lifetime_scale"`
	FinalAlive    int     `csv:"final_alive"`
	FinalSlots    int     `csv:"final_slots"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config file (empty = use defaults)")
	ticks := flag.Int("ticks", 1800, "Simulation length per evaluation in ticks")
	target := flag.Float64("target-alive", 200, "Desired alive particle count across all emitters")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, int32(*ticks), *target, *maxEvals, *outputDir); err != nil {
		slog.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, ticks int32, target float64, maxEvals int, outputDir string) error {
	if outputDir == "" {
		return fmt.Errorf("--output is required")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, ticks, target, baseCfg)

	logFile, err := os.Create(filepath.Join(outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness, err := evaluator.Evaluate(raw)
			evalCount++
			if err != nil {
				slog.Error("evaluation failed", "eval", evalCount, "error", err)
				return fitness
			}

			rec := EvalRecord{Eval: evalCount, Fitness: fitness, IntervalScale: raw[0], LifetimeScale: raw[1]}
			windows := evaluator.LastWindows()
			if len(windows) > 0 {
				last := windows[len(windows)-1]
				rec.FinalAlive, rec.FinalSlots = last.Alive, last.Slots
			}

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = raw
				if len(windows) > 0 {
					slog.Info("new best", "eval", evalCount, "fitness", fitness, slog.Any("final_window", windows[len(windows)-1]))
				}
			}
			records := []EvalRecord{rec}
			if evalCount == 1 {
				err = gocsv.Marshal(records, logFile)
			} else {
				err = gocsv.MarshalWithoutHeaders(records, logFile)
			}
			if err != nil {
				slog.Error("failed to write eval log", "error", err)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			slog.Info("eval",
				"n", evalCount,
				"fitness", fitness,
				"best", bestFitness,
				"alive", rec.FinalAlive,
				"elapsed", formatDuration(elapsed),
				"eta", formatDuration(remaining),
			)
			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Concurrent:      0, // Sequential evaluation
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.2,
		Population:   4 + params.Dim()*3/2,
	}

	slog.Info("starting optimization", "params", params.Dim(), "max_evals", maxEvals, "ticks", ticks, "target_alive", target)

	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		slog.Warn("optimization ended", "reason", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		return fmt.Errorf("no successful evaluation")
	}

	for i, spec := range params.Specs {
		slog.Info("best parameter", "name", spec.Name, "value", bestParams[i])
	}

	bestCfg := params.ApplyToConfig(baseCfg, bestParams)
	configOutPath := filepath.Join(outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}

	slog.Info("optimization complete",
		"evals", evalCount,
		"best_fitness", bestFitness,
		"elapsed", formatDuration(time.Since(startTime)),
		"config", configOutPath,
	)
	return nil
}
