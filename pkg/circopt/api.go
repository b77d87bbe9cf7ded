// Package circopt is the stable public facade over the optimizer: a
// RunRequest/RunResult pair and a single Run entry point, for embedders
// who want circuit optimization without the CLI. Grounded on
// pkg/protogonos/api.go's request-struct → validate/default → orchestrate
// → result-struct shape.
package circopt

import (
	"context"
	"errors"

	"circopt/internal/circuit"
	"circopt/internal/ga"
	"circopt/internal/platform"
	"circopt/internal/storage"
)

// RunRequest describes one optimization run. Run fills zero values for
// PopulationSize (60), Generations (200), TournamentK (2, the same as
// internal/ga) and EliteCount (1); the other tunables are left to
// internal/ga's own defaults (see DESIGN.md's Open Question decisions
// for those numbers).
type RunRequest struct {
	RunID string
	N     int
	Mode  string // "d" (discrete), "c" (continuous), or "h" (hybrid); default "d"

	Defaults circuit.Defaults

	PopulationSize int
	Generations    int

	TournamentK   int
	CrossoverProb float64

	MutationProb        float64
	CreepStep           int
	InversionProb       float64
	ContinuousCreepStep float64
	ScalingProb         float64
	ScaleMin            float64
	ScaleMax            float64

	EliteCount int

	ConvergenceThreshold float64
	StallGenerations     int

	Workers int

	// Seed drives the run's master RNG. Zero is a valid, deterministic
	// seed in its own right; leave it negative to get a seed drawn from
	// system entropy instead.
	Seed int64

	TopN int

	Verbose bool
}

// RunResult is what a completed run hands back to an embedder: the run
// ID it was persisted under plus the optimizer's full result.
type RunResult struct {
	RunID string
	ga.Result
}

// Run fills req's defaults, drives the optimizer to completion, and
// persists its artifacts to store. store may be a fresh
// storage.NewMemoryStore() or a shared Store the embedder already owns;
// Run calls Init on it before use.
func Run(ctx context.Context, store storage.Store, req RunRequest) (RunResult, error) {
	if store == nil {
		return RunResult{}, errors.New("circopt: store is required")
	}
	if req.N <= 0 {
		return RunResult{}, errors.New("circopt: n must be positive")
	}
	if req.Mode == "" {
		req.Mode = "d"
	}
	if req.PopulationSize <= 0 {
		req.PopulationSize = 60
	}
	if req.Generations <= 0 {
		req.Generations = 200
	}
	if req.TournamentK <= 0 {
		req.TournamentK = 2
	}
	if req.EliteCount <= 0 {
		req.EliteCount = 1
	}

	logger := platform.StderrLogger(req.Verbose)

	cfg := platform.RunConfig{
		RunID:                req.RunID,
		N:                    req.N,
		Mode:                 req.Mode,
		Defaults:             req.Defaults,
		PopulationSize:       req.PopulationSize,
		Generations:          req.Generations,
		TournamentK:          req.TournamentK,
		CrossoverProb:        req.CrossoverProb,
		MutationProb:         req.MutationProb,
		CreepStep:            req.CreepStep,
		InversionProb:        req.InversionProb,
		ContinuousCreepStep:  req.ContinuousCreepStep,
		ScalingProb:          req.ScalingProb,
		ScaleMin:             req.ScaleMin,
		ScaleMax:             req.ScaleMax,
		EliteCount:           req.EliteCount,
		ConvergenceThreshold: req.ConvergenceThreshold,
		StallGenerations:     req.StallGenerations,
		Workers:              req.Workers,
		Seed:                 req.Seed,
		TopN:                 req.TopN,
	}

	outcome, err := platform.Run(ctx, store, cfg, logger)
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{RunID: outcome.RunID, Result: outcome.Result}, nil
}
