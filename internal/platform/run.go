package platform

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand"

	"github.com/google/uuid"

	"circopt/internal/circuit"
	"circopt/internal/ga"
	"circopt/internal/seed"
	"circopt/internal/storage"
)

// RunConfig bundles the knobs a single optimization run needs: circuit
// size and defaults, GA variant and tunables, and how many top genomes
// to keep. It is the orchestrator's input, filled by pkg/circopt from a
// RunRequest (cmd/circopt builds that RunRequest from
// internal/config.Params).
type RunConfig struct {
	RunID string
	N     int
	Mode  string // "d", "c", or "h"

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
	Seed    int64 // < 0 means system-random

	TopN int
}

// RunOutcome is what Run hands back: the GA result plus the run ID it
// was persisted under (generated if RunConfig.RunID was empty).
type RunOutcome struct {
	RunID  string
	Result ga.Result
}

// Run seeds an initial population for cfg.Mode, drives the GA to
// completion, and persists the run's summary artifacts to store: run
// metadata, fitness history, per-generation diagnostics, lineage, and
// the top-N final genomes. It follows a seed → evolve → persist →
// summarize shape, without any supervisor scaffolding, since this
// system has no long-lived child processes to restart.
func Run(ctx context.Context, store storage.Store, cfg RunConfig, logger *Logger) (RunOutcome, error) {
	if cfg.N <= 0 {
		return RunOutcome{}, fmt.Errorf("platform: n must be positive, got %d", cfg.N)
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	masterSeed := cfg.Seed
	if masterSeed < 0 {
		masterSeed = entropySeed()
	}
	rng := mathrand.New(mathrand.NewSource(masterSeed))

	variant, err := variantFor(cfg.Mode)
	if err != nil {
		return RunOutcome{}, err
	}

	fixedDiscrete := seedFixedDiscrete(variant, cfg, rng)

	population, achieved, err := seedPopulation(variant, cfg, fixedDiscrete, rng, logger)
	if err != nil {
		return RunOutcome{}, err
	}

	gaCfg := ga.Config{
		N:                    cfg.N,
		Defaults:             cfg.Defaults,
		Variant:              variant,
		FixedDiscrete:        fixedDiscrete,
		PopulationSize:       achieved,
		Generations:          cfg.Generations,
		TournamentK:          cfg.TournamentK,
		CrossoverProb:        cfg.CrossoverProb,
		MutationProb:         cfg.MutationProb,
		CreepStep:            cfg.CreepStep,
		InversionProb:        cfg.InversionProb,
		ContinuousCreepStep:  cfg.ContinuousCreepStep,
		ScalingProb:          cfg.ScalingProb,
		ScaleMin:             cfg.ScaleMin,
		ScaleMax:             cfg.ScaleMax,
		EliteCount:           cfg.EliteCount,
		ConvergenceThreshold: cfg.ConvergenceThreshold,
		StallGenerations:     cfg.StallGenerations,
		Workers:              cfg.Workers,
		Seed:                 masterSeed,
	}

	optimizer, err := ga.New(gaCfg)
	if err != nil {
		return RunOutcome{}, fmt.Errorf("platform: configuring optimizer: %w", err)
	}

	result, err := optimizer.Run(ctx, population)
	if err != nil {
		return RunOutcome{}, fmt.Errorf("platform: running optimizer: %w", err)
	}

	if err := persist(ctx, store, runID, cfg, result); err != nil {
		if logger != nil {
			logger.Errorf("failed to persist run %s: %v", runID, err)
		}
		return RunOutcome{RunID: runID, Result: result}, err
	}

	return RunOutcome{RunID: runID, Result: result}, nil
}

func variantFor(mode string) (ga.Variant, error) {
	switch mode {
	case "d", "":
		return ga.VariantDiscrete, nil
	case "c":
		return ga.VariantContinuous, nil
	case "h":
		return ga.VariantHybrid, nil
	default:
		return 0, fmt.Errorf("platform: unrecognized mode %q", mode)
	}
}

// seedFixedDiscrete picks a single representative topology for
// VariantContinuous, where the discrete half of every genome is held
// fixed — drawn from the same templates the discrete seeder uses so a
// continuous-only run still starts from a validator-accepted topology.
func seedFixedDiscrete(variant ga.Variant, cfg RunConfig, rng *mathrand.Rand) []int {
	if variant != ga.VariantContinuous {
		return nil
	}
	discrete, _ := seed.DiscretePopulation(cfg.N, 1, cfg.Defaults, rng)
	if len(discrete) == 0 {
		return nil
	}
	return discrete[0]
}

// seedPopulation builds the initial population for variant, logging a
// warning (not an error) when the seeder could not fill the requested
// population size — the "seeder-starved" taxonomy entry. fixedDiscrete
// is the topology seedFixedDiscrete chose for VariantContinuous; it is
// ignored for the other variants.
func seedPopulation(variant ga.Variant, cfg RunConfig, fixedDiscrete []int, rng *mathrand.Rand, logger *Logger) ([]seed.Genome, int, error) {
	switch variant {
	case ga.VariantDiscrete:
		topologies, warnings := seed.DiscretePopulation(cfg.N, cfg.PopulationSize, cfg.Defaults, rng)
		logWarnings(logger, warnings)
		if len(topologies) == 0 {
			return nil, 0, fmt.Errorf("platform: seeder produced zero valid topologies for n=%d", cfg.N)
		}
		population := make([]seed.Genome, len(topologies))
		for i, d := range topologies {
			population[i] = seed.Genome{D: d}
		}
		return population, len(population), nil

	case ga.VariantContinuous:
		continuous, warnings := seed.ContinuousPopulation(cfg.N, cfg.PopulationSize, fixedDiscrete, cfg.Defaults, rng)
		logWarnings(logger, warnings)
		if len(continuous) == 0 {
			return nil, 0, fmt.Errorf("platform: seeder produced zero valid continuous vectors for n=%d", cfg.N)
		}
		population := make([]seed.Genome, len(continuous))
		for i, c := range continuous {
			population[i] = seed.Genome{D: fixedDiscrete, C: c}
		}
		return population, len(population), nil

	default: // ga.VariantHybrid
		population, warnings := seed.HybridPopulation(cfg.N, cfg.PopulationSize, cfg.Defaults, rng)
		logWarnings(logger, warnings)
		if len(population) == 0 {
			return nil, 0, fmt.Errorf("platform: seeder produced zero valid topologies for n=%d", cfg.N)
		}
		return population, len(population), nil
	}
}

func logWarnings(logger *Logger, warnings []seed.Warning) {
	if logger == nil {
		return
	}
	for _, w := range warnings {
		logger.Warnf("%s", w.Message)
	}
}

// entropySeed draws a seed from crypto/rand for the "seeded from a
// system entropy source when unset" fallback.
func entropySeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 1
	}
	v := int64(binary.BigEndian.Uint64(buf[:]))
	if v < 0 {
		v = -v
	}
	return v
}
