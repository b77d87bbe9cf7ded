package ga

import (
	"context"
	"math/rand"

	"circopt/internal/circuit"
	"circopt/internal/fitness"
	"circopt/internal/seed"
)

// HybridConfig configures the hybrid schedule: alternating coordinate
// descent between a discrete-only GA round (continuous
// vector held fixed) and a continuous-only GA round (discrete topology
// held fixed), carrying the winner of each half forward into the next
// round and keeping the best pair seen across all rounds.
type HybridConfig struct {
	N        int
	Defaults circuit.Defaults

	Rounds                   int
	DiscretePopulationSize   int
	ContinuousPopulationSize int
	GenerationsPerRound      int

	TournamentK          int
	CrossoverProb        float64
	MutationProb         float64
	CreepStep            int
	InversionProb        float64
	ContinuousCreepStep  float64
	ScalingProb          float64
	ScaleMin             float64
	ScaleMax             float64
	EliteCount           int
	ConvergenceThreshold float64
	StallGenerations     int
	Workers              int
	Seed                 int64
}

// HybridResult is the best pair found across every round, plus each
// round's full discrete- and continuous-phase Result for diagnostics.
type HybridResult struct {
	Best         seed.Genome
	BestFitness  float64
	Rounds       int
	RoundHistory []Result
}

func (cfg HybridConfig) optimizerConfig(variant Variant, fixedD []int, fixedC []float64, populationSize int, roundSeed int64) Config {
	return Config{
		N:                    cfg.N,
		Defaults:             cfg.Defaults,
		Variant:              variant,
		FixedDiscrete:        fixedD,
		FixedContinuous:      fixedC,
		PopulationSize:       populationSize,
		Generations:          cfg.GenerationsPerRound,
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
		Seed:                 roundSeed,
	}
}

// RunHybrid runs cfg.Rounds alternating rounds starting from the given
// initial discrete topology and continuous volume vector. A
// higher-fidelity joint GA over the paired genome is VariantHybrid on
// Optimizer directly, which is what internal/platform's hybrid mode
// runs — RunHybrid is a separate coordinate-descent entry point that
// nothing else in this module calls.
func RunHybrid(ctx context.Context, cfg HybridConfig, initialD []int, initialC []float64) (HybridResult, error) {
	if cfg.Rounds <= 0 {
		cfg.Rounds = 1
	}

	currentD := append([]int(nil), initialD...)
	currentC := append([]float64(nil), initialC...)
	rng := rand.New(rand.NewSource(cfg.Seed))

	bestFitness := fitness.Sentinel
	var best seed.Genome
	history := make([]Result, 0, cfg.Rounds*2)

	for round := 0; round < cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return HybridResult{}, err
		}

		discreteTopologies, _ := seed.DiscretePopulation(cfg.N, cfg.DiscretePopulationSize, cfg.Defaults, rng)
		discreteGenomes := make([]seed.Genome, len(discreteTopologies))
		for i, d := range discreteTopologies {
			discreteGenomes[i] = seed.Genome{D: d, C: currentC}
		}
		dOpt, err := New(cfg.optimizerConfig(VariantDiscrete, nil, currentC, len(discreteGenomes), cfg.Seed+int64(round)*2))
		if err != nil {
			return HybridResult{}, err
		}
		dResult, err := dOpt.Run(ctx, discreteGenomes)
		if err != nil {
			return HybridResult{}, err
		}
		history = append(history, dResult)
		currentD = dResult.Best.D
		if dResult.BestFitness > bestFitness {
			bestFitness = dResult.BestFitness
			best = seed.Genome{D: append([]int(nil), currentD...), C: append([]float64(nil), currentC...)}
		}

		continuousVolumes, _ := seed.ContinuousPopulation(cfg.N, cfg.ContinuousPopulationSize, currentD, cfg.Defaults, rng)
		continuousGenomes := make([]seed.Genome, len(continuousVolumes))
		for i, c := range continuousVolumes {
			continuousGenomes[i] = seed.Genome{D: currentD, C: c}
		}
		cOpt, err := New(cfg.optimizerConfig(VariantContinuous, currentD, nil, len(continuousGenomes), cfg.Seed+int64(round)*2+1))
		if err != nil {
			return HybridResult{}, err
		}
		cResult, err := cOpt.Run(ctx, continuousGenomes)
		if err != nil {
			return HybridResult{}, err
		}
		history = append(history, cResult)
		currentC = cResult.Best.C
		if cResult.BestFitness > bestFitness {
			bestFitness = cResult.BestFitness
			best = seed.Genome{D: append([]int(nil), currentD...), C: append([]float64(nil), currentC...)}
		}
	}

	return HybridResult{Best: best, BestFitness: bestFitness, Rounds: cfg.Rounds, RoundHistory: history}, nil
}
