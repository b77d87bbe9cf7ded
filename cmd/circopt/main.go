// Command circopt runs the separation-circuit optimizer from the
// command line: load a configuration, drive the GA, write CSV/DOT
// report artifacts, validate a single genome, or re-export a
// previously stored run. Grounded on cmd/protogonosctl/main.go's
// switch-on-args[0] dispatch style.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"circopt/internal/circuit"
	"circopt/internal/config"
	"circopt/internal/massbalance"
	"circopt/internal/report"
	"circopt/internal/storage"
	"circopt/internal/validate"
	"circopt/pkg/circopt"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}
	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "validate":
		return runValidate(args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "benchmark":
		return runBenchmark(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("circopt: %s\nusage: circopt <run|validate|export|benchmark> [flags]", msg)
}

func defaultsFromFlag(testMode bool) circuit.Defaults {
	if testMode {
		return circuit.TestDefaults()
	}
	return circuit.PhysicalDefaults()
}

func openStore(storeKind, dbPath string) (storage.Store, error) {
	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional key=value configuration file")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	n := fs.Int("num-units", 0, "number of process units (overrides config)")
	mode := fs.String("mode", "", "d|c|h (overrides config)")
	gens := fs.Int("max-iterations", 0, "generation count (overrides config)")
	pop := fs.Int("population-size", 0, "population size (overrides config)")
	seed := fs.Int64("seed", 0, "rng seed; < 0 for system-random (overrides config)")
	workers := fs.Int("workers", 0, "worker count (0 uses GOMAXPROCS)")
	testDefaults := fs.Bool("test-defaults", true, "use circuit.TestDefaults() instead of PhysicalDefaults()")
	storeKind := fs.String("store", "", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "circopt.db", "sqlite database path")
	vectorCSV := fs.String("vector-csv", "", "append the best discrete genome to this CSV path")
	unitsCSV := fs.String("units-csv", "", "append per-unit conc/tail totals to this CSV path")
	dotPath := fs.String("dot", "", "write the best circuit's Graphviz DOT graph to this path")
	verbose := fs.Bool("verbose", false, "log warnings/progress to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	params, warnings, err := loadParams(*configPath)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w.String())
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "num-units":
			params.NumUnits = *n
		case "mode":
			params.Mode = *mode
		case "max-iterations":
			params.MaxIterations = *gens
		case "population-size":
			params.PopulationSize = *pop
		case "seed":
			params.RandomSeed = *seed
		case "verbose":
			params.Verbose = *verbose
		}
	})

	req := circopt.RunRequest{
		RunID:                *runID,
		N:                    params.NumUnits,
		Mode:                 params.Mode,
		Defaults:             defaultsFromFlag(*testDefaults),
		PopulationSize:       params.PopulationSize,
		Generations:          params.MaxIterations,
		TournamentK:          params.TournamentSize,
		CrossoverProb:        params.CrossoverProb,
		MutationProb:         params.MutationProb,
		CreepStep:            int(params.MutationStepSize),
		ContinuousCreepStep:  params.MutationStepSize,
		EliteCount:           params.EliteCount,
		ConvergenceThreshold: params.ConvergenceThreshold,
		StallGenerations:     params.StallGenerations,
		Workers:              *workers,
		Seed:                 params.RandomSeed,
		Verbose:              params.Verbose,
	}
	if params.UseInversion {
		req.InversionProb = params.InversionProbability
	}
	if params.UseScalingMutation {
		req.ScalingProb = params.ScalingMutationProb
		req.ScaleMin = params.ScalingMutationMin
		req.ScaleMax = params.ScalingMutationMax
	}

	store, err := openStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = storage.CloseIfSupported(store) }()

	started := time.Now()
	result, err := circopt.Run(ctx, store, req)
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	fmt.Printf("run completed run_id=%s n=%d mode=%s generations=%d best_fitness=%.6f converged=%t elapsed=%s (%s)\n",
		result.RunID, req.N, req.Mode, result.Generations, result.BestFitness, result.Converged,
		elapsed.Round(time.Millisecond), humanize.Time(time.Now().Add(-elapsed)))

	if *vectorCSV != "" {
		if err := report.AppendVectorCSV(*vectorCSV, result.Best.D); err != nil {
			return fmt.Errorf("circopt: writing vector csv: %w", err)
		}
	}
	if *unitsCSV != "" || *dotPath != "" {
		beta := result.Best.C
		if req.Mode == "d" {
			beta = nil
		}
		c, err := circuit.FromGenome(req.N, result.Best.D, beta, req.Defaults)
		if err != nil {
			return fmt.Errorf("circopt: decoding best genome: %w", err)
		}
		massbalance.Solve(c, massbalance.DefaultTolerance, massbalance.DefaultMaxIterations)
		if *unitsCSV != "" {
			if err := report.AppendUnitsCSV(*unitsCSV, c); err != nil {
				return fmt.Errorf("circopt: writing units csv: %w", err)
			}
		}
		if *dotPath != "" {
			if err := writeDOTFile(*dotPath, c); err != nil {
				return err
			}
		}
	}
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	n := fs.Int("num-units", 0, "number of process units")
	discreteArg := fs.String("discrete", "", "comma-separated discrete genome, length 2n+1")
	betaArg := fs.String("beta", "", "optional comma-separated beta vector, length n, each in [0,1]")
	testDefaults := fs.Bool("test-defaults", true, "use circuit.TestDefaults() instead of PhysicalDefaults()")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n <= 0 {
		return errors.New("circopt: validate requires -num-units > 0")
	}
	d, err := parseIntList(*discreteArg)
	if err != nil {
		return fmt.Errorf("circopt: parsing -discrete: %w", err)
	}

	defaults := defaultsFromFlag(*testDefaults)
	var result validate.Result
	if *betaArg != "" {
		beta, err := parseFloatList(*betaArg)
		if err != nil {
			return fmt.Errorf("circopt: parsing -beta: %w", err)
		}
		result = validate.ValidateWithVolume(*n, d, beta, defaults)
	} else {
		result = validate.Validate(*n, d, defaults)
	}

	if result.Valid {
		fmt.Println("valid")
		return nil
	}
	return fmt.Errorf("invalid reason=%s detail=%s", result.Reason, result.Detail)
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "stored run id to re-export")
	n := fs.Int("num-units", 0, "number of process units the run was configured with")
	rank := fs.Int("rank", 1, "which top genome to export, 1-indexed")
	testDefaults := fs.Bool("test-defaults", true, "use circuit.TestDefaults() instead of PhysicalDefaults()")
	storeKind := fs.String("store", "", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "circopt.db", "sqlite database path")
	vectorCSV := fs.String("vector-csv", "", "append the exported genome to this CSV path")
	unitsCSV := fs.String("units-csv", "", "append per-unit conc/tail totals to this CSV path")
	dotPath := fs.String("dot", "", "write the exported circuit's Graphviz DOT graph to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("circopt: export requires -run-id")
	}
	if *n <= 0 {
		return errors.New("circopt: export requires -num-units > 0")
	}

	store, err := openStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = storage.CloseIfSupported(store) }()
	if err := store.Init(ctx); err != nil {
		return err
	}

	top, ok, err := store.GetTopGenomes(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok || len(top) == 0 {
		return fmt.Errorf("circopt: no stored top genomes for run id %q", *runID)
	}
	if *rank < 1 || *rank > len(top) {
		return fmt.Errorf("circopt: rank %d out of range [1,%d]", *rank, len(top))
	}
	genome := top[*rank-1]

	if *vectorCSV != "" {
		if err := report.AppendVectorCSV(*vectorCSV, genome.Discrete); err != nil {
			return fmt.Errorf("circopt: writing vector csv: %w", err)
		}
	}
	if *unitsCSV != "" || *dotPath != "" {
		var beta []float64
		if len(genome.Volumes) > 0 {
			beta = genome.Volumes
		}
		c, err := circuit.FromGenome(*n, genome.Discrete, beta, defaultsFromFlag(*testDefaults))
		if err != nil {
			return fmt.Errorf("circopt: decoding exported genome: %w", err)
		}
		massbalance.Solve(c, massbalance.DefaultTolerance, massbalance.DefaultMaxIterations)
		if *unitsCSV != "" {
			if err := report.AppendUnitsCSV(*unitsCSV, c); err != nil {
				return fmt.Errorf("circopt: writing units csv: %w", err)
			}
		}
		if *dotPath != "" {
			if err := writeDOTFile(*dotPath, c); err != nil {
				return err
			}
		}
	}

	fmt.Printf("exported run_id=%s rank=%d fitness=%.6f\n", *runID, *rank, genome.Fitness)
	return nil
}

func runBenchmark(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional key=value configuration file")
	repeats := fs.Int("repeats", 5, "number of repeated runs, each with a different seed")
	baseSeed := fs.Int64("seed", 1, "first run's seed; subsequent runs increment it")
	testDefaults := fs.Bool("test-defaults", true, "use circuit.TestDefaults() instead of PhysicalDefaults()")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "circopt.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *repeats <= 0 {
		return errors.New("circopt: benchmark requires -repeats > 0")
	}

	params, warnings, err := loadParams(*configPath)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w.String())
	}

	store, err := openStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = storage.CloseIfSupported(store) }()

	colorize := isatty.IsTerminal(os.Stdout.Fd())
	fitnesses := make([]float64, 0, *repeats)
	started := time.Now()

	for i := 0; i < *repeats; i++ {
		seed := *baseSeed + int64(i)
		req := circopt.RunRequest{
			N:                    params.NumUnits,
			Mode:                 params.Mode,
			Defaults:             defaultsFromFlag(*testDefaults),
			PopulationSize:       params.PopulationSize,
			Generations:          params.MaxIterations,
			TournamentK:          params.TournamentSize,
			CrossoverProb:        params.CrossoverProb,
			MutationProb:         params.MutationProb,
			CreepStep:            int(params.MutationStepSize),
			ContinuousCreepStep:  params.MutationStepSize,
			EliteCount:           params.EliteCount,
			ConvergenceThreshold: params.ConvergenceThreshold,
			StallGenerations:     params.StallGenerations,
			Seed:                 seed,
		}
		result, err := circopt.Run(ctx, store, req)
		if err != nil {
			return fmt.Errorf("circopt: benchmark run %d (seed %d): %w", i+1, seed, err)
		}
		fitnesses = append(fitnesses, result.BestFitness)
		line := fmt.Sprintf("run=%d/%d seed=%d best_fitness=%.6f", i+1, *repeats, seed, result.BestFitness)
		if colorize {
			line = "\033[36m" + line + "\033[0m"
		}
		fmt.Println(line)
	}

	mean, stddev, min, max := fitnessStats(fitnesses)
	fmt.Printf("benchmark complete runs=%s elapsed=%s mean=%.6f stddev=%.6f min=%.6f max=%.6f\n",
		humanize.Comma(int64(*repeats)), time.Since(started).Round(time.Millisecond), mean, stddev, min, max)
	return nil
}

func loadParams(path string) (config.Params, []config.Warning, error) {
	if path == "" {
		return config.Default(), nil, nil
	}
	return config.Load(path)
}

func writeDOTFile(path string, c *circuit.Circuit) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("circopt: writing dot: %w", err)
	}
	defer f.Close()
	return report.WriteDOT(f, c)
}

func parseIntList(s string) ([]int, error) {
	if s == "" {
		return nil, errors.New("value required")
	}
	fields := strings.Split(s, ",")
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseFloatList(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func fitnessStats(values []float64) (mean, stddev, min, max float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	min, max = values[0], values[0]
	total := 0.0
	for _, v := range values {
		total += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean = total / float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	stddev = math.Sqrt(variance)
	return mean, stddev, min, max
}
