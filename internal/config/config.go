// Package config loads GA run parameters from a key=value text file in
// the format of the original Config.h loader: one key=value pair per
// line, '#' starts a comment (to end of line), blank lines ignored.
// Unknown keys and unparseable values produce warnings and leave the
// affected field at its default; the file is optional.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Params holds every recognized key from the configuration table,
// already coerced to its Go type and defaulted where absent.
type Params struct {
	RandomSeed      int64
	NumUnits        int
	Mode            string
	MaxIterations   int
	PopulationSize  int
	EliteCount      int
	TournamentSize  int
	CrossoverProb   float64
	CrossoverPoints int

	MutationProb         float64
	MutationStepSize     float64
	AllowMutationWrap    bool
	UseInversion         bool
	InversionProbability float64

	UseScalingMutation  bool
	ScalingMutationProb float64
	ScalingMutationMin  float64
	ScalingMutationMax  float64

	ConvergenceThreshold float64
	StallGenerations     int

	Verbose    bool
	LogResults bool
	LogFile    string
}

// Default returns the parameter set used when no configuration file is
// given, or for any key a file leaves unspecified.
func Default() Params {
	return Params{
		RandomSeed:      -1,
		NumUnits:        6,
		Mode:            "h",
		MaxIterations:   200,
		PopulationSize:  60,
		EliteCount:      1,
		TournamentSize:  3,
		CrossoverProb:   0.8,
		CrossoverPoints: 2,

		MutationProb:         0.05,
		MutationStepSize:     1,
		AllowMutationWrap:    true,
		UseInversion:         false,
		InversionProbability: 0.1,

		UseScalingMutation:  false,
		ScalingMutationProb: 0.1,
		ScalingMutationMin:  0.8,
		ScalingMutationMax:  1.25,

		ConvergenceThreshold: 1e-6,
		StallGenerations:     30,

		Verbose:    false,
		LogResults: false,
		LogFile:    "",
	}
}

// Warning describes one malformed line or unknown key encountered while
// loading a configuration file — the Configuration-malformed taxonomy
// entry: reported to the diagnostic stream, never fatal.
type Warning struct {
	Line   int
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("config: line %d: %s", w.Line, w.Detail)
}

// Load reads a key=value configuration file, starting from Default()
// and overriding only the keys present and well-formed in path. A
// missing file is itself reported as a warning and Default() is
// returned unchanged, matching the original loader's "could not open,
// using default parameters" behavior.
func Load(path string) (Params, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return Default(), []Warning{{Detail: fmt.Sprintf("could not open %s, using default parameters", path)}}, nil
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads key=value pairs from r, the same way Load does, without
// touching the filesystem — used directly by tests and by callers that
// already have the configuration text in memory.
func Parse(r io.Reader) (Params, []Warning, error) {
	params := Default()
	var warnings []Warning

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			warnings = append(warnings, Warning{Line: lineNo, Detail: "missing '=' in line: " + line})
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])

		if w := applyKey(&params, key, val); w != "" {
			warnings = append(warnings, Warning{Line: lineNo, Detail: w})
		}
	}
	if err := scanner.Err(); err != nil {
		return params, warnings, err
	}
	return params, warnings, nil
}

// applyKey mutates p for one recognized key and returns "" on success,
// or a human-readable warning detail on an unknown key or unparseable
// value (the default is left untouched in both cases).
func applyKey(p *Params, key, val string) string {
	switch key {
	case "random_seed":
		return setInt64(&p.RandomSeed, key, val)
	case "num_units":
		return setInt(&p.NumUnits, key, val)
	case "mode":
		if val != "d" && val != "c" && val != "h" {
			return fmt.Sprintf("unrecognized mode %q, keeping default %q", val, p.Mode)
		}
		p.Mode = val
		return ""
	case "max_iterations":
		return setInt(&p.MaxIterations, key, val)
	case "population_size":
		return setInt(&p.PopulationSize, key, val)
	case "elite_count":
		return setInt(&p.EliteCount, key, val)
	case "tournament_size":
		return setInt(&p.TournamentSize, key, val)
	case "crossover_probability":
		return setFloat(&p.CrossoverProb, key, val)
	case "crossover_points":
		return setInt(&p.CrossoverPoints, key, val)
	case "mutation_probability":
		return setFloat(&p.MutationProb, key, val)
	case "mutation_step_size":
		return setFloat(&p.MutationStepSize, key, val)
	case "allow_mutation_wrapping":
		return setBool(&p.AllowMutationWrap, key, val)
	case "use_inversion":
		return setBool(&p.UseInversion, key, val)
	case "inversion_probability":
		return setFloat(&p.InversionProbability, key, val)
	case "use_scaling_mutation":
		return setBool(&p.UseScalingMutation, key, val)
	case "scaling_mutation_prob":
		return setFloat(&p.ScalingMutationProb, key, val)
	case "scaling_mutation_min":
		return setFloat(&p.ScalingMutationMin, key, val)
	case "scaling_mutation_max":
		return setFloat(&p.ScalingMutationMax, key, val)
	case "convergence_threshold":
		return setFloat(&p.ConvergenceThreshold, key, val)
	case "stall_generations":
		return setInt(&p.StallGenerations, key, val)
	case "verbose":
		return setBool(&p.Verbose, key, val)
	case "log_results":
		return setBool(&p.LogResults, key, val)
	case "log_file":
		p.LogFile = val
		return ""
	default:
		return fmt.Sprintf("unknown key %q, ignoring", key)
	}
}

func setInt(dst *int, key, val string) string {
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Sprintf("unparseable integer for %q: %q", key, val)
	}
	*dst = n
	return ""
}

func setInt64(dst *int64, key, val string) string {
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fmt.Sprintf("unparseable integer for %q: %q", key, val)
	}
	*dst = n
	return ""
}

func setFloat(dst *float64, key, val string) string {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Sprintf("unparseable number for %q: %q", key, val)
	}
	*dst = f
	return ""
}

func setBool(dst *bool, key, val string) string {
	switch val {
	case "true", "1":
		*dst = true
	case "false", "0":
		*dst = false
	default:
		return fmt.Sprintf("unparseable boolean for %q: %q", key, val)
	}
	return ""
}
