package config

import (
	"strings"
	"testing"
)

func TestParseOverridesRecognizedKeys(t *testing.T) {
	text := `
# full run
random_seed = 42
num_units=8
mode = d
max_iterations = 500
population_size=100
elite_count = 2
tournament_size=4
crossover_probability = 0.9
mutation_probability=0.02
use_inversion = true
scaling_mutation_min = 0.75
log_file = /tmp/out.log
`
	params, warnings, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	if params.RandomSeed != 42 || params.NumUnits != 8 || params.Mode != "d" {
		t.Fatalf("unexpected params: %+v", params)
	}
	if params.MaxIterations != 500 || params.PopulationSize != 100 || params.EliteCount != 2 {
		t.Fatalf("unexpected params: %+v", params)
	}
	if params.TournamentSize != 4 || params.CrossoverProb != 0.9 || params.MutationProb != 0.02 {
		t.Fatalf("unexpected params: %+v", params)
	}
	if !params.UseInversion || params.ScalingMutationMin != 0.75 || params.LogFile != "/tmp/out.log" {
		t.Fatalf("unexpected params: %+v", params)
	}
}

func TestParseLeavesDefaultsForUnspecifiedKeys(t *testing.T) {
	params, _, err := Parse(strings.NewReader("num_units = 10\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defaults := Default()
	if params.NumUnits != 10 {
		t.Fatalf("expected num_units override, got %d", params.NumUnits)
	}
	if params.PopulationSize != defaults.PopulationSize || params.Mode != defaults.Mode {
		t.Fatalf("expected untouched defaults, got %+v", params)
	}
}

func TestParseWarnsOnUnknownKey(t *testing.T) {
	_, warnings, err := Parse(strings.NewReader("not_a_real_key = 1\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Detail, "unknown key") {
		t.Fatalf("expected one unknown-key warning, got %v", warnings)
	}
}

func TestParseWarnsOnUnparseableValueAndKeepsDefault(t *testing.T) {
	defaults := Default()
	params, warnings, err := Parse(strings.NewReader("population_size = not-a-number\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if params.PopulationSize != defaults.PopulationSize {
		t.Fatalf("expected default retained, got %d", params.PopulationSize)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Detail, "unparseable integer") {
		t.Fatalf("expected one unparseable-value warning, got %v", warnings)
	}
}

func TestParseWarnsOnInvalidModeAndKeepsDefault(t *testing.T) {
	defaults := Default()
	params, warnings, err := Parse(strings.NewReader("mode = z\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if params.Mode != defaults.Mode {
		t.Fatalf("expected default mode retained, got %q", params.Mode)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
}

func TestParseIgnoresCommentsAndBlankLines(t *testing.T) {
	text := "\n# comment only\n   \nnum_units = 3 # trailing comment\n"
	params, warnings, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if params.NumUnits != 3 {
		t.Fatalf("expected num_units=3, got %d", params.NumUnits)
	}
}

func TestParseWarnsOnMissingEquals(t *testing.T) {
	_, warnings, err := Parse(strings.NewReader("this line has no equals sign\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Detail, "missing '='") {
		t.Fatalf("expected missing-equals warning, got %v", warnings)
	}
}

func TestParseBooleanAcceptsOneAndZero(t *testing.T) {
	params, warnings, err := Parse(strings.NewReader("verbose = 1\nlog_results = 0\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if !params.Verbose || params.LogResults {
		t.Fatalf("unexpected params: %+v", params)
	}
}

func TestLoadMissingFileReturnsDefaultsWithWarning(t *testing.T) {
	params, warnings, err := Load("/nonexistent/path/to/config.txt")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning for missing file, got %v", warnings)
	}
	if params != Default() {
		t.Fatalf("expected Default() for missing file, got %+v", params)
	}
}
