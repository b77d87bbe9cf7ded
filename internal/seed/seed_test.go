package seed

import (
	"math/rand"
	"testing"

	"circopt/internal/circuit"
	"circopt/internal/validate"
)

func TestLinearChainTemplateValidForSeveralSizes(t *testing.T) {
	defaults := circuit.TestDefaults()
	for n := 1; n <= 6; n++ {
		d := linearChainTemplate(n)
		if len(d) != 2*n+1 {
			t.Fatalf("n=%d: length = %d, want %d", n, len(d), 2*n+1)
		}
		if res := validate.Validate(n, d, defaults); !res.Valid {
			t.Errorf("n=%d: linearChainTemplate invalid: %+v", n, res)
		}
	}
}

func TestAlternatingTerminalsTemplateValidForSeveralSizes(t *testing.T) {
	defaults := circuit.TestDefaults()
	for n := 1; n <= 6; n++ {
		d := alternatingTerminalsTemplate(n)
		if res := validate.Validate(n, d, defaults); !res.Valid {
			t.Errorf("n=%d: alternatingTerminalsTemplate invalid: %+v", n, res)
		}
	}
}

func TestButterflyTemplateValidForSeveralSizes(t *testing.T) {
	defaults := circuit.TestDefaults()
	for n := 1; n <= 6; n++ {
		d := butterflyTemplate(n)
		if res := validate.Validate(n, d, defaults); !res.Valid {
			t.Errorf("n=%d: butterflyTemplate invalid: %+v", n, res)
		}
	}
}

func TestDiscretePopulationFillsRequestedSize(t *testing.T) {
	defaults := circuit.TestDefaults()
	rng := rand.New(rand.NewSource(1))
	pop, warnings := DiscretePopulation(4, 12, defaults, rng)
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(pop) != 12 {
		t.Fatalf("len(pop) = %d, want 12", len(pop))
	}
	for _, d := range pop {
		if res := validate.Validate(4, d, defaults); !res.Valid {
			t.Errorf("seeded individual failed validation: %+v reason=%v", d, res.Reason)
		}
	}
}

func TestDiscretePopulationDeduplicates(t *testing.T) {
	defaults := circuit.TestDefaults()
	rng := rand.New(rand.NewSource(2))
	pop, _ := DiscretePopulation(3, 8, defaults, rng)
	seen := make(map[string]bool)
	for _, d := range pop {
		k := keyOf(d)
		if seen[k] {
			t.Fatalf("duplicate individual in population: %v", d)
		}
		seen[k] = true
	}
}

func TestContinuousPopulationShape(t *testing.T) {
	defaults := circuit.TestDefaults()
	rng := rand.New(rand.NewSource(3))
	discrete := linearChainTemplate(5)
	pop, warnings := ContinuousPopulation(5, 20, discrete, defaults, rng)
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(pop) != 20 {
		t.Fatalf("len(pop) = %d, want 20", len(pop))
	}
	for _, c := range pop {
		if len(c) != 5 {
			t.Fatalf("len(c) = %d, want 5", len(c))
		}
		for _, v := range c {
			if v < 0 || v >= 1 {
				t.Errorf("value %v out of [0,1)", v)
			}
		}
		if res := validate.ValidateWithVolume(5, discrete, c, defaults); !res.Valid {
			t.Errorf("seeded continuous vector failed validation: %+v reason=%v", c, res.Reason)
		}
	}
}

func TestContinuousPopulationRejectsNonConvergingDraws(t *testing.T) {
	// A topology with a tight recycle loop and a volume bound wide enough
	// ([2.5, 20] per circuit.TestDefaults) that some uniform draws push
	// residence times into a regime the fixed-iteration validator check
	// won't converge within, exercising the reject-and-retry path rather
	// than accepting every draw unconditionally.
	defaults := circuit.TestDefaults()
	rng := rand.New(rand.NewSource(6))
	discrete := butterflyTemplate(4)
	pop, _ := ContinuousPopulation(4, 10, discrete, defaults, rng)
	for _, c := range pop {
		if res := validate.ValidateWithVolume(4, discrete, c, defaults); !res.Valid {
			t.Errorf("accepted a non-validating continuous vector: %+v reason=%v", c, res.Reason)
		}
	}
}

func TestHybridPopulationPairsGenomes(t *testing.T) {
	defaults := circuit.TestDefaults()
	rng := rand.New(rand.NewSource(4))
	pop, _ := HybridPopulation(4, 10, defaults, rng)
	if len(pop) == 0 {
		t.Fatal("expected a non-empty hybrid population")
	}
	for _, g := range pop {
		if len(g.D) != 2*4+1 {
			t.Errorf("discrete length = %d, want %d", len(g.D), 2*4+1)
		}
		if len(g.C) != 4 {
			t.Errorf("continuous length = %d, want 4", len(g.C))
		}
		if res := validate.ValidateWithVolume(4, g.D, g.C, defaults); !res.Valid {
			t.Errorf("hybrid individual failed validation: %+v", res)
		}
	}
}

func TestDiscretePopulationStarvationWarnsAndShrinks(t *testing.T) {
	defaults := circuit.TestDefaults()
	rng := rand.New(rand.NewSource(5))
	// n=1 has only four valid genomes in total (the outlet pair must
	// include the tailings terminal to pass global coverage), so asking
	// for far more than that forces starvation.
	pop, warnings := DiscretePopulation(1, 50, defaults, rng)
	if len(pop) >= 50 {
		t.Fatalf("expected starvation, got a full population of %d", len(pop))
	}
	if len(warnings) == 0 {
		t.Error("expected a starvation warning")
	}
}
