// Package seed builds the initial GA population from a small family of
// deterministic topology templates, refined by bounded random edits and
// gated by the validator.
package seed

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"circopt/internal/circuit"
	"circopt/internal/validate"
)

// Warning is a non-fatal seeding diagnostic, surfaced when the requested
// population could not be filled — a seeder-starved run is treated as a
// warning, not a failure.
type Warning struct {
	Message string
}

// Genome pairs a discrete and continuous gene vector for the hybrid GA
// variant.
type Genome struct {
	D []int
	C []float64
}

// linearChainTemplate routes unit i's concentrate to unit i+1 (the last
// unit's to A-product), and unit i's tailings to the previous unit (a
// short upstream recycle), except unit 0's tailings which has nowhere
// upstream to go and drains to tailings directly.
func linearChainTemplate(n int) []int {
	d := make([]int, 2*n+1)
	d[0] = 0
	for i := 0; i < n; i++ {
		concDst := i + 1
		if i == n-1 {
			concDst = circuit.TerminalA(n)
		}
		tailDst := circuit.TerminalTailings(n)
		if i > 0 {
			tailDst = i - 1
		}
		d[1+2*i] = concDst
		d[2+2*i] = tailDst
	}
	return d
}

// alternatingTerminalsTemplate drains each unit's own concentrate
// directly to A-product or B-product, alternating by parity, while the
// tailings stream chains every unit downstream to the next, finally
// reaching the tailings sink from the last unit.
func alternatingTerminalsTemplate(n int) []int {
	d := make([]int, 2*n+1)
	d[0] = 0
	for i := 0; i < n; i++ {
		concDst := circuit.TerminalA(n)
		if i%2 == 1 {
			concDst = circuit.TerminalB(n)
		}
		tailDst := i + 1
		if i == n-1 {
			tailDst = circuit.TerminalTailings(n)
		}
		d[1+2*i] = concDst
		d[2+2*i] = tailDst
	}
	return d
}

// butterflyTemplate keeps the same conc-chases-the-next-unit backbone as
// linearChainTemplate (guaranteeing every unit stays reachable from
// feed_unit and every unit's concentrate chain eventually drains to
// A/B-product). Unit 0's tailings always drains straight to the
// tailings sink, anchoring global terminal coverage; for n > 2 every
// other unit's tailings crosses halfway across the unit index space
// instead of stepping one unit upstream, a distinct recycle shape from
// linearChainTemplate's adjacent recycle. Where that halfway partner is
// the unit's own concentrate destination, or for n <= 2, the tailings
// drains to the tailings sink instead.
func butterflyTemplate(n int) []int {
	d := make([]int, 2*n+1)
	d[0] = 0
	for i := 0; i < n; i++ {
		concDst := i + 1
		if i == n-1 {
			concDst = circuit.TerminalB(n)
		}
		tailDst := circuit.TerminalTailings(n)
		if i > 0 && n > 2 {
			partner := (i + n/2) % n
			if partner != i && partner != concDst {
				tailDst = partner
			}
		}
		d[1+2*i] = concDst
		d[2+2*i] = tailDst
	}
	return d
}

func templates(n int) [][]int {
	return [][]int{
		linearChainTemplate(n),
		alternatingTerminalsTemplate(n),
		butterflyTemplate(n),
	}
}

// randomEdit returns a copy of d with a handful of bounded random edits:
// each edit rewrites either the feed unit or one unit's concentrate or
// tailings destination to a uniformly random value in its legal range.
func randomEdit(d []int, n int, rng *rand.Rand, edits int) []int {
	out := append([]int(nil), d...)
	maxIdx := circuit.NodeCount(n) - 1
	for e := 0; e < edits; e++ {
		if rng.Intn(4) == 0 {
			out[0] = rng.Intn(n)
			continue
		}
		i := rng.Intn(n)
		if rng.Intn(2) == 0 {
			out[1+2*i] = rng.Intn(maxIdx + 1)
		} else {
			out[2+2*i] = rng.Intn(maxIdx + 1)
		}
	}
	return out
}

func keyOf(d []int) string {
	parts := make([]string, len(d))
	for i, v := range d {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// DiscretePopulation fills a population of popSize valid discrete
// genomes for n units: the three templates first (if they validate),
// then bounded random edits of a randomly chosen template, deduplicated
// by exact equality, until popSize individuals are found or 10*popSize
// attempts are exhausted. If the population could not be filled, it
// returns the smaller population actually achieved along with a
// Warning rather than failing the run.
func DiscretePopulation(n, popSize int, defaults circuit.Defaults, rng *rand.Rand) ([][]int, []Warning) {
	tmpl := templates(n)

	seen := make(map[string]bool, popSize)
	population := make([][]int, 0, popSize)
	add := func(d []int) bool {
		k := keyOf(d)
		if seen[k] {
			return false
		}
		seen[k] = true
		population = append(population, d)
		return true
	}

	for _, t := range tmpl {
		if len(population) >= popSize {
			break
		}
		if validate.Validate(n, t, defaults).Valid {
			add(t)
		}
	}

	maxAttempts := 10 * popSize
	attempts := 0
	for len(population) < popSize && attempts < maxAttempts {
		attempts++
		base := tmpl[rng.Intn(len(tmpl))]
		candidate := randomEdit(base, n, rng, 1+rng.Intn(3))
		if !validate.Validate(n, candidate, defaults).Valid {
			continue
		}
		add(candidate)
	}

	var warnings []Warning
	if len(population) < popSize {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("seeder starved: requested %d individuals, produced %d after %d attempts",
				popSize, len(population), attempts),
		})
	}
	return population, warnings
}

func randomContinuousVector(n int, rng *rand.Rand) []float64 {
	c := make([]float64, n)
	for j := range c {
		c[j] = rng.Float64()
	}
	return c
}

// ContinuousPopulation draws popSize i.i.d. uniform vectors of length n
// in [0,1] for the fixed discrete topology discrete, rejecting and
// redrawing any vector whose paired mass balance fails to converge
// under ValidateWithVolume — a draw in range is not automatically a
// draw the solver settles for, since convergence depends on the unit
// volumes beta implies. Mirrors DiscretePopulation's retry-until-filled
// loop, capped at 10*popSize attempts.
func ContinuousPopulation(n, popSize int, discrete []int, defaults circuit.Defaults, rng *rand.Rand) ([][]float64, []Warning) {
	pop := make([][]float64, 0, popSize)

	maxAttempts := 10 * popSize
	attempts := 0
	for len(pop) < popSize && attempts < maxAttempts {
		attempts++
		c := randomContinuousVector(n, rng)
		if !validate.ValidateWithVolume(n, discrete, c, defaults).Valid {
			continue
		}
		pop = append(pop, c)
	}

	var warnings []Warning
	if len(pop) < popSize {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("continuous seeding produced %d of %d requested individuals after %d attempts",
				len(pop), popSize, attempts),
		})
	}
	return pop, warnings
}

// HybridPopulation pairs each discrete individual DiscretePopulation
// produces with an independent uniform continuous vector, re-checking
// the combined genome against ValidateWithVolume before accepting it.
func HybridPopulation(n, popSize int, defaults circuit.Defaults, rng *rand.Rand) ([]Genome, []Warning) {
	discrete, warnings := DiscretePopulation(n, popSize, defaults, rng)

	pop := make([]Genome, 0, len(discrete))
	for _, d := range discrete {
		c := randomContinuousVector(n, rng)
		if !validate.ValidateWithVolume(n, d, c, defaults).Valid {
			continue
		}
		pop = append(pop, Genome{D: d, C: c})
	}

	if len(pop) < popSize {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("hybrid seeding produced %d of %d requested individuals", len(pop), popSize),
		})
	}
	return pop, warnings
}
