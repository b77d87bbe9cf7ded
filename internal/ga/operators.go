package ga

import (
	"math"
	"math/rand"
	"sort"

	"circopt/internal/circuit"
	"circopt/internal/seed"
)

// tournamentSelect samples k indices uniformly with replacement from
// ranked and returns the fittest — a K-way tournament. ranked need not
// be sorted; no global ordering is required for this step.
func tournamentSelect(rng *rand.Rand, ranked []scoredGenome, k int) seed.Genome {
	best := ranked[rng.Intn(len(ranked))]
	for i := 1; i < k; i++ {
		candidate := ranked[rng.Intn(len(ranked))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return best.genome
}

// breedOne produces a single offspring from two parents: crossover
// (gated by CrossoverProb) followed by mutation, applied independently
// to whichever half(ves) of the paired genome this optimizer's variant
// evolves. The returned bool reports whether an actual crossover event
// fired on either half, for lineage classification ("crossover" vs.
// "mutation").
func (o *Optimizer) breedOne(p1, p2 seed.Genome, gen int, rng *rand.Rand) (seed.Genome, bool) {
	child := seed.Genome{}
	crossed := false

	if o.cfg.Variant == VariantDiscrete || o.cfg.Variant == VariantHybrid {
		d1, d2 := p1.D, p2.D
		if rng.Float64() < o.cfg.CrossoverProb {
			d1, d2 = discreteCrossover(p1.D, p2.D, gen, o.cfg.Generations, rng)
			crossed = true
		}
		d := pickOne(d1, d2, rng)
		modulus := circuit.NodeCount(o.cfg.N)
		d = discreteCreepMutation(d, modulus, o.cfg.MutationProb, o.cfg.CreepStep, rng)
		if rng.Float64() < o.cfg.InversionProb {
			d = inversionMutation(d, rng)
		}
		child.D = d
	} else {
		child.D = append([]int(nil), o.cfg.FixedDiscrete...)
	}

	if o.cfg.Variant == VariantContinuous || o.cfg.Variant == VariantHybrid {
		c1, c2 := p1.C, p2.C
		if rng.Float64() < o.cfg.CrossoverProb {
			c1, c2 = continuousCrossover(p1.C, p2.C, rng)
			crossed = true
		}
		c := pickOneFloat(c1, c2, rng)
		c = continuousCreepMutation(c, o.cfg.MutationProb, o.cfg.ContinuousCreepStep, rng)
		c = continuousScalingMutation(c, o.cfg.ScalingProb, o.cfg.ScaleMin, o.cfg.ScaleMax, rng)
		child.C = c
	} else if o.cfg.FixedContinuous != nil {
		child.C = append([]float64(nil), o.cfg.FixedContinuous...)
	}

	return child, crossed
}

func pickOne(a, b []int, rng *rand.Rand) []int {
	if rng.Intn(2) == 0 {
		return append([]int(nil), a...)
	}
	return append([]int(nil), b...)
}

func pickOneFloat(a, b []float64, rng *rand.Rand) []float64 {
	if rng.Intn(2) == 0 {
		return append([]float64(nil), a...)
	}
	return append([]float64(nil), b...)
}

// discreteCrossover implements adaptive multi-point discrete crossover:
// the number of cut points shrinks linearly with
// generation so late-run offspring inherit larger contiguous blocks
// from a single parent.
func discreteCrossover(a, b []int, gen, maxGen int, rng *rand.Rand) ([]int, []int) {
	l := len(a)
	maxCuts := int(math.Min(5, float64(l)/2))
	if maxCuts < 1 {
		maxCuts = 1
	}
	frac := 1.0
	if maxGen > 0 {
		frac = 1 - float64(gen)/float64(maxGen)
	}
	cuts := int(math.Floor(frac * float64(maxCuts)))
	if cuts < 1 {
		cuts = 1
	}
	if cuts > l-1 {
		cuts = l - 1
	}

	positions := make(map[int]struct{}, cuts)
	for len(positions) < cuts {
		positions[1+rng.Intn(l-1)] = struct{}{}
	}
	points := make([]int, 0, cuts+1)
	for p := range positions {
		points = append(points, p)
	}
	sort.Ints(points)
	points = append(points, l)

	c1 := make([]int, l)
	c2 := make([]int, l)
	start := 0
	fromA := true
	for _, end := range points {
		if fromA {
			copy(c1[start:end], a[start:end])
			copy(c2[start:end], b[start:end])
		} else {
			copy(c1[start:end], b[start:end])
			copy(c2[start:end], a[start:end])
		}
		start = end
		fromA = !fromA
	}
	return c1, c2
}

// continuousCrossover implements uniform continuous crossover: each
// position independently swaps between the two children with
// probability 0.5.
func continuousCrossover(a, b []float64, rng *rand.Rand) ([]float64, []float64) {
	c1 := append([]float64(nil), a...)
	c2 := append([]float64(nil), b...)
	for i := range c1 {
		if rng.Float64() < 0.5 {
			c1[i], c2[i] = c2[i], c1[i]
		}
	}
	return c1, c2
}

// discreteCreepMutation adds, per gene and independently with
// probability prob, an integer step uniform in [-step, +step], wrapped
// into [0, modulus) with proper handling of negative residues.
func discreteCreepMutation(d []int, modulus int, prob float64, step int, rng *rand.Rand) []int {
	out := append([]int(nil), d...)
	for i := range out {
		if rng.Float64() >= prob {
			continue
		}
		delta := rng.Intn(2*step+1) - step
		v := (out[i] + delta) % modulus
		if v < 0 {
			v += modulus
		}
		out[i] = v
	}
	return out
}

// inversionMutation picks positions a < b uniformly and reverses d[a:b].
func inversionMutation(d []int, rng *rand.Rand) []int {
	l := len(d)
	if l < 2 {
		return d
	}
	out := append([]int(nil), d...)
	a := rng.Intn(l)
	b := rng.Intn(l)
	if a == b {
		return out
	}
	if a > b {
		a, b = b, a
	}
	for i, j := a, b; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// continuousCreepMutation steps each gene, independently with
// probability prob, by ±u·step (u uniform in [0,1), sign uniform),
// clamped to [0,1].
func continuousCreepMutation(c []float64, prob, step float64, rng *rand.Rand) []float64 {
	out := append([]float64(nil), c...)
	for i := range out {
		if rng.Float64() >= prob {
			continue
		}
		u := rng.Float64()
		sign := 1.0
		if rng.Float64() < 0.5 {
			sign = -1.0
		}
		out[i] = clamp01(out[i] + sign*u*step)
	}
	return out
}

// continuousScalingMutation, with probability prob, multiplies one
// randomly chosen gene by a factor drawn uniformly from [scaleMin,
// scaleMax], clamped to [0,1].
func continuousScalingMutation(c []float64, prob, scaleMin, scaleMax float64, rng *rand.Rand) []float64 {
	if len(c) == 0 || rng.Float64() >= prob {
		return c
	}
	out := append([]float64(nil), c...)
	idx := rng.Intn(len(out))
	factor := scaleMin + rng.Float64()*(scaleMax-scaleMin)
	out[idx] = clamp01(out[idx] * factor)
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
