// Package kinetics implements the first-order separation model for a
// single process unit: residence time from volume and throughput, and
// per-species concentrate recovery from residence time.
package kinetics

import "circopt/internal/material"

// minFlow is the numerical floor substituted for a vanishing total feed
// rate to keep residence time finite. Mirrors the reference simulator's
// division-by-zero guard.
const minFlow = 1e-10

// Rates holds the first-order rate constants (s⁻¹) for the three species,
// one set per unit.
type Rates struct {
	A float64
	B float64
	W float64
}

// Constants bundles the physical properties needed to turn a unit's
// volume and feed into a residence time.
type Constants struct {
	Density      float64 // rho, kg/m^3
	SolidsFrac   float64 // phi, fraction of volume occupied by solids
}

// Process computes a unit's concentrate and tailings flows from its feed,
// volume, rate constants, and the shared physical constants. It is a pure
// function: identical inputs always produce identical outputs, and NaN or
// infinite inputs propagate rather than being caught here.
func Process(feed material.Flow, volume float64, rates Rates, phys Constants) (conc, tail material.Flow) {
	total := feed.Total()
	if total < minFlow {
		total = minFlow
	}

	tau := phys.SolidsFrac * volume * phys.Density / total

	recoverA := recovery(rates.A, tau)
	recoverB := recovery(rates.B, tau)
	recoverW := recovery(rates.W, tau)

	conc.A = feed.A * recoverA
	conc.B = feed.B * recoverB
	conc.W = feed.W * recoverW

	tail = feed.Sub(conc)
	return conc, tail
}

// recovery computes the first-order concentrate recovery R = k*tau / (1 + k*tau).
func recovery(k, tau float64) float64 {
	kt := k * tau
	return kt / (1 + kt)
}

// ClampedVolume maps a normalized scale beta in [0,1] onto [min, max],
// clamping beta first so callers never have to sanitize it themselves.
func ClampedVolume(min, max, beta float64) float64 {
	if beta < 0 {
		beta = 0
	} else if beta > 1 {
		beta = 1
	}
	return min + (max-min)*beta
}
