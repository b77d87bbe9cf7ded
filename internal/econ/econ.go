// Package econ derives an economic value from a circuit's terminal
// product flows and total unit volume. It consolidates the scattered
// revenue/cost/penalty literals the original simulator kept in multiple
// constructors into one coefficient record passed by reference.
package econ

import (
	"math"

	"circopt/internal/material"
)

// Coefficients holds the per-kg revenue (or penalty, if negative) for
// each species in each product stream, plus the operating-cost model on
// total unit volume.
type Coefficients struct {
	// Revenue per kg of each species landing in the A-product stream.
	AInA float64
	BInA float64
	WInA float64

	// Revenue per kg of each species landing in the B-product stream.
	BInB float64
	AInB float64
	WInB float64

	// CostCoefficient scales total_volume^(2/3) in the operating-cost term.
	CostCoefficient float64
	// VolumePenaltyCoefficient scales the excess-volume penalty term.
	VolumePenaltyCoefficient float64
	// MaxTotalVolume is the threshold above which the excess-volume
	// penalty activates.
	MaxTotalVolume float64
}

// DefaultCoefficients mirrors the original simulator's main Economic
// constants block. The cross-stream coefficients (B's value in the
// A-stream, and A's value in the B-stream) default to zero, per
// DESIGN.md's recorded Open Question. internal/config has no key for
// them; they are non-zero only where a caller sets the Coefficients
// fields itself.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		AInA: 120,
		BInA: 0,
		WInA: -300,
		BInB: 80,
		AInB: 0,
		WInB: -25,

		CostCoefficient:          5,
		VolumePenaltyCoefficient: 1000,
		MaxTotalVolume:           150,
	}
}

// TestCoefficients mirrors the original simulator's Test constants block,
// used when a component is operating in test mode (see DESIGN.md).
func TestCoefficients() Coefficients {
	return Coefficients{
		AInA: 100,
		BInA: 0,
		WInA: 0,
		BInB: 100,
		AInB: 0,
		WInB: 0,

		CostCoefficient:          5,
		VolumePenaltyCoefficient: 1000,
		MaxTotalVolume:           150,
	}
}

// Evaluate derives the economic value of a circuit's steady-state
// terminal flows and total unit volume. It is a pure function of its
// arguments: no circuit or unit state is read.
func Evaluate(aProduct, bProduct, tailings material.Flow, totalVolume float64, coef Coefficients) float64 {
	revenue := aProduct.A*coef.AInA + aProduct.B*coef.BInA + aProduct.W*coef.WInA +
		bProduct.B*coef.BInB + bProduct.A*coef.AInB + bProduct.W*coef.WInB

	cost := math.Pow(totalVolume, 2.0/3.0) * coef.CostCoefficient
	if totalVolume > coef.MaxTotalVolume {
		excess := totalVolume - coef.MaxTotalVolume
		cost += coef.VolumePenaltyCoefficient * excess * excess
	}

	return revenue - cost
}
