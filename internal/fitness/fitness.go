// Package fitness bridges a genome to a scalar score: construct a
// circuit, gate it through the topology/convergence validator, solve it,
// and evaluate its economics. It is the only place the optimizer talks
// to the rest of the domain.
package fitness

import (
	"circopt/internal/circuit"
	"circopt/internal/econ"
	"circopt/internal/massbalance"
	"circopt/internal/validate"
)

// Sentinel is the score assigned to any genome that fails length
// checking, construction, validation, or mass-balance convergence. It is
// large and negative enough that a valid candidate, however poor, always
// outranks it.
const Sentinel = -1e12

// Score evaluates the discrete genome d (and, if non-nil, the continuous
// genome beta) for a circuit of n units against defaults, returning the
// economic value at steady state or Sentinel on any failure.
//
// Score is a pure function of its arguments: two calls with the same
// (n, d, beta, defaults) always return the same value, and no state
// outside the call persists between invocations.
func Score(n int, d []int, beta []float64, defaults circuit.Defaults) float64 {
	var valid bool
	if beta != nil {
		valid = validate.ValidateWithVolume(n, d, beta, defaults).Valid
	} else {
		valid = validate.Validate(n, d, defaults).Valid
	}
	if !valid {
		return Sentinel
	}

	c, err := circuit.FromGenome(n, d, beta, defaults)
	if err != nil {
		return Sentinel
	}

	res := massbalance.Solve(c, massbalance.DefaultTolerance, massbalance.DefaultMaxIterations)
	if !res.Converged {
		return Sentinel
	}

	return econ.Evaluate(c.AProduct, c.BProduct, c.Tailings, c.TotalVolume(), c.Econ)
}
