// Package massbalance implements the fixed-point successive-substitution
// solver that propagates three-component steady-state flows through an
// arbitrary directed (possibly cyclic) circuit graph.
package massbalance

import (
	"circopt/internal/circuit"
	"circopt/internal/material"
)

// convergenceFloor is the denominator floor used by the relative-change
// metric: max(P[i], convergenceFloor), so a near-zero flow doesn't blow
// up the relative error.
const convergenceFloor = 1e-12

// DefaultTolerance and DefaultMaxIterations are the solver's own defaults.
// The validator's convergence check uses the same tolerance with a much
// lower iteration cap.
const (
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 1000
)

// Result is the sum-typed outcome of a solve: Converged with the
// iteration count it took, or not Converged after exhausting maxIter.
type Result struct {
	Converged  bool
	Iterations int
}

// Solve runs Gauss-Seidel-style successive substitution on c until the
// largest relative change in any unit's inlet falls below tol, or
// maxIter iterations have run. It mutates c's unit feeds and terminal
// accumulators in place; on return, c.AProduct/BProduct/Tailings and each
// unit's Feed/Conc/Tail reflect the final iteration's state.
//
// The update order below is a contract, not an implementation detail: a
// destination's inlet is zeroed on the first stream routed to it in a
// given iteration and accumulated on every subsequent stream to the same
// destination that iteration, and feed_unit is treated as already
// written (by the external feed) before routing begins, so a recycle
// back into feed_unit adds to the external feed rather than replacing
// it. Reordering this produces a numerically different trajectory.
func Solve(c *circuit.Circuit, tol float64, maxIter int) Result {
	n := c.N()

	// Warm-start from whatever is already sitting in each unit's Feed
	// field (zero-valued for a freshly constructed circuit, whose
	// feed_unit then starts from the external feed alone). Re-solving
	// an already-converged circuit is then a one-iteration no-op instead
	// of restarting the substitution from scratch.
	inlet := make([]material.Flow, n)
	for i := 0; i < n; i++ {
		inlet[i] = c.Units[i].Feed
	}
	if inlet[c.FeedUnit] == (material.Flow{}) {
		inlet[c.FeedUnit] = c.ExternalFeed
	}

	for iter := 0; iter < maxIter; iter++ {
		prev := append([]material.Flow(nil), inlet...)

		for i := 0; i < n; i++ {
			c.Units[i].Feed = inlet[i]
			c.Units[i].Process(c.Phys)
		}

		next := make([]material.Flow, n)
		rewritten := make([]bool, n)
		next[c.FeedUnit] = c.ExternalFeed
		rewritten[c.FeedUnit] = true

		c.AProduct = material.Flow{}
		c.BProduct = material.Flow{}
		c.Tailings = material.Flow{}

		for i := 0; i < n; i++ {
			routeStream(c, next, rewritten, c.Units[i].ConcDst, c.Units[i].Conc)
			routeStream(c, next, rewritten, c.Units[i].TailDst, c.Units[i].Tail)
		}

		maxRel := 0.0
		for i := 0; i < n; i++ {
			if rel := material.MaxRelChange(next[i], prev[i], convergenceFloor); rel > maxRel {
				maxRel = rel
			}
		}

		inlet = next
		if maxRel < tol {
			return Result{Converged: true, Iterations: iter + 1}
		}
	}

	return Result{Converged: false, Iterations: maxIter}
}

func routeStream(c *circuit.Circuit, next []material.Flow, rewritten []bool, dst int, flow material.Flow) {
	n := c.N()
	switch {
	case dst == circuit.TerminalA(n):
		c.AProduct = c.AProduct.Add(flow)
	case dst == circuit.TerminalB(n):
		c.BProduct = c.BProduct.Add(flow)
	case dst == circuit.TerminalTailings(n):
		c.Tailings = c.Tailings.Add(flow)
	default:
		if !rewritten[dst] {
			rewritten[dst] = true
			next[dst] = material.Flow{}
		}
		next[dst] = next[dst].Add(flow)
	}
}
