// Package validate decides whether a discrete (and optionally continuous)
// genome describes a structurally and physically realizable circuit,
// following nine ordered checks.
package validate

import (
	"fmt"
	"math"

	"circopt/internal/circuit"
	"circopt/internal/massbalance"
)

// Reason names which check rejected a genome. The empty Reason means the
// genome passed every check.
type Reason string

const (
	ReasonNone                   Reason = ""
	ReasonLength                 Reason = "length_mismatch"
	ReasonFeedRange              Reason = "feed_out_of_range"
	ReasonOutletRange            Reason = "outlet_out_of_range"
	ReasonSelfLoop               Reason = "self_loop"
	ReasonDuplicateOutlet        Reason = "duplicate_outlet"
	ReasonUnreachable            Reason = "unit_unreachable"
	ReasonMissingTerminalPair    Reason = "missing_per_unit_terminal_coverage"
	ReasonMissingGlobalTerminals Reason = "missing_global_terminal_coverage"
	ReasonDiverged               Reason = "mass_balance_diverged"
	ReasonBetaLength             Reason = "beta_length_mismatch"
	ReasonBetaRange              Reason = "beta_out_of_range"
)

// validationTolerance and validationMaxIter use the solver's default
// tolerance with a more modest iteration cap (100 rather than the
// solver's default 1000) for the convergence check.
const (
	validationTolerance = 1e-6
	validationMaxIter   = 100
)

// Result is the sum-typed outcome of validation: Valid, or Invalid with a
// Reason and a human-readable Detail. It is a data value, never an error
// propagated by control flow — callers inspect Valid and move on.
type Result struct {
	Valid  bool
	Reason Reason
	Detail string
}

func ok() Result { return Result{Valid: true} }

func fail(reason Reason, detail string) Result {
	return Result{Valid: false, Reason: reason, Detail: detail}
}

type outlets struct {
	conc int
	tail int
}

// Validate runs checks 1-9 against a discrete genome d for a circuit of n
// units, short-circuiting on the first failure. defaults supplies the
// physical/economic constants needed to run the mass-balance convergence
// check (check 9), using each unit's default volume.
func Validate(n int, d []int, defaults circuit.Defaults) Result {
	return validate(n, d, nil, defaults)
}

func validate(n int, d []int, beta []float64, defaults circuit.Defaults) Result {
	expected := 2*n + 1
	if len(d) != expected {
		return fail(ReasonLength, fmt.Sprintf("expected length %d, got %d", expected, len(d)))
	}

	feedUnit := d[0]
	if feedUnit < 0 || feedUnit >= n {
		return fail(ReasonFeedRange, fmt.Sprintf("feed unit %d not in [0,%d)", feedUnit, n))
	}

	maxIdx := circuit.NodeCount(n) - 1
	dest := make([]outlets, n)
	for i := 0; i < n; i++ {
		conc := d[1+2*i]
		tail := d[2+2*i]
		if conc < 0 || conc > maxIdx || tail < 0 || tail > maxIdx {
			return fail(ReasonOutletRange, fmt.Sprintf("unit %d outlets (%d,%d) not in [0,%d]", i, conc, tail, maxIdx))
		}
		if conc == i || tail == i {
			return fail(ReasonSelfLoop, fmt.Sprintf("unit %d routes to itself", i))
		}
		if conc == tail {
			return fail(ReasonDuplicateOutlet, fmt.Sprintf("unit %d has identical concentrate/tailings destinations", i))
		}
		dest[i] = outlets{conc: conc, tail: tail}
	}

	reached := reachableUnits(n, dest, feedUnit)
	for i := 0; i < n; i++ {
		if !reached[i] {
			return fail(ReasonUnreachable, fmt.Sprintf("unit %d is not reachable from feed unit %d", i, feedUnit))
		}
	}

	var globalMask uint8
	for i := 0; i < n; i++ {
		mask := terminalMask(n, dest, i)
		globalMask |= mask
		if popcount(mask) < 2 {
			return fail(ReasonMissingTerminalPair, fmt.Sprintf("unit %d reaches fewer than 2 distinct terminals", i))
		}
	}

	const (
		maskA        uint8 = 1 << 0
		maskB        uint8 = 1 << 1
		maskTailings uint8 = 1 << 2
	)
	if globalMask&(maskA|maskB) == 0 {
		return fail(ReasonMissingGlobalTerminals, "no unit reaches a product stream")
	}
	if globalMask&maskTailings == 0 {
		return fail(ReasonMissingGlobalTerminals, "no unit reaches tailings")
	}

	c, err := circuit.FromGenome(n, d, beta, defaults)
	if err != nil {
		return fail(ReasonOutletRange, err.Error())
	}
	if res := massbalance.Solve(c, validationTolerance, validationMaxIter); !res.Converged {
		return fail(ReasonDiverged, fmt.Sprintf("mass balance did not converge within %d iterations", validationMaxIter))
	}

	return ok()
}

// ValidateWithVolume extends Validate with the continuous-parameter
// check: beta must have length n and every entry must be a finite
// value in [0,1]. The mass-balance convergence
// check then runs against the circuit built with beta's unit volumes,
// not the defaults' — a unit's residence time, and hence how fast the
// solver settles, depends on its actual scaled volume.
func ValidateWithVolume(n int, d []int, beta []float64, defaults circuit.Defaults) Result {
	if len(beta) != n {
		return fail(ReasonBetaLength, fmt.Sprintf("expected beta length %d, got %d", n, len(beta)))
	}
	for i, b := range beta {
		if math.IsNaN(b) || b < 0 || b > 1 {
			return fail(ReasonBetaRange, fmt.Sprintf("beta[%d] = %v not in [0,1]", i, b))
		}
	}
	return validate(n, d, beta, defaults)
}

// reachableUnits performs a forward traversal from feedUnit following
// both outlets of every visited unit, stopping recursion at terminals. A
// fresh local visited set is allocated per call rather than a mutable
// mark field on Unit — see DESIGN.md's Open Question decision.
func reachableUnits(n int, dest []outlets, feedUnit int) []bool {
	visited := make([]bool, n)
	stack := []int{feedUnit}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[u] {
			continue
		}
		visited[u] = true
		for _, next := range [2]int{dest[u].conc, dest[u].tail} {
			if next < n && !visited[next] {
				stack = append(stack, next)
			}
		}
	}
	return visited
}

// terminalMask runs a breadth-first traversal from unit u, following both
// outlets of every visited non-terminal (terminals are absorbing), and
// returns a bitmask of which of the three terminal sinks were touched.
// The traversal early-exits once two distinct terminals have been seen,
// since that's all check 7 needs to know.
func terminalMask(n int, dest []outlets, u int) uint8 {
	const (
		maskA        uint8 = 1 << 0
		maskB        uint8 = 1 << 1
		maskTailings uint8 = 1 << 2
	)

	visited := make([]bool, n)
	queue := []int{u}
	visited[u] = true

	var mask uint8
	for len(queue) > 0 && popcount(mask) < 2 {
		curr := queue[0]
		queue = queue[1:]
		for _, next := range [2]int{dest[curr].conc, dest[curr].tail} {
			switch {
			case next == circuit.TerminalA(n):
				mask |= maskA
			case next == circuit.TerminalB(n):
				mask |= maskB
			case next == circuit.TerminalTailings(n):
				mask |= maskTailings
			default:
				if next < n && !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
			if popcount(mask) >= 2 {
				break
			}
		}
	}
	return mask
}

func popcount(mask uint8) int {
	count := 0
	for mask != 0 {
		count += int(mask & 1)
		mask >>= 1
	}
	return count
}
