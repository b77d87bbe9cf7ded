package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"circopt/internal/circuit"
	"circopt/internal/econ"
	"circopt/internal/kinetics"
	"circopt/internal/material"
	"circopt/internal/massbalance"
)

// Scenario 1: minimal one-unit circuit — feed enters the only unit,
// which routes concentrate to A-product and tailings to the tailings
// sink.
func TestValidateMinimalOneUnitCircuit(t *testing.T) {
	defaults := circuit.PhysicalDefaults()
	res := Validate(1, []int{0, 1, 3}, defaults)
	require.True(t, res.Valid, "expected valid, got %+v", res)

	c, err := circuit.FromGenome(1, []int{0, 1, 3}, nil, defaults)
	require.NoError(t, err)
	solveRes := massbalance.Solve(c, massbalance.DefaultTolerance, massbalance.DefaultMaxIterations)
	require.True(t, solveRes.Converged, "expected convergence, got %+v", solveRes)
	assert.LessOrEqual(t, solveRes.Iterations, 2, "expected convergence within 2 iterations for an acyclic single unit")
	assert.Zero(t, c.BProduct.Total(), "no unit routes to B-product, so B-product should be empty")
	assert.NotZero(t, c.AProduct.Total(), "expected mass at A-product")
	assert.NotZero(t, c.Tailings.Total(), "expected mass at tailings")
}

// Scenario 2: a unit that routes its concentrate to itself fails at the
// self-loop check, and the fitness adapter degrades to the sentinel.
func TestValidateSelfLoopRejected(t *testing.T) {
	res := Validate(1, []int{0, 0, 3}, circuit.PhysicalDefaults())
	require.False(t, res.Valid)
	assert.Equal(t, ReasonSelfLoop, res.Reason)
}

// Scenario 3: both units route only to A- and B-products, so tailings is
// never reachable — the global-terminal-coverage check rejects it, even
// though every individual unit happily reaches two distinct terminals.
func TestValidateMissingTailingsTerminal(t *testing.T) {
	res := Validate(2, []int{0, 2, 1, 2, 3}, circuit.PhysicalDefaults())
	require.False(t, res.Valid)
	assert.Equal(t, ReasonMissingGlobalTerminals, res.Reason)
}

// Scenario 4: a loop-free two-unit chain (unit 0 sends concentrate to
// A-product and tailings on to unit 1, which drains to both B-product
// and tailings) validates and converges, and
// its economic value is reproducible under fixed inputs.
func TestValidateConvergingRecycle(t *testing.T) {
	defaults := circuit.PhysicalDefaults()
	d := []int{0, 2, 1, 3, 4}
	res := Validate(2, d, defaults)
	require.True(t, res.Valid, "expected valid, got %+v", res)

	c1, err := circuit.FromGenome(2, d, nil, defaults)
	require.NoError(t, err)
	s1 := massbalance.Solve(c1, massbalance.DefaultTolerance, massbalance.DefaultMaxIterations)
	require.True(t, s1.Converged, "expected convergence, got %+v", s1)

	c2, err := circuit.FromGenome(2, d, nil, defaults)
	require.NoError(t, err)
	s2 := massbalance.Solve(c2, massbalance.DefaultTolerance, massbalance.DefaultMaxIterations)
	require.True(t, s2.Converged, "expected convergence, got %+v", s2)

	v1 := econ.Evaluate(c1.AProduct, c1.BProduct, c1.Tailings, c1.TotalVolume(), defaults.Econ)
	v2 := econ.Evaluate(c2.AProduct, c2.BProduct, c2.Tailings, c2.TotalVolume(), defaults.Econ)
	assert.Equal(t, v1, v2, "economic value not reproducible")
}

// Scenario 5: a structurally valid two-unit mutual recycle whose rate
// constants are driven so high that recovery per pass is within 1e-10
// of 1 — the relative-change metric needs close to 3e5 iterations to
// fall below tolerance, far beyond even the full solver's
// default cap, so the validator's 100-iteration budget reliably rejects
// it as diverged.
func TestValidatePathologicalRecycleDiverges(t *testing.T) {
	defaults := circuit.Defaults{
		Phys:          kinetics.Constants{Density: 3000, SolidsFrac: 0.1},
		Rates:         kinetics.Rates{A: 1e8, B: 1e8, W: 1e8},
		VolMin:        2.5,
		VolMax:        20,
		DefaultVolume: 10,
		ExternalFeed:  material.Flow{A: 10, B: 10, W: 10},
		Econ:          econ.TestCoefficients(),
	}

	// unit0 -> {unit1, A-product}; unit1 -> {unit0, tailings}. Each unit
	// reaches two distinct terminals (A and tailings) via the other, so
	// checks 1-8 all pass; only the solver fails to settle in time.
	d := []int{0, 1, 2, 0, 4}
	res := Validate(2, d, defaults)
	require.False(t, res.Valid)
	assert.Equal(t, ReasonDiverged, res.Reason)
}

func TestValidateLengthMismatch(t *testing.T) {
	res := Validate(2, []int{0, 1, 3}, circuit.PhysicalDefaults())
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonLength, res.Reason)
}

func TestValidateFeedOutOfRange(t *testing.T) {
	res := Validate(1, []int{5, 1, 3}, circuit.PhysicalDefaults())
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonFeedRange, res.Reason)
}

func TestValidateDuplicateOutletRejected(t *testing.T) {
	res := Validate(1, []int{0, 2, 2}, circuit.PhysicalDefaults())
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonDuplicateOutlet, res.Reason)
}

func TestValidateIsDeterministic(t *testing.T) {
	defaults := circuit.PhysicalDefaults()
	d := []int{0, 2, 1, 3, 4}
	first := Validate(2, d, defaults)
	second := Validate(2, d, defaults)
	assert.Equal(t, first, second, "Validate is not deterministic")
}

func TestValidateWithVolumeRejectsOutOfRangeBeta(t *testing.T) {
	res := ValidateWithVolume(1, []int{0, 1, 3}, []float64{1.2}, circuit.PhysicalDefaults())
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonBetaRange, res.Reason)
}

func TestValidateWithVolumeRejectsWrongLengthBeta(t *testing.T) {
	res := ValidateWithVolume(2, []int{0, 2, 1, 3, 4}, []float64{0.5}, circuit.PhysicalDefaults())
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonBetaLength, res.Reason)
}
