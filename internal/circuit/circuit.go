// Package circuit owns the flat arena-of-units graph a genome decodes
// into: n process units plus three virtual terminal sinks (A-product,
// B-product, tailings) addressed by the index range [n, n+3).
package circuit

import (
	"fmt"

	"circopt/internal/econ"
	"circopt/internal/kinetics"
	"circopt/internal/material"
)

// Unit is one separation cell: its two outlet destinations, its volume
// geometry, its rate constants, and the feed/product flows computed by
// the most recent solver iteration.
type Unit struct {
	ConcDst int
	TailDst int

	VolMin  float64
	VolMax  float64
	Volume  float64
	Rates   kinetics.Rates

	Feed material.Flow
	Conc material.Flow
	Tail material.Flow
}

// SetVolume maps beta in [0,1] onto [VolMin, VolMax], clamping beta first.
func (u *Unit) SetVolume(beta float64) {
	u.Volume = kinetics.ClampedVolume(u.VolMin, u.VolMax, beta)
}

// Process runs the unit's kinetics on its current Feed and stores the
// resulting Conc/Tail flows.
func (u *Unit) Process(phys kinetics.Constants) {
	u.Conc, u.Tail = kinetics.Process(u.Feed, u.Volume, u.Rates, phys)
}

// Circuit is n units, the feed entry point, external feed rates, the
// three terminal-sink accumulators, and the economic/physical constants
// shared by every unit.
type Circuit struct {
	Units    []Unit
	FeedUnit int

	ExternalFeed material.Flow

	AProduct material.Flow
	BProduct material.Flow
	Tailings material.Flow

	Phys kinetics.Constants
	Econ econ.Coefficients
}

// N returns the number of process units (not counting terminals).
func (c *Circuit) N() int { return len(c.Units) }

// TerminalA, TerminalB, and TerminalTailings return the fixed node indices
// of the three terminal sinks for a circuit of n units.
func TerminalA(n int) int        { return n }
func TerminalB(n int) int        { return n + 1 }
func TerminalTailings(n int) int { return n + 2 }
func NodeCount(n int) int        { return n + 3 }

// IsTerminal reports whether dst addresses one of the three terminal
// sinks for a circuit of n units.
func IsTerminal(n, dst int) bool {
	return dst >= n && dst < n+3
}

// Defaults bundles the physical, kinetic, volume, feed, and economic
// constants needed to build a Circuit from a genome. Two named bundles
// are provided: TestDefaults (the original source's Test constants
// block, 5 m^3 default volume) and PhysicalDefaults (its main Circuit
// constants block, 10 m^3 default volume) — see DESIGN.md's Open
// Question on the two conflicting literal sets.
type Defaults struct {
	Phys          kinetics.Constants
	Rates         kinetics.Rates
	VolMin        float64
	VolMax        float64
	DefaultVolume float64
	ExternalFeed  material.Flow
	Econ          econ.Coefficients
}

func TestDefaults() Defaults {
	return Defaults{
		Phys:          kinetics.Constants{Density: 3000, SolidsFrac: 0.1},
		Rates:         kinetics.Rates{A: 0.008, B: 0.004, W: 0.0005},
		VolMin:        2.5,
		VolMax:        20,
		DefaultVolume: 5,
		ExternalFeed:  material.Flow{A: 10, B: 10, W: 10},
		Econ:          econ.TestCoefficients(),
	}
}

func PhysicalDefaults() Defaults {
	return Defaults{
		Phys:          kinetics.Constants{Density: 3000, SolidsFrac: 0.1},
		Rates:         kinetics.Rates{A: 0.008, B: 0.004, W: 0.0005},
		VolMin:        2.5,
		VolMax:        20,
		DefaultVolume: 10,
		ExternalFeed:  material.Flow{A: 8, B: 12, W: 80},
		Econ:          econ.DefaultCoefficients(),
	}
}

// ConstructError reports why a discrete genome could not be turned into a
// Circuit. It is a data-level result, never a panic: callers that see it
// should treat the genome as invalid, not as a program bug.
type ConstructError struct {
	Reason string
}

func (e *ConstructError) Error() string {
	return fmt.Sprintf("invalid genome: %s", e.Reason)
}

// FromGenome decodes a discrete gene vector D (length 2n+1) into a
// Circuit of n units, optionally scaling each unit's volume by the
// matching entry of beta (length n, each in [0,1]). It performs only the
// structural checks construction itself cannot proceed without: length,
// feed-unit range, and outlet range. Self-loops, duplicate outlets,
// reachability, and terminal coverage are the validator's job (see
// internal/validate), not construction's.
func FromGenome(n int, d []int, beta []float64, defaults Defaults) (*Circuit, error) {
	expected := 2*n + 1
	if len(d) != expected {
		return nil, &ConstructError{Reason: fmt.Sprintf("length mismatch: expected %d, got %d", expected, len(d))}
	}

	feedUnit := d[0]
	if feedUnit < 0 || feedUnit >= n {
		return nil, &ConstructError{Reason: fmt.Sprintf("feed destination %d out of range [0,%d)", feedUnit, n)}
	}

	maxIdx := NodeCount(n) - 1
	units := make([]Unit, n)
	for i := 0; i < n; i++ {
		conc := d[1+2*i]
		tail := d[2+2*i]
		if conc < 0 || conc > maxIdx {
			return nil, &ConstructError{Reason: fmt.Sprintf("unit %d concentrate destination %d out of range [0,%d]", i, conc, maxIdx)}
		}
		if tail < 0 || tail > maxIdx {
			return nil, &ConstructError{Reason: fmt.Sprintf("unit %d tailings destination %d out of range [0,%d]", i, tail, maxIdx)}
		}
		units[i] = Unit{
			ConcDst: conc,
			TailDst: tail,
			VolMin:  defaults.VolMin,
			VolMax:  defaults.VolMax,
			Volume:  defaults.DefaultVolume,
			Rates:   defaults.Rates,
		}
	}

	c := &Circuit{
		Units:        units,
		FeedUnit:     feedUnit,
		ExternalFeed: defaults.ExternalFeed,
		Phys:         defaults.Phys,
		Econ:         defaults.Econ,
	}

	if beta != nil {
		if len(beta) != n {
			return nil, &ConstructError{Reason: fmt.Sprintf("beta length mismatch: expected %d, got %d", n, len(beta))}
		}
		for i, b := range beta {
			c.Units[i].SetVolume(b)
		}
	}

	return c, nil
}

// TotalVolume sums every unit's current volume.
func (c *Circuit) TotalVolume() float64 {
	total := 0.0
	for _, u := range c.Units {
		total += u.Volume
	}
	return total
}
