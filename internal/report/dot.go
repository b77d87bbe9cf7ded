package report

import (
	"fmt"
	"io"
	"strings"

	"circopt/internal/circuit"
)

// WriteDOT emits the circuit graph in Graphviz DOT syntax: one labeled
// node per process unit, one labeled edge per outlet (to another unit
// or to one of the three fixed-shape terminal sinks). Hand-written
// against the textual DOT grammar directly.
func WriteDOT(w io.Writer, c *circuit.Circuit) error {
	n := c.N()
	var b strings.Builder

	b.WriteString("digraph circuit {\n")
	b.WriteString("  rankdir=LR;\n")

	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "  unit%d [shape=box, label=%q];\n", i, fmt.Sprintf("unit %d\\nvol=%.2f", i, c.Units[i].Volume))
	}
	fmt.Fprintf(&b, "  termA [shape=doublecircle, label=\"A-product\"];\n")
	fmt.Fprintf(&b, "  termB [shape=doublecircle, label=\"B-product\"];\n")
	fmt.Fprintf(&b, "  termTail [shape=doublecircle, label=\"tailings\"];\n")

	fmt.Fprintf(&b, "  feed [shape=plaintext, label=\"feed\"];\n")
	fmt.Fprintf(&b, "  feed -> unit%d;\n", c.FeedUnit)

	for i := 0; i < n; i++ {
		u := c.Units[i]
		fmt.Fprintf(&b, "  unit%d -> %s [label=\"conc\"];\n", i, nodeName(n, u.ConcDst))
		fmt.Fprintf(&b, "  unit%d -> %s [label=\"tail\"];\n", i, nodeName(n, u.TailDst))
	}

	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func nodeName(n, dst int) string {
	switch dst {
	case circuit.TerminalA(n):
		return "termA"
	case circuit.TerminalB(n):
		return "termB"
	case circuit.TerminalTailings(n):
		return "termTail"
	default:
		return fmt.Sprintf("unit%d", dst)
	}
}
