package dot

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/coupling"
	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/layout"
	"github.com/matzehuels/qtranspile/pkg/qasm"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed adds node IDs and operation parameters to labels.
	// When false, operations show only their name.
	Detailed bool
}

// CircuitDOT converts a circuit DAG to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Conditioned operations are drawn dashed; classical wire segments are grey.
func CircuitDOT(d *dag.DAGCircuit, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	for _, w := range d.Wires() {
		fmt.Fprintf(&buf, "  %s [label=%q, shape=ellipse];\n", nodeName(d.InputNode(w)), w.String())
	}
	for n := range d.OpNodes() {
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeName(n), strings.Join(opAttrs(n, opts.Detailed), ", "))
	}
	for _, w := range d.Wires() {
		fmt.Fprintf(&buf, "  %s [label=%q, shape=ellipse, style=dotted];\n", nodeName(d.OutputNode(w)), w.String())
	}

	buf.WriteString("\n")
	for _, w := range d.Wires() {
		color := "black"
		if r, ok := d.Register(w.Register); ok && !r.IsQuantum() {
			color = "grey"
		}
		for n := d.InputNode(w); n != nil && n.Type != dag.NodeOut; {
			next := d.NextOnWire(n.ID, w)
			if next == nil {
				break
			}
			fmt.Fprintf(&buf, "  %s -> %s [label=%q, color=%s];\n", nodeName(n), nodeName(next), w.String(), color)
			n = next
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(n *dag.Node) string {
	return fmt.Sprintf("n%d", n.ID)
}

func opLabel(n *dag.Node, detailed bool) string {
	if !detailed {
		return n.Name()
	}
	label := qasm.FormatInstruction(circuit.Instruction{
		Op:        n.Op,
		Qargs:     n.Qargs,
		Cargs:     n.Cargs,
		Condition: n.Condition,
	})
	return fmt.Sprintf("#%d\n%s", n.ID, label)
}

func opAttrs(n *dag.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", opLabel(n, detailed))}
	if n.Condition != nil {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	switch n.Name() {
	case "measure", "reset":
		attrs = append(attrs, "fillcolor=lightgrey")
	case "barrier":
		attrs = append(attrs, "shape=point", "width=0.15")
	}
	return attrs
}

// CouplingDOT converts a coupling map to an undirected Graphviz graph. When l
// is non-nil each physical qubit is labelled with the virtual qubit placed on
// it; unplaced qubits are drawn dashed.
func CouplingDOT(cm *coupling.Map, l *layout.Layout) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, p := range cm.PhysicalQubits() {
		label := fmt.Sprint(p)
		var attrs []string
		if l != nil {
			if v, ok := l.Virtual(p); ok {
				label += "\n" + v.String()
			} else {
				attrs = append(attrs, "style=\"filled,dashed\"")
			}
		}
		attrs = append([]string{fmt.Sprintf("label=%q", label)}, attrs...)
		fmt.Fprintf(&buf, "  p%d [%s];\n", p, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, p := range cm.PhysicalQubits() {
		for _, n := range cm.Neighbors(p) {
			if p < n {
				fmt.Fprintf(&buf, "  p%d -- p%d;\n", p, n)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}
