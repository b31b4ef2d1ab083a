// Package dot renders circuit DAGs and coupling maps as Graphviz diagrams.
//
// # Overview
//
// [CircuitDOT] draws a [dag.DAGCircuit] left to right: one ellipse per wire
// boundary, one box per operation, and one edge per wire segment labelled
// with the wire it carries. [CouplingDOT] draws a device's physical qubits
// and their couplings, optionally annotated with the virtual qubit a layout
// places on each.
//
// # Usage
//
//	src := dot.CircuitDOT(d, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// [dag.DAGCircuit]: github.com/matzehuels/qtranspile/pkg/dag.DAGCircuit
package dot
