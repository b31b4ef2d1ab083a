package passes

import (
	"slices"

	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/transpiler"
)

// CXCancellation removes pairs of unconditioned cx gates with the same
// control and target that follow each other directly on both wires.
type CXCancellation struct{}

func (CXCancellation) Name() string          { return "cx_cancellation" }
func (CXCancellation) Kind() transpiler.Kind { return transpiler.Transformation }
func (CXCancellation) Requires() []string    { return nil }
func (CXCancellation) Preserves() []string   { return nil }

func (CXCancellation) Run(d *dag.DAGCircuit, _ transpiler.PropertySet) (*dag.DAGCircuit, error) {
	for n := range d.NamedNodes("cx") {
		if n.Condition != nil || len(n.Qargs) != 2 {
			continue
		}
		next := d.NextOnWire(n.ID, n.Qargs[0])
		if next == nil || next != d.NextOnWire(n.ID, n.Qargs[1]) {
			continue
		}
		if next.Name() != "cx" || next.Condition != nil || !slices.Equal(next.Qargs, n.Qargs) {
			continue
		}
		if err := d.RemoveOpNode(n.ID); err != nil {
			return nil, err
		}
		if err := d.RemoveOpNode(next.ID); err != nil {
			return nil, err
		}
	}
	return d, nil
}
