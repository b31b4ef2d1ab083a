package passes

import (
	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/errors"
)

// DefaultMaxDepth bounds rule expansion nesting.
const DefaultMaxDepth = 50

// expander replaces every node selected by match with its decomposition,
// expanding the replacement the same way before splicing it in.
type expander struct {
	pass     string
	match    func(d *dag.DAGCircuit, n *dag.Node) bool
	maxDepth int
	deepest  int
}

func (e *expander) run(d *dag.DAGCircuit, level int) error {
	if level > e.deepest {
		e.deepest = level
	}
	var targets []*dag.Node
	for n := range d.GateNodes() {
		if e.match(d, n) {
			targets = append(targets, n)
		}
	}
	for _, n := range targets {
		repl, err := e.expand(d, n, level+1)
		if err != nil {
			return err
		}
		if _, err := d.SubstituteNodeWithDAG(n.ID, repl); err != nil {
			return err
		}
	}
	return nil
}

// expand builds the one-level rule of n as a scratch DAG at the given level
// and expands it recursively.
func (e *expander) expand(d *dag.DAGCircuit, n *dag.Node, level int) (*dag.DAGCircuit, error) {
	if level > e.maxDepth {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"%s: expanding %s exceeds maximum depth %d; the decomposition rules may be recursive",
			e.pass, n.Name(), e.maxDepth)
	}
	def, ok := d.Definition(n.Name())
	if !ok {
		return nil, errors.Basis("no definition for %q", n.Name())
	}
	steps, err := def.Expand(n.Op.Params)
	if err != nil {
		return nil, err
	}

	scratch := dag.NewWithLibrary(d.Library())
	qreg := circuit.QuantumRegister("q", len(n.Qargs))
	if err := scratch.AddRegister(qreg); err != nil {
		return nil, err
	}
	creg := circuit.ClassicalRegister("c", len(n.Cargs))
	if creg.Size > 0 {
		if err := scratch.AddRegister(creg); err != nil {
			return nil, err
		}
	}
	for _, s := range steps {
		qargs, err := localBits(qreg, s.Qargs)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStructural, err, "rule of %s", n.Name())
		}
		cargs, err := localBits(creg, s.Cargs)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStructural, err, "rule of %s", n.Name())
		}
		if _, err := scratch.ApplyOperationBack(s.Op, qargs, cargs, nil); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStructural, err, "rule of %s", n.Name())
		}
	}
	if err := e.run(scratch, level); err != nil {
		return nil, err
	}
	return scratch, nil
}

func localBits(reg circuit.Register, idx []int) ([]circuit.Bit, error) {
	out := make([]circuit.Bit, len(idx))
	for i, j := range idx {
		if j < 0 || j >= reg.Size {
			return nil, errors.Structural("local index %d outside %s", j, reg)
		}
		out[i] = reg.Bit(j)
	}
	return out, nil
}
