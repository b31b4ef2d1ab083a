package passes

import (
	"slices"

	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/errors"
	"github.com/matzehuels/qtranspile/pkg/transpiler"
)

// Unroller rewrites every gate whose name is outside Basis into basis gates.
// Measure, reset and barrier are left as they are.
//
// The deepest rule nesting reached is stored as transpiler.PropUnrollDepth,
// keeping a deeper value an earlier unroller left there.
type Unroller struct {
	Basis []string

	// MaxDepth bounds rule nesting; DefaultMaxDepth when zero. Exceeding it
	// is an INVALID_CONFIG error.
	MaxDepth int
}

// NewUnroller returns an unroller targeting basis.
func NewUnroller(basis ...string) *Unroller {
	return &Unroller{Basis: basis}
}

func (u *Unroller) Name() string          { return "unroller" }
func (u *Unroller) Kind() transpiler.Kind { return transpiler.Transformation }
func (u *Unroller) Requires() []string    { return nil }
func (u *Unroller) Preserves() []string   { return nil }

func (u *Unroller) Run(d *dag.DAGCircuit, props transpiler.PropertySet) (*dag.DAGCircuit, error) {
	if err := errors.ValidateBasis(u.Basis); err != nil {
		return nil, err
	}
	e := &expander{
		pass:     u.Name(),
		maxDepth: maxDepth(u.MaxDepth),
		match: func(_ *dag.DAGCircuit, n *dag.Node) bool {
			return !slices.Contains(u.Basis, n.Name())
		},
	}
	if err := e.run(d, 0); err != nil {
		return nil, err
	}
	props[transpiler.PropUnrollDepth] = max(props.Int(transpiler.PropUnrollDepth), e.deepest)
	return d, nil
}

// Decompose3Q rewrites gates on three or more qubits through their rules until
// none remain. Conditions carry over onto every produced gate.
type Decompose3Q struct {
	MaxDepth int
}

func (p *Decompose3Q) Name() string          { return "decompose_3q" }
func (p *Decompose3Q) Kind() transpiler.Kind { return transpiler.Transformation }
func (p *Decompose3Q) Requires() []string    { return nil }
func (p *Decompose3Q) Preserves() []string   { return nil }

func (p *Decompose3Q) Run(d *dag.DAGCircuit, _ transpiler.PropertySet) (*dag.DAGCircuit, error) {
	e := &expander{
		pass:     p.Name(),
		maxDepth: maxDepth(p.MaxDepth),
		match: func(_ *dag.DAGCircuit, n *dag.Node) bool {
			return len(n.Qargs) >= 3
		},
	}
	if err := e.run(d, 0); err != nil {
		return nil, err
	}
	return d, nil
}

func maxDepth(n int) int {
	if n <= 0 {
		return DefaultMaxDepth
	}
	return n
}
