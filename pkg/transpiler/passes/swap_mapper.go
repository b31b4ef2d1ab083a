package passes

import (
	"fmt"

	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/coupling"
	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/errors"
	"github.com/matzehuels/qtranspile/pkg/layout"
	"github.com/matzehuels/qtranspile/pkg/transpiler"
)

// AncillaRegister names the register SwapMapper adds for device qubits the
// circuit does not use.
const AncillaRegister = "ancilla"

// SwapMapper routes a DAG onto a coupling map. Layer by layer, every
// two-qubit gate whose qubits are not adjacent is preceded by swaps along a
// shortest path that bring its first qubit next to its second. The heuristic
// is greedy and deterministic; it does not look ahead.
//
// The output keeps the input's registers, plus an ancilla register when the
// device is larger than the circuit. Output wire w stands for physical qubit
// Layout(w) of the initial layout, which is stored as transpiler.PropLayout.
// The layout after the last swap is stored as transpiler.PropFinalLayout and
// the number of inserted swaps as transpiler.PropSwapCount.
type SwapMapper struct {
	Coupling *coupling.Map

	// InitialLayout places the circuit's qubits; identity over the quantum
	// registers in declaration order when nil. It is not modified.
	InitialLayout *layout.Layout

	// SwapGate names the inserted operation; "swap" when empty.
	SwapGate string
}

func (m *SwapMapper) Name() string          { return "swap_mapper" }
func (m *SwapMapper) Kind() transpiler.Kind { return transpiler.Transformation }
func (m *SwapMapper) Requires() []string    { return nil }
func (m *SwapMapper) Preserves() []string   { return nil }

// router holds the state of one SwapMapper run.
type router struct {
	cm      *coupling.Map
	out     *dag.DAGCircuit
	initial *layout.Layout
	current *layout.Layout
	swap    circuit.Operation
	swaps   int
}

func (m *SwapMapper) Run(d *dag.DAGCircuit, props transpiler.PropertySet) (*dag.DAGCircuit, error) {
	r, err := m.newRouter(d)
	if err != nil {
		return nil, err
	}
	for l := range d.SerialLayers() {
		if err := r.routeLayer(d, l); err != nil {
			return nil, err
		}
	}
	props[transpiler.PropSwapCount] = r.swaps
	props[transpiler.PropLayout] = r.initial.Copy()
	props[transpiler.PropFinalLayout] = r.current.Copy()
	return r.out, nil
}

func (m *SwapMapper) newRouter(d *dag.DAGCircuit) (*router, error) {
	cm := m.Coupling
	if cm == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "swap_mapper: no coupling map")
	}
	if d.Width() > cm.Size() {
		return nil, errors.Structural("circuit needs %d qubits, device has %d", d.Width(), cm.Size())
	}

	var initial *layout.Layout
	if m.InitialLayout != nil {
		initial = m.InitialLayout.Copy()
	} else {
		initial = layout.FromRegisters(d.QuantumRegisters()...)
	}
	for _, v := range d.QuantumWires() {
		p, ok := initial.Physical(v)
		if !ok {
			return nil, errors.Structural("initial layout does not place %s", v)
		}
		if !cm.Contains(p) {
			return nil, errors.Structural("%s is placed on physical %d, which is not on the device", v, p)
		}
	}

	out := dag.NewWithLibrary(d.Library().Clone())
	out.Name = d.Name
	for _, reg := range d.Registers() {
		if err := out.AddRegister(reg); err != nil {
			return nil, err
		}
	}

	var free []int
	for _, p := range cm.PhysicalQubits() {
		if _, used := initial.Virtual(p); !used {
			free = append(free, p)
		}
	}
	if len(free) > 0 {
		anc := circuit.QuantumRegister(ancillaName(d), len(free))
		if err := out.AddRegister(anc); err != nil {
			return nil, err
		}
		if err := initial.Extend(anc, free); err != nil {
			return nil, err
		}
	}
	if initial.Len() != cm.Size() {
		return nil, errors.Structural("initial layout places %d qubits on a %d-qubit device", initial.Len(), cm.Size())
	}

	gate := m.SwapGate
	if gate == "" {
		gate = "swap"
	}
	if err := out.AddBasisElement(circuit.Definition{Name: gate, NumQubits: 2}); err != nil {
		return nil, err
	}

	return &router{
		cm:      cm,
		out:     out,
		initial: initial,
		current: initial.Copy(),
		swap:    circuit.NewOp(gate, 2, 0),
	}, nil
}

// ancillaName returns AncillaRegister, suffixed if d already uses the name.
func ancillaName(d *dag.DAGCircuit) string {
	name := AncillaRegister
	for i := 1; ; i++ {
		if _, taken := d.Register(name); !taken {
			return name
		}
		name = fmt.Sprintf("%s%d", AncillaRegister, i)
	}
}

func (r *router) routeLayer(d *dag.DAGCircuit, l dag.Layer) error {
	var pairs []*dag.Node
	for n := range l.Graph.GateNodes() {
		switch {
		case len(n.Qargs) >= 3:
			return errors.Structural("%s acts on %d qubits; decompose it before routing", n.Name(), len(n.Qargs))
		case len(n.Qargs) == 2:
			pairs = append(pairs, n)
		}
	}
	if len(pairs) == 0 {
		return r.out.ExtendAtEnd(l.Graph, r.current.WireMapTo(r.initial))
	}

	// Plan on a scratch layout first. If every pair is adjacent once all
	// swaps are in, the layer is emitted whole after them.
	scratch := r.current.Copy()
	var planned [][2]int
	for _, n := range pairs {
		s, err := r.bringTogether(scratch, n)
		if err != nil {
			return err
		}
		planned = append(planned, s...)
	}
	if r.allAdjacent(scratch, pairs) {
		for _, s := range planned {
			if err := r.emitSwap(s); err != nil {
				return err
			}
		}
		r.current = scratch
		return r.out.ExtendAtEnd(l.Graph, r.current.WireMapTo(r.initial))
	}

	// A later swap separated an earlier pair: emit node by node instead.
	for n := range l.Graph.OpNodes() {
		if r.isPair(l.Graph, n) {
			swaps, err := r.bringTogether(r.current, n)
			if err != nil {
				return err
			}
			for _, s := range swaps {
				if err := r.emitSwap(s); err != nil {
					return err
				}
			}
		}
		if err := r.emit(n); err != nil {
			return err
		}
	}
	return nil
}

func (r *router) isPair(g *dag.DAGCircuit, n *dag.Node) bool {
	return len(n.Qargs) == 2 && g.IsGate(n)
}

// bringTogether swaps along a shortest path until the qubits of n are
// adjacent under l, returning the physical pairs swapped.
func (r *router) bringTogether(l *layout.Layout, n *dag.Node) ([][2]int, error) {
	p0, p1, err := physicalPair(l, n)
	if err != nil {
		return nil, err
	}
	dist, err := r.cm.Distance(p0, p1)
	if err != nil {
		return nil, err
	}
	if dist == 1 {
		return nil, nil
	}
	path, err := r.cm.ShortestPath(p0, p1)
	if err != nil {
		return nil, err
	}
	var swaps [][2]int
	for i := 0; i+2 < len(path); i++ {
		s := [2]int{path[i], path[i+1]}
		if err := l.Swap(s[0], s[1]); err != nil {
			return nil, err
		}
		swaps = append(swaps, s)
	}
	return swaps, nil
}

func (r *router) allAdjacent(l *layout.Layout, pairs []*dag.Node) bool {
	for _, n := range pairs {
		p0, p1, err := physicalPair(l, n)
		if err != nil {
			return false
		}
		if d, err := r.cm.Distance(p0, p1); err != nil || d != 1 {
			return false
		}
	}
	return true
}

func physicalPair(l *layout.Layout, n *dag.Node) (int, int, error) {
	p0, ok0 := l.Physical(n.Qargs[0])
	p1, ok1 := l.Physical(n.Qargs[1])
	if !ok0 || !ok1 {
		return 0, 0, errors.Structural("%s: qubits %v are not placed", n.Name(), n.Qargs)
	}
	return p0, p1, nil
}

// emitSwap appends a swap between two physical qubits to the output.
func (r *router) emitSwap(s [2]int) error {
	a, _ := r.initial.Virtual(s[0])
	b, _ := r.initial.Virtual(s[1])
	if _, err := r.out.ApplyOperationBack(r.swap, []circuit.Bit{a, b}, nil, nil); err != nil {
		return err
	}
	r.swaps++
	return nil
}

// emit appends n under the current wire map.
func (r *router) emit(n *dag.Node) error {
	wm := r.current.WireMapTo(r.initial)
	qargs := make([]circuit.Bit, len(n.Qargs))
	for i, q := range n.Qargs {
		qargs[i] = wm[q]
	}
	_, err := r.out.ApplyOperationBack(n.Op, qargs, n.Cargs, n.Condition)
	return err
}

// Adjacent reports whether every two-qubit gate of d acts on coupled physical
// qubits when wire w sits on l.Physical(w).
func Adjacent(d *dag.DAGCircuit, cm *coupling.Map, l *layout.Layout) bool {
	for n := range d.TwoQubitGateNodes() {
		p0, p1, err := physicalPair(l, n)
		if err != nil || !cm.Adjacent(p0, p1) {
			return false
		}
	}
	return true
}
