package passes

import (
	"fmt"
	"reflect"

	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/coupling"
	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/errors"
	"github.com/matzehuels/qtranspile/pkg/layout"
	"github.com/matzehuels/qtranspile/pkg/transpiler"
)

// Size stores the number of operations as transpiler.PropSize.
type Size struct{}

func (Size) Name() string          { return transpiler.PropSize }
func (Size) Kind() transpiler.Kind { return transpiler.Analysis }
func (Size) Requires() []string    { return nil }
func (Size) Preserves() []string   { return nil }

func (Size) Run(d *dag.DAGCircuit, props transpiler.PropertySet) (*dag.DAGCircuit, error) {
	props[transpiler.PropSize] = d.Size()
	return d, nil
}

// Depth stores the number of serial layers as transpiler.PropDepth.
type Depth struct{}

func (Depth) Name() string          { return transpiler.PropDepth }
func (Depth) Kind() transpiler.Kind { return transpiler.Analysis }
func (Depth) Requires() []string    { return nil }
func (Depth) Preserves() []string   { return nil }

func (Depth) Run(d *dag.DAGCircuit, props transpiler.PropertySet) (*dag.DAGCircuit, error) {
	props[transpiler.PropDepth] = d.Depth()
	return d, nil
}

// FixedPoint sets transpiler.FixedPointKey(Property) to whether Property
// holds the same value as on the previous run within the same loop. Values
// are compared with reflect.DeepEqual. It requires the analysis pass named
// after Property.
type FixedPoint struct {
	Property string
}

func (p FixedPoint) Name() string          { return "fixed_point_" + p.Property }
func (p FixedPoint) Kind() transpiler.Kind { return transpiler.Analysis }
func (p FixedPoint) Requires() []string    { return []string{p.Property} }
func (p FixedPoint) Preserves() []string   { return nil }

func (p FixedPoint) Run(d *dag.DAGCircuit, props transpiler.PropertySet) (*dag.DAGCircuit, error) {
	cur, ok := props[p.Property]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "property %q is not set", p.Property)
	}
	prevKey := transpiler.PreviousKey(p.Property)
	prev, seen := props[prevKey]
	props[transpiler.FixedPointKey(p.Property)] = seen && reflect.DeepEqual(prev, cur)
	props[prevKey] = cur
	return d, nil
}

// CheckMap stores transpiler.PropIsSwapMapped: whether every two-qubit gate
// acts on coupled physical qubits. Wires are placed by the layout property
// when a router has set one, otherwise by their position among the quantum
// wires.
type CheckMap struct {
	Coupling *coupling.Map
}

func (CheckMap) Name() string          { return "check_map" }
func (CheckMap) Kind() transpiler.Kind { return transpiler.Analysis }
func (CheckMap) Requires() []string    { return nil }
func (CheckMap) Preserves() []string   { return nil }

func (c CheckMap) Run(d *dag.DAGCircuit, props transpiler.PropertySet) (*dag.DAGCircuit, error) {
	if c.Coupling == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "check_map: no coupling map")
	}
	l := props.Layout(transpiler.PropLayout)
	if l == nil || !placesAll(l, d) {
		l = layout.New()
		for i, w := range d.QuantumWires() {
			_ = l.Set(w, i)
		}
	}
	props[transpiler.PropIsSwapMapped] = Adjacent(d, c.Coupling, l)
	return d, nil
}

func placesAll(l *layout.Layout, d *dag.DAGCircuit) bool {
	for _, w := range d.QuantumWires() {
		if _, ok := l.Physical(w); !ok {
			return false
		}
	}
	return true
}

// ApplyLayout rebuilds a DAG on a single quantum register, moving each qubit
// to its physical index. The register is dag.PhysicalRegister unless a
// classical register already has that name, in which case a numeric suffix
// is added. Classical registers are kept. Afterwards the layout property is the identity over
// the physical register.
type ApplyLayout struct {
	// Layout places the qubits. When nil the layout property set by
	// SwapMapper is used, and failing that the identity layout.
	Layout *layout.Layout

	// Width of the physical register; one more than the largest physical
	// index when zero.
	Width int
}

func (ApplyLayout) Name() string          { return "apply_layout" }
func (ApplyLayout) Kind() transpiler.Kind { return transpiler.Transformation }
func (ApplyLayout) Requires() []string    { return nil }
func (ApplyLayout) Preserves() []string   { return nil }

func (a ApplyLayout) Run(d *dag.DAGCircuit, props transpiler.PropertySet) (*dag.DAGCircuit, error) {
	l := a.Layout
	if l == nil {
		l = props.Layout(transpiler.PropLayout)
	}
	if l == nil {
		l = layout.FromRegisters(d.QuantumRegisters()...)
	}
	width := a.Width
	if width == 0 {
		for _, p := range l.Physicals() {
			width = max(width, p+1)
		}
	}

	out := dag.NewWithLibrary(d.Library().Clone())
	out.Name = d.Name
	phys := physicalName(d)
	if err := out.AddRegister(circuit.QuantumRegister(phys, width)); err != nil {
		return nil, err
	}
	for _, reg := range d.ClassicalRegisters() {
		if err := out.AddRegister(reg); err != nil {
			return nil, err
		}
	}
	if err := out.AddDAGAtEnd(d, l, phys); err != nil {
		return nil, err
	}
	props[transpiler.PropLayout] = layout.FromRegisters(out.QuantumRegisters()...)
	return out, nil
}

// physicalName returns dag.PhysicalRegister, suffixed if a classical register
// of d already uses the name.
func physicalName(d *dag.DAGCircuit) string {
	name := dag.PhysicalRegister
	for i := 1; ; i++ {
		if r, taken := d.Register(name); !taken || r.IsQuantum() {
			return name
		}
		name = fmt.Sprintf("%s%d", dag.PhysicalRegister, i)
	}
}
