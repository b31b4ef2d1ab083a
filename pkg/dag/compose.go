package dag

import (
	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/errors"
	"github.com/matzehuels/qtranspile/pkg/layout"
)

// PhysicalRegister names the single quantum register of a DAG laid out on
// device qubits: bit q[p] is physical qubit p.
const PhysicalRegister = "q"

// ExtendAtEnd appends the operations of sub after the current end of d, in
// sub's topological order, renaming bits through wireMap. Bits missing from
// wireMap keep their identity.
func (d *DAGCircuit) ExtendAtEnd(sub *DAGCircuit, wireMap map[circuit.Bit]circuit.Bit) error {
	for n := range sub.OpNodes() {
		if err := d.addMissing(n.Op, sub.lib); err != nil {
			return err
		}
		_, err := d.ApplyOperationBack(n.Op, mapBits(n.Qargs, wireMap), mapBits(n.Cargs, wireMap), n.Condition)
		if err != nil {
			return err
		}
	}
	return nil
}

// AddDAGAtEnd appends the operations of sub, moving each qubit v of sub onto
// bit l.Physical(v) of register reg, usually PhysicalRegister. Classical bits
// keep their identity.
func (d *DAGCircuit) AddDAGAtEnd(sub *DAGCircuit, l *layout.Layout, reg string) error {
	wireMap := make(map[circuit.Bit]circuit.Bit)
	for _, v := range sub.QuantumWires() {
		p, ok := l.Physical(v)
		if !ok {
			return errors.Structural("layout does not place %s", v)
		}
		wireMap[v] = circuit.Bit{Register: reg, Index: p}
	}
	return d.ExtendAtEnd(sub, wireMap)
}

// addMissing makes sure d's library knows op, copying the definition from
// from when it has one and registering an opaque definition otherwise.
func (d *DAGCircuit) addMissing(op circuit.Operation, from *circuit.Library) error {
	if d.lib.Has(op.Name) {
		return nil
	}
	if def, ok := from.Lookup(op.Name); ok {
		return d.AddBasisElement(def)
	}
	return d.AddBasisElement(circuit.Definition{
		Name:      op.Name,
		NumQubits: op.NumQubits,
		NumClbits: op.NumClbits,
		NumParams: len(op.Params),
	})
}
