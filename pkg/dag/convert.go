package dag

import (
	"slices"

	"github.com/matzehuels/qtranspile/pkg/circuit"
)

// FromCircuit builds a DAG from a circuit's registers and instructions. The
// DAG takes a copy of the circuit's library.
func FromCircuit(c *circuit.Circuit) (*DAGCircuit, error) {
	var d *DAGCircuit
	if c.Library != nil {
		d = NewWithLibrary(c.Library.Clone())
	} else {
		d = New()
	}
	d.Name = c.Name
	for _, r := range c.Registers {
		if err := d.AddRegister(r); err != nil {
			return nil, err
		}
	}
	for _, in := range c.Instructions {
		if _, err := d.ApplyOperationBack(in.Op, in.Qargs, in.Cargs, in.Condition); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ToCircuit rebuilds a circuit from the operations in topological order.
func (d *DAGCircuit) ToCircuit() *circuit.Circuit {
	c := &circuit.Circuit{
		Name:      d.Name,
		Registers: slices.Clone(d.regs),
		Library:   d.lib.Clone(),
	}
	for n := range d.OpNodes() {
		c.Instructions = append(c.Instructions, circuit.Instruction{
			Op:        n.Op.Clone(),
			Qargs:     slices.Clone(n.Qargs),
			Cargs:     slices.Clone(n.Cargs),
			Condition: circuit.CloneCondition(n.Condition),
		})
	}
	return c
}
