package dag

import (
	"maps"
	"slices"

	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/errors"
)

// BasisElement records an operation name used in a DAG and its arity.
type BasisElement struct {
	Name      string
	NumQubits int
	NumClbits int
	NumParams int
}

// Library returns the definitions the DAG resolves names through.
func (d *DAGCircuit) Library() *circuit.Library { return d.lib }

// Definition looks up name in the DAG's library.
func (d *DAGCircuit) Definition(name string) (circuit.Definition, bool) {
	return d.lib.Lookup(name)
}

// AddBasisElement registers def with the DAG. Passes that introduce a new
// primitive, such as routing inserting swaps, call it before applying the
// operation. A definition already in the library is kept; its arity must
// agree with def.
func (d *DAGCircuit) AddBasisElement(def circuit.Definition) error {
	if existing, ok := d.lib.Lookup(def.Name); ok {
		if !existing.Variadic && (existing.NumQubits != def.NumQubits || existing.NumClbits != def.NumClbits) {
			return errors.Structural("%s is already defined on %d qubits and %d clbits",
				def.Name, existing.NumQubits, existing.NumClbits)
		}
	} else if err := d.lib.Add(def); err != nil {
		return err
	}
	if _, ok := d.basis[def.Name]; !ok {
		d.basis[def.Name] = BasisElement{
			Name:      def.Name,
			NumQubits: def.NumQubits,
			NumClbits: def.NumClbits,
			NumParams: def.NumParams,
		}
	}
	return nil
}

// HasBasisElement reports whether name has been used or registered.
func (d *DAGCircuit) HasBasisElement(name string) bool {
	_, ok := d.basis[name]
	return ok
}

// Basis returns the registered elements sorted by name.
func (d *DAGCircuit) Basis() []BasisElement {
	out := make([]BasisElement, 0, len(d.basis))
	for _, name := range slices.Sorted(maps.Keys(d.basis)) {
		out = append(out, d.basis[name])
	}
	return out
}

// checkArity compares op with its library definition and with earlier uses
// of the same name. Variadic definitions accept any qubit count.
func (d *DAGCircuit) checkArity(op circuit.Operation) error {
	def, ok := d.lib.Lookup(op.Name)
	if ok && def.Variadic {
		return nil
	}
	if ok && (def.NumQubits != op.NumQubits || def.NumClbits != op.NumClbits || def.NumParams != len(op.Params)) {
		return errors.Structural("%s is defined with %d qubits, %d clbits and %d params, got %d, %d and %d",
			op.Name, def.NumQubits, def.NumClbits, def.NumParams, op.NumQubits, op.NumClbits, len(op.Params))
	}
	if e, seen := d.basis[op.Name]; seen && (e.NumQubits != op.NumQubits || e.NumClbits != op.NumClbits) {
		return errors.Structural("%s was used on %d qubits and %d clbits, got %d and %d",
			op.Name, e.NumQubits, e.NumClbits, op.NumQubits, op.NumClbits)
	}
	return nil
}

func (d *DAGCircuit) record(op circuit.Operation) {
	if _, ok := d.basis[op.Name]; ok {
		return
	}
	d.basis[op.Name] = BasisElement{
		Name:      op.Name,
		NumQubits: op.NumQubits,
		NumClbits: op.NumClbits,
		NumParams: len(op.Params),
	}
}
