package dag

import (
	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/errors"
)

// SubstituteNodeWithDAG replaces the operation node id by the operations of
// repl. The wires of repl, quantum registers first and then classical, each
// in declaration order, map positionally onto the node's qargs and cargs.
// On every wire the replacement sequence is spliced between the node's
// predecessor and successor.
//
// If the node is conditioned, its condition is copied onto every spliced
// operation. Operations of repl must not carry conditions of their own.
//
// All checks run before the DAG is touched; on error d is unchanged.
func (d *DAGCircuit) SubstituteNodeWithDAG(id NodeID, repl *DAGCircuit) ([]NodeID, error) {
	n, err := d.opNode(id)
	if err != nil {
		return nil, err
	}

	wireMap := make(map[circuit.Bit]circuit.Bit)
	for _, pair := range []struct {
		from []circuit.Bit
		to   []circuit.Bit
		kind circuit.RegisterKind
	}{
		{bitsOf(repl.QuantumRegisters()), n.Qargs, circuit.Quantum},
		{bitsOf(repl.ClassicalRegisters()), n.Cargs, circuit.Classical},
	} {
		if len(pair.from) != len(pair.to) {
			return nil, errors.Structural("replacement for %s has %d %s wires, node has %d",
				n.Op.Name, len(pair.from), pair.kind, len(pair.to))
		}
		for i, b := range pair.from {
			wireMap[b] = pair.to[i]
		}
	}

	type planned struct {
		op    circuit.Operation
		qargs []circuit.Bit
		cargs []circuit.Bit
		wires []circuit.Bit
	}
	var plan []planned
	for sub := range repl.OpNodes() {
		if sub.Condition != nil {
			if n.Condition != nil {
				return nil, errors.Structural("cannot substitute conditioned %s with conditioned %s",
					n.Op.Name, sub.Op.Name)
			}
			return nil, errors.Structural("replacement operation %s carries a condition", sub.Op.Name)
		}
		qargs := mapBits(sub.Qargs, wireMap)
		cargs := mapBits(sub.Cargs, wireMap)
		wires, err := d.checkOperation(sub.Op, qargs, cargs, n.Condition)
		if err != nil {
			return nil, err
		}
		plan = append(plan, planned{sub.Op, qargs, cargs, wires})
	}

	// Successor of the removed node on each of its wires. Every planned
	// operation only touches these wires, so inserting before the successor
	// keeps the replacement contiguous and in order.
	succ := make(map[circuit.Bit]NodeID, len(n.wires))
	for i, w := range n.wires {
		succ[w] = n.next[i]
	}
	d.unlink(n)

	ids := make([]NodeID, 0, len(plan))
	for _, p := range plan {
		m := d.newOpNode(p.op, p.qargs, p.cargs, n.Condition, p.wires)
		for i, w := range p.wires {
			d.insertBefore(m, i, succ[w])
		}
		d.record(p.op)
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func bitsOf(regs []circuit.Register) []circuit.Bit {
	var out []circuit.Bit
	for _, r := range regs {
		out = append(out, r.Bits()...)
	}
	return out
}

func mapBits(bits []circuit.Bit, wireMap map[circuit.Bit]circuit.Bit) []circuit.Bit {
	out := make([]circuit.Bit, len(bits))
	for i, b := range bits {
		if m, ok := wireMap[b]; ok {
			out[i] = m
		} else {
			out[i] = b
		}
	}
	return out
}
