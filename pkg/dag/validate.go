package dag

import (
	"maps"
	"slices"

	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/errors"
)

// Validate checks the structural invariants: every wire runs from its input
// node to its output node through nodes that agree on their neighbours, and
// the graph has no cycle. A failure means the DAG is corrupted.
func (d *DAGCircuit) Validate() error {
	for _, w := range d.Wires() {
		if err := d.validateWire(w); err != nil {
			return err
		}
	}
	if d.hasCycle() {
		return errors.Structural("graph contains a cycle")
	}
	return nil
}

func (d *DAGCircuit) validateWire(w circuit.Bit) error {
	in, out := d.input[w], d.output[w]
	prev := in
	curr := d.nodes[in].next[0]
	for steps := 0; curr != out; steps++ {
		if curr < 0 || steps > len(d.nodes) {
			return errors.Structural("wire %s does not reach its output node", w)
		}
		n := d.nodes[curr]
		i := n.wireIndex(w)
		if n.dead || i < 0 {
			return errors.Structural("wire %s passes through node %d which is not on it", w, curr)
		}
		if n.prev[i] != prev {
			return errors.Structural("node %d has wrong predecessor on %s", curr, w)
		}
		prev, curr = curr, n.next[i]
	}
	if d.nodes[out].prev[0] != prev {
		return errors.Structural("output node of %s has wrong predecessor", w)
	}
	return nil
}

// hasCycle runs a white/gray/black depth-first search over successor edges.
func (d *DAGCircuit) hasCycle() bool {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(d.nodes))
	var dfs func(id NodeID) bool
	dfs = func(id NodeID) bool {
		color[id] = gray
		for _, s := range d.nodes[id].next {
			if s < 0 {
				continue
			}
			switch color[s] {
			case gray:
				return true
			case white:
				if dfs(s) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}
	for id, n := range d.nodes {
		if !n.dead && color[id] == white && dfs(NodeID(id)) {
			return true
		}
	}
	return false
}

// Equal reports whether d and other declare the same registers and carry the
// same operation sequence on every wire. Node IDs are ignored.
func (d *DAGCircuit) Equal(other *DAGCircuit) bool {
	if !slices.Equal(d.regs, other.regs) || d.ops != other.ops {
		return false
	}
	for _, w := range d.Wires() {
		if !slices.EqualFunc(d.wireOps(w), other.wireOps(w), sameOp) {
			return false
		}
	}
	return true
}

// wireOps returns the operation nodes on w in program order.
func (d *DAGCircuit) wireOps(w circuit.Bit) []*Node {
	var out []*Node
	out0 := d.output[w]
	for curr := d.nodes[d.input[w]].next[0]; curr != out0; {
		n := d.nodes[curr]
		out = append(out, n)
		curr = n.next[n.wireIndex(w)]
	}
	return out
}

func sameOp(a, b *Node) bool {
	if !a.Op.Equal(b.Op) || !slices.Equal(a.Qargs, b.Qargs) || !slices.Equal(a.Cargs, b.Cargs) {
		return false
	}
	if (a.Condition == nil) != (b.Condition == nil) {
		return false
	}
	return a.Condition == nil || *a.Condition == *b.Condition
}

// Copy returns a deep copy of d, including its library and registry.
func (d *DAGCircuit) Copy() *DAGCircuit {
	c := &DAGCircuit{
		Name:   d.Name,
		regs:   slices.Clone(d.regs),
		nodes:  make([]*Node, len(d.nodes)),
		input:  maps.Clone(d.input),
		output: maps.Clone(d.output),
		ops:    d.ops,
		lib:    d.lib.Clone(),
		basis:  maps.Clone(d.basis),
	}
	for i, n := range d.nodes {
		cp := *n
		cp.Op = n.Op.Clone()
		cp.Qargs = slices.Clone(n.Qargs)
		cp.Cargs = slices.Clone(n.Cargs)
		cp.Condition = circuit.CloneCondition(n.Condition)
		cp.wires = slices.Clone(n.wires)
		cp.prev = slices.Clone(n.prev)
		cp.next = slices.Clone(n.next)
		c.nodes[i] = &cp
	}
	return c
}
