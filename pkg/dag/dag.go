package dag

import (
	"slices"

	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/errors"
)

// NodeID indexes a node in a DAGCircuit's arena. IDs are never reused, so an
// ID held across a substitution still refers to the same (possibly removed)
// node.
type NodeID int

// NodeType distinguishes wire boundaries from operations.
type NodeType int

const (
	// NodeIn is the input boundary of a single wire.
	NodeIn NodeType = iota
	// NodeOut is the output boundary of a single wire.
	NodeOut
	// NodeOp carries an operation.
	NodeOp
)

func (t NodeType) String() string {
	switch t {
	case NodeIn:
		return "in"
	case NodeOut:
		return "out"
	default:
		return "op"
	}
}

// Node is a vertex of the circuit graph. Boundary nodes set Wire; operation
// nodes set Op, Qargs, Cargs and optionally Condition.
//
// Callers must treat a *Node as read-only. Edges are kept per wire: for each
// wire the node touches, the neighbouring node on that wire before and after it.
type Node struct {
	ID   NodeID
	Type NodeType

	Wire circuit.Bit

	Op        circuit.Operation
	Qargs     []circuit.Bit
	Cargs     []circuit.Bit
	Condition *circuit.Condition

	wires []circuit.Bit
	prev  []NodeID
	next  []NodeID
	dead  bool
}

// IsOp reports whether n is an operation node.
func (n *Node) IsOp() bool { return n.Type == NodeOp }

// Name returns the operation name, or "" for boundary nodes.
func (n *Node) Name() string { return n.Op.Name }

// Wires returns every wire n is threaded on: qargs, cargs, then the bits of
// its condition register that are not already cargs.
func (n *Node) Wires() []circuit.Bit { return slices.Clone(n.wires) }

func (n *Node) wireIndex(w circuit.Bit) int { return slices.Index(n.wires, w) }

// DAGCircuit is the circuit intermediate representation: registers, a node
// arena and per-wire program order. Every wire runs from exactly one NodeIn to
// exactly one NodeOut.
//
// The zero value is not usable - use New or NewWithLibrary.
// DAGCircuit is not safe for concurrent use.
type DAGCircuit struct {
	Name string

	regs   []circuit.Register
	nodes  []*Node
	input  map[circuit.Bit]NodeID
	output map[circuit.Bit]NodeID
	ops    int

	lib   *circuit.Library
	basis map[string]BasisElement
}

// New returns an empty DAG using the standard gate library.
func New() *DAGCircuit {
	return NewWithLibrary(circuit.Standard())
}

// NewWithLibrary returns an empty DAG resolving operation names through lib.
// The DAG owns lib from then on.
func NewWithLibrary(lib *circuit.Library) *DAGCircuit {
	if lib == nil {
		lib = circuit.Standard()
	}
	return &DAGCircuit{
		input:  make(map[circuit.Bit]NodeID),
		output: make(map[circuit.Bit]NodeID),
		lib:    lib,
		basis:  make(map[string]BasisElement),
	}
}

func (d *DAGCircuit) newNode(n *Node) *Node {
	n.ID = NodeID(len(d.nodes))
	d.nodes = append(d.nodes, n)
	return n
}

// AddRegister adds one connected input/output boundary pair per bit of reg.
func (d *DAGCircuit) AddRegister(reg circuit.Register) error {
	if err := errors.ValidateRegisterName(reg.Name); err != nil {
		return err
	}
	if reg.Size <= 0 {
		return errors.Structural("register %q must have positive size", reg.Name)
	}
	if _, ok := d.Register(reg.Name); ok {
		return errors.Structural("duplicate register %q", reg.Name)
	}
	d.regs = append(d.regs, reg)
	for _, b := range reg.Bits() {
		in := d.newNode(&Node{Type: NodeIn, Wire: b, wires: []circuit.Bit{b}})
		out := d.newNode(&Node{Type: NodeOut, Wire: b, wires: []circuit.Bit{b}})
		in.prev, in.next = []NodeID{-1}, []NodeID{out.ID}
		out.prev, out.next = []NodeID{in.ID}, []NodeID{-1}
		d.input[b] = in.ID
		d.output[b] = out.ID
	}
	return nil
}

// ApplyOperationBack appends op at the end of every wire in qargs, cargs and
// the condition register, and returns the new node.
func (d *DAGCircuit) ApplyOperationBack(op circuit.Operation, qargs, cargs []circuit.Bit, cond *circuit.Condition) (NodeID, error) {
	wires, err := d.checkOperation(op, qargs, cargs, cond)
	if err != nil {
		return -1, err
	}
	n := d.newOpNode(op, qargs, cargs, cond, wires)
	for i, w := range wires {
		d.insertBefore(n, i, d.output[w])
	}
	d.record(op)
	return n.ID, nil
}

func (d *DAGCircuit) newOpNode(op circuit.Operation, qargs, cargs []circuit.Bit, cond *circuit.Condition, wires []circuit.Bit) *Node {
	d.ops++
	return d.newNode(&Node{
		Type:      NodeOp,
		Op:        op.Clone(),
		Qargs:     slices.Clone(qargs),
		Cargs:     slices.Clone(cargs),
		Condition: circuit.CloneCondition(cond),
		wires:     wires,
		prev:      make([]NodeID, len(wires)),
		next:      make([]NodeID, len(wires)),
	})
}

// checkOperation validates an operation against the DAG and returns the
// wires it will be threaded on.
func (d *DAGCircuit) checkOperation(op circuit.Operation, qargs, cargs []circuit.Bit, cond *circuit.Condition) ([]circuit.Bit, error) {
	if len(qargs) != op.NumQubits || len(cargs) != op.NumClbits {
		return nil, errors.Structural("%s expects %d qubits and %d clbits, got %d and %d",
			op.Name, op.NumQubits, op.NumClbits, len(qargs), len(cargs))
	}
	if err := d.checkArity(op); err != nil {
		return nil, err
	}
	wires := make([]circuit.Bit, 0, len(qargs)+len(cargs))
	for _, group := range []struct {
		bits []circuit.Bit
		kind circuit.RegisterKind
	}{{qargs, circuit.Quantum}, {cargs, circuit.Classical}} {
		for _, b := range group.bits {
			reg, ok := d.Register(b.Register)
			if !ok || reg.Kind != group.kind || !reg.Contains(b) {
				return nil, errors.Structural("%s: unknown %s bit %s", op.Name, group.kind, b)
			}
			if slices.Contains(wires, b) {
				return nil, errors.Structural("%s: duplicate argument %s", op.Name, b)
			}
			wires = append(wires, b)
		}
	}
	if cond != nil {
		reg, ok := d.Register(cond.Register)
		if !ok || reg.Kind != circuit.Classical {
			return nil, errors.Structural("%s: unknown condition register %q", op.Name, cond.Register)
		}
		for _, b := range reg.Bits() {
			if !slices.Contains(wires, b) {
				wires = append(wires, b)
			}
		}
	}
	return wires, nil
}

// insertBefore threads wire i of n in front of succ on that wire.
func (d *DAGCircuit) insertBefore(n *Node, i int, succ NodeID) {
	w := n.wires[i]
	s := d.nodes[succ]
	j := s.wireIndex(w)
	pred := s.prev[j]
	n.prev[i], n.next[i] = pred, succ
	p := d.nodes[pred]
	p.next[p.wireIndex(w)] = n.ID
	s.prev[j] = n.ID
}

// unlink removes n from every wire, joining its neighbours directly.
func (d *DAGCircuit) unlink(n *Node) {
	for i, w := range n.wires {
		p, s := d.nodes[n.prev[i]], d.nodes[n.next[i]]
		p.next[p.wireIndex(w)] = s.ID
		s.prev[s.wireIndex(w)] = p.ID
	}
	n.dead = true
	d.ops--
}

// RemoveOpNode deletes an operation node, reconnecting its neighbours.
func (d *DAGCircuit) RemoveOpNode(id NodeID) error {
	n, err := d.opNode(id)
	if err != nil {
		return err
	}
	d.unlink(n)
	return nil
}

func (d *DAGCircuit) opNode(id NodeID) (*Node, error) {
	n := d.Node(id)
	if n == nil || !n.IsOp() {
		return nil, errors.Structural("node %d is not a live operation node", id)
	}
	return n, nil
}

// Node returns the live node with the given ID, or nil.
func (d *DAGCircuit) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(d.nodes) || d.nodes[id].dead {
		return nil
	}
	return d.nodes[id]
}

// Predecessors returns the distinct nodes directly before id on any wire,
// ordered by ID.
func (d *DAGCircuit) Predecessors(id NodeID) []*Node {
	n := d.Node(id)
	if n == nil {
		return nil
	}
	return d.distinct(n.prev)
}

// Successors returns the distinct nodes directly after id on any wire,
// ordered by ID.
func (d *DAGCircuit) Successors(id NodeID) []*Node {
	n := d.Node(id)
	if n == nil {
		return nil
	}
	return d.distinct(n.next)
}

func (d *DAGCircuit) distinct(ids []NodeID) []*Node {
	ids = slices.Clone(ids)
	ids = slices.DeleteFunc(ids, func(id NodeID) bool { return id < 0 })
	slices.Sort(ids)
	ids = slices.Compact(ids)
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = d.nodes[id]
	}
	return out
}

// Register looks up a register by name.
func (d *DAGCircuit) Register(name string) (circuit.Register, bool) {
	for _, r := range d.regs {
		if r.Name == name {
			return r, true
		}
	}
	return circuit.Register{}, false
}

// Registers returns all registers in declaration order.
func (d *DAGCircuit) Registers() []circuit.Register { return slices.Clone(d.regs) }

// QuantumRegisters returns the quantum registers in declaration order.
func (d *DAGCircuit) QuantumRegisters() []circuit.Register {
	return d.registersOf(circuit.Quantum)
}

// ClassicalRegisters returns the classical registers in declaration order.
func (d *DAGCircuit) ClassicalRegisters() []circuit.Register {
	return d.registersOf(circuit.Classical)
}

func (d *DAGCircuit) registersOf(kind circuit.RegisterKind) []circuit.Register {
	var out []circuit.Register
	for _, r := range d.regs {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Wires returns every bit in register declaration order.
func (d *DAGCircuit) Wires() []circuit.Bit {
	var out []circuit.Bit
	for _, r := range d.regs {
		out = append(out, r.Bits()...)
	}
	return out
}

// QuantumWires returns the qubits in declaration order.
func (d *DAGCircuit) QuantumWires() []circuit.Bit {
	var out []circuit.Bit
	for _, r := range d.QuantumRegisters() {
		out = append(out, r.Bits()...)
	}
	return out
}

// Width returns the number of qubits.
func (d *DAGCircuit) Width() int {
	n := 0
	for _, r := range d.QuantumRegisters() {
		n += r.Size
	}
	return n
}

// NumClbits returns the number of classical bits.
func (d *DAGCircuit) NumClbits() int {
	n := 0
	for _, r := range d.ClassicalRegisters() {
		n += r.Size
	}
	return n
}

// Size returns the number of live operation nodes.
func (d *DAGCircuit) Size() int { return d.ops }

// CountOps tallies live operation nodes by name.
func (d *DAGCircuit) CountOps() map[string]int {
	counts := make(map[string]int)
	for _, n := range d.nodes {
		if n.IsOp() && !n.dead {
			counts[n.Op.Name]++
		}
	}
	return counts
}

// InputNode returns the input boundary of wire w, or nil for an unknown wire.
func (d *DAGCircuit) InputNode(w circuit.Bit) *Node {
	if id, ok := d.input[w]; ok {
		return d.nodes[id]
	}
	return nil
}

// OutputNode returns the output boundary of wire w, or nil for an unknown wire.
func (d *DAGCircuit) OutputNode(w circuit.Bit) *Node {
	if id, ok := d.output[w]; ok {
		return d.nodes[id]
	}
	return nil
}

// NextOnWire returns the node after id on wire w, or nil if id is not live or
// not on w.
func (d *DAGCircuit) NextOnWire(id NodeID, w circuit.Bit) *Node {
	return d.neighbourOnWire(id, w, func(n *Node) []NodeID { return n.next })
}

// PrevOnWire returns the node before id on wire w, or nil if id is not live or
// not on w.
func (d *DAGCircuit) PrevOnWire(id NodeID, w circuit.Bit) *Node {
	return d.neighbourOnWire(id, w, func(n *Node) []NodeID { return n.prev })
}

func (d *DAGCircuit) neighbourOnWire(id NodeID, w circuit.Bit, side func(*Node) []NodeID) *Node {
	n := d.Node(id)
	if n == nil {
		return nil
	}
	i := n.wireIndex(w)
	if i < 0 {
		return nil
	}
	return d.Node(side(n)[i])
}
