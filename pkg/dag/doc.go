// Package dag provides DAGCircuit, the intermediate representation every
// compiler pass reads and rewrites.
//
// # Overview
//
// A circuit is a directed acyclic graph whose edges follow wires. Each qubit
// and clbit of a declared register is a wire that starts at an input boundary
// node, passes through the operations applied to it in program order, and
// ends at an output boundary node. An operation node sits on every wire in
// its qubit and clbit arguments, plus the bits of its condition register.
//
// Nodes live in an arena indexed by [NodeID]. For each wire a node touches it
// stores the neighbouring node IDs on that wire, so rewrites such as
// [DAGCircuit.SubstituteNodeWithDAG] are local index patches. IDs are never
// reused; removed nodes stay in the arena marked dead.
//
// # Basic Usage
//
//	d := dag.New()
//	q := circuit.QuantumRegister("q", 2)
//	_ = d.AddRegister(q)
//	_, _ = d.ApplyOperationBack(circuit.Gate("h"), []circuit.Bit{q.Bit(0)}, nil, nil)
//	_, _ = d.ApplyOperationBack(circuit.CX(), q.Bits(), nil, nil)
//
//	for n := range d.OpNodes() {
//	    fmt.Println(n.Name(), n.Qargs)
//	}
//
// # Traversal
//
// [DAGCircuit.OpNodes] and its filters ([DAGCircuit.GateNodes],
// [DAGCircuit.NamedNodes], [DAGCircuit.TwoQubitGateNodes]) are iter.Seq
// values in Kahn topological order, taking the smallest ready NodeID first.
// They are restartable and tolerate node removal during iteration.
//
// [DAGCircuit.SerialLayers] splits the operations into antichains. Each
// [Layer] carries a standalone DAGCircuit with all of the parent's registers,
// which is how routing processes a circuit one time step at a time.
//
// # Registry
//
// Each DAG owns a [circuit.Library] and a basis registry of the names it has
// seen, with their arities. Nothing is global: passes that introduce a new
// primitive register it on the DAG they build via
// [DAGCircuit.AddBasisElement].
//
// # Concurrency
//
// DAGCircuit instances are not safe for concurrent use. Distinct compilations
// own distinct DAGs and may run in parallel.
package dag
