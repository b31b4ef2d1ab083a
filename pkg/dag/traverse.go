package dag

import (
	"container/heap"
	"iter"
	"slices"

	"github.com/matzehuels/qtranspile/pkg/circuit"
)

// NodeFilter selects operation nodes.
type NodeFilter func(*Node) bool

// inDegrees counts, for every live node, the wires arriving from another node.
func (d *DAGCircuit) inDegrees() []int {
	deg := make([]int, len(d.nodes))
	for _, n := range d.nodes {
		if n.dead {
			continue
		}
		for _, s := range n.next {
			if s >= 0 {
				deg[s]++
			}
		}
	}
	return deg
}

// topologicalOrder returns live node IDs using Kahn's algorithm, always
// taking the smallest ready ID next so the order is reproducible.
func (d *DAGCircuit) topologicalOrder() []NodeID {
	deg := d.inDegrees()
	ready := make(idHeap, 0, len(d.input))
	for _, id := range d.input {
		ready = append(ready, id)
	}
	heap.Init(&ready)

	order := make([]NodeID, 0, len(d.nodes))
	for ready.Len() > 0 {
		curr := heap.Pop(&ready).(NodeID)
		order = append(order, curr)
		for _, s := range d.nodes[curr].next {
			if s < 0 {
				continue
			}
			deg[s]--
			if deg[s] == 0 {
				heap.Push(&ready, s)
			}
		}
	}
	return order
}

// idHeap is a min-heap of node IDs.
type idHeap []NodeID

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)        { *h = append(*h, x.(NodeID)) }

func (h *idHeap) Pop() any {
	old := *h
	id := old[len(old)-1]
	*h = old[:len(old)-1]
	return id
}

// OpNodes yields live operation nodes in topological order, keeping only
// those every filter accepts. The order is computed when iteration starts;
// nodes removed while iterating are skipped and nodes added are not visited.
func (d *DAGCircuit) OpNodes(filters ...NodeFilter) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, id := range d.topologicalOrder() {
			n := d.nodes[id]
			if !n.IsOp() || n.dead || !accept(n, filters) {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

func accept(n *Node, filters []NodeFilter) bool {
	for _, f := range filters {
		if !f(n) {
			return false
		}
	}
	return true
}

// IsGate reports whether n is an operation that is not measure, reset or
// barrier. Names missing from the library count as gates.
func (d *DAGCircuit) IsGate(n *Node) bool {
	def, ok := d.lib.Lookup(n.Op.Name)
	return !ok || !def.Directive()
}

// GateNodes yields operation nodes that are gates.
func (d *DAGCircuit) GateNodes(filters ...NodeFilter) iter.Seq[*Node] {
	return d.OpNodes(append([]NodeFilter{d.IsGate}, filters...)...)
}

// NamedNodes yields operation nodes whose name is one of names.
func (d *DAGCircuit) NamedNodes(names ...string) iter.Seq[*Node] {
	return d.OpNodes(func(n *Node) bool { return slices.Contains(names, n.Op.Name) })
}

// TwoQubitGateNodes yields gate nodes acting on exactly two qubits.
func (d *DAGCircuit) TwoQubitGateNodes() iter.Seq[*Node] {
	return d.GateNodes(func(n *Node) bool { return len(n.Qargs) == 2 })
}

// Layer is one antichain of SerialLayers.
type Layer struct {
	// Graph holds every register of the parent and exactly the layer's
	// operations.
	Graph *DAGCircuit

	// Nodes are the parent node IDs, ascending.
	Nodes []NodeID

	// Partition lists the qubits of each node, in Nodes order.
	Partition [][]circuit.Bit
}

// layerIDs groups live operation nodes into antichains: each group holds the
// nodes whose predecessors all belong to earlier groups.
func (d *DAGCircuit) layerIDs() [][]NodeID {
	deg := d.inDegrees()
	release := func(ids []NodeID) []NodeID {
		var ready []NodeID
		for _, id := range ids {
			for _, s := range d.nodes[id].next {
				if s < 0 {
					continue
				}
				deg[s]--
				if deg[s] == 0 && d.nodes[s].IsOp() {
					ready = append(ready, s)
				}
			}
		}
		slices.Sort(ready)
		return ready
	}

	var inputs []NodeID
	for _, id := range d.input {
		inputs = append(inputs, id)
	}
	var layers [][]NodeID
	for frontier := release(inputs); len(frontier) > 0; frontier = release(frontier) {
		layers = append(layers, frontier)
	}
	return layers
}

// SerialLayers yields the DAG's layers in topological order. Layers are
// disjoint and together hold every operation node. Layering is computed when
// iteration starts; each layer's Graph is built only when it is yielded.
func (d *DAGCircuit) SerialLayers() iter.Seq[Layer] {
	return func(yield func(Layer) bool) {
		for _, ids := range d.layerIDs() {
			layer, err := d.buildLayer(ids)
			if err != nil {
				// A node of this DAG always re-applies onto its own registers.
				panic(err)
			}
			if !yield(layer) {
				return
			}
		}
	}
}

// LayerNodes returns the operation nodes of each serial layer, ascending by
// ID. Unlike SerialLayers it builds no per-layer DAGs.
func (d *DAGCircuit) LayerNodes() [][]*Node {
	ids := d.layerIDs()
	layers := make([][]*Node, len(ids))
	for i, group := range ids {
		layers[i] = make([]*Node, len(group))
		for j, id := range group {
			layers[i][j] = d.nodes[id]
		}
	}
	return layers
}

func (d *DAGCircuit) buildLayer(ids []NodeID) (Layer, error) {
	g := d.emptyLike()
	layer := Layer{Graph: g, Nodes: ids}
	for _, id := range ids {
		n := d.nodes[id]
		if _, err := g.ApplyOperationBack(n.Op, n.Qargs, n.Cargs, n.Condition); err != nil {
			return Layer{}, err
		}
		layer.Partition = append(layer.Partition, slices.Clone(n.Qargs))
	}
	return layer, nil
}

// emptyLike returns a DAG with the same name, registers and library and no
// operations. The library is shared.
func (d *DAGCircuit) emptyLike() *DAGCircuit {
	g := NewWithLibrary(d.lib)
	g.Name = d.Name
	for _, r := range d.regs {
		_ = g.AddRegister(r)
	}
	return g
}

// Depth returns the number of serial layers.
func (d *DAGCircuit) Depth() int { return len(d.layerIDs()) }
