// Package coupling models a device's physical-qubit connectivity.
//
// A [Map] holds directed edges, which record the native orientation of
// two-qubit gates, and derives an undirected adjacency from them for routing.
// Distances and shortest paths are computed by breadth-first search with
// neighbours visited in ascending order, so ties always resolve the same way.
// BFS trees are cached per source qubit behind a mutex; a Map is safe to share
// between goroutines once built.
package coupling

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/qtranspile/pkg/errors"
)

// Map is an immutable coupling graph.
//
// The zero value is an empty device; use New or FromAdjacency.
type Map struct {
	qubits    []int
	edges     [][2]int
	directed  map[[2]int]bool
	neighbors map[int][]int

	mu    sync.Mutex
	trees map[int]bfsTree
}

// bfsTree holds the BFS parent and depth of every qubit reachable from a source.
type bfsTree struct {
	parent map[int]int
	depth  map[int]int
}

// New builds a map from directed edges. Duplicate edges are ignored.
// Physical indices must be non-negative.
func New(edges [][2]int) (*Map, error) {
	m := &Map{
		directed:  make(map[[2]int]bool),
		neighbors: make(map[int][]int),
		trees:     make(map[int]bfsTree),
	}
	seen := make(map[int]bool)
	for _, e := range edges {
		a, b := e[0], e[1]
		if a < 0 || b < 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "negative physical qubit in edge %v", e)
		}
		if a == b {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "self-loop on physical qubit %d", a)
		}
		if m.directed[e] {
			continue
		}
		m.directed[e] = true
		m.edges = append(m.edges, e)
		seen[a], seen[b] = true, true
		m.link(a, b)
		m.link(b, a)
	}
	m.qubits = slices.Sorted(maps.Keys(seen))
	for q := range m.neighbors {
		slices.Sort(m.neighbors[q])
	}
	return m, nil
}

func (m *Map) link(a, b int) {
	if !slices.Contains(m.neighbors[a], b) {
		m.neighbors[a] = append(m.neighbors[a], b)
	}
}

// FromAdjacency builds a map from the {source: [targets...]} form used by
// device descriptions, e.g. {0: [1, 2]} for a three-qubit star.
func FromAdjacency(adj map[int][]int) (*Map, error) {
	var edges [][2]int
	for _, src := range slices.Sorted(maps.Keys(adj)) {
		for _, dst := range adj[src] {
			edges = append(edges, [2]int{src, dst})
		}
	}
	return New(edges)
}

// MustNew is New for literal edge lists; it panics on error.
func MustNew(edges [][2]int) *Map {
	m, err := New(edges)
	if err != nil {
		panic(err)
	}
	return m
}

// Line returns 0-1-...-(n-1).
func Line(n int) *Map {
	var edges [][2]int
	for i := 0; i+1 < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	return MustNew(edges)
}

// Ring returns a line closed back onto qubit 0.
func Ring(n int) *Map {
	var edges [][2]int
	for i := range n {
		edges = append(edges, [2]int{i, (i + 1) % n})
	}
	return MustNew(edges)
}

// Grid returns a rows x cols lattice numbered row-major.
func Grid(rows, cols int) *Map {
	var edges [][2]int
	for r := range rows {
		for c := range cols {
			p := r*cols + c
			if c+1 < cols {
				edges = append(edges, [2]int{p, p + 1})
			}
			if r+1 < rows {
				edges = append(edges, [2]int{p, p + cols})
			}
		}
	}
	return MustNew(edges)
}

// PhysicalQubits returns the sorted physical indices.
func (m *Map) PhysicalQubits() []int { return slices.Clone(m.qubits) }

// Size returns the number of physical qubits.
func (m *Map) Size() int { return len(m.qubits) }

// Edges returns the directed edges in insertion order.
func (m *Map) Edges() [][2]int { return slices.Clone(m.edges) }

// Contains reports whether p is a physical qubit of m.
func (m *Map) Contains(p int) bool {
	_, ok := m.neighbors[p]
	return ok
}

// HasEdge reports whether the directed edge a->b exists.
func (m *Map) HasEdge(a, b int) bool { return m.directed[[2]int{a, b}] }

// Adjacent reports whether a and b are coupled in either direction.
func (m *Map) Adjacent(a, b int) bool {
	return m.HasEdge(a, b) || m.HasEdge(b, a)
}

// Neighbors returns the undirected neighbours of p in ascending order.
func (m *Map) Neighbors(p int) []int { return slices.Clone(m.neighbors[p]) }

// IsConnected reports whether every qubit reaches every other.
func (m *Map) IsConnected() bool {
	if len(m.qubits) == 0 {
		return true
	}
	return len(m.tree(m.qubits[0]).depth) == len(m.qubits)
}

// Distance returns the undirected edge count between a and b.
func (m *Map) Distance(a, b int) (int, error) {
	if err := m.check(a, b); err != nil {
		return 0, err
	}
	d, ok := m.tree(a).depth[b]
	if !ok {
		return 0, errors.Connectivity("physical qubits %d and %d are not connected", a, b)
	}
	return d, nil
}

// ShortestPath returns one shortest path from a to b, both included.
func (m *Map) ShortestPath(a, b int) ([]int, error) {
	if err := m.check(a, b); err != nil {
		return nil, err
	}
	t := m.tree(a)
	if _, ok := t.depth[b]; !ok {
		return nil, errors.Connectivity("no path between physical qubits %d and %d", a, b)
	}
	path := []int{b}
	for p := b; p != a; {
		p = t.parent[p]
		path = append(path, p)
	}
	slices.Reverse(path)
	return path, nil
}

func (m *Map) check(a, b int) error {
	for _, p := range []int{a, b} {
		if !m.Contains(p) {
			return errors.Connectivity("physical qubit %d is not on the device", p)
		}
	}
	return nil
}

func (m *Map) tree(src int) bfsTree {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.trees[src]; ok {
		return t
	}
	t := bfsTree{
		parent: map[int]int{src: src},
		depth:  map[int]int{src: 0},
	}
	queue := []int{src}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, n := range m.neighbors[p] {
			if _, seen := t.depth[n]; seen {
				continue
			}
			t.parent[n] = p
			t.depth[n] = t.depth[p] + 1
			queue = append(queue, n)
		}
	}
	if m.trees == nil {
		m.trees = make(map[int]bfsTree)
	}
	m.trees[src] = t
	return t
}

func (m *Map) String() string {
	return fmt.Sprintf("coupling(%d qubits, %d edges)", len(m.qubits), len(m.edges))
}
