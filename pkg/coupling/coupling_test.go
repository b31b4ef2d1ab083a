package coupling

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/matzehuels/qtranspile/pkg/errors"
)

func TestDistance(t *testing.T) {
	star, _ := FromAdjacency(map[int][]int{0: {1, 2}})
	tests := []struct {
		name string
		m    *Map
		a, b int
		want int
	}{
		{"self", Line(4), 2, 2, 0},
		{"adjacent", Line(4), 0, 1, 1},
		{"reverse direction", Line(4), 1, 0, 1},
		{"line ends", Line(4), 0, 3, 3},
		{"star leaves", star, 1, 2, 2},
		{"ring wraps", Ring(8), 0, 7, 1},
		{"grid corners", Grid(2, 3), 0, 5, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.m.Distance(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Distance() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Distance(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestShortestPath(t *testing.T) {
	star, _ := FromAdjacency(map[int][]int{0: {1, 2}})
	tests := []struct {
		name string
		m    *Map
		a, b int
		want []int
	}{
		{"line", Line(4), 0, 3, []int{0, 1, 2, 3}},
		{"line reversed", Line(4), 3, 0, []int{3, 2, 1, 0}},
		{"star", star, 1, 2, []int{1, 0, 2}},
		// Both 0-1-4 and 0-3-4 are shortest; ascending neighbour order picks 1.
		{"grid tie", Grid(2, 3), 0, 4, []int{0, 1, 4}},
		{"self", Line(2), 1, 1, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.m.ShortestPath(tt.a, tt.b)
			if err != nil {
				t.Fatalf("ShortestPath() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ShortestPath(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDisconnected(t *testing.T) {
	m := MustNew([][2]int{{0, 1}, {2, 3}})
	if m.IsConnected() {
		t.Error("IsConnected() = true for two components")
	}
	if _, err := m.Distance(0, 3); !errors.Is(err, errors.ErrCodeConnectivity) {
		t.Errorf("Distance() error = %v, want CONNECTIVITY", err)
	}
	if _, err := m.ShortestPath(0, 3); !errors.Is(err, errors.ErrCodeConnectivity) {
		t.Errorf("ShortestPath() error = %v, want CONNECTIVITY", err)
	}
	if _, err := m.Distance(0, 9); !errors.Is(err, errors.ErrCodeConnectivity) {
		t.Errorf("Distance() to unknown qubit error = %v, want CONNECTIVITY", err)
	}
}

func TestNewRejectsBadEdges(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]int
	}{
		{"self loop", [][2]int{{1, 1}}},
		{"negative", [][2]int{{-1, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.edges); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("New() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestDirectedEdges(t *testing.T) {
	m := MustNew([][2]int{{0, 1}, {0, 1}, {2, 1}})
	if got := len(m.Edges()); got != 2 {
		t.Errorf("len(Edges()) = %d, want 2", got)
	}
	if !m.HasEdge(0, 1) || m.HasEdge(1, 0) {
		t.Error("HasEdge does not respect direction")
	}
	if !m.Adjacent(1, 0) {
		t.Error("Adjacent(1, 0) = false")
	}
	if got := m.Neighbors(1); !slices.Equal(got, []int{0, 2}) {
		t.Errorf("Neighbors(1) = %v, want [0 2]", got)
	}
	if got := m.PhysicalQubits(); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("PhysicalQubits() = %v", got)
	}
}

func TestConcurrentQueries(t *testing.T) {
	m := Grid(4, 4)
	var wg sync.WaitGroup
	for src := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dst := range 16 {
				if _, err := m.ShortestPath(src, dst); err != nil {
					t.Errorf("ShortestPath(%d, %d) error = %v", src, dst, err)
				}
			}
		}()
	}
	wg.Wait()
}

func ExampleMap_ShortestPath() {
	m := Line(4)
	path, _ := m.ShortestPath(0, 3)
	d, _ := m.Distance(0, 3)
	fmt.Println(path, d)
	// Output: [0 1 2 3] 3
}
