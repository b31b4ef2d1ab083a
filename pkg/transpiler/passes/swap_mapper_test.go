package passes

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/coupling"
	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/errors"
	"github.com/matzehuels/qtranspile/pkg/layout"
	"github.com/matzehuels/qtranspile/pkg/transpiler"
)

func star3(t *testing.T) *coupling.Map {
	t.Helper()
	cm, err := coupling.FromAdjacency(map[int][]int{0: {1, 2}})
	require.NoError(t, err)
	return cm
}

func TestSwapMapperRouting(t *testing.T) {
	tests := []struct {
		name      string
		coupling  *coupling.Map
		width     int
		gates     []gate
		want      []string
		wantSwaps int
	}{
		{
			name:      "star leaves",
			coupling:  star3(t),
			width:     3,
			gates:     []gate{g("cx", 1, 2)},
			want:      []string{"swap(q[1],q[0])", "cx(q[0],q[2])"},
			wantSwaps: 1,
		},
		{
			name:      "star adjacent",
			coupling:  star3(t),
			width:     3,
			gates:     []gate{g("cx", 0, 1)},
			want:      []string{"cx(q[0],q[1])"},
			wantSwaps: 0,
		},
		{
			name:      "line ends",
			coupling:  coupling.Line(4),
			width:     4,
			gates:     []gate{g("cx", 0, 3), g("cx", 3, 0)},
			want:      []string{"swap(q[0],q[1])", "swap(q[1],q[2])", "cx(q[2],q[3])", "cx(q[3],q[2])"},
			wantSwaps: 2,
		},
		{
			name:      "layout carries to later layers",
			coupling:  coupling.MustNew([][2]int{{1, 0}, {1, 2}}),
			width:     3,
			gates:     []gate{g("cx", 0, 2), g("h", 0)},
			want:      []string{"swap(q[0],q[1])", "cx(q[1],q[2])", "h(q[1])"},
			wantSwaps: 1,
		},
		{
			name:      "swap separates an earlier pair",
			coupling:  coupling.MustNew([][2]int{{0, 1}, {1, 2}, {1, 3}}),
			width:     4,
			gates:     []gate{g("cx", 0, 1), g("cx", 2, 3)},
			want:      []string{"cx(q[0],q[1])", "swap(q[2],q[1])", "cx(q[1],q[3])"},
			wantSwaps: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := buildDAG(t, tt.width, tt.gates...)
			m := &SwapMapper{Coupling: tt.coupling}
			out, props := run(t, m, d)

			require.NoError(t, out.Validate())
			assert.Equal(t, tt.want, opStrings(out))
			assert.Equal(t, tt.wantSwaps, props.Int(transpiler.PropSwapCount))
			assert.True(t, Adjacent(out, tt.coupling, props.Layout(transpiler.PropLayout)))

			final := props.Layout(transpiler.PropFinalLayout)
			require.NotNil(t, final)
			require.NoError(t, final.Validate())
		})
	}
}

func TestSwapMapperAlreadyAdjacentIsUnchanged(t *testing.T) {
	d := buildDAG(t, 4, g("h", 0), g("cx", 0, 1), g("cx", 2, 3), g("cx", 1, 2), g("t", 3))
	before := d.Copy()

	out, props := run(t, &SwapMapper{Coupling: coupling.Line(4)}, d)
	assert.Equal(t, 0, props.Int(transpiler.PropSwapCount))
	assert.True(t, before.Equal(out), "routing changed an already mapped circuit")
	assert.True(t, props.Layout(transpiler.PropFinalLayout).Equal(layout.FromRegisters(d.QuantumRegisters()...)))
}

func TestSwapMapperInitialLayout(t *testing.T) {
	d := buildDAG(t, 2, g("cx", 0, 1))
	q := circuit.QuantumRegister("q", 2)
	initial, err := layout.FromMap(map[circuit.Bit]int{q.Bit(0): 0, q.Bit(1): 3})
	require.NoError(t, err)

	m := &SwapMapper{Coupling: coupling.Line(4), InitialLayout: initial}
	out, props := run(t, m, d)

	assert.Equal(t, 2, props.Int(transpiler.PropSwapCount))
	p, _ := initial.Physical(q.Bit(1))
	assert.Equal(t, 3, p, "InitialLayout was modified")

	anc, ok := out.Register(AncillaRegister)
	require.True(t, ok, "missing ancilla register")
	assert.Equal(t, 2, anc.Size)
	assert.True(t, Adjacent(out, m.Coupling, props.Layout(transpiler.PropLayout)))
}

func TestSwapMapperCustomSwapGate(t *testing.T) {
	d := buildDAG(t, 3, g("cx", 1, 2))
	out, _ := run(t, &SwapMapper{Coupling: star3(t), SwapGate: "bridge"}, d)
	assert.Equal(t, 1, out.CountOps()["bridge"])
	assert.True(t, out.HasBasisElement("bridge"))
}

func TestSwapMapperErrors(t *testing.T) {
	tests := []struct {
		name     string
		coupling *coupling.Map
		width    int
		gates    []gate
		code     errors.Code
	}{
		{"disconnected", coupling.MustNew([][2]int{{0, 1}, {2, 3}}), 4, []gate{g("cx", 0, 3)}, errors.ErrCodeConnectivity},
		{"three qubit gate", coupling.Line(3), 3, []gate{g("ccx", 0, 1, 2)}, errors.ErrCodeStructural},
		{"too wide", coupling.Line(2), 3, []gate{g("h", 0)}, errors.ErrCodeStructural},
		{"no coupling", nil, 2, []gate{g("cx", 0, 1)}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := buildDAG(t, tt.width, tt.gates...)
			out, err := (&SwapMapper{Coupling: tt.coupling}).Run(d, transpiler.PropertySet{})
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, tt.code), "error = %v, want %s", err, tt.code)
		})
	}
}

func TestSwapMapperKeepsClassicalWires(t *testing.T) {
	q := circuit.QuantumRegister("q", 3)
	c := circuit.ClassicalRegister("c", 3)
	circ := circuit.New("m", q, c)
	require.NoError(t, circ.Apply("cx", nil, q.Bit(1), q.Bit(2)))
	for i := range 3 {
		require.NoError(t, circ.Measure(q.Bit(i), c.Bit(i)))
	}
	d := mustFromCircuit(t, circ)

	out, _ := run(t, &SwapMapper{Coupling: star3(t)}, d)
	assert.Equal(t, []string{
		"swap(q[1],q[0])",
		"cx(q[0],q[2])",
		"measure(q[1])",
		"measure(q[0])",
		"measure(q[2])",
	}, opStrings(out))

	// q[1] now lives on physical 0, so its measurement still targets c[1].
	for n := range out.NamedNodes("measure") {
		if n.Qargs[0] == q.Bit(0) {
			assert.Equal(t, c.Bit(1), n.Cargs[0])
		}
	}
}

// randomGates returns n gates over width qubits drawn from h, t, x and cx.
func randomGates(rng *rand.Rand, width, n int) []gate {
	gates := make([]gate, n)
	for i := range gates {
		if rng.IntN(2) == 0 {
			a := rng.IntN(width)
			b := (a + 1 + rng.IntN(width-1)) % width
			gates[i] = g("cx", a, b)
			continue
		}
		gates[i] = g([]string{"h", "t", "x"}[rng.IntN(3)], rng.IntN(width))
	}
	return gates
}

func describe(name string, qubits []circuit.Bit) string {
	parts := make([]string, len(qubits))
	for i, q := range qubits {
		parts[i] = q.String()
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

// wireHistory lists, for every qubit, the operations touching it in order.
func wireHistory(d *dag.DAGCircuit) map[circuit.Bit][]string {
	h := make(map[circuit.Bit][]string)
	for n := range d.OpNodes() {
		s := describe(n.Name(), n.Qargs)
		for _, q := range n.Qargs {
			h[q] = append(h[q], s)
		}
	}
	return h
}

// replay walks a routed DAG, tracking where each circuit qubit sits as swaps
// are applied, and returns the operations per circuit qubit.
func replay(t *testing.T, out *dag.DAGCircuit, cm *coupling.Map, initial *layout.Layout) (map[circuit.Bit][]string, *layout.Layout) {
	t.Helper()
	current := initial.Copy()
	h := make(map[circuit.Bit][]string)
	for n := range out.OpNodes() {
		phys := make([]int, len(n.Qargs))
		for i, w := range n.Qargs {
			p, ok := initial.Physical(w)
			require.True(t, ok, "wire %s is not placed", w)
			phys[i] = p
		}
		if len(phys) == 2 {
			require.True(t, cm.Adjacent(phys[0], phys[1]), "%s acts on uncoupled %v", n.Name(), phys)
		}
		if n.Name() == "swap" {
			require.NoError(t, current.Swap(phys[0], phys[1]))
			require.NoError(t, current.Validate())
			continue
		}
		virt := make([]circuit.Bit, len(phys))
		for i, p := range phys {
			v, ok := current.Virtual(p)
			require.True(t, ok)
			virt[i] = v
		}
		s := describe(n.Name(), virt)
		for _, v := range virt {
			h[v] = append(h[v], s)
		}
	}
	return h, current
}

func TestSwapMapperRandomCircuits(t *testing.T) {
	devices := []struct {
		name string
		cm   *coupling.Map
	}{
		{"line6", coupling.Line(6)},
		{"ring6", coupling.Ring(6)},
		{"grid2x3", coupling.Grid(2, 3)},
		{"grid3x3", coupling.Grid(3, 3)},
	}
	for _, dev := range devices {
		for seed := range uint64(40) {
			t.Run(fmt.Sprintf("%s/seed%d", dev.name, seed), func(t *testing.T) {
				rng := rand.New(rand.NewPCG(seed, 7))
				width := 2 + rng.IntN(dev.cm.Size()-1)
				d := buildDAG(t, width, randomGates(rng, width, 30)...)
				want := wireHistory(d)

				out, props := run(t, &SwapMapper{Coupling: dev.cm}, d)
				require.NoError(t, out.Validate())

				initial := props.Layout(transpiler.PropLayout)
				require.NotNil(t, initial)
				require.NoError(t, initial.Validate())
				require.Equal(t, dev.cm.Size(), initial.Len())

				got, final := replay(t, out, dev.cm, initial)
				for q, ops := range want {
					assert.Equal(t, ops, got[q], "operations on %s", q)
				}
				assert.Equal(t, len(want), len(got), "operations landed on ancilla qubits")
				assert.True(t, final.Equal(props.Layout(transpiler.PropFinalLayout)))
				assert.Equal(t, out.CountOps()["swap"], props.Int(transpiler.PropSwapCount))
			})
		}
	}
}
