package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/errors"
	"github.com/matzehuels/qtranspile/pkg/transpiler"
)

func TestUnrollerSingleRule(t *testing.T) {
	lib := circuit.Standard()
	require.NoError(t, lib.Add(circuit.Definition{
		Name:      "mygate",
		NumQubits: 1,
		Rule: func([]float64) []circuit.RuleStep {
			return []circuit.RuleStep{circuit.Step(circuit.U3(0.1, 0.2, 0.3), 0)}
		},
	}))
	q := circuit.QuantumRegister("q", 1)
	d := dag.NewWithLibrary(lib)
	require.NoError(t, d.AddRegister(q))
	_, err := d.ApplyOperationBack(circuit.Gate("mygate"), q.Bits(), nil, nil)
	require.NoError(t, err)

	out, props := run(t, NewUnroller("u3", "cx"), d)

	assert.Equal(t, []string{"u3(q[0])"}, opStrings(out))
	assert.Equal(t, 1, props.Int(transpiler.PropUnrollDepth))
	for n := range out.OpNodes() {
		assert.Equal(t, []float64{0.1, 0.2, 0.3}, n.Op.Params)
	}
}

func TestUnrollerClosureAndIdempotence(t *testing.T) {
	tests := []struct {
		name  string
		basis []string
	}{
		{"u3 cx", []string{"u3", "cx"}},
		{"ibm", []string{"u1", "u2", "u3", "cx", "id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := buildDAG(t, 3,
				g("h", 0),
				g("ccx", 0, 1, 2),
				g("cswap", 2, 1, 0),
				gate{name: "cu3", qubits: []int{0, 2}, params: []float64{1, 2, 3}},
				g("ch", 1, 2),
				g("barrier", 0, 1, 2),
				gate{name: "rzz", qubits: []int{0, 1}, params: []float64{0.5}},
			)
			out, _ := run(t, NewUnroller(tt.basis...), d)
			require.NoError(t, out.Validate())

			for n := range out.GateNodes() {
				assert.Contains(t, tt.basis, n.Name())
			}
			assert.Equal(t, 1, out.CountOps()["barrier"])

			before := out.Copy()
			again, props := run(t, NewUnroller(tt.basis...), out)
			assert.True(t, before.Equal(again), "second unroll changed the DAG")
			assert.Equal(t, 0, props.Int(transpiler.PropUnrollDepth))
		})
	}
}

func TestUnrollerKeepsDirectives(t *testing.T) {
	q := circuit.QuantumRegister("q", 1)
	c := circuit.ClassicalRegister("c", 1)
	circ := circuit.New("m", q, c)
	require.NoError(t, circ.Apply("reset", nil, q.Bit(0)))
	require.NoError(t, circ.Apply("x", nil, q.Bit(0)))
	require.NoError(t, circ.Measure(q.Bit(0), c.Bit(0)))
	d, err := dag.FromCircuit(circ)
	require.NoError(t, err)

	out, _ := run(t, NewUnroller("u3"), d)
	assert.Equal(t, []string{"reset(q[0])", "u3(q[0])", "measure(q[0])"}, opStrings(out))
}

func TestUnrollerErrors(t *testing.T) {
	t.Run("opaque outside basis", func(t *testing.T) {
		d := buildDAG(t, 2, g("cx", 0, 1))
		_, err := NewUnroller("u3").Run(d, transpiler.PropertySet{})
		assert.True(t, errors.Is(err, errors.ErrCodeBasis), "error = %v", err)
	})

	t.Run("unknown name", func(t *testing.T) {
		q := circuit.QuantumRegister("q", 1)
		d := dag.New()
		require.NoError(t, d.AddRegister(q))
		_, err := d.ApplyOperationBack(circuit.Gate("mystery"), q.Bits(), nil, nil)
		require.NoError(t, err)
		_, err = NewUnroller("u3", "cx").Run(d, transpiler.PropertySet{})
		assert.True(t, errors.Is(err, errors.ErrCodeBasis), "error = %v", err)
	})

	t.Run("recursive rules", func(t *testing.T) {
		lib := circuit.Standard()
		for _, pair := range [][2]string{{"ping", "pong"}, {"pong", "ping"}} {
			other := pair[1]
			require.NoError(t, lib.Add(circuit.Definition{
				Name:      pair[0],
				NumQubits: 1,
				Rule: func([]float64) []circuit.RuleStep {
					return []circuit.RuleStep{circuit.Step(circuit.Gate(other), 0)}
				},
			}))
		}
		q := circuit.QuantumRegister("q", 1)
		d := dag.NewWithLibrary(lib)
		require.NoError(t, d.AddRegister(q))
		_, err := d.ApplyOperationBack(circuit.Gate("ping"), q.Bits(), nil, nil)
		require.NoError(t, err)

		u := NewUnroller("u3", "cx")
		u.MaxDepth = 10
		_, err = u.Run(d, transpiler.PropertySet{})
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "error = %v", err)
	})

	t.Run("empty basis", func(t *testing.T) {
		d := buildDAG(t, 1, g("h", 0))
		_, err := NewUnroller().Run(d, transpiler.PropertySet{})
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "error = %v", err)
	})
}

func TestDecompose3Q(t *testing.T) {
	tests := []struct {
		name    string
		gate    gate
		wantLen int
		allowed []string
	}{
		{"ccx", g("ccx", 0, 1, 2), 15, []string{"h", "t", "tdg", "cx"}},
		{"cswap", g("cswap", 0, 1, 2), 17, []string{"h", "t", "tdg", "cx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := buildDAG(t, 3, tt.gate)
			out, _ := run(t, &Decompose3Q{}, d)
			require.NoError(t, out.Validate())
			assert.Equal(t, tt.wantLen, out.Size())
			for n := range out.OpNodes() {
				assert.Contains(t, tt.allowed, n.Name())
				assert.LessOrEqual(t, len(n.Qargs), 2)
			}
		})
	}
}

func TestDecompose3QLeavesSmallGates(t *testing.T) {
	d := buildDAG(t, 3, g("h", 0), g("cz", 0, 1), g("ccx", 0, 1, 2))
	out, _ := run(t, &Decompose3Q{}, d)
	counts := out.CountOps()
	assert.Equal(t, 1, counts["cz"])
	assert.Equal(t, 0, counts["ccx"])
	assert.Equal(t, 3, counts["h"], "one original h plus two from ccx")
}

func TestDecompose3QConditional(t *testing.T) {
	q := circuit.QuantumRegister("q", 3)
	c := circuit.ClassicalRegister("c", 1)
	circ := circuit.New("cond", q, c)
	require.NoError(t, circ.ApplyIf(circuit.Condition{Register: "c", Value: 1}, "ccx", nil, q.Bits()...))
	d, err := dag.FromCircuit(circ)
	require.NoError(t, err)

	out, _ := run(t, &Decompose3Q{}, d)
	require.NoError(t, out.Validate())
	require.Equal(t, 15, out.Size())
	for n := range out.OpNodes() {
		require.NotNil(t, n.Condition, n.Name())
		assert.Equal(t, circuit.Condition{Register: "c", Value: 1}, *n.Condition)
	}
}
