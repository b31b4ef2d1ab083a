package passes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/transpiler"
)

// gate is a compact instruction for test circuits: name and qubit indices
// into register q.
type gate struct {
	name   string
	qubits []int
	params []float64
}

func g(name string, qubits ...int) gate { return gate{name: name, qubits: qubits} }

func buildDAG(t *testing.T, nq int, gates ...gate) *dag.DAGCircuit {
	t.Helper()
	q := circuit.QuantumRegister("q", nq)
	c := circuit.New("test", q)
	for _, gt := range gates {
		bits := make([]circuit.Bit, len(gt.qubits))
		for i, j := range gt.qubits {
			bits[i] = q.Bit(j)
		}
		require.NoError(t, c.Apply(gt.name, gt.params, bits...), gt.name)
	}
	d, err := dag.FromCircuit(c)
	require.NoError(t, err)
	return d
}

// opString renders nodes as "name(q0,q1)" using register indices.
func opStrings(d *dag.DAGCircuit) []string {
	var out []string
	for n := range d.OpNodes() {
		s := n.Name() + "("
		for i, b := range n.Qargs {
			if i > 0 {
				s += ","
			}
			s += b.String()
		}
		out = append(out, s+")")
	}
	return out
}

func run(t *testing.T, p transpiler.Pass, d *dag.DAGCircuit) (*dag.DAGCircuit, transpiler.PropertySet) {
	t.Helper()
	props := transpiler.PropertySet{}
	out, err := p.Run(d, props)
	require.NoError(t, err)
	return out, props
}

func mustFromCircuit(t *testing.T, c *circuit.Circuit) *dag.DAGCircuit {
	t.Helper()
	d, err := dag.FromCircuit(c)
	require.NoError(t, err)
	return d
}
