package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/coupling"
	"github.com/matzehuels/qtranspile/pkg/errors"
	"github.com/matzehuels/qtranspile/pkg/transpiler"
)

func TestSizeAndDepth(t *testing.T) {
	d := buildDAG(t, 2, g("h", 0), g("h", 1), g("cx", 0, 1))
	_, props := run(t, Size{}, d)
	assert.Equal(t, 3, props.Int(transpiler.PropSize))
	_, props = run(t, Depth{}, d)
	assert.Equal(t, 2, props.Int(transpiler.PropDepth))
}

func TestFixedPoint(t *testing.T) {
	d := buildDAG(t, 1, g("h", 0))
	props := transpiler.PropertySet{transpiler.PropSize: 3}
	fp := FixedPoint{Property: transpiler.PropSize}
	key := transpiler.FixedPointKey(transpiler.PropSize)

	_, err := fp.Run(d, props)
	require.NoError(t, err)
	assert.False(t, props.Bool(key), "first run cannot be a fixed point")

	props[transpiler.PropSize] = 2
	_, _ = fp.Run(d, props)
	assert.False(t, props.Bool(key))

	_, _ = fp.Run(d, props)
	assert.True(t, props.Bool(key))

	_, err = FixedPoint{Property: "missing"}.Run(d, transpiler.PropertySet{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
	assert.Equal(t, []string{"depth"}, FixedPoint{Property: "depth"}.Requires())
}

func TestFixedPointNonComparableValues(t *testing.T) {
	d := buildDAG(t, 1, g("h", 0))
	fp := FixedPoint{Property: "ops"}
	key := transpiler.FixedPointKey("ops")
	props := transpiler.PropertySet{"ops": map[string]int{"cx": 2}}

	_, err := fp.Run(d, props)
	require.NoError(t, err)
	props["ops"] = map[string]int{"cx": 2}
	require.NotPanics(t, func() { _, err = fp.Run(d, props) })
	require.NoError(t, err)
	assert.True(t, props.Bool(key))

	props["ops"] = []int{1}
	_, _ = fp.Run(d, props)
	assert.False(t, props.Bool(key))
}

func TestCheckMap(t *testing.T) {
	tests := []struct {
		name  string
		gates []gate
		want  bool
	}{
		{"adjacent", []gate{g("cx", 0, 1), g("cx", 2, 1)}, true},
		{"far", []gate{g("cx", 0, 2)}, false},
		{"single qubit only", []gate{g("h", 0), g("x", 2)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := buildDAG(t, 3, tt.gates...)
			_, props := run(t, CheckMap{Coupling: coupling.Line(3)}, d)
			assert.Equal(t, tt.want, props.Bool(transpiler.PropIsSwapMapped))
		})
	}
}

func TestApplyLayoutAfterRouting(t *testing.T) {
	cm := coupling.Line(5)
	d := buildDAG(t, 3, g("cx", 0, 2), g("h", 1))
	props := transpiler.PropertySet{}

	routed, err := (&SwapMapper{Coupling: cm}).Run(d, props)
	require.NoError(t, err)
	physical, err := ApplyLayout{}.Run(routed, props)
	require.NoError(t, err)
	require.NoError(t, physical.Validate())

	regs := physical.QuantumRegisters()
	require.Len(t, regs, 1)
	assert.Equal(t, 5, regs[0].Size)
	assert.Equal(t, routed.Size(), physical.Size())

	_, err = CheckMap{Coupling: cm}.Run(physical, props)
	require.NoError(t, err)
	assert.True(t, props.Bool(transpiler.PropIsSwapMapped))
}

func TestApplyLayoutClassicalRegisterNamedQ(t *testing.T) {
	a := circuit.QuantumRegister("a", 2)
	cq := circuit.ClassicalRegister("q", 2)
	circ := circuit.New("clash", a, cq)
	require.NoError(t, circ.Apply("cx", nil, a.Bit(0), a.Bit(1)))
	require.NoError(t, circ.Measure(a.Bit(1), cq.Bit(0)))
	d := mustFromCircuit(t, circ)

	out, props := run(t, ApplyLayout{}, d)
	require.NoError(t, out.Validate())

	regs := out.QuantumRegisters()
	require.Len(t, regs, 1)
	assert.Equal(t, "q1", regs[0].Name)
	assert.Equal(t, []circuit.Register{cq}, out.ClassicalRegisters())
	assert.Equal(t, []string{"cx(q1[0],q1[1])", "measure(q1[1])"}, opStrings(out))
	assert.Equal(t, 2, props.Layout(transpiler.PropLayout).Len())

	for n := range out.NamedNodes("measure") {
		assert.Equal(t, cq.Bit(0), n.Cargs[0])
	}
}
