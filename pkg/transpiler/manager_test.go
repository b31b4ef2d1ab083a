package transpiler_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/errors"
	"github.com/matzehuels/qtranspile/pkg/observability"
	"github.com/matzehuels/qtranspile/pkg/transpiler"
	"github.com/matzehuels/qtranspile/pkg/transpiler/passes"
)

func cxChain(t *testing.T, n int) *dag.DAGCircuit {
	t.Helper()
	q := circuit.QuantumRegister("q", 2)
	c := circuit.New("chain", q)
	for range n {
		require.NoError(t, c.Apply("cx", nil, q.Bits()...))
	}
	d, err := dag.FromCircuit(c)
	require.NoError(t, err)
	return d
}

// grow appends an h gate on every run, so size never settles.
type grow struct{}

func (grow) Name() string          { return "grow" }
func (grow) Kind() transpiler.Kind { return transpiler.Transformation }
func (grow) Requires() []string    { return nil }
func (grow) Preserves() []string   { return nil }

func (grow) Run(d *dag.DAGCircuit, _ transpiler.PropertySet) (*dag.DAGCircuit, error) {
	_, err := d.ApplyOperationBack(circuit.Gate("h"), []circuit.Bit{{Register: "q", Index: 0}}, nil, nil)
	return d, err
}

type recordingHooks struct {
	observability.NoopPassHooks
	mu       sync.Mutex
	started  []string
	warnings []string
}

func (h *recordingHooks) OnPassStart(_ context.Context, pass string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, pass)
}

func (h *recordingHooks) OnConvergenceWarning(_ context.Context, loop string, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.warnings = append(h.warnings, loop)
}

func TestManagerSequence(t *testing.T) {
	m := transpiler.NewManager(nil).Append(passes.Size{}, passes.Depth{})
	assert.Equal(t, 2, m.Len())

	out, report, err := m.Run(context.Background(), cxChain(t, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, out.Size())
	assert.Equal(t, 3, report.Properties.Int(transpiler.PropSize))
	assert.Equal(t, 3, report.Properties.Int(transpiler.PropDepth))
	require.Len(t, report.Passes, 2)
	assert.Equal(t, "size", report.Passes[0].Name)
	assert.Zero(t, report.Passes[0].Iteration)
}

func TestManagerLoopConverges(t *testing.T) {
	m := transpiler.NewManager(nil).AppendLoop(transpiler.FixedPointLoop{
		Passes:   []transpiler.Pass{passes.CXCancellation{}, passes.Size{}, passes.FixedPoint{Property: transpiler.PropSize}},
		Property: transpiler.PropSize,
	})

	out, report, err := m.Run(context.Background(), cxChain(t, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Size())
	assert.Empty(t, report.Warnings)
	assert.True(t, report.Properties.Bool(transpiler.FixedPointKey(transpiler.PropSize)))
	require.Len(t, report.Passes, 6)
	assert.Equal(t, 2, report.Passes[5].Iteration)
}

func TestManagerLoopsDoNotShareHistory(t *testing.T) {
	loop := transpiler.FixedPointLoop{
		Passes:   []transpiler.Pass{passes.CXCancellation{}, passes.Size{}, passes.FixedPoint{Property: transpiler.PropSize}},
		Property: transpiler.PropSize,
	}
	m := transpiler.NewManager(nil).AppendLoop(loop).AppendLoop(loop)

	_, report, err := m.Run(context.Background(), cxChain(t, 5))
	require.NoError(t, err)
	// The second loop compares only against its own first iteration.
	require.Len(t, report.Passes, 12)
	assert.Equal(t, 1, report.Passes[6].Iteration)
	assert.Equal(t, 2, report.Passes[11].Iteration)
}

func TestManagerConvergenceWarning(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPassHooks(hooks)
	t.Cleanup(observability.Reset)

	m := transpiler.NewManager(nil).AppendLoop(transpiler.FixedPointLoop{
		Name:          "growing",
		Passes:        []transpiler.Pass{grow{}, passes.Size{}, passes.FixedPoint{Property: transpiler.PropSize}},
		Property:      transpiler.PropSize,
		MaxIterations: 3,
	})

	out, report, err := m.Run(context.Background(), cxChain(t, 1))
	require.NoError(t, err, "hitting the iteration cap is not fatal")
	assert.Equal(t, 4, out.Size())
	require.Len(t, report.Warnings, 1)
	w := report.Warnings[0]
	assert.Equal(t, errors.ErrCodeConvergence, w.Code)
	assert.Equal(t, "CONVERGENCE: growing: no fixed point after 3 iterations", w.String())
	assert.Equal(t, []string{"growing"}, hooks.warnings)
	assert.Len(t, hooks.started, 9)
}

func TestManagerRequires(t *testing.T) {
	tests := []struct {
		name   string
		passes []transpiler.Pass
	}{
		{"never run", []transpiler.Pass{passes.FixedPoint{Property: transpiler.PropSize}}},
		{"invalidated", []transpiler.Pass{passes.Size{}, passes.CXCancellation{}, passes.FixedPoint{Property: transpiler.PropSize}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := transpiler.NewManager(nil).Append(tt.passes...).Run(context.Background(), cxChain(t, 2))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
		})
	}
}

func TestManagerAnalysisKeepsValidity(t *testing.T) {
	m := transpiler.NewManager(nil).Append(
		passes.Size{},
		passes.Depth{},
		passes.FixedPoint{Property: transpiler.PropSize},
	)
	_, _, err := m.Run(context.Background(), cxChain(t, 2))
	assert.NoError(t, err)
}

func TestManagerPassErrorIsWrapped(t *testing.T) {
	m := transpiler.NewManager(nil).Append(passes.NewUnroller("u3"))
	_, _, err := m.Run(context.Background(), cxChain(t, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeBasis))
	assert.Contains(t, err.Error(), "unroller: ")
}

func TestManagerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := transpiler.NewManager(nil).Append(passes.Size{}).Run(ctx, cxChain(t, 1))
	assert.ErrorIs(t, err, context.Canceled)
}
