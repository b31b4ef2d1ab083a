package pipeline

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qtranspile/pkg/cache"
	"github.com/matzehuels/qtranspile/pkg/errors"
	"github.com/matzehuels/qtranspile/pkg/qasm"
	"github.com/matzehuels/qtranspile/pkg/target"
)

const farCX = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[3];
creg c[3];
h q[0];
cx q[0],q[2];
measure q -> c;
`

const toffoli = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[3];
ccx q[0],q[1],q[2];
`

const bell = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
h q[0];
cx q[0],q[1];
measure q -> c;
`

func newTestRunner(t *testing.T) (*Runner, *cache.MemoryCache) {
	t.Helper()
	mc, err := cache.NewMemoryCache(16)
	require.NoError(t, err)
	r := NewRunner(mc, nil, log.New(io.Discard))
	r.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return r, mc
}

func onlyBasis(t *testing.T, ops map[string]int, basis []string) {
	t.Helper()
	for name := range ops {
		if name == "measure" || name == "barrier" || name == "reset" {
			continue
		}
		assert.Contains(t, basis, name, "op %s is outside the basis", name)
	}
}

func TestCompileRoutesAndUnrolls(t *testing.T) {
	r, _ := newTestRunner(t)

	res, err := r.Compile(context.Background(), "far", farCX, Options{Target: "line5"})
	require.NoError(t, err)

	assert.Equal(t, "far", res.Name)
	assert.Equal(t, "line5", res.Target)
	assert.NotEmpty(t, res.ID)
	assert.NotEmpty(t, res.SourceHash)
	assert.False(t, res.CacheHit)
	assert.Equal(t, 1, res.Stats.Swaps)
	assert.True(t, res.Stats.Mapped)
	assert.Equal(t, 5, res.Stats.Width)
	assert.Equal(t, 3, res.Stats.Ops["measure"])
	assert.Zero(t, res.Stats.Ops["swap"])
	onlyBasis(t, res.Stats.Ops, []string{"u1", "u2", "u3", "cx", "id"})
	assert.Equal(t, map[string]int{"q[0]": 0, "q[1]": 1, "q[2]": 2, "ancilla[0]": 3, "ancilla[1]": 4}, res.InitialLayout)
	assert.Equal(t, 1, res.FinalLayout["q[0]"])
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), res.CreatedAt)

	out, err := qasm.ParseString("out", res.QASM)
	require.NoError(t, err, res.QASM)
	assert.Equal(t, res.Stats.Size, out.Len())
}

func TestCompileDecomposesToffoli(t *testing.T) {
	r, _ := newTestRunner(t)

	res, err := r.Compile(context.Background(), "toffoli", toffoli, Options{Target: "star3"})
	require.NoError(t, err)
	assert.Zero(t, res.Stats.Ops["ccx"])
	assert.Positive(t, res.Stats.Ops["cx"])
	assert.Positive(t, res.Stats.UnrollDepth)
	assert.True(t, res.Stats.Mapped)
	onlyBasis(t, res.Stats.Ops, []string{"u1", "u2", "u3", "cx", "id"})
}

func TestCompileCache(t *testing.T) {
	r, mc := newTestRunner(t)
	ctx := context.Background()

	first, err := r.Compile(ctx, "bell", bell, Options{})
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, 1, mc.Len())

	second, err := r.Compile(ctx, "bell", bell, Options{})
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.QASM, second.QASM)
	assert.Equal(t, first.Stats.Size, second.Stats.Size)

	refreshed, err := r.Compile(ctx, "bell", bell, Options{Refresh: true})
	require.NoError(t, err)
	assert.False(t, refreshed.CacheHit)

	physical, err := r.Compile(ctx, "bell", bell, Options{Physical: true})
	require.NoError(t, err)
	assert.False(t, physical.CacheHit, "physical output shares a key with virtual output")
	assert.Equal(t, 2, mc.Len())
}

func TestCompilePhysical(t *testing.T) {
	r, _ := newTestRunner(t)

	res, err := r.Compile(context.Background(), "far", farCX, Options{Target: "line5", Physical: true})
	require.NoError(t, err)

	out, err := qasm.ParseString("out", res.QASM)
	require.NoError(t, err)
	regs := out.QuantumRegisters()
	require.Len(t, regs, 1)
	assert.Equal(t, "q", regs[0].Name)
	assert.Equal(t, 5, regs[0].Size)
	assert.True(t, res.Stats.Mapped)
	assert.Equal(t, 2, res.InitialLayout["q[2]"])
}

func TestCompilePhysicalWithClassicalRegisterQ(t *testing.T) {
	r, _ := newTestRunner(t)
	src := "OPENQASM 2.0;\ninclude \"qelib1.inc\";\nqreg a[2];\ncreg q[2];\ncx a[0],a[1];\nmeasure a -> q;\n"

	res, err := r.Compile(context.Background(), "clash", src, Options{Target: "line5", Physical: true})
	require.NoError(t, err)

	out, err := qasm.ParseString("out", res.QASM)
	require.NoError(t, err)
	regs := out.QuantumRegisters()
	require.Len(t, regs, 1)
	assert.Equal(t, "q1", regs[0].Name)
	assert.Contains(t, res.QASM, "measure q1[0] -> q[0];")
}

func TestCompileInitialLayout(t *testing.T) {
	r, _ := newTestRunner(t)

	res, err := r.Compile(context.Background(), "bell", bell, Options{
		Target:        "line5",
		InitialLayout: map[string]int{"q[0]": 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.InitialLayout["q[0]"])
	assert.Equal(t, 0, res.InitialLayout["q[1]"])
	assert.Equal(t, 3, res.Stats.Swaps)
	assert.True(t, res.Stats.Mapped)
}

func TestCompileOptimizeOverride(t *testing.T) {
	src := `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
cx q[0],q[1];
cx q[0],q[1];
`
	r, _ := newTestRunner(t)
	ctx := context.Background()

	res, err := r.Compile(ctx, "pair", src, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.Size)

	off := false
	res, err = r.Compile(ctx, "pair", src, Options{Optimize: &off})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.Size)
}

func TestCompileCustomSwapGate(t *testing.T) {
	dev, err := target.Parse([]byte(`
name = "bridged"
basis = ["u3", "cx"]
coupling = [[0, 1], [0, 2]]

[compiler]
swap_gate = "bridge"
`))
	require.NoError(t, err)

	r, _ := newTestRunner(t)
	src := "OPENQASM 2.0;\nqreg q[3];\ncx q[1],q[2];\n"
	res, err := r.Compile(context.Background(), "bridge", src, Options{Device: dev})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Ops["bridge"])
	assert.Contains(t, res.QASM, "opaque bridge a0,a1;")
	assert.Equal(t, "bridged", res.Target)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts Options
		code errors.Code
	}{
		{"unknown target", bell, Options{Target: "nope"}, errors.ErrCodeTargetNotFound},
		{"bad basis", bell, Options{Basis: []string{"cx", "cx"}}, errors.ErrCodeInvalidConfig},
		{"bad layout key", bell, Options{InitialLayout: map[string]int{"q0": 1}}, errors.ErrCodeInvalidInput},
		{"layout names unknown qubit", bell, Options{InitialLayout: map[string]int{"r[0]": 1}}, errors.ErrCodeInvalidInput},
		{"no rule to basis", bell, Options{Basis: []string{"u3"}}, errors.ErrCodeBasis},
		{"too wide", "OPENQASM 2.0;\nqreg q[6];\nh q[0];\n", Options{Target: "line5"}, errors.ErrCodeStructural},
		{"syntax", "qreg q[1]; h q[0]", Options{}, errors.ErrCodeInvalidInput},
		{"too large", strings.Repeat(" ", MaxSourceBytes+1), Options{}, errors.ErrCodeInvalidInput},
	}
	r, _ := newTestRunner(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Compile(context.Background(), "c", tt.src, tt.opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "error %v, want %s", err, tt.code)
		})
	}
}

func TestCompileRejectsWideCircuitBeforePasses(t *testing.T) {
	r, _ := newTestRunner(t)
	src := fmt.Sprintf("OPENQASM 2.0;\nqreg q[%d];\nh q[0];\n", qasm.MaxRegisterSize)

	_, err := r.Compile(context.Background(), "wide", src, Options{Target: "line5"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStructural), "error %v", err)
	assert.Contains(t, err.Error(), "needs 1024 qubits, device has 5")
	assert.NotContains(t, err.Error(), "swap_mapper", "width should be checked before any pass runs")
}

func TestCompileCancelled(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Compile(ctx, "bell", bell, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultRecord(t *testing.T) {
	r, _ := newTestRunner(t)
	res, err := r.Compile(context.Background(), "bell", bell, Options{})
	require.NoError(t, err)
	res.Warnings = []string{"w"}

	rec := res.Record()
	assert.Equal(t, res.ID, rec.ID)
	assert.Equal(t, res.QASM, rec.Output)
	assert.Equal(t, res.Stats.Ops, rec.Ops)
	assert.Equal(t, res.Stats.Depth, rec.Depth)
	assert.Equal(t, res.CreatedAt, rec.CreatedAt)

	rec.Ops["cx"] = 99
	rec.Warnings[0] = "changed"
	assert.NotEqual(t, 99, res.Stats.Ops["cx"])
	assert.Equal(t, "w", res.Warnings[0])
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, DefaultTarget, opts.Target)
	assert.NotNil(t, opts.Logger)
	assert.Equal(t, opts.Device.Basis, opts.EffectiveBasis())
	assert.True(t, opts.ShouldOptimize())

	opts.Basis = []string{"bad basis"}
	assert.NoError(t, opts.ValidateAndSetDefaults(), "second call revalidated")

	opts = Options{Basis: []string{"u3", "cx"}}
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, []string{"u3", "cx"}, opts.EffectiveBasis())
}

func TestBuildManager(t *testing.T) {
	opts := Options{Target: "line5"}
	require.NoError(t, opts.ValidateAndSetDefaults())
	cm, err := opts.Device.CouplingMap()
	require.NoError(t, err)

	c, _, err := Parse("bell", bell)
	require.NoError(t, err)
	assert.Equal(t, 8, BuildManager(c.Library, cm, nil, opts).Len())

	off := false
	opts.Optimize = &off
	opts.Physical = true
	assert.Equal(t, 8, BuildManager(c.Library, cm, nil, opts).Len())
}

func TestLayers(t *testing.T) {
	r, mc := newTestRunner(t)
	ctx := context.Background()

	layers, err := r.Layers(ctx, "bell", bell)
	require.NoError(t, err)
	want := []Layer{
		{Index: 0, Ops: []string{"h q[0]"}},
		{Index: 1, Ops: []string{"cx q[0],q[1]"}},
		{Index: 2, Ops: []string{"measure q[0] -> c[0]", "measure q[1] -> c[1]"}},
	}
	assert.Equal(t, want, layers)
	assert.Equal(t, 1, mc.Len())

	again, err := r.Layers(ctx, "bell", bell)
	require.NoError(t, err)
	assert.Equal(t, want, again)
}

func TestDraw(t *testing.T) {
	ctx := context.Background()

	out, err := Draw(ctx, "bell", bell, DrawOptions{Format: FormatDOT})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "digraph G {"))

	dev, err := target.Lookup("line5")
	require.NoError(t, err)
	out, err = Draw(ctx, "bell", bell, DrawOptions{Format: FormatDOT, Coupling: true, Device: dev})
	require.NoError(t, err)
	assert.Contains(t, string(out), `p1 [label="1\nq[1]"];`)

	_, err = Draw(ctx, "bell", bell, DrawOptions{Format: "png"})
	assert.Error(t, err)
	_, err = Draw(ctx, "bell", bell, DrawOptions{Format: FormatDOT, Coupling: true})
	assert.Error(t, err)
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"dot", "svg"} {
		assert.NoError(t, ValidateFormat(f))
	}
	for _, f := range []string{"", "SVG", "pdf"} {
		assert.Error(t, ValidateFormat(f))
	}
	assert.True(t, slices.Contains([]string{FormatDOT, FormatSVG}, FormatSVG))
}
