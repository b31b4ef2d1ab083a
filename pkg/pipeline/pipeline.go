// Package pipeline provides the compile pipeline shared by the CLI and the
// HTTP service.
//
// This package implements the complete parse → unroll → route → optimize →
// emit sequence so every entry point builds the same pass schedule, applies
// the same target defaults and caches results under the same keys.
//
// # Architecture
//
// A compilation runs these stages:
//
//  1. Parse: read OpenQASM 2.0 source into a circuit and build its DAG
//  2. Unroll: Decompose3Q, then Unroller to the target basis
//  3. Route: SwapMapper onto the target coupling map, then unroll the
//     inserted swaps
//  4. Optimize: a fixed-point loop of CXCancellation until the size settles
//  5. Emit: optional ApplyLayout, analysis passes, and OpenQASM output
//
// # Usage
//
// Create a Runner and compile:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Target: "line5"}
//	result, err := runner.Compile(ctx, "ghz", src, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.QASM)
//
// Inspect the parallel structure of a circuit without compiling it:
//
//	layers, err := runner.Layers(ctx, "ghz", src)
package pipeline

import (
	"io"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/errors"
	"github.com/matzehuels/qtranspile/pkg/layout"
	"github.com/matzehuels/qtranspile/pkg/store"
	"github.com/matzehuels/qtranspile/pkg/target"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Service
// =============================================================================

const (
	// DefaultTarget is the builtin target used when Options.Target is empty.
	DefaultTarget = "line5"

	// DefaultCacheTTL bounds how long compile results stay cached. Results
	// are deterministic, so the limit only keeps caches from growing forever.
	DefaultCacheTTL = 7 * 24 * time.Hour

	// MaxSourceBytes caps the size of accepted QASM sources.
	MaxSourceBytes = 1 << 20
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one compilation.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Target is a builtin target name, or for the CLI a path to a target
	// file. Ignored when Device is set.
	Target string `json:"target,omitempty"`

	// Basis overrides the target basis.
	Basis []string `json:"basis,omitempty"`

	// Optimize overrides the target's optimize setting.
	Optimize *bool `json:"optimize,omitempty"`

	// Physical rewrites the output onto a single register "q" indexed by
	// physical qubit.
	Physical bool `json:"physical,omitempty"`

	// InitialLayout places virtual qubits, e.g. {"q[0]": 2}. Unlisted
	// qubits take the lowest free physical qubits in declaration order.
	InitialLayout map[string]int `json:"initial_layout,omitempty"`

	// Refresh skips the cache lookup but still stores the new result.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Device *target.Target `json:"-"`
	Logger *log.Logger    `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a compilation.
type Result struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Target     string `json:"target"`
	SourceHash string `json:"source_hash"`

	// QASM is the compiled circuit.
	QASM string `json:"qasm"`

	Stats Stats `json:"stats"`

	// InitialLayout and FinalLayout map virtual qubits ("q[0]") to physical
	// qubits before the first and after the last inserted swap.
	InitialLayout map[string]int `json:"initial_layout,omitempty"`
	FinalLayout   map[string]int `json:"final_layout,omitempty"`

	// Warnings holds non-fatal diagnostics such as convergence warnings.
	Warnings []string `json:"warnings,omitempty"`

	// CacheHit reports whether the result came from the cache.
	CacheHit  bool      `json:"cache_hit"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats contains circuit metrics and timing.
type Stats struct {
	Size        int            `json:"size"`
	Depth       int            `json:"depth"`
	Width       int            `json:"width"`
	Swaps       int            `json:"swaps"`
	UnrollDepth int            `json:"unroll_depth"`
	Mapped      bool           `json:"mapped"`
	Ops         map[string]int `json:"ops"`
	Passes      int            `json:"passes"`
	Duration    time.Duration  `json:"duration"`
}

// Record converts r to its stored form.
func (r *Result) Record() *store.Record {
	return &store.Record{
		ID:         r.ID,
		Name:       r.Name,
		Target:     r.Target,
		SourceHash: r.SourceHash,
		Output:     r.QASM,
		Size:       r.Stats.Size,
		Depth:      r.Stats.Depth,
		Swaps:      r.Stats.Swaps,
		Ops:        maps.Clone(r.Stats.Ops),
		Warnings:   slices.Clone(r.Warnings),
		CreatedAt:  r.CreatedAt,
	}
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults resolves the target and checks the overrides.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Device == nil {
		ref := o.Target
		if ref == "" {
			ref = DefaultTarget
		}
		t, err := target.Resolve(ref)
		if err != nil {
			return err
		}
		o.Device = t
	}
	o.Target = o.Device.Name
	if len(o.Basis) > 0 {
		if err := errors.ValidateBasis(o.Basis); err != nil {
			return err
		}
	}
	for k, p := range o.InitialLayout {
		if _, err := circuit.ParseBit(k); err != nil {
			return err
		}
		if p < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "negative physical qubit %d for %s", p, k)
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// EffectiveBasis returns the basis override, or the target basis.
func (o *Options) EffectiveBasis() []string {
	if len(o.Basis) > 0 {
		return o.Basis
	}
	return o.Device.Basis
}

// ShouldOptimize returns the optimize override, or the target setting.
func (o *Options) ShouldOptimize() bool {
	if o.Optimize != nil {
		return *o.Optimize
	}
	return o.Device.Compiler.OptimizeEnabled()
}

// Layout builds the initial layout for a circuit, or nil for the identity
// placement when no layout was requested.
func (o *Options) Layout(c *circuit.Circuit) (*layout.Layout, error) {
	if len(o.InitialLayout) == 0 {
		return nil, nil
	}
	l := layout.New()
	for k, p := range o.InitialLayout {
		b, _ := circuit.ParseBit(k)
		if r, ok := c.Register(b.Register); !ok || !r.IsQuantum() || !r.Contains(b) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "initial layout names unknown qubit %s", k)
		}
		if err := l.Set(b, p); err != nil {
			return nil, err
		}
	}
	for _, r := range c.QuantumRegisters() {
		for _, b := range r.Bits() {
			if _, ok := l.Physical(b); ok {
				continue
			}
			if err := l.Set(b, freePhysical(l)); err != nil {
				return nil, err
			}
		}
	}
	return l, nil
}

// freePhysical returns the smallest physical index l does not use.
func freePhysical(l *layout.Layout) int {
	for p := 0; ; p++ {
		if _, used := l.Virtual(p); !used {
			return p
		}
	}
}

// layoutMap renders l as "name[index]" → physical.
func layoutMap(l *layout.Layout) map[string]int {
	if l == nil {
		return nil
	}
	out := make(map[string]int, l.Len())
	for _, v := range l.Virtuals() {
		p, _ := l.Physical(v)
		out[v.String()] = p
	}
	return out
}
