package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/qtranspile/pkg/buildinfo"
	"github.com/matzehuels/qtranspile/pkg/cache"
	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/coupling"
	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/errors"
	"github.com/matzehuels/qtranspile/pkg/layout"
	"github.com/matzehuels/qtranspile/pkg/observability"
	"github.com/matzehuels/qtranspile/pkg/qasm"
	"github.com/matzehuels/qtranspile/pkg/transpiler"
	"github.com/matzehuels/qtranspile/pkg/transpiler/passes"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and service use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// now stamps results; replaced in tests.
	now func() time.Time
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		now:    time.Now,
	}
}

// Compile parses src and compiles it for the target in opts.
func (r *Runner) Compile(ctx context.Context, name, src string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	c, hash, err := Parse(name, src)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	key := r.Keyer.CompileKey(hash, opts.keyOpts())
	if !opts.Refresh {
		var cached Result
		if err := cache.GetJSON(ctx, r.Cache, key, &cached); err == nil {
			observability.Cache().OnCacheHit(ctx, "compile")
			r.Logger.Info("cache hit", "circuit", c.Name, "target", opts.Target)
			cached.ID = uuid.NewString()
			cached.CacheHit = true
			cached.CreatedAt = r.now().UTC()
			return &cached, nil
		}
		observability.Cache().OnCacheMiss(ctx, "compile")
	}

	result, err := r.CompileCircuit(ctx, c, opts)
	if err != nil {
		return nil, err
	}
	result.SourceHash = hash

	if size, err := cache.SetJSON(ctx, r.Cache, key, result, DefaultCacheTTL); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "compile", size)
	}
	return result, nil
}

// CompileCircuit compiles an already parsed circuit without consulting the
// cache. The result has no SourceHash.
func (r *Runner) CompileCircuit(ctx context.Context, c *circuit.Circuit, opts Options) (result *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	start := time.Now()
	hooks := observability.Compile()
	hooks.OnCompileStart(ctx, opts.Target, c.NumQubits())
	var stats Stats
	defer func() {
		hooks.OnCompileComplete(ctx, opts.Target, observability.CompileStats{
			Size:  stats.Size,
			Depth: stats.Depth,
			Swaps: stats.Swaps,
		}, time.Since(start), err)
	}()

	cm, err := opts.Device.CouplingMap()
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", opts.Target, err)
	}
	if c.NumQubits() > cm.Size() {
		return nil, errors.Structural("circuit needs %d qubits, device has %d", c.NumQubits(), cm.Size())
	}
	initial, err := opts.Layout(c)
	if err != nil {
		return nil, err
	}
	d, err := dag.FromCircuit(c)
	if err != nil {
		return nil, fmt.Errorf("build dag: %w", err)
	}
	r.Logger.Info("parsed circuit",
		"circuit", c.Name,
		"qubits", d.Width(),
		"ops", d.Size())

	m := BuildManager(c.Library, cm, initial, opts)
	out, report, err := m.Run(ctx, d)
	if err != nil {
		return nil, err
	}
	props := report.Properties

	stats = Stats{
		Size:        props.Int(transpiler.PropSize),
		Depth:       props.Int(transpiler.PropDepth),
		Width:       out.Width(),
		Swaps:       props.Int(transpiler.PropSwapCount),
		UnrollDepth: props.Int(transpiler.PropUnrollDepth),
		Mapped:      props.Bool(transpiler.PropIsSwapMapped),
		Ops:         out.CountOps(),
		Passes:      len(report.Passes),
		Duration:    time.Since(start),
	}
	result = &Result{
		ID:            uuid.NewString(),
		Name:          c.Name,
		Target:        opts.Target,
		QASM:          qasm.String(out.ToCircuit()),
		Stats:         stats,
		InitialLayout: layoutMap(props.Layout(transpiler.PropLayout)),
		FinalLayout:   layoutMap(props.Layout(transpiler.PropFinalLayout)),
		CreatedAt:     r.now().UTC(),
	}
	if opts.Physical {
		result.InitialLayout = layoutMap(initialOrIdentity(initial, c))
	}
	for _, w := range report.Warnings {
		result.Warnings = append(result.Warnings, w.String())
	}

	r.Logger.Info("compiled circuit",
		"circuit", c.Name,
		"target", opts.Target,
		"size", stats.Size,
		"depth", stats.Depth,
		"swaps", stats.Swaps,
		"duration", stats.Duration)
	return result, nil
}

// BuildManager assembles the pass schedule for one compilation. lib is the
// circuit's gate library; it decides whether the swap gate can itself be
// unrolled after routing or has to stay in the basis.
func BuildManager(lib *circuit.Library, cm *coupling.Map, initial *layout.Layout, opts Options) *transpiler.Manager {
	cfg := opts.Device.Compiler
	basis := opts.EffectiveBasis()

	routed := basis
	if def, ok := lib.Lookup(cfg.SwapGate); (!ok || def.Opaque()) && !slices.Contains(basis, cfg.SwapGate) {
		routed = append(slices.Clone(basis), cfg.SwapGate)
	}

	m := transpiler.NewManager(opts.Logger)
	m.Append(
		&passes.Decompose3Q{MaxDepth: cfg.MaxUnrollDepth},
		&passes.Unroller{Basis: basis, MaxDepth: cfg.MaxUnrollDepth},
		&passes.SwapMapper{Coupling: cm, InitialLayout: initial, SwapGate: cfg.SwapGate},
		&passes.Unroller{Basis: routed, MaxDepth: cfg.MaxUnrollDepth},
	)
	if opts.ShouldOptimize() {
		m.AppendLoop(transpiler.FixedPointLoop{
			Name:          "optimize",
			Passes:        []transpiler.Pass{passes.CXCancellation{}, passes.Size{}, passes.FixedPoint{Property: transpiler.PropSize}},
			Property:      transpiler.PropSize,
			MaxIterations: cfg.MaxIterations,
		})
	}
	if opts.Physical {
		m.Append(passes.ApplyLayout{})
	}
	m.Append(passes.CheckMap{Coupling: cm}, passes.Size{}, passes.Depth{})
	return m
}

func initialOrIdentity(l *layout.Layout, c *circuit.Circuit) *layout.Layout {
	if l != nil {
		return l
	}
	return layout.FromRegisters(c.QuantumRegisters()...)
}

// keyOpts returns the cache key options of a validated Options.
func (o *Options) keyOpts() cache.CompileKeyOpts {
	return cache.CompileKeyOpts{
		Target:         o.Device.Name,
		Basis:          o.EffectiveBasis(),
		Coupling:       o.Device.Coupling,
		Optimize:       o.ShouldOptimize(),
		Physical:       o.Physical,
		Layout:         o.InitialLayout,
		MaxIterations:  o.Device.Compiler.MaxIterations,
		MaxUnrollDepth: o.Device.Compiler.MaxUnrollDepth,
		SwapGate:       o.Device.Compiler.SwapGate,
		Version:        buildinfo.CacheVersion(),
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
