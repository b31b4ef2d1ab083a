package transpiler

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/errors"
	"github.com/matzehuels/qtranspile/pkg/observability"
)

// DefaultMaxIterations caps a FixedPointLoop that does not set its own limit.
const DefaultMaxIterations = 20

// FixedPointLoop re-runs Passes until FixedPointKey(Property) becomes true
// or MaxIterations rounds have run. Hitting the cap is not an error; the
// manager records a convergence warning and moves on.
type FixedPointLoop struct {
	Name          string
	Passes        []Pass
	Property      string
	MaxIterations int
}

// stage is either a single pass or a loop.
type stage struct {
	pass Pass
	loop *FixedPointLoop
}

// Manager runs a fixed sequence of stages.
//
// A Manager holds no per-run state and may be reused, but Run is not safe to
// call concurrently with Append or AppendLoop.
type Manager struct {
	Logger *log.Logger
	stages []stage
}

// PassRun records one executed pass.
type PassRun struct {
	Name      string
	Iteration int
	Duration  time.Duration
}

// Report summarises a Run.
type Report struct {
	Properties PropertySet
	Warnings   []errors.Warning
	Passes     []PassRun
}

// NewManager returns an empty manager. A nil logger discards output.
func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{Logger: logger}
}

// Append adds passes that run once, in order.
func (m *Manager) Append(passes ...Pass) *Manager {
	for _, p := range passes {
		m.stages = append(m.stages, stage{pass: p})
	}
	return m
}

// AppendLoop adds a fixed-point loop stage.
func (m *Manager) AppendLoop(loop FixedPointLoop) *Manager {
	if loop.MaxIterations <= 0 {
		loop.MaxIterations = DefaultMaxIterations
	}
	if loop.Name == "" {
		loop.Name = loop.Property + "_loop"
	}
	m.stages = append(m.stages, stage{loop: &loop})
	return m
}

// Len returns the number of stages.
func (m *Manager) Len() int { return len(m.stages) }

type runState struct {
	props  PropertySet
	valid  map[string]bool
	report Report
}

// Run executes every stage on d and returns the final DAG. The context is
// checked between passes. A failing pass aborts the run; its error is
// returned unchanged apart from being wrapped with the pass name.
func (m *Manager) Run(ctx context.Context, d *dag.DAGCircuit) (*dag.DAGCircuit, Report, error) {
	st := &runState{props: PropertySet{}, valid: make(map[string]bool)}
	st.report.Properties = st.props

	for _, s := range m.stages {
		var err error
		if s.loop != nil {
			d, err = m.runLoop(ctx, st, s.loop, d)
		} else {
			d, err = m.runPass(ctx, st, s.pass, d, 0)
		}
		if err != nil {
			return nil, st.report, err
		}
	}
	return d, st.report, nil
}

func (m *Manager) runLoop(ctx context.Context, st *runState, loop *FixedPointLoop, d *dag.DAGCircuit) (*dag.DAGCircuit, error) {
	key := FixedPointKey(loop.Property)
	delete(st.props, key)
	delete(st.props, PreviousKey(loop.Property))
	for i := 1; i <= loop.MaxIterations; i++ {
		for _, p := range loop.Passes {
			var err error
			if d, err = m.runPass(ctx, st, p, d, i); err != nil {
				return nil, err
			}
		}
		if st.props.Bool(key) {
			m.Logger.Debug("fixed point reached", "loop", loop.Name, "iterations", i)
			return d, nil
		}
	}
	w := errors.ConvergenceWarning(loop.Name, loop.MaxIterations)
	st.report.Warnings = append(st.report.Warnings, w)
	m.Logger.Warn(w.Message, "loop", loop.Name, "property", loop.Property)
	observability.Pass().OnConvergenceWarning(ctx, loop.Name, loop.MaxIterations)
	return d, nil
}

func (m *Manager) runPass(ctx context.Context, st *runState, p Pass, d *dag.DAGCircuit, iteration int) (*dag.DAGCircuit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := p.Name()
	for _, req := range p.Requires() {
		if !st.valid[req] {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "pass %s requires %s to have run", name, req)
		}
	}

	hooks := observability.Pass()
	hooks.OnPassStart(ctx, name)
	start := time.Now()
	out, err := p.Run(d, st.props)
	elapsed := time.Since(start)
	hooks.OnPassComplete(ctx, name, elapsed, err)
	if err != nil {
		m.Logger.Debug("pass failed", "pass", name, "error", err)
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if out == nil {
		out = d
	}

	if p.Kind() == Transformation {
		preserved := p.Preserves()
		for k := range st.valid {
			if !slices.Contains(preserved, k) {
				delete(st.valid, k)
			}
		}
	}
	st.valid[name] = true

	st.report.Passes = append(st.report.Passes, PassRun{Name: name, Iteration: iteration, Duration: elapsed})
	m.Logger.Debug("pass done", "pass", name, "iteration", iteration, "size", out.Size(), "elapsed", elapsed)
	return out, nil
}
