// Package target describes compilation targets: the gate basis a device
// executes natively and the coupling map of its physical qubits.
//
// Targets are small TOML documents:
//
//	name = "line5"
//	description = "Five qubits in a line"
//	basis = ["u1", "u2", "u3", "cx", "id"]
//	coupling = [[0, 1], [1, 2], [2, 3], [3, 4]]
//
//	[compiler]
//	max_iterations = 20
//	max_unroll_depth = 50
//	swap_gate = "swap"
//	optimize = true
//
// A set of builtin targets is embedded in the binary; see [Names].
package target

import (
	"embed"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/qtranspile/pkg/coupling"
	"github.com/matzehuels/qtranspile/pkg/errors"
)

// Compiler defaults applied to fields a target leaves unset.
const (
	DefaultMaxIterations  = 20
	DefaultMaxUnrollDepth = 50
	DefaultSwapGate       = "swap"
)

//go:embed builtin/*.toml
var builtinFS embed.FS

// Target is a device description.
type Target struct {
	Name        string   `toml:"name" json:"name"`
	Description string   `toml:"description" json:"description,omitempty"`
	Basis       []string `toml:"basis" json:"basis"`
	Coupling    [][]int  `toml:"coupling" json:"coupling"`
	Compiler    Compiler `toml:"compiler" json:"compiler"`
}

// Compiler holds per-target pass settings.
type Compiler struct {
	MaxIterations  int    `toml:"max_iterations" json:"max_iterations"`
	MaxUnrollDepth int    `toml:"max_unroll_depth" json:"max_unroll_depth"`
	SwapGate       string `toml:"swap_gate" json:"swap_gate"`

	// Optimize enables the cx-cancellation loop after routing. A nil
	// value in the document means true.
	Optimize *bool `toml:"optimize" json:"optimize"`
}

// OptimizeEnabled reports whether the optimization loop runs.
func (c Compiler) OptimizeEnabled() bool { return c.Optimize == nil || *c.Optimize }

// Parse decodes and validates a TOML target.
func Parse(data []byte) (*Target, error) {
	var t Target
	md, err := toml.Decode(string(data), &t)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode target")
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown target keys: %s", strings.Join(keys, ", "))
	}
	t.applyDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads a target file.
func Load(filename string) (*Target, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read target %s", filename)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "target %s", filename)
	}
	return t, nil
}

// Lookup returns the builtin target called name.
func Lookup(name string) (*Target, error) {
	data, err := builtinFS.ReadFile(path.Join("builtin", name+".toml"))
	if err != nil {
		return nil, errors.New(errors.ErrCodeTargetNotFound, "unknown target %q (builtin targets: %s)",
			name, strings.Join(Names(), ", "))
	}
	return Parse(data)
}

// Resolve treats ref as a file when one exists at that path and as a builtin
// name otherwise.
func Resolve(ref string) (*Target, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return Load(ref)
	}
	return Lookup(ref)
}

// Names lists the builtin targets in sorted order.
func Names() []string {
	entries, _ := builtinFS.ReadDir("builtin")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	slices.Sort(names)
	return names
}

// All returns every builtin target.
func All() []*Target {
	var out []*Target
	for _, name := range Names() {
		if t, err := Lookup(name); err == nil {
			out = append(out, t)
		}
	}
	return out
}

func (t *Target) applyDefaults() {
	if t.Compiler.MaxIterations == 0 {
		t.Compiler.MaxIterations = DefaultMaxIterations
	}
	if t.Compiler.MaxUnrollDepth == 0 {
		t.Compiler.MaxUnrollDepth = DefaultMaxUnrollDepth
	}
	if t.Compiler.SwapGate == "" {
		t.Compiler.SwapGate = DefaultSwapGate
	}
}

// Validate checks names, basis, coupling edges and compiler limits.
func (t *Target) Validate() error {
	if t.Name == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "target name is required")
	}
	if err := errors.ValidateBasis(t.Basis); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "target %s", t.Name)
	}
	if len(t.Coupling) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "target %s has no coupling edges", t.Name)
	}
	for _, e := range t.Coupling {
		if len(e) != 2 {
			return errors.New(errors.ErrCodeInvalidConfig, "target %s: coupling edge %v must have two qubits", t.Name, e)
		}
	}
	if _, err := t.CouplingMap(); err != nil {
		return err
	}
	if t.Compiler.MaxIterations < 0 || t.Compiler.MaxUnrollDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "target %s: compiler limits must be positive", t.Name)
	}
	if err := errors.ValidateOpName(t.Compiler.SwapGate); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "target %s: swap_gate", t.Name)
	}
	return nil
}

// CouplingMap builds the coupling map of t.
func (t *Target) CouplingMap() (*coupling.Map, error) {
	edges := make([][2]int, len(t.Coupling))
	for i, e := range t.Coupling {
		if len(e) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "coupling edge %v must have two qubits", e)
		}
		edges[i] = [2]int{e[0], e[1]}
	}
	return coupling.New(edges)
}

// NumQubits returns the number of physical qubits.
func (t *Target) NumQubits() int {
	m, err := t.CouplingMap()
	if err != nil {
		return 0
	}
	return m.Size()
}
