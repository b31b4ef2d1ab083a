package circuit

import (
	"maps"
	"slices"

	"github.com/matzehuels/qtranspile/pkg/errors"
)

// Kind classifies a definition. Everything except KindGate is a directive
// that basis-changing passes leave in place.
type Kind int

const (
	KindGate Kind = iota
	KindMeasure
	KindReset
	KindBarrier
)

func (k Kind) String() string {
	switch k {
	case KindMeasure:
		return "measure"
	case KindReset:
		return "reset"
	case KindBarrier:
		return "barrier"
	default:
		return "gate"
	}
}

// RuleStep is one sub-operation of a decomposition, addressed by position in
// the definition's local qubit and clbit registers.
type RuleStep struct {
	Op    Operation
	Qargs []int
	Cargs []int
}

// Rule expands a definition's parameters into its one-level decomposition.
type Rule func(params []float64) []RuleStep

// Definition describes an operation name: its arity, kind and, unless the
// operation is opaque, how to decompose it.
type Definition struct {
	Name      string
	NumQubits int
	NumClbits int
	NumParams int
	Kind      Kind

	// Variadic definitions (barrier) accept any number of qubits; arity
	// checks against the definition are skipped.
	Variadic bool

	// Rule is nil for opaque operations.
	Rule Rule
}

// Opaque reports whether d has no decomposition rule.
func (d Definition) Opaque() bool { return d.Rule == nil }

// Directive reports whether d is measure, reset or barrier.
func (d Definition) Directive() bool { return d.Kind != KindGate }

// Op returns an operation named after d with the given parameters.
func (d Definition) Op(params ...float64) Operation {
	return NewOp(d.Name, d.NumQubits, d.NumClbits, params...)
}

// Expand applies d's rule. It fails with a basis error for opaque definitions
// and with an invalid-input error when the parameter count is wrong.
func (d Definition) Expand(params []float64) ([]RuleStep, error) {
	if d.Rule == nil {
		return nil, errors.Basis("%q is opaque and has no decomposition", d.Name)
	}
	if len(params) != d.NumParams {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"%q takes %d parameters, got %d", d.Name, d.NumParams, len(params))
	}
	return d.Rule(params), nil
}

// Library is a name-keyed table of definitions. The zero value is not usable;
// use NewLibrary or Standard.
type Library struct {
	defs map[string]Definition
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{defs: make(map[string]Definition)}
}

// Add registers def, replacing any previous definition of the same name.
func (l *Library) Add(def Definition) error {
	if err := errors.ValidateOpName(def.Name); err != nil {
		return err
	}
	if def.NumQubits < 0 || def.NumClbits < 0 || def.NumParams < 0 {
		return errors.Structural("definition %q has negative arity", def.Name)
	}
	l.defs[def.Name] = def
	return nil
}

// Lookup returns the definition registered under name.
func (l *Library) Lookup(name string) (Definition, bool) {
	def, ok := l.defs[name]
	return def, ok
}

// Has reports whether name is defined.
func (l *Library) Has(name string) bool {
	_, ok := l.defs[name]
	return ok
}

// Names returns all defined names in sorted order.
func (l *Library) Names() []string {
	return slices.Sorted(maps.Keys(l.defs))
}

// Len returns the number of definitions.
func (l *Library) Len() int { return len(l.defs) }

// Clone returns an independent copy of l.
func (l *Library) Clone() *Library {
	return &Library{defs: maps.Clone(l.defs)}
}
