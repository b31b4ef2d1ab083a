// Package transpiler runs compiler passes over a DAGCircuit.
//
// A [Pass] is a named rewrite or analysis of a DAG. Analyses write results into
// the shared [PropertySet]; transformations return the DAG to continue with,
// either the mutated input or a newly built graph. The [Manager] runs passes
// strictly in order, checks that each pass's requirements have run and are
// still valid, and drives [FixedPointLoop] stages until a property stops
// changing or an iteration cap is reached.
//
// Passes themselves live in the passes subpackage.
package transpiler

import (
	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/layout"
)

// Kind separates passes that only read the DAG from passes that rewrite it.
type Kind int

const (
	// Transformation passes may change the DAG. Running one invalidates
	// every analysis it does not list in Preserves.
	Transformation Kind = iota
	// Analysis passes only write properties.
	Analysis
)

func (k Kind) String() string {
	if k == Analysis {
		return "analysis"
	}
	return "transformation"
}

// Pass is a single compiler stage.
type Pass interface {
	// Name identifies the pass in logs, metrics and Requires lists.
	Name() string
	Kind() Kind

	// Requires lists passes that must have run, and still be valid,
	// before this one.
	Requires() []string

	// Preserves lists analyses a transformation leaves valid.
	Preserves() []string

	// Run applies the pass. A transformation returns the DAG later passes
	// continue with; an analysis returns its input. On error the input
	// DAG may be partially rewritten and must not be reused.
	Run(d *dag.DAGCircuit, props PropertySet) (*dag.DAGCircuit, error)
}

// PropertySet carries analysis results between passes of one run.
type PropertySet map[string]any

// Int returns key as an int, or 0.
func (p PropertySet) Int(key string) int {
	v, _ := p[key].(int)
	return v
}

// Bool returns key as a bool, or false.
func (p PropertySet) Bool(key string) bool {
	v, _ := p[key].(bool)
	return v
}

// Layout returns key as a layout, or nil.
func (p PropertySet) Layout(key string) *layout.Layout {
	v, _ := p[key].(*layout.Layout)
	return v
}

// Has reports whether key is set.
func (p PropertySet) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Common property names.
const (
	PropSize         = "size"
	PropDepth        = "depth"
	PropSwapCount    = "swap_count"
	PropLayout       = "layout"
	PropFinalLayout  = "final_layout"
	PropUnrollDepth  = "unroll_depth"
	PropIsSwapMapped = "is_swap_mapped"
)

// FixedPointKey is the property a FixedPoint pass sets for prop.
func FixedPointKey(prop string) string { return prop + "_fixed_point" }

// PreviousKey is the property where a FixedPoint pass keeps the value of prop
// it saw last.
func PreviousKey(prop string) string { return "_previous_" + prop }
