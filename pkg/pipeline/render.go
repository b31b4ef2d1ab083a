package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/layout"
	"github.com/matzehuels/qtranspile/pkg/render/dot"
	"github.com/matzehuels/qtranspile/pkg/target"
)

// Format constants for drawings.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported drawing formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg)", format)
	}
	return nil
}

// DrawOptions configures Draw.
type DrawOptions struct {
	Format   string
	Detailed bool

	// Coupling draws the device of Device instead of the circuit, labelled
	// with the circuit's identity placement.
	Coupling bool
	Device   *target.Target
}

// Draw parses src and renders its DAG, or the target device, as DOT or SVG.
func Draw(ctx context.Context, name, src string, opts DrawOptions) ([]byte, error) {
	if opts.Format == "" {
		opts.Format = FormatSVG
	}
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}
	c, _, err := Parse(name, src)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if opts.Coupling {
		if opts.Device == nil {
			return nil, fmt.Errorf("coupling drawing needs a target")
		}
		cm, err := opts.Device.CouplingMap()
		if err != nil {
			return nil, err
		}
		graph := dot.CouplingDOT(cm, layout.FromRegisters(c.QuantumRegisters()...))
		if opts.Format == FormatDOT {
			return []byte(graph), nil
		}
		return dot.RenderCouplingSVG(ctx, graph)
	}

	d, err := dag.FromCircuit(c)
	if err != nil {
		return nil, fmt.Errorf("build dag: %w", err)
	}
	graph := dot.CircuitDOT(d, dot.Options{Detailed: opts.Detailed})
	if opts.Format == FormatDOT {
		return []byte(graph), nil
	}
	return dot.RenderSVG(ctx, graph)
}
