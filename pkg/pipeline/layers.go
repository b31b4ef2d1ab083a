package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/qtranspile/pkg/cache"
	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/dag"
	"github.com/matzehuels/qtranspile/pkg/observability"
	"github.com/matzehuels/qtranspile/pkg/qasm"
)

// Layer lists the operations of one serial layer.
type Layer struct {
	Index int      `json:"index"`
	Ops   []string `json:"ops"`
}

// Layers parses src and returns its serial layers, before any pass runs.
func (r *Runner) Layers(ctx context.Context, name, src string) ([]Layer, error) {
	c, hash, err := Parse(name, src)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	key := r.Keyer.LayersKey(hash)
	var layers []Layer
	if err := cache.GetJSON(ctx, r.Cache, key, &layers); err == nil {
		observability.Cache().OnCacheHit(ctx, "layers")
		return layers, nil
	}
	observability.Cache().OnCacheMiss(ctx, "layers")

	d, err := dag.FromCircuit(c)
	if err != nil {
		return nil, fmt.Errorf("build dag: %w", err)
	}
	layers = LayersOf(d)
	r.Logger.Info("computed layers", "circuit", c.Name, "layers", len(layers))

	if size, err := cache.SetJSON(ctx, r.Cache, key, layers, DefaultCacheTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "layers", size)
	}
	return layers, nil
}

// LayersOf describes the serial layers of d, one QASM statement per
// operation.
func LayersOf(d *dag.DAGCircuit) []Layer {
	layers := []Layer{}
	for i, nodes := range d.LayerNodes() {
		layer := Layer{Index: i}
		for _, n := range nodes {
			layer.Ops = append(layer.Ops, qasm.FormatInstruction(circuit.Instruction{
				Op:        n.Op,
				Qargs:     n.Qargs,
				Cargs:     n.Cargs,
				Condition: n.Condition,
			}))
		}
		layers = append(layers, layer)
	}
	return layers
}
