// Package pkg provides the core libraries of the qtranspile circuit compiler.
//
// # Overview
//
// qtranspile rewrites quantum circuits so they run on a concrete device: every
// gate is expressed in the device's native basis and every two-qubit gate acts
// on a pair of physically coupled qubits. The pkg directory is organized into
// four areas:
//
//  1. Circuit model - [circuit], [dag], [layout], [coupling]
//  2. Compilation - [transpiler], [transpiler/passes], [target]
//  3. Formats - [qasm], [render/dot]
//  4. Infrastructure - [pipeline], [cache], [store], [observability], [errors]
//
// # Architecture
//
// The typical data flow through qtranspile:
//
//	OpenQASM 2.0 source
//	         ↓
//	    [qasm] package (parse into a circuit + gate library)
//	         ↓
//	    [dag] package (wire-level dependency graph)
//	         ↓
//	    [transpiler] package (pass schedule over the DAG)
//	         ↓
//	    OpenQASM 2.0 / DOT / SVG output
//
// # Quick Start
//
// Compile a circuit for a builtin target:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/qtranspile/pkg/cache"
//	    "github.com/matzehuels/qtranspile/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	res, err := runner.Compile(context.Background(), "ghz", src, pipeline.Options{
//	    Target: "line5",
//	})
//	fmt.Print(res.QASM)
//
// Build a schedule by hand:
//
//	d, _ := dag.FromCircuit(c)
//	m := transpiler.NewManager(logger)
//	m.Append(&passes.Unroller{Basis: []string{"u1", "u2", "u3", "cx", "id"}})
//	m.Append(&passes.SwapMapper{Coupling: coupling.Line(5)})
//	out, report, err := m.Run(ctx, d)
//
// # Main Packages
//
// ## Circuit Model
//
// [circuit] - Registers, bits, instructions and the gate library of
// decomposition rules.
//
// [dag] - Arena-backed DAG with one input and one output node per wire.
// Supports deterministic topological order, serial layers, node substitution
// and splicing, composition and conversion back to a circuit.
//
// [layout] - Bijective virtual-to-physical qubit placement.
//
// [coupling] - Device connectivity graph with shortest paths and distances.
//
// ## Compilation
//
// [transpiler] - Pass interface, shared property set and the pass manager
// with requirement tracking and fixed-point loops.
//
// [transpiler/passes] - Unroller, Decompose3Q, SwapMapper, CXCancellation,
// ApplyLayout, CheckMap and the Size, Depth and FixedPoint analyses.
//
// [target] - TOML device descriptions; a set of builtin targets is embedded.
//
// ## Formats
//
// [qasm] - OpenQASM 2.0 reader and writer.
//
// [render/dot] - DOT and SVG drawings of circuit DAGs and coupling maps.
//
// ## Infrastructure
//
// [pipeline] - Complete compile pipeline (parse → unroll → route → optimize →
// emit) used by the CLI and the HTTP service. Ensures consistent behavior
// across both entry points.
//
// [cache] - Result caches: file (CLI), in-memory LRU and Redis (service).
//
// [store] - Result persistence for the service: in-memory and MongoDB.
//
// [observability] - Pass, compile, cache and HTTP hooks with a Prometheus
// implementation.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/dag/...                # Specific package
//	go test -run Example                 # Examples only
//	go test -short ./...                 # Skip Graphviz rendering
//
// [circuit]: https://pkg.go.dev/github.com/matzehuels/qtranspile/pkg/circuit
// [dag]: https://pkg.go.dev/github.com/matzehuels/qtranspile/pkg/dag
// [layout]: https://pkg.go.dev/github.com/matzehuels/qtranspile/pkg/layout
// [coupling]: https://pkg.go.dev/github.com/matzehuels/qtranspile/pkg/coupling
// [transpiler]: https://pkg.go.dev/github.com/matzehuels/qtranspile/pkg/transpiler
// [transpiler/passes]: https://pkg.go.dev/github.com/matzehuels/qtranspile/pkg/transpiler/passes
// [target]: https://pkg.go.dev/github.com/matzehuels/qtranspile/pkg/target
// [qasm]: https://pkg.go.dev/github.com/matzehuels/qtranspile/pkg/qasm
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/qtranspile/pkg/render/dot
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/qtranspile/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/qtranspile/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/qtranspile/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/qtranspile/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/qtranspile/pkg/errors
package pkg
