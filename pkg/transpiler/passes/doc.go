// Package passes implements the compiler passes run by transpiler.Manager.
//
// Basis closure:
//   - [Unroller] rewrites every gate outside a target basis through the
//     DAG's decomposition rules, recursively.
//   - [Decompose3Q] applies the same rewrite to gates on three or more qubits.
//
// Connectivity closure:
//   - [SwapMapper] routes a basis-closed DAG onto a coupling map by inserting
//     swaps so every two-qubit gate acts on adjacent physical qubits.
//   - [ApplyLayout] rebuilds a DAG on a single physical register.
//   - [CheckMap] reports whether a DAG already satisfies a coupling map.
//
// Optimisation loop:
//   - [CXCancellation] removes back-to-back identical cx pairs.
//   - [Size] and [Depth] record circuit metrics.
//   - [FixedPoint] flags when a metric stopped changing between iterations.
package passes
