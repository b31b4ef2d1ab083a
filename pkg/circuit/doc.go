// Package circuit defines the value types shared by every stage of the
// compiler: registers, bits, operations, classical conditions and the
// data-driven gate library that supplies decomposition rules.
//
// # Operations and Definitions
//
// An [Operation] is a tagged value: a name, float64 parameters and its qubit
// and clbit counts. Behaviour is never attached to the value itself. Instead
// a [Library] maps names to [Definition] entries, and a definition's [Rule]
// expands parameters into an ordered list of [RuleStep] values over a local
// register sized to the definition's arity. A definition with a nil rule is
// opaque: it can only be kept, never decomposed.
//
// [Standard] returns a fresh library holding the OpenQASM 2.0 qelib1 gates.
// There is no package-level table to mutate; each DAG or circuit owns its
// own library, so user gate declarations never leak between compilations.
//
//	lib := circuit.Standard()
//	def, _ := lib.Lookup("ccx")
//	steps, _ := def.Expand(nil) // 15 steps over h, t, tdg and cx
//
// # Circuits
//
// [Circuit] is a thin front-end container: declared registers plus an ordered
// instruction list. It is the input and output of the dag converter and the
// unit the qasm package reads and writes.
package circuit
