// Package qasm reads and writes OpenQASM 2.0 circuits.
//
// # Reading
//
// [Parse], [ParseString] and [ParseFile] build a [circuit.Circuit] from the
// subset of OpenQASM 2.0 the compiler works with:
//
//   - OPENQASM 2.0 header and include "qelib1.inc" (the standard gates are
//     built in, so the include is only checked, never read)
//   - qreg and creg declarations
//   - gate calls with parameter expressions: numbers, pi, + - * / ^, unary
//     minus, parentheses, and sin cos tan exp ln sqrt
//   - register broadcast: "h q;" applies h to every qubit of q, and
//     "cx a, b;" pairs a[i] with b[i]
//   - measure, reset, barrier, and "if (c == n)" conditions
//   - gate and opaque declarations; a gate body becomes the decomposition
//     rule of the new definition, with parameters bound when it is expanded
//
// The builtins U and CX are read as u3 and cx. Registers are capped at
// [MaxRegisterSize] bits, all declarations together at [MaxBits], and an if
// statement may only test a register of up to [MaxConditionWidth] bits.
//
// # Writing
//
// [Write] emits canonical OpenQASM 2.0. Angles that are small rational
// multiples of pi are written as fractions of pi, everything else with the
// shortest decimal form that reads back to the same float64. Operations the
// standard library does not know are declared opaque at the top of the file.
package qasm
