package circuit

import "math"

// Step builds a rule step acting on the given local qubits.
func Step(op Operation, qargs ...int) RuleStep {
	return RuleStep{Op: op, Qargs: qargs}
}

func U3(theta, phi, lambda float64) Operation { return NewOp("u3", 1, 0, theta, phi, lambda) }
func U2(phi, lambda float64) Operation        { return NewOp("u2", 1, 0, phi, lambda) }
func U1(lambda float64) Operation             { return NewOp("u1", 1, 0, lambda) }
func CX() Operation                           { return NewOp("cx", 2, 0) }
func Swap() Operation                         { return NewOp("swap", 2, 0) }
func CCX() Operation                          { return NewOp("ccx", 3, 0) }
func Measure() Operation                      { return NewOp("measure", 1, 1) }

// Barrier returns a barrier spanning n qubits.
func Barrier(n int) Operation { return NewOp("barrier", n, 0) }

// Gate returns a parameterless single-qubit gate such as h or t.
func Gate(name string) Operation { return NewOp(name, 1, 0) }

// Gate2 returns a parameterless two-qubit gate such as cz.
func Gate2(name string) Operation { return NewOp(name, 2, 0) }

func single(name string, nparams int, rule Rule) Definition {
	return Definition{Name: name, NumQubits: 1, NumParams: nparams, Rule: rule}
}

func double(name string, nparams int, rule Rule) Definition {
	return Definition{Name: name, NumQubits: 2, NumParams: nparams, Rule: rule}
}

// constant wraps a parameterless step list.
func constant(steps ...RuleStep) Rule {
	return func([]float64) []RuleStep { return steps }
}

// Standard returns a new library holding the qelib1 gate set. u3 and cx are
// the opaque primitives everything else decomposes into.
func Standard() *Library {
	const pi = math.Pi
	l := NewLibrary()
	defs := []Definition{
		single("u3", 3, nil),
		double("cx", 0, nil),
		single("u2", 2, func(p []float64) []RuleStep {
			return []RuleStep{Step(U3(pi/2, p[0], p[1]), 0)}
		}),
		single("u1", 1, func(p []float64) []RuleStep {
			return []RuleStep{Step(U3(0, 0, p[0]), 0)}
		}),
		single("u0", 1, constant(Step(U3(0, 0, 0), 0))),
		single("id", 0, constant(Step(U3(0, 0, 0), 0))),
		single("x", 0, constant(Step(U3(pi, 0, pi), 0))),
		single("y", 0, constant(Step(U3(pi, pi/2, pi/2), 0))),
		single("z", 0, constant(Step(U1(pi), 0))),
		single("h", 0, constant(Step(U2(0, pi), 0))),
		single("s", 0, constant(Step(U1(pi/2), 0))),
		single("sdg", 0, constant(Step(U1(-pi/2), 0))),
		single("t", 0, constant(Step(U1(pi/4), 0))),
		single("tdg", 0, constant(Step(U1(-pi/4), 0))),
		single("rx", 1, func(p []float64) []RuleStep {
			return []RuleStep{Step(U3(p[0], -pi/2, pi/2), 0)}
		}),
		single("ry", 1, func(p []float64) []RuleStep {
			return []RuleStep{Step(U3(p[0], 0, 0), 0)}
		}),
		single("rz", 1, func(p []float64) []RuleStep {
			return []RuleStep{Step(U1(p[0]), 0)}
		}),
		double("cz", 0, constant(
			Step(Gate("h"), 1),
			Step(CX(), 0, 1),
			Step(Gate("h"), 1),
		)),
		double("cy", 0, constant(
			Step(Gate("sdg"), 1),
			Step(CX(), 0, 1),
			Step(Gate("s"), 1),
		)),
		double("ch", 0, constant(
			Step(Gate("h"), 1),
			Step(Gate("sdg"), 1),
			Step(CX(), 0, 1),
			Step(Gate("h"), 1),
			Step(Gate("t"), 1),
			Step(CX(), 0, 1),
			Step(Gate("t"), 1),
			Step(Gate("h"), 1),
			Step(Gate("s"), 1),
			Step(Gate("x"), 1),
			Step(Gate("s"), 0),
		)),
		double("crz", 1, func(p []float64) []RuleStep {
			return []RuleStep{
				Step(U1(p[0]/2), 1),
				Step(CX(), 0, 1),
				Step(U1(-p[0]/2), 1),
				Step(CX(), 0, 1),
			}
		}),
		double("cu1", 1, func(p []float64) []RuleStep {
			return []RuleStep{
				Step(U1(p[0]/2), 0),
				Step(CX(), 0, 1),
				Step(U1(-p[0]/2), 1),
				Step(CX(), 0, 1),
				Step(U1(p[0]/2), 1),
			}
		}),
		double("cu3", 3, func(p []float64) []RuleStep {
			theta, phi, lambda := p[0], p[1], p[2]
			return []RuleStep{
				Step(U1((lambda-phi)/2), 1),
				Step(CX(), 0, 1),
				Step(U3(-theta/2, 0, -(phi+lambda)/2), 1),
				Step(CX(), 0, 1),
				Step(U3(theta/2, phi, 0), 1),
			}
		}),
		double("rzz", 1, func(p []float64) []RuleStep {
			return []RuleStep{
				Step(CX(), 0, 1),
				Step(U1(p[0]), 1),
				Step(CX(), 0, 1),
			}
		}),
		double("swap", 0, constant(
			Step(CX(), 0, 1),
			Step(CX(), 1, 0),
			Step(CX(), 0, 1),
		)),
		{Name: "ccx", NumQubits: 3, Rule: constant(
			Step(Gate("h"), 2),
			Step(CX(), 1, 2),
			Step(Gate("tdg"), 2),
			Step(CX(), 0, 2),
			Step(Gate("t"), 2),
			Step(CX(), 1, 2),
			Step(Gate("tdg"), 2),
			Step(CX(), 0, 2),
			Step(Gate("t"), 1),
			Step(Gate("t"), 2),
			Step(Gate("h"), 2),
			Step(CX(), 0, 1),
			Step(Gate("t"), 0),
			Step(Gate("tdg"), 1),
			Step(CX(), 0, 1),
		)},
		{Name: "cswap", NumQubits: 3, Rule: constant(
			Step(CX(), 2, 1),
			Step(CCX(), 0, 1, 2),
			Step(CX(), 2, 1),
		)},
		{Name: "measure", NumQubits: 1, NumClbits: 1, Kind: KindMeasure},
		{Name: "reset", NumQubits: 1, Kind: KindReset},
		{Name: "barrier", Kind: KindBarrier, Variadic: true},
	}
	for _, d := range defs {
		l.defs[d.Name] = d
	}
	return l
}
