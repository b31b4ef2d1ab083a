package circuit

import (
	"slices"

	"github.com/matzehuels/qtranspile/pkg/errors"
)

// Instruction is one operation applied to concrete bits.
type Instruction struct {
	Op        Operation
	Qargs     []Bit
	Cargs     []Bit
	Condition *Condition
}

// Circuit is an ordered instruction list over declared registers.
//
// The zero value is not usable - use New.
type Circuit struct {
	Name         string
	Registers    []Register
	Instructions []Instruction

	// Library holds the definitions instructions refer to. New installs
	// the standard library; parsers add user gate declarations to it.
	Library *Library
}

// New creates a circuit with the standard library and the given registers.
// It panics on an invalid or duplicate register, which is a programming error
// for literal register lists.
func New(name string, regs ...Register) *Circuit {
	c := &Circuit{Name: name, Library: Standard()}
	for _, r := range regs {
		if err := c.AddRegister(r); err != nil {
			panic(err)
		}
	}
	return c
}

// AddRegister declares r.
func (c *Circuit) AddRegister(r Register) error {
	if err := errors.ValidateRegisterName(r.Name); err != nil {
		return err
	}
	if r.Size <= 0 {
		return errors.Structural("register %q must have positive size", r.Name)
	}
	if _, ok := c.Register(r.Name); ok {
		return errors.Structural("duplicate register %q", r.Name)
	}
	c.Registers = append(c.Registers, r)
	return nil
}

// Register looks up a register by name.
func (c *Circuit) Register(name string) (Register, bool) {
	for _, r := range c.Registers {
		if r.Name == name {
			return r, true
		}
	}
	return Register{}, false
}

// QuantumRegisters returns the quantum registers in declaration order.
func (c *Circuit) QuantumRegisters() []Register {
	return filterKind(c.Registers, Quantum)
}

// ClassicalRegisters returns the classical registers in declaration order.
func (c *Circuit) ClassicalRegisters() []Register {
	return filterKind(c.Registers, Classical)
}

// NumQubits returns the total number of qubits.
func (c *Circuit) NumQubits() int { return total(c.QuantumRegisters()) }

// NumClbits returns the total number of clbits.
func (c *Circuit) NumClbits() int { return total(c.ClassicalRegisters()) }

func filterKind(regs []Register, kind RegisterKind) []Register {
	var out []Register
	for _, r := range regs {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

func total(regs []Register) int {
	n := 0
	for _, r := range regs {
		n += r.Size
	}
	return n
}

// Append adds an instruction after checking that every bit is declared with
// the right kind, appears once, and that the argument counts match op.
func (c *Circuit) Append(op Operation, qargs, cargs []Bit, cond *Condition) error {
	if len(qargs) != op.NumQubits || len(cargs) != op.NumClbits {
		return errors.Structural("%s expects %d qubits and %d clbits, got %d and %d",
			op.Name, op.NumQubits, op.NumClbits, len(qargs), len(cargs))
	}
	if err := c.checkBits(qargs, Quantum); err != nil {
		return err
	}
	if err := c.checkBits(cargs, Classical); err != nil {
		return err
	}
	if cond != nil {
		r, ok := c.Register(cond.Register)
		if !ok || r.Kind != Classical {
			return errors.Structural("unknown classical register %q in condition", cond.Register)
		}
	}
	c.Instructions = append(c.Instructions, Instruction{
		Op:        op.Clone(),
		Qargs:     slices.Clone(qargs),
		Cargs:     slices.Clone(cargs),
		Condition: CloneCondition(cond),
	})
	return nil
}

func (c *Circuit) checkBits(bits []Bit, kind RegisterKind) error {
	for i, b := range bits {
		r, ok := c.Register(b.Register)
		if !ok || r.Kind != kind || !r.Contains(b) {
			return errors.Structural("unknown %s bit %s", kind, b)
		}
		if slices.Contains(bits[:i], b) {
			return errors.Structural("duplicate argument %s", b)
		}
	}
	return nil
}

// Apply appends the library gate name on qubits, taking its arity from the
// circuit's library.
func (c *Circuit) Apply(name string, params []float64, qubits ...Bit) error {
	def, ok := c.Library.Lookup(name)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "unknown operation %q", name)
	}
	nq := def.NumQubits
	if def.Variadic {
		nq = len(qubits)
	}
	return c.Append(NewOp(name, nq, def.NumClbits, params...), qubits, nil, nil)
}

// ApplyIf is Apply with a classical condition.
func (c *Circuit) ApplyIf(cond Condition, name string, params []float64, qubits ...Bit) error {
	if err := c.Apply(name, params, qubits...); err != nil {
		return err
	}
	last := &c.Instructions[len(c.Instructions)-1]
	if r, ok := c.Register(cond.Register); !ok || r.Kind != Classical {
		c.Instructions = c.Instructions[:len(c.Instructions)-1]
		return errors.Structural("unknown classical register %q in condition", cond.Register)
	}
	last.Condition = &cond
	return nil
}

// Measure appends a measurement of q into b.
func (c *Circuit) Measure(q, b Bit) error {
	return c.Append(Measure(), []Bit{q}, []Bit{b}, nil)
}

// Len returns the number of instructions.
func (c *Circuit) Len() int { return len(c.Instructions) }

// CountOps tallies instructions by operation name.
func (c *Circuit) CountOps() map[string]int {
	counts := make(map[string]int)
	for _, in := range c.Instructions {
		counts[in.Op.Name]++
	}
	return counts
}
