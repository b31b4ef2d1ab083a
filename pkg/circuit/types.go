package circuit

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/qtranspile/pkg/errors"
)

// RegisterKind distinguishes quantum and classical registers.
type RegisterKind int

const (
	Quantum RegisterKind = iota
	Classical
)

func (k RegisterKind) String() string {
	if k == Classical {
		return "creg"
	}
	return "qreg"
}

// Register is a named, contiguous block of wires.
type Register struct {
	Name string
	Size int
	Kind RegisterKind
}

// QuantumRegister returns a quantum register of the given size.
func QuantumRegister(name string, size int) Register {
	return Register{Name: name, Size: size, Kind: Quantum}
}

// ClassicalRegister returns a classical register of the given size.
func ClassicalRegister(name string, size int) Register {
	return Register{Name: name, Size: size, Kind: Classical}
}

// IsQuantum reports whether r holds qubits.
func (r Register) IsQuantum() bool { return r.Kind == Quantum }

// Bit returns the i-th wire of r. It does not check bounds.
func (r Register) Bit(i int) Bit { return Bit{Register: r.Name, Index: i} }

// Bits returns every wire of r in index order.
func (r Register) Bits() []Bit {
	bits := make([]Bit, r.Size)
	for i := range bits {
		bits[i] = r.Bit(i)
	}
	return bits
}

// Contains reports whether b belongs to r.
func (r Register) Contains(b Bit) bool {
	return b.Register == r.Name && b.Index >= 0 && b.Index < r.Size
}

func (r Register) String() string {
	return fmt.Sprintf("%s %s[%d]", r.Kind, r.Name, r.Size)
}

// Bit identifies a single wire by register name and index. It is the virtual
// identity of a qubit or clbit and is comparable, so it can key maps.
type Bit struct {
	Register string
	Index    int
}

func (b Bit) String() string {
	return fmt.Sprintf("%s[%d]", b.Register, b.Index)
}

// ParseBit parses the "name[index]" form produced by Bit.String.
func ParseBit(s string) (Bit, error) {
	name, rest, ok := strings.Cut(s, "[")
	if !ok || !strings.HasSuffix(rest, "]") {
		return Bit{}, errors.New(errors.ErrCodeInvalidInput, "invalid bit %q, want name[index]", s)
	}
	idx, err := strconv.Atoi(strings.TrimSuffix(rest, "]"))
	if err != nil || idx < 0 {
		return Bit{}, errors.New(errors.ErrCodeInvalidInput, "invalid bit index in %q", s)
	}
	if err := errors.ValidateRegisterName(name); err != nil {
		return Bit{}, err
	}
	return Bit{Register: name, Index: idx}, nil
}

// Operation is a gate or directive applied to a node's arguments.
type Operation struct {
	Name      string
	Params    []float64
	NumQubits int
	NumClbits int
}

// NewOp builds an operation over nq qubits and nc clbits.
func NewOp(name string, nq, nc int, params ...float64) Operation {
	return Operation{Name: name, Params: params, NumQubits: nq, NumClbits: nc}
}

// Clone returns a copy of o that shares no parameter storage.
func (o Operation) Clone() Operation {
	o.Params = slices.Clone(o.Params)
	return o
}

// Equal reports whether two operations have the same name, arity and parameters.
func (o Operation) Equal(other Operation) bool {
	return o.Name == other.Name &&
		o.NumQubits == other.NumQubits &&
		o.NumClbits == other.NumClbits &&
		slices.Equal(o.Params, other.Params)
}

func (o Operation) String() string {
	if len(o.Params) == 0 {
		return o.Name
	}
	return fmt.Sprintf("%s%v", o.Name, o.Params)
}

// Condition gates an operation on a classical register holding Value.
type Condition struct {
	Register string
	Value    int
}

func (c Condition) String() string {
	return fmt.Sprintf("%s==%d", c.Register, c.Value)
}

// CloneCondition returns a copy of c, or nil.
func CloneCondition(c *Condition) *Condition {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
