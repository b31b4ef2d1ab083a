package qasm

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/matzehuels/qtranspile/pkg/circuit"
	"github.com/matzehuels/qtranspile/pkg/errors"
)

// Limits on what a program may declare. Every operation on a conditioned
// register touches each of its bits, so wide classical registers make every
// later pass proportionally slower.
const (
	// MaxRegisterSize caps a single qreg or creg.
	MaxRegisterSize = 1024

	// MaxBits caps the qubits and clbits declared by a program in total.
	MaxBits = 4096

	// MaxConditionWidth caps the classical register an if statement tests.
	MaxConditionWidth = 64
)

// builtins maps the OpenQASM primitive names onto library names.
var builtins = map[string]string{
	"U":  "u3",
	"CX": "cx",
}

type parser struct {
	toks []token
	pos  int
	circ *circuit.Circuit
	bits int

	// params holds the parameter names of the gate body being parsed.
	params map[string]bool
}

// ParseString parses OpenQASM source into a circuit named name.
func ParseString(name, src string) (*circuit.Circuit, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, circ: circuit.New(name)}
	if err := p.program(); err != nil {
		return nil, err
	}
	return p.circ, nil
}

// Parse reads OpenQASM source from r.
func Parse(r io.Reader, name string) (*circuit.Circuit, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", name)
	}
	return ParseString(name, string(data))
}

// ParseFile parses the file at path. The circuit is named after the file
// without its extension.
func ParseFile(path string) (*circuit.Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	c, err := ParseString(name, string(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	return c, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != scanner.EOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidInput, "line %d: %s", t.line, fmt.Sprintf(format, args...))
}

func (p *parser) expect(kind rune) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorf(t, "expected %q, found %s", scanner.TokenString(kind), t)
	}
	return t, nil
}

func (p *parser) ident() (string, error) {
	t, err := p.expect(scanner.Ident)
	return t.text, err
}

func (p *parser) integer() (int, error) {
	t, err := p.expect(scanner.Int)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(t.text)
	if err != nil {
		return 0, p.errorf(t, "bad integer %s", t)
	}
	return n, nil
}

func (p *parser) program() error {
	if t := p.peek(); t.kind == scanner.Ident && t.text == "OPENQASM" {
		p.next()
		v := p.next()
		if v.text != "2.0" && v.text != "2" {
			return p.errorf(v, "unsupported OpenQASM version %s", v)
		}
		if _, err := p.expect(';'); err != nil {
			return err
		}
	}
	for p.peek().kind != scanner.EOF {
		if err := p.statement(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) statement() error {
	t := p.peek()
	if t.kind != scanner.Ident {
		p.next()
		return p.errorf(t, "unexpected %s", t)
	}
	switch t.text {
	case "include":
		return p.include()
	case "qreg", "creg":
		return p.register()
	case "gate":
		return p.gateDecl()
	case "opaque":
		return p.opaqueDecl()
	case "if":
		return p.conditional()
	default:
		return p.quantumOp(nil)
	}
}

func (p *parser) include() error {
	p.next()
	t, err := p.expect(scanner.String)
	if err != nil {
		return err
	}
	file, _ := strconv.Unquote(t.text)
	if file != "qelib1.inc" {
		return errors.New(errors.ErrCodeUnsupported, "line %d: cannot include %q, only qelib1.inc is built in", t.line, file)
	}
	_, err = p.expect(';')
	return err
}

func (p *parser) register() error {
	kw := p.next()
	name, err := p.ident()
	if err != nil {
		return err
	}
	if _, err := p.expect('['); err != nil {
		return err
	}
	size, err := p.integer()
	if err != nil {
		return err
	}
	if _, err := p.expect(']'); err != nil {
		return err
	}
	if _, err := p.expect(';'); err != nil {
		return err
	}
	if size > MaxRegisterSize {
		return p.errorf(kw, "register %s[%d] exceeds the limit of %d bits", name, size, MaxRegisterSize)
	}
	if p.bits+size > MaxBits {
		return p.errorf(kw, "register %s[%d] exceeds the limit of %d declared bits", name, size, MaxBits)
	}
	reg := circuit.QuantumRegister(name, size)
	if kw.text == "creg" {
		reg = circuit.ClassicalRegister(name, size)
	}
	if err := p.circ.AddRegister(reg); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", kw.line)
	}
	p.bits += size
	return nil
}

func (p *parser) conditional() error {
	kw := p.next()
	if _, err := p.expect('('); err != nil {
		return err
	}
	reg, err := p.ident()
	if err != nil {
		return err
	}
	if _, err := p.expect(equals); err != nil {
		return err
	}
	val, err := p.integer()
	if err != nil {
		return err
	}
	if _, err := p.expect(')'); err != nil {
		return err
	}
	r, ok := p.circ.Register(reg)
	if !ok || r.IsQuantum() {
		return p.errorf(kw, "condition on unknown classical register %q", reg)
	}
	if r.Size > MaxConditionWidth {
		return p.errorf(kw, "condition on %s[%d]: registers wider than %d bits cannot be tested", reg, r.Size, MaxConditionWidth)
	}
	return p.quantumOp(&circuit.Condition{Register: reg, Value: val})
}

// quantumOp parses a gate call, measure, reset or barrier.
func (p *parser) quantumOp(cond *circuit.Condition) error {
	t := p.next()
	if t.kind != scanner.Ident {
		return p.errorf(t, "expected an operation, found %s", t)
	}
	switch t.text {
	case "measure":
		return p.measure(t, cond)
	case "barrier":
		if cond != nil {
			return p.errorf(t, "barrier cannot be conditioned")
		}
		return p.barrier(t)
	}

	name := t.text
	if b, ok := builtins[name]; ok {
		name = b
	}
	def, ok := p.circ.Library.Lookup(name)
	if !ok {
		return p.errorf(t, "undefined gate %q", t.text)
	}
	params, err := p.paramList()
	if err != nil {
		return err
	}
	if len(params) != def.NumParams {
		return p.errorf(t, "%s takes %d parameters, got %d", name, def.NumParams, len(params))
	}
	vals := make([]float64, len(params))
	for i, e := range params {
		vals[i] = e.eval(nil)
	}
	args, err := p.arguments(circuit.Quantum)
	if err != nil {
		return err
	}
	if len(args) != def.NumQubits {
		return p.errorf(t, "%s acts on %d qubits, got %d arguments", name, def.NumQubits, len(args))
	}
	tuples, err := broadcast(args)
	if err != nil {
		return p.errorf(t, "%s: %v", name, err)
	}
	for _, qargs := range tuples {
		if err := p.emit(t, def.Op(vals...), qargs, nil, cond); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) measure(t token, cond *circuit.Condition) error {
	qs, err := p.argument(circuit.Quantum)
	if err != nil {
		return err
	}
	if _, err := p.expect(arrow); err != nil {
		return err
	}
	cs, err := p.argument(circuit.Classical)
	if err != nil {
		return err
	}
	if _, err := p.expect(';'); err != nil {
		return err
	}
	tuples, err := broadcast([]argument{qs, cs})
	if err != nil {
		return p.errorf(t, "measure: %v", err)
	}
	for _, bits := range tuples {
		if err := p.emit(t, circuit.Measure(), bits[:1], bits[1:], cond); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) barrier(t token) error {
	args, err := p.arguments(circuit.Quantum)
	if err != nil {
		return err
	}
	var bits []circuit.Bit
	for _, a := range args {
		for _, b := range a.bits() {
			if !slices.Contains(bits, b) {
				bits = append(bits, b)
			}
		}
	}
	return p.emit(t, circuit.Barrier(len(bits)), bits, nil, nil)
}

func (p *parser) emit(t token, op circuit.Operation, qargs, cargs []circuit.Bit, cond *circuit.Condition) error {
	if err := p.circ.Append(op, qargs, cargs, cond); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", t.line)
	}
	return nil
}

// paramList parses an optional parenthesised expression list.
func (p *parser) paramList() ([]expr, error) {
	if p.peek().kind != '(' {
		return nil, nil
	}
	p.next()
	var out []expr
	if p.peek().kind == ')' {
		p.next()
		return nil, nil
	}
	for {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.peek().kind != ',' {
			break
		}
		p.next()
	}
	if _, err := p.expect(')'); err != nil {
		return nil, err
	}
	return out, nil
}

// argument is a whole register (index < 0) or one of its bits.
type argument struct {
	reg   circuit.Register
	index int
}

func (a argument) bits() []circuit.Bit {
	if a.index < 0 {
		return a.reg.Bits()
	}
	return []circuit.Bit{a.reg.Bit(a.index)}
}

func (p *parser) argument(kind circuit.RegisterKind) (argument, error) {
	t, err := p.expect(scanner.Ident)
	if err != nil {
		return argument{}, err
	}
	reg, ok := p.circ.Register(t.text)
	if !ok || reg.Kind != kind {
		return argument{}, p.errorf(t, "unknown %s %q", kind, t.text)
	}
	a := argument{reg: reg, index: -1}
	if p.peek().kind == '[' {
		p.next()
		if a.index, err = p.integer(); err != nil {
			return argument{}, err
		}
		if _, err := p.expect(']'); err != nil {
			return argument{}, err
		}
		if a.index >= reg.Size {
			return argument{}, p.errorf(t, "index %d out of range for %s", a.index, reg)
		}
	}
	return a, nil
}

// arguments parses a comma separated argument list up to and including ';'.
func (p *parser) arguments(kind circuit.RegisterKind) ([]argument, error) {
	var args []argument
	for {
		a, err := p.argument(kind)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.peek().kind != ',' {
			break
		}
		p.next()
	}
	if _, err := p.expect(';'); err != nil {
		return nil, err
	}
	return args, nil
}

// broadcast expands whole-register arguments: every register argument must
// have the same size n, and the result holds n tuples pairing their i-th
// bits with the single-bit arguments.
func broadcast(args []argument) ([][]circuit.Bit, error) {
	n := 1
	sized := false
	for _, a := range args {
		if a.index >= 0 {
			continue
		}
		if sized && a.reg.Size != n {
			return nil, errors.New(errors.ErrCodeInvalidInput, "registers of different sizes")
		}
		n, sized = a.reg.Size, true
	}
	out := make([][]circuit.Bit, n)
	for i := range n {
		tuple := make([]circuit.Bit, len(args))
		for j, a := range args {
			if a.index < 0 {
				tuple[j] = a.reg.Bit(i)
			} else {
				tuple[j] = a.reg.Bit(a.index)
			}
		}
		out[i] = tuple
	}
	return out, nil
}
