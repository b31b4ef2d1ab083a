package qasm

import (
	"math"
	"strconv"
	"text/scanner"
)

// expr is a parameter expression. Inside a gate body it may refer to the
// gate's parameters by name; at top level it is constant.
type expr interface {
	eval(env map[string]float64) float64
}

type number float64

func (n number) eval(map[string]float64) float64 { return float64(n) }

type paramRef string

func (p paramRef) eval(env map[string]float64) float64 { return env[string(p)] }

type negate struct{ x expr }

func (n negate) eval(env map[string]float64) float64 { return -n.x.eval(env) }

type binary struct {
	op   rune
	l, r expr
}

func (b binary) eval(env map[string]float64) float64 {
	l, r := b.l.eval(env), b.r.eval(env)
	switch b.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		return l / r
	default:
		return math.Pow(l, r)
	}
}

type call struct {
	fn func(float64) float64
	x  expr
}

func (c call) eval(env map[string]float64) float64 { return c.fn(c.x.eval(env)) }

var functions = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"exp":  math.Exp,
	"ln":   math.Log,
	"sqrt": math.Sqrt,
}

// expression parses
//
//	expr  := term (('+' | '-') term)*
//	term  := unary (('*' | '/') unary)*
//	unary := '-' unary | power
//	power := atom ('^' unary)?
func (p *parser) expression() (expr, error) {
	l, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == '+' || p.peek().kind == '-' {
		op := p.next().kind
		r, err := p.term()
		if err != nil {
			return nil, err
		}
		l = binary{op: op, l: l, r: r}
	}
	return l, nil
}

func (p *parser) term() (expr, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == '*' || p.peek().kind == '/' {
		op := p.next().kind
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		l = binary{op: op, l: l, r: r}
	}
	return l, nil
}

func (p *parser) unary() (expr, error) {
	if p.peek().kind == '-' {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negate{x}, nil
	}
	base, err := p.atom()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == '^' {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return binary{op: '^', l: base, r: exp}, nil
	}
	return base, nil
}

func (p *parser) atom() (expr, error) {
	t := p.next()
	switch t.kind {
	case scanner.Int, scanner.Float:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errorf(t, "bad number %s", t)
		}
		return number(v), nil
	case '(':
		x, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(')'); err != nil {
			return nil, err
		}
		return x, nil
	case scanner.Ident:
		if t.text == "pi" {
			return number(math.Pi), nil
		}
		if fn, ok := functions[t.text]; ok {
			if _, err := p.expect('('); err != nil {
				return nil, err
			}
			x, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(')'); err != nil {
				return nil, err
			}
			return call{fn: fn, x: x}, nil
		}
		if p.params[t.text] {
			return paramRef(t.text), nil
		}
		return nil, p.errorf(t, "unknown identifier %s in expression", t)
	}
	return nil, p.errorf(t, "unexpected %s in expression", t)
}
