package qasm

import (
	"slices"
	"text/scanner"

	"github.com/matzehuels/qtranspile/pkg/circuit"
)

// bodyStep is one call inside a gate body, over the gate's local qubits.
type bodyStep struct {
	def    circuit.Definition
	params []expr
	qargs  []int
}

// signature parses "name(p, ...) a, b, ..." shared by gate and opaque.
func (p *parser) signature() (token, []string, []string, error) {
	t, err := p.expect(scanner.Ident)
	if err != nil {
		return t, nil, nil, err
	}
	if b, ok := builtins[t.text]; ok || p.circ.Library.Has(t.text) {
		if ok {
			t.text = b
		}
		return t, nil, nil, p.errorf(t, "gate %q is already defined", t.text)
	}
	var params []string
	if p.peek().kind == '(' {
		p.next()
		for p.peek().kind != ')' {
			name, err := p.ident()
			if err != nil {
				return t, nil, nil, err
			}
			params = append(params, name)
			if p.peek().kind != ',' {
				break
			}
			p.next()
		}
		if _, err := p.expect(')'); err != nil {
			return t, nil, nil, err
		}
	}
	var qubits []string
	for {
		name, err := p.ident()
		if err != nil {
			return t, nil, nil, err
		}
		if slices.Contains(qubits, name) {
			return t, nil, nil, p.errorf(t, "duplicate argument %q in %s", name, t.text)
		}
		qubits = append(qubits, name)
		if p.peek().kind != ',' {
			break
		}
		p.next()
	}
	return t, params, qubits, nil
}

func (p *parser) opaqueDecl() error {
	p.next()
	t, params, qubits, err := p.signature()
	if err != nil {
		return err
	}
	if _, err := p.expect(';'); err != nil {
		return err
	}
	return p.define(t, circuit.Definition{
		Name:      t.text,
		NumQubits: len(qubits),
		NumParams: len(params),
	})
}

func (p *parser) gateDecl() error {
	p.next()
	t, params, qubits, err := p.signature()
	if err != nil {
		return err
	}
	if _, err := p.expect('{'); err != nil {
		return err
	}
	p.params = make(map[string]bool, len(params))
	for _, name := range params {
		p.params[name] = true
	}
	defer func() { p.params = nil }()

	var body []bodyStep
	for p.peek().kind != '}' {
		step, err := p.bodyStatement(qubits)
		if err != nil {
			return err
		}
		body = append(body, step)
	}
	p.next()

	return p.define(t, circuit.Definition{
		Name:      t.text,
		NumQubits: len(qubits),
		NumParams: len(params),
		Rule:      bodyRule(params, body),
	})
}

func (p *parser) define(t token, def circuit.Definition) error {
	if err := p.circ.Library.Add(def); err != nil {
		return p.errorf(t, "%v", err)
	}
	return nil
}

func (p *parser) bodyStatement(qubits []string) (bodyStep, error) {
	t, err := p.expect(scanner.Ident)
	if err != nil {
		return bodyStep{}, err
	}
	name := t.text
	if b, ok := builtins[name]; ok {
		name = b
	}
	def, ok := p.circ.Library.Lookup(name)
	if !ok {
		return bodyStep{}, p.errorf(t, "undefined gate %q", t.text)
	}
	if def.Kind != circuit.KindGate && def.Kind != circuit.KindBarrier {
		return bodyStep{}, p.errorf(t, "%s is not allowed in a gate body", name)
	}
	params, err := p.paramList()
	if err != nil {
		return bodyStep{}, err
	}
	if len(params) != def.NumParams {
		return bodyStep{}, p.errorf(t, "%s takes %d parameters, got %d", name, def.NumParams, len(params))
	}

	var local []int
	for {
		a, err := p.ident()
		if err != nil {
			return bodyStep{}, err
		}
		i := slices.Index(qubits, a)
		if i < 0 {
			return bodyStep{}, p.errorf(t, "unknown qubit %q in gate body", a)
		}
		if slices.Contains(local, i) {
			return bodyStep{}, p.errorf(t, "duplicate qubit %q in call to %s", a, name)
		}
		local = append(local, i)
		if p.peek().kind != ',' {
			break
		}
		p.next()
	}
	if _, err := p.expect(';'); err != nil {
		return bodyStep{}, err
	}
	if def.Variadic {
		def.NumQubits = len(local)
	} else if len(local) != def.NumQubits {
		return bodyStep{}, p.errorf(t, "%s acts on %d qubits, got %d arguments", name, def.NumQubits, len(local))
	}
	return bodyStep{def: def, params: params, qargs: local}, nil
}

// bodyRule binds a parsed gate body to a decomposition rule.
func bodyRule(params []string, body []bodyStep) circuit.Rule {
	return func(vals []float64) []circuit.RuleStep {
		env := make(map[string]float64, len(params))
		for i, name := range params {
			env[name] = vals[i]
		}
		steps := make([]circuit.RuleStep, len(body))
		for i, s := range body {
			ps := make([]float64, len(s.params))
			for j, e := range s.params {
				ps[j] = e.eval(env)
			}
			steps[i] = circuit.Step(s.def.Op(ps...), s.qargs...)
		}
		return steps
	}
}
