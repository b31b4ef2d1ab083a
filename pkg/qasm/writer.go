package qasm

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/qtranspile/pkg/circuit"
)

// Write emits c as OpenQASM 2.0.
func Write(w io.Writer, c *circuit.Circuit) error {
	var buf bytes.Buffer
	buf.WriteString("OPENQASM 2.0;\n")
	buf.WriteString("include \"qelib1.inc\";\n")

	for _, decl := range opaqueDecls(c) {
		buf.WriteString(decl)
	}
	for _, r := range c.Registers {
		fmt.Fprintf(&buf, "%s %s[%d];\n", r.Kind, r.Name, r.Size)
	}
	for _, in := range c.Instructions {
		writeInstruction(&buf, in)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// String returns c as OpenQASM 2.0 source.
func String(c *circuit.Circuit) string {
	var sb strings.Builder
	_ = Write(&sb, c)
	return sb.String()
}

// opaqueDecls declares every operation the standard library lacks, in
// order of first use.
func opaqueDecls(c *circuit.Circuit) []string {
	std := circuit.Standard()
	var seen []string
	var out []string
	for _, in := range c.Instructions {
		name := in.Op.Name
		if std.Has(name) || slices.Contains(seen, name) {
			continue
		}
		seen = append(seen, name)
		nparams := len(in.Op.Params)
		if def, ok := c.Library.Lookup(name); ok {
			nparams = def.NumParams
		}
		params := make([]string, nparams)
		for i := range params {
			params[i] = fmt.Sprintf("p%d", i)
		}
		qubits := make([]string, in.Op.NumQubits)
		for i := range qubits {
			qubits[i] = fmt.Sprintf("a%d", i)
		}
		decl := "opaque " + name
		if len(params) > 0 {
			decl += "(" + strings.Join(params, ",") + ")"
		}
		out = append(out, decl+" "+strings.Join(qubits, ",")+";\n")
	}
	return out
}

func writeInstruction(buf *bytes.Buffer, in circuit.Instruction) {
	buf.WriteString(FormatInstruction(in))
	buf.WriteString(";\n")
}

// FormatInstruction renders one statement without its terminating semicolon.
//
//	if(c==1) u1(pi/2) q[0]
func FormatInstruction(in circuit.Instruction) string {
	var sb strings.Builder
	if in.Condition != nil {
		fmt.Fprintf(&sb, "if(%s==%d) ", in.Condition.Register, in.Condition.Value)
	}
	if in.Op.Name == "measure" && len(in.Qargs) == 1 && len(in.Cargs) == 1 {
		fmt.Fprintf(&sb, "measure %s -> %s", in.Qargs[0], in.Cargs[0])
		return sb.String()
	}
	sb.WriteString(in.Op.Name)
	if len(in.Op.Params) > 0 {
		ps := make([]string, len(in.Op.Params))
		for i, v := range in.Op.Params {
			ps[i] = FormatParam(v)
		}
		sb.WriteString("(" + strings.Join(ps, ",") + ")")
	}
	args := make([]string, len(in.Qargs))
	for i, b := range in.Qargs {
		args[i] = b.String()
	}
	sb.WriteString(" " + strings.Join(args, ","))
	return sb.String()
}

// FormatParam renders v as a multiple of pi with a denominator up to 16 when
// it is one, otherwise in the shortest form that parses back exactly.
//
//	FormatParam(math.Pi/2)    // "pi/2"
//	FormatParam(-3*math.Pi/4) // "-3*pi/4"
//	FormatParam(0.1)          // "0.1"
func FormatParam(v float64) string {
	if v == 0 {
		return "0"
	}
	for den := 1; den <= 16; den++ {
		num := math.Round(v * float64(den) / math.Pi)
		if num == 0 || math.Abs(num) > 64 {
			continue
		}
		if math.Abs(v-num*math.Pi/float64(den)) > 1e-12 {
			continue
		}
		s := strconv.Itoa(int(num)) + "*pi"
		switch num {
		case 1:
			s = "pi"
		case -1:
			s = "-pi"
		}
		if den > 1 {
			s += "/" + strconv.Itoa(den)
		}
		return s
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
