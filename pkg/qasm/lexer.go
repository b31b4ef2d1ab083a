package qasm

import (
	"strings"
	"text/scanner"

	"github.com/matzehuels/qtranspile/pkg/errors"
)

// token is a lexed unit. kind is a text/scanner class (Ident, Int, Float,
// String) or the punctuation rune itself; "->" and "==" are joined into one
// token of kind arrow and equals.
type token struct {
	kind rune
	text string
	line int
}

const (
	arrow  rune = -100
	equals rune = -101
)

func (t token) String() string {
	if t.kind == scanner.EOF {
		return "end of input"
	}
	return "\"" + t.text + "\""
}

func tokenize(src string) ([]token, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(src))
	s.Mode = scanner.ScanIdents | scanner.ScanFloats | scanner.ScanStrings |
		scanner.ScanComments | scanner.SkipComments

	var scanErr error
	s.Error = func(s *scanner.Scanner, msg string) {
		if scanErr == nil {
			scanErr = errors.New(errors.ErrCodeInvalidInput, "line %d: %s", s.Pos().Line, msg)
		}
	}

	var toks []token
	for r := s.Scan(); r != scanner.EOF; r = s.Scan() {
		t := token{kind: r, text: s.TokenText(), line: s.Position.Line}
		switch {
		case r == '-' && s.Peek() == '>':
			s.Next()
			t.kind, t.text = arrow, "->"
		case r == '=' && s.Peek() == '=':
			s.Next()
			t.kind, t.text = equals, "=="
		}
		toks = append(toks, t)
	}
	if scanErr != nil {
		return nil, scanErr
	}
	return append(toks, token{kind: scanner.EOF, line: s.Pos().Line}), nil
}
