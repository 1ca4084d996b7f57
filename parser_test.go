package gjulia

import (
	"errors"
	"strings"
	"testing"
)

// sexpr prints a syntax tree in prefix notation.
func sexpr(n Node) string {
	switch n := n.(type) {
	case *Real:
		return n.Value
	case *Imaginary:
		return n.Value + "i"
	case *Complex:
		return "(" + n.Re + "+" + n.Im + "i)"
	case *Z:
		return "z"
	case *RawCode:
		return `"` + n.Code + `"`
	case *BinaryOp:
		return "(" + n.Op + " " + sexpr(n.LHS) + " " + sexpr(n.RHS) + ")"
	case *Call:
		args := make([]string, len(n.Args))
		for i := range n.Args {
			args[i] = sexpr(n.Args[i])
		}
		return "(" + n.Name + " " + strings.Join(args, " ") + ")"
	}
	panic("unknown node")
}

func TestParseTree(t *testing.T) {
	var tests = []struct {
		formula string
		want    string
	}{
		{"z", "z"},
		{"1+2*3", "(+ 1. (* 2. 3.))"},
		{"(1+2)*3", "(* (+ 1. 2.) 3.)"},
		{"1*2+3*4", "(+ (* 1. 2.) (* 3. 4.))"},
		{"1+2*3^4", "(+ 1. (* 2. (^ 3. 4.)))"},
		{"1-2-3", "(- (- 1. 2.) 3.)"},
		{"-z+1", "(+ (- 0. z) 1.)"},
		{"+z", "z"},
		{"-z^2", "(- 0. (^ z 2.))"},
		{"2z", "(* 2. z)"},
		{"2z^2", "(^ (* 2. z) 2.)"},
		{"2(z+1)", "(* 2. (+ z 1.))"},
		{"(z+1)(z-1)", "(* (+ z 1.) (- z 1.))"},
		{"(z)sin(z)", "(* z (sin z))"},
		{"2i", "(0.+2.i)"},
		{"2*i", "(* 2. 1.i)"},
		{"i", "1.i"},
		{"iz", "(* 1.i z)"},
		{"2iz", "(* (0.+2.i) z)"},
		{"clamp(z,0,1)", "(clamp z 0. 1.)"},
		{"max(re(z),1)+avg(z,i)", "(+ (max (re z) 1.) (avg z 1.i))"},
		{`"z*z"+1`, `(+ "z*z" 1.)`},
	}
	for _, test := range tests {
		tokens, err := Tokenize(test.formula)
		if err != nil {
			t.Fatalf("%q: %s", test.formula, err)
		}
		root, err := parse(tokens)
		if err != nil {
			t.Errorf("%q: %s", test.formula, err)
			continue
		}
		got := sexpr(root)
		if got != test.want {
			t.Errorf("%q: want tree %s, got %s", test.formula, test.want, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	var tests = []struct {
		formula string
		col     int
		msg     string
	}{
		{"(z", 2, "unexpected end of formula"},
		{"z)", 1, "unexpected trailing token"},
		{"max(1)", 5, "unexpected token ParenClose, expected Comma"},
		{"max(1,2,3)", 7, "unexpected token Comma, expected ParenClose"},
		{"sin", 3, "unexpected end of formula, expected ParenOpen"},
		{"*z", 0, "expected unary operation"},
		{"z+", 2, "unexpected end of formula"},
		{"z,1", 1, "unexpected trailing token"},
		{`z"x"`, 1, "unexpected token RawCode"},
		{"()", 1, "unexpected token ParenClose"},
	}
	for _, test := range tests {
		tokens, err := Tokenize(test.formula)
		if err != nil {
			t.Fatalf("%q: %s", test.formula, err)
		}
		_, err = parse(tokens)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("%q: want ParseError, got %v", test.formula, err)
			continue
		}
		if perr.Column != test.col {
			t.Errorf("%q: want column %d, got %d (%s)", test.formula, test.col, perr.Column, perr)
		}
		if !strings.Contains(perr.Message, test.msg) {
			t.Errorf("%q: want message containing %q, got %q", test.formula, test.msg, perr.Message)
		}
	}
}

func TestFixType(t *testing.T) {
	var tests = []struct {
		formula string
		want    ValueType
	}{
		{"z", TypeComplex},
		{"1", TypeReal},
		{"0i", TypeReal},
		{"2i", TypeComplex},
		{"re(z)", TypeReal},
		{"abs(z)+1", TypeReal},
		{"1^2", TypeComplex},
		{"ln(2)", TypeComplex},
		{"sin(1)", TypeReal},
		{"sin(z)", TypeComplex},
		{"max(1,2)", TypeReal},
		{"avg(1,z)", TypeComplex},
		{`"z"`, TypeUnknowable},
		{`"z"+1`, TypeReal},
		{`"z"+z`, TypeComplex},
		{`sgn("z")`, TypeReal},
	}
	for _, test := range tests {
		tokens, err := Tokenize(test.formula)
		if err != nil {
			t.Fatal(err)
		}
		root, err := parse(tokens)
		if err != nil {
			t.Fatal(err)
		}
		err = fixType(root)
		if err != nil {
			t.Errorf("%q: %s", test.formula, err)
			continue
		}
		if root.Type() != test.want {
			t.Errorf("%q: want type %s, got %s", test.formula, test.want, root.Type())
		}
	}
}

func TestInvariantPanics(t *testing.T) {
	mustPanic := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		fn()
	}
	mustPanic("code of undetermined tree", func() {
		appendCode(nil, newBinaryOp(0, newZ(0), newReal(2, "1"), "+"))
	})
	mustPanic("negative token column", func() {
		makeToken(-1, TokZ, "")
	})
}
