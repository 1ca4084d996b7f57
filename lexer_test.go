package gjulia

import (
	"errors"
	"testing"
)

func TestTokenize(t *testing.T) {
	mul := Token{Kind: TokOp, Value: "*", Implicit: true}
	var tests = []struct {
		formula string
		want    []Token
	}{
		{"z", []Token{{Kind: TokZ}}},
		{"2z", []Token{{Kind: TokNumber, Value: "2"}, mul, {Kind: TokZ}}},
		{"iz", []Token{{Kind: TokImaginary}, mul, {Kind: TokZ}}},
		{"2.5i", []Token{{Kind: TokNumber, Value: "2.5"}, mul, {Kind: TokImaginary}}},
		{"(z)(z)", []Token{
			{Kind: TokParenOpen}, {Kind: TokZ}, {Kind: TokParenClose}, mul,
			{Kind: TokParenOpen}, {Kind: TokZ}, {Kind: TokParenClose},
		}},
		{"z**2", []Token{{Kind: TokZ}, {Kind: TokOp, Value: "^"}, {Kind: TokNumber, Value: "2"}}},
		{"LOG(Z)", []Token{{Kind: TokFunction, Value: "ln"}, {Kind: TokParenOpen}, {Kind: TokZ}, {Kind: TokParenClose}}},
		{"|z|", []Token{{Kind: TokFunction, Value: "abs"}, {Kind: TokParenOpen}, {Kind: TokZ}, {Kind: TokParenClose}}},
		{"π", []Token{{Kind: TokNumber, Value: piLiteral}}},
		{"Pi", []Token{{Kind: TokNumber, Value: piLiteral}}},
		// pi is substituted textually, digits before it are joined into one number.
		{"2pi", []Token{{Kind: TokNumber, Value: "2" + piLiteral}}},
		{`"Log(Z) * pi"`, []Token{{Kind: TokRawCode, Value: "Log(Z) * pi"}}},
		{"max(1,z)", []Token{
			{Kind: TokFunction, Value: "max"}, {Kind: TokParenOpen}, {Kind: TokNumber, Value: "1"},
			{Kind: TokComma}, {Kind: TokZ}, {Kind: TokParenClose},
		}},
	}
	for _, test := range tests {
		got, err := Tokenize(test.formula)
		if err != nil {
			t.Errorf("%q: %s", test.formula, err)
			continue
		}
		if len(got) != len(test.want) {
			t.Errorf("%q: want %d tokens %v, got %d %v", test.formula, len(test.want), test.want, len(got), got)
			continue
		}
		for i := range got {
			g, w := got[i], test.want[i]
			if g.Kind != w.Kind || g.Value != w.Value || g.Implicit != w.Implicit {
				t.Errorf("%q: token %d want %s(implicit=%v), got %s(implicit=%v)", test.formula, i, w, w.Implicit, g, g.Implicit)
			}
		}
	}
}

func TestTokenizeColumns(t *testing.T) {
	// Columns refer to the formula as typed, not to the normalized text.
	tokens, err := Tokenize("  z + |z| log(z)")
	if err != nil {
		t.Fatal(err)
	}
	wantCols := []int{2, 4, 6, 6, 7, 8, 8, 10, 13, 14, 15}
	if len(tokens) != len(wantCols) {
		t.Fatalf("want %d tokens, got %v", len(wantCols), tokens)
	}
	for i, tok := range tokens {
		if tok.Col != wantCols[i] {
			t.Errorf("token %d %s: want column %d, got %d", i, tok, wantCols[i], tok.Col)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	var tests = []struct {
		formula string
		col     int
	}{
		{"", 0},
		{"   \t", 0},
		{"foo", 0},
		{"z + foo", 4},
		{`z+"abc`, 2},
		{".", 0},
		{"z$", 1},
		{"z|", 1},
		{"2é", 1},
		// Private use runes are never taken for absolute value bars.
		{"\ue000z\ue001+|z|", 0},
		{"|z|\ue001", 3},
	}
	for _, test := range tests {
		_, err := Tokenize(test.formula)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("%q: want ParseError, got %v", test.formula, err)
			continue
		}
		if perr.Column != test.col {
			t.Errorf("%q: want column %d, got %d (%s)", test.formula, test.col, perr.Column, perr)
		}
	}
}
