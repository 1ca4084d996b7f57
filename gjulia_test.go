package gjulia_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/soypat/gjulia"
	"pgregory.net/rapid"
)

func TestCompile(t *testing.T) {
	var tests = []struct {
		formula string
		want    string
	}{
		{"z", "z"},
		{"1+2*3", "(vec2(1.,0.)+(vec2(2.,0.)*vec2(3.,0.)))"},
		{"(1+2)*3", "((vec2(1.,0.)+vec2(2.,0.))*vec2(3.,0.))"},
		{"-z+1", "((vec2(0.,0.)-z)+vec2(1.,0.))"},
		{"2z", "cMul(vec2(2.,0.),z)"},
		{"2(z+1)", "cMul(vec2(2.,0.),(z+vec2(1.,0.)))"},
		{"(z+1)(z-1)", "cMul((z+vec2(1.,0.)),(z-vec2(1.,0.)))"},
		{"2i", "vec2(0.,2.)"},
		{"iz", "cMul(vec2(0.,1.),z)"},
		{"z^2+0.3-0.5i", "((cPow(z,vec2(2.,0.))+vec2(0.3,0.))-vec2(0.,0.5))"},
		{"|z|", "vec2(length(z),0.)"},
		{"LOG(Z)", "cLog(z)"},
		{"PI", "vec2(3.1415926535897932,0.)"},
		{"2**z", "cPow(vec2(2.,0.),z)"},
		{"im(2)", "vec2(0.,0.)"},
		{"im(z)", "vec2((z).y,0.)"},
		{"re(z)%2", "vec2(mod((vec2((z).x,0.)).x,(vec2(2.,0.)).x),0.)"},
		{"sin(z)*2", "cMul(cSin(z),vec2(2.,0.))"},
		{"sin(2)", "vec2(sin((vec2(2.,0.)).x),0.)"},
		{"max(1,2)", "vec2(max((vec2(1.,0.)).x,(vec2(2.,0.)).x),0.)"},
		{"avg(z,1)", "((z+vec2(1.,0.))/2.)"},
		{"0i", "vec2(0.,0.)"},
		// Literals with a non-zero imaginary part are complex, so products use cMul.
		{"2i*2i", "cMul(vec2(0.,2.),vec2(0.,2.))"},
		{"0i*2", "(vec2(0.,0.)*vec2(2.,0.))"},
		{"2pi", "vec2(23.1415926535897932,0.)"},
		{`"z*z"+1`, "(z*z+vec2(1.,0.))"},
		{`"a#b"*z`, "cMul(a#b,z)"},
	}
	for _, test := range tests {
		got, err := gjulia.Compile(test.formula)
		if err != nil {
			t.Errorf("%q: %s", test.formula, err)
			continue
		}
		if got != test.want {
			t.Errorf("%q:\nwant %s\ngot  %s", test.formula, test.want, got)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	var tests = []struct {
		formula   string
		col       int
		typeError bool
	}{
		{"", 0, false},
		{"   ", 0, false},
		{"foo(z)", 0, false},
		{`"unterminated`, 0, false},
		{"clamp(z,0,1)", 6, true},
		{"clamp(1,0,z)", 10, true},
		{"z%2", 0, true},
		{"2%z", 2, true},
		{"floor(z)", 6, true},
		{"max(1)", 5, false},
		{"z)", 1, false},
	}
	for _, test := range tests {
		_, err := gjulia.Compile(test.formula)
		if err == nil {
			t.Errorf("%q: expected error", test.formula)
			continue
		}
		var terr *gjulia.TypeError
		if errors.As(err, &terr) != test.typeError {
			t.Errorf("%q: want type error=%v, got %T: %s", test.formula, test.typeError, err, err)
		}
		col, ok := gjulia.ErrorColumn(err)
		if !ok || col != test.col {
			t.Errorf("%q: want column %d, got %d (%s)", test.formula, test.col, col, err)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	_, err := gjulia.Compile("clamp(z,0,1)")
	want := `typing: argument #1 of "clamp" call can be complex, expected real (char ~7)`
	if err == nil || err.Error() != want {
		t.Errorf("want %q, got %v", want, err)
	}
	_, err = gjulia.Compile("z + foo")
	if err == nil || !strings.HasPrefix(err.Error(), "parsing: ") || !strings.HasSuffix(err.Error(), "(char ~5)") {
		t.Errorf("unexpected parse error format: %v", err)
	}
}

func TestFormula(t *testing.T) {
	f, err := gjulia.Parse("z^2 + \"vec2(0.1,0.)\"")
	if err != nil {
		t.Fatal(err)
	}
	if !f.ContainsRawCode() {
		t.Error("expected raw code")
	}
	if f.Source() != "z^2 + \"vec2(0.1,0.)\"" {
		t.Error("source not preserved")
	}
	if got := string(f.AppendGLSL([]byte("z="))); got != "z=(cPow(z,vec2(2.,0.))+vec2(0.1,0.))" {
		t.Errorf("unexpected appended GLSL %q", got)
	}
	f, err = gjulia.Parse("z^2")
	if err != nil {
		t.Fatal(err)
	} else if f.ContainsRawCode() {
		t.Error("unexpected raw code")
	} else if f.Root().Type() != gjulia.TypeComplex {
		t.Error("expected complex root")
	}
}

// formulaGen generates well formed formulas which may or may not type check.
func formulaGen(depth int) *rapid.Generator[string] {
	leaves := rapid.OneOf(
		rapid.Just("z"),
		rapid.Just("i"),
		rapid.Just("pi"),
		rapid.StringMatching(`[1-9][0-9]?(\.[0-9])?`),
		rapid.StringMatching(`[1-9]i`),
	)
	if depth <= 0 {
		return leaves
	}
	sub := formulaGen(depth - 1)
	names := gjulia.FunctionNames()
	return rapid.OneOf(
		leaves,
		rapid.Custom(func(t *rapid.T) string {
			op := rapid.SampledFrom(gjulia.Operators()).Draw(t, "op")
			return sub.Draw(t, "lhs") + op + sub.Draw(t, "rhs")
		}),
		rapid.Custom(func(t *rapid.T) string {
			return "(" + sub.Draw(t, "inner") + ")"
		}),
		rapid.Custom(func(t *rapid.T) string {
			return "-" + sub.Draw(t, "negated")
		}),
		rapid.Custom(func(t *rapid.T) string {
			name := rapid.SampledFrom(names).Draw(t, "func")
			mf, _ := gjulia.LookupFunction(name)
			args := make([]string, mf.Arity())
			for i := range args {
				args[i] = sub.Draw(t, "arg")
			}
			return name + "(" + strings.Join(args, ",") + ")"
		}),
	)
}

func TestCompileDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		formula := formulaGen(3).Draw(t, "formula")
		out1, err1 := gjulia.Compile(formula)
		out2, err2 := gjulia.Compile(formula)
		if out1 != out2 {
			t.Fatalf("%q: nondeterministic output %q != %q", formula, out1, out2)
		}
		if (err1 == nil) != (err2 == nil) || (err1 != nil && err1.Error() != err2.Error()) {
			t.Fatalf("%q: nondeterministic error %v != %v", formula, err1, err2)
		}
		var perr *gjulia.ParseError
		if errors.As(err1, &perr) {
			t.Fatalf("%q: generated formula failed to parse: %s", formula, err1)
		}
	})
}

func TestCompileWhitespaceInsignificant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		formula := formulaGen(3).Draw(t, "formula")
		var sb strings.Builder
		for _, r := range formula {
			if rapid.Bool().Draw(t, "space") {
				sb.WriteString(rapid.SampledFrom([]string{" ", "\t", "  ", "\n"}).Draw(t, "ws"))
			}
			sb.WriteRune(r)
		}
		spaced := sb.String()
		want, wantErr := gjulia.Compile(formula)
		got, gotErr := gjulia.Compile(spaced)
		if got != want {
			t.Fatalf("%q and %q compile differently:\n%s\n%s", formula, spaced, want, got)
		}
		if (wantErr == nil) != (gotErr == nil) {
			t.Fatalf("%q and %q error differently: %v, %v", formula, spaced, wantErr, gotErr)
		}
	})
}
