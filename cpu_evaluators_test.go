package gjulia

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/soypat/geometry/ms2"
)

const cpuTol = 2e-4

func toVec(c complex128) ms2.Vec { return ms2.Vec{X: float32(real(c)), Y: float32(imag(c))} }

func toComplex(v ms2.Vec) complex128 { return complex(float64(v.X), float64(v.Y)) }

func closeTo(got ms2.Vec, want complex128) bool {
	d := cmplx.Abs(toComplex(got) - want)
	return d <= cpuTol*(1+cmplx.Abs(want))
}

func TestComplexHelpers(t *testing.T) {
	var tests = []struct {
		name string
		cpu  func(ms2.Vec) ms2.Vec
		want func(complex128) complex128
	}{
		{"exp", cExp, cmplx.Exp},
		{"ln", cLog, cmplx.Log},
		{"sqrt", cSqrt, cmplx.Sqrt},
		{"cos", cCos, cmplx.Cos},
		{"sin", cSin, cmplx.Sin},
		{"tan", cTan, cmplx.Tan},
		{"cosh", cCosh, cmplx.Cosh},
		{"sinh", cSinh, cmplx.Sinh},
		{"tanh", cTanh, cmplx.Tanh},
		{"acos", cAcos, cmplx.Acos},
		{"asin", cAsin, cmplx.Asin},
		{"atan", cAtan, cmplx.Atan},
		{"acosh", cAcosh, cmplx.Acosh},
		{"asinh", cAsinh, cmplx.Asinh},
		{"atanh", cAtanh, cmplx.Atanh},
	}
	// Points are kept away from branch cuts, where the logarithmic forms
	// may choose a different branch than math/cmplx.
	points := []complex128{0.3 + 0.4i, 0.5 - 0.25i, 0.1 + 0.05i}
	for _, test := range tests {
		for _, p := range points {
			got := test.cpu(toVec(p))
			want := test.want(p)
			if !closeTo(got, want) {
				t.Errorf("%s(%v): want %v, got %v", test.name, p, want, toComplex(got))
			}
		}
	}
	for _, p := range points {
		for _, q := range points {
			if got, want := cMul(toVec(p), toVec(q)), p*q; !closeTo(got, want) {
				t.Errorf("cMul(%v,%v): want %v, got %v", p, q, want, toComplex(got))
			}
			if got, want := cDiv(toVec(p), toVec(q)), p/q; !closeTo(got, want) {
				t.Errorf("cDiv(%v,%v): want %v, got %v", p, q, want, toComplex(got))
			}
			if got, want := cPow(toVec(p), toVec(q)), cmplx.Pow(p, q); !closeTo(got, want) {
				t.Errorf("cPow(%v,%v): want %v, got %v", p, q, want, toComplex(got))
			}
		}
	}
}

func TestFormulaStep(t *testing.T) {
	var tests = []struct {
		formula string
		want    func(z complex128) complex128
	}{
		{"z", func(z complex128) complex128 { return z }},
		{"z^2+0.3-0.5i", func(z complex128) complex128 { return cmplx.Pow(z, 2) + 0.3 - 0.5i }},
		{"z*z-0.8+0.156i", func(z complex128) complex128 { return z*z - 0.8 + 0.156i }},
		{"sin(z)/z", func(z complex128) complex128 { return cmplx.Sin(z) / z }},
		{"exp(iz)", func(z complex128) complex128 { return cmplx.Exp(1i * z) }},
		{"|z|+re(z)", func(z complex128) complex128 { return complex(cmplx.Abs(z)+real(z), 0) }},
		{"im(z)*2", func(z complex128) complex128 { return complex(imag(z)*2, 0) }},
		{"-z", func(z complex128) complex128 { return -z }},
		{"avg(z,2)", func(z complex128) complex128 { return (z + 2) / 2 }},
		{"normalize(z)", func(z complex128) complex128 { return z / complex(cmplx.Abs(z), 0) }},
		{"floor(re(z)*10)", func(z complex128) complex128 { return complex(math.Floor(real(z)*10), 0) }},
		{"max(re(z),im(z))", func(z complex128) complex128 { return complex(math.Max(real(z), imag(z)), 0) }},
		{"clamp(re(z),0,0.35)", func(z complex128) complex128 { return complex(math.Min(math.Max(real(z), 0), 0.35), 0) }},
		{"re(z)%0.25", func(z complex128) complex128 {
			x := real(z)
			return complex(x-0.25*math.Floor(x/0.25), 0)
		}},
		{"sin(re(z))", func(z complex128) complex128 { return complex(math.Sin(real(z)), 0) }},
	}
	zs := []ms2.Vec{{X: 0.3, Y: 0.4}, {X: 0.5, Y: -0.25}, {X: -0.7, Y: 0.6}}
	dst := make([]ms2.Vec, len(zs))
	for _, test := range tests {
		f, err := Parse(test.formula)
		if err != nil {
			t.Fatalf("%q: %s", test.formula, err)
		}
		err = f.Step(dst, zs, nil)
		if err != nil {
			t.Fatalf("%q: %s", test.formula, err)
		}
		for i, z := range zs {
			want := test.want(toComplex(z))
			if !closeTo(dst[i], want) {
				t.Errorf("%q at z=%v: want %v, got %v", test.formula, toComplex(z), want, toComplex(dst[i]))
			}
		}
	}
}

func TestFormulaStepInPlace(t *testing.T) {
	f, err := Parse("z^2")
	if err != nil {
		t.Fatal(err)
	}
	zs := []ms2.Vec{{X: 1, Y: 1}, {X: 0, Y: 2}}
	err = f.Step(zs, zs, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !closeTo(zs[0], 2i) || !closeTo(zs[1], -4) {
		t.Errorf("unexpected in place result %v", zs)
	}
}

func TestFormulaStepErrors(t *testing.T) {
	f, err := Parse(`z*"z"`)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]ms2.Vec, 4)
	if err = f.Step(buf, buf, nil); err == nil {
		t.Error("expected raw code CPU evaluation error")
	}
	f, _ = Parse("z")
	if err = f.Step(buf[:2], buf, nil); err == nil {
		t.Error("expected buffer length mismatch error")
	}
}
