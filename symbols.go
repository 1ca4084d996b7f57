package gjulia

import (
	"sort"
	"strings"

	"github.com/soypat/geometry/ms2"
)

// ValueType is the type tag of a formula expression.
type ValueType uint8

const (
	// TypeUndetermined is the type of composite nodes before type fixing.
	TypeUndetermined ValueType = iota
	// TypeUnknowable is the type of raw shader code. It is never checked.
	TypeUnknowable
	// TypeReal values have a zero imaginary component.
	TypeReal
	// TypeComplex values may have a non-zero imaginary component.
	TypeComplex
)

func (vt ValueType) String() string {
	switch vt {
	case TypeUndetermined:
		return "undetermined"
	case TypeUnknowable:
		return "unknowable"
	case TypeReal:
		return "real"
	case TypeComplex:
		return "complex"
	}
	return "ValueType(?)"
}

// OutputRule describes how the result type of a [MathFunction] follows from its inputs.
type OutputRule uint8

const (
	// OutputReal functions always return real values.
	OutputReal OutputRule = 'R'
	// OutputComplex functions always return complex values.
	OutputComplex OutputRule = 'C'
	// OutputSame functions return complex values if any input is complex, else real.
	OutputSame OutputRule = 'S'
)

// Template is a GLSL code template made up of literal segments and argument slots.
// Slot k is filled with the code of the k'th argument.
type Template struct {
	segs []string
}

// mustTemplate builds a template where each '#' marks an argument slot.
func mustTemplate(s string) Template {
	return Template{segs: strings.Split(s, "#")}
}

// Valid reports whether the template exists. Descriptors whose arguments are
// all real-only have no complex template.
func (t Template) Valid() bool { return len(t.segs) > 0 }

// Slots returns the amount of argument slots in the template.
func (t Template) Slots() int {
	if !t.Valid() {
		return 0
	}
	return len(t.segs) - 1
}

// Append fills the k'th slot with args[k] and appends the result to dst.
func (t Template) Append(dst []byte, args [][]byte) []byte {
	if !t.Valid() {
		panic("gjulia: use of missing template")
	} else if len(args) < t.Slots() {
		panic("gjulia: not enough template arguments")
	}
	for i, seg := range t.segs {
		if i > 0 {
			dst = append(dst, args[i-1]...)
		}
		dst = append(dst, seg...)
	}
	return dst
}

func (t Template) String() string {
	return strings.Join(t.segs, "#")
}

// cpuFunc is the CPU implementation of a template. Values are stored as x+iy.
type cpuFunc func(args []ms2.Vec) ms2.Vec

// MathFunction describes an operator or builtin function of the formula language.
type MathFunction struct {
	// ID is the operator symbol or function name.
	ID string
	// Args has one character per argument: 'R' for real-only positions
	// and 'C' for positions that accept real or complex values.
	Args string
	// Output is the result type rule.
	Output OutputRule
	// Real is used when all operands are real, Complex otherwise.
	Real, Complex Template
	// Precedence of binary operators, higher binds tighter. Zero for functions.
	Precedence int

	cpuReal, cpuComplex cpuFunc
}

// Arity returns the number of arguments taken by mf.
func (mf *MathFunction) Arity() int { return len(mf.Args) }

// RealOnly reports whether the i'th argument must be real.
func (mf *MathFunction) RealOnly(i int) bool { return mf.Args[i] == 'R' }

var operators = map[string]*MathFunction{
	"+": {ID: "+", Args: "CC", Output: OutputSame, Precedence: 20,
		Real: mustTemplate("(#+#)"), Complex: mustTemplate("(#+#)"),
		cpuReal: cpuAdd, cpuComplex: cpuAdd},
	"-": {ID: "-", Args: "CC", Output: OutputSame, Precedence: 20,
		Real: mustTemplate("(#-#)"), Complex: mustTemplate("(#-#)"),
		cpuReal: cpuSub, cpuComplex: cpuSub},
	"*": {ID: "*", Args: "CC", Output: OutputSame, Precedence: 30,
		Real: mustTemplate("(#*#)"), Complex: mustTemplate("cMul(#,#)"),
		cpuReal: cpuMulElem, cpuComplex: binary(cMul)},
	"/": {ID: "/", Args: "CC", Output: OutputSame, Precedence: 30,
		Real: mustTemplate("vec2((#).x/(#).x,0.)"), Complex: mustTemplate("cDiv(#,#)"),
		cpuReal: realBinary(func(a, b float32) float32 { return a / b }), cpuComplex: binary(cDiv)},
	"%": {ID: "%", Args: "RR", Output: OutputSame, Precedence: 30,
		Real:    mustTemplate("vec2(mod((#).x,(#).x),0.)"),
		cpuReal: realBinary(glslMod)},
	"^": {ID: "^", Args: "CC", Output: OutputComplex, Precedence: 40,
		Real: mustTemplate("vec2(pow((#).x,(#).x),0.)"), Complex: mustTemplate("cPow(#,#)"),
		cpuReal: realBinary(glslPow), cpuComplex: binary(cPow)},
}

var functions = map[string]*MathFunction{
	"re": {ID: "re", Args: "C", Output: OutputReal,
		Real: mustTemplate("#"), Complex: mustTemplate("vec2((#).x,0.)"),
		cpuReal: identity, cpuComplex: unary(func(z ms2.Vec) ms2.Vec { return ms2.Vec{X: z.X} })},
	"im": {ID: "im", Args: "C", Output: OutputReal,
		Real: mustTemplate("vec2(0.,0.)"), Complex: mustTemplate("vec2((#).y,0.)"),
		cpuReal: func([]ms2.Vec) ms2.Vec { return ms2.Vec{} }, cpuComplex: unary(func(z ms2.Vec) ms2.Vec { return ms2.Vec{X: z.Y} })},
	"abs": {ID: "abs", Args: "C", Output: OutputReal,
		Real: mustTemplate("vec2(abs((#).x),0.)"), Complex: mustTemplate("vec2(length(#),0.)"),
		cpuReal: realUnary(absf), cpuComplex: unary(cLength)},
	"sgn": {ID: "sgn", Args: "R", Output: OutputSame,
		Real:    mustTemplate("vec2(sign((#).x),0.)"),
		cpuReal: realUnary(signf)},
	"normalize": {ID: "normalize", Args: "C", Output: OutputReal,
		Real: mustTemplate("vec2(sign((#).x),0.)"), Complex: mustTemplate("normalize(#)"),
		cpuReal: realUnary(signf), cpuComplex: unary(normalize)},
	"ceil": {ID: "ceil", Args: "R", Output: OutputSame,
		Real:    mustTemplate("vec2(ceil((#).x),0.)"),
		cpuReal: realUnary(ceilf)},
	"floor": {ID: "floor", Args: "R", Output: OutputSame,
		Real:    mustTemplate("vec2(floor((#).x),0.)"),
		cpuReal: realUnary(floorf)},
	"round": {ID: "round", Args: "R", Output: OutputSame,
		Real:    mustTemplate("round(#)"),
		cpuReal: elemUnary(roundf)},
	"fract": {ID: "fract", Args: "R", Output: OutputSame,
		Real:    mustTemplate("fract(#)"),
		cpuReal: elemUnary(fractf)},
	"clamp": {ID: "clamp", Args: "RRR", Output: OutputSame,
		Real:    mustTemplate("vec2(clamp((#).x,(#).x,(#).x),0.)"),
		cpuReal: cpuClamp},
	"max": {ID: "max", Args: "RR", Output: OutputSame,
		Real:    mustTemplate("vec2(max((#).x,(#).x),0.)"),
		cpuReal: realBinary(maxf)},
	"min": {ID: "min", Args: "RR", Output: OutputSame,
		Real:    mustTemplate("vec2(min((#).x,(#).x),0.)"),
		cpuReal: realBinary(minf)},
	"avg": {ID: "avg", Args: "CC", Output: OutputSame,
		Real: mustTemplate("((#+#)/2.)"), Complex: mustTemplate("((#+#)/2.)"),
		cpuReal: cpuAvg, cpuComplex: cpuAvg},
	"exp": {ID: "exp", Args: "C", Output: OutputSame,
		Real: mustTemplate("vec2(exp((#).x),0.)"), Complex: mustTemplate("cExp(#)"),
		cpuReal: realUnary(expf), cpuComplex: unary(cExp)},
	"ln": {ID: "ln", Args: "C", Output: OutputComplex,
		Real: mustTemplate("vec2(log((#).x),0.)"), Complex: mustTemplate("cLog(#)"),
		cpuReal: realUnary(logf), cpuComplex: unary(cLog)},
	"sqrt": {ID: "sqrt", Args: "C", Output: OutputComplex,
		Real: mustTemplate("sqrt(#)"), Complex: mustTemplate("cSqrt(#)"),
		cpuReal: elemUnary(sqrtf), cpuComplex: unary(cSqrt)},
	"cos":   trig("cos", cosf, cCos),
	"sin":   trig("sin", sinf, cSin),
	"tan":   trig("tan", tanf, cTan),
	"cosh":  trig("cosh", coshf, cCosh),
	"sinh":  trig("sinh", sinhf, cSinh),
	"tanh":  trig("tanh", tanhf, cTanh),
	"acos":  trig("acos", acosf, cAcos),
	"asin":  trig("asin", asinf, cAsin),
	"atan":  trig("atan", atanf, cAtan),
	"acosh": trig("acosh", acoshf, cAcosh),
	"asinh": trig("asinh", asinhf, cAsinh),
	"atanh": trig("atanh", atanhf, cAtanh),
}

// trig creates the descriptor of a transcendental function f whose complex
// counterpart is the GLSL helper c<F>.
func trig(name string, realFn func(float32) float32, complexFn func(ms2.Vec) ms2.Vec) *MathFunction {
	helper := "c" + strings.ToUpper(name[:1]) + name[1:]
	return &MathFunction{
		ID:         name,
		Args:       "C",
		Output:     OutputSame,
		Real:       mustTemplate("vec2(" + name + "((#).x),0.)"),
		Complex:    mustTemplate(helper + "(#)"),
		cpuReal:    realUnary(realFn),
		cpuComplex: unary(complexFn),
	}
}

func init() {
	for _, tables := range []map[string]*MathFunction{operators, functions} {
		for id, mf := range tables {
			if id != mf.ID {
				panic("gjulia: descriptor key mismatch for " + id)
			} else if mf.Real.Slots() > mf.Arity() || mf.Complex.Slots() > mf.Arity() {
				panic("gjulia: template slots exceed arity for " + id)
			} else if !mf.Complex.Valid() && strings.Contains(mf.Args, "C") {
				panic("gjulia: missing complex template for " + id)
			}
		}
	}
}

// LookupOperator returns the descriptor of a binary operator symbol.
func LookupOperator(symbol string) (*MathFunction, bool) {
	mf, ok := operators[symbol]
	return mf, ok
}

// LookupFunction returns the descriptor of a builtin function.
func LookupFunction(name string) (*MathFunction, bool) {
	mf, ok := functions[name]
	return mf, ok
}

// FunctionNames returns the sorted names of all builtin functions.
func FunctionNames() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isOperator(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '%', '^':
		return true
	}
	return false
}

func precedence(tok Token) int {
	if tok.Kind != TokOp {
		return 0
	}
	mf, ok := operators[tok.Value]
	if !ok {
		return 0
	}
	return mf.Precedence
}
