package gjulia

import (
	"math"
	"strconv"
	"strings"
)

// Node is a formula syntax tree node. The set of node types is closed:
// [*Real], [*Imaginary], [*Complex], [*Z], [*RawCode], [*BinaryOp] and [*Call].
type Node interface {
	// Col returns the 0-indexed formula column the node originates from.
	Col() int
	// Type returns the node's value type. Composite nodes are undetermined until type fixing.
	Type() ValueType
	node()
}

type nodeBase struct {
	col int
	typ ValueType
}

func (nb *nodeBase) Col() int        { return nb.col }
func (nb *nodeBase) Type() ValueType { return nb.typ }
func (nb *nodeBase) node()           {}

type (
	// Real is a real number literal.
	Real struct {
		nodeBase
		// Value is the GLSL float literal, always with a decimal point.
		Value string
		v     float32
	}
	// Imaginary is a pure imaginary literal such as the bare i.
	Imaginary struct {
		nodeBase
		Value string
		v     float32
	}
	// Complex is a literal with real and imaginary parts. Its type is real when the imaginary part is zero.
	Complex struct {
		nodeBase
		Re, Im string
		re, im float32
	}
	// Z is the iterated variable.
	Z struct {
		nodeBase
	}
	// RawCode is verbatim shader code. Its type is unknowable and never checked.
	RawCode struct {
		nodeBase
		Code string
	}
	// BinaryOp is an infix arithmetic operation.
	BinaryOp struct {
		nodeBase
		LHS, RHS Node
		Op       string
		fn       *MathFunction
	}
	// Call is a builtin function call.
	Call struct {
		nodeBase
		Name         string
		Args         []Node
		fn           *MathFunction
		complexInput bool
	}
)

// glslNumber forces a decimal point into a number literal as GLSL requires for floats.
func glslNumber(val string) string {
	if strings.IndexByte(val, '.') >= 0 {
		return val
	}
	return val + "."
}

func parseLiteral(val string) float32 {
	v, err := strconv.ParseFloat(val, 32)
	if err != nil {
		return float32(math.NaN())
	}
	return float32(v)
}

func newReal(col int, val string) *Real {
	return &Real{nodeBase: nodeBase{col: col, typ: TypeReal}, Value: glslNumber(val), v: parseLiteral(val)}
}

func newImaginary(col int, val string) *Imaginary {
	return &Imaginary{nodeBase: nodeBase{col: col, typ: TypeComplex}, Value: glslNumber(val), v: parseLiteral(val)}
}

func newComplex(col int, re, im string) *Complex {
	return &Complex{
		nodeBase: nodeBase{col: col},
		Re:       glslNumber(re), Im: glslNumber(im),
		re: parseLiteral(re), im: parseLiteral(im),
	}
}

func newZ(col int) *Z { return &Z{nodeBase: nodeBase{col: col, typ: TypeComplex}} }

func newRawCode(col int, code string) *RawCode {
	return &RawCode{nodeBase: nodeBase{col: col, typ: TypeUnknowable}, Code: code}
}

func newBinaryOp(col int, lhs, rhs Node, op string) *BinaryOp {
	fn, ok := operators[op]
	if !ok {
		panic("gjulia: unknown operator " + op)
	}
	return &BinaryOp{nodeBase: nodeBase{col: col}, LHS: lhs, RHS: rhs, Op: op, fn: fn}
}

func newCall(col int, name string, args []Node) *Call {
	fn, ok := functions[name]
	if !ok {
		panic("gjulia: unknown function " + name)
	}
	return &Call{nodeBase: nodeBase{col: col}, Name: name, Args: args, fn: fn}
}

// fixType resolves the type of every node in the tree rooted at n bottom-up
// and checks real-only argument positions. Errors returned are of type *[TypeError].
func fixType(n Node) error {
	switch n := n.(type) {
	case *Real, *Imaginary, *Z, *RawCode:
		return nil

	case *Complex:
		if n.typ == TypeUndetermined {
			if n.im == 0 {
				n.typ = TypeReal
			} else {
				n.typ = TypeComplex
			}
		}
		return nil

	case *BinaryOp:
		if err := fixType(n.LHS); err != nil {
			return err
		}
		if err := fixType(n.RHS); err != nil {
			return err
		}
		mustBeDetermined(n.LHS)
		mustBeDetermined(n.RHS)
		lt, rt := n.LHS.Type(), n.RHS.Type()
		if lt == TypeComplex && n.fn.RealOnly(0) {
			return typeErrorf(n.LHS.Col(), "left-hand side of %q can be complex, expected real", n.Op)
		}
		if rt == TypeComplex && n.fn.RealOnly(1) {
			return typeErrorf(n.RHS.Col(), "right-hand side of %q can be complex, expected real", n.Op)
		}
		n.typ = resolveOutput(n.fn.Output, lt == TypeComplex || rt == TypeComplex)
		return nil

	case *Call:
		for i, arg := range n.Args {
			if err := fixType(arg); err != nil {
				return err
			}
			mustBeDetermined(arg)
			isComplex := arg.Type() == TypeComplex
			if isComplex && n.fn.RealOnly(i) {
				return typeErrorf(arg.Col(), "argument #%d of %q call can be complex, expected real", i+1, n.Name)
			}
			n.complexInput = n.complexInput || isComplex
		}
		n.typ = resolveOutput(n.fn.Output, n.complexInput)
		return nil
	}
	panic("gjulia: unhandled node type in fixType")
}

func resolveOutput(rule OutputRule, complexInput bool) ValueType {
	switch rule {
	case OutputReal:
		return TypeReal
	case OutputComplex:
		return TypeComplex
	case OutputSame:
		if complexInput {
			return TypeComplex
		}
		return TypeReal
	}
	panic("gjulia: invalid output rule")
}

func mustBeDetermined(n Node) {
	if n.Type() == TypeUndetermined {
		panic("gjulia: determining types failed at column " + strconv.Itoa(n.Col()))
	}
}

// appendCode appends the GLSL code of the type-fixed tree rooted at n to dst.
func appendCode(dst []byte, n Node) []byte {
	mustBeDetermined(n)
	switch n := n.(type) {
	case *Real:
		dst = append(dst, "vec2("...)
		dst = append(dst, n.Value...)
		return append(dst, ",0.)"...)

	case *Imaginary:
		dst = append(dst, "vec2(0.,"...)
		dst = append(dst, n.Value...)
		return append(dst, ')')

	case *Complex:
		dst = append(dst, "vec2("...)
		dst = append(dst, n.Re...)
		dst = append(dst, ',')
		dst = append(dst, n.Im...)
		return append(dst, ')')

	case *Z:
		return append(dst, 'z')

	case *RawCode:
		return append(dst, n.Code...)

	case *BinaryOp:
		tmpl := n.fn.Complex
		if n.typ == TypeReal {
			tmpl = n.fn.Real
		}
		args := [][]byte{appendCode(nil, n.LHS), appendCode(nil, n.RHS)}
		return tmpl.Append(dst, args)

	case *Call:
		tmpl := n.fn.Real
		if n.complexInput {
			tmpl = n.fn.Complex
		}
		args := make([][]byte, len(n.Args))
		for i, arg := range n.Args {
			args[i] = appendCode(nil, arg)
		}
		return tmpl.Append(dst, args)
	}
	panic("gjulia: unhandled node type in appendCode")
}

// walk calls fn for n and each of its descendants in depth first order.
func walk(n Node, fn func(Node)) {
	fn(n)
	switch n := n.(type) {
	case *BinaryOp:
		walk(n.LHS, fn)
		walk(n.RHS, fn)
	case *Call:
		for _, arg := range n.Args {
			walk(arg, fn)
		}
	}
}
