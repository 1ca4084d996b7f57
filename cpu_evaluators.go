package gjulia

import (
	"errors"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

var errRawCodeCPU = errors.New("formula contains raw shader code which can only be evaluated on the GPU")

// Step applies one iteration of the formula to every z and stores the results in dst.
// dst and z may be the same slice. Step mirrors the semantics of the generated GLSL and
// implements the gleval stepper interface.
func (f *Formula) Step(dst, z []ms2.Vec, userData any) error {
	if len(dst) != len(z) {
		return errors.New("dst and z buffer length mismatch")
	} else if f.rawcode {
		return errRawCodeCPU
	}
	root := f.root
	for i, zi := range z {
		dst[i] = evalPoint(root, zi)
	}
	return nil
}

// evalPoint evaluates a type-fixed node at a single value of z.
func evalPoint(n Node, z ms2.Vec) ms2.Vec {
	switch n := n.(type) {
	case *Real:
		return ms2.Vec{X: n.v}
	case *Imaginary:
		return ms2.Vec{Y: n.v}
	case *Complex:
		return ms2.Vec{X: n.re, Y: n.im}
	case *Z:
		return z
	case *BinaryOp:
		var args [2]ms2.Vec
		args[0] = evalPoint(n.LHS, z)
		args[1] = evalPoint(n.RHS, z)
		if n.typ == TypeReal {
			return n.fn.cpuReal(args[:])
		}
		return n.fn.cpuComplex(args[:])
	case *Call:
		var buf [3]ms2.Vec
		args := buf[:0]
		for _, arg := range n.Args {
			args = append(args, evalPoint(arg, z))
		}
		if n.complexInput {
			return n.fn.cpuComplex(args)
		}
		return n.fn.cpuReal(args)
	case *RawCode:
		panic("gjulia: raw code reached CPU evaluation")
	}
	panic("gjulia: unhandled node in CPU evaluation")
}

func identity(a []ms2.Vec) ms2.Vec { return a[0] }

func unary(f func(z ms2.Vec) ms2.Vec) cpuFunc {
	return func(a []ms2.Vec) ms2.Vec { return f(a[0]) }
}

func binary(f func(a, b ms2.Vec) ms2.Vec) cpuFunc {
	return func(a []ms2.Vec) ms2.Vec { return f(a[0], a[1]) }
}

// realUnary applies f to the real part only, as in vec2(f((#).x),0.).
func realUnary(f func(float32) float32) cpuFunc {
	return func(a []ms2.Vec) ms2.Vec { return ms2.Vec{X: f(a[0].X)} }
}

func realBinary(f func(a, b float32) float32) cpuFunc {
	return func(a []ms2.Vec) ms2.Vec { return ms2.Vec{X: f(a[0].X, a[1].X)} }
}

// elemUnary applies f to each component, as GLSL does for vector arguments.
func elemUnary(f func(float32) float32) cpuFunc {
	return func(a []ms2.Vec) ms2.Vec { return ms2.Vec{X: f(a[0].X), Y: f(a[0].Y)} }
}

func cpuAdd(a []ms2.Vec) ms2.Vec { return ms2.Vec{X: a[0].X + a[1].X, Y: a[0].Y + a[1].Y} }
func cpuSub(a []ms2.Vec) ms2.Vec { return ms2.Vec{X: a[0].X - a[1].X, Y: a[0].Y - a[1].Y} }

func cpuMulElem(a []ms2.Vec) ms2.Vec {
	return ms2.Vec{X: a[0].X * a[1].X, Y: a[0].Y * a[1].Y}
}

func cpuAvg(a []ms2.Vec) ms2.Vec {
	return ms2.Vec{X: (a[0].X + a[1].X) / 2, Y: (a[0].Y + a[1].Y) / 2}
}

func cpuClamp(a []ms2.Vec) ms2.Vec {
	return ms2.Vec{X: minf(maxf(a[0].X, a[1].X), a[2].X)}
}

// Complex helpers. Each mirrors the GLSL function of the same name in glsllib.

func cMul(a, b ms2.Vec) ms2.Vec {
	return ms2.Vec{X: a.X*b.X - a.Y*b.Y, Y: a.X*b.Y + a.Y*b.X}
}

func cDiv(a, b ms2.Vec) ms2.Vec {
	d := b.X*b.X + b.Y*b.Y
	return ms2.Vec{X: (a.X*b.X + a.Y*b.Y) / d, Y: (a.Y*b.X - a.X*b.Y) / d}
}

func cExp(z ms2.Vec) ms2.Vec {
	r := math32.Exp(z.X)
	return ms2.Vec{X: r * math32.Cos(z.Y), Y: r * math32.Sin(z.Y)}
}

func cLog(z ms2.Vec) ms2.Vec {
	return ms2.Vec{X: math32.Log(math32.Hypot(z.X, z.Y)), Y: math32.Atan2(z.Y, z.X)}
}

func cSqrt(z ms2.Vec) ms2.Vec {
	return cExp(cScale(0.5, cLog(z)))
}

func cPow(z, e ms2.Vec) ms2.Vec {
	return cExp(cMul(cLog(z), e))
}

func cCos(z ms2.Vec) ms2.Vec {
	return cScale(0.5, cAdd(cExp(ms2.Vec{X: -z.Y, Y: z.X}), cExp(ms2.Vec{X: z.Y, Y: -z.X})))
}

func cSin(z ms2.Vec) ms2.Vec {
	return cDiv(cSub(cExp(ms2.Vec{X: -z.Y, Y: z.X}), cExp(ms2.Vec{X: z.Y, Y: -z.X})), ms2.Vec{Y: 2})
}

func cTan(z ms2.Vec) ms2.Vec { return cDiv(cSin(z), cCos(z)) }

func cCosh(z ms2.Vec) ms2.Vec {
	return cScale(0.5, cAdd(cExp(z), cExp(cNeg(z))))
}

func cSinh(z ms2.Vec) ms2.Vec {
	return cScale(0.5, cSub(cExp(z), cExp(cNeg(z))))
}

func cTanh(z ms2.Vec) ms2.Vec { return cDiv(cSinh(z), cCosh(z)) }

// cAsin computes -i*ln(iz + sqrt(1-z²)).
func cAsin(z ms2.Vec) ms2.Vec {
	w := cSub(cSqrt(cSub(ms2.Vec{X: 1}, cMul(z, z))), ms2.Vec{X: z.Y, Y: -z.X})
	w = cLog(w)
	return ms2.Vec{X: w.Y, Y: -w.X}
}

// cAcos computes -i*ln(z + i*sqrt(1-z²)).
func cAcos(z ms2.Vec) ms2.Vec {
	z2 := cSqrt(cSub(ms2.Vec{X: 1}, cMul(z, z)))
	w := cLog(cAdd(z, ms2.Vec{X: -z2.Y, Y: z2.X}))
	return ms2.Vec{X: w.Y, Y: -w.X}
}

// cAtan computes -i/2*ln((1+iz)/(1-iz)).
func cAtan(z ms2.Vec) ms2.Vec {
	w := cDiv(ms2.Vec{X: 1 - z.Y, Y: z.X}, ms2.Vec{X: 1 + z.Y, Y: -z.X})
	w = cScale(0.5, cLog(w))
	return ms2.Vec{X: w.Y, Y: -w.X}
}

func cAcosh(z ms2.Vec) ms2.Vec {
	return cLog(cAdd(z, cSqrt(cSub(cMul(z, z), ms2.Vec{X: 1}))))
}

func cAsinh(z ms2.Vec) ms2.Vec {
	return cLog(cAdd(z, cSqrt(cAdd(cMul(z, z), ms2.Vec{X: 1}))))
}

func cAtanh(z ms2.Vec) ms2.Vec {
	one := ms2.Vec{X: 1}
	return cScale(0.5, cLog(cDiv(cAdd(one, z), cSub(one, z))))
}

func cAdd(a, b ms2.Vec) ms2.Vec { return ms2.Vec{X: a.X + b.X, Y: a.Y + b.Y} }
func cSub(a, b ms2.Vec) ms2.Vec { return ms2.Vec{X: a.X - b.X, Y: a.Y - b.Y} }
func cNeg(a ms2.Vec) ms2.Vec { return ms2.Vec{X: -a.X, Y: -a.Y} }
func cScale(f float32, a ms2.Vec) ms2.Vec { return ms2.Vec{X: f * a.X, Y: f * a.Y} }

func cLength(z ms2.Vec) ms2.Vec {
	return ms2.Vec{X: math32.Hypot(z.X, z.Y)}
}

func normalize(z ms2.Vec) ms2.Vec {
	return cScale(1/math32.Hypot(z.X, z.Y), z)
}

// GLSL builtins operating on scalars.

func absf(a float32) float32 { return math32.Abs(a) }
func floorf(a float32) float32 { return math32.Floor(a) }
func ceilf(a float32) float32 { return math32.Ceil(a) }
func fractf(a float32) float32 { return a - math32.Floor(a) }
func sqrtf(a float32) float32 { return math32.Sqrt(a) }
func expf(a float32) float32 { return math32.Exp(a) }
func logf(a float32) float32 { return math32.Log(a) }
func cosf(a float32) float32 { return math32.Cos(a) }
func sinf(a float32) float32 { return math32.Sin(a) }
func tanf(a float32) float32 { return math32.Tan(a) }
func coshf(a float32) float32 { return math32.Cosh(a) }
func sinhf(a float32) float32 { return math32.Sinh(a) }
func tanhf(a float32) float32 { return math32.Tanh(a) }
func acosf(a float32) float32 { return math32.Acos(a) }
func asinf(a float32) float32 { return math32.Asin(a) }
func atanf(a float32) float32 { return math32.Atan(a) }
func acoshf(a float32) float32 { return float32(math.Acosh(float64(a))) }
func asinhf(a float32) float32 { return float32(math.Asinh(float64(a))) }
func atanhf(a float32) float32 { return float32(math.Atanh(float64(a))) }
func roundf(a float32) float32 { return float32(math.Round(float64(a))) }
func minf(a, b float32) float32 { return math32.Min(a, b) }
func maxf(a, b float32) float32 { return math32.Max(a, b) }

func signf(a float32) float32 {
	if a == 0 {
		return 0
	}
	return math32.Copysign(1, a)
}

// glslMod is GLSL's mod: x - y*floor(x/y).
func glslMod(x, y float32) float32 {
	return x - y*math32.Floor(x/y)
}

func glslPow(x, y float32) float32 {
	return math32.Pow(x, y)
}
