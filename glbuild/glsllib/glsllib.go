package glsllib

import (
	"bytes"
	_ "embed"

	"github.com/soypat/gjulia/glbuild"
)

//go:embed complex.glsl
var complexSrc []byte

// ComplexLibrary returns the complex arithmetic helpers used by formula code,
// one shader function per helper in order of definition. Helpers take and return
// vec2 values where x is the real part and y the imaginary part:
//
//	vec2 cMul(vec2 a, vec2 b)
//	vec2 cDiv(vec2 a, vec2 b)
//	vec2 cPow(vec2 z, vec2 e)
//	vec2 cExp(vec2 z) // Also cLog, cSqrt, cCos, cSin, cTan, cCosh, cSinh, cTanh,
//	                  // cAcos, cAsin, cAtan, cAcosh, cAsinh, cAtanh.
func ComplexLibrary() []glbuild.ShaderObject {
	var objs []glbuild.ShaderObject
	for _, def := range splitFunctions(complexSrc) {
		obj, err := glbuild.MakeShaderFunction(def)
		if err != nil {
			panic("glsllib: bad embedded function: " + err.Error())
		}
		objs = append(objs, obj)
	}
	return objs
}

// splitFunctions splits GLSL source into top level function definitions.
// Comments outside of function bodies are dropped.
func splitFunctions(src []byte) (defs [][]byte) {
	depth := 0
	start := -1
	for len(src) > 0 {
		line, rest, _ := bytes.Cut(src, []byte("\n"))
		trimmed := bytes.TrimSpace(line)
		isComment := bytes.HasPrefix(trimmed, []byte("//"))
		if depth == 0 && start < 0 && len(trimmed) > 0 && !isComment {
			start = 0
			defs = append(defs, nil)
		}
		if start >= 0 {
			defs[len(defs)-1] = append(defs[len(defs)-1], line...)
			defs[len(defs)-1] = append(defs[len(defs)-1], '\n')
		}
		depth += bytes.Count(line, []byte("{")) - bytes.Count(line, []byte("}"))
		if depth == 0 {
			start = -1
		}
		src = rest
	}
	return defs
}
