package glbuild

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/soypat/gjulia"
)

const VersionStr = "#version 430\n"

// Default iteration parameters used by [NewDefaultProgrammer].
const (
	DefaultIterations    = 100
	DefaultEscapeRadius2 = 9
)

// ShaderObject is a GLSL function definition needed to evaluate formula code,
// such as the complex arithmetic helpers.
type ShaderObject struct {
	// NamePtr is the name of the function inside of funcSource.
	NamePtr    []byte
	funcSource []byte
}

// MakeShaderFunction creates a ShaderObject from a single GLSL function definition.
func MakeShaderFunction(shaderDef []byte) (sf ShaderObject, err error) {
	shaderDef = bytes.TrimSpace(shaderDef)
	fnNameEnd := bytes.IndexByte(shaderDef, '(')
	fnNameStart := bytes.IndexByte(shaderDef, ' ')
	if fnNameEnd < 0 || fnNameStart < 0 || fnNameStart > fnNameEnd {
		return ShaderObject{}, errors.New("unable to parse function name")
	}
	name := shaderDef[fnNameStart:fnNameEnd]
	name = bytes.TrimSpace(name)
	if len(name) == 0 {
		return ShaderObject{}, errors.New("empty function name")
	}
	sf = ShaderObject{
		NamePtr:    name,
		funcSource: shaderDef,
	}
	return sf, nil
}

// Name returns the function name.
func (obj ShaderObject) Name() string { return string(obj.NamePtr) }

// AppendSource appends the function definition to b.
func (obj ShaderObject) AppendSource(b []byte) []byte {
	b = append(b, obj.funcSource...)
	return append(b, '\n', '\n')
}

// Programmer writes complete GLSL programs that iterate a formula over the complex plane.
// The iteration escape progress of each point is log2(iters+2)/log2(Iterations+2) where iters
// counts the iterations after which |z|² < EscapeRadius2.
type Programmer struct {
	// Iterations is the amount of times the formula is applied to z.
	Iterations int
	// EscapeRadius2 is the squared modulus of z below which an iteration counts towards the progress.
	EscapeRadius2 float32

	lib     []ShaderObject
	scratch []byte
	// Invocations size in X (local group size) to give each compute work group.
	invocX int
}

// NewDefaultProgrammer returns a Programmer with reasonable default parameters for use with glgl package on the local machine.
// The helper functions referenced by formula code must be added with [Programmer.AddFunctions], usually from glsllib.
func NewDefaultProgrammer() *Programmer {
	return &Programmer{
		Iterations:    DefaultIterations,
		EscapeRadius2: DefaultEscapeRadius2,
		scratch:       make([]byte, 0, 1024),
		invocX:        32,
	}
}

// AddFunctions adds helper function definitions to be written to every program.
func (p *Programmer) AddFunctions(objs ...ShaderObject) error {
	for _, obj := range objs {
		if len(obj.funcSource) == 0 {
			return errors.New("shader object is not a function")
		}
		for _, have := range p.lib {
			if bytes.Equal(have.NamePtr, obj.NamePtr) {
				return fmt.Errorf("duplicate function %q", obj.NamePtr)
			}
		}
		p.lib = append(p.lib, obj)
	}
	return nil
}

// SetComputeInvocations sets the work group local-sizes. x*y*z must be less than maximum number of invocations.
func (p *Programmer) SetComputeInvocations(x, y, z int) {
	if y != 1 || z != 1 {
		panic("unsupported")
	} else if x < 1 {
		panic("zero or negative X invocation size")
	}
	p.invocX = x
}

// ComputeInvocations returns the worker group invocation size in x y and z.
func (p *Programmer) ComputeInvocations() (int, int, int) {
	return p.invocX, 1, 1
}

func (p *Programmer) validate(f *gjulia.Formula) error {
	if f == nil {
		return errors.New("nil formula")
	} else if p.Iterations < 1 {
		return errors.New("iterations must be positive")
	} else if p.EscapeRadius2 <= 0 {
		return errors.New("escape radius must be positive")
	}
	return nil
}

// WriteFragmentWebGL writes a WebGL 1 (GLSL ES 1.00) fragment shader coloring the plane by
// sampling a lookup texture vSampler at the escape progress. Uniforms aspectRatio, zoom and offset
// control the viewport: z = vPosition.xy*exp(zoom) - offset; z.x *= aspectRatio.
func (p *Programmer) WriteFragmentWebGL(w io.Writer, f *gjulia.Formula) (int, error) {
	err := p.validate(f)
	if err != nil {
		return 0, err
	}
	b := append(p.scratch[:0], `precision mediump float;
uniform sampler2D vSampler;
uniform float aspectRatio;
uniform float zoom;
uniform vec2 offset;

varying vec3 vPosition;
varying vec2 vTexcoord;

`...)
	b, err = p.appendLibrary(b, f)
	if err != nil {
		return 0, err
	}
	b = append(b, "void main() {\n"...)
	b = p.appendIterations(b, f, true)
	b = append(b, "\tgl_FragColor = texture2D(vSampler, vec2(progress,0.5));\n}\n"...)
	p.scratch = b
	return w.Write(b)
}

// WriteVertexWebGL writes the WebGL 1 vertex shader that pairs with [Programmer.WriteFragmentWebGL].
// The vertex attributes are aPosition and aTexcoord.
func (p *Programmer) WriteVertexWebGL(w io.Writer) (int, error) {
	return io.WriteString(w, `attribute vec3 aPosition;
attribute vec2 aTexcoord;

varying vec3 vPosition;
varying vec2 vTexcoord;

void main() {
	gl_Position = vec4(aPosition, 1.);
	vPosition = aPosition;
	vTexcoord = aTexcoord;
}
`)
}

// WriteFragmentCore writes a desktop OpenGL 4.6 core fragment shader equivalent to
// [Programmer.WriteFragmentWebGL]. The source is null terminated for use with glgl.
func (p *Programmer) WriteFragmentCore(w io.Writer, f *gjulia.Formula) (int, error) {
	err := p.validate(f)
	if err != nil {
		return 0, err
	}
	b := append(p.scratch[:0], `#version 460
uniform sampler2D vSampler;
uniform float aspectRatio;
uniform float zoom;
uniform vec2 offset;

in vec2 vPosition;
out vec4 fragColor;

`...)
	b, err = p.appendLibrary(b, f)
	if err != nil {
		return 0, err
	}
	b = append(b, "void main() {\n"...)
	b = p.appendIterations(b, f, true)
	b = append(b, "\tfragColor = texture(vSampler, vec2(progress,0.5));\n}\n\x00"...)
	p.scratch = b
	return w.Write(b)
}

// WriteVertexCore writes the desktop OpenGL 4.6 core vertex shader that pairs with
// [Programmer.WriteFragmentCore]. The vertex attribute is aPosition. The source is null terminated.
func (p *Programmer) WriteVertexCore(w io.Writer) (int, error) {
	return io.WriteString(w, `#version 460
in vec2 aPosition;
out vec2 vPosition;

void main() {
	gl_Position = vec4(aPosition, 0., 1.);
	vPosition = aPosition;
}
`+"\x00")
}

// WriteComputeJulia writes a compute program in glgl's combined format that evaluates
// the escape progress of the points in binding 0 and stores them in binding 1.
// Points are used as the starting value of z as is, with no viewport transformation.
func (p *Programmer) WriteComputeJulia(w io.Writer, f *gjulia.Formula) (int, error) {
	err := p.validate(f)
	if err != nil {
		return 0, err
	}
	b := append(p.scratch[:0], "#shader compute\n"+VersionStr...)
	b = append(b, "\nlayout(local_size_x = "...)
	b = strconv.AppendInt(b, int64(p.invocX), 10)
	b = append(b, `, local_size_y = 1, local_size_z = 1) in;

// Input: starting values of z at which to evaluate the formula.
layout(std430, binding = 0) buffer PositionsBuffer {
	vec2 vbo_positions[];
};

// Output: escape progress of each starting value.
layout(std430, binding = 1) buffer ProgressBuffer {
	float vbo_progress[];
};

`...)
	b, err = p.appendLibrary(b, f)
	if err != nil {
		return 0, err
	}
	b = append(b, `void main() {
	int idx = int( gl_GlobalInvocationID.x );
	if (idx >= vbo_positions.length()) {
		return;
	}
	vec2 z = vbo_positions[idx];
`...)
	b = p.appendIterations(b, f, false)
	b = append(b, "\tvbo_progress[idx] = progress;\n}\n"...)
	p.scratch = b
	return w.Write(b)
}

// appendIterations appends the iteration loop which leaves the result in the float progress.
func (p *Programmer) appendIterations(b []byte, f *gjulia.Formula, viewport bool) []byte {
	if viewport {
		b = append(b, "\tvec2 z = vPosition.xy*exp(zoom) - offset;\n\tz.x *= aspectRatio;\n"...)
	}
	b = append(b, "\tfloat iters = 0.;\n\tfor (int i = 0; i < "...)
	b = strconv.AppendInt(b, int64(p.Iterations), 10)
	b = append(b, "; i++) {\n\t\tz = "...)
	b = f.AppendGLSL(b)
	b = append(b, ";\n\t\titers += float(dot(z,z) < "...)
	b = AppendFloat(b, '-', '.', p.EscapeRadius2)
	b = append(b, ");\n\t}\n\tfloat progress = log2(iters + 2.)/log2("...)
	b = AppendFloat(b, '-', '.', float32(p.Iterations+2))
	b = append(b, ");\n"...)
	return b
}

// appendLibrary appends the helper library after checking that all helpers
// referenced by the formula's code are defined.
func (p *Programmer) appendLibrary(b []byte, f *gjulia.Formula) ([]byte, error) {
	code := f.AppendGLSL(nil)
	for _, name := range ReferencedHelpers(code) {
		if !p.hasFunction(name) {
			return b, fmt.Errorf("formula references undefined helper %s, add it with AddFunctions", name)
		}
	}
	for _, obj := range p.lib {
		b = obj.AppendSource(b)
	}
	return b, nil
}

func (p *Programmer) hasFunction(name string) bool {
	for _, obj := range p.lib {
		if string(obj.NamePtr) == name {
			return true
		}
	}
	return false
}

// ReferencedHelpers returns the distinct names of complex helper calls in GLSL code,
// identified as a 'c' followed by an upper case letter and an opening parenthesis.
func ReferencedHelpers(code []byte) (names []string) {
	for i := 0; i+1 < len(code); i++ {
		if code[i] != 'c' || !isUpper(code[i+1]) || (i > 0 && isIdent(code[i-1])) {
			continue
		}
		end := i + 1
		for end < len(code) && isIdent(code[end]) {
			end++
		}
		if end == len(code) || code[end] != '(' {
			continue
		}
		name := string(code[i:end])
		dup := false
		for _, have := range names {
			dup = dup || have == name
		}
		if !dup {
			names = append(names, name)
		}
		i = end
	}
	return names
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isIdent(c byte) bool {
	return isUpper(c) || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_'
}

const decimalDigits = 9

// AppendFloat appends a GLSL float literal of v to b using neg as the minus sign
// and decimal as the decimal separator.
func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if decimal != '.' && idx >= 0 {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	// Finally trim zeroes.
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+start && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

// AppendFloats appends the float literals of s separated by sep.
func AppendFloats(b []byte, sep, neg, decimal byte, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloat(b, neg, decimal, v)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
		}
	}
	return b
}
