// Package gjulia compiles fractal iteration formulas over a complex variable z
// into GLSL expressions and evaluates them on the CPU.
//
// A formula such as "z^2 + 0.3 - 0.5i" describes the update applied to z on
// every iteration of a Julia set. The generated expression operates on vec2
// values where x holds the real part and y the imaginary part.
package gjulia

// Formula is a parsed and type checked formula. It is immutable and safe for concurrent use.
type Formula struct {
	source  string
	root    Node
	rawcode bool
}

// Parse tokenizes, parses and type checks formula. Errors returned are
// of type *[ParseError] or *[TypeError].
func Parse(formula string) (*Formula, error) {
	tokens, err := Tokenize(formula)
	if err != nil {
		return nil, err
	}
	root, err := parse(tokens)
	if err != nil {
		return nil, err
	}
	err = fixType(root)
	if err != nil {
		return nil, err
	}
	f := &Formula{source: formula, root: root}
	walk(root, func(n Node) {
		if _, ok := n.(*RawCode); ok {
			f.rawcode = true
		}
	})
	return f, nil
}

// Compile returns the GLSL expression that computes the next value of z from
// the current one according to formula.
func Compile(formula string) (string, error) {
	f, err := Parse(formula)
	if err != nil {
		return "", err
	}
	return f.String(), nil
}

// AppendGLSL appends the formula's GLSL update expression to b.
func (f *Formula) AppendGLSL(b []byte) []byte {
	return appendCode(b, f.root)
}

// String returns the GLSL update expression.
func (f *Formula) String() string {
	return string(f.AppendGLSL(nil))
}

// Source returns the formula as written by the user.
func (f *Formula) Source() string { return f.source }

// Root returns the root of the type checked syntax tree.
func (f *Formula) Root() Node { return f.root }

// ContainsRawCode reports whether the formula embeds quoted shader code.
// Such formulas can only be evaluated on the GPU.
func (f *Formula) ContainsRawCode() bool { return f.rawcode }

// Operators returns the binary operator symbols of the formula language.
func Operators() []string {
	return []string{"+", "-", "*", "/", "%", "^"}
}
