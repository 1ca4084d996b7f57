package gjulia

import (
	"strconv"
	"unicode"
)

// TokenKind identifies the variant of a [Token].
type TokenKind uint8

const (
	TokZ TokenKind = iota + 1
	TokImaginary
	TokOp
	TokFunction
	TokNumber
	TokComma
	TokParenOpen
	TokParenClose
	TokRawCode
)

func (tk TokenKind) String() string {
	switch tk {
	case TokZ:
		return "z"
	case TokImaginary:
		return "i"
	case TokOp:
		return "Op"
	case TokFunction:
		return "Function"
	case TokNumber:
		return "Number"
	case TokComma:
		return "Comma"
	case TokParenOpen:
		return "ParenOpen"
	case TokParenClose:
		return "ParenClose"
	case TokRawCode:
		return "RawCode"
	}
	return "TokenKind(" + strconv.Itoa(int(tk)) + ")"
}

// Token is a lexical element of a formula.
type Token struct {
	Kind TokenKind
	// Col is the 0-indexed column of the user's formula where the token starts.
	Col int
	// Value holds the operator symbol, function name, number literal or raw code.
	Value string
	// Implicit is set for multiplication operators synthesized by the lexer
	// between juxtaposed factors such as 2z or (z+1)(z-1).
	Implicit bool
}

func makeToken(col int, kind TokenKind, value string) Token {
	if col < 0 {
		panic("gjulia: token column must be non-negative")
	}
	return Token{Kind: kind, Col: col, Value: value}
}

func implicitMul(col int) Token {
	tok := makeToken(col, TokOp, "*")
	tok.Implicit = true
	return tok
}

func (tok Token) String() string {
	switch tok.Kind {
	case TokOp, TokFunction, TokNumber:
		return tok.Kind.String() + "(" + tok.Value + ")"
	case TokRawCode:
		return "RawCode(" + strconv.Quote(tok.Value) + ")"
	}
	return tok.Kind.String()
}

// char is a normalized formula character and the column it came from.
type char struct {
	r   rune
	col int
	// raw is set for characters inside a double-quoted span.
	raw bool
}

const piLiteral = "3.1415926535897932"

// normalizeFormula applies the formula preprocessing rules and removes whitespace.
// Quoted spans are left untouched.
func normalizeFormula(formula string) []char {
	chars := make([]char, 0, len(formula))
	inQuote := false
	col := 0
	for _, r := range formula {
		switch {
		case r == '"':
			chars = append(chars, char{r: r, col: col})
			inQuote = !inQuote
		case inQuote:
			chars = append(chars, char{r: r, col: col, raw: true})
		case unicode.IsSpace(r):
			// Whitespace is insignificant outside raw code.
		default:
			chars = append(chars, char{r: unicode.ToLower(r), col: col})
		}
		col++
	}
	chars = replaceAll(chars, "log", "ln")
	chars = replaceAll(chars, "**", "^")
	chars = rewriteAbsBars(chars)
	chars = replaceAll(chars, "pi", piLiteral)
	chars = replaceAll(chars, "π", piLiteral)
	return chars
}

// replaceAll replaces non-overlapping occurrences of old outside quoted spans.
// Replacement characters inherit the column of the first replaced character.
func replaceAll(chars []char, old, repl string) []char {
	pattern := []rune(old)
	var dst []char
	for i := 0; i < len(chars); {
		if !matchAt(chars, i, pattern) {
			if dst != nil {
				dst = append(dst, chars[i])
			}
			i++
			continue
		}
		if dst == nil {
			dst = append(make([]char, 0, len(chars)+len(repl)), chars[:i]...)
		}
		col := chars[i].col
		for _, r := range repl {
			dst = append(dst, char{r: r, col: col})
		}
		i += len(pattern)
	}
	if dst == nil {
		return chars
	}
	return dst
}

func matchAt(chars []char, i int, pattern []rune) bool {
	if i+len(pattern) > len(chars) {
		return false
	}
	for j, r := range pattern {
		c := chars[i+j]
		if c.raw || c.r != r {
			return false
		}
	}
	return true
}

// rewriteAbsBars rewrites |expr| as abs(expr). Bars are paired left to right
// and do not nest. An unpaired bar is left for the scanner to reject.
func rewriteAbsBars(chars []char) []char {
	// opens maps the index of each paired bar to whether it opens the pair.
	var opens map[int]bool
	open := -1
	for i, c := range chars {
		if c.raw || c.r != '|' {
			continue
		}
		if open < 0 {
			open = i
			continue
		}
		if opens == nil {
			opens = make(map[int]bool)
		}
		opens[open] = true
		opens[i] = false
		open = -1
	}
	if opens == nil {
		return chars
	}
	out := make([]char, 0, len(chars)+3*len(opens)/2)
	for i, c := range chars {
		isOpen, paired := opens[i]
		switch {
		case !paired:
			out = append(out, c)
		case isOpen:
			for _, r := range "abs(" {
				out = append(out, char{r: r, col: c.col})
			}
		default:
			out = append(out, char{r: ')', col: c.col})
		}
	}
	return out
}

func isLetter(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return (r >= '0' && r <= '9') || r == '.' }

// juxtaposes reports whether the character at i starts a factor that
// multiplies whatever precedes it without an explicit operator.
func juxtaposes(chars []char, i int) bool {
	return i < len(chars) && !chars[i].raw && (isLetter(chars[i].r) || chars[i].r == '(')
}

// Tokenize normalizes formula and splits it into tokens. Errors returned are of type *[ParseError].
func Tokenize(formula string) ([]Token, error) {
	chars := normalizeFormula(formula)
	if len(chars) == 0 {
		return nil, parseErrorf(0, "cannot have an empty formula")
	}
	var tokens []Token
	for i := 0; i < len(chars); i++ {
		c := chars[i]
		switch {
		case c.r < 128 && isOperator(byte(c.r)):
			tokens = append(tokens, makeToken(c.col, TokOp, string(c.r)))

		case c.r == ',':
			tokens = append(tokens, makeToken(c.col, TokComma, ""))

		case c.r == '(':
			tokens = append(tokens, makeToken(c.col, TokParenOpen, ""))

		case c.r == ')':
			tokens = append(tokens, makeToken(c.col, TokParenClose, ""))
			if juxtaposes(chars, i+1) {
				tokens = append(tokens, implicitMul(c.col))
			}

		case c.r == '"':
			end := i + 1
			for end < len(chars) && chars[end].raw {
				end++
			}
			if end == len(chars) {
				return nil, parseErrorf(c.col, "unclosed quotation marks while scanning")
			}
			code := make([]rune, 0, end-i-1)
			for _, rc := range chars[i+1 : end] {
				code = append(code, rc.r)
			}
			tokens = append(tokens, makeToken(c.col, TokRawCode, string(code)))
			i = end

		case isDigit(c.r):
			end := i + 1
			for end < len(chars) && isDigit(chars[end].r) {
				end++
			}
			num := runesOf(chars[i:end])
			if num == "." {
				return nil, parseErrorf(c.col, ". is not a number")
			}
			tokens = append(tokens, makeToken(c.col, TokNumber, num))
			i = end - 1
			if juxtaposes(chars, end) {
				tokens = append(tokens, implicitMul(chars[i].col))
			}

		case isLetter(c.r):
			end := i + 1
			for end < len(chars) && isLetter(chars[end].r) {
				end++
			}
			word := runesOf(chars[i:end])
			if isEntirelyIZ(word) {
				for j := range word {
					col := chars[i+j].col
					if j > 0 {
						tokens = append(tokens, implicitMul(col))
					}
					kind := TokZ
					if word[j] == 'i' {
						kind = TokImaginary
					}
					tokens = append(tokens, makeToken(col, kind, ""))
				}
			} else if _, ok := functions[word]; ok {
				tokens = append(tokens, makeToken(c.col, TokFunction, word))
			} else {
				return nil, parseErrorf(c.col, "unknown function %q", word)
			}
			i = end - 1

		default:
			return nil, parseErrorf(c.col, "unexpected character %q", c.r)
		}
	}
	return tokens, nil
}

func runesOf(chars []char) string {
	rs := make([]rune, len(chars))
	for i, c := range chars {
		rs[i] = c.r
	}
	return string(rs)
}

func isEntirelyIZ(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] != 'i' && word[i] != 'z' {
			return false
		}
	}
	return true
}
