package gjulia

import (
	"strings"
)

// parser builds a syntax tree from formula tokens by precedence climbing.
type parser struct {
	tokens []Token
	idx    int
	// endCol is the column reported when tokens run out.
	endCol int
}

func newParser(tokens []Token) *parser {
	endCol := 0
	if len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		endCol = last.Col + max(1, len(last.Value))
	}
	return &parser{tokens: tokens, endCol: endCol}
}

// parse parses a whole formula. Errors returned are of type *[ParseError].
func parse(tokens []Token) (Node, error) {
	p := newParser(tokens)
	root, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.current(); ok {
		return nil, parseErrorf(tok.Col, "unexpected trailing token %s", tok)
	}
	return root, nil
}

func (p *parser) current() (Token, bool) {
	if p.idx >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.idx], true
}

func (p *parser) peek() (Token, bool) {
	if p.idx+1 >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.idx+1], true
}

func (p *parser) pop() { p.idx++ }

// expect returns the current token if its kind is one of kinds.
func (p *parser) expect(kinds ...TokenKind) (Token, error) {
	tok, ok := p.current()
	if !ok {
		return tok, parseErrorf(p.endCol, "unexpected end of formula, expected %s", kindList(kinds))
	}
	for _, k := range kinds {
		if tok.Kind == k {
			return tok, nil
		}
	}
	return tok, parseErrorf(tok.Col, "unexpected token %s, expected %s", tok.Kind, kindList(kinds))
}

func kindList(kinds []TokenKind) string {
	if len(kinds) == 1 {
		return kinds[0].String()
	}
	var sb strings.Builder
	sb.WriteString("one of [")
	for i, k := range kinds {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(k.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (p *parser) parseExpression() (Node, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parseBinopRHS(1, lhs)
}

func (p *parser) parsePrimary() (Node, error) {
	tok, err := p.expect(TokZ, TokImaginary, TokOp, TokFunction, TokNumber, TokParenOpen, TokRawCode)
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case TokParenOpen:
		p.pop()
		node, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(TokParenClose); err != nil {
			return nil, err
		}
		p.pop()
		return node, nil
	case TokOp:
		return p.parseUnary()
	case TokFunction:
		return p.parseFunction()
	case TokZ:
		p.pop()
		return newZ(tok.Col), nil
	case TokImaginary:
		// A bare i is shorthand for 1i.
		p.pop()
		return newImaginary(tok.Col, "1"), nil
	case TokRawCode:
		p.pop()
		return newRawCode(tok.Col, tok.Value), nil
	}
	return p.parseNumber()
}

func (p *parser) parseUnary() (Node, error) {
	tok, _ := p.current()
	switch tok.Value {
	case "+":
		p.pop()
		return p.parsePrimary()
	case "-":
		// Rewritten as 0-... with the minus left as the current operator.
		return p.parseBinopRHS(1, newReal(tok.Col, "0"))
	}
	return nil, parseErrorf(tok.Col, "expected unary operation, got %q", tok.Value)
}

// parseBinopRHS consumes operators of precedence at least minPrec and their
// right-hand sides, folding them left associatively onto lhs.
func (p *parser) parseBinopRHS(minPrec int, lhs Node) (Node, error) {
	for {
		tok, ok := p.current()
		if !ok {
			return lhs, nil
		}
		if _, err := p.expect(TokOp, TokComma, TokParenClose); err != nil {
			return nil, err
		}
		prec := precedence(tok)
		if prec < minPrec {
			return lhs, nil
		}
		p.pop()
		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		if next, ok := p.current(); ok && prec < precedence(next) {
			rhs, err = p.parseBinopRHS(prec+1, rhs)
			if err != nil {
				return nil, err
			}
		}
		lhs = newBinaryOp(tok.Col, lhs, rhs, tok.Value)
	}
}

func (p *parser) parseFunction() (Node, error) {
	tok, _ := p.current()
	mf := functions[tok.Value]
	p.pop()
	if _, err := p.expect(TokParenOpen); err != nil {
		return nil, err
	}
	p.pop()
	args := make([]Node, 0, mf.Arity())
	for i := 0; i < mf.Arity(); i++ {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if i < mf.Arity()-1 {
			if _, err = p.expect(TokComma); err != nil {
				return nil, err
			}
			p.pop()
		}
	}
	if _, err := p.expect(TokParenClose); err != nil {
		return nil, err
	}
	p.pop()
	return newCall(tok.Col, tok.Value, args), nil
}

// parseNumber parses a number literal, fusing it with a directly following
// i into a pure imaginary literal and with a following z into a product.
// The lexer-synthesized multiplication between them is skipped.
func (p *parser) parseNumber() (Node, error) {
	tok, _ := p.current()
	p.pop()
	next, ok := p.current()
	if ok && next.Kind == TokOp && next.Implicit {
		after, ok := p.peek()
		if ok && (after.Kind == TokImaginary || after.Kind == TokZ) {
			p.pop()
			next = after
		}
	}
	switch next.Kind {
	case TokImaginary:
		p.pop()
		return newComplex(tok.Col, "0", tok.Value), nil
	case TokZ:
		p.pop()
		return newBinaryOp(tok.Col, newReal(tok.Col, tok.Value), newZ(next.Col), "*"), nil
	}
	return newReal(tok.Col, tok.Value), nil
}
