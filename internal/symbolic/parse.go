package symbolic

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// ParseError describes a failure to read an expression, with the rune
// offset where reading stopped.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid expression at position %d: %s", e.Pos+1, e.Msg)
}

// Parse reads a textual math expression into an expression tree.
//
// Grammar: `+ - * / ^` with the usual precedence, `**` as a synonym for
// `^`, unary minus, parentheses, decimal and integer literals (kept exact),
// function calls (sin, cos, tan, asin, acos, atan, sinh, cosh, tanh, exp,
// ln, log, sqrt, abs) and single- or multi-letter symbol names.
func Parse(input string) (Expr, error) {
	p := &parser{src: []rune(input)}
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, &ParseError{Pos: p.pos, Msg: "empty expression"}
	}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, &ParseError{Pos: p.pos, Msg: fmt.Sprintf("unexpected %q", string(p.src[p.pos]))}
	}
	// The tree is returned unsimplified so callers can inspect the
	// operations as written before canonicalizing.
	return e, nil
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) peek() rune {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// accept consumes ch if it is the next non-space rune.
func (p *parser) accept(ch rune) bool {
	p.skipSpace()
	if p.peek() == ch {
		p.pos++
		return true
	}
	return false
}

// sum := term (('+'|'-') term)*
func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := []Expr{left}
	for {
		if p.accept('+') {
			t, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		} else if p.accept('-') {
			t, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			terms = append(terms, Neg(t))
		} else {
			break
		}
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return &Sum{terms: terms}, nil
}

// term := unary (('*'|'/') unary)*
func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	factors := []Expr{left}
	for {
		p.skipSpace()
		// `**` is exponentiation, not multiplication.
		if p.peek() == '*' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '*' {
			break
		}
		if p.accept('*') {
			f, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			factors = append(factors, f)
		} else if p.accept('/') {
			f, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			factors = append(factors, &Power{base: f, exp: Int(-1)})
		} else {
			break
		}
	}
	if len(factors) == 1 {
		return factors[0], nil
	}
	return &Product{factors: factors}, nil
}

// unary := '-' unary | power
func (p *parser) parseUnary() (Expr, error) {
	if p.accept('-') {
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg(e), nil
	}
	p.accept('+')
	return p.parsePower()
}

// power := atom (('^'|'**') unary)?   (right-associative)
func (p *parser) parsePower() (Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() == '*' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '*' {
		p.pos += 2
	} else if !p.accept('^') {
		return base, nil
	}
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &Power{base: base, exp: exp}, nil
}

// atom := number | name | name '(' sum ')' | '(' sum ')'
func (p *parser) parseAtom() (Expr, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, &ParseError{Pos: p.pos, Msg: "unexpected end of expression"}
	}
	ch := p.peek()

	switch {
	case ch == '(':
		p.pos++
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if !p.accept(')') {
			return nil, &ParseError{Pos: p.pos, Msg: "missing closing parenthesis"}
		}
		return e, nil

	case unicode.IsDigit(ch) || ch == '.':
		return p.parseNumber()

	case unicode.IsLetter(ch) || ch == '_':
		return p.parseNameOrCall()
	}
	return nil, &ParseError{Pos: p.pos, Msg: fmt.Sprintf("unexpected %q", string(ch))}
}

func (p *parser) parseNumber() (Expr, error) {
	start := p.pos
	sawDot := false
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		if ch == '.' {
			if sawDot {
				break
			}
			sawDot = true
			p.pos++
			continue
		}
		if !unicode.IsDigit(ch) {
			break
		}
		p.pos++
	}
	lit := string(p.src[start:p.pos])
	r := new(big.Rat)
	if _, ok := r.SetString(lit); !ok {
		return nil, &ParseError{Pos: start, Msg: fmt.Sprintf("malformed number %q", lit)}
	}
	return fromRat(r), nil
}

func (p *parser) parseNameOrCall() (Expr, error) {
	start := p.pos
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '_' {
			break
		}
		p.pos++
	}
	name := string(p.src[start:p.pos])

	if p.accept('(') {
		if !KnownFunction(strings.ToLower(name)) {
			return nil, &ParseError{Pos: start, Msg: fmt.Sprintf("unknown function %q", name)}
		}
		arg, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if !p.accept(')') {
			return nil, &ParseError{Pos: p.pos, Msg: "missing closing parenthesis"}
		}
		return NewCall(strings.ToLower(name), arg), nil
	}

	if name == "pi" {
		return Pi(), nil
	}
	if name == "e" {
		return E(), nil
	}
	return Var(name), nil
}
