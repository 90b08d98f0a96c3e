// Package symbolic is a small deterministic symbolic math kernel: an
// expression tree over exact rationals (math/big.Rat) with rule-based
// simplification, differentiation, integration and polynomial equation
// solving. It exists to back the calculation engine; it is not a general
// purpose CAS.
package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
)

// Expr is a node in the expression tree. All implementations are immutable:
// every operation returns a new tree.
type Expr interface {
	// Simplify returns a canonical, flattened form of the expression.
	Simplify() Expr
	// String renders the expression in plain text ("2*x + 1").
	String() string
	// LaTeX renders the expression in LaTeX.
	LaTeX() string
	// Sub substitutes value for every occurrence of the named symbol.
	Sub(name string, value Expr) Expr
	// Diff returns the derivative with respect to the named symbol.
	Diff(name string) Expr
	// Eval folds the expression to a single number when possible.
	Eval() (*Number, bool)
}

// ---------------------------------------------------------------------------
// Number — exact rational constant
// ---------------------------------------------------------------------------

type Number struct{ val *big.Rat }

func Int(n int64) *Number { return &Number{val: new(big.Rat).SetInt64(n)} }

func Frac(p, q int64) *Number {
	return &Number{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

func Float(f float64) *Number { return &Number{val: new(big.Rat).SetFloat64(f)} }

func fromRat(r *big.Rat) *Number { return &Number{val: new(big.Rat).Set(r)} }

func (n *Number) Simplify() Expr          { return n }
func (n *Number) Sub(string, Expr) Expr   { return n }
func (n *Number) Diff(string) Expr        { return Int(0) }
func (n *Number) Eval() (*Number, bool)   { return n, true }
func (n *Number) Rat() *big.Rat           { return new(big.Rat).Set(n.val) }
func (n *Number) Float64() float64        { f, _ := n.val.Float64(); return f }
func (n *Number) IsZero() bool            { return n.val.Sign() == 0 }
func (n *Number) IsNegative() bool        { return n.val.Sign() < 0 }
func (n *Number) IsInteger() bool         { return n.val.IsInt() }
func (n *Number) isOne() bool             { return n.val.Cmp(ratOne) == 0 }
func (n *Number) isNegOne() bool          { return n.val.Cmp(ratNegOne) == 0 }
func (n *Number) equalNum(o *Number) bool { return n.val.Cmp(o.val) == 0 }

var (
	ratOne    = big.NewRat(1, 1)
	ratNegOne = big.NewRat(-1, 1)
)

func (n *Number) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Number) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func numAdd(a, b *Number) *Number { return &Number{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Number) *Number { return &Number{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Number) *Number    { return &Number{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Number) *Number  { return &Number{val: new(big.Rat).Inv(a.val)} }
func numDiv(a, b *Number) *Number { return numMul(a, numRecip(b)) }

// ---------------------------------------------------------------------------
// Symbol — free variable
// ---------------------------------------------------------------------------

type Symbol struct{ name string }

func Var(name string) *Symbol { return &Symbol{name: name} }

func (s *Symbol) Simplify() Expr        { return s }
func (s *Symbol) String() string        { return s.name }
func (s *Symbol) LaTeX() string         { return s.name }
func (s *Symbol) Eval() (*Number, bool) { return nil, false }
func (s *Symbol) Name() string          { return s.name }

func (s *Symbol) Sub(name string, value Expr) Expr {
	if s.name == name {
		return value
	}
	return s
}

func (s *Symbol) Diff(name string) Expr {
	if s.name == name {
		return Int(1)
	}
	return Int(0)
}

// ---------------------------------------------------------------------------
// Constant — named mathematical constant (pi, e)
// ---------------------------------------------------------------------------

// Constant is a named constant that stays symbolic in rendering but folds
// to its float value under Eval. It is not a free symbol, so expressions
// built only from constants still classify as numeric.
type Constant struct {
	name  string
	latex string
	val   float64
}

func Pi() *Constant { return &Constant{name: "pi", latex: "\\pi", val: math.Pi} }
func E() *Constant  { return &Constant{name: "e", latex: "e", val: math.E} }

func (c *Constant) Simplify() Expr        { return c }
func (c *Constant) String() string        { return c.name }
func (c *Constant) LaTeX() string         { return c.latex }
func (c *Constant) Sub(string, Expr) Expr { return c }
func (c *Constant) Diff(string) Expr      { return Int(0) }
func (c *Constant) Eval() (*Number, bool) { return Float(c.val), true }
func (c *Constant) Name() string          { return c.name }

// ---------------------------------------------------------------------------
// Sum — n-ary addition
// ---------------------------------------------------------------------------

type Sum struct{ terms []Expr }

// NewSum builds a simplified sum of the given terms.
func NewSum(terms ...Expr) Expr { return (&Sum{terms: terms}).Simplify() }

// Neg returns -e.
func Neg(e Expr) Expr { return NewProduct(Int(-1), e) }

// Difference returns a - b.
func Difference(a, b Expr) Expr { return NewSum(a, Neg(b)) }

func (a *Sum) Terms() []Expr { return a.terms }

// Simplify flattens nested sums, folds the numeric part, and combines like
// terms by their canonical string key (2*x + 3*x -> 5*x).
func (a *Sum) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Sum); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	constant := Int(0)
	coeffs := map[string]*Number{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if n, ok := t.(*Number); ok {
			constant = numAdd(constant, n)
			continue
		}
		coeff, rest := coefficientOf(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = Int(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], coeff)
	}

	// Terms keep first-seen order so expanded polynomials read the way
	// they were produced (x^2 before 2*x); the constant goes last.
	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		c := coeffs[key]
		if c.IsZero() {
			continue
		}
		if c.isOne() {
			result = append(result, rests[key])
		} else {
			result = append(result, NewProduct(c, rests[key]))
		}
	}
	if !constant.IsZero() {
		result = append(result, constant)
	}

	switch len(result) {
	case 0:
		return Int(0)
	case 1:
		return result[0]
	}
	return &Sum{terms: result}
}

// coefficientOf splits a term into its numeric coefficient and the rest.
func coefficientOf(e Expr) (*Number, Expr) {
	if m, ok := e.(*Product); ok && len(m.factors) >= 2 {
		if c, ok2 := m.factors[0].(*Number); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return c, rest[0]
			}
			return c, &Product{factors: rest}
		}
	}
	return Int(1), e
}

// splitNegative reports whether e renders with a leading minus and returns
// the positive counterpart for " - " joining.
func splitNegative(e Expr) (Expr, bool) {
	switch v := e.(type) {
	case *Number:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Product:
		if len(v.factors) >= 2 {
			if c, ok := v.factors[0].(*Number); ok && c.IsNegative() {
				pos := numNeg(c)
				rest := v.factors[1:]
				if pos.isOne() {
					if len(rest) == 1 {
						return rest[0], true
					}
					return &Product{factors: rest}, true
				}
				return &Product{factors: append([]Expr{pos}, rest...)}, true
			}
		}
	}
	return e, false
}

func (a *Sum) String() string { return a.render(Expr.String) }
func (a *Sum) LaTeX() string  { return a.render(Expr.LaTeX) }

func (a *Sum) render(f func(Expr) string) string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		pos, neg := splitNegative(t)
		switch {
		case i == 0 && neg:
			sb.WriteString("-")
		case i > 0 && neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(f(pos))
	}
	return sb.String()
}

func (a *Sum) Sub(name string, value Expr) Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Sub(name, value)
	}
	return NewSum(out...)
}

func (a *Sum) Diff(name string) Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Diff(name)
	}
	return NewSum(out...)
}

func (a *Sum) Eval() (*Number, bool) {
	acc := Int(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

// ---------------------------------------------------------------------------
// Product — n-ary multiplication
// ---------------------------------------------------------------------------

type Product struct{ factors []Expr }

// NewProduct builds a simplified product of the given factors.
func NewProduct(factors ...Expr) Expr { return (&Product{factors: factors}).Simplify() }

// Div returns a/b as a * b^-1.
func Div(a, b Expr) Expr { return NewProduct(a, NewPower(b, Int(-1))) }

func (m *Product) Factors() []Expr { return m.factors }

// Simplify flattens nested products, folds the numeric coefficient, and
// merges factors with equal bases by adding exponents (x*x -> x^2).
func (m *Product) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Product); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	coeff := Int(1)
	type grouped struct {
		base Expr
		exps []Expr
	}
	groups := map[string]*grouped{}
	order := []string{}
	for _, f := range flat {
		if n, ok := f.(*Number); ok {
			coeff = numMul(coeff, n)
			continue
		}
		base, exp := Expr(f), Expr(Int(1))
		if p, ok := f.(*Power); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		g, seen := groups[key]
		if !seen {
			g = &grouped{base: base}
			groups[key] = g
			order = append(order, key)
		}
		g.exps = append(g.exps, exp)
	}
	if coeff.IsZero() {
		return Int(0)
	}

	sort.Strings(order)
	rest := make([]Expr, 0, len(order))
	for _, key := range order {
		g := groups[key]
		var merged Expr
		if len(g.exps) == 1 {
			merged = powerOrBase(g.base, g.exps[0])
		} else {
			merged = powerOrBase(g.base, NewSum(g.exps...))
		}
		if n, ok := merged.(*Number); ok {
			coeff = numMul(coeff, n)
			continue
		}
		rest = append(rest, merged)
	}

	if len(rest) == 0 {
		return coeff
	}
	if coeff.isOne() {
		if len(rest) == 1 {
			return rest[0]
		}
		return &Product{factors: rest}
	}
	return &Product{factors: append([]Expr{coeff}, rest...)}
}

func powerOrBase(base, exp Expr) Expr {
	if n, ok := exp.(*Number); ok {
		if n.IsZero() {
			return Int(1)
		}
		if n.isOne() {
			return base
		}
	}
	return NewPower(base, exp)
}

func (m *Product) String() string { return m.render(Expr.String, "*") }
func (m *Product) LaTeX() string  { return m.render(Expr.LaTeX, " ") }

func (m *Product) render(f func(Expr) string, sep string) string {
	if len(m.factors) == 0 {
		return "1"
	}
	factors := m.factors
	prefix := ""
	if c, ok := factors[0].(*Number); ok && c.isNegOne() && len(factors) > 1 {
		prefix = "-"
		factors = factors[1:]
	}
	parts := make([]string, len(factors))
	for i, fac := range factors {
		if _, isSum := fac.(*Sum); isSum {
			parts[i] = "(" + f(fac) + ")"
		} else {
			parts[i] = f(fac)
		}
	}
	return prefix + strings.Join(parts, sep)
}

func (m *Product) Sub(name string, value Expr) Expr {
	out := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		out[i] = f.Sub(name, value)
	}
	return NewProduct(out...)
}

// Diff applies the product rule across all factors.
func (m *Product) Diff(name string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(name)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		if len(others) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = NewProduct(append([]Expr{dfi}, others...)...)
		}
	}
	return NewSum(terms...)
}

func (m *Product) Eval() (*Number, bool) {
	acc := Int(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

// ---------------------------------------------------------------------------
// Power — base^exponent
// ---------------------------------------------------------------------------

type Power struct{ base, exp Expr }

// NewPower builds a simplified power.
func NewPower(base, exp Expr) Expr { return (&Power{base: base, exp: exp}).Simplify() }

func (p *Power) Base() Expr     { return p.base }
func (p *Power) Exponent() Expr { return p.exp }

func (p *Power) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Number); ok {
		if en.IsZero() {
			return Int(1)
		}
		if en.isOne() {
			return base
		}
	}

	if bn, ok := base.(*Number); ok {
		// 0^0 and 0^negative stay unevaluated here; Eval later folds 0^0
		// to 1 (math.Pow convention) and rejects 0^negative as infinite.
		if bn.IsZero() {
			if en, ok2 := exp.(*Number); ok2 && (en.IsZero() || en.IsNegative()) {
				return &Power{base: base, exp: exp}
			}
			return Int(0)
		}
		if bn.isOne() {
			return Int(1)
		}
		if en, ok2 := exp.(*Number); ok2 && en.IsInteger() {
			if e := en.val.Num().Int64(); e >= -20 && e <= 20 {
				acc := Int(1)
				steps := e
				if steps < 0 {
					steps = -steps
				}
				for i := int64(0); i < steps; i++ {
					acc = numMul(acc, bn)
				}
				if e < 0 {
					return numRecip(acc)
				}
				return acc
			}
		}
	}

	if inner, ok := base.(*Power); ok {
		return NewPower(inner.base, NewProduct(inner.exp, exp))
	}
	return &Power{base: base, exp: exp}
}

func (p *Power) String() string { return p.render(Expr.String, "^%s") }
func (p *Power) LaTeX() string  { return p.render(Expr.LaTeX, "^{%s}") }

func (p *Power) render(f func(Expr) string, expFmt string) string {
	baseStr := f(p.base)
	switch p.base.(type) {
	case *Sum, *Product:
		baseStr = "(" + baseStr + ")"
	}
	expStr := f(p.exp)
	switch v := p.exp.(type) {
	case *Sum, *Product:
		expStr = "(" + expStr + ")"
	case *Number:
		if v.IsNegative() || !v.IsInteger() {
			expStr = "(" + expStr + ")"
		}
	}
	return baseStr + fmt.Sprintf(expFmt, expStr)
}

func (p *Power) Sub(name string, value Expr) Expr {
	return NewPower(p.base.Sub(name, value), p.exp.Sub(name, value))
}

// Diff handles x^n (power rule), a^x (exponential rule) and the general
// case via logarithmic differentiation.
func (p *Power) Diff(name string) Expr {
	du := p.base.Diff(name)
	dv := p.exp.Diff(name)
	if _, ok := p.exp.(*Number); ok {
		return NewProduct(p.exp, NewPower(p.base, NewSum(p.exp, Int(-1))), du)
	}
	switch p.base.(type) {
	case *Number, *Constant:
		// ln(e) simplifies to 1, so d/dx e^x comes out as e^x.
		return NewProduct(NewPower(p.base, p.exp), Ln(p.base), dv)
	}
	logTerm := NewProduct(dv, Ln(p.base))
	quotTerm := NewProduct(p.exp, du, NewPower(p.base, Int(-1)))
	return NewProduct(NewPower(p.base, p.exp), NewSum(logTerm, quotTerm))
}

func (p *Power) Eval() (*Number, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	v := math.Pow(b.Float64(), e.Float64())
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return Float(v), true
}

// ---------------------------------------------------------------------------
// Call — named function application
// ---------------------------------------------------------------------------

type Call struct {
	fn  string
	arg Expr
}

// builtins maps function names to their float evaluators.
var builtins = map[string]func(float64) float64{
	"sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
	"asin": math.Asin, "acos": math.Acos, "atan": math.Atan,
	"sinh": math.Sinh, "cosh": math.Cosh, "tanh": math.Tanh,
	"exp": math.Exp, "ln": math.Log, "abs": math.Abs,
}

// KnownFunction reports whether name is a callable the kernel understands.
// sqrt is handled by the parser (rewritten as ^(1/2)) and log is an alias
// for ln.
func KnownFunction(name string) bool {
	if name == "sqrt" || name == "log" {
		return true
	}
	_, ok := builtins[name]
	return ok
}

// NewCall builds a simplified function application.
func NewCall(fn string, arg Expr) Expr {
	if fn == "log" {
		fn = "ln"
	}
	if fn == "sqrt" {
		return NewPower(arg, Frac(1, 2))
	}
	return (&Call{fn: fn, arg: arg}).Simplify()
}

func Sin(arg Expr) Expr { return NewCall("sin", arg) }
func Cos(arg Expr) Expr { return NewCall("cos", arg) }
func Exp(arg Expr) Expr { return NewCall("exp", arg) }
func Ln(arg Expr) Expr  { return NewCall("ln", arg) }

func (c *Call) FuncName() string { return c.fn }
func (c *Call) Arg() Expr        { return c.arg }

// Simplify applies exact identities only; inexact numeric folding is left
// to Eval so symbolic output stays readable (sin(1) remains sin(1)).
func (c *Call) Simplify() Expr {
	arg := c.arg.Simplify()
	if n, ok := arg.(*Number); ok {
		switch c.fn {
		case "sin", "tan", "asin", "atan", "sinh", "tanh":
			if n.IsZero() {
				return Int(0)
			}
		case "cos", "cosh":
			if n.IsZero() {
				return Int(1)
			}
		case "exp":
			if n.IsZero() {
				return Int(1)
			}
		case "ln":
			if n.isOne() {
				return Int(0)
			}
		case "abs":
			if n.IsNegative() {
				return numNeg(n)
			}
			return n
		}
	}
	if k, ok := arg.(*Constant); ok && c.fn == "ln" && k.name == "e" {
		return Int(1)
	}
	if inner, ok := arg.(*Call); ok {
		if c.fn == "ln" && inner.fn == "exp" {
			return inner.arg
		}
		if c.fn == "exp" && inner.fn == "ln" {
			return inner.arg
		}
	}
	return &Call{fn: c.fn, arg: arg}
}

func (c *Call) String() string { return c.fn + "(" + c.arg.String() + ")" }

func (c *Call) LaTeX() string {
	switch c.fn {
	case "sin", "cos", "tan", "exp", "ln", "sinh", "cosh", "tanh":
		return "\\" + c.fn + "\\left(" + c.arg.LaTeX() + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + c.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + c.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + c.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + c.arg.LaTeX() + "\\right|"
	}
	return "\\operatorname{" + c.fn + "}\\left(" + c.arg.LaTeX() + "\\right)"
}

func (c *Call) Sub(name string, value Expr) Expr {
	return (&Call{fn: c.fn, arg: c.arg.Sub(name, value)}).Simplify()
}

// Diff applies the chain rule with the table of outer derivatives.
func (c *Call) Diff(name string) Expr {
	du := c.arg.Diff(name)
	var outer Expr
	switch c.fn {
	case "sin":
		outer = Cos(c.arg)
	case "cos":
		outer = Neg(Sin(c.arg))
	case "tan":
		outer = NewSum(Int(1), NewPower(NewCall("tan", c.arg), Int(2)))
	case "exp":
		outer = Exp(c.arg)
	case "ln":
		outer = NewPower(c.arg, Int(-1))
	case "asin":
		outer = NewPower(NewSum(Int(1), Neg(NewPower(c.arg, Int(2)))), Frac(-1, 2))
	case "acos":
		outer = Neg(NewPower(NewSum(Int(1), Neg(NewPower(c.arg, Int(2)))), Frac(-1, 2)))
	case "atan":
		outer = NewPower(NewSum(Int(1), NewPower(c.arg, Int(2))), Int(-1))
	case "sinh":
		outer = NewCall("cosh", c.arg)
	case "cosh":
		outer = NewCall("sinh", c.arg)
	case "tanh":
		outer = NewSum(Int(1), Neg(NewPower(NewCall("tanh", c.arg), Int(2))))
	case "abs":
		outer = Div(c.arg, NewCall("abs", c.arg))
	default:
		return NewProduct(&Call{fn: "D[" + c.fn + "]", arg: c.arg}, du)
	}
	return NewProduct(outer, du)
}

func (c *Call) Eval() (*Number, bool) {
	n, ok := c.arg.Eval()
	if !ok {
		return nil, false
	}
	f, ok := builtins[c.fn]
	if !ok {
		return nil, false
	}
	v := f(n.Float64())
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return Float(v), true
}

// ---------------------------------------------------------------------------
// Traversal
// ---------------------------------------------------------------------------

// Walk visits e and every node below it in preorder.
func Walk(e Expr, visit func(Expr)) {
	visit(e)
	switch v := e.(type) {
	case *Sum:
		for _, t := range v.terms {
			Walk(t, visit)
		}
	case *Product:
		for _, f := range v.factors {
			Walk(f, visit)
		}
	case *Power:
		Walk(v.base, visit)
		Walk(v.exp, visit)
	case *Call:
		Walk(v.arg, visit)
	}
}

// FreeSymbols returns the set of symbol names appearing in e.
func FreeSymbols(e Expr) map[string]struct{} {
	out := map[string]struct{}{}
	Walk(e, func(n Expr) {
		if s, ok := n.(*Symbol); ok {
			out[s.name] = struct{}{}
		}
	})
	return out
}

// SortedFreeSymbols returns the free symbol names in lexical order.
func SortedFreeSymbols(e Expr) []string {
	set := FreeSymbols(e)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
