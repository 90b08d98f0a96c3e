package symbolic

import (
	"errors"
	"fmt"
)

// Diff returns the simplified derivative of expr with respect to name.
func Diff(expr Expr, name string) Expr {
	return expr.Diff(name).Simplify()
}

// Substitute replaces the named symbol with value and simplifies.
func Substitute(expr Expr, name string, value Expr) Expr {
	return expr.Sub(name, value).Simplify()
}

// Expand distributes products over sums and unrolls small integer powers.
func Expand(e Expr) Expr { return expandExpr(e.Simplify()).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Product:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			sum, ok := f.(*Sum)
			if !ok {
				continue
			}
			rest := make([]Expr, 0, len(expanded)-1)
			for j, ef := range expanded {
				if j != i {
					rest = append(rest, ef)
				}
			}
			terms := make([]Expr, len(sum.terms))
			for k, t := range sum.terms {
				terms[k] = expandExpr(NewProduct(append([]Expr{t}, rest...)...))
			}
			return expandExpr(NewSum(terms...))
		}
		return NewProduct(expanded...)
	case *Sum:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = expandExpr(t)
		}
		return NewSum(terms...)
	case *Power:
		if n, ok := v.exp.(*Number); ok && n.IsInteger() {
			if exp := n.val.Num().Int64(); exp >= 0 && exp <= 10 {
				result := Expr(Int(1))
				base := expandExpr(v.base)
				for i := int64(0); i < exp; i++ {
					result = expandExpr(NewProduct(result, base))
				}
				return result
			}
		}
		return &Power{base: expandExpr(v.base), exp: expandExpr(v.exp)}
	}
	return e
}

// ErrUnsupportedIntegral is returned when the rule set has no antiderivative
// for the given form.
var ErrUnsupportedIntegral = errors.New("no integration rule matches this expression")

// Integrate returns the indefinite integral of expr with respect to name
// using a table of rules: constants, power rule, linearity, a^x, and the
// elementary functions with arguments of the form c*x.
func Integrate(expr Expr, name string) (Expr, error) {
	expr = expr.Simplify()
	switch v := expr.(type) {
	case *Number:
		return NewProduct(v, Var(name)), nil
	case *Constant:
		return NewProduct(v, Var(name)), nil
	case *Symbol:
		if v.name == name {
			return NewProduct(Frac(1, 2), NewPower(Var(name), Int(2))), nil
		}
		return NewProduct(v, Var(name)), nil
	case *Power:
		if sym, ok := v.base.(*Symbol); ok && sym.name == name {
			if n, ok2 := v.exp.(*Number); ok2 {
				if n.isNegOne() {
					return Ln(NewCall("abs", Var(name))), nil
				}
				newExp := numAdd(n, Int(1))
				return NewProduct(numRecip(newExp), NewPower(Var(name), newExp)), nil
			}
		}
		if sym, ok := v.exp.(*Symbol); ok && sym.name == name {
			switch v.base.(type) {
			case *Number, *Constant:
				// ln(e) simplifies to 1, so e^x integrates to e^x.
				return Div(NewPower(v.base, Var(name)), Ln(v.base)), nil
			}
		}
		return nil, ErrUnsupportedIntegral
	case *Product:
		coeff := Int(1)
		consts := []Expr{}
		rest := []Expr{}
		for _, f := range v.factors {
			switch n := f.(type) {
			case *Number:
				coeff = numMul(coeff, n)
			case *Constant:
				consts = append(consts, n)
			default:
				rest = append(rest, f)
			}
		}
		var inner Expr
		switch len(rest) {
		case 0:
			inner = Int(1)
		case 1:
			inner = rest[0]
		default:
			// Products of two or more non-constant factors need techniques
			// (by parts, substitution) outside the rule table.
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedIntegral, v.String())
		}
		antiderivative, err := Integrate(inner, name)
		if err != nil {
			return nil, err
		}
		return NewProduct(append(append([]Expr{coeff}, consts...), antiderivative)...), nil
	case *Sum:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			intT, err := Integrate(t, name)
			if err != nil {
				return nil, err
			}
			terms[i] = intT
		}
		return NewSum(terms...), nil
	case *Call:
		return integrateCall(v, name)
	}
	return nil, ErrUnsupportedIntegral
}

func integrateCall(c *Call, name string) (Expr, error) {
	// linearArg matches arguments of the form x or c*x and returns 1/c.
	linearArg := func() (Expr, bool) {
		if sym, ok := c.arg.(*Symbol); ok && sym.name == name {
			return Int(1), true
		}
		if m, ok := c.arg.(*Product); ok && len(m.factors) == 2 {
			if sym, ok2 := m.factors[1].(*Symbol); ok2 && sym.name == name {
				switch coeff := m.factors[0].(type) {
				case *Number:
					if !coeff.IsZero() {
						return numRecip(coeff), true
					}
				case *Constant:
					return NewPower(coeff, Int(-1)), true
				}
			}
		}
		return nil, false
	}

	switch c.fn {
	case "sin":
		if recip, ok := linearArg(); ok {
			return NewProduct(Int(-1), recip, Cos(c.arg)), nil
		}
	case "cos":
		if recip, ok := linearArg(); ok {
			return NewProduct(recip, Sin(c.arg)), nil
		}
	case "exp":
		if recip, ok := linearArg(); ok {
			return NewProduct(recip, Exp(c.arg)), nil
		}
	case "ln":
		if sym, ok := c.arg.(*Symbol); ok && sym.name == name {
			x := Var(name)
			return NewSum(NewProduct(x, Ln(x)), Neg(x)), nil
		}
	case "atan":
		if sym, ok := c.arg.(*Symbol); ok && sym.name == name {
			x := Var(name)
			return NewSum(
				NewProduct(x, NewCall("atan", x)),
				Neg(NewProduct(Frac(1, 2), Ln(NewSum(Int(1), NewPower(x, Int(2)))))),
			), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedIntegral, c.String())
}

// IsPolynomial reports whether expr is a polynomial in name: built only
// from numbers, symbols, sums, products and non-negative integer powers.
func IsPolynomial(expr Expr, name string) bool {
	poly := true
	Walk(expr.Simplify(), func(n Expr) {
		switch v := n.(type) {
		case *Call:
			if _, uses := FreeSymbols(v.arg)[name]; uses {
				poly = false
			}
		case *Power:
			if _, uses := FreeSymbols(v.base)[name]; !uses {
				return
			}
			e, ok := v.exp.(*Number)
			if !ok || !e.IsInteger() || e.IsNegative() {
				poly = false
			}
		}
	})
	return poly
}
