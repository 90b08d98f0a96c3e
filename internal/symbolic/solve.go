package symbolic

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// Degree returns the polynomial degree of expr in the named symbol, or 0
// when the symbol does not appear polynomially.
func Degree(expr Expr, name string) int {
	switch v := expr.Simplify().(type) {
	case *Number:
		return 0
	case *Symbol:
		if v.name == name {
			return 1
		}
		return 0
	case *Power:
		if sym, ok := v.base.(*Symbol); ok && sym.name == name {
			if n, ok2 := v.exp.(*Number); ok2 && n.IsInteger() {
				return int(n.val.Num().Int64())
			}
		}
		return 0
	case *Sum:
		max := 0
		for _, t := range v.terms {
			if d := Degree(t, name); d > max {
				max = d
			}
		}
		return max
	case *Product:
		total := 0
		for _, f := range v.factors {
			total += Degree(f, name)
		}
		return total
	}
	return 0
}

// PolyCoeffs extracts the coefficient expression for each degree of the
// named symbol. The input should be expanded first.
func PolyCoeffs(expr Expr, name string) map[int]Expr {
	out := map[int]Expr{}
	collectCoeffs(expr.Simplify(), name, out)
	return out
}

func collectCoeffs(e Expr, name string, out map[int]Expr) {
	switch v := e.(type) {
	case *Number:
		addCoeff(out, 0, v)
	case *Symbol:
		if v.name == name {
			addCoeff(out, 1, Int(1))
		} else {
			addCoeff(out, 0, v)
		}
	case *Power:
		if sym, ok := v.base.(*Symbol); ok && sym.name == name {
			if n, ok2 := v.exp.(*Number); ok2 && n.IsInteger() && !n.IsNegative() {
				addCoeff(out, int(n.val.Num().Int64()), Int(1))
				return
			}
		}
		addCoeff(out, 0, e)
	case *Product:
		deg := 0
		coeffFactors := []Expr{}
		for _, f := range v.factors {
			if d := Degree(f, name); d > 0 {
				deg += d
			} else {
				coeffFactors = append(coeffFactors, f)
			}
		}
		var coeff Expr
		switch len(coeffFactors) {
		case 0:
			coeff = Int(1)
		case 1:
			coeff = coeffFactors[0]
		default:
			coeff = NewProduct(coeffFactors...)
		}
		addCoeff(out, deg, coeff)
	case *Sum:
		for _, t := range v.terms {
			collectCoeffs(t, name, out)
		}
	default:
		addCoeff(out, 0, e)
	}
}

func addCoeff(out map[int]Expr, deg int, val Expr) {
	if existing, ok := out[deg]; ok {
		out[deg] = NewSum(existing, val)
	} else {
		out[deg] = val.Simplify()
	}
}

// Solve outcome sentinels: both are user-facing conditions, not internal
// failures.
var (
	// ErrIdentity means the equation holds for every value of the variable.
	ErrIdentity = errors.New("the equation is an identity: every value is a solution")
	// ErrNoSolution means the equation is inconsistent.
	ErrNoSolution = errors.New("the equation has no solution")
)

// SolveEquation solves lhs = rhs for the named symbol. It supports
// polynomial equations up to degree 2 with numeric coefficients; quadratic
// roots are exact rationals when the discriminant is a perfect square and
// floats otherwise.
func SolveEquation(lhs, rhs Expr, name string) ([]Expr, error) {
	residual := Expand(Difference(lhs, rhs))

	if _, uses := FreeSymbols(residual)[name]; !uses {
		if n, ok := residual.Eval(); ok && n.IsZero() {
			return nil, ErrIdentity
		}
		return nil, ErrNoSolution
	}
	if !IsPolynomial(residual, name) {
		return nil, fmt.Errorf("cannot solve: %q does not appear polynomially", name)
	}

	coeffs := PolyCoeffs(residual, name)
	deg := Degree(residual, name)

	numeric := func(d int) (*big.Rat, error) {
		c, ok := coeffs[d]
		if !ok {
			return new(big.Rat), nil
		}
		n, ok := c.Eval()
		if !ok {
			return nil, fmt.Errorf("cannot solve: coefficient of %s^%d is not numeric", name, d)
		}
		return n.Rat(), nil
	}

	switch deg {
	case 1:
		a, err := numeric(1)
		if err != nil {
			return nil, err
		}
		b, err := numeric(0)
		if err != nil {
			return nil, err
		}
		// a*x + b = 0  =>  x = -b/a
		root := new(big.Rat).Quo(new(big.Rat).Neg(b), a)
		return []Expr{fromRat(root)}, nil

	case 2:
		a, err := numeric(2)
		if err != nil {
			return nil, err
		}
		b, err := numeric(1)
		if err != nil {
			return nil, err
		}
		c, err := numeric(0)
		if err != nil {
			return nil, err
		}
		return solveQuadratic(a, b, c)
	}
	return nil, fmt.Errorf("cannot solve: polynomial equations of degree %d are not supported", deg)
}

func solveQuadratic(a, b, c *big.Rat) ([]Expr, error) {
	// disc = b^2 - 4ac, kept exact.
	disc := new(big.Rat).Mul(b, b)
	fourAC := new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c))
	disc.Sub(disc, fourAC)

	if disc.Sign() < 0 {
		af, _ := a.Float64()
		bf, _ := b.Float64()
		df, _ := disc.Float64()
		return nil, fmt.Errorf("the equation has no real solutions (complex roots %g ± %gi)",
			-bf/(2*af), math.Sqrt(-df)/(2*af))
	}

	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	if sq, ok := ratSqrt(disc); ok {
		r1 := new(big.Rat).Quo(new(big.Rat).Add(new(big.Rat).Neg(b), sq), twoA)
		r2 := new(big.Rat).Quo(new(big.Rat).Sub(new(big.Rat).Neg(b), sq), twoA)
		if r1.Cmp(r2) == 0 {
			return []Expr{fromRat(r1)}, nil
		}
		return []Expr{fromRat(r1), fromRat(r2)}, nil
	}

	af, _ := a.Float64()
	bf, _ := b.Float64()
	df, _ := disc.Float64()
	sq := math.Sqrt(df)
	return []Expr{Float((-bf + sq) / (2 * af)), Float((-bf - sq) / (2 * af))}, nil
}

// ratSqrt returns the exact rational square root of r when both numerator
// and denominator are perfect squares.
func ratSqrt(r *big.Rat) (*big.Rat, bool) {
	if r.Sign() < 0 {
		return nil, false
	}
	num := new(big.Int).Sqrt(r.Num())
	if new(big.Int).Mul(num, num).Cmp(r.Num()) != 0 {
		return nil, false
	}
	den := new(big.Int).Sqrt(r.Denom())
	if new(big.Int).Mul(den, den).Cmp(r.Denom()) != 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(num, den), true
}
