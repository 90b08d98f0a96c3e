package symbolic

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func solveStrings(t *testing.T, lhs, rhs string) ([]Expr, error) {
	t.Helper()
	return SolveEquation(mustParse(t, lhs), mustParse(t, rhs), "x")
}

func TestSolveLinear(t *testing.T) {
	roots, err := solveStrings(t, "2*x + 5", "15")
	if err != nil {
		t.Fatalf("solving: %v", err)
	}
	if len(roots) != 1 || roots[0].String() != "5" {
		t.Fatalf("expected [5], got %v", roots)
	}
}

func TestSolveLinearFractionalRoot(t *testing.T) {
	roots, err := solveStrings(t, "3*x", "2")
	if err != nil {
		t.Fatalf("solving: %v", err)
	}
	if len(roots) != 1 || roots[0].String() != "2/3" {
		t.Fatalf("expected [2/3], got %v", roots)
	}
}

func TestSolveQuadraticExactRoots(t *testing.T) {
	roots, err := solveStrings(t, "x**2 - 4", "0")
	if err != nil {
		t.Fatalf("solving: %v", err)
	}
	if len(roots) != 2 || roots[0].String() != "2" || roots[1].String() != "-2" {
		t.Fatalf("expected [2 -2], got %v", roots)
	}
}

func TestSolveQuadraticDoubleRoot(t *testing.T) {
	roots, err := solveStrings(t, "x^2 - 2*x + 1", "0")
	if err != nil {
		t.Fatalf("solving: %v", err)
	}
	if len(roots) != 1 || roots[0].String() != "1" {
		t.Fatalf("expected the single root 1, got %v", roots)
	}
}

func TestSolveQuadraticIrrationalRoots(t *testing.T) {
	roots, err := solveStrings(t, "x^2 - 2", "0")
	if err != nil {
		t.Fatalf("solving: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("expected two roots, got %v", roots)
	}
	want := []float64{math.Sqrt2, -math.Sqrt2}
	for i, r := range roots {
		n, ok := r.Eval()
		if !ok {
			t.Fatalf("root %d is not numeric: %v", i, r)
		}
		if diff := math.Abs(n.Float64() - want[i]); diff > 1e-9 {
			t.Fatalf("root %d: expected %g, got %g", i, want[i], n.Float64())
		}
	}
}

func TestSolveComplexRootsRejected(t *testing.T) {
	_, err := solveStrings(t, "x^2 + 1", "0")
	if err == nil || !strings.Contains(err.Error(), "no real solutions") {
		t.Fatalf("expected a complex-roots error, got %v", err)
	}
}

func TestSolveIdentity(t *testing.T) {
	_, err := solveStrings(t, "x + 1", "x + 1")
	if !errors.Is(err, ErrIdentity) {
		t.Fatalf("expected ErrIdentity, got %v", err)
	}
}

func TestSolveInconsistent(t *testing.T) {
	_, err := solveStrings(t, "x + 1", "x")
	if !errors.Is(err, ErrNoSolution) {
		t.Fatalf("expected ErrNoSolution, got %v", err)
	}
}

func TestSolveUnsupportedDegree(t *testing.T) {
	_, err := solveStrings(t, "x^3", "1")
	if err == nil || !strings.Contains(err.Error(), "degree 3") {
		t.Fatalf("expected a degree error, got %v", err)
	}
}

func TestSolveNonPolynomial(t *testing.T) {
	_, err := solveStrings(t, "sin(x)", "0")
	if err == nil || !strings.Contains(err.Error(), "polynomially") {
		t.Fatalf("expected a non-polynomial error, got %v", err)
	}
}

func TestPolyCoeffs(t *testing.T) {
	coeffs := PolyCoeffs(Expand(mustParse(t, "2*x^2 - 3*x + 7")), "x")
	for deg, want := range map[int]string{2: "2", 1: "-3", 0: "7"} {
		c, ok := coeffs[deg]
		if !ok {
			t.Fatalf("missing coefficient for degree %d", deg)
		}
		if got := c.Simplify().String(); got != want {
			t.Fatalf("degree %d: expected %q, got %q", deg, want, got)
		}
	}
}

func TestDegree(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{input: "7", want: 0},
		{input: "x", want: 1},
		{input: "x^2 + x", want: 2},
		{input: "y*x^3", want: 3},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := Degree(mustParse(t, tc.input), "x"); got != tc.want {
				t.Fatalf("expected degree %d, got %d", tc.want, got)
			}
		})
	}
}
