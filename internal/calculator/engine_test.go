package calculator

import (
	"strings"
	"testing"
)

func mustCalculate(t *testing.T, expression, mode string, variables map[string]any) *Result {
	t.Helper()
	result, err := NewEngine().Calculate(expression, mode, variables)
	if err != nil {
		t.Fatalf("Calculate(%q, %q): %v", expression, mode, err)
	}
	checkStepNumbering(t, result.Steps)
	return result
}

func checkStepNumbering(t *testing.T, steps []Step) {
	t.Helper()
	if len(steps) == 0 {
		t.Fatal("expected at least one step")
	}
	for i, s := range steps {
		if s.Step != i+1 {
			t.Fatalf("step %d is numbered %d", i+1, s.Step)
		}
		if s.Description == "" {
			t.Fatalf("step %d has no description", i+1)
		}
	}
}

func TestDetectMode(t *testing.T) {
	tests := []struct {
		expression string
		want       string
	}{
		{expression: "2 + 3 * 4", want: ModeArithmetic},
		{expression: "(10 - 5) / 2", want: ModeArithmetic},
		{expression: "2*(x + 3) - 4", want: ModeAlgebra},
		{expression: "sin(x)", want: ModeAlgebra},
		{expression: "2*x + 5 = 15", want: ModeSolve},
		{expression: "d/dx(x^2)", want: ModeDerivative},
		{expression: "derivative of x^2", want: ModeDerivative},
		{expression: "integrate x^2", want: ModeIntegral},
		{expression: "integral of sin(x)", want: ModeIntegral},
	}

	engine := NewEngine()
	for _, tc := range tests {
		t.Run(tc.expression, func(t *testing.T) {
			if got := engine.DetectMode(tc.expression); got != tc.want {
				t.Fatalf("expected mode %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCalculateArithmetic(t *testing.T) {
	result := mustCalculate(t, "2 + 3 * 4", ModeAuto, nil)

	if result.Mode != ModeArithmetic {
		t.Fatalf("expected arithmetic mode, got %q", result.Mode)
	}
	if result.Result != "14" {
		t.Fatalf("expected 14, got %q", result.Result)
	}
	if len(result.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(result.Steps))
	}
	if !strings.Contains(result.Steps[1].Detail, "addition/subtraction") ||
		!strings.Contains(result.Steps[1].Detail, "multiplication/division") {
		t.Fatalf("expected operations in step 2 detail, got %q", result.Steps[1].Detail)
	}
	if result.Steps[2].Expression != "14" {
		t.Fatalf("expected final step expression 14, got %q", result.Steps[2].Expression)
	}
}

func TestCalculateArithmeticDecimalResult(t *testing.T) {
	result := mustCalculate(t, "(10 - 5) / 2", ModeArithmetic, nil)
	if result.Result != "2.5" {
		t.Fatalf("expected 2.5, got %q", result.Result)
	}
}

func TestCalculateArithmeticDivisionByZero(t *testing.T) {
	_, err := NewEngine().Calculate("1/0", ModeAuto, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsCalcError(err) {
		t.Fatalf("expected a CalcError, got %T: %v", err, err)
	}
}

func TestCalculateArithmeticRejectsVariables(t *testing.T) {
	_, err := NewEngine().Calculate("x + 1", ModeArithmetic, nil)
	if err == nil || !IsCalcError(err) {
		t.Fatalf("expected a CalcError, got %v", err)
	}
	if !strings.Contains(err.Error(), "variables") {
		t.Fatalf("expected a variables hint, got %q", err.Error())
	}
}

func TestCalculateAlgebraExpands(t *testing.T) {
	result := mustCalculate(t, "2*(x + 3) - 4", ModeAuto, nil)

	if result.Mode != ModeAlgebra {
		t.Fatalf("expected algebra mode, got %q", result.Mode)
	}
	if result.Result != "2*x + 2" {
		t.Fatalf("expected 2*x + 2, got %q", result.Result)
	}
	if len(result.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(result.Steps))
	}
	if result.Steps[1].Description != "Expand the expression" {
		t.Fatalf("expected expand step, got %q", result.Steps[1].Description)
	}
}

func TestCalculateAlgebraSquare(t *testing.T) {
	result := mustCalculate(t, "(x + 2)**2", ModeAlgebra, nil)
	if result.Result != "x^2 + 4*x + 4" {
		t.Fatalf("expected x^2 + 4*x + 4, got %q", result.Result)
	}
}

func TestCalculateAlgebraAlreadySimplified(t *testing.T) {
	result := mustCalculate(t, "x + 1", ModeAlgebra, nil)

	if result.Result != "x + 1" {
		t.Fatalf("expected x + 1, got %q", result.Result)
	}
	if len(result.Steps) != 2 || result.Steps[1].Description != "Expression already simplified" {
		t.Fatalf("expected the already-simplified fallback step, got %#v", result.Steps)
	}
}

func TestCalculateAlgebraKeepsConstantsSymbolic(t *testing.T) {
	result := mustCalculate(t, "2*pi*r", ModeAuto, nil)

	if result.Mode != ModeAlgebra {
		t.Fatalf("expected algebra mode, got %q", result.Mode)
	}
	if result.Result != "2*pi*r" {
		t.Fatalf("expected 2*pi*r, got %q", result.Result)
	}
}

func TestCalculateArithmeticEvaluatesConstants(t *testing.T) {
	result := mustCalculate(t, "2*pi", ModeAuto, nil)

	if result.Mode != ModeArithmetic {
		t.Fatalf("expected arithmetic mode, got %q", result.Mode)
	}
	if result.Result != "6.283185" {
		t.Fatalf("expected 6.283185, got %q", result.Result)
	}
}

func TestCalculateAlgebraSubstitutesVariables(t *testing.T) {
	result := mustCalculate(t, "x^2 + 1", ModeAlgebra, map[string]any{"x": 4.0})

	if result.Result != "17" {
		t.Fatalf("expected 17, got %q", result.Result)
	}
	if !strings.HasPrefix(result.Steps[1].Description, "Substitute x = 4") {
		t.Fatalf("expected a substitution step, got %q", result.Steps[1].Description)
	}
}

func TestCalculateSolveLinear(t *testing.T) {
	result := mustCalculate(t, "2*x + 5 = 15", ModeAuto, nil)

	if result.Mode != ModeSolve {
		t.Fatalf("expected solve mode, got %q", result.Mode)
	}
	if result.Result != "x = 5" {
		t.Fatalf("expected x = 5, got %q", result.Result)
	}
	if len(result.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(result.Steps))
	}
	if result.Steps[1].Expression != "2*x + 5 = 15" {
		t.Fatalf("expected restated equation, got %q", result.Steps[1].Expression)
	}
	if !strings.Contains(result.Steps[2].Description, "x") {
		t.Fatalf("expected the variable in step 3, got %q", result.Steps[2].Description)
	}
}

func TestCalculateSolveQuadratic(t *testing.T) {
	result := mustCalculate(t, "x**2 - 4 = 0", ModeAuto, nil)
	if result.Result != "x = {2, -2}" {
		t.Fatalf("expected x = {2, -2}, got %q", result.Result)
	}
}

func TestCalculateSolveIdentity(t *testing.T) {
	result := mustCalculate(t, "x + 1 = x + 1", ModeSolve, nil)
	if result.Result != "Every value is a solution" {
		t.Fatalf("expected identity result, got %q", result.Result)
	}
}

func TestCalculateSolveInconsistent(t *testing.T) {
	result := mustCalculate(t, "x + 1 = x", ModeSolve, nil)
	if result.Result != "No solution" {
		t.Fatalf("expected no-solution result, got %q", result.Result)
	}
}

func TestCalculateSolveWithoutVariable(t *testing.T) {
	_, err := NewEngine().Calculate("5 = 5", ModeSolve, nil)
	if err == nil || !IsCalcError(err) {
		t.Fatalf("expected a CalcError, got %v", err)
	}
}

func TestCalculateDerivative(t *testing.T) {
	result := mustCalculate(t, "x^2 + 3*x", ModeDerivative, nil)

	if result.Result != "d/dx[x^2 + 3*x] = 2*x + 3" {
		t.Fatalf("unexpected result %q", result.Result)
	}
	if len(result.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(result.Steps))
	}
	if !strings.Contains(result.Steps[2].Detail, "power rule") {
		t.Fatalf("expected power rule detail, got %q", result.Steps[2].Detail)
	}
}

func TestCalculateDerivativeKeywordWrapper(t *testing.T) {
	result := mustCalculate(t, "d/dx(x^2)", ModeAuto, nil)

	if result.Mode != ModeDerivative {
		t.Fatalf("expected derivative mode, got %q", result.Mode)
	}
	if result.Result != "d/dx[x^2] = 2*x" {
		t.Fatalf("unexpected result %q", result.Result)
	}
}

func TestCalculateDerivativeTrigDetail(t *testing.T) {
	result := mustCalculate(t, "sin(x)", ModeDerivative, nil)
	if result.Result != "d/dx[sin(x)] = cos(x)" {
		t.Fatalf("unexpected result %q", result.Result)
	}
	if !strings.Contains(result.Steps[2].Detail, "trigonometric") {
		t.Fatalf("expected trig detail, got %q", result.Steps[2].Detail)
	}
}

func TestCalculateDerivativeExplicitVariable(t *testing.T) {
	result := mustCalculate(t, "a*t", ModeDerivative, map[string]any{"var": "t"})
	if result.Result != "d/dt[a*t] = a" {
		t.Fatalf("unexpected result %q", result.Result)
	}
}

func TestCalculateIntegral(t *testing.T) {
	result := mustCalculate(t, "x**2", ModeIntegral, nil)

	if result.Result != "∫x^2 dx = 1/3*x^3 + C" {
		t.Fatalf("unexpected result %q", result.Result)
	}
	if len(result.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(result.Steps))
	}
	if result.Steps[3].Description != "Add the constant of integration" {
		t.Fatalf("expected constant step, got %q", result.Steps[3].Description)
	}
}

func TestCalculateIntegralKeywordWrapper(t *testing.T) {
	result := mustCalculate(t, "integrate sin(x)", ModeAuto, nil)
	if result.Mode != ModeIntegral {
		t.Fatalf("expected integral mode, got %q", result.Mode)
	}
	if result.Result != "∫sin(x) dx = -cos(x) + C" {
		t.Fatalf("unexpected result %q", result.Result)
	}
}

func TestCalculateIntegralUnsupported(t *testing.T) {
	_, err := NewEngine().Calculate("x*sin(x)", ModeIntegral, nil)
	if err == nil || !IsCalcError(err) {
		t.Fatalf("expected a CalcError, got %v", err)
	}
	if !strings.Contains(err.Error(), "cannot integrate") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCalculateUnsupportedMode(t *testing.T) {
	_, err := NewEngine().Calculate("2 + 2", "matrix", nil)
	if err == nil || !IsCalcError(err) {
		t.Fatalf("expected a CalcError, got %v", err)
	}
}

func TestStripWrapper(t *testing.T) {
	tests := []struct {
		input    string
		wrappers []string
		want     string
	}{
		{input: "d/dx(x^2)", wrappers: derivativeWrappers, want: "x^2"},
		{input: "derivative of x^2 + 1", wrappers: derivativeWrappers, want: "x^2 + 1"},
		{input: "diff(sin(x))", wrappers: derivativeWrappers, want: "sin(x)"},
		{input: "integrate sin(x)", wrappers: integralWrappers, want: "sin(x)"},
		{input: "integral of x", wrappers: integralWrappers, want: "x"},
		{input: "x^2", wrappers: derivativeWrappers, want: "x^2"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := stripWrapper(tc.input, tc.wrappers); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	engine := NewEngine()

	if err := engine.Validate("2 + 3 * 4", ModeAuto); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine.Validate("2*x + 5 = 15", ModeAuto); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine.Validate("d/dx(x^2)", ModeAuto); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine.Validate("2 +", ModeAuto); err == nil {
		t.Fatal("expected an error for a truncated expression")
	}
	if err := engine.Validate("2*x = = 4", ModeSolve); err == nil {
		t.Fatal("expected an error for a malformed equation")
	}
}
