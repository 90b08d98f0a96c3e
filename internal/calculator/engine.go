package calculator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"educalc/internal/symbolic"
)

// Calculation modes.
const (
	ModeAuto       = "auto"
	ModeArithmetic = "arithmetic"
	ModeAlgebra    = "algebra"
	ModeSolve      = "solve"
	ModeDerivative = "derivative"
	ModeIntegral   = "integral"
)

// SupportedModes lists every mode Calculate accepts.
var SupportedModes = []string{
	ModeAuto, ModeArithmetic, ModeAlgebra, ModeSolve, ModeDerivative, ModeIntegral,
}

// CalcError marks failures caused by the input rather than the service:
// unparseable expressions, rejected input, computations outside the rule
// set. Handlers map these to 400.
type CalcError struct {
	msg string
}

func (e *CalcError) Error() string { return e.msg }

func calcErrorf(format string, args ...any) error {
	return &CalcError{msg: fmt.Sprintf(format, args...)}
}

// IsCalcError reports whether err is (or wraps) a CalcError.
func IsCalcError(err error) bool {
	var ce *CalcError
	return errors.As(err, &ce)
}

// Result is the outcome of one calculation: the final rendering, the
// ordered teaching steps, and the mode that actually ran.
type Result struct {
	Result string
	Steps  []Step
	Mode   string
}

// Engine routes expressions to the per-mode solvers and narrates each one
// as an ordered list of steps.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Calculate resolves mode (detecting it when "auto" or empty) and runs the
// matching solver. All input-caused failures come back as CalcErrors.
func (e *Engine) Calculate(expression, mode string, variables map[string]any) (*Result, error) {
	if mode == "" || mode == ModeAuto {
		mode = e.DetectMode(expression)
	}

	switch mode {
	case ModeArithmetic:
		return e.arithmetic(expression)
	case ModeAlgebra:
		return e.algebra(expression, variables)
	case ModeSolve:
		return e.solveEquation(expression)
	case ModeDerivative:
		return e.derivative(expression, variables)
	case ModeIntegral:
		return e.integral(expression, variables)
	}
	return nil, calcErrorf("unsupported mode: %s", mode)
}

// DetectMode classifies an expression by first match: an equals sign means
// solve, calculus keywords mean derivative or integral, free symbols mean
// algebra, anything else is arithmetic.
func (e *Engine) DetectMode(expression string) string {
	lower := strings.ToLower(expression)

	if strings.Contains(expression, "=") {
		return ModeSolve
	}
	for _, word := range []string{"d/dx", "derivative", "diff"} {
		if strings.Contains(lower, word) {
			return ModeDerivative
		}
	}
	for _, word := range []string{"integral", "integrate"} {
		if strings.Contains(lower, word) {
			return ModeIntegral
		}
	}
	if expr, err := symbolic.Parse(expression); err == nil {
		if len(symbolic.FreeSymbols(expr)) > 0 {
			return ModeAlgebra
		}
	}
	return ModeArithmetic
}

// Validate checks that the expression parses for the given (or detected)
// mode without computing anything.
func (e *Engine) Validate(expression, mode string) error {
	if mode == "" || mode == ModeAuto {
		mode = e.DetectMode(expression)
	}

	switch mode {
	case ModeSolve:
		lhs, rhs, err := splitEquation(expression)
		if err != nil {
			return err
		}
		if _, err := symbolic.Parse(lhs); err != nil {
			return calcErrorf("invalid left-hand side: %v", err)
		}
		if _, err := symbolic.Parse(rhs); err != nil {
			return calcErrorf("invalid right-hand side: %v", err)
		}
		return nil
	case ModeDerivative:
		expression = stripWrapper(expression, derivativeWrappers)
	case ModeIntegral:
		expression = stripWrapper(expression, integralWrappers)
	}
	if _, err := symbolic.Parse(expression); err != nil {
		return calcErrorf("invalid expression: %v", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// arithmetic
// ---------------------------------------------------------------------------

func (e *Engine) arithmetic(expression string) (*Result, error) {
	steps := []Step{{
		Step:        1,
		Description: "Original expression",
		Expression:  expression,
		Detail:      "We will evaluate this numeric expression step by step",
	}}

	expr, err := symbolic.Parse(expression)
	if err != nil {
		return nil, calcErrorf("invalid expression: %v", err)
	}

	if ops := identifyOperations(expr); len(ops) > 0 {
		steps = append(steps, Step{
			Step:        len(steps) + 1,
			Description: "Identify operations",
			Expression:  expr.String(),
			LaTeX:       expr.LaTeX(),
			Detail:      "Operations present: " + strings.Join(ops, ", "),
		})
	}

	n, ok := expr.Eval()
	if !ok {
		if len(symbolic.FreeSymbols(expr)) > 0 {
			return nil, calcErrorf("the expression contains variables; use algebra mode or substitute values")
		}
		return nil, calcErrorf("the expression cannot be evaluated (division by zero or a domain error)")
	}

	result := formatNumberResult(n)
	steps = append(steps, Step{
		Step:        len(steps) + 1,
		Description: "Evaluate expression",
		Expression:  result,
		Detail:      "Carry out the calculations following the order of operations (PEMDAS)",
	})

	return &Result{Result: result, Steps: steps, Mode: ModeArithmetic}, nil
}

// identifyOperations names the operation kinds present in the tree, in a
// fixed order. Powers with exponent -1 encode division and are reported as
// such.
func identifyOperations(expr symbolic.Expr) []string {
	var hasAdd, hasMul, hasPow, hasFunc bool
	symbolic.Walk(expr, func(n symbolic.Expr) {
		switch v := n.(type) {
		case *symbolic.Sum:
			hasAdd = true
		case *symbolic.Product:
			hasMul = true
		case *symbolic.Power:
			if exp, ok := v.Exponent().(*symbolic.Number); ok && exp.Float64() == -1 {
				hasMul = true
			} else {
				hasPow = true
			}
		case *symbolic.Call:
			hasFunc = true
		}
	})

	ops := []string{}
	if hasAdd {
		ops = append(ops, "addition/subtraction")
	}
	if hasMul {
		ops = append(ops, "multiplication/division")
	}
	if hasPow {
		ops = append(ops, "exponentiation")
	}
	if hasFunc {
		ops = append(ops, "function evaluation")
	}
	return ops
}

func formatNumberResult(n *symbolic.Number) string {
	if n.IsInteger() {
		return n.String()
	}
	return formatNumber(n.Float64())
}

// ---------------------------------------------------------------------------
// algebra
// ---------------------------------------------------------------------------

func (e *Engine) algebra(expression string, variables map[string]any) (*Result, error) {
	steps := []Step{{
		Step:        1,
		Description: "Original expression",
		Expression:  expression,
		Detail:      "We will simplify this algebraic expression",
	}}

	expr, err := symbolic.Parse(expression)
	if err != nil {
		return nil, calcErrorf("invalid expression: %v", err)
	}

	for _, name := range sortedNumericVars(variables) {
		value, _ := toFloat(variables[name])
		expr = symbolic.Substitute(expr, name, symbolic.Float(value))
		steps = append(steps, Step{
			Step:        len(steps) + 1,
			Description: fmt.Sprintf("Substitute %s = %s", name, formatNumber(value)),
			Expression:  expr.String(),
			LaTeX:       expr.LaTeX(),
			Detail:      fmt.Sprintf("Replace every occurrence of '%s' with its value", name),
		})
	}

	expanded := symbolic.Expand(expr)
	if expanded.String() != expr.String() {
		steps = append(steps, Step{
			Step:        len(steps) + 1,
			Description: "Expand the expression",
			Expression:  expanded.String(),
			LaTeX:       expanded.LaTeX(),
			Detail:      "Apply the distributive property and expand products",
		})
		expr = expanded
	}

	simplified := expr.Simplify()
	if simplified.String() != expr.String() {
		steps = append(steps, Step{
			Step:        len(steps) + 1,
			Description: "Simplify",
			Expression:  simplified.String(),
			LaTeX:       simplified.LaTeX(),
			Detail:      "Combine like terms and simplify",
		})
		expr = simplified
	}

	if len(steps) == 1 {
		steps = append(steps, Step{
			Step:        2,
			Description: "Expression already simplified",
			Expression:  expr.String(),
			LaTeX:       expr.LaTeX(),
			Detail:      "The expression needs no further simplification",
		})
	}

	return &Result{Result: formatExpr(expr), Steps: steps, Mode: ModeAlgebra}, nil
}

// sortedNumericVars returns the substitutable variable names in stable
// order. "var" is reserved for choosing the calculus variable.
func sortedNumericVars(variables map[string]any) []string {
	names := []string{}
	for name, value := range variables {
		if name == "var" {
			continue
		}
		if _, ok := toFloat(value); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// solve
// ---------------------------------------------------------------------------

func splitEquation(expression string) (string, string, error) {
	if strings.Count(expression, "=") != 1 {
		return "", "", calcErrorf("the equation must contain exactly one '=' sign")
	}
	parts := strings.SplitN(expression, "=", 2)
	lhs, rhs := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if lhs == "" || rhs == "" {
		return "", "", calcErrorf("both sides of the equation must be non-empty")
	}
	return lhs, rhs, nil
}

func (e *Engine) solveEquation(expression string) (*Result, error) {
	steps := []Step{{
		Step:        1,
		Description: "Original equation",
		Expression:  expression,
		Detail:      "We will solve this equation for its variable",
	}}

	lhsText, rhsText, err := splitEquation(expression)
	if err != nil {
		return nil, err
	}
	lhs, err := symbolic.Parse(lhsText)
	if err != nil {
		return nil, calcErrorf("invalid left-hand side: %v", err)
	}
	rhs, err := symbolic.Parse(rhsText)
	if err != nil {
		return nil, calcErrorf("invalid right-hand side: %v", err)
	}

	rendered := lhs.String() + " = " + rhs.String()
	steps = append(steps, Step{
		Step:        2,
		Description: "Express as an equation",
		Expression:  rendered,
		Detail:      "Identify the two sides of the equation",
	})

	names := symbolic.SortedFreeSymbols(symbolic.NewSum(lhs, rhs))
	if len(names) == 0 {
		return nil, calcErrorf("no variable found in the equation")
	}
	varName := names[0]
	steps = append(steps, Step{
		Step:        3,
		Description: fmt.Sprintf("Variable to solve: %s", varName),
		Expression:  rendered,
		Detail:      fmt.Sprintf("We will solve for the variable '%s'", varName),
	})

	var result, detail string
	roots, err := symbolic.SolveEquation(lhs, rhs, varName)
	switch {
	case errors.Is(err, symbolic.ErrNoSolution):
		result = "No solution"
		detail = "The equation is inconsistent: no value of " + varName + " satisfies it"
	case errors.Is(err, symbolic.ErrIdentity):
		result = "Every value is a solution"
		detail = "The equation is an identity: it holds for every value of " + varName
	case err != nil:
		return nil, calcErrorf("cannot solve the equation: %v", err)
	case len(roots) == 1:
		root := formatExpr(roots[0])
		result = fmt.Sprintf("%s = %s", varName, root)
		detail = fmt.Sprintf("The unique solution is %s = %s", varName, root)
	default:
		formatted := make([]string, len(roots))
		for i, r := range roots {
			formatted[i] = formatExpr(r)
		}
		result = fmt.Sprintf("%s = {%s}", varName, strings.Join(formatted, ", "))
		detail = "The solutions are: " + strings.Join(formatted, ", ")
	}

	steps = append(steps, Step{
		Step:        4,
		Description: "Solution",
		Expression:  result,
		Detail:      detail,
	})

	return &Result{Result: result, Steps: steps, Mode: ModeSolve}, nil
}

// ---------------------------------------------------------------------------
// derivative
// ---------------------------------------------------------------------------

var derivativeWrappers = []string{"d/dx", "derivative of", "derivative", "diff"}
var integralWrappers = []string{"integral of", "integrate", "integral"}

// stripWrapper removes a leading calculus keyword ("d/dx(...)",
// "derivative of ...") so the remainder can be parsed as a plain
// expression.
func stripWrapper(expression string, wrappers []string) string {
	trimmed := strings.TrimSpace(expression)
	lower := strings.ToLower(trimmed)
	for _, w := range wrappers {
		if !strings.HasPrefix(lower, w) {
			continue
		}
		rest := strings.TrimSpace(trimmed[len(w):])
		if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") && balancedParens(rest[1:len(rest)-1]) {
			rest = strings.TrimSpace(rest[1 : len(rest)-1])
		}
		if rest != "" {
			return rest
		}
	}
	return trimmed
}

func balancedParens(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// calcVariable picks the variable for derivatives and integrals:
// variables["var"] wins, then the first free symbol, then "x".
func calcVariable(expr symbolic.Expr, variables map[string]any) string {
	if v, ok := variables["var"]; ok {
		if name, ok2 := v.(string); ok2 && name != "" {
			return name
		}
	}
	if names := symbolic.SortedFreeSymbols(expr); len(names) > 0 {
		return names[0]
	}
	return "x"
}

func (e *Engine) derivative(expression string, variables map[string]any) (*Result, error) {
	steps := []Step{{
		Step:        1,
		Description: "Original function",
		Expression:  expression,
		Detail:      "We will compute the derivative of this function",
	}}

	cleaned := stripWrapper(expression, derivativeWrappers)
	expr, err := symbolic.Parse(cleaned)
	if err != nil {
		return nil, calcErrorf("invalid expression: %v", err)
	}
	expr = expr.Simplify()

	varName := calcVariable(expr, variables)
	steps = append(steps, Step{
		Step:        2,
		Description: fmt.Sprintf("Differentiation variable: %s", varName),
		Expression:  expr.String(),
		LaTeX:       expr.LaTeX(),
		Detail:      fmt.Sprintf("We differentiate with respect to '%s'", varName),
	})

	deriv := symbolic.Diff(expr, varName)
	steps = append(steps, Step{
		Step:        3,
		Description: "Apply differentiation rules",
		Expression:  deriv.String(),
		LaTeX:       deriv.LaTeX(),
		Detail:      explainDerivativeRule(expr, varName),
	})

	if simplified := deriv.Simplify(); simplified.String() != deriv.String() {
		steps = append(steps, Step{
			Step:        4,
			Description: "Simplify the result",
			Expression:  simplified.String(),
			LaTeX:       simplified.LaTeX(),
			Detail:      "Simplify the differentiated expression",
		})
		deriv = simplified
	}

	result := fmt.Sprintf("d/d%s[%s] = %s", varName, expr.String(), deriv.String())
	return &Result{Result: result, Steps: steps, Mode: ModeDerivative}, nil
}

func explainDerivativeRule(expr symbolic.Expr, varName string) string {
	if symbolic.IsPolynomial(expr, varName) {
		return fmt.Sprintf("Apply the power rule: d/d%s[%s^n] = n*%s^(n-1)", varName, varName, varName)
	}
	if containsTrig(expr) {
		return "Apply the trigonometric differentiation rules"
	}
	return "Apply the matching differentiation rules"
}

func containsTrig(expr symbolic.Expr) bool {
	found := false
	symbolic.Walk(expr, func(n symbolic.Expr) {
		if c, ok := n.(*symbolic.Call); ok {
			switch c.FuncName() {
			case "sin", "cos", "tan", "asin", "acos", "atan":
				found = true
			}
		}
	})
	return found
}

// ---------------------------------------------------------------------------
// integral
// ---------------------------------------------------------------------------

func (e *Engine) integral(expression string, variables map[string]any) (*Result, error) {
	steps := []Step{{
		Step:        1,
		Description: "Function to integrate",
		Expression:  expression,
		Detail:      "We will compute the indefinite integral of this function",
	}}

	cleaned := stripWrapper(expression, integralWrappers)
	expr, err := symbolic.Parse(cleaned)
	if err != nil {
		return nil, calcErrorf("invalid expression: %v", err)
	}
	expr = symbolic.Expand(expr)

	varName := calcVariable(expr, variables)
	steps = append(steps, Step{
		Step:        2,
		Description: fmt.Sprintf("Integration variable: %s", varName),
		Expression:  expr.String(),
		LaTeX:       expr.LaTeX(),
		Detail:      fmt.Sprintf("We integrate with respect to '%s'", varName),
	})

	antiderivative, err := symbolic.Integrate(expr, varName)
	if err != nil {
		return nil, calcErrorf("cannot integrate: %v", err)
	}
	antiderivative = antiderivative.Simplify()

	steps = append(steps, Step{
		Step:        3,
		Description: "Apply integration rules",
		Expression:  antiderivative.String(),
		LaTeX:       antiderivative.LaTeX(),
		Detail:      "Apply the matching integration rules term by term",
	})

	withConstant := antiderivative.String() + " + C"
	steps = append(steps, Step{
		Step:        4,
		Description: "Add the constant of integration",
		Expression:  withConstant,
		Detail:      "Indefinite integrals include an arbitrary constant C",
	})

	result := fmt.Sprintf("∫%s d%s = %s", expr.String(), varName, withConstant)
	return &Result{Result: result, Steps: steps, Mode: ModeIntegral}, nil
}
