package calculator

import (
	"fmt"
	"math"
	"strings"

	"educalc/internal/symbolic"
)

// formatNumber renders a numeric result the way a teacher would write it:
// integers without a decimal point, everything else with at most six
// decimal places and no trailing zeros.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%g", v)
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%d", int64(v))
	}

	formatted := fmt.Sprintf("%.10g", v)
	if dot := strings.IndexByte(formatted, '.'); dot >= 0 && len(formatted)-dot-1 > 6 {
		formatted = strings.TrimRight(fmt.Sprintf("%.6f", v), "0")
		formatted = strings.TrimSuffix(formatted, ".")
	}
	return formatted
}

// formatExpr renders an expression for display, folding fully numeric trees
// through formatNumber so users see 0.666667 rather than a huge rational.
func formatExpr(e symbolic.Expr) string {
	if n, ok := e.Eval(); ok {
		if n.IsInteger() {
			return n.String()
		}
		return formatNumber(n.Float64())
	}
	return e.String()
}
