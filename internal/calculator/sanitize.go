package calculator

import (
	"fmt"
	"strings"
)

// forbidden substrings that indicate someone is probing for code injection
// rather than writing math.
var forbidden = []string{
	"__", "import", "exec", "eval", "compile", "open", "file",
	"input", "globals", "locals", "reload", "lambda", ";",
}

// SanitizeExpression trims the input and rejects anything that is not plain
// math. Commas get a teaching message that shows how to split the input into
// separate expressions; forbidden substrings are rejected outright. Failures
// are CalcErrors.
func SanitizeExpression(expression string) (string, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return "", calcErrorf("the expression is empty")
	}

	if strings.Contains(expression, ",") {
		parts := []string{}
		for _, p := range strings.Split(expression, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 1 {
			var sb strings.Builder
			sb.WriteString("the comma (,) is not a mathematical operator. ")
			sb.WriteString("Commas separate list elements in programming, but in math they are not an operation. ")
			sb.WriteString("Calculate each expression separately:")
			for i, part := range parts {
				fmt.Fprintf(&sb, "\n   %d) %s", i+1, part)
			}
			return "", calcErrorf("%s", sb.String())
		}
		return "", calcErrorf("the comma (,) is not a mathematical operator")
	}

	lower := strings.ToLower(expression)
	for _, word := range forbidden {
		if strings.Contains(lower, word) {
			return "", calcErrorf("expression contains a forbidden term: %s", word)
		}
	}
	return expression, nil
}
