package calculator

import (
	"net/http"

	"educalc/internal/handlers"
)

// Version is the API version reported by /health and /.
const Version = "1.0.0"

// HealthHandler returns the GET /health handler. environment is the
// deployment environment from configuration.
func HealthHandler(environment string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:      "ok",
			Version:     Version,
			Environment: environment,
		})
	}
}

// operations is the static catalogue served by GET /operations.
var operations = []OperationInfo{
	{
		Type:        ModeArithmetic,
		Name:        "Basic arithmetic",
		Description: "Numeric operations: addition, subtraction, multiplication, division, powers",
		Examples:    []string{"2 + 3 * 4", "(10 - 5) / 2", "2**8"},
	},
	{
		Type:        ModeAlgebra,
		Name:        "Algebra",
		Description: "Simplification and expansion of algebraic expressions",
		Examples:    []string{"2*(x + 3) - 4", "(x + 2)**2", "x**2 - 4"},
	},
	{
		Type:        ModeSolve,
		Name:        "Equation solving",
		Description: "Solving linear and quadratic equations",
		Examples:    []string{"2*x + 5 = 15", "x**2 - 4 = 0", "3*x - 7 = 2*x + 3"},
	},
	{
		Type:        ModeDerivative,
		Name:        "Derivatives",
		Description: "Differentiation of functions",
		Examples:    []string{"x**2 + 3*x", "sin(x)", "x**3 - 2*x + 1"},
	},
	{
		Type:        ModeIntegral,
		Name:        "Integrals",
		Description: "Indefinite integration",
		Examples:    []string{"x**2", "2*x + 1", "sin(x)"},
	},
}

// Operations handles GET /operations.
func Operations(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, operations)
}

// Root handles GET / with basic service information.
func Root(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]string{
		"app":         "EduCalc API",
		"version":     Version,
		"description": "Educational calculator with step by step explanations",
		"health":      "/health",
		"operations":  "/operations",
	})
}
