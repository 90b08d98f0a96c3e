package calculator

// Step is one entry in the ordered explanation returned with every result.
// Numbers start at 1 and increase without gaps within a response.
type Step struct {
	Step        int    `json:"step"`
	Description string `json:"description"`
	Expression  string `json:"expression,omitempty"`
	LaTeX       string `json:"latex,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// CalculationRequest is the JSON body for POST /calculate.
type CalculationRequest struct {
	Expression string `json:"expression"`
	// Mode is one of "auto", "arithmetic", "algebra", "solve",
	// "derivative", "integral". Empty means "auto".
	Mode string `json:"mode,omitempty"`
	// Variables optionally carries "var" (the variable to differentiate or
	// integrate by) and numeric values to substitute before computing.
	Variables map[string]any `json:"variables,omitempty"`
}

// CalculationResponse is the JSON response for POST /calculate.
type CalculationResponse struct {
	Original string `json:"original"`
	Result   string `json:"result"`
	Steps    []Step `json:"steps"`
	Mode     string `json:"mode"`
	Error    string `json:"error,omitempty"`
}

// ValidationRequest is the JSON body for POST /validate.
type ValidationRequest struct {
	Expression string `json:"expression"`
	Mode       string `json:"mode,omitempty"`
}

// ValidationResponse reports whether an expression is parseable and safe,
// along with the detected mode.
type ValidationResponse struct {
	Valid      bool   `json:"valid"`
	Expression string `json:"expression"`
	Mode       string `json:"mode"`
	Error      string `json:"error,omitempty"`
}

// OperationInfo describes one supported operation type for GET /operations.
type OperationInfo struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}
