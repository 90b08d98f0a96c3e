package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the calculation and info endpoints onto the given
// router. Health and metrics are mounted separately so they stay untraced.
func RegisterRoutes(r chi.Router) {
	r.Post("/calculate", Calculate)
	r.Post("/validate", Validate)
	r.Get("/operations", Operations)
	r.Get("/", Root)
}
