package server

import (
	"net/http"
	"strings"

	"educalc/internal/config"
	"educalc/internal/handlers"
)

// AuthMiddleware is a placeholder for token auth. Disabled by default; when
// enabled it only checks that a Bearer token is present. Real verification
// comes with the identity service.
func AuthMiddleware(cfg config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				handlers.WriteError(w, http.StatusUnauthorized, "Unauthorized", "missing or malformed bearer token", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
