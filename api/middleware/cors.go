package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware with a fully open origin policy. Scan traffic
// comes from embedded scanner firmware rather than browser sessions, and
// the UI reads go through the managed backend, so there is no origin
// allowlist to maintain.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}).Handler
}
