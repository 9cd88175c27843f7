package middleware

import (
	"net/http"

	"github.com/angelmondragon/parkinglot-manager/pkg/config"
	"github.com/go-chi/cors"
)

// CORS applies the allowed-origin policy of the read-only JSON API.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}).Handler
}
