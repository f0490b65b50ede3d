package httpx

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// WithCORS lets browser pages on the listed origins call the API with the
// identity headers. An empty list disables it.
func WithCORS(origins []string, headers ...string) Middleware {
	var allowed []string
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   append([]string{"Accept", "Content-Type", "Authorization", RequestIDHeader}, headers...),
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
