package chi

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSMiddleware allows the browser frontend to call the API.
// An empty origin list allows any origin.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", HeaderAPIKey, "Content-Type"},
		ExposedHeaders: []string{HeaderEmbeddingTokens, "X-Request-ID"},
		MaxAge:         600,
	})
	return c.Handler
}
