package security

import (
	"net/http"
	"time"

	"github.com/rs/cors"

	"salesboard/internal/middleware/trace"
)

// CORSConfig lists the browser origins allowed to call the API. A single
// "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

// NewCORS returns middleware answering preflight requests and adding CORS
// headers for the API's GET and POST routes.
func NewCORS(config CORSConfig) func(http.Handler) http.Handler {
	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	maxAge := config.MaxAge
	if maxAge <= 0 {
		maxAge = 10 * time.Minute
	}

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", trace.HeaderRequestID},
		ExposedHeaders: []string{trace.HeaderRequestID},
		MaxAge:         int(maxAge.Seconds()),
	})
	return c.Handler
}
