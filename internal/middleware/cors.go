package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/rs/cors"
)

// Cors allows the origins listed in CORS_ALLOWED_ORIGINS (comma separated),
// or any origin when the variable is unset.
func Cors() Middleware {
	options := cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}
	if origins, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		options.AllowedOrigins = strings.Split(origins, ",")
	} else {
		options.AllowOriginFunc = func(origin string) bool {
			return true
		}
	}
	return cors.New(options).Handler
}
