package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"invoice-builder/internal/config"
)

func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CorsAllowedOrigins,
		AllowedMethods: cfg.Server.CorsAllowedMethods,
		AllowedHeaders: cfg.Server.CorsAllowedHeaders,
		// Content-Disposition carries the export filename
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300, // 5 minutes
	})

	return c.Handler
}
