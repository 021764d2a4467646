package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns a middleware configured from the ALLOWED_ORIGINS list.
// A single "*" entry allows every origin (development default).
func CORS(allowedOrigins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()

	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
		config.AllowCredentials = true
	}

	config.AddAllowMethods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS")
	config.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	config.AddExposeHeaders("Content-Length", "Content-Disposition")
	config.MaxAge = 12 * time.Hour

	return cors.New(config)
}
