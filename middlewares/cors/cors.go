package cors

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CorsMiddleware builds the CORS policy from ALLOWED_ORIGINS, a
// comma-separated list of origins.
func CorsMiddleware() gin.HandlerFunc {
	origins := os.Getenv("ALLOWED_ORIGINS")
	allowed := []string{"http://localhost:3000"}
	if origins != "" {
		allowed = strings.Split(origins, ",")
	}

	return cors.New(cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
