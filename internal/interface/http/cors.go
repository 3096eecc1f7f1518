package http

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods  = "GET, POST, OPTIONS"
	corsAllowHeaders  = "Content-Type, Authorization"
	corsExposeHeaders = "Retry-After"
	corsMaxAge        = "600"
)

// corsMiddleware echoes an allowed origin, or "*" when none are configured.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	wildcard := len(allowed) == 0 || slices.Contains(allowed, "*")
	return func(c *gin.Context) {
		headers := c.Writer.Header()
		origin := c.GetHeader("Origin")
		switch {
		case wildcard:
			headers.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && originAllowed(origin, allowed):
			headers.Set("Access-Control-Allow-Origin", origin)
			headers.Add("Vary", "Origin")
		default:
			headers.Set("Access-Control-Allow-Origin", allowed[0])
			headers.Add("Vary", "Origin")
		}
		headers.Set("Access-Control-Expose-Headers", corsExposeHeaders)

		if c.Request.Method == http.MethodOptions {
			headers.Set("Access-Control-Allow-Methods", corsAllowMethods)
			headers.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			headers.Set("Access-Control-Max-Age", corsMaxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, origin) {
			return true
		}
	}
	return false
}
