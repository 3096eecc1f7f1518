package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-tripplanner/internal/domain/session"
)

const sessionClaimsKey = "session_claims"

// requireTripHandle checks that the bearer handle was issued for the :id trip.
// A nil manager disables the check.
func requireTripHandle(sessions session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions == nil {
			c.Next()
			return
		}
		claims, httpErr := authorizeTrip(c, sessions, c.Param("id"))
		if httpErr != nil {
			abortWithError(c, httpErr)
			return
		}
		c.Set(sessionClaimsKey, claims)
		c.Next()
	}
}

func authorizeTrip(c *gin.Context, sessions session.Manager, tripID string) (session.Claims, *HTTPError) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return session.Claims{}, NewHTTPError(http.StatusUnauthorized, session.CodeInvalidHandle, "missing trip handle", nil)
	}
	claims, err := sessions.Authorize(token, tripID)
	if err != nil {
		return session.Claims{}, domainError(err)
	}
	return claims, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
