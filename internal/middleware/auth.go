package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hacktopia/platform/internal/auth"
	"github.com/hacktopia/platform/internal/response"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Auth rejects requests without a valid bearer token and stores the
// verified claims on the context for handlers. Only session tokens pass
// unless other purposes are listed.
func Auth(tokens TokenParser, purposes ...auth.Purpose) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.CodeUnauthorized, "Missing Authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid Authorization header")
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil || !claims.Allows(purposes...) {
			response.AbortFail(c, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized: Invalid token")
			return
		}

		auth.SetClaims(c, claims)
		c.Next()
	}
}
