package auth

import "github.com/gin-gonic/gin"

const claimsKey = "auth_claims"

// SetClaims stores verified claims on the request context.
func SetClaims(c *gin.Context, claims *Claims) {
	c.Set(claimsKey, claims)
}

// ClaimsFromContext returns the claims stored by the auth middleware.
func ClaimsFromContext(c *gin.Context) (*Claims, bool) {
	val, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}

// UserID returns the authenticated subject, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	if claims, ok := ClaimsFromContext(c); ok {
		return claims.UserID
	}
	return ""
}
