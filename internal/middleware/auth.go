package middleware

import (
	"net/http"
	"strings"

	"site-panel/internal/auth"

	"github.com/gin-gonic/gin"
)

// UserEmailKey is the gin context key holding the authenticated email.
const UserEmailKey = "user_email"

// AuthGuard requires an "Authorization: Bearer <token>" header. A missing or
// malformed header answers 401, a token that fails verification answers 403.
func AuthGuard(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		scheme, tokenString, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(tokenString))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(UserEmailKey, claims.Email())
		c.Next()
	}
}
