package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/koweyli/vantage-console/internal/services"
)

// Context keys set by Auth for downstream handlers.
const (
	UserIDKey   = "userID"
	UsernameKey = "username"
)

// Auth validates the bearer token from the Authorization header (or the
// auth_token cookie as a fallback) and exposes the caller identity on the
// context.
func Auth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
		if token == "" {
			token, _ = c.Cookie("auth_token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authentication required",
			})
			return
		}

		claims, err := auth.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "invalid or expired token",
			})
			return
		}

		c.Set(UserIDKey, claims.UserID())
		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}
