package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mbevents/backend/internal/token"
)

const errUnauthorized = "Unauthorized"

// sessionVerifier is the slice of token.Issuer the middleware needs.
type sessionVerifier interface {
	Verify(raw string) (token.Claims, error)
}

// Auth validates a Bearer session token and sets "userID" and "email"
// in the gin context.
func Auth(tokens sessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": errUnauthorized})
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": errUnauthorized})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}
