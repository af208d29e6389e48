package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"notes_system/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by JWTAuthMiddleware
const (
	CtxUserID = "userID"
	CtxClaims = "claims"
)

// JWTAuthMiddleware validates bearer tokens and stores the claims in the context
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		claims, err := utils.ParseJWT(strings.TrimPrefix(authHeader, "Bearer "), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}
		c.Set(CtxUserID, claims.UserID) // Store userID in context
		c.Set(CtxClaims, claims)
		c.Next()
	}
}
