package middleware

import (
	"errors"
	"net/http" // HTTP status codes

	"notes_system/internal/store"

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// RequireRoles loads the caller from the store on each request, so revoked
// roles and deactivated accounts take effect before their token expires.
// The caller must be active and hold at least one of roles. Store failures
// are logged to log.
func RequireRoles(st store.Store, log *logrus.Logger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		user, err := st.FindUserByID(c.Request.Context(), userID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		case err != nil:
			log.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Role lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		if !user.Active || !user.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		c.Next()
	}
}
