package api

import (
	"errors"
	"net/http" // HTTP status codes

	"notes_system/internal/service"
	"notes_system/internal/utils"

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse carries the issued token
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
}

// LoginHandler authenticates a user and returns a JWT
func LoginHandler(users *service.UserManager, jwtSecret string, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": service.MsgFieldsRequired})
			return
		}
		user, err := users.Authenticate(c.Request.Context(), req.Username, req.Password)
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInactiveUser):
			log.WithField("username", req.Username).Warn("Login rejected")
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		case err != nil:
			respondError(c, log, err)
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Username, user.Roles, jwtSecret)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{AccessToken: token})
	}
}
