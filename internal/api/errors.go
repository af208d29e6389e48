package api

import (
	"errors"
	"net/http"

	"notes_system/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor maps manager errors to HTTP statuses. Missing users and the
// notes guard answer 400 like the rest of the client errors; only a
// duplicate username is a 409.
func statusFor(err error) int {
	var (
		ve *domain.ValidationError
		nf *domain.NotFoundError
		ce *domain.ConflictError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &nf):
		return http.StatusBadRequest
	case errors.As(err, &ce):
		if ce.Reason == domain.ConflictDuplicateUsername {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"message": ...}. Unexpected errors are logged
// and hidden behind a generic message.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"error":  err.Error(),
		}).Error("Request failed")
		c.JSON(status, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"message": err.Error()})
}
