package api

import (
	"context"
	"net/http" // HTTP status codes

	"notes_system/internal/domain"
	"notes_system/internal/service"
	"notes_system/internal/utils"

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// UserHandler serves the /users resource
type UserHandler struct {
	users *service.UserManager
	cache *utils.Cache
	log   *logrus.Logger
}

// NewUserHandler creates a UserHandler. cache may be disabled.
func NewUserHandler(users *service.UserManager, cache *utils.Cache, log *logrus.Logger) *UserHandler {
	return &UserHandler{users: users, cache: cache, log: log}
}

// List returns all users without passwords. GET /users
func (h *UserHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	// The generation is read before the store so a concurrent mutation
	// moves later readers past whatever this request caches
	gen, err := h.cache.Generation(ctx, utils.UsersGenKey)
	useCache := err == nil
	if err != nil {
		h.log.WithField("error", err.Error()).Warn("User list cache generation read failed")
	}
	key := utils.GenerationKey(utils.UsersListKey, gen)

	if useCache {
		var cached []domain.User
		if found, err := h.cache.Get(ctx, key, &cached); err != nil {
			h.log.WithField("error", err.Error()).Warn("User list cache read failed")
		} else if found {
			c.JSON(http.StatusOK, cached) // Served from cache
			return
		}
	}

	users, err := h.users.List(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if useCache {
		if err := h.cache.Set(ctx, key, users, utils.UsersListTTL); err != nil {
			h.log.WithField("error", err.Error()).Warn("User list cache write failed")
		}
	}
	c.JSON(http.StatusOK, users)
}

// Create registers a user. POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var in service.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": service.MsgFieldsRequired})
		return
	}
	msg, err := h.users.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// Update replaces a user's fields. PATCH /users
func (h *UserHandler) Update(c *gin.Context) {
	var in service.UpdateUserInput
	// A non-boolean "active" fails here
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": service.MsgFieldsRequired})
		return
	}
	msg, err := h.users.Update(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Delete removes a user without notes. DELETE /users
func (h *UserHandler) Delete(c *gin.Context) {
	var in service.DeleteUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": service.MsgIDRequired})
		return
	}
	msg, err := h.users.Delete(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// invalidate retires the cached user list after a mutation
func (h *UserHandler) invalidate(ctx context.Context) {
	if err := h.cache.Bump(ctx, utils.UsersGenKey); err != nil {
		h.log.WithField("error", err.Error()).Warn("User list cache invalidation failed")
	}
}
