package api

import (
	"net/http"
	"time"

	"notes_system/internal/domain"
	"notes_system/internal/middleware"
	"notes_system/internal/service"
	"notes_system/internal/store"
	"notes_system/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RouterConfig collects what NewRouter wires together
type RouterConfig struct {
	Users          *service.UserManager
	Store          store.Store             // Used by the role guard
	Cache          *utils.Cache            // Optional user list cache
	JWTSecret      string                  // Token signing key
	Limiter        *middleware.RateLimiter // Optional
	Metrics        *middleware.Metrics     // Optional
	MetricsHandler http.Handler            // Served at /metrics when set
	Log            *logrus.Logger
}

// NewRouter builds the gin engine with every route and middleware
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(cfg.Log))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Handler())
	}
	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Handler())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Format(time.RFC3339)})
	})
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	r.POST("/auth/login", LoginHandler(cfg.Users, cfg.JWTSecret, cfg.Log))

	users := NewUserHandler(cfg.Users, cfg.Cache, cfg.Log)
	group := r.Group("/users")
	group.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.RequireRoles(cfg.Store, cfg.Log, domain.RoleAdmin, domain.RoleManager))
	group.GET("", users.List)
	group.POST("", users.Create)
	group.PATCH("", users.Update)
	group.DELETE("", users.Delete)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "404 not found"})
	})
	return r
}
