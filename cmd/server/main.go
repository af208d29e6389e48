package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notes_system/internal/api"        // Custom package for API handlers
	"notes_system/internal/config"     // Custom package for configuration
	"notes_system/internal/db"         // Custom package for the database connection
	"notes_system/internal/events"     // Custom package for user events
	"notes_system/internal/middleware" // Custom package for middleware
	"notes_system/internal/service"    // Custom package for the user manager
	"notes_system/internal/store"      // Custom package for the document store
	"notes_system/internal/utils"      // Custom package for helpers

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus"          // Metrics registry
	"github.com/prometheus/client_golang/prometheus/promhttp" // Metrics endpoint
	"github.com/redis/go-redis/v9"                            // Redis client
	"github.com/sirupsen/logrus"                              // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.IsProd {
		log.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// Document store
	var st store.Store
	switch cfg.DBDriver {
	case config.DriverMemory:
		log.Warn("Using in-memory store, data is lost on restart")
		st = store.NewMemoryStore()
	default:
		conn, err := db.Open(cfg.DSN(), log)
		if err != nil {
			log.Fatalf("failed to connect to DB: %v", err)
		}
		st = store.NewGormStore(conn)
	}

	// Optional Redis cache
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
	}

	// Optional Kafka events
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		writer := events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaUserTopic)
		defer writer.Close()
		publisher = events.NewKafkaPublisher(writer)
	}

	users := service.NewUserManager(st, utils.NewBcryptHasher(cfg.BcryptCost), publisher, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	r := api.NewRouter(api.RouterConfig{
		Users:          users,
		Store:          st,
		Cache:          utils.NewCache(rdb),
		JWTSecret:      cfg.JWTSecret,
		Limiter:        middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		Metrics:        middleware.NewMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Log:            log,
	})
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		log.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("Server running on %s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// Wait for a shutdown signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
	log.Info("Server stopped")
}
