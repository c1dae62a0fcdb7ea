// Package main runs the event suggestion board HTTP API with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reindeer-games/backend/config"
	"github.com/reindeer-games/backend/internal/auth"
	"github.com/reindeer-games/backend/internal/events"
	"github.com/reindeer-games/backend/internal/identity"
	"github.com/reindeer-games/backend/internal/middleware"
	"github.com/reindeer-games/backend/pkg/database"
	"github.com/reindeer-games/backend/pkg/queue"
	"github.com/reindeer-games/backend/pkg/redis"
	"github.com/reindeer-games/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jobQueue := queue.NewQueue(rdb.Client, logger)
	verifier := identity.NewTokenVerifier(cfg.Identity.JWTSecret, cfg.Identity.TokenExpireHours)

	var provider identity.Provider
	switch cfg.Identity.Backend {
	case config.IdentityBackendLocal:
		provider = identity.NewLocal(pool, verifier, jobQueue, logger)
		logger.Info("identity backend: local")
	default:
		provider = identity.NewHosted(cfg.Identity.URL, cfg.Identity.AnonKey, logger)
		logger.Info("identity backend: hosted", zap.String("url", cfg.Identity.URL))
	}

	callbackURL := cfg.Server.PublicURL + "/auth/callback"
	authService := auth.NewService(provider, jobQueue, callbackURL, logger)
	authHandler := auth.NewHandler(authService, logger)

	eventRepo := events.NewPostgresRepository(pool)
	eventCache := events.NewListCache(rdb.Client, logger)
	eventService := events.NewService(eventRepo, eventCache, logger)
	eventHandler := events.NewHandler(eventService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Session(verifier))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/magic-link", authHandler.MagicLink)
		authGroup.GET("/callback", authHandler.Callback)
		authGroup.POST("/complete-profile", authHandler.CompleteProfile)
		authGroup.POST("/logout", authHandler.Logout)
	}

	router.GET("/events", eventHandler.List)
	router.POST("/events", eventHandler.Create)
	router.DELETE("/events/:id", eventHandler.Delete)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
