package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/examstack/exam-service/internal/cache"
	"github.com/examstack/exam-service/internal/config"
	"github.com/examstack/exam-service/internal/events"
	"github.com/examstack/exam-service/internal/handlers"
	"github.com/examstack/exam-service/internal/repositories/casdoor"
	"github.com/examstack/exam-service/internal/repositories/postgres"
	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
	"github.com/examstack/exam-service/internal/validator"
	"github.com/examstack/exam-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Redis is optional; a missing cache degrades reads, it does not stop
	// the service.
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("redis unavailable, running without cache", "error", err)
		redisClient = nil
	}

	// Repositories
	userRepo := casdoor.NewUserCasdoor(cfg.Casdoor, redisClient)
	repoManager := postgres.NewRepositoryManager(db, userRepo)

	ctx := context.Background()
	if err := repoManager.Initialize(ctx); err != nil {
		logger.Error("failed to initialize repositories", "error", err)
		os.Exit(1)
	}
	repo := repoManager.GetRepository()

	// Events
	var publisher events.EventPublisher
	kafkaPublisher, err := events.NewKafkaEventPublisher(cfg.Kafka, logger)
	if err != nil {
		logger.Warn("kafka unavailable, events will not leave the process", "error", err)
		publisher = events.NewMockEventPublisher()
	} else {
		publisher = kafkaPublisher
	}

	// Services
	cacheManager := cache.NewCacheManager(redisClient, logger)
	v := validator.New()
	serviceManager := services.NewServiceManager(repo, cacheManager, publisher, logger, v)

	// HTTP
	appLogger := utils.NewSlogLogger(logger)
	casdoorClient := handlers.NewCasdoorClient(cfg.Casdoor)

	healthHandler := handlers.DefaultHealthHandler(map[string]func() error{
		"database": func() error { return repo.Ping(context.Background()) },
		"cache": func() error {
			if redisClient == nil {
				return nil
			}
			return cacheManager.HealthCheck(context.Background())
		},
	})

	handlerManager := handlers.NewHandlerManager(serviceManager, casdoorClient, appLogger, healthHandler)

	router := gin.New()
	handlers.SetupMiddleware(router, appLogger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("publisher shutdown failed", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis shutdown failed", "error", err)
		}
	}
	if err := repoManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("repository shutdown failed", "error", err)
	}

	logger.Info("shutdown complete")
}
