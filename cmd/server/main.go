package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pawrescue/internal/config"
	"pawrescue/internal/handlers"
	"pawrescue/internal/middleware"
	"pawrescue/internal/repositories/mongodb"
	"pawrescue/internal/services"
	"pawrescue/internal/utils"
	"pawrescue/pkg/cache"
	"pawrescue/pkg/database"
	"pawrescue/pkg/logger"
	"pawrescue/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	if err := db.EnsureIndexes(context.Background()); err != nil {
		appLogger.Fatalf("Failed to ensure indexes: %v", err)
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	cacheService := services.NewCacheService(redisCache, appLogger)

	// Repositories
	caseRepo := mongodb.NewCaseRepository(db.Database, cacheService)
	updateRepo := mongodb.NewStatusUpdateRepository(db.Database, cfg.Database.Transactions)
	areaRepo := mongodb.NewServiceAreaRepository(db.Database)
	userRepo := mongodb.NewUserRepository(db.Database, cacheService)
	auditRepo := mongodb.NewAuditLogRepository(db.Database)

	// Services
	notificationService, err := services.NewNotificationService(cfg, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to initialize notifications: %v", err)
	}
	matchingService := services.NewMatchingService(userRepo, areaRepo, caseRepo, appLogger)
	caseService := services.NewCaseService(caseRepo, updateRepo, userRepo, auditRepo, matchingService, notificationService, appLogger)
	updateService := services.NewStatusUpdateService(updateRepo, caseRepo, userRepo, notificationService, appLogger)
	reminderService := services.NewReminderService(caseRepo, userRepo, auditRepo, notificationService, cfg.Reminder.BatchSize, appLogger)

	// Handlers
	caseHandler := handlers.NewCaseHandler(caseService)
	updateHandler := handlers.NewStatusUpdateHandler(updateService)
	matchingHandler := handlers.NewMatchingHandler(matchingService)

	// Periodic reminder sweep
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Reminder.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if _, err := reminderService.ProcessDueReminders(ctx); err != nil {
			appLogger.WithError(err).Error("reminder sweep failed")
		}
	})
	if err != nil {
		appLogger.Fatalf("Failed to schedule reminder sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	v1 := router.Group("/api/v1")
	{
		routes.SetupCaseRoutes(v1, cfg.Security.JWTSecret, caseHandler, updateHandler, matchingHandler)
		routes.SetupMatchingRoutes(v1, cfg.Security.JWTSecret, matchingHandler)
	}

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		health := gin.H{
			"status":  "healthy",
			"version": utils.AppVersion,
		}
		if err := db.Ping(); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "degraded"
			health["mongodb"] = err.Error()
		}
		if err := cacheService.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "degraded"
			health["redis"] = err.Error()
		}
		c.JSON(status, health)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.Infof("Starting server on port %d", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorf("Forced shutdown: %v", err)
	}
}
