package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/classbook/classbook-api/api/swagger"
	"github.com/classbook/classbook-api/internal/handler"
	"github.com/classbook/classbook-api/internal/middleware"
	"github.com/classbook/classbook-api/internal/repository"
	"github.com/classbook/classbook-api/internal/service"
	"github.com/classbook/classbook-api/pkg/cache"
	"github.com/classbook/classbook-api/pkg/config"
	"github.com/classbook/classbook-api/pkg/database"
	"github.com/classbook/classbook-api/pkg/logger"
	corsmiddleware "github.com/classbook/classbook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classbook/classbook-api/pkg/middleware/requestid"
	"github.com/classbook/classbook-api/pkg/storage"
)

// @title Classbook API
// @version 1.0.0
// @description Booking and scheduling backend for recurring classes
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, availability cache disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	fixedRepo := repository.NewFixedScheduleRepository(db)
	variableRepo := repository.NewVariableScheduleRepository(db)
	canceledRepo := repository.NewCanceledScheduleRepository(db)
	planRepo := repository.NewPlanRepository(db)
	exportRepo := repository.NewExportJobRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	fixedSvc := service.NewFixedScheduleService(fixedRepo, userRepo, cacheRepo, validate, logr)
	variableSvc := service.NewVariableScheduleService(variableRepo, userRepo, cacheRepo, validate, logr)
	canceledSvc := service.NewCanceledScheduleService(canceledRepo, userRepo, cacheRepo, validate, logr)
	planSvc := service.NewPlanService(planRepo, validate, logr)
	metricsSvc := service.NewMetricsService()
	availabilitySvc := service.NewAvailabilityService(fixedRepo, variableRepo, canceledRepo, cacheRepo, service.AvailabilityConfig{
		CacheEnabled: cfg.Availability.CacheEnabled && redisClient != nil,
		CacheTTL:     cfg.Availability.CacheTTL,
	}, metricsSvc, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		localStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(exportRepo, availabilitySvc, localStorage, signer, service.ExportConfig{
			WorkerConcurrency: cfg.Exports.WorkerConcurrency,
			WorkerRetries:     cfg.Exports.WorkerRetries,
		}, metricsSvc, logr)
		exportSvc.Start(rootCtx)
		defer exportSvc.Stop()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	fixedHandler := handler.NewFixedScheduleHandler(fixedSvc)
	variableHandler := handler.NewVariableScheduleHandler(variableSvc)
	canceledHandler := handler.NewCanceledScheduleHandler(canceledSvc)
	planHandler := handler.NewPlanHandler(planSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	users := api.Group("/users", middleware.JWT(authSvc))
	{
		users.GET("", middleware.RequireAdmin(), userHandler.List)
		users.GET("/:email", middleware.RequireSelfOrAdmin("email"), userHandler.Get)
		users.PUT("/:email", middleware.RequireSelfOrAdmin("email"), userHandler.Update)
		users.DELETE("/:email", middleware.RequireAdmin(), userHandler.Delete)
		users.GET("/:email/next-class", middleware.RequireSelfOrAdmin("email"), userHandler.NextClass)
	}

	fixed := api.Group("/fixed-schedules", middleware.JWT(authSvc))
	{
		fixed.GET("", fixedHandler.ListByWeekDay)
		fixed.GET("/:id", fixedHandler.Get)
		fixed.POST("", middleware.RequireAdmin(), fixedHandler.Create)
		fixed.PUT("/:id", middleware.RequireAdmin(), fixedHandler.Update)
		fixed.DELETE("/:id", middleware.RequireAdmin(), fixedHandler.Delete)
		fixed.POST("/:id/users", middleware.RequireAdmin(), fixedHandler.Enroll)
		fixed.DELETE("/:id/users/:email", middleware.RequireSelfOrAdmin("email"), fixedHandler.Unenroll)
	}

	variable := api.Group("/variable-schedules", middleware.JWT(authSvc))
	{
		variable.GET("", variableHandler.ListByDay)
		variable.GET("/:id", variableHandler.Get)
		variable.POST("/book", variableHandler.Book)
		variable.POST("/unbook", variableHandler.Unbook)
		variable.DELETE("/:id", middleware.RequireAdmin(), variableHandler.Delete)
	}

	canceled := api.Group("/canceled-schedules", middleware.JWT(authSvc))
	{
		canceled.GET("", canceledHandler.ListByDay)
		canceled.GET("/:id", canceledHandler.Get)
		canceled.POST("/cancel", canceledHandler.Cancel)
		canceled.POST("/revert", canceledHandler.Revert)
		canceled.DELETE("/:id", middleware.RequireAdmin(), canceledHandler.Delete)
	}

	plans := api.Group("/plans")
	{
		plans.GET("", planHandler.List)
		plans.GET("/:id", planHandler.Get)
		plans.POST("", middleware.JWT(authSvc), middleware.RequireAdmin(), planHandler.Create)
		plans.PUT("/:id", middleware.JWT(authSvc), middleware.RequireAdmin(), planHandler.Update)
		plans.DELETE("/:id", middleware.JWT(authSvc), middleware.RequireAdmin(), planHandler.Delete)
	}

	availability := api.Group("/availability")
	{
		availability.POST("", availabilityHandler.ForDays)
		availability.GET("/week", availabilityHandler.Week)
	}

	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		exports := api.Group("/exports")
		{
			exports.POST("", middleware.JWT(authSvc), middleware.RequireAdmin(), exportHandler.Create)
			exports.GET("/:id", middleware.JWT(authSvc), middleware.RequireAdmin(), exportHandler.Status)
			exports.GET("/download", exportHandler.Download)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
