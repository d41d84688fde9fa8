package main

// @title Cartbridge Partner Hub API
// @version 1.0
// @description Partner portal backend: deals, pipeline, commissions and nudges.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cartbridge/partnerhub/config"
	"github.com/cartbridge/partnerhub/pkg/analytics"
	"github.com/cartbridge/partnerhub/pkg/api/handlers"
	"github.com/cartbridge/partnerhub/pkg/auth"
	"github.com/cartbridge/partnerhub/pkg/cache"
	"github.com/cartbridge/partnerhub/pkg/database"
	"github.com/cartbridge/partnerhub/pkg/deals"
	"github.com/cartbridge/partnerhub/pkg/documents"
	"github.com/cartbridge/partnerhub/pkg/email"
	"github.com/cartbridge/partnerhub/pkg/export"
	"github.com/cartbridge/partnerhub/pkg/jobs"
	"github.com/cartbridge/partnerhub/pkg/logger"
	"github.com/cartbridge/partnerhub/pkg/metrics"
	custommiddleware "github.com/cartbridge/partnerhub/pkg/middleware"
	"github.com/cartbridge/partnerhub/pkg/nudge"
	"github.com/cartbridge/partnerhub/pkg/partners"
	"github.com/cartbridge/partnerhub/pkg/payouts"
	"github.com/cartbridge/partnerhub/pkg/pipeline"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Initialize database
	db, err := database.NewClient(cfg.DatabaseDSN())
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis cache
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	authRateLimiter := custommiddleware.NewRateLimiter(5, 2)     // login: 5 req/min
	registerRateLimiter := custommiddleware.NewRateLimiter(3, 1) // register: 3 req/min

	// Global middleware
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			appLogger.Info("request",
				"method", c.Request().Method,
				"uri", v.URI,
				"status", v.Status)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(prometheusMetrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echomw.Gzip())
	e.Use(echomw.Secure())
	e.Use(globalRateLimiter.Middleware())

	// Root and health endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "Cartbridge Partner Hub API",
			"version":     "1.0.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		dbStatus := "up"
		if err := db.Ping(ctx); err != nil {
			dbStatus = "down"
		}

		cacheStatus := "up"
		if _, err := redisClient.Redis.Ping(ctx).Result(); err != nil {
			cacheStatus = "down"
		}

		status := http.StatusOK
		overall := "healthy"
		if dbStatus == "down" || cacheStatus == "down" {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}

		return c.JSON(status, map[string]any{
			"status":   overall,
			"database": dbStatus,
			"cache":    cacheStatus,
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Initialize JWT blacklist
	tokenBlacklist := auth.NewTokenBlacklist(redisClient)

	// Initialize email service
	emailService := email.NewService(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.FrontendURL,
		cfg.SendGridAPIKey,
	)

	// Stage machine: permissive by default, strict when configured
	stageMachine := pipeline.New(cfg.PipelineStrictOrder)
	if cfg.PipelineStrictOrder {
		log.Printf("✅ Stage order enforcement: strict (backward moves rejected)")
	} else {
		log.Printf("ℹ️  Stage order enforcement: permissive (operators may correct stages)")
	}

	// Initialize services
	partnersService := partners.NewService(db.DB)
	documentsService := documents.NewService(db.DB)
	dealsService := deals.NewService(db.DB, redisClient, stageMachine, documentsService, prometheusMetrics)
	nudgeService := nudge.NewService(db.DB, appLogger, prometheusMetrics)
	analyticsService := analytics.NewService(db.DB, redisClient)
	exportService := export.NewService(db.DB)
	payoutsService := payouts.NewService(db.DB, &payouts.Config{
		SecretKey: cfg.StripeSecretKey,
		Enabled:   cfg.PayoutsEnabled,
	}, appLogger)
	payoutsService.SetEmailSender(emailService)
	if cfg.PayoutsEnabled {
		log.Printf("✅ Stripe payouts enabled")
	} else {
		log.Printf("ℹ️  Stripe payouts disabled (dry settlement mode)")
	}

	// Initialize cron manager for the daily sweeps
	cronManager := jobs.NewCronManager(nudgeService, analyticsService, cfg.NudgeStaleDays, log.Default())
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to setup cron jobs: %v", err)
	}
	cronManager.Start()
	log.Printf("✅ Cron jobs started successfully")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(partnersService, cfg, tokenBlacklist, emailService)
	dealHandler := handlers.NewDealHandler(dealsService, partnersService, emailService)
	commissionHandler := handlers.NewCommissionHandler(dealsService)
	nudgeHandler := handlers.NewNudgeHandler(nudgeService)
	documentHandler := handlers.NewDocumentHandler(documentsService)
	adminHandler := handlers.NewAdminHandler(analyticsService, exportService, payoutsService, partnersService)

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "pong"})
	})

	// Published rate card (public)
	v1.GET("/rates", commissionHandler.RateCard)

	// Authentication routes (public)
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register, registerRateLimiter.Middleware())
		authRoutes.POST("/login", authHandler.Login, authRateLimiter.Middleware())
		authRoutes.GET("/me", authHandler.Me, custommiddleware.JWTMiddleware(cfg.JWTSecret, tokenBlacklist))
		authRoutes.POST("/logout", authHandler.Logout, custommiddleware.JWTMiddleware(cfg.JWTSecret, tokenBlacklist))
	}

	// Protected routes (require JWT with blacklist validation)
	protected := v1.Group("")
	protected.Use(custommiddleware.JWTMiddleware(cfg.JWTSecret, tokenBlacklist))
	{
		dealsGroup := protected.Group("/deals")
		{
			dealsGroup.POST("", dealHandler.Create)
			dealsGroup.GET("", dealHandler.List)
			dealsGroup.GET("/stage-counts", dealHandler.StageCounts)
			dealsGroup.GET("/:id", dealHandler.Get)
			dealsGroup.PUT("/:id/stage", dealHandler.Transition)
			dealsGroup.GET("/:id/activity", dealHandler.Activity)
			dealsGroup.GET("/:id/documents", documentHandler.List)
			dealsGroup.PUT("/:id/documents/:docId", documentHandler.UpdateStatus)
		}

		commissionGroup := protected.Group("/commission")
		{
			commissionGroup.POST("/calculate", commissionHandler.Calculate)
			commissionGroup.GET("/summary", commissionHandler.Summary)
		}

		nudgesGroup := protected.Group("/nudges")
		{
			nudgesGroup.GET("", nudgeHandler.List)
			nudgesGroup.POST("", nudgeHandler.Create)
			nudgesGroup.DELETE("/:id", nudgeHandler.Dismiss)
		}

		protected.GET("/analytics/funnel", adminHandler.PartnerFunnel)

		// Admin routes (role re-checked against the database)
		adminGroup := protected.Group("/admin")
		adminGroup.Use(custommiddleware.RequireAdmin(db.DB))
		{
			adminGroup.GET("/dashboard", adminHandler.Dashboard)
			adminGroup.GET("/funnel", adminHandler.Funnel)
			adminGroup.GET("/partners", adminHandler.Partners)
			adminGroup.GET("/export/deals", adminHandler.ExportDeals)
			adminGroup.GET("/export/commissions", adminHandler.ExportCommissions)
			adminGroup.POST("/payouts/run", adminHandler.RunPayouts)
		}
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 Cartbridge Partner Hub API starting on %s", address)
	log.Printf("📝 Log level: %s, Log format: %s", cfg.LogLevel, cfg.LogFormat)
	log.Printf("🔐 JWT expiration: %d hours", cfg.JWTExpirationHours)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("⏰ Cron jobs: Daily 7AM (stale deal sweep, idle > %d days), Daily 5AM (warm dashboard cache)", cfg.NudgeStaleDays)

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	cronManager.Stop()
	log.Println("✅ Cron jobs stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
