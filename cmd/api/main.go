package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devfolio/portfolio-api/config"
	"github.com/devfolio/portfolio-api/internal/handlers"
	"github.com/devfolio/portfolio-api/internal/middleware"
	"github.com/devfolio/portfolio-api/internal/repository"
	"github.com/devfolio/portfolio-api/internal/services"
	"github.com/devfolio/portfolio-api/pkg/httpclient"
	"github.com/devfolio/portfolio-api/pkg/logger"
	"github.com/devfolio/portfolio-api/pkg/metrics"
	"github.com/devfolio/portfolio-api/pkg/profiling"
	"github.com/devfolio/portfolio-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting portfolio API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Background workers stop when ctx is cancelled during shutdown
	ctx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(tracing.Options{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.AlloyEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics(ctx)

	// Initialize HTTP client for external API calls
	httpClient := httpclient.NewStandardClient(cfg.Contact.DispatchTimeout())

	limiter, closeLimiter := buildLimiter(ctx, cfg)
	defer closeLimiter()

	sink, closeSink, err := buildSink(cfg, httpClient)
	if err != nil {
		logger.Fatal("Failed to initialize notification sink", zap.Error(err))
	}
	defer closeSink()

	// NOTE: PostgreSQL migrations run separately via the migrate command
	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize submission store", zap.Error(err))
	}
	defer closeStore()

	submissionRepo := repository.NewSubmissionRepository(store)

	// Initialize services
	contactService := services.NewContactService(limiter, sink, submissionRepo, cfg, httpClient)

	// Initialize handlers
	contactHandler := handlers.NewContactHandler(contactService)
	healthHandler := handlers.NewHealthHandler(submissionRepo.Ping)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))

	// CORS configuration - only the portfolio front-end may call the API
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader, "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length", "Retry-After", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	// Ops endpoints get a token bucket; contact submissions are limited by the service
	opsRateLimiter := middleware.NewRateLimiter(ctx, 10, 20) // 10 req/sec, burst of 20

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", opsRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", opsRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	// API v1 routes; every method reaches the handler so non-POST gets a JSON 405
	v1 := router.Group("/api/v1")
	v1.Any("/contact", middleware.BodySizeLimitMiddleware(middleware.DefaultMaxBodyBytes), contactHandler.Submit)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Dispatch may take up to the dispatch timeout; let in-flight submissions finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Contact.DispatchTimeout()+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	stopWorkers()

	logger.Info("Server exited")
}
