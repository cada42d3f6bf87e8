package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"SiteJSON_Frontend/internal/backend"
	"SiteJSON_Frontend/internal/cache"
	"SiteJSON_Frontend/internal/config"
	"SiteJSON_Frontend/internal/http"
	"SiteJSON_Frontend/internal/logger"
	"SiteJSON_Frontend/internal/models"
	"SiteJSON_Frontend/internal/orchestrator"
	"SiteJSON_Frontend/internal/poller"
	"SiteJSON_Frontend/internal/ratelimit"
	"SiteJSON_Frontend/internal/tracker"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection for logging
	db, err := logger.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to logging database: %v", err)
	}
	defer db.Close()

	// Initialize logger
	appLogger := logger.NewDatabaseLogger(db)
	defer appLogger.Close()

	// Create internal log event for startup
	startupCtx := logger.WithLogEvent(context.Background(), logger.NewInternalLogEvent())

	appLogger.LogInfo(startupCtx, logger.OpServerStart, "Starting SiteJSON Frontend API", map[string]interface{}{
		"version": "1.0.0",
		"config": map[string]interface{}{
			"port":             cfg.Port,
			"backend_base_url": cfg.BackendBaseURL,
			"cache_type":       cfg.CacheType,
			"poll_interval_ms": cfg.PollInterval.Milliseconds(),
		},
	})

	// Initialize cache backing the job tracker
	cacheService, err := initializeCache(cfg)
	if err != nil {
		appLogger.LogError(
			startupCtx,
			"cache_init",
			"",
			"Failed to initialize cache",
			err,
			models.LogSeverityHigh,
			nil,
		)
		log.Fatalf("Failed to initialize cache: %v", err)
	}

	// Initialize components
	jobTracker := tracker.New(cacheService, cfg.TrackerTTL)
	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendAPIKey, cfg.BackendTimeout)

	rateLimiter := ratelimit.NewTwoTierLimiter(
		int64(cfg.GlobalRateLimitPerSec),
		int64(cfg.GlobalRateLimitPerSec),
		int64(cfg.PerIPRateLimitPerSec),
		int64(cfg.PerIPRateLimitPerSec),
	)
	defer rateLimiter.Stop()

	// Initialize the orchestrator and the per-domain polling sessions
	fetchService := orchestrator.New(backendClient, jobTracker, appLogger)
	sessions := poller.NewManager(
		fetchService,
		appLogger,
		cfg.PollInterval,
		cfg.ProgressTickInterval,
		cfg.SessionIdleTTL,
	)

	// Initialize HTTP handler
	handler := http.NewHandler(sessions, backendClient, appLogger)

	// Initialize server
	addr := ":" + cfg.Port
	server := http.NewServer(
		addr,
		handler,
		appLogger,
		rateLimiter,
		cfg.ServerReadTimeout,
		cfg.ServerWriteTimeout,
	)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			appLogger.LogError(
				context.Background(),
				logger.OpServerStart,
				"",
				"Server failed to start",
				err,
				models.LogSeverityHigh,
				map[string]interface{}{"addr": addr},
			)
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	fmt.Printf("🚀 SiteJSON Frontend API server started on %s\n", addr)
	fmt.Println("📋 Available endpoints:")
	fmt.Println("  GET  /health                           - Health check")
	fmt.Println("  GET  /api/sites/{domain}/state         - Live analysis state")
	fmt.Println("  POST /api/sites/{domain}/refresh       - Force re-analysis")
	fmt.Println("  POST /api/analyze                      - Start or join an analysis")
	fmt.Println("  GET  /api/sites/{domain}               - Site report")
	fmt.Println("  GET  /api/sites/{domain}/alternatives  - Similar sites")
	fmt.Println("  GET  /api/jobs/{id}                    - Job status")
	fmt.Println("  GET  /api/directory/{type}/{slug}      - Directory listing")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n🛑 Shutting down server...")

	// Stop every poll loop before the server so in-flight state reads
	// still get an answer
	sessions.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.LogError(
			ctx,
			logger.OpServerShutdown,
			"",
			"Server shutdown error",
			err,
			models.LogSeverityMedium,
			nil,
		)
		log.Printf("Server shutdown error: %v", err)
	} else {
		appLogger.LogInfo(ctx, logger.OpServerShutdown, "Server shutdown completed successfully", nil)
		fmt.Println("✅ Server shutdown completed")
	}
}

func initializeCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.CacheType {
	case "redis":
		return cache.NewRedisCache(cfg.RedisURL)
	case "memory":
		return cache.NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
