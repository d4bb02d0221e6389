package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thirdvoice.ai/third-voice/internal/api"
	"thirdvoice.ai/third-voice/internal/cache"
	"thirdvoice.ai/third-voice/internal/config"
	"thirdvoice.ai/third-voice/internal/core"
	"thirdvoice.ai/third-voice/internal/logger"
	"thirdvoice.ai/third-voice/internal/store"
)

func main() {
	// Command line flag for expired-row cleanup
	purgeExpiredFlag := flag.Bool("purge-expired", false, "Delete expired cache entries and sessions, then exit")
	flag.Parse()

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := &config.AppConfig

	// Setup logging
	appLog, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	// Initialize database store
	dbStore, err := store.NewSQLStore(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("Failed to initialize database", "driver", cfg.DatabaseDriver, "error", err)
	}
	defer dbStore.Close()

	if *purgeExpiredFlag {
		purgeExpired(dbStore, appLog)
		return
	}

	ctx := context.Background()

	// Initialize completion client
	completer, closeCompleter, err := core.NewCompleter(ctx, cfg)
	if err != nil {
		appLog.Fatal("Failed to initialize completion client", "provider", cfg.LLMProvider, "error", err)
	}
	defer closeCompleter()

	// Initialize response cache
	var responseCache cache.ResponseCache = cache.NewTableCache(dbStore)
	if cfg.CacheBackend == config.CacheBackendRedis {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			appLog.Fatal("Failed to connect to redis", "error", err)
		}
		defer redisCache.Close()
		responseCache = redisCache
	}

	services := api.Services{
		Auth:     core.NewAuthService(dbStore, []byte(cfg.JWTSecret), time.Duration(cfg.SessionTTLHours)*time.Hour),
		Contacts: core.NewContactService(dbStore),
		Coach: core.NewCoachService(dbStore, responseCache, completer, appLog, core.CoachOptions{
			Temperature: cfg.LLMTemperature,
			MaxTokens:   cfg.LLMMaxTokens,
			CacheTTL:    time.Duration(cfg.CacheExpiryDays) * 24 * time.Hour,
		}),
		Insights: core.NewInsightsService(dbStore),
		Feedback: core.NewFeedbackService(dbStore),
		DB:       dbStore,
	}

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(services, appLog)
	router := api.NewRouter(apiHandler, api.NewRateLimiter(cfg.MaxRequestsPerHour), appLog)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.LLMTimeoutSeconds)*time.Second + 30*time.Second, // completion calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		appLog.Info("Starting server", "addr", serverAddr, "provider", cfg.LLMProvider, "cache", cfg.CacheBackend, "database", cfg.DatabaseDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Could not listen", "addr", serverAddr, "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", "error", err)
		return
	}

	appLog.Info("Server exiting gracefully")
}

func purgeExpired(dbStore *store.SQLStore, appLog *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()
	entries, err := dbStore.DeleteExpiredCacheEntries(ctx, now)
	if err != nil {
		appLog.Fatal("Cache purge failed", "error", err)
	}
	sessions, err := dbStore.DeleteExpiredSessions(ctx, now)
	if err != nil {
		appLog.Fatal("Session purge failed", "error", err)
	}
	appLog.Info("Purge complete", "cache_entries", entries, "sessions", sessions)
}
