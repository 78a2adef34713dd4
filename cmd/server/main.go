// ============================================================================
// walink server
// ============================================================================
// Startup flow:
// config → logger → storage → redis (optional) → AI chain → services →
// router → HTTP server → graceful shutdown
// ============================================================================

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"walink/internal/config"
	"walink/internal/generator"
	httpHandler "walink/internal/handler/http"
	"walink/internal/ratelimit"
	redisRepo "walink/internal/repository/redis"
	"walink/internal/service"
	"walink/internal/storage"
	"walink/pkg/logger"
)

func main() {
	// ========================================================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================================================
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// ========================================================================
	// STEP 2: INITIALIZE STRUCTURED LOGGER
	// ========================================================================
	appLogger := logger.NewWithFormat(cfg.App.LogLevel, cfg.App.LogFormat, os.Stdout)
	appLogger.Info("Starting walink",
		"environment", cfg.App.Environment,
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
	)

	// ========================================================================
	// STEP 3: OPEN STORAGE AND RUN MIGRATIONS
	// ========================================================================
	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer backend.Close()

	if err := backend.Migrate(ctx); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	appLogger.Info("Database ready", "driver", backend.Driver)

	// ========================================================================
	// STEP 4: REDIS CACHE AND RATE LIMITERS (OPTIONAL)
	// ========================================================================
	// Without Redis every lookup goes to the database and nothing is limited.
	var (
		cache        service.Cache = redisRepo.NopCache{}
		linkLimiter  ratelimit.Limiter
		loginLimiter ratelimit.Limiter
	)
	if cfg.Redis.Enabled {
		redisClient, err := redisRepo.InitRedis(ctx, cfg.Redis.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without cache and rate limiting", "error", err)
		} else {
			defer redisClient.Close()
			cache = redisRepo.NewCache(redisClient, cfg.Redis.CacheTTL)
			if cfg.App.RateLimitEnabled {
				linkLimiter = ratelimit.NewRedisLimiter(redisClient, "ratelimit:links", cfg.App.RateLimitPerMinute, time.Minute)
				loginLimiter = ratelimit.NewRedisLimiter(redisClient, "ratelimit:login", cfg.App.LoginRateLimitPerMinute, time.Minute)
			}
			appLogger.Info("Redis connected", "addr", cfg.Redis.RedisAddr())
		}
	}

	// ========================================================================
	// STEP 5: AI GENERATION CHAIN
	// ========================================================================
	providers, err := generator.NewProviders(cfg.AI.Providers, cfg.AI.MaxTokens, nil)
	if err != nil {
		log.Fatalf("Failed to build AI providers: %v", err)
	}
	chain := generator.NewChain(providers, cfg.AI.Timeout, appLogger.Logger)
	appLogger.Info("Article generation ready", "providers", chain.ProviderNames())

	// ========================================================================
	// STEP 6: SERVICES
	// ========================================================================
	passwordHash := cfg.Admin.PasswordHash
	if passwordHash == "" && cfg.Admin.Password != "" {
		appLogger.Warn("ADMIN_PASSWORD is set in plain text; prefer ADMIN_PASSWORD_HASH (walinkctl hash-password)")
		if passwordHash, err = service.HashPassword(cfg.Admin.Password); err != nil {
			log.Fatalf("Failed to hash admin password: %v", err)
		}
	}
	if passwordHash == "" {
		appLogger.Warn("No admin password configured; admin login is disabled")
	}

	authService, err := service.NewAuthService(passwordHash, cfg.Admin.JWTSecret, cfg.Admin.SessionTTL, appLogger.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}

	linkService := service.NewLinkService(backend.Links, backend.Clicks, cache, appLogger.Logger, service.LinkOptions{
		SlugLength:          cfg.App.SlugLength,
		MaxAttempts:         cfg.App.SlugAttempts,
		WidenEvery:          cfg.App.SlugWidenEvery,
		LegacyClickCounting: cfg.App.LegacyClickCounting,
	})
	articleService := service.NewArticleService(backend.Articles, chain, appLogger.Logger, service.ArticleOptions{
		GenerateTimeout: cfg.AI.TotalTimeout,
	})

	// ========================================================================
	// STEP 7: HTTP ROUTES AND MIDDLEWARE
	// ========================================================================
	handler := httpHandler.NewHandler(linkService, articleService, authService, appLogger.Logger, httpHandler.Options{
		PublicBaseURL: cfg.App.PublicBaseURL,
		CookieSecure:  cfg.Admin.CookieSecure,
		SessionTTL:    cfg.Admin.SessionTTL,
	})
	trustedProxies, err := httpHandler.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		log.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
	}
	router := httpHandler.NewRouter(handler, httpHandler.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: trustedProxies,
		EnableMetrics:  cfg.App.EnableMetrics,
		LinkLimiter:    linkLimiter,
		LoginLimiter:   loginLimiter,
	})

	// ========================================================================
	// STEP 8: START SERVER
	// ========================================================================
	// config.Validate keeps AI_TOTAL_TIMEOUT below WriteTimeout for /admin/generate-article.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// ========================================================================
	// STEP 9: GRACEFUL SHUTDOWN
	// ========================================================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
		return
	}

	appLogger.Info("Server exited gracefully")
}
