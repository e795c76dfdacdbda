package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SscSPs/practice_ledger_app/internal/adapters/cache"
	"github.com/SscSPs/practice_ledger_app/internal/adapters/database/memory"
	"github.com/SscSPs/practice_ledger_app/internal/adapters/database/pgsql"
	"github.com/SscSPs/practice_ledger_app/internal/adapters/system"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
	"github.com/SscSPs/practice_ledger_app/internal/core/services"
	"github.com/SscSPs/practice_ledger_app/internal/handlers"
	"github.com/SscSPs/practice_ledger_app/internal/middleware"
	"github.com/SscSPs/practice_ledger_app/internal/platform/config"
	"github.com/SscSPs/practice_ledger_app/pkg/database"
	"github.com/SscSPs/practice_ledger_app/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.Setup(cfg.IsProduction, cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock, err := system.NewClock(cfg.Timezone)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	reportCache := openReportCache(ctx, cfg, logger)

	container := services.NewContainer(store, clock, system.UUIDGenerator{}, services.ContainerConfig{
		ReportCache:    reportCache,
		ReportCacheTTL: cfg.ReportCacheTTL,
	})

	router, err := newRouter(cfg, logger, container)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore returns the configured ledger store and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.LedgerStore, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	if _, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		return nil, nil, err
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Database connection pool established.")
	return pgsql.NewStore(dbPool), dbPool.Close, nil
}

// openReportCache falls back to no caching when Redis is unset or unreachable.
func openReportCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) portsrepo.ReportCache {
	if cfg.RedisURL == "" {
		return cache.Noop{}
	}
	redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("Report cache disabled", slog.String("error", err.Error()))
		return cache.Noop{}
	}
	logger.Info("Connected to Redis report cache")
	return redisCache
}

func newRouter(cfg *config.Config, logger *slog.Logger, container *services.Container) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	if cfg.MetricsEnabled {
		r.Use(middleware.PrometheusMiddleware())
	}

	limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	r.Use(middleware.RateLimit(limiter))

	handlers.RegisterRoutes(r, cfg, container)
	return r, nil
}

// corsConfig allows the configured origins. A "*" entry allows any origin
// without credentials.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
