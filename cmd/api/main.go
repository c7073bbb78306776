package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/schoolhub/internal/api"
	"github.com/nikhilbhutani/schoolhub/internal/api/middleware"
	"github.com/nikhilbhutani/schoolhub/internal/auth"
	"github.com/nikhilbhutani/schoolhub/internal/cache"
	"github.com/nikhilbhutani/schoolhub/internal/config"
	"github.com/nikhilbhutani/schoolhub/internal/database"
	"github.com/nikhilbhutani/schoolhub/internal/queue"
	"github.com/nikhilbhutani/schoolhub/internal/store/memory"
	"github.com/nikhilbhutani/schoolhub/internal/store/postgres"
	"github.com/nikhilbhutani/schoolhub/internal/store/rest"
	"github.com/nikhilbhutani/schoolhub/migrations"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, warnings, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		slog.Warn(w)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Primary store: postgres when configured, otherwise in-memory
	var store api.Store
	if cfg.Database.URL != "" {
		db, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		var schema fs.FS = migrations.FS
		if cfg.Database.MigrationsPath != "" {
			schema = os.DirFS(cfg.Database.MigrationsPath)
		}
		if err := database.RunMigrations(ctx, db, schema); err != nil {
			slog.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		store = postgres.New(db)
	} else {
		store = memory.New()
	}

	// Redis connection (optional)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	deps := api.Deps{
		RateLimiter: middleware.NewRateLimiter(100, 200),
	}
	// Without a database, inventory goes through the hosted gateway as the
	// signed-in user so its row-level security still applies.
	if cfg.Database.URL == "" && cfg.Supabase.URL != "" && cfg.Supabase.AnonKey != "" {
		deps.Inventory = rest.NewInventoryStore(cfg.Supabase, auth.AccessTokenFromContext)
		slog.Info("inventory served through the REST gateway as the signed-in user")
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without cache or provisioning", "error", err)
	} else {
		queueClient := queue.NewClient(cfg.Redis)
		defer queueClient.Close()

		deps.Cache = cache.NewCache(rdb)
		deps.Provisioner = queueClient
		deps.Redis = redisPinger{rdb}
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				deps.RateLimiter.Sweep(10 * time.Minute)
			}
		}
	}()

	// Setup router
	router := api.NewRouter(cfg, store, deps)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr(), "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
