package main

import (
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/nikhilbhutani/schoolhub/internal/config"
	"github.com/nikhilbhutani/schoolhub/internal/queue"
	"github.com/nikhilbhutani/schoolhub/internal/queue/workers"
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

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	// Register workers
	provisionWorker := workers.NewProvisionWorker(cfg.Supabase)

	registry.Register(queue.TypeTenantProvision, asynq.HandlerFunc(provisionWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
