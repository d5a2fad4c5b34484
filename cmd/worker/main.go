package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"jobtrack/internal/config"
	"jobtrack/internal/metrics"
	"jobtrack/internal/storage"
	"jobtrack/internal/tasks"
	"jobtrack/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	log.Printf("storage client ready, bucket=%s", cfg.MinIO.Bucket)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer redisClient.Close()

	cleanupHandler := worker.NewCleanupHandler(storageClient, redisClient, logger)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Redis.Addr()},
		asynq.Config{Concurrency: 5},
	)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.HandleFunc(tasks.TypeAttachmentCleanup, cleanupHandler.HandleAttachmentCleanup)

	log.Printf("worker starting, redis=%s", cfg.Redis.Addr())
	if err := srv.Run(mux); err != nil {
		log.Fatalf("failed to start worker: %v", err)
	}
}
