package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"locallift/internal/config"
	"locallift/internal/kv"
	"locallift/internal/metrics"
	"locallift/internal/pdf"
	"locallift/internal/storage"
	"locallift/internal/tasks"
	"locallift/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	storageClient, err := storage.NewClient(ctx, cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	log.Printf("storage client ready, bucket=%s", cfg.MinIO.Bucket)

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	// The memory store lives inside the api process, so render records can
	// only be written back for the shared drivers.
	var records kv.Store
	if cfg.Storage.Driver != config.DriverMemory {
		store, closeStore, err := kv.Open(cfg, redisClient)
		if err != nil {
			log.Fatalf("open %s store: %v", cfg.Storage.Driver, err)
		}
		defer closeStore()
		records = store
	}

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
	})

	renderer := pdf.Generator{Bin: cfg.Worker.BrowserBin}
	pdfHandler := worker.NewPDFTaskHandler(renderer, storageClient, redisClient, records, logger)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeResumePDF, pdfHandler)

	logger.Info("worker service started",
		slog.String("redis_addr", redisAddr),
		slog.String("storage_driver", cfg.Storage.Driver),
	)
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}
