package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"locallift/internal/api"
	"locallift/internal/auth"
	"locallift/internal/catalog"
	"locallift/internal/config"
	"locallift/internal/kv"
	"locallift/internal/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	privatePEM, publicPEM, generated, err := auth.LoadOrGenerateKeys(cfg.Auth.PrivateKeyPath, cfg.Auth.PublicKeyPath)
	if err != nil {
		log.Fatalf("load signing keys: %v", err)
	}
	if generated {
		logger.Warn("generated a new signing key pair", slog.String("path", cfg.Auth.PrivateKeyPath))
	}
	authService, err := auth.NewAuthService(privatePEM, publicPEM, cfg.Auth.AccessTTL)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	redisAddr := cfg.Redis.Addr()
	var rdb redis.UniversalClient
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		if cfg.Storage.Driver == config.DriverRedis {
			log.Fatalf("ping redis: %v", err)
		}
		logger.Warn("redis unavailable, websocket, rate limits and pdf export disabled", slog.Any("error", err))
		_ = client.Close()
	} else {
		rdb = client
		defer client.Close()
	}

	store, closeStore, err := kv.Open(cfg, rdb)
	if err != nil {
		log.Fatalf("open %s store: %v", cfg.Storage.Driver, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("close store failed", slog.Any("error", err))
		}
	}()
	logger.Info("key-value store ready", slog.String("driver", cfg.Storage.Driver))

	deps := api.Deps{
		Config:  cfg,
		Logger:  logger,
		Auth:    authService,
		KV:      store,
		Catalog: catalog.New(nil),
	}

	if rdb != nil {
		deps.Redis = rdb
		queue := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
		defer queue.Close()
		deps.Queue = queue
	}

	storageClient, err := storage.NewClient(ctx, cfg.MinIO)
	if err != nil {
		logger.Warn("object storage unavailable, avatars and pdf links disabled", slog.Any("error", err))
	} else {
		deps.Storage = storageClient
		logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))
	}

	if cfg.Clamd.Addr != "" {
		deps.Scanner = api.ClamdScanner{Addr: cfg.Clamd.Addr}
	}

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logger.Info("api listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down api")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("api server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
