package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"locallift/internal/config"
	"locallift/internal/kv"
	"locallift/internal/session"
)

// clientState is one client's namespace plus its restored session.
type clientState struct {
	id       string
	store    kv.Store
	sessions *session.Store
	close    func()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagDriver != "" {
		cfg.Storage.Driver = strings.ToLower(flagDriver)
	}
	if flagDBHost != "" {
		cfg.Database.Host = flagDBHost
	}
	if flagDBPort > 0 {
		cfg.Database.Port = flagDBPort
	}
	return cfg, nil
}

func openClient(ctx context.Context) (*clientState, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Storage.Driver == config.DriverMemory {
		return nil, errors.New("the memory driver keeps state inside the api process; select redis or postgres")
	}

	var rdb *redis.Client
	if cfg.Storage.Driver == config.DriverRedis {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
	}

	var universal redis.UniversalClient
	if rdb != nil {
		universal = rdb
	}
	base, closeStore, err := kv.Open(cfg, universal)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}

	id := strings.TrimSpace(flagClient)
	store := kv.ForClient(base, id)
	sessions := session.NewStore(store, session.Options{})
	if err := sessions.Restore(ctx); err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	return &clientState{
		id:       id,
		store:    store,
		sessions: sessions,
		close: func() {
			_ = closeStore()
			if rdb != nil {
				_ = rdb.Close()
			}
		},
	}, nil
}
