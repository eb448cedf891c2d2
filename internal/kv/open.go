package kv

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"locallift/internal/config"
	"locallift/internal/database"
)

// Open returns the backend selected by cfg.Storage.Driver. rdb is required
// for the redis driver. The returned close func releases what Open created.
func Open(cfg *config.Config, rdb redis.UniversalClient) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return NewMemory(), noop, nil
	case config.DriverRedis:
		if rdb == nil {
			return nil, nil, fmt.Errorf("redis driver selected without a redis client")
		}
		return NewRedis(rdb), noop, nil
	case config.DriverPostgres:
		db, err := database.InitDatabase(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("unwrap db: %w", err)
		}
		return NewGorm(db), sqlDB.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
