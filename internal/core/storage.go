package core

import (
	"context"
	"fmt"
	"strings"

	"haccpcore/internal/infra/persistence/memory"
	"haccpcore/internal/infra/persistence/mongo"
	"haccpcore/internal/infra/persistence/postgres"
	"haccpcore/internal/infra/persistence/redis"
	"haccpcore/internal/infra/persistence/sqlite"
	"haccpcore/pkg/domain"
)

// StorageDriver identifies a concrete snapshot store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageMongo    StorageDriver = "mongo"    // MongoDB document per key
	StorageRedis    StorageDriver = "redis"    // Redis hash per key
)

// StorageConfig selects and parameterises the snapshot store.
type StorageConfig struct {
	Driver          StorageDriver
	Key             string
	SQLitePath      string
	PostgresDSN     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	RedisURL        string
}

// StoreKey returns the snapshot key for a restaurant. The empty restaurant
// maps to the shared default key.
func StoreKey(restaurant string) string {
	restaurant = strings.TrimSpace(restaurant)
	if restaurant == "" {
		return domain.DefaultStoreKey
	}
	return domain.DefaultStoreKey + ":" + restaurant
}

// OpenSnapshotStore opens the backend named by cfg.Driver. Defaults to sqlite
// when unset.
func OpenSnapshotStore(ctx context.Context, cfg StorageConfig) (domain.SnapshotStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	key := cfg.Key
	if key == "" {
		key = domain.DefaultStoreKey
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(key), nil
	case StorageSQLite:
		return sqlite.NewStore(ctx, cfg.SQLitePath, key)
	case StoragePostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN, key)
	case StorageMongo:
		return mongo.NewStore(ctx, mongo.Config{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			Key:        key,
		})
	case StorageRedis:
		return redis.NewStore(ctx, cfg.RedisURL, key)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
