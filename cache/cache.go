package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"coursehub/config"
	"coursehub/logger"

	"github.com/redis/go-redis/v9"
)

const (
	catalogKeyPrefix  = "coursehub:catalog:"
	catalogGenKey     = "coursehub:catalog:gen"
	defaultTTL        = 5 * time.Minute
	operationDeadline = 500 * time.Millisecond
)

// Client is the process-wide cache. Nil when Redis is not configured, in
// which case every operation is a no-op miss.
var Client *redis.Client

// Init connects to Redis when REDIS_ADDR is set. The cache is best effort:
// a missing or unreachable Redis only disables caching.
func Init() {
	addr := config.AppConfig.RedisAddr
	if addr == "" {
		logger.Info("Redis not configured, catalog caching disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.AppConfig.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable at %s, catalog caching disabled: %v", addr, err)
		return
	}

	Client = client
	logger.Info("Redis connected at %s", addr)
}

// Close releases the Redis connection
func Close() {
	if Client != nil {
		if err := Client.Close(); err != nil {
			logger.Warn("Error closing Redis client: %v", err)
		}
		Client = nil
	}
}

// catalogGeneration reads the invalidation counter; 0 when unset
func catalogGeneration(ctx context.Context) int64 {
	gen, err := Client.Get(ctx, catalogGenKey).Int64()
	if err != nil && err != redis.Nil {
		logger.Debug("Cache generation read failed: %v", err)
	}
	return gen
}

// catalogKey namespaces a query key under the current generation so that a
// bump invalidates every cached listing at once
func catalogKey(ctx context.Context, queryKey string) string {
	return fmt.Sprintf("%s%d:%s", catalogKeyPrefix, catalogGeneration(ctx), queryKey)
}

// GetCatalog loads a cached catalog listing into dest. Returns false on miss
// or when caching is disabled.
func GetCatalog(ctx context.Context, queryKey string, dest interface{}) bool {
	if Client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, operationDeadline)
	defer cancel()

	raw, err := Client.Get(ctx, catalogKey(ctx, queryKey)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Debug("Cache read failed for %s: %v", queryKey, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Debug("Cache entry for %s is corrupt: %v", queryKey, err)
		return false
	}
	return true
}

// SetCatalog stores a catalog listing under the current generation
func SetCatalog(ctx context.Context, queryKey string, value interface{}) {
	if Client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Debug("Cache marshal failed for %s: %v", queryKey, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, operationDeadline)
	defer cancel()
	if err := Client.Set(ctx, catalogKey(ctx, queryKey), raw, defaultTTL).Err(); err != nil {
		logger.Debug("Cache write failed for %s: %v", queryKey, err)
	}
}

// InvalidateCatalog bumps the generation counter, orphaning every cached
// listing. Orphans expire with their TTL.
func InvalidateCatalog(ctx context.Context) {
	if Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, operationDeadline)
	defer cancel()
	if err := Client.Incr(ctx, catalogGenKey).Err(); err != nil {
		logger.Debug("Cache invalidation failed: %v", err)
	}
}
