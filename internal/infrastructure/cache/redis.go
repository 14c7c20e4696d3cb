package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"reviewflow/internal/config"

	"github.com/go-redis/redis/v8"
)

var RedisClient *redis.Client

func InitRedis(cfg *config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}

	RedisClient = client
	log.Println("Redis connected")
	return client
}

// CleanupOrphanedKeys removes cache keys under the given prefix that were
// written without an expiry. Best effort; used by the queue worker's
// cache_cleanup handler.
func CleanupOrphanedKeys(ctx context.Context, client *redis.Client, prefix string) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return removed, err
		}
		for _, key := range keys {
			ttl, err := client.TTL(ctx, key).Result()
			if err != nil {
				continue
			}
			if ttl == -1 { // no expiry set
				if client.Del(ctx, key).Err() == nil {
					removed++
				}
			}
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
