package utils

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ledgerly/ledgerly-backend/config"
)

// NewRedisClient connects to redis when REDIS_ADDR is set. Returns nil when
// it is not; callers treat a nil client as "redis disabled".
func NewRedisClient(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable at %s, continuing without it: %v", cfg.RedisAddr, err)
		_ = client.Close()
		return nil
	}

	log.Printf("connected to redis at %s", cfg.RedisAddr)
	return client
}
