package utils

import (
	"context"
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
)

// IsRedisConfigured returns true when REDIS_HOST is set. Without Redis the
// server runs as a single instance and events stay on the local bus.
func IsRedisConfigured() bool {
	return os.Getenv("REDIS_HOST") != ""
}

// GetRedisClient connects to the Redis specified by env and pings it.
func GetRedisClient(ctx context.Context) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		redisClient.Close()
		return nil, err
	}
	return redisClient, nil
}
