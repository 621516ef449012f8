package redis

import (
	"context"
	"fmt"
	"time"

	"agroMarket/pkg/config"
	"agroMarket/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const connectAttempts = 5

// NewClient builds the session store client and waits for Redis to answer a PING,
// retrying a few times so the app can start alongside its dependencies.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = client.Ping(ctx).Err()
		cancel()
		if err == nil {
			return client, nil
		}

		logger.Warn("Redis not ready", "attempt", attempt, "error", err.Error())
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", connectAttempts, err)
}

func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}

	return client.Close()
}
