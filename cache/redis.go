package cache

import (
	"context"
	"fmt"
	"time"

	"melofm/config"

	"github.com/go-redis/redis/v8"
)

// RedisClient 是全局Redis客户端，保存客户端本地状态
var RedisClient *redis.Client

// ConnectRedis 初始化Redis连接
func ConnectRedis(cfg *config.Config) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}

// CloseRedis 关闭Redis连接
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// TestRedis 测试Redis连接和基本读写
func TestRedis() error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	ctx := context.Background()

	if err := RedisClient.Set(ctx, "melofm:test", "ok", time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set test key: %w", err)
	}
	val, err := RedisClient.Get(ctx, "melofm:test").Result()
	if err != nil {
		return fmt.Errorf("failed to get test key: %w", err)
	}
	if val != "ok" {
		return fmt.Errorf("unexpected value from Redis: got %s", val)
	}
	if _, err := RedisClient.Del(ctx, "melofm:test").Result(); err != nil {
		return fmt.Errorf("failed to delete test key: %w", err)
	}
	return nil
}
