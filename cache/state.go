package cache

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// 客户端本地状态键，对应浏览器端localStorage的token/theme
const (
	tokenKey = "client:token"
	themeKey = "client:theme"
)

// SetToken stores the auth bearer token.
func SetToken(ctx context.Context, token string) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return RedisClient.Set(ctx, tokenKey, token, 0).Err()
}

// GetToken returns the stored token, or "" when none is set.
func GetToken(ctx context.Context) (string, error) {
	if RedisClient == nil {
		return "", fmt.Errorf("Redis client not initialized")
	}
	token, err := RedisClient.Get(ctx, tokenKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

// ClearToken removes the stored token.
func ClearToken(ctx context.Context) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return RedisClient.Del(ctx, tokenKey).Err()
}

// SetTheme stores the UI theme choice.
func SetTheme(ctx context.Context, theme string) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return RedisClient.Set(ctx, themeKey, theme, 0).Err()
}

// GetTheme returns the stored theme, defaulting to "dark".
func GetTheme(ctx context.Context) (string, error) {
	if RedisClient == nil {
		return "", fmt.Errorf("Redis client not initialized")
	}
	theme, err := RedisClient.Get(ctx, themeKey).Result()
	if err == redis.Nil {
		return "dark", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}
	return theme, nil
}
