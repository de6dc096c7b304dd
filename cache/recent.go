package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"melofm/model"

	"github.com/go-redis/redis/v8"
)

const recentKey = "client:recently-played"

// 最近播放最多保存20条，展示时只取最新6条
const (
	RecentStoreLimit   = 20
	RecentDisplayLimit = 6
)

// PushRecent records a just-played track. The newest entry goes to the
// front; replays of the same track move it forward instead of duplicating.
func PushRecent(ctx context.Context, track model.RecentTrack) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	items, err := loadRecent(ctx)
	if err != nil {
		return err
	}
	items = TrimRecent(items, track, RecentStoreLimit)

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal recently played: %w", err)
	}
	return RedisClient.Set(ctx, recentKey, data, 0).Err()
}

// RecentlyPlayed returns the display slice, newest first.
func RecentlyPlayed(ctx context.Context) ([]model.RecentTrack, error) {
	items, err := loadRecent(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) > RecentDisplayLimit {
		items = items[:RecentDisplayLimit]
	}
	return items, nil
}

// TrimRecent prepends track, drops an older entry for the same song, and
// caps the list. Pure so the policy is testable without Redis.
func TrimRecent(items []model.RecentTrack, track model.RecentTrack, limit int) []model.RecentTrack {
	out := make([]model.RecentTrack, 0, len(items)+1)
	out = append(out, track)
	for _, item := range items {
		if item.ID == track.ID {
			continue
		}
		out = append(out, item)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func loadRecent(ctx context.Context) ([]model.RecentTrack, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	data, err := RedisClient.Get(ctx, recentKey).Bytes()
	if err == redis.Nil {
		return []model.RecentTrack{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read recently played: %w", err)
	}
	var items []model.RecentTrack
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recently played: %w", err)
	}
	return items, nil
}
