package cache

import (
	"testing"

	"melofm/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimRecentPrepends(t *testing.T) {
	items := []model.RecentTrack{{ID: "a"}, {ID: "b"}}

	out := TrimRecent(items, model.RecentTrack{ID: "c"}, RecentStoreLimit)

	require.Len(t, out, 3)
	assert.Equal(t, "c", out[0].ID)
}

func TestTrimRecentDedupesToFront(t *testing.T) {
	items := []model.RecentTrack{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	// 重播的歌曲移到最前，不产生重复
	out := TrimRecent(items, model.RecentTrack{ID: "b", PlayedAt: 99}, RecentStoreLimit)

	require.Len(t, out, 3)
	assert.Equal(t, "b", out[0].ID)
	assert.EqualValues(t, 99, out[0].PlayedAt)
	assert.Equal(t, "a", out[1].ID)
	assert.Equal(t, "c", out[2].ID)
}

func TestTrimRecentCapsAtLimit(t *testing.T) {
	var items []model.RecentTrack
	for i := 0; i < RecentStoreLimit; i++ {
		items = append(items, model.RecentTrack{ID: string(rune('a' + i))})
	}

	out := TrimRecent(items, model.RecentTrack{ID: "zzz"}, RecentStoreLimit)

	require.Len(t, out, RecentStoreLimit)
	assert.Equal(t, "zzz", out[0].ID)
	// 最老的被挤掉
	assert.Equal(t, string(rune('a'+RecentStoreLimit-2)), out[RecentStoreLimit-1].ID)
}
