package notify

import (
	"encoding/json"
	"testing"

	"melofm/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePatternBeatsTypeDefault(t *testing.T) {
	// 类型说rejected，文案说通过：以文案匹配为准
	n := &model.Notification{
		Type:    model.NotificationSongRejected,
		Title:   "歌曲审核通过",
		Message: "你的歌曲已上线",
	}

	out := Normalize(n)

	assert.Equal(t, "Song approved", out.Title)
	assert.Equal(t, model.NotificationSongRejected, out.Type, "type is never rewritten")
}

func TestNormalizePatternInMessageOnly(t *testing.T) {
	n := &model.Notification{
		Type:    model.NotificationSystem,
		Title:   "通知",
		Message: "您的点歌成功，快去听吧",
	}

	out := Normalize(n)

	assert.Equal(t, "Request fulfilled", out.Title)
}

func TestNormalizeTypeDefaultWhenNoPattern(t *testing.T) {
	n := &model.Notification{
		Type:    model.NotificationPlaylistInvite,
		Title:   "有人邀请你",
		Message: "快来看看",
	}

	out := Normalize(n)

	assert.Equal(t, "Playlist invite", out.Title)
	assert.Equal(t, "You have been invited to collaborate on a playlist.", out.Message)
}

func TestNormalizeGenericDefaultForUnknownType(t *testing.T) {
	n := &model.Notification{Type: "maintenance", Title: "系统维护"}

	out := Normalize(n)

	assert.Equal(t, "Notification", out.Title)
}

func TestNormalizeLeavesEnglishAlone(t *testing.T) {
	n := &model.Notification{
		Type:    model.NotificationSongApproved,
		Title:   "Song approved",
		Message: "Great track, it is live now.",
	}

	out := Normalize(n)

	assert.Equal(t, n.Title, out.Title)
	assert.Equal(t, n.Message, out.Message)
}

func TestNormalizePreservesMetadataAndInput(t *testing.T) {
	meta, err := json.Marshal(map[string]string{"reviewId": "rv42"})
	require.NoError(t, err)
	n := &model.Notification{
		ID:       "n1",
		Type:     model.NotificationSongApproved,
		Title:    "审核通过",
		Message:  "恭喜",
		Metadata: meta,
	}

	out := Normalize(n)

	assert.JSONEq(t, string(meta), string(out.Metadata), "metadata passes through untouched")
	assert.Equal(t, "审核通过", n.Title, "input must not be mutated")
	assert.NotEqual(t, n.Title, out.Title)
}
