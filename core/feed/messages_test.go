package feed

import (
	"testing"

	"melofm/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageFeedIgnoresOtherChats(t *testing.T) {
	changes := 0
	f := NewMessageFeed(func() { changes++ })
	f.SetChat("c1")
	changes = 0

	// 旧会话的事件不能串进当前会话
	applied := f.Apply(msg("m1", "c2", false))

	assert.False(t, applied)
	assert.Empty(t, f.Items())
	assert.Zero(t, changes)
}

func TestMessageFeedSwitchClearsList(t *testing.T) {
	f := NewMessageFeed(nil)
	f.SetChat("c1")
	f.Apply(msg("m1", "c1", false))
	require.Len(t, f.Items(), 1)

	f.SetChat("c2")
	assert.Empty(t, f.Items())
	assert.Equal(t, "c2", f.ChatID())
}

func TestMessageFeedReplaceDiscardsStaleLoad(t *testing.T) {
	f := NewMessageFeed(nil)
	f.SetChat("c1")
	f.SetChat("c2")

	// c1的历史在切换后才返回，必须丢弃
	f.Replace("c1", []*model.Message{msg("m1", "c1", false)})

	assert.Empty(t, f.Items())
}

func TestMessageFeedEchoAppendsOnce(t *testing.T) {
	changes := 0
	f := NewMessageFeed(func() { changes++ })
	f.SetChat("c1")
	changes = 0

	f.Apply(msg("m1", "c1", false))
	f.Apply(msg("m1", "c1", false))

	assert.Len(t, f.Items(), 1)
	assert.Equal(t, 1, changes, "duplicate echo must not notify again")
}

func TestNotificationFeedPrependAndUnread(t *testing.T) {
	f := NewNotificationFeed(nil)
	f.Apply(&model.Notification{ID: "n1"})
	f.Apply(&model.Notification{ID: "n2"})

	items := f.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "n2", items[0].Key(), "newest first")
	assert.Equal(t, 2, f.UnreadCount())

	f.MarkRead("n2")
	assert.Equal(t, 1, f.UnreadCount())

	f.MarkAllRead()
	assert.Zero(t, f.UnreadCount())
}

func TestConversationFeedMarkRead(t *testing.T) {
	f := NewConversationFeed(nil)
	f.Replace([]*model.Conversation{
		{ID: "c1", UnreadCount: 3},
		{ID: "c2", UnreadCount: 1},
	})

	f.MarkRead("c1")

	items := f.Items()
	require.Len(t, items, 2)
	assert.Zero(t, items[0].UnreadCount)
	assert.Equal(t, 1, items[1].UnreadCount)
}
