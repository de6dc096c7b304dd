package feed

import (
	"sync"

	"melofm/model"
)

// MessageFeed owns the visible message list of one conversation. Push
// handlers never capture the selected chat id by value: they consult the
// feed, which always holds the latest selection, so a handler registered
// while chat A was open cannot misfile events after the user switches to B.
type MessageFeed struct {
	mu       sync.RWMutex
	chatID   string
	items    []*model.Message
	onChange func()
}

// NewMessageFeed creates a feed. onChange fires after every effective
// mutation and may be nil.
func NewMessageFeed(onChange func()) *MessageFeed {
	if onChange == nil {
		onChange = func() {}
	}
	return &MessageFeed{onChange: onChange}
}

// SetChat switches the feed to another conversation and clears the list.
// An empty id deselects.
func (f *MessageFeed) SetChat(chatID string) {
	f.mu.Lock()
	changed := f.chatID != chatID
	f.chatID = chatID
	if changed {
		f.items = nil
	}
	f.mu.Unlock()

	if changed {
		f.onChange()
	}
}

// ChatID returns the currently selected conversation id.
func (f *MessageFeed) ChatID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.chatID
}

// Replace reconciles a freshly loaded history against the local list.
func (f *MessageFeed) Replace(chatID string, incoming []*model.Message) {
	f.mu.Lock()
	if f.chatID != chatID {
		// 历史加载返回时会话已切换，丢弃结果
		f.mu.Unlock()
		return
	}
	next, changed := MergeList(f.items, incoming)
	f.items = next
	f.mu.Unlock()

	if changed {
		f.onChange()
	}
}

// Apply merges one pushed message. Events for other conversations are
// ignored. Returns whether the list changed.
func (f *MessageFeed) Apply(msg *model.Message) bool {
	f.mu.Lock()
	if f.chatID == "" || msg.ChatID != f.chatID {
		f.mu.Unlock()
		return false
	}
	next, changed := MergeOne(f.items, msg, false)
	f.items = next
	f.mu.Unlock()

	if changed {
		f.onChange()
	}
	return changed
}

// Remove drops a deleted message.
func (f *MessageFeed) Remove(messageID string) {
	f.mu.Lock()
	next, changed := RemoveByKey(f.items, messageID)
	f.items = next
	f.mu.Unlock()

	if changed {
		f.onChange()
	}
}

// Items returns the current list. The slice is owned by the feed and must be
// treated as read-only; mutation goes through the feed's methods.
func (f *MessageFeed) Items() []*model.Message {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.items
}
