package feed

import (
	"sync"

	"melofm/model"
)

// ConversationFeed owns the admin-side conversation list. It is refreshed
// wholesale from polling plus push-triggered refetches; a redundant payload
// keeps the existing slice reference so observers see no change.
type ConversationFeed struct {
	mu       sync.RWMutex
	items    []*model.Conversation
	onChange func()
}

func NewConversationFeed(onChange func()) *ConversationFeed {
	if onChange == nil {
		onChange = func() {}
	}
	return &ConversationFeed{onChange: onChange}
}

// Replace reconciles a polled list. A failed refetch must not reach here:
// the previous list is never cleared on error.
func (f *ConversationFeed) Replace(incoming []*model.Conversation) {
	f.mu.Lock()
	next, changed := MergeList(f.items, incoming)
	f.items = next
	f.mu.Unlock()

	if changed {
		f.onChange()
	}
}

// MarkRead zeroes the unread counter of one conversation locally.
func (f *ConversationFeed) MarkRead(chatID string) {
	f.mu.Lock()
	changed := false
	for i, conv := range f.items {
		if conv.Key() == chatID && conv.UnreadCount != 0 {
			updated := *conv
			updated.UnreadCount = 0
			next := make([]*model.Conversation, len(f.items))
			copy(next, f.items)
			next[i] = &updated
			f.items = next
			changed = true
			break
		}
	}
	f.mu.Unlock()

	if changed {
		f.onChange()
	}
}

// Remove drops a deleted conversation.
func (f *ConversationFeed) Remove(chatID string) {
	f.mu.Lock()
	next, changed := RemoveByKey(f.items, chatID)
	f.items = next
	f.mu.Unlock()

	if changed {
		f.onChange()
	}
}

// Items returns the current list, read-only.
func (f *ConversationFeed) Items() []*model.Conversation {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.items
}
