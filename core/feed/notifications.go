package feed

import (
	"sync"

	"melofm/model"
)

// NotificationFeed owns the notification list, presented newest-first.
// Entries are never removed, only marked read.
type NotificationFeed struct {
	mu       sync.RWMutex
	items    []*model.Notification
	onChange func()
}

func NewNotificationFeed(onChange func()) *NotificationFeed {
	if onChange == nil {
		onChange = func() {}
	}
	return &NotificationFeed{onChange: onChange}
}

// Replace reconciles a full reload.
func (f *NotificationFeed) Replace(incoming []*model.Notification) {
	f.mu.Lock()
	next, changed := MergeList(f.items, incoming)
	f.items = next
	f.mu.Unlock()

	if changed {
		f.onChange()
	}
}

// Apply merges one pushed notification, prepending unknown entries.
func (f *NotificationFeed) Apply(n *model.Notification) bool {
	f.mu.Lock()
	next, changed := MergeOne(f.items, n, true)
	f.items = next
	f.mu.Unlock()

	if changed {
		f.onChange()
	}
	return changed
}

// MarkRead flips one notification to read locally.
func (f *NotificationFeed) MarkRead(notificationID string) {
	f.mu.Lock()
	changed := false
	for i, n := range f.items {
		if n.Key() == notificationID && !n.IsRead {
			updated := *n
			updated.IsRead = true
			next := make([]*model.Notification, len(f.items))
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

// MarkAllRead flips every notification to read locally.
func (f *NotificationFeed) MarkAllRead() {
	f.mu.Lock()
	changed := false
	next := make([]*model.Notification, len(f.items))
	for i, n := range f.items {
		if n.IsRead {
			next[i] = n
			continue
		}
		updated := *n
		updated.IsRead = true
		next[i] = &updated
		changed = true
	}
	if changed {
		f.items = next
	}
	f.mu.Unlock()

	if changed {
		f.onChange()
	}
}

// UnreadCount returns the number of unread notifications.
func (f *NotificationFeed) UnreadCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	count := 0
	for _, n := range f.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// Items returns the current list, read-only, newest first.
func (f *NotificationFeed) Items() []*model.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.items
}
