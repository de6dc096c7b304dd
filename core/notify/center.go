package notify

import (
	"context"
	"sync"

	"melofm/core/feed"
	"melofm/logger"
	"melofm/model"
	"melofm/push"
)

// API is the slice of the gateway the center consumes.
type API interface {
	Notifications(ctx context.Context, userID string) ([]*model.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
}

// History persists notifications locally so the bell renders before the
// network answers. Optional.
type History interface {
	SaveNotifications(items []*model.Notification) error
	LoadNotifications(limit int) ([]*model.Notification, error)
}

// Center is the notification bell: it owns the notification feed, one push
// channel subscription, and the read-marking calls.
type Center struct {
	api     API
	userID  string
	channel *push.Channel
	feed    *feed.NotificationFeed
	history History

	mu      sync.Mutex
	mounted bool
	offs    []func()
}

// NewCenter creates a notification center. history may be nil; onChange
// fires on every feed change and may be nil.
func NewCenter(api API, userID string, channel *push.Channel, history History, onChange func()) *Center {
	return &Center{
		api:     api,
		userID:  userID,
		channel: channel,
		feed:    feed.NewNotificationFeed(onChange),
		history: history,
	}
}

// Mount joins the user room, subscribes to pushes, and loads the list.
// Cached history is shown first; a load failure leaves it in place.
func (c *Center) Mount(ctx context.Context) {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	c.channel.JoinUser(c.userID)
	off := c.channel.On(push.EventNotificationNew, func(data ...interface{}) {
		c.handlePush(data...)
	})
	c.offs = append(c.offs, off)
	c.mu.Unlock()

	if c.history != nil {
		if cached, err := c.history.LoadNotifications(50); err == nil && len(cached) > 0 {
			c.feed.Replace(cached)
		}
	}

	c.refresh(ctx)
}

// Unmount releases the push subscription. The owning channel is closed by
// whoever opened it.
func (c *Center) Unmount() {
	c.mu.Lock()
	offs := c.offs
	c.offs = nil
	c.mounted = false
	c.mu.Unlock()

	for _, off := range offs {
		off()
	}
}

func (c *Center) refresh(ctx context.Context) {
	items, err := c.api.Notifications(ctx, c.userID)
	if err != nil {
		// 拉取失败保留现有列表，不清空
		logger.Warn("notification refresh failed", logger.ErrorField(err))
		return
	}
	if ctx.Err() != nil {
		return
	}
	c.feed.Replace(items)
	c.persist(items)
}

func (c *Center) handlePush(data ...interface{}) {
	var n model.Notification
	if err := push.DecodePayload(data, &n); err != nil {
		logger.Warn("bad notification payload", logger.ErrorField(err))
		return
	}
	if c.feed.Apply(&n) {
		c.persist([]*model.Notification{&n})
	}
}

func (c *Center) persist(items []*model.Notification) {
	if c.history == nil {
		return
	}
	if err := c.history.SaveNotifications(items); err != nil {
		logger.Warn("notification cache write failed", logger.ErrorField(err))
	}
}

// Display returns the feed normalized for presentation, newest first.
func (c *Center) Display() []*model.Notification {
	items := c.feed.Items()
	out := make([]*model.Notification, len(items))
	for i, n := range items {
		out[i] = Normalize(n)
	}
	return out
}

// UnreadCount returns the badge counter.
func (c *Center) UnreadCount() int {
	return c.feed.UnreadCount()
}

// MarkRead marks one notification read remotely, then locally.
func (c *Center) MarkRead(ctx context.Context, notificationID string) error {
	if err := c.api.MarkNotificationRead(ctx, notificationID); err != nil {
		return err
	}
	c.feed.MarkRead(notificationID)
	return nil
}

// MarkAllRead marks everything read remotely, then locally.
func (c *Center) MarkAllRead(ctx context.Context) error {
	if err := c.api.MarkAllNotificationsRead(ctx, c.userID); err != nil {
		return err
	}
	c.feed.MarkAllRead()
	return nil
}
