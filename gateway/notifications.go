package gateway

import (
	"context"
	"fmt"

	"melofm/model"
)

// Notifications loads all notifications for a user, newest first.
func (c *Client) Notifications(ctx context.Context, userID string) ([]*model.Notification, error) {
	return getList[*model.Notification](ctx, c, "/api/notifications/"+userID, "notifications")
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	return c.Put(ctx, fmt.Sprintf("/api/notifications/%s/read", notificationID), nil, nil)
}

// MarkAllNotificationsRead marks every notification of a user as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return c.Put(ctx, fmt.Sprintf("/api/notifications/user/%s/read-all", userID), nil, nil)
}
