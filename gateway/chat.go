package gateway

import (
	"context"
	"fmt"

	"melofm/model"
)

// UserChat loads the current user's chat thread with the admin team.
func (c *Client) UserChat(ctx context.Context) (*model.ChatThread, error) {
	var chat model.ChatThread
	if err := c.Get(ctx, "/api/chat/user", &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// Conversations loads the admin-side conversation list.
func (c *Client) Conversations(ctx context.Context) ([]*model.Conversation, error) {
	return getList[*model.Conversation](ctx, c, "/api/chat/conversations", "conversations")
}

// ChatMessages loads the message history of one conversation.
func (c *Client) ChatMessages(ctx context.Context, chatID string) ([]*model.Message, error) {
	return getList[*model.Message](ctx, c, "/api/chat/"+chatID+"/messages", "messages")
}

// SendChatMessage posts a message or music request. The created message is
// NOT returned to be appended locally; the caller waits for the push echo.
func (c *Client) SendChatMessage(ctx context.Context, req *model.SendMessageRequest) error {
	return c.Post(ctx, "/api/chat/message", req, nil)
}

// UpdateRequestStatus sets the status of a music request message.
func (c *Client) UpdateRequestStatus(ctx context.Context, messageID, status string) error {
	return c.Put(ctx, fmt.Sprintf("/api/chat/request/%s/status", messageID), map[string]string{"status": status}, nil)
}

// DeleteChatMessage removes a single message.
func (c *Client) DeleteChatMessage(ctx context.Context, messageID string) error {
	return c.Delete(ctx, "/api/chat/message/"+messageID, nil)
}

// MarkChatRead marks all messages of a conversation as read.
func (c *Client) MarkChatRead(ctx context.Context, chatID string) error {
	return c.Put(ctx, "/api/chat/"+chatID+"/read", nil, nil)
}
