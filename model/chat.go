package model

import "time"

// RequestData carries the song-request payload attached to a chat message.
type RequestData struct {
	SongName    string `json:"songName" validate:"required"`
	ArtistName  string `json:"artistName" validate:"required"`
	MovieName   string `json:"movieName"`
	YoutubeLink string `json:"youtubeLink"`
	Status      string `json:"status,omitempty"` // pending, approved, rejected, completed
}

// Message is a single chat message. Identity key is ID with LegacyID as a
// fallback for older backend payloads that still emit "_id".
type Message struct {
	ID          string       `json:"id"`
	LegacyID    string       `json:"_id,omitempty"`
	ChatID      string       `json:"chatId"`
	SenderID    string       `json:"senderId"`
	SenderType  string       `json:"senderType"` // "user" or "admin"
	Message     string       `json:"message"`
	IsRequest   bool         `json:"isRequest"`
	RequestData *RequestData `json:"requestData,omitempty"`
	IsRead      bool         `json:"isRead"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Key returns the identity key used by feed reconciliation.
func (m *Message) Key() string {
	if m.ID != "" {
		return m.ID
	}
	return m.LegacyID
}

// Same reports whether the mutable field subset is unchanged. Immutable
// fields are not compared; two messages with equal keys are the same entity.
func (m *Message) Same(other *Message) bool {
	if m.IsRead != other.IsRead {
		return false
	}
	return m.requestStatus() == other.requestStatus()
}

func (m *Message) requestStatus() string {
	if m.RequestData == nil {
		return ""
	}
	return m.RequestData.Status
}

// ConversationUser is the user summary embedded in a conversation row.
type ConversationUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// Conversation is one row of the admin-side conversation list.
type Conversation struct {
	ID            string           `json:"id"`
	LegacyID      string           `json:"_id,omitempty"`
	UserID        string           `json:"userId"`
	User          ConversationUser `json:"user"`
	LastMessage   string           `json:"lastMessage"`
	LastMessageAt time.Time        `json:"lastMessageAt"`
	UnreadCount   int              `json:"unreadCount"`
}

func (c *Conversation) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return c.LegacyID
}

// Same compares the shallow subset that decides whether the local copy is
// replaced on a bulk refresh. Replacing on identical payloads causes flicker.
func (c *Conversation) Same(other *Conversation) bool {
	return c.UnreadCount == other.UnreadCount &&
		c.LastMessage == other.LastMessage &&
		c.LastMessageAt.Equal(other.LastMessageAt)
}

// ChatThread is the user-side chat thread returned by GET /api/chat/user.
type ChatThread struct {
	ChatID   string     `json:"chatId"`
	Messages []*Message `json:"messages"`
}

// SendMessageRequest is the outbound body for POST /api/chat/message.
type SendMessageRequest struct {
	ChatID      string       `json:"chatId,omitempty"`
	Message     string       `json:"message"`
	IsRequest   bool         `json:"isRequest"`
	RequestData *RequestData `json:"requestData,omitempty"`
}
