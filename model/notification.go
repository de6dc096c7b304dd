package model

import (
	"encoding/json"
	"time"
)

// Notification types emitted by the backend.
const (
	NotificationSongApproved     = "song_approved"
	NotificationSongRejected     = "song_rejected"
	NotificationRequestCompleted = "request_completed"
	NotificationPlaylistInvite   = "playlist_invite"
	NotificationSystem           = "system"
)

// Notification is a single entry of the notification feed. Metadata is kept
// raw so business logic (review actions keyed on metadata.reviewId) sees the
// payload exactly as the backend sent it, regardless of display normalization.
type Notification struct {
	ID        string          `json:"id"`
	LegacyID  string          `json:"_id,omitempty"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	IsRead    bool            `json:"isRead"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (n *Notification) Key() string {
	if n.ID != "" {
		return n.ID
	}
	return n.LegacyID
}

// Same compares the mutable subset; notifications only ever flip IsRead.
func (n *Notification) Same(other *Notification) bool {
	return n.IsRead == other.IsRead
}
