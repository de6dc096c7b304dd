package model

import "time"

// LikedPlaylistName is the reserved playlist name backing like/unlike.
const LikedPlaylistName = "Liked Songs"

// Playlist as served by the backend.
type Playlist struct {
	ID        string    `json:"id"`
	LegacyID  string    `json:"_id,omitempty"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CoverURL  string    `json:"coverUrl"`
	IsPublic  bool      `json:"isPublic"`
	Songs     []Track   `json:"songs"`
	CreatedAt time.Time `json:"createdAt"`
}

// Key 返回歌单的标识键，老接口仍可能返回 "_id"
func (p *Playlist) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.LegacyID
}

// CreatePlaylistRequest is the outbound body for POST /api/playlists.
type CreatePlaylistRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	IsPublic bool   `json:"isPublic"`
}

// PlaylistSongRequest is the outbound body for add/remove song calls.
type PlaylistSongRequest struct {
	SongID string `json:"songId" validate:"required"`
}
