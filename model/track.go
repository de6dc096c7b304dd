package model

// Track represents a playable track as served by the backend API.
// Immutable once loaded; the player owns its copy for the lifetime of playback.
type Track struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Artist          string  `json:"artist"`
	CoverURL        string  `json:"coverUrl"`
	AudioURL        string  `json:"audioUrl"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// RecentTrack is a trimmed Track kept in the recently-played store.
type RecentTrack struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	CoverURL string `json:"coverUrl"`
	PlayedAt int64  `json:"playedAt"` // unix毫秒时间戳
}
