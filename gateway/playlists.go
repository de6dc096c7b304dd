package gateway

import (
	"context"
	"fmt"

	"melofm/model"
)

// Playlists returns the current user's playlists.
func (c *Client) Playlists(ctx context.Context) ([]model.Playlist, error) {
	return getList[model.Playlist](ctx, c, "/api/playlists", "playlists")
}

// CreatePlaylist creates a playlist and returns the created row.
func (c *Client) CreatePlaylist(ctx context.Context, req *model.CreatePlaylistRequest) (*model.Playlist, error) {
	var created model.Playlist
	if err := c.Post(ctx, "/api/playlists", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeletePlaylist removes a playlist owned by the current user.
func (c *Client) DeletePlaylist(ctx context.Context, playlistID string) error {
	return c.Delete(ctx, "/api/playlists/"+playlistID, nil)
}

// AddSongToPlaylist adds a song and returns the updated playlist, which is
// the authoritative copy callers reconcile against.
func (c *Client) AddSongToPlaylist(ctx context.Context, playlistID, songID string) (*model.Playlist, error) {
	var updated model.Playlist
	err := c.Post(ctx, fmt.Sprintf("/api/playlists/%s/add", playlistID), &model.PlaylistSongRequest{SongID: songID}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveSongFromPlaylist removes a song and returns the updated playlist.
func (c *Client) RemoveSongFromPlaylist(ctx context.Context, playlistID, songID string) (*model.Playlist, error) {
	var updated model.Playlist
	err := c.Post(ctx, fmt.Sprintf("/api/playlists/%s/remove", playlistID), &model.PlaylistSongRequest{SongID: songID}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// TogglePlaylistPublic flips a playlist's public flag.
func (c *Client) TogglePlaylistPublic(ctx context.Context, playlistID string) error {
	return c.Put(ctx, fmt.Sprintf("/api/playlists/%s/toggle-public", playlistID), nil, nil)
}

// InviteToPlaylist invites another user as a collaborator.
func (c *Client) InviteToPlaylist(ctx context.Context, playlistID, userID string) error {
	return c.Post(ctx, fmt.Sprintf("/api/playlists/%s/invite", playlistID), map[string]string{"userId": userID}, nil)
}
