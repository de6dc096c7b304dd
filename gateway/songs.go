package gateway

import (
	"context"
	"fmt"

	"melofm/model"
)

// Songs returns the full song catalog.
func (c *Client) Songs(ctx context.Context) ([]model.Track, error) {
	return getList[model.Track](ctx, c, "/api/songs", "songs")
}

// Trending returns the trending section, newest-hottest first.
func (c *Client) Trending(ctx context.Context, limit int) ([]model.Track, error) {
	return getList[model.Track](ctx, c, fmt.Sprintf("/api/songs/trending?limit=%d", limit), "songs")
}

// NewReleases returns the new-releases section.
func (c *Client) NewReleases(ctx context.Context, limit int) ([]model.Track, error) {
	return getList[model.Track](ctx, c, fmt.Sprintf("/api/songs/new-releases?limit=%d", limit), "songs")
}
