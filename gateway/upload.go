package gateway

import (
	"context"
	"io"
)

// UploadImage posts a cover image through the backend's multipart endpoint.
func (c *Client) UploadImage(ctx context.Context, filename string, file io.Reader) error {
	return c.UploadFile(ctx, "/api/upload", "file", filename, file, nil)
}

// UploadAudio posts an audio file with its display metadata.
func (c *Client) UploadAudio(ctx context.Context, filename string, file io.Reader, title, artist string) error {
	extra := map[string]string{
		"title":  title,
		"artist": artist,
	}
	return c.UploadFile(ctx, "/api/upload-audio", "file", filename, file, extra)
}
