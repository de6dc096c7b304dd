package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// The backend wraps list responses inconsistently: sometimes a bare array,
// sometimes {"conversations": [...]}, sometimes {"data": [...]}. Every list
// endpoint goes through decodeList so downstream code only ever sees one
// canonical shape.

// decodeList decodes a list response, unwrapping the envelope if present.
// keys are tried in order before the generic "data" fallback.
func decodeList[T any](data []byte, keys ...string) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		return list, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode list envelope: %w", err)
	}

	for _, key := range append(keys, "data") {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var list []T
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("failed to decode %q list: %w", key, err)
		}
		return list, nil
	}

	return nil, fmt.Errorf("no recognized list field in response")
}

// getList fetches path and normalizes the response through decodeList.
func getList[T any](ctx context.Context, c *Client, path string, keys ...string) ([]T, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, path, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw, keys...)
}
