package gateway

import (
	"testing"

	"melofm/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeListBareArray(t *testing.T) {
	out, err := decodeList[model.Track]([]byte(`[{"id":"t1"},{"id":"t2"}]`))

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "t1", out[0].ID)
}

func TestDecodeListNamedEnvelope(t *testing.T) {
	raw := []byte(`{"conversations":[{"id":"c1","unreadCount":2}]}`)

	out, err := decodeList[model.Conversation](raw, "conversations")

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].UnreadCount)
}

func TestDecodeListDataFallback(t *testing.T) {
	raw := []byte(`{"data":[{"id":"t1"}]}`)

	out, err := decodeList[model.Track](raw)

	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestDecodeListKeyOrder(t *testing.T) {
	// 命名key优先于data回退
	raw := []byte(`{"songs":[{"id":"s1"}],"data":[{"id":"wrong"}]}`)

	out, err := decodeList[model.Track](raw, "songs")

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "s1", out[0].ID)
}

func TestDecodeListNullAndEmpty(t *testing.T) {
	out, err := decodeList[model.Track]([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = decodeList[model.Track](nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDecodeListUnknownEnvelope(t *testing.T) {
	_, err := decodeList[model.Track]([]byte(`{"tracks":[]}`), "songs")

	assert.Error(t, err)
}
