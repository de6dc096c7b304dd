package feed

import (
	"testing"

	"melofm/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(id, chatID string, read bool) *model.Message {
	return &model.Message{ID: id, ChatID: chatID, Message: "hi", IsRead: read}
}

func TestMergeOneUnchangedKeepsReference(t *testing.T) {
	list := []*model.Message{msg("m1", "c1", false), msg("m2", "c1", false)}

	// 同一实体、可变子集未变：必须返回原切片引用
	out, changed := MergeOne(list, msg("m2", "c1", false), false)

	assert.False(t, changed)
	assert.Same(t, &list[0], &out[0], "unchanged merge must return the input slice")
}

func TestMergeOneReplacesInPlace(t *testing.T) {
	list := []*model.Message{msg("m1", "c1", false), msg("m2", "c1", false)}

	updated := msg("m1", "c1", true)
	out, changed := MergeOne(list, updated, false)

	require.True(t, changed)
	require.Len(t, out, 2)
	assert.Same(t, updated, out[0], "replacement keeps position")
	assert.Same(t, list[1], out[1])
	// 原切片不被改动
	assert.False(t, list[0].IsRead)
}

func TestMergeOneAppendsUnknown(t *testing.T) {
	list := []*model.Message{msg("m1", "c1", false)}

	out, changed := MergeOne(list, msg("m2", "c1", false), false)

	require.True(t, changed)
	require.Len(t, out, 2)
	assert.Equal(t, "m2", out[1].Key())
}

func TestMergeOnePrependsWhenFront(t *testing.T) {
	list := []*model.Notification{{ID: "n1"}}

	out, changed := MergeOne(list, &model.Notification{ID: "n2"}, true)

	require.True(t, changed)
	require.Len(t, out, 2)
	assert.Equal(t, "n2", out[0].Key())
	assert.Equal(t, "n1", out[1].Key())
}

func TestMergeOneLegacyIDFallback(t *testing.T) {
	list := []*model.Message{{LegacyID: "legacy1", ChatID: "c1"}}

	// 同一条消息，新payload用id字段，老的只有_id
	out, changed := MergeOne(list, &model.Message{ID: "legacy1", ChatID: "c1"}, false)

	assert.False(t, changed)
	assert.Len(t, out, 1)
}

func TestMergeOneDuplicateEchoIsNoop(t *testing.T) {
	list := []*model.Message{}
	first := msg("m1", "c1", false)

	out, changed := MergeOne(list, first, false)
	require.True(t, changed)
	require.Len(t, out, 1)

	// 同一事件送达两次：第二次不追加也不通知
	out2, changed := MergeOne(out, msg("m1", "c1", false), false)
	assert.False(t, changed)
	assert.Len(t, out2, 1)
}

func TestMergeListKeepsLocalReferenceWhenEqual(t *testing.T) {
	local := []*model.Message{msg("m1", "c1", false), msg("m2", "c1", true)}
	incoming := []*model.Message{msg("m1", "c1", false), msg("m2", "c1", true)}

	out, changed := MergeList(local, incoming)

	assert.False(t, changed)
	assert.Same(t, &local[0], &out[0], "identical refresh must keep the local slice")
}

func TestMergeListReplacesOnDifference(t *testing.T) {
	local := []*model.Message{msg("m1", "c1", false)}

	t.Run("length", func(t *testing.T) {
		incoming := []*model.Message{msg("m1", "c1", false), msg("m2", "c1", false)}
		out, changed := MergeList(local, incoming)
		assert.True(t, changed)
		assert.Len(t, out, 2)
	})

	t.Run("identity", func(t *testing.T) {
		incoming := []*model.Message{msg("m9", "c1", false)}
		out, changed := MergeList(local, incoming)
		assert.True(t, changed)
		assert.Equal(t, "m9", out[0].Key())
	})

	t.Run("mutable subset", func(t *testing.T) {
		incoming := []*model.Message{msg("m1", "c1", true)}
		out, changed := MergeList(local, incoming)
		assert.True(t, changed)
		assert.True(t, out[0].IsRead)
	})
}

func TestMergeListRequestStatusCounts(t *testing.T) {
	mkReq := func(status string) *model.Message {
		return &model.Message{ID: "m1", ChatID: "c1", IsRequest: true,
			RequestData: &model.RequestData{SongName: "s", ArtistName: "a", Status: status}}
	}
	local := []*model.Message{mkReq("pending")}
	incoming := []*model.Message{mkReq("approved")}

	out, changed := MergeList(local, incoming)

	assert.True(t, changed, "request status change must be detected")
	assert.Equal(t, "approved", out[0].RequestData.Status)
}

func TestRemoveByKey(t *testing.T) {
	list := []*model.Message{msg("m1", "c1", false), msg("m2", "c1", false)}

	out, changed := RemoveByKey(list, "m1")
	require.True(t, changed)
	require.Len(t, out, 1)
	assert.Equal(t, "m2", out[0].Key())

	out2, changed := RemoveByKey(out, "missing")
	assert.False(t, changed)
	assert.Same(t, &out[0], &out2[0])
}
