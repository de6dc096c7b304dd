package chat

import (
	"context"
	"testing"

	"melofm/model"
	"melofm/push"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatAPI struct {
	thread *model.ChatThread
	sent   []*model.SendMessageRequest
}

func (f *fakeChatAPI) UserChat(ctx context.Context) (*model.ChatThread, error) {
	return f.thread, nil
}

func (f *fakeChatAPI) SendChatMessage(ctx context.Context, req *model.SendMessageRequest) error {
	f.sent = append(f.sent, req)
	return nil
}

func TestSendMessageDoesNotAppendLocally(t *testing.T) {
	api := &fakeChatAPI{}
	w := NewWidget(api, nil, nil, nil)

	require.NoError(t, w.SendMessage(context.Background(), "  hello  "))

	require.Len(t, api.sent, 1)
	assert.Equal(t, "hello", api.sent[0].Message)
	assert.Empty(t, w.Messages(), "thread only grows on the push echo")
}

func TestSendMessageRejectsEmpty(t *testing.T) {
	api := &fakeChatAPI{}
	w := NewWidget(api, nil, nil, nil)

	assert.Error(t, w.SendMessage(context.Background(), "   "))
	assert.Empty(t, api.sent)
}

func TestSendRequestPayloadShape(t *testing.T) {
	api := &fakeChatAPI{}
	w := NewWidget(api, nil, nil, nil)

	err := w.SendRequest(context.Background(), &model.RequestData{
		SongName:   " Imagine ",
		ArtistName: " John Lennon ",
	})
	require.NoError(t, err)

	require.Len(t, api.sent, 1)
	got := api.sent[0]
	assert.True(t, got.IsRequest)
	assert.Empty(t, got.Message)
	require.NotNil(t, got.RequestData)
	assert.Equal(t, "Imagine", got.RequestData.SongName)
	assert.Equal(t, "John Lennon", got.RequestData.ArtistName)
	assert.Empty(t, got.RequestData.MovieName)
	assert.Empty(t, got.RequestData.YoutubeLink)
	assert.Empty(t, w.Messages(), "no optimistic append for requests either")
}

func TestSendRequestValidatesRequiredFields(t *testing.T) {
	api := &fakeChatAPI{}
	w := NewWidget(api, nil, nil, nil)

	err := w.SendRequest(context.Background(), &model.RequestData{SongName: "Imagine"})
	assert.Error(t, err)

	// 只有空白也算缺失
	err = w.SendRequest(context.Background(), &model.RequestData{SongName: "Imagine", ArtistName: "   "})
	assert.Error(t, err)

	assert.Empty(t, api.sent, "invalid request never reaches the backend")
}

func TestRequestFlowAppendsOnEchoOnly(t *testing.T) {
	api := &fakeChatAPI{thread: &model.ChatThread{ChatID: "c1"}}
	// 空地址的连接失败后通道处于断开态，订阅与房间排队仍可用
	channel := push.Connect(push.Config{ServerURL: ""})
	defer channel.Close()

	changes := 0
	w := NewWidget(api, channel, nil, func() { changes++ })
	require.NoError(t, w.Mount(context.Background()))
	defer w.Unmount()
	changes = 0

	require.NoError(t, w.SendRequest(context.Background(), &model.RequestData{
		SongName:   "Imagine",
		ArtistName: "John Lennon",
	}))
	require.Len(t, api.sent, 1)
	assert.Equal(t, "c1", api.sent[0].ChatID)
	assert.Empty(t, w.Messages())
	assert.Zero(t, changes)

	// 后端回声到达：恰好追加一次
	echo := &model.Message{
		ID: "m1", ChatID: "c1", SenderType: "user", IsRequest: true,
		RequestData: &model.RequestData{SongName: "Imagine", ArtistName: "John Lennon", Status: "pending"},
	}
	w.HandleMessageEvent(echo)
	require.Len(t, w.Messages(), 1)
	assert.Equal(t, 1, changes)

	// 重复投递不翻倍
	dup := *echo
	w.HandleMessageEvent(&dup)
	assert.Len(t, w.Messages(), 1)
	assert.Equal(t, 1, changes)

	// 状态更新替换同一条目
	updated := *echo
	updated.RequestData = &model.RequestData{SongName: "Imagine", ArtistName: "John Lennon", Status: "approved"}
	w.HandleMessageEvent(&updated)
	require.Len(t, w.Messages(), 1)
	assert.Equal(t, "approved", w.Messages()[0].RequestData.Status)
	assert.Equal(t, 2, changes)
}
