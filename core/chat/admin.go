package chat

import (
	"context"
	"sync"
	"time"

	"melofm/core/feed"
	"melofm/logger"
	"melofm/model"
	"melofm/push"
)

// AdminAPI is the slice of the gateway the admin desk consumes.
type AdminAPI interface {
	Conversations(ctx context.Context) ([]*model.Conversation, error)
	ChatMessages(ctx context.Context, chatID string) ([]*model.Message, error)
	SendChatMessage(ctx context.Context, req *model.SendMessageRequest) error
	UpdateRequestStatus(ctx context.Context, messageID, status string) error
	DeleteChatMessage(ctx context.Context, messageID string) error
	MarkChatRead(ctx context.Context, chatID string) error
}

// AdminDesk is the admin chat dashboard: the conversation list plus one
// selected thread. The list is kept fresh by a periodic poll and by
// push-triggered refetches; pushes that only announce "the list changed" go
// through a trailing debounce so a burst costs a single request.
type AdminDesk struct {
	api           AdminAPI
	channel       *push.Channel
	adminID       string
	conversations *feed.ConversationFeed
	thread        *feed.MessageFeed
	refresher     *feed.Refresher
	pollInterval  time.Duration

	mu      sync.Mutex
	mounted bool
	offs    []func()
	stop    chan struct{}
}

// NewAdminDesk creates the dashboard service. debounceWindow is the quiet
// window for coalesced refetches; onChange fires on any list or thread
// change and may be nil.
func NewAdminDesk(api AdminAPI, channel *push.Channel, adminID string, pollInterval, debounceWindow time.Duration, onChange func()) *AdminDesk {
	d := &AdminDesk{
		api:           api,
		channel:       channel,
		adminID:       adminID,
		conversations: feed.NewConversationFeed(onChange),
		thread:        feed.NewMessageFeed(onChange),
		pollInterval:  pollInterval,
	}
	d.refresher = feed.NewRefresher(debounceWindow, d.refetchConversations)
	return d
}

// Mount joins the admin room, subscribes to pushes, loads the list, and
// starts the poll loop.
func (d *AdminDesk) Mount(ctx context.Context) {
	d.mu.Lock()
	if d.mounted {
		d.mu.Unlock()
		return
	}
	d.mounted = true
	d.stop = make(chan struct{})
	d.channel.JoinUser(d.adminID)
	d.offs = append(d.offs,
		d.channel.On(push.EventChatMessageAdmin, d.handleMessage),
		d.channel.On(push.EventRequestUpdated, d.handleMessage),
		d.channel.On(push.EventMessageDeleted, d.handleMessageDeleted),
		d.channel.On(push.EventChatNew, d.handleListChanged),
		d.channel.On(push.EventChatDeleted, d.handleChatDeleted),
	)
	stop := d.stop
	d.mu.Unlock()

	if items, err := d.api.Conversations(ctx); err != nil {
		logger.Warn("initial conversation load failed", logger.ErrorField(err))
	} else if ctx.Err() == nil {
		d.conversations.Replace(items)
	}
	go d.pollLoop(stop)
}

// Unmount stops the poll loop and de-registers every push handler. A
// debounced refetch that fires afterwards sees mounted=false and is dropped.
func (d *AdminDesk) Unmount() {
	d.mu.Lock()
	if !d.mounted {
		d.mu.Unlock()
		return
	}
	d.mounted = false
	offs := d.offs
	d.offs = nil
	close(d.stop)
	d.mu.Unlock()

	for _, off := range offs {
		off()
	}
}

func (d *AdminDesk) pollLoop(stop chan struct{}) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.refetchConversations()
		case <-stop:
			return
		}
	}
}

// refetchConversations reloads the list. A failure keeps the previous list.
func (d *AdminDesk) refetchConversations() {
	d.mu.Lock()
	mounted := d.mounted
	d.mu.Unlock()
	if !mounted {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	items, err := d.api.Conversations(ctx)
	if err != nil {
		logger.Warn("conversation refetch failed", logger.ErrorField(err))
		return
	}
	d.conversations.Replace(items)
}

// SelectChat opens one conversation: switches the thread feed, joins its
// room, loads its history, and marks it read.
func (d *AdminDesk) SelectChat(ctx context.Context, chatID string) error {
	d.thread.SetChat(chatID)
	d.channel.JoinChat(chatID)

	messages, err := d.api.ChatMessages(ctx, chatID)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	d.thread.Replace(chatID, messages)

	if err := d.api.MarkChatRead(ctx, chatID); err != nil {
		logger.Warn("mark chat read failed", logger.ErrorField(err))
	} else {
		d.conversations.MarkRead(chatID)
	}
	return nil
}

// Reply sends an admin reply into the selected conversation. No local
// append; the chat:message:admin echo carries it back.
func (d *AdminDesk) Reply(ctx context.Context, text string) error {
	return d.api.SendChatMessage(ctx, &model.SendMessageRequest{
		ChatID:  d.thread.ChatID(),
		Message: text,
	})
}

// UpdateRequestStatus approves/rejects/completes a music request. The
// updated message comes back over the push channel.
func (d *AdminDesk) UpdateRequestStatus(ctx context.Context, messageID, status string) error {
	return d.api.UpdateRequestStatus(ctx, messageID, status)
}

// DeleteMessage removes one message.
func (d *AdminDesk) DeleteMessage(ctx context.Context, messageID string) error {
	return d.api.DeleteChatMessage(ctx, messageID)
}

// Conversations returns the current list, read-only.
func (d *AdminDesk) Conversations() []*model.Conversation {
	return d.conversations.Items()
}

// Thread returns the selected conversation's messages, read-only.
func (d *AdminDesk) Thread() []*model.Message {
	return d.thread.Items()
}

// SelectedChat returns the selected conversation id.
func (d *AdminDesk) SelectedChat() string {
	return d.thread.ChatID()
}

// TriggerRefetch feeds the debounced "list changed" signal. Exposed for the
// bridge layer.
func (d *AdminDesk) TriggerRefetch() {
	d.refresher.Trigger()
}

func (d *AdminDesk) handleMessage(data ...interface{}) {
	var msg model.Message
	if err := push.DecodePayload(data, &msg); err != nil {
		logger.Warn("bad admin chat payload", logger.ErrorField(err))
		return
	}
	// 消息进入当前选中的会话；会话列表的lastMessage走合并后的重拉
	d.thread.Apply(&msg)
	d.refresher.Trigger()
}

func (d *AdminDesk) handleMessageDeleted(data ...interface{}) {
	var payload struct {
		MessageID string `json:"messageId"`
	}
	if err := push.DecodePayload(data, &payload); err != nil {
		logger.Warn("bad message-deleted payload", logger.ErrorField(err))
		return
	}
	d.thread.Remove(payload.MessageID)
	d.refresher.Trigger()
}

func (d *AdminDesk) handleListChanged(data ...interface{}) {
	d.refresher.Trigger()
}

func (d *AdminDesk) handleChatDeleted(data ...interface{}) {
	var payload struct {
		ChatID string `json:"chatId"`
	}
	if err := push.DecodePayload(data, &payload); err != nil {
		logger.Warn("bad chat-deleted payload", logger.ErrorField(err))
		return
	}
	d.conversations.Remove(payload.ChatID)
	if d.thread.ChatID() == payload.ChatID {
		d.thread.SetChat("")
	}
}
