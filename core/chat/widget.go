package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"melofm/core/feed"
	"melofm/logger"
	"melofm/model"
	"melofm/push"

	"github.com/go-playground/validator/v10"
)

// API is the slice of the gateway the chat widget consumes.
type API interface {
	UserChat(ctx context.Context) (*model.ChatThread, error)
	SendChatMessage(ctx context.Context, req *model.SendMessageRequest) error
}

var validate = validator.New()

// History persists the thread locally so the widget can render the last
// known conversation before (or without) a network answer. Optional.
type History interface {
	SaveMessages(items []*model.Message) error
	LastThread(limit int) (string, []*model.Message, error)
}

// Widget is the user-side chat: one thread with the admin team, used to chat
// and to file music requests. Sends are not appended optimistically; the
// message shows up once the backend echoes it over the push channel, which
// keeps the merge path single and duplicate-free.
type Widget struct {
	api     API
	channel *push.Channel
	feed    *feed.MessageFeed
	history History

	mu      sync.Mutex
	mounted bool
	offs    []func()
}

// NewWidget creates the chat widget. history may be nil; onChange fires on
// every visible-thread change and may be nil.
func NewWidget(api API, channel *push.Channel, history History, onChange func()) *Widget {
	return &Widget{
		api:     api,
		channel: channel,
		feed:    feed.NewMessageFeed(onChange),
		history: history,
	}
}

// Mount loads the thread, joins its room, and subscribes to pushes.
func (w *Widget) Mount(ctx context.Context) error {
	w.mu.Lock()
	if w.mounted {
		w.mu.Unlock()
		return nil
	}
	w.mounted = true
	w.offs = append(w.offs,
		w.channel.On(push.EventChatMessage, w.handleMessage),
		w.channel.On(push.EventRequestUpdated, w.handleMessage),
		w.channel.On(push.EventMessageDeleted, w.handleDeleted),
	)
	w.mu.Unlock()

	thread, err := w.api.UserChat(ctx)
	if err != nil {
		// 线程加载失败时回放缓存的上一次会话，仍报错由桥接层转toast
		if w.history != nil {
			if chatID, cached, herr := w.history.LastThread(100); herr == nil && chatID != "" {
				w.feed.SetChat(chatID)
				w.feed.Replace(chatID, cached)
				w.channel.JoinChat(chatID)
			}
		}
		return fmt.Errorf("failed to load chat thread: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	w.feed.SetChat(thread.ChatID)
	w.feed.Replace(thread.ChatID, thread.Messages)
	w.channel.JoinChat(thread.ChatID)
	w.persist(thread.Messages)
	return nil
}

// Unmount de-registers all push handlers.
func (w *Widget) Unmount() {
	w.mu.Lock()
	offs := w.offs
	w.offs = nil
	w.mounted = false
	w.mu.Unlock()

	for _, off := range offs {
		off()
	}
}

// SendMessage posts a plain text message. Nothing is appended locally.
func (w *Widget) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("message text is required")
	}
	return w.api.SendChatMessage(ctx, &model.SendMessageRequest{
		ChatID:  w.feed.ChatID(),
		Message: text,
	})
}

// SendRequest posts a music request. Song and artist are required; the
// check happens client-side and no request is sent when it fails.
func (w *Widget) SendRequest(ctx context.Context, req *model.RequestData) error {
	out := &model.RequestData{
		SongName:    strings.TrimSpace(req.SongName),
		ArtistName:  strings.TrimSpace(req.ArtistName),
		MovieName:   strings.TrimSpace(req.MovieName),
		YoutubeLink: strings.TrimSpace(req.YoutubeLink),
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("song name and artist name are required: %w", err)
	}
	return w.api.SendChatMessage(ctx, &model.SendMessageRequest{
		ChatID:      w.feed.ChatID(),
		IsRequest:   true,
		RequestData: out,
	})
}

// Messages returns the visible thread, read-only, oldest first.
func (w *Widget) Messages() []*model.Message {
	return w.feed.Items()
}

// ChatID returns the thread id once loaded.
func (w *Widget) ChatID() string {
	return w.feed.ChatID()
}

// HandleMessageEvent merges one pushed message payload. Exposed for the
// bridge layer; push handlers land here too.
func (w *Widget) HandleMessageEvent(msg *model.Message) {
	if w.feed.Apply(msg) {
		w.persist([]*model.Message{msg})
	}
}

func (w *Widget) handleMessage(data ...interface{}) {
	var msg model.Message
	if err := push.DecodePayload(data, &msg); err != nil {
		logger.Warn("bad chat message payload", logger.ErrorField(err))
		return
	}
	w.HandleMessageEvent(&msg)
}

func (w *Widget) persist(items []*model.Message) {
	if w.history == nil || len(items) == 0 {
		return
	}
	if err := w.history.SaveMessages(items); err != nil {
		logger.Warn("chat cache write failed", logger.ErrorField(err))
	}
}

func (w *Widget) handleDeleted(data ...interface{}) {
	var payload struct {
		MessageID string `json:"messageId"`
	}
	if err := push.DecodePayload(data, &payload); err != nil {
		logger.Warn("bad message-deleted payload", logger.ErrorField(err))
		return
	}
	w.feed.Remove(payload.MessageID)
}
