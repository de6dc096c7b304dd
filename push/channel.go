package push

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"melofm/logger"

	"github.com/zishang520/socket.io/clients/engine/v3/transports"
	socketio "github.com/zishang520/socket.io/clients/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"
)

// Inbound event names.
const (
	EventChatMessage      = "chat:message"
	EventChatMessageAdmin = "chat:message:admin"
	EventChatNew          = "chat:new"
	EventRequestUpdated   = "chat:request:updated"
	EventChatDeleted      = "chat:deleted"
	EventMessageDeleted   = "chat:message:deleted"
	EventNotificationNew  = "notification:new"
)

// Outbound event names.
const (
	eventJoinUser  = "join:user"
	eventJoinChat  = "join:chat"
	eventLeaveUser = "leave:user"
)

// Handler receives the raw payload of one named event.
type Handler func(data ...interface{})

// Config Socket.IO 连接配置
type Config struct {
	ServerURL string
	Path      string // 默认 "/socket.io/"
	Token     string // 可选的bearer token，随握手query传递
	Timeout   time.Duration
}

// Channel is one push-channel connection. Each mounted feature owns exactly
// one Channel, joins its rooms, and closes it on teardown. Reconnection is
// the socket.io client's own backoff; the Channel only re-joins rooms when
// the connection comes back.
type Channel struct {
	mu        sync.Mutex
	socket    *socketio.Socket
	connected bool
	closed    bool

	// room name -> join event; re-emitted on every (re)connect
	joined map[string]string
	// joins requested before the connection opened; flushed on connect
	pending []pendingJoin

	// event name -> registered handlers; the socket gets a single dispatch
	// handler per event so de-registration never depends on the library
	handlers map[string][]*registration
}

type pendingJoin struct {
	event string
	room  string
}

type registration struct {
	fn Handler
}

// Connect opens a channel. A failed connect is not fatal: the channel comes
// back in a disconnected state and callers fall back to polling.
func Connect(cfg Config) *Channel {
	if cfg.Path == "" {
		cfg.Path = "/socket.io/"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	ch := &Channel{
		joined:   make(map[string]string),
		handlers: make(map[string][]*registration),
	}

	options := socketio.DefaultOptions()
	options.SetTransports(types.NewSet(
		transports.Polling,
		transports.WebSocket,
	))
	options.SetPath(cfg.Path)
	options.SetTimeout(cfg.Timeout)
	if cfg.Token != "" {
		options.SetQuery(url.Values{"token": {cfg.Token}})
	}

	socket, err := socketio.Connect(cfg.ServerURL, options)
	if err != nil {
		logger.Warn("push channel connect failed, staying disconnected",
			logger.String("url", cfg.ServerURL),
			logger.ErrorField(err))
		return ch
	}
	ch.socket = socket
	ch.setupLifecycle()
	return ch
}

func (c *Channel) setupLifecycle() {
	c.socket.On("connect", func(data ...interface{}) {
		defer recoverHandler("connect")

		c.mu.Lock()
		c.connected = true
		// 重连后重新加入已有房间，再补发排队中的join
		rejoins := make([]pendingJoin, 0, len(c.joined)+len(c.pending))
		for room, event := range c.joined {
			rejoins = append(rejoins, pendingJoin{event: event, room: room})
		}
		rejoins = append(rejoins, c.pending...)
		c.pending = nil
		socket := c.socket
		c.mu.Unlock()

		for _, j := range rejoins {
			socket.Emit(j.event, roomPayload(j.room))
		}
		logger.Info("push channel connected", logger.Int("rooms", len(rejoins)))
	})

	c.socket.On("disconnect", func(data ...interface{}) {
		defer recoverHandler("disconnect")

		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		logger.Warn("push channel disconnected")
	})

	c.socket.On("connect_error", func(data ...interface{}) {
		defer recoverHandler("connect_error")

		var err error
		if len(data) > 0 && data[0] != nil {
			if e, ok := data[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("connect error: %v", data[0])
			}
		}
		logger.Warn("push channel connect error", logger.ErrorField(err))
	})
}

// IsConnected reports the live connection state.
func (c *Channel) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected || c.socket == nil {
		return false
	}
	connected := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				connected = false
			}
		}()
		connected = c.socket.Connected()
	}()
	return connected
}

// JoinUser joins the per-user room. Idempotent; queued until the connection opens.
func (c *Channel) JoinUser(userID string) {
	c.join(eventJoinUser, "user:"+userID)
}

// JoinChat joins a conversation room. Idempotent; queued until the connection opens.
func (c *Channel) JoinChat(chatID string) {
	c.join(eventJoinChat, "chat:"+chatID)
}

// LeaveUser leaves the per-user room.
func (c *Channel) LeaveUser(userID string) {
	room := "user:" + userID
	c.mu.Lock()
	delete(c.joined, room)
	socket := c.socket
	connected := c.connected
	c.mu.Unlock()

	if connected && socket != nil {
		socket.Emit(eventLeaveUser, roomPayload(room))
	}
}

func (c *Channel) join(event, room string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, already := c.joined[room]; already {
		c.mu.Unlock()
		return
	}
	c.joined[room] = event

	if !c.connected || c.socket == nil {
		// 连接尚未打开：排队而不是丢弃
		c.pending = append(c.pending, pendingJoin{event: event, room: room})
		c.mu.Unlock()
		return
	}
	socket := c.socket
	c.mu.Unlock()

	socket.Emit(event, roomPayload(room))
}

// On registers a handler for a named event and returns its de-registration
// function. Callers must de-register on teardown; a handler left behind runs
// against state its owner no longer maintains.
func (c *Channel) On(event string, fn Handler) (off func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reg := &registration{fn: fn}
	first := len(c.handlers[event]) == 0
	c.handlers[event] = append(c.handlers[event], reg)

	if first && c.socket != nil {
		c.socket.On(types.EventName(event), func(data ...interface{}) {
			defer recoverHandler(event)
			c.dispatch(event, data...)
		})
	}

	return func() { c.off(event, reg) }
}

func (c *Channel) off(event string, reg *registration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	regs := c.handlers[event]
	for i, r := range regs {
		if r == reg {
			c.handlers[event] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

func (c *Channel) dispatch(event string, data ...interface{}) {
	c.mu.Lock()
	regs := make([]*registration, len(c.handlers[event]))
	copy(regs, c.handlers[event])
	c.mu.Unlock()

	for _, reg := range regs {
		reg.fn(data...)
	}
}

// Close tears the connection down. The channel cannot be reused afterwards.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.connected = false
	socket := c.socket
	c.socket = nil
	c.handlers = make(map[string][]*registration)
	c.pending = nil
	c.mu.Unlock()

	if socket != nil {
		socket.Disconnect()
	}
	logger.Info("push channel closed")
}

func roomPayload(room string) map[string]string {
	return map[string]string{"room": room}
}

func recoverHandler(event string) {
	if r := recover(); r != nil {
		logger.Error("panic recovered in push handler",
			logger.String("event", event),
			logger.Any("panic", r))
	}
}
