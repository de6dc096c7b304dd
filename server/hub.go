package server

import (
	"encoding/json"
	"sync"
	"time"

	"melofm/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// UIEvent is one state-change event pushed to attached local UIs.
type UIEvent struct {
	Type      string      `json:"type"` // player, chat, conversations, notifications, toast
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// uiClient 一个已连接的本地UI页面
type uiClient struct {
	id   string
	hub  *UIHub
	conn *websocket.Conn
	send chan []byte
}

func newUIClient(hub *UIHub, conn *websocket.Conn) *uiClient {
	return &uiClient{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 64),
	}
}

// UIHub fans controller and feed changes out to every attached UI page.
// Multiple pages (player window, admin dashboard) can watch the same client
// process and stay consistent.
type UIHub struct {
	clients    map[*uiClient]bool
	register   chan *uiClient
	unregister chan *uiClient
	broadcast  chan []byte
	done       chan struct{}
	mu         sync.RWMutex
}

// NewUIHub 创建UI广播中心
func NewUIHub() *UIHub {
	return &UIHub{
		clients:    make(map[*uiClient]bool),
		register:   make(chan *uiClient),
		unregister: make(chan *uiClient),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run 启动主循环
func (h *UIHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Info("ui client attached",
				logger.String("clientId", client.id),
				logger.Int("clients", h.clientCount()))

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*uiClient, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					// 发送缓冲区满，剔除客户端
					h.removeClient(client)
				}
			}

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[*uiClient]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Stop 停止主循环并断开所有UI连接
func (h *UIHub) Stop() {
	close(h.done)
}

// Publish broadcasts one event to every attached UI.
func (h *UIHub) Publish(eventType string, data interface{}) {
	event := UIEvent{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Warn("failed to marshal ui event", logger.ErrorField(err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		// 广播队列满时丢弃，UI会在下一次事件恢复
	}
}

func (h *UIHub) removeClient(client *uiClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		logger.Info("ui client detached", logger.String("clientId", client.id))
	}
}

func (h *UIHub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readPump drains and discards inbound frames; the UI talks to the client
// over HTTP, the socket is downstream-only. Reads also drive pong handling.
func (c *uiClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ui websocket read error", logger.ErrorField(err))
			}
			return
		}
	}
}

func (c *uiClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
