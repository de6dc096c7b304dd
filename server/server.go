package server

import (
	"context"
	"net/http"
	"time"

	"melofm/config"
	"melofm/core/chat"
	"melofm/core/library"
	"melofm/core/notify"
	"melofm/core/player"
	"melofm/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	// 本地桥接服务只监听回环地址
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server is the local HTTP/WebSocket bridge the browser UI talks to. It
// exposes the player verbs and feed snapshots, and pushes change events
// through the UIHub.
type Server struct {
	cfg    *config.Config
	hub    *UIHub
	player *player.Controller
	widget *chat.Widget
	desk   *chat.AdminDesk
	center *notify.Center
	lib    *library.Service

	httpServer *http.Server
}

// New wires the bridge around the client services. Any of widget/desk/center
// may be nil when that feature is not mounted.
func New(cfg *config.Config, hub *UIHub, ctrl *player.Controller, widget *chat.Widget, desk *chat.AdminDesk, center *notify.Center, lib *library.Service) *Server {
	s := &Server{
		cfg:    cfg,
		hub:    hub,
		player: ctrl,
		widget: widget,
		desk:   desk,
		center: center,
		lib:    lib,
	}

	router := mux.NewRouter()
	s.routes(router)

	s.httpServer = &http.Server{
		Addr:         cfg.UIAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) routes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	// 播放器
	api.HandleFunc("/player", s.handlePlayerState).Methods(http.MethodGet)
	api.HandleFunc("/player/play", s.handlePlay).Methods(http.MethodPost)
	api.HandleFunc("/player/pause", s.handlePause).Methods(http.MethodPost)
	api.HandleFunc("/player/resume", s.handleResume).Methods(http.MethodPost)
	api.HandleFunc("/player/next", s.handleNext).Methods(http.MethodPost)
	api.HandleFunc("/player/prev", s.handlePrev).Methods(http.MethodPost)
	api.HandleFunc("/player/seek", s.handleSeek).Methods(http.MethodPost)
	api.HandleFunc("/player/loop", s.handleLoop).Methods(http.MethodPost)
	api.HandleFunc("/player/shuffle", s.handleShuffle).Methods(http.MethodPost)
	api.HandleFunc("/player/volume", s.handleVolume).Methods(http.MethodPost)

	// 首页与喜欢
	api.HandleFunc("/home", s.handleHome).Methods(http.MethodGet)
	api.HandleFunc("/likes", s.handleLikes).Methods(http.MethodGet)
	api.HandleFunc("/likes/{songId}/toggle", s.handleToggleLike).Methods(http.MethodPost)

	// 未挂载的功能不注册路由，匿名运行时这些接口返回404
	if s.widget != nil {
		api.HandleFunc("/chat", s.handleChatThread).Methods(http.MethodGet)
		api.HandleFunc("/chat/message", s.handleChatSend).Methods(http.MethodPost)
		api.HandleFunc("/chat/request", s.handleChatRequest).Methods(http.MethodPost)
	}

	if s.desk != nil {
		api.HandleFunc("/admin/conversations", s.handleConversations).Methods(http.MethodGet)
		api.HandleFunc("/admin/chats/{chatId}/select", s.handleSelectChat).Methods(http.MethodPost)
		api.HandleFunc("/admin/thread", s.handleThread).Methods(http.MethodGet)
		api.HandleFunc("/admin/reply", s.handleReply).Methods(http.MethodPost)
		api.HandleFunc("/admin/request/{messageId}/status", s.handleRequestStatus).Methods(http.MethodPut)
		api.HandleFunc("/admin/message/{messageId}", s.handleDeleteMessage).Methods(http.MethodDelete)
	}

	if s.center != nil {
		api.HandleFunc("/notifications", s.handleNotifications).Methods(http.MethodGet)
		api.HandleFunc("/notifications/{id}/read", s.handleNotificationRead).Methods(http.MethodPost)
		api.HandleFunc("/notifications/read-all", s.handleNotificationReadAll).Methods(http.MethodPost)
	}

	// 本地状态
	api.HandleFunc("/recent", s.handleRecent).Methods(http.MethodGet)
	api.HandleFunc("/theme", s.handleGetTheme).Methods(http.MethodGet)
	api.HandleFunc("/theme", s.handleSetTheme).Methods(http.MethodPut)

	router.HandleFunc("/ws", s.handleWebSocket)
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	logger.Info("ui bridge listening", logger.String("addr", s.cfg.UIAddr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("ui websocket upgrade failed", logger.ErrorField(err))
		return
	}

	client := newUIClient(s.hub, conn)
	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}
