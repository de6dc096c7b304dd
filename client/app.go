package client

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"melofm/cache"
	"melofm/config"
	"melofm/core/chat"
	"melofm/core/library"
	"melofm/core/notify"
	"melofm/core/player"
	"melofm/db"
	"melofm/gateway"
	"melofm/logger"
	"melofm/push"
	"melofm/server"
)

// Run boots the client: state stores, gateway, push channels, services, the
// player, and the local UI bridge. It blocks until SIGINT/SIGTERM, then
// tears everything down: connections closed, timers cleared, handlers
// de-registered.
func Run() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	})
	defer logger.Sync()

	// 客户端状态存储
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Fatal("failed to connect state store", logger.ErrorField(err))
	}
	defer cache.CloseRedis()

	// 离线缓存可降级：打不开就只是没有历史回显
	var history *db.HistoryStore
	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Warn("offline cache unavailable", logger.ErrorField(err))
	} else {
		defer db.CloseGormDB()
		var err error
		if history, err = db.NewHistoryStore(db.GormDB); err != nil {
			logger.Warn("offline cache unavailable", logger.ErrorField(err))
			history = nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 会话token：没有或过期则匿名运行，聊天和通知不挂载
	userID := resolveUser(ctx)

	gw := gateway.NewClient(cfg.APIBaseURL, func() string {
		token, err := cache.GetToken(context.Background())
		if err != nil {
			return ""
		}
		return token
	})

	hub := server.NewUIHub()
	go hub.Run()
	defer hub.Stop()

	// 播放器
	var ctrl *player.Controller
	backend := player.NewFFplayBackend(cfg.FFplayPath, func(ev player.Event) {
		ctrl.HandleEvent(ev)
	})
	ctrl = player.NewController(backend, func(state player.State) {
		hub.Publish("player", state)
	})
	defer backend.Stop()

	// 曲库与喜欢
	var lib *library.Service
	lib = library.NewService(gw, func() {
		hub.Publish("likes", map[string]interface{}{"songIds": lib.LikedSongIDs()})
	})

	token, _ := cache.GetToken(ctx)

	var widget *chat.Widget
	var desk *chat.AdminDesk
	var center *notify.Center
	var channels []*push.Channel

	if userID != "" {
		// 每个挂载的功能持有一条独立的推送连接
		notifyChannel := push.Connect(push.Config{ServerURL: cfg.SocketURL, Path: cfg.SocketPath, Token: token})
		channels = append(channels, notifyChannel)
		// 接口参数不能包一个nil指针进去
		var notifyHistory notify.History
		if history != nil {
			notifyHistory = history
		}
		center = notify.NewCenter(gw, userID, notifyChannel, notifyHistory, func() {
			hub.Publish("notifications", nil)
		})
		center.Mount(ctx)

		chatChannel := push.Connect(push.Config{ServerURL: cfg.SocketURL, Path: cfg.SocketPath, Token: token})
		channels = append(channels, chatChannel)
		var widgetHistory chat.History
		if history != nil {
			widgetHistory = history
		}
		widget = chat.NewWidget(gw, chatChannel, widgetHistory, func() {
			hub.Publish("chat", nil)
		})
		if err := widget.Mount(ctx); err != nil {
			// 没有实时连接或线程加载失败时维持陈旧数据，不算致命
			logger.Warn("chat widget mount failed", logger.ErrorField(err))
		}

		if cfg.AdminMode {
			adminChannel := push.Connect(push.Config{ServerURL: cfg.SocketURL, Path: cfg.SocketPath, Token: token})
			channels = append(channels, adminChannel)
			desk = chat.NewAdminDesk(gw, adminChannel, userID,
				cfg.ConversationPollInterval, cfg.RefetchDebounce, func() {
					hub.Publish("conversations", nil)
				})
			desk.Mount(ctx)
		}
	} else {
		logger.Warn("no valid session token, running without chat and notifications")
	}

	srv := server.New(cfg, hub, ctrl, widget, desk, center, lib)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("ui bridge failed", logger.ErrorField(err))
		}
	}()

	// 预热喜欢列表，失败不阻塞启动
	go func() {
		if _, err := lib.GetOrCreateLikedPlaylist(ctx); err != nil {
			logger.Warn("liked playlist lookup failed", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	cancel()
	if desk != nil {
		desk.Unmount()
	}
	if widget != nil {
		widget.Unmount()
	}
	if center != nil {
		center.Unmount()
	}
	for _, ch := range channels {
		ch.Close()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("ui bridge shutdown failed", logger.ErrorField(err))
	}
}

// resolveUser reads the stored token and extracts the user id, dropping
// expired tokens.
func resolveUser(ctx context.Context) string {
	token, err := cache.GetToken(ctx)
	if err != nil || token == "" {
		return ""
	}
	claims, err := gateway.ParseTokenClaims(token)
	if err != nil {
		logger.Warn("stored token unreadable", logger.ErrorField(err))
		return ""
	}
	if claims.Expired(time.Now()) {
		logger.Warn("stored token expired", logger.String("user", claims.UserID))
		return ""
	}
	return claims.UserID
}
