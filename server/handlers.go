package server

import (
	"encoding/json"
	"net/http"
	"time"

	"melofm/cache"
	"melofm/gateway"
	"melofm/logger"
	"melofm/model"

	"github.com/gorilla/mux"
)

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Warn("failed to encode response", logger.ErrorField(err))
		}
	}
}

// writeError surfaces an error to the calling page and, as a toast event, to
// every attached UI. Backend authorization messages pass through verbatim.
func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if apiErr, ok := err.(*gateway.APIError); ok && apiErr.Message != "" {
		msg = apiErr.Message
	}
	s.hub.Publish("toast", map[string]string{"message": msg})
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(r *http.Request, out interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

// ---- 播放器 ----

func (s *Server) handlePlayerState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.player.State())
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Track model.Track   `json:"track"`
		Index int           `json:"index"`
		List  []model.Track `json:"list"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.player.PlaySong(body.Track, body.Index, body.List); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := cache.PushRecent(r.Context(), model.RecentTrack{
		ID:       body.Track.ID,
		Title:    body.Track.Title,
		Artist:   body.Track.Artist,
		CoverURL: body.Track.CoverURL,
		PlayedAt: nowMillis(),
	}); err != nil {
		logger.Warn("recently played update failed", logger.ErrorField(err))
	}
	writeJSON(w, http.StatusOK, s.player.State())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := s.player.PauseSong(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.player.State())
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if err := s.player.ResumeSong(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.player.State())
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	if err := s.player.PlayNext(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.player.State())
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	if err := s.player.PlayPrev(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.player.State())
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Percent float64 `json:"percent"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.player.SeekTo(body.Percent); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.player.State())
}

func (s *Server) handleLoop(w http.ResponseWriter, r *http.Request) {
	s.player.CycleLoopMode()
	writeJSON(w, http.StatusOK, s.player.State())
}

func (s *Server) handleShuffle(w http.ResponseWriter, r *http.Request) {
	s.player.ToggleShuffle()
	writeJSON(w, http.StatusOK, s.player.State())
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Volume float64 `json:"volume"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.player.SetVolume(body.Volume); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.player.State())
}

// ---- 首页与喜欢 ----

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.lib.LoadHome(r.Context(), 12))
}

func (s *Server) handleLikes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"songIds": s.lib.LikedSongIDs()})
}

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	songID := mux.Vars(r)["songId"]
	liked, err := s.lib.ToggleLike(r.Context(), songID)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"liked": liked, "songIds": s.lib.LikedSongIDs()})
}

// ---- 用户聊天窗 ----

func (s *Server) handleChatThread(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"chatId":   s.widget.ChatID(),
		"messages": s.widget.Messages(),
	})
}

func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.widget.SendMessage(r.Context(), body.Message); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	// 不回显消息体：线程由push回声更新
	writeJSON(w, http.StatusAccepted, nil)
}

func (s *Server) handleChatRequest(w http.ResponseWriter, r *http.Request) {
	var body model.RequestData
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.widget.SendRequest(r.Context(), &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusAccepted, nil)
}

// ---- 管理端会话台 ----

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": s.desk.Conversations()})
}

func (s *Server) handleSelectChat(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatId"]
	if err := s.desk.SelectChat(r.Context(), chatID); err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": s.desk.Thread()})
}

func (s *Server) handleThread(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"chatId":   s.desk.SelectedChat(),
		"messages": s.desk.Thread(),
	})
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.desk.Reply(r.Context(), body.Message); err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusAccepted, nil)
}

func (s *Server) handleRequestStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	messageID := mux.Vars(r)["messageId"]
	if err := s.desk.UpdateRequestStatus(r.Context(), messageID, body.Status); err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["messageId"]
	if err := s.desk.DeleteMessage(r.Context(), messageID); err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// ---- 通知铃 ----

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": s.center.Display(),
		"unreadCount":   s.center.UnreadCount(),
	})
}

func (s *Server) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.center.MarkRead(r.Context(), id); err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleNotificationReadAll(w http.ResponseWriter, r *http.Request) {
	if err := s.center.MarkAllRead(r.Context()); err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// ---- 本地状态 ----

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	items, err := cache.RecentlyPlayed(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recentlyPlayed": items})
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := cache.GetTheme(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Theme string `json:"theme"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := cache.SetTheme(r.Context(), body.Theme); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": body.Theme})
}
