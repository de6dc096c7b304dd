package db

import (
	"encoding/json"
	"fmt"
	"time"

	"melofm/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 离线缓存行：整条实体按JSON存储，列只用于排序和筛选。
// 让通知铃和聊天窗在网络返回前就能渲染上次的内容。

type notificationRow struct {
	ID        string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	Payload   []byte
}

func (notificationRow) TableName() string { return "cached_notifications" }

type messageRow struct {
	ID        string    `gorm:"primaryKey"`
	ChatID    string    `gorm:"index"`
	CreatedAt time.Time `gorm:"index"`
	Payload   []byte
}

func (messageRow) TableName() string { return "cached_messages" }

// HistoryStore is the local write-through cache of feed entities.
type HistoryStore struct {
	db *gorm.DB
}

// NewHistoryStore migrates the cache tables and returns the store.
func NewHistoryStore(gdb *gorm.DB) (*HistoryStore, error) {
	if gdb == nil {
		return nil, fmt.Errorf("cache database not initialized")
	}
	if err := gdb.AutoMigrate(&notificationRow{}, &messageRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history tables: %w", err)
	}
	return &HistoryStore{db: gdb}, nil
}

// SaveNotifications upserts notifications into the cache.
func (s *HistoryStore) SaveNotifications(items []*model.Notification) error {
	rows := make([]notificationRow, 0, len(items))
	for _, n := range items {
		if n.Key() == "" {
			continue
		}
		payload, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("failed to marshal notification: %w", err)
		}
		rows = append(rows, notificationRow{ID: n.Key(), CreatedAt: n.CreatedAt, Payload: payload})
	}
	if len(rows) == 0 {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
}

// LoadNotifications returns up to limit cached notifications, newest first.
func (s *HistoryStore) LoadNotifications(limit int) ([]*model.Notification, error) {
	var rows []notificationRow
	if err := s.db.Order("created_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load cached notifications: %w", err)
	}
	out := make([]*model.Notification, 0, len(rows))
	for _, row := range rows {
		var n model.Notification
		if err := json.Unmarshal(row.Payload, &n); err != nil {
			continue
		}
		out = append(out, &n)
	}
	return out, nil
}

// SaveMessages upserts messages into the cache.
func (s *HistoryStore) SaveMessages(items []*model.Message) error {
	rows := make([]messageRow, 0, len(items))
	for _, m := range items {
		if m.Key() == "" {
			continue
		}
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		rows = append(rows, messageRow{ID: m.Key(), ChatID: m.ChatID, CreatedAt: m.CreatedAt, Payload: payload})
	}
	if len(rows) == 0 {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
}

// LastThread returns the most recently written conversation's cached
// messages, oldest first. An empty chat id means the cache is empty.
func (s *HistoryStore) LastThread(limit int) (string, []*model.Message, error) {
	var latest messageRow
	err := s.db.Order("created_at desc").Limit(1).Find(&latest).Error
	if err != nil {
		return "", nil, fmt.Errorf("failed to find cached thread: %w", err)
	}
	if latest.ChatID == "" {
		return "", nil, nil
	}
	messages, err := s.LoadMessages(latest.ChatID, limit)
	if err != nil {
		return "", nil, err
	}
	return latest.ChatID, messages, nil
}

// LoadMessages returns up to limit cached messages of one chat, oldest first.
func (s *HistoryStore) LoadMessages(chatID string, limit int) ([]*model.Message, error) {
	var rows []messageRow
	err := s.db.Where("chat_id = ?", chatID).Order("created_at asc").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cached messages: %w", err)
	}
	out := make([]*model.Message, 0, len(rows))
	for _, row := range rows {
		var m model.Message
		if err := json.Unmarshal(row.Payload, &m); err != nil {
			continue
		}
		out = append(out, &m)
	}
	return out, nil
}
