package db

import (
	"fmt"
	"os"
	"path/filepath"

	"melofm/config"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormDB 是本地离线缓存的数据库连接
var GormDB *gorm.DB

// ConnectGormDB 打开本地sqlite缓存库
func ConnectGormDB(cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	var err error
	GormDB, err = gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to open local cache database: %w", err)
	}
	return nil
}

// CloseGormDB 关闭缓存库连接
func CloseGormDB() error {
	if GormDB == nil {
		return nil
	}
	sqlDB, err := GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrateModels 自动迁移缓存表结构
func AutoMigrateModels(models ...interface{}) error {
	if GormDB == nil {
		return fmt.Errorf("cache database not initialized")
	}
	if err := GormDB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	return nil
}
