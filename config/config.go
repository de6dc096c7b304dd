package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the client configuration.
type Config struct {
	// 后端服务
	APIBaseURL string // REST API 根地址
	SocketURL  string // 实时推送服务地址
	SocketPath string // Socket.IO 路径

	// 本地 UI 桥接服务
	UIAddr string

	// Redis（客户端状态存储：token、主题、最近播放）
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// 本地离线缓存
	SQLitePath string

	// 播放后端
	FFplayPath string

	// 拖放上传目录（管理端工具）
	WatchDir string

	// 是否挂载管理端会话台
	AdminMode bool

	// 轮询与合并
	ConversationPollInterval time.Duration
	RefetchDebounce          time.Duration

	// 日志
	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvDuration gets an environment variable as milliseconds or returns a default.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() 不会覆盖已有的环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		APIBaseURL: getEnv("API_BASE_URL", "http://127.0.0.1:5000"),
		SocketURL:  getEnv("SOCKET_URL", "http://127.0.0.1:5000"),
		SocketPath: getEnv("SOCKET_PATH", "/socket.io/"),

		UIAddr: getEnv("UI_ADDR", "127.0.0.1:4533"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SQLitePath: getEnv("SQLITE_PATH", "data/melofm.db"),

		FFplayPath: getEnv("FFPLAY_PATH", "ffplay"),

		WatchDir: getEnv("WATCH_DIR", ""),

		AdminMode: getEnv("ADMIN_MODE", "false") == "true",

		ConversationPollInterval: getEnvDuration("CONVERSATION_POLL_MS", 10*time.Second),
		RefetchDebounce:          getEnvDuration("REFETCH_DEBOUNCE_MS", 500*time.Millisecond),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}
