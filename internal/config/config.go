package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config collects every knob the binaries read from the environment.
// Load it once in main and pass it down; nothing else touches os.Getenv.
type Config struct {
	DataDir          string
	ConversationsDir string
	LogsDir          string
	DBPath           string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	HistoryTTL    time.Duration

	KafkaBrokers []string
	UsageTopic   string
}

// Load reads the environment and fills in defaults for anything unset.
func Load() Config {
	dataDir := String("DATA_DIR", "data")
	conversationsDir := String("CONVERSATIONS_DIR", filepath.Join(dataDir, "conversations"))
	logsDir := String("LOGS_DIR", filepath.Join(dataDir, "logs"))

	return Config{
		DataDir:          dataDir,
		ConversationsDir: conversationsDir,
		LogsDir:          logsDir,
		DBPath:           String("SQLITE_PATH", filepath.Join(conversationsDir, "conversations.db")),

		RedisAddr:     String("REDIS_ADDR", ""),
		RedisPassword: String("REDIS_PASSWORD", ""),
		RedisDB:       Int("REDIS_DB", 0),
		HistoryTTL:    Duration("HISTORY_CACHE_TTL", time.Hour),

		KafkaBrokers: Brokers("KAFKA_BROKERS"),
		UsageTopic:   String("USAGE_KAFKA_TOPIC", "model.usage"),
	}
}

func String(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func Int(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func Duration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return def
}

// Brokers parses a comma-separated broker list. Empty means disabled.
func Brokers(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
