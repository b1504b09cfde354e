package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr string
	APIBase  string

	Storage     string // postgres | sqlite | memory
	PostgresDSN string
	SQLitePath  string

	BotToken    string
	BotMode     string // polling | webhook
	WebhookPath string

	Sessions      string // redis | memory
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	ShutdownTimeout time.Duration
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getdur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func Load() Config {
	_ = LoadEnvFile(getenv("CONFIG_ENV_FILE", "config.env"))

	redisHost := getenv("REDIS_HOST", "localhost")
	redisPort := getenv("REDIS_PORT", "6379")

	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		APIBase:         getenv("API_BASE_URL", "http://localhost:8080/api"),
		Storage:         getenv("STORAGE", "postgres"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		SQLitePath:      getenv("SQLITE_PATH", "taskgram.db"),
		BotToken:        os.Getenv("BOT_TOKEN"),
		BotMode:         getenv("BOT_MODE", "polling"),
		WebhookPath:     getenv("WEBHOOK_PATH", "/telegram/webhook"),
		Sessions:        getenv("SESSIONS", "redis"),
		RedisAddr:       fmt.Sprintf("%s:%s", redisHost, redisPort),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getint("REDIS_DB", 0),
		SessionTTL:      getdur("SESSION_TTL", 0),
		ShutdownTimeout: getdur("SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}
