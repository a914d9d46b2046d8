// Package shared holds process configuration read from the environment.
package shared

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// MaxPollTimeout caps POLL_TIMEOUT_SECONDS below the Bot API client's 75s
// HTTP timeout so an idle long poll ends on the server side.
const MaxPollTimeout = 50

type Config struct {
	AppEnv   string
	LogLevel string

	TelegramToken   string
	TelegramBaseURL string
	PollInterval    time.Duration
	PollTimeout     int // seconds, passed to getUpdates
	BotWorkers      int
	TelegramRPS     int

	HTTPAddr    string
	MetricsAddr string

	KnowledgeFile string
	RandomSeed    uint64

	CacheBackend string
	CacheTTL     time.Duration
	RedisAddr    string
	RedisPass    string
	RedisDB      int

	MySQLDSN string
}

// Load reads .env (when present) and then the process environment. Variables
// already set in the environment win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	c := Config{
		AppEnv:   env("APP_ENV", "prod"),
		LogLevel: env("LOG_LEVEL", "info"),

		TelegramToken:   env("TELEGRAM_TOKEN", ""),
		TelegramBaseURL: env("TELEGRAM_BASE_URL", "https://api.telegram.org"),
		PollInterval:    time.Duration(atoi("POLL_INTERVAL_SECONDS", 3)) * time.Second,
		PollTimeout:     atoi("POLL_TIMEOUT_SECONDS", 30),
		BotWorkers:      atoi("BOT_WORKERS", 1),
		TelegramRPS:     atoi("TELEGRAM_RPS", 25),

		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),

		KnowledgeFile: env("KNOWLEDGE_FILE", ""),
		RandomSeed:    uint64(atoi("RANDOM_SEED", 0)),

		CacheBackend: strings.ToLower(env("CACHE_BACKEND", "memory")),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),

		MySQLDSN: env("MYSQL_DSN", ""),
	}
	if c.PollTimeout > MaxPollTimeout {
		log.Warn().Int("value", c.PollTimeout).Int("max", MaxPollTimeout).Msg("POLL_TIMEOUT_SECONDS too large, clamping")
		c.PollTimeout = MaxPollTimeout
	}
	if c.BotWorkers < 1 {
		c.BotWorkers = 1
	}
	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		log.Warn().Str("backend", c.CacheBackend).Msg("unknown CACHE_BACKEND, using memory")
		c.CacheBackend = "memory"
	}
	return c
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n >= 0 {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Int("default", def).Msg("invalid integer, using default")
	}
	return def
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
