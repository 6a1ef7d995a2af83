package shared

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string

	RedisAddr string
	RedisDB   int
	RedisPass string

	HostawayBase      string
	HostawayAccountID string
	HostawayKey       string
	MockDataPath      string

	RateLimitPerMinute int
	RateLimitEnabled   bool

	SeedWorkers int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:             env("APP_ENV", "prod"),
		HTTPAddr:           env("HTTP_ADDR", ":8000"),
		MetricsAddr:        env("METRICS_ADDR", ":9100"),
		MySQLDSN:           env("MYSQL_DSN", "root:root@tcp(localhost:3306)/flexreview?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:          env("REDIS_ADDR", ""),
		RedisPass:          env("REDIS_PASSWORD", ""),
		RedisDB:            atoi("REDIS_DB", 0),
		HostawayBase:       env("HOSTAWAY_BASE_URL", "https://api.hostaway.com/v1"),
		HostawayAccountID:  env("HOSTAWAY_ACCOUNT_ID", ""),
		HostawayKey:        env("HOSTAWAY_API_KEY", ""),
		MockDataPath:       env("MOCK_DATA_PATH", "data/mock_reviews.json"),
		RateLimitPerMinute: atoi("RATE_LIMIT_PER_MINUTE", 60),
		RateLimitEnabled:   env("RATE_LIMIT_ENABLED", "true") != "false",
		SeedWorkers:        atoi("SEED_WORKERS", 8),
	}
	if c.HostawayKey == "" {
		log.Info().Str("path", c.MockDataPath).Msg("HOSTAWAY_API_KEY is empty, serving reviews from mock data")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
