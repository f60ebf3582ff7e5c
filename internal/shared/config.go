package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	HTTPTimeout time.Duration
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	RatesBaseURL    string
	RatesRPS        int
	RatesTTL        time.Duration
	RatesRefresh    time.Duration
	SyncBases       []string
	SyncWorkers     int
	DefaultCurrency string

	GeminiKey   string
	GeminiModel string

	FirebaseProject     string
	FirebaseCredentials string

	WishlistCacheTTL time.Duration
}

func Load() Config {
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		HTTPTimeout: time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 90)) * time.Second,
		MetricsAddr: env("METRICS_ADDR", ""),
		MySQLDSN:    env("MYSQL_DSN", ""),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		RatesBaseURL:    env("RATES_BASE_URL", "https://open.er-api.com/v6/latest"),
		RatesRPS:        atoi("RATES_RPS", 2),
		RatesTTL:        time.Duration(atoi("RATES_TTL_HOURS", 24)) * time.Hour,
		RatesRefresh:    time.Duration(atoi("RATES_REFRESH_MINUTES", 360)) * time.Minute,
		SyncBases:       list("RATESYNC_BASES", "USD,EUR,GBP,KES"),
		SyncWorkers:     atoi("RATESYNC_WORKERS", 4),
		DefaultCurrency: strings.ToUpper(env("DEFAULT_CURRENCY", "USD")),

		GeminiKey:   env("GEMINI_API_KEY", ""),
		GeminiModel: env("GEMINI_MODEL", "gemini-2.0-flash"),

		FirebaseProject:     env("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentials: env("FIREBASE_CREDENTIALS_FILE", ""),

		WishlistCacheTTL: time.Duration(atoi("WISHLIST_CACHE_TTL_SECONDS", 300)) * time.Second,
	}
	if c.GeminiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is empty; itinerary routes disabled")
	}
	if c.FirebaseProject == "" {
		log.Warn().Msg("FIREBASE_PROJECT_ID is empty; authenticated routes disabled")
	}
	if c.SyncWorkers <= 0 {
		c.SyncWorkers = 1
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer; using default")
	}
	return def
}

// list splits a comma-separated variable into upper-cased, non-empty items.
func list(k, def string) []string {
	var out []string
	for _, p := range strings.Split(env(k, def), ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
