package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	AppEnv      string
	BaseURL     string

	// Admin login
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	JWTSecret          string
	FrontendURL        string
	AllowedEmails      []string

	// Submission guard
	RedisAddr       string
	RateLimitWindow time.Duration
	RateLimitMax    int
	GlobalCooldown  time.Duration
	DuplicateWindow time.Duration
	PruneInterval   time.Duration
	MaxLaunches     int
	SpamRulesFile   string

	// Request handling
	AllowedOrigins []string
	TrustProxy     bool
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "file:db.sqlite"),
		AppEnv:             getEnv("APP_ENV", "local"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:8080"),
		AllowedEmails:      getEnvList("ADMIN_EMAILS"),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 2),
		GlobalCooldown:  getEnvDuration("GLOBAL_COOLDOWN", 10*time.Second),
		DuplicateWindow: getEnvDuration("DUPLICATE_WINDOW", time.Hour),
		PruneInterval:   getEnvPositiveDuration("PRUNE_INTERVAL", 5*time.Minute),
		MaxLaunches:     getEnvInt("MAX_LAUNCHES", 1000),
		SpamRulesFile:   getEnv("SPAM_RULES_FILE", ""),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS"),
		TrustProxy:     getEnvBool("TRUST_PROXY", false),
	}
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getEnvDuration accepts Go duration strings ("90s") or bare seconds ("90").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// getEnvPositiveDuration is getEnvDuration for intervals that drive a ticker.
func getEnvPositiveDuration(key string, fallback time.Duration) time.Duration {
	if d := getEnvDuration(key, fallback); d > 0 {
		return d
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
