package config

import (
	"os"
	"strconv"
	"time"

	"taskboard/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	LogLevel    string
	LogJSON     bool

	// Identity provider. TenantID and Audience drive bearer-token
	// validation; DirectoryBaseURL/DirectoryToken drive profile lookups.
	TenantID         string
	Audience         string
	DirectoryBaseURL string
	DirectoryToken   string

	// DevMode disables token validation and accepts X-Debug-User.
	DevMode bool

	// Redis rate limiter (optional; limiter is disabled when Addr is empty).
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit  int
	APIRateWindow time.Duration
}

// Load reads configuration from the environment (.env honored for local
// runs) and fails fast on missing required values.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	devMode := os.Getenv("DEV_MODE") == "true"

	tenantID := os.Getenv("TENANT_ID")
	audience := os.Getenv("AUDIENCE")
	if !devMode && (tenantID == "" || audience == "") {
		logger.Fatal("TENANT_ID and AUDIENCE must be set unless DEV_MODE=true")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	apiRateLimit := 60
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateLimit = n
		}
	}

	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	return &Config{
		AppPort:          port,
		DatabaseURL:      dbURL,
		LogLevel:         logLevel,
		LogJSON:          os.Getenv("LOG_JSON") == "true",
		TenantID:         tenantID,
		Audience:         audience,
		DirectoryBaseURL: os.Getenv("DIRECTORY_BASE_URL"),
		DirectoryToken:   os.Getenv("DIRECTORY_TOKEN"),
		DevMode:          devMode,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          redisDB,
		APIRateLimit:     apiRateLimit,
		APIRateWindow:    apiRateWindow,
	}
}
