package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Signal   SignalConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	ChannelLogFilePath string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Connection string
	SQLitePath string
}

type SessionConfig struct {
	// Ordered fetch candidates; "local" is the in-process document store.
	DocumentEndpoints []DocumentEndpoint
	EndpointsFile     string
	FetchTimeout      time.Duration
	PollInterval      time.Duration
	PollMaxBackoff    time.Duration
	ReminderExcerpt   int
	WelcomeAttempts   int
	WelcomeRetryDelay time.Duration
}

type SignalConfig struct {
	Backend   string // "file", "redis", "nats" or "memory"
	MarkerDir string
	Topic     string
	KeyPrefix string
}

type APIKeys struct {
	LiveKitAPIKey    string
	LiveKitAPISecret string
	TokenTTL         time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5001"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			ChannelLogFilePath: getEnv("CHANNEL_LOG_FILE_PATH", "logs/channel.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			SQLitePath: getEnv("DB_SQLITE_PATH", "career_assistant.db"),
		},
		Session: SessionConfig{
			EndpointsFile:     getEnv("SESSION_ENDPOINTS_FILE", ""),
			FetchTimeout:      getEnvAsDuration("SESSION_FETCH_TIMEOUT", 2*time.Second),
			PollInterval:      getEnvAsDuration("SESSION_POLL_INTERVAL", 2*time.Second),
			PollMaxBackoff:    getEnvAsDuration("SESSION_POLL_MAX_BACKOFF", 30*time.Second),
			ReminderExcerpt:   getEnvAsInt("SESSION_REMINDER_EXCERPT", 200),
			WelcomeAttempts:   getEnvAsInt("SESSION_WELCOME_ATTEMPTS", 3),
			WelcomeRetryDelay: getEnvAsDuration("SESSION_WELCOME_RETRY_DELAY", 500*time.Millisecond),
		},
		Signal: SignalConfig{
			Backend:   getEnv("SIGNAL_BACKEND", "memory"),
			MarkerDir: getEnv("SIGNAL_MARKER_DIR", "tmp/document_updates"),
			Topic:     getEnv("SIGNAL_TOPIC", "document.updated"),
			KeyPrefix: getEnv("SIGNAL_REDIS_KEY_PREFIX", "document_update:"),
		},
		Keys: APIKeys{
			LiveKitAPIKey:    getEnv("LIVEKIT_API_KEY", "devkey"),
			LiveKitAPISecret: getEnv("LIVEKIT_API_SECRET", "secret"),
			TokenTTL:         getEnvAsDuration("TOKEN_TTL", 6*time.Hour),
		},
	}

	endpoints := ParseEndpointList(getEnv("SESSION_DOCUMENT_ENDPOINTS", "local,http://127.0.0.1:5001"), cfg.Session.FetchTimeout)
	if cfg.Session.EndpointsFile != "" {
		fromFile, err := LoadEndpointsFile(cfg.Session.EndpointsFile, cfg.Session.FetchTimeout)
		if err != nil {
			log.Printf("[WARN] Failed to read endpoints file %s: %v. Using SESSION_DOCUMENT_ENDPOINTS", cfg.Session.EndpointsFile, err)
		} else if len(fromFile) > 0 {
			endpoints = fromFile
		}
	}
	cfg.Session.DocumentEndpoints = endpoints

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
