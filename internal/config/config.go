package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Tracing  TracingConfig
	Database DatabaseConfig
	Session  SessionConfig
	SMTP     SMTPConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string // Shared with the identity service; empty disables the check
	PseudonymKey       string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string  // OTLP HTTP collector, host:port
	SampleRatio float64 // Share of root spans kept, 0..1
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Connection string
}

type SessionConfig struct {
	TTL              time.Duration
	ReapInterval     time.Duration
	PollCacheTTL     time.Duration
	MessageListLimit int
}

type SMTPConfig struct {
	Host                string
	Port                int
	Email               string
	Password            string
	SenderName          string
	EscalationRecipient string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3001"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			PseudonymKey:       getEnv("PSEUDONYM_KEY", "change-me"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SampleRatio: getEnvAsRatio("OTEL_SAMPLE_RATIO", 1),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Session: SessionConfig{
			TTL:              getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
			ReapInterval:     getEnvAsDuration("SESSION_REAP_INTERVAL", time.Minute),
			PollCacheTTL:     getEnvAsDuration("POLL_CACHE_TTL", 2*time.Second),
			MessageListLimit: getEnvAsInt("MESSAGE_LIST_LIMIT", 500),
		},
		SMTP: SMTPConfig{
			Host:                getEnv("SMTP_HOST", ""),
			Port:                getEnvAsInt("SMTP_PORT", 587),
			Email:               getEnv("SMTP_EMAIL", ""),
			Password:            getEnv("SMTP_PASSWORD", ""),
			SenderName:          getEnv("SMTP_SENDER_NAME", "Counseling Desk"),
			EscalationRecipient: getEnv("ESCALATION_EMAIL", ""),
		},
	}
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

// getEnvAsDuration accepts Go duration strings ("168h", "90s").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsRatio accepts a float in [0, 1].
func getEnvAsRatio(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || value < 0 || value > 1 {
		return fallback
	}
	return value
}
