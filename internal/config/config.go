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
	Intent   IntentConfig
	Ai       AIConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection      string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type IntentConfig struct {
	PendingBackend      string // "memory", "redis" or "gorm"
	PendingTTL          time.Duration
	ConfirmationTTL     time.Duration
	SelectionTTL        time.Duration
	AIEnabled           bool
	AITimeout           time.Duration
	AIRetries           int
	ConfidenceThreshold float64
	HistoryTurns        int
	DispatchDriver      string // "gochannel", "nats" or "none"
	ContactsBackend     string // "memory" or "gorm"
}

type AIConfig struct {
	LLMProvider    string // "ollama", "huggingface" or "none"
	LLMModel       string
	LLMBaseURL     string
	HuggingFaceKey string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	SampleRatio float64
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
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Intent: IntentConfig{
			PendingBackend:      strings.ToLower(getEnv("PENDING_BACKEND", "memory")),
			PendingTTL:          getEnvAsDuration("PENDING_TTL", 30*time.Minute),
			ConfirmationTTL:     getEnvAsDuration("PENDING_CONFIRMATION_TTL", 10*time.Minute),
			SelectionTTL:        getEnvAsDuration("PENDING_SELECTION_TTL", 30*time.Minute),
			AIEnabled:           getEnvAsBool("AI_FALLBACK_ENABLED", true),
			AITimeout:           getEnvAsDuration("AI_TIMEOUT", 10*time.Second),
			AIRetries:           getEnvAsInt("AI_RETRIES", 1),
			ConfidenceThreshold: getEnvAsFloat("AI_CONFIDENCE_THRESHOLD", 0.5),
			HistoryTurns:        getEnvAsInt("AI_HISTORY_TURNS", 6),
			DispatchDriver:      strings.ToLower(getEnv("DISPATCH_DRIVER", "gochannel")),
			ContactsBackend:     strings.ToLower(getEnv("CONTACTS_BACKEND", "memory")),
		},
		Ai: AIConfig{
			LLMProvider:    strings.ToLower(getEnv("LLM_PROVIDER", "ollama")),
			LLMModel:       getEnv("LLM_MODEL", "qwen2.5"),
			LLMBaseURL:     getEnv("LLM_BASE_URL", ""),
			HuggingFaceKey: getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "ai-scheduler-backend"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
		},
	}
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

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
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

// getEnvAsDuration accepts Go durations ("90s", "10m") or plain seconds
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
