package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment with
// an optional .env file for local development.
type Config struct {
	Environment string
	Port        string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	Kafka      KafkaConfig
	Casdoor    CasdoorConfig
	Resend     ResendConfig
	OpenRouter OpenRouterConfig
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
}

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

type ResendConfig struct {
	APIKey      string
	FromAddress string
}

type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// LoadConfig reads configuration from the environment. A missing .env file
// is fine; missing required values are not.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
		},
		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: getEnv("CASDOOR_ORGANIZATION", "mentorlink"),
			Application:  getEnv("CASDOOR_APPLICATION", "feedback-service"),
		},
		Resend: ResendConfig{
			APIKey:      os.Getenv("RESEND_API_KEY"),
			FromAddress: getEnv("RESEND_FROM_ADDRESS", "MentorLink <noreply@mentorlink.io>"),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:  os.Getenv("OPENROUTER_API_KEY"),
			BaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:   getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		},
	}
	cfg.Kafka.Enabled = len(cfg.Kafka.Brokers) > 0

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Environment == "production" {
		if cfg.Casdoor.Endpoint == "" || cfg.Casdoor.ClientID == "" {
			return nil, fmt.Errorf("casdoor configuration is required in production")
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
