package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/feedback")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("CASDOOR_ORGANIZATION", "")
	t.Setenv("CASDOOR_APPLICATION", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "mentorlink", cfg.Casdoor.Organization)
	assert.Equal(t, "feedback-service", cfg.Casdoor.Application)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadConfig_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadConfig_ProductionRequiresCasdoor(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/feedback")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CASDOOR_ENDPOINT", "")
	t.Setenv("CASDOOR_CLIENT_ID", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "casdoor")
}

func TestLoadConfig_KafkaBrokers(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/feedback")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("something-else"))
}
