package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_RequiresMongoURI(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_URI")
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "pg_feedback", cfg.DatabaseName)
	assert.Equal(t, "/ws/v1/feedback", cfg.Realtime.WebSocketPath)
	assert.Equal(t, 10, cfg.Realtime.ClientSendChannelBuffer)
	assert.Equal(t, "168h", cfg.JournalRetention)
	assert.Equal(t, "localhost:6379", cfg.Redis.GetAddr())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://db.internal:27017")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MONGODB_DATABASE", "feedback_prod")
	t.Setenv("WEBSOCKET_PATH", "/ws/v2/feedback")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "feedback_prod", cfg.DatabaseName)
	assert.Equal(t, "/ws/v2/feedback", cfg.Realtime.WebSocketPath)
	assert.Equal(t, "cache.internal:6380", cfg.Redis.GetAddr())
}
