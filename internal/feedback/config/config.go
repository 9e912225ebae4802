package config

import (
	"errors"

	"github.com/caarlos0/env/v6"
)

// RealtimeConfig holds configuration specific to the live feedback feeds.
type RealtimeConfig struct {
	// WebSocketPath is the endpoint path for WebSocket connections.
	WebSocketPath string `env:"WEBSOCKET_PATH" envDefault:"/ws/v1/feedback" json:"websocket_path"`

	// ClientSendChannelBuffer is the buffer size for channels sending
	// snapshots to WebSocket clients. Prevents a slow client from blocking
	// the broadcast path.
	ClientSendChannelBuffer int `env:"CLIENT_SEND_CHANNEL_BUFFER" envDefault:"10" json:"client_send_channel_buffer"`
}

// RedisConfig holds the connection settings for the change journal.
type RedisConfig struct {
	Host            string `env:"REDIS_HOST" envDefault:"localhost"`
	Port            string `env:"REDIS_PORT" envDefault:"6379"`
	Password        string `env:"REDIS_PASSWORD" envDefault:""`
	Database        int    `env:"REDIS_DATABASE" envDefault:"0"`
	MaxRetries      int    `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize        int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns    int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	EnableTLS       bool   `env:"REDIS_ENABLE_TLS" envDefault:"false"`
	ConnMaxIdleTime string `env:"REDIS_CONN_MAX_IDLE_TIME" envDefault:"30m"`
	ConnMaxLifetime string `env:"REDIS_CONN_MAX_LIFETIME" envDefault:"1h"`
}

// GetAddr returns the host:port address for the Redis client.
func (c *RedisConfig) GetAddr() string {
	return c.Host + ":" + c.Port
}

// Config holds all configuration for the feedback module.
type Config struct {
	MongoDBURI   string `env:"MONGODB_URI"`
	DatabaseName string `env:"MONGODB_DATABASE" envDefault:"pg_feedback"`

	// JWTSecret signs and verifies the session tokens the identity
	// verifier consumes.
	JWTSecret string `env:"JWT_SECRET"`

	// JournalRetention controls how much change history the admin activity
	// view can page through, as a duration string.
	JournalRetention string `env:"JOURNAL_RETENTION" envDefault:"168h"`

	Realtime RealtimeConfig `json:"realtime"`
	Redis    RedisConfig    `json:"redis"`
}

// LoadConfig loads configuration from environment variables and applies
// defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load feedback configuration from environment: " + err.Error())
	}
	if err := env.Parse(&cfg.Realtime); err != nil {
		return nil, errors.New("failed to load realtime configuration from environment: " + err.Error())
	}
	if err := env.Parse(&cfg.Redis); err != nil {
		return nil, errors.New("failed to load redis configuration from environment: " + err.Error())
	}

	if cfg.MongoDBURI == "" {
		return nil, errors.New("MONGODB_URI environment variable is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is not set")
	}
	if cfg.Realtime.WebSocketPath == "" {
		cfg.Realtime.WebSocketPath = "/ws/v1/feedback"
	}
	if cfg.Realtime.ClientSendChannelBuffer <= 0 {
		cfg.Realtime.ClientSendChannelBuffer = 10
	}

	return cfg, nil
}

// DefaultConfig returns a Config with local-development defaults.
func DefaultConfig() *Config {
	return &Config{
		MongoDBURI:       "mongodb://localhost:27017",
		DatabaseName:     "pg_feedback",
		JWTSecret:        "dev-secret",
		JournalRetention: "168h",
		Realtime: RealtimeConfig{
			WebSocketPath:           "/ws/v1/feedback",
			ClientSendChannelBuffer: 10,
		},
		Redis: RedisConfig{
			Host:            "localhost",
			Port:            "6379",
			Database:        0,
			MaxRetries:      3,
			PoolSize:        10,
			MinIdleConns:    2,
			ConnMaxIdleTime: "30m",
			ConnMaxLifetime: "1h",
		},
	}
}
