// Package config loads walletgate settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings.
type Config struct {
	HTTPAddr        string        `env:"WALLETGATE_HTTP_ADDR"        envDefault:":9000"`
	DatabasePath    string        `env:"WALLETGATE_DB_PATH"          envDefault:"walletgate.db"`
	RedisURL        string        `env:"WALLETGATE_REDIS_URL"`
	EventTopic      string        `env:"WALLETGATE_EVENT_TOPIC"      envDefault:"walletgate.auth"`
	AllowedOrigins  []string      `env:"WALLETGATE_ALLOWED_ORIGINS"  envSeparator:","`
	TimestampWindow time.Duration `env:"WALLETGATE_TIMESTAMP_WINDOW" envDefault:"30m"`
	Debug           bool          `env:"WALLETGATE_DEBUG"`

	RPC RPCClientConfig
}

// Load parses Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TimestampWindow <= 0 {
		return Config{}, fmt.Errorf("WALLETGATE_TIMESTAMP_WINDOW must be positive, got %s", cfg.TimestampWindow)
	}
	cfg.RPC = cfg.RPC.Resolve()
	return cfg, nil
}

// ClientConfig holds the CLI client settings.
type ClientConfig struct {
	ServerURL   string `env:"WALLETGATE_SERVER_URL"   envDefault:"http://localhost:9000"`
	KeyPath     string `env:"WALLETGATE_KEY_PATH"     envDefault:"walletgate-key.json"`
	SessionPath string `env:"WALLETGATE_SESSION_PATH" envDefault:".walletgate/session.json"`
	RedisURL    string `env:"WALLETGATE_SESSION_REDIS_URL"`
}

// LoadClient parses ClientConfig from the environment.
func LoadClient() (ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
