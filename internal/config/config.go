package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings. Precedence: file > environment >
// defaults.
type Config struct {
	HTTP      *HTTPConfig      `json:"http"`
	WebSocket *WebSocketConfig `json:"websocket"`
	Chat      *ChatConfig      `json:"chat"`
}

type HTTPConfig struct {
	Host         string        `json:"host" env:"TANDEM_HTTP_HOST"`
	Port         int           `json:"port" env:"TANDEM_HTTP_PORT"`
	ReadTimeout  time.Duration `json:"-" env:"TANDEM_HTTP_READ_TIMEOUT"`
	WriteTimeout time.Duration `json:"-" env:"TANDEM_HTTP_WRITE_TIMEOUT"`
}

type WebSocketConfig struct {
	PingInterval time.Duration `json:"-" env:"TANDEM_WEBSOCKET_PING_INTERVAL"`
	ReadTimeout  time.Duration `json:"-" env:"TANDEM_WEBSOCKET_READ_TIMEOUT"`
	SendBuffer   int           `json:"send_buffer" env:"TANDEM_WEBSOCKET_SEND_BUFFER"`
}

type ChatConfig struct {
	// MaxMessageLength caps chat message text in runes.
	MaxMessageLength int `json:"max_message_length" env:"TANDEM_CHAT_MAX_MESSAGE_LENGTH"`
	// RematchDelay is the pause between breaking a skipped pairing and
	// searching for a new partner. Zero re-matches synchronously.
	RematchDelay time.Duration `json:"-" env:"TANDEM_CHAT_REMATCH_DELAY"`
	// MessagesPerMinute is the per-connection chat rate limit; zero or
	// negative disables it.
	MessagesPerMinute int `json:"messages_per_minute" env:"TANDEM_CHAT_MESSAGES_PER_MINUTE"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: &HTTPConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		WebSocket: &WebSocketConfig{
			PingInterval: 30 * time.Second,
			ReadTimeout:  60 * time.Second,
			SendBuffer:   100,
		},
		Chat: &ChatConfig{
			MaxMessageLength:  500,
			RematchDelay:      200 * time.Millisecond,
			MessagesPerMinute: 60,
		},
	}
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	if c.HTTP == nil {
		return fmt.Errorf("http configuration is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port must be between 1 and 65535")
	}
	if c.HTTP.Host == "" {
		return fmt.Errorf("http host cannot be empty")
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("http timeouts must be positive")
	}

	if c.WebSocket == nil {
		return fmt.Errorf("websocket configuration is required")
	}
	if c.WebSocket.PingInterval <= 0 {
		return fmt.Errorf("websocket ping interval must be positive")
	}
	if c.WebSocket.ReadTimeout <= c.WebSocket.PingInterval {
		return fmt.Errorf("websocket read timeout must exceed the ping interval")
	}
	if c.WebSocket.SendBuffer <= 0 {
		return fmt.Errorf("websocket send buffer must be positive")
	}

	if c.Chat == nil {
		return fmt.Errorf("chat configuration is required")
	}
	if c.Chat.MaxMessageLength <= 0 {
		return fmt.Errorf("chat max message length must be positive")
	}
	if c.Chat.RematchDelay < 0 {
		return fmt.Errorf("chat rematch delay cannot be negative")
	}

	return nil
}

// LoadFromEnv returns the defaults overridden by TANDEM_* environment
// variables.
func LoadFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// configFile mirrors Config for JSON parsing, with durations as strings.
type configFile struct {
	HTTP *struct {
		Host         string `json:"host"`
		Port         int    `json:"port"`
		ReadTimeout  string `json:"read_timeout"`
		WriteTimeout string `json:"write_timeout"`
	} `json:"http"`
	WebSocket *struct {
		PingInterval string `json:"ping_interval"`
		ReadTimeout  string `json:"read_timeout"`
		SendBuffer   int    `json:"send_buffer"`
	} `json:"websocket"`
	Chat *struct {
		MaxMessageLength  int    `json:"max_message_length"`
		RematchDelay      string `json:"rematch_delay"`
		MessagesPerMinute *int   `json:"messages_per_minute"`
	} `json:"chat"`
}

// LoadFromFile overlays a JSON config file onto base (defaults when nil) and
// validates the result.
func LoadFromFile(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file configFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg := base
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if file.HTTP != nil {
		if file.HTTP.Host != "" {
			cfg.HTTP.Host = file.HTTP.Host
		}
		if file.HTTP.Port > 0 {
			cfg.HTTP.Port = file.HTTP.Port
		}
		overlayDuration(&cfg.HTTP.ReadTimeout, file.HTTP.ReadTimeout)
		overlayDuration(&cfg.HTTP.WriteTimeout, file.HTTP.WriteTimeout)
	}
	if file.WebSocket != nil {
		overlayDuration(&cfg.WebSocket.PingInterval, file.WebSocket.PingInterval)
		overlayDuration(&cfg.WebSocket.ReadTimeout, file.WebSocket.ReadTimeout)
		if file.WebSocket.SendBuffer > 0 {
			cfg.WebSocket.SendBuffer = file.WebSocket.SendBuffer
		}
	}
	if file.Chat != nil {
		if file.Chat.MaxMessageLength > 0 {
			cfg.Chat.MaxMessageLength = file.Chat.MaxMessageLength
		}
		overlayDuration(&cfg.Chat.RematchDelay, file.Chat.RematchDelay)
		if file.Chat.MessagesPerMinute != nil {
			cfg.Chat.MessagesPerMinute = *file.Chat.MessagesPerMinute
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return cfg, nil
}

// LoadWithPrecedence builds the effective configuration: defaults, then
// environment overrides, then the optional config file. File errors other
// than absence are surfaced; a missing file silently falls back.
func LoadWithPrecedence(path string) (*Config, error) {
	cfg, err := LoadFromEnv()
	if err != nil {
		return nil, err
	}

	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromFile(path, cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlayDuration(dst *time.Duration, raw string) {
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil {
		*dst = d
	}
}
