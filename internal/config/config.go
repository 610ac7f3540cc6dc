package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"
)

// Config is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Session   SessionConfig   `json:"session"`
	Database  DatabaseConfig  `json:"database"`
	Generator GeneratorConfig `json:"generator"`
	Game      GameConfig      `json:"game"`
	Notify    NotifyConfig    `json:"notify"`
}

type ServerConfig struct {
	Port     int    `json:"port"`
	LogLevel string `json:"log_level"`
}

// SessionConfig identifies the player this instance serves.
type SessionConfig struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `json:"postgres"`
	Redis    RedisConfig    `json:"redis"`
}

type PostgresConfig struct {
	DSN string `json:"dsn"`
}

type RedisConfig struct {
	URL string `json:"url"`
}

// GeneratorConfig configures the mission content backend. With an empty
// API key the deterministic static generator is used.
type GeneratorConfig struct {
	Endpoint       string `json:"endpoint"`
	APIKey         string `json:"api_key"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Timeout returns the per-call generation timeout, defaulting to 30s.
func (g GeneratorConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// GameConfig tunes the persistence and progression engine.
type GameConfig struct {
	DebounceMS     int `json:"debounce_ms"`
	StreakInterval int `json:"streak_bonus_interval"`
}

// DebounceDelay returns the configured write debounce, defaulting to 500ms.
func (g GameConfig) DebounceDelay() time.Duration {
	if g.DebounceMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(g.DebounceMS) * time.Millisecond
}

// StreakBonusInterval returns the streak multiple that grants bonus
// fragments, defaulting to 7.
func (g GameConfig) StreakBonusInterval() int {
	if g.StreakInterval <= 0 {
		return 7
	}
	return g.StreakInterval
}

type NotifyConfig struct {
	Discord DiscordNotifyConfig `json:"discord"`
	Slack   SlackNotifyConfig   `json:"slack"`
}

type DiscordNotifyConfig struct {
	Enabled   bool   `json:"enabled"`
	BotToken  string `json:"bot_token"`
	ChannelID string `json:"channel_id"`
}

type SlackNotifyConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token"`
	Channel  string `json:"channel"`
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a JSON config file and substitutes environment variable references.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Substitute ${VAR} and ${VAR:default} with environment values.
	resolved := envVarRe.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		name := parts[1]
		defaultVal := parts[2]
		if v := os.Getenv(name); v != "" {
			return v
		}
		return defaultVal
	})

	var cfg Config
	if err := json.Unmarshal([]byte(resolved), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Session.UserID == "" {
		cfg.Session.UserID = "local"
	}
	return &cfg, nil
}
