// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HordeConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"` // "0000000000" is the service's anonymous key
	ClientAgent string        `yaml:"client_agent"`
	Timeout     time.Duration `yaml:"timeout"`
	// PollInterval drives the status-check tick for the in-flight job.
	PollInterval time.Duration `yaml:"poll_interval"`
	// FetchAttempts caps how many ticks may retry a failed result download
	// after the job reported done.
	FetchAttempts int `yaml:"fetch_attempts"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type WebConfig struct {
	Port       int           `yaml:"port"`
	AccessKey  string        `yaml:"access_key"` // login key for the control API
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type NotifyConfig struct {
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
	Workers        int    `yaml:"workers"`
}

type Config struct {
	Horde    HordeConfig    `yaml:"horde"`
	Log      LogConfig      `yaml:"log"`
	Web      WebConfig      `yaml:"web"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Notify   NotifyConfig   `yaml:"notify"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Horde.BaseURL == "" {
		cfg.Horde.BaseURL = "https://stablehorde.net/api/v2"
	}
	if cfg.Horde.APIKey == "" {
		cfg.Horde.APIKey = "0000000000"
	}
	if cfg.Horde.ClientAgent == "" {
		cfg.Horde.ClientAgent = "horde-image-client:1.0:unknown"
	}
	if cfg.Horde.Timeout <= 0 {
		cfg.Horde.Timeout = 15 * time.Second
	}
	if cfg.Horde.PollInterval <= 0 {
		cfg.Horde.PollInterval = time.Second
	}
	if cfg.Horde.FetchAttempts <= 0 {
		cfg.Horde.FetchAttempts = 5
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Web.SessionTTL <= 0 {
		cfg.Web.SessionTTL = 30 * time.Minute
	}
	if cfg.Notify.Workers <= 0 {
		cfg.Notify.Workers = 2
	}

	// Minimal validation
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Web.AccessKey == "" {
		return nil, errors.New("web.access_key is required")
	}
	if cfg.Web.JWTSecret == "" {
		return nil, errors.New("web.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
