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

type BotConfig struct {
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
	Workers  int    `yaml:"workers"` // polling workers
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AITimeout      time.Duration `yaml:"ai_timeout"` // the LLM path is slow
}

type CacheConfig struct {
	TTL      time.Duration `yaml:"ttl"`
	Capacity int           `yaml:"capacity"`
}

type BroadcastConfig struct {
	IntervalHours int           `yaml:"interval_hours"`
	SendDelay     time.Duration `yaml:"send_delay"`
	Categories    []string      `yaml:"categories"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type AdminConfig struct {
	Port int `yaml:"port"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	API       APIConfig       `yaml:"api"`
	Cache     CacheConfig     `yaml:"cache"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Store     StoreConfig     `yaml:"store"`
	Admin     AdminConfig     `yaml:"admin"`

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
	cfg.ApplyDefaults()

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.API.BaseURL == "" {
		return nil, errors.New("api.base_url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// ApplyDefaults fills every unset field with the production defaults.
func (cfg *Config) ApplyDefaults() {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.API.ConnectTimeout <= 0 {
		cfg.API.ConnectTimeout = 5 * time.Second
	}
	if cfg.API.RequestTimeout <= 0 {
		cfg.API.RequestTimeout = 30 * time.Second
	}
	if cfg.API.AITimeout <= 0 {
		cfg.API.AITimeout = 45 * time.Second
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 5 * time.Minute
	}
	if cfg.Cache.Capacity <= 0 {
		cfg.Cache.Capacity = 128
	}
	if cfg.Broadcast.IntervalHours <= 0 {
		cfg.Broadcast.IntervalHours = 1
	}
	if cfg.Broadcast.SendDelay <= 0 {
		cfg.Broadcast.SendDelay = 100 * time.Millisecond
	}
	if len(cfg.Broadcast.Categories) == 0 {
		cfg.Broadcast.Categories = []string{"General", "Tecnología", "Novela"}
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "data/subscriptions.json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 9092
	}
}
