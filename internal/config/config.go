package config

import (
	"fmt"
	"os"

	"github.com/titanous/json5"
)

// Env variables that override config file secrets.
const (
	EnvBotToken = "RIGBOT_BOT_TOKEN"
	EnvAIAPIKey = "RIGBOT_AI_API_KEY"
)

// Config is the full rigbot configuration, loaded from a JSON5 file.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	AI       AIConfig       `json:"ai"`
	DB       DBConfig       `json:"db"`
	Catalog  CatalogConfig  `json:"catalog"`
	Refresh  RefreshConfig  `json:"refresh"`
	Web      WebConfig      `json:"web"`
	Sessions SessionsConfig `json:"sessions"`
}

type TelegramConfig struct {
	Token string `json:"token"`
}

// AIConfig configures the OpenAI-compatible review endpoint.
type AIConfig struct {
	APIKey    string `json:"apiKey"`
	APIBase   string `json:"apiBase"`
	Model     string `json:"model"`
	TimeoutMs int    `json:"timeoutMs"`
}

type DBConfig struct {
	Path string `json:"path"`
}

type CatalogConfig struct {
	CSVPath string `json:"csvPath"`
	Watch   bool   `json:"watch"`
}

// RefreshConfig controls the scheduled catalog price refresh.
type RefreshConfig struct {
	Enabled       bool           `json:"enabled"`
	Schedule      string         `json:"schedule"` // cron expression
	PriceSelector string         `json:"priceSelector"`
	MinDelayMs    int            `json:"minDelayMs"`
	MaxDelayMs    int            `json:"maxDelayMs"`
	TimeoutMs     int            `json:"timeoutMs"`
	Divisors      map[string]int `json:"divisors"` // host suffix → currency divisor
}

type WebConfig struct {
	Addr string `json:"addr"`
}

type SessionsConfig struct {
	CacheSize int `json:"cacheSize"`
}

// Default returns a config with all defaults filled in.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			APIBase:   "https://api.openai.com/v1",
			Model:     "gpt-4o-mini",
			TimeoutMs: 60000,
		},
		DB: DBConfig{Path: "rigbot.db"},
		Catalog: CatalogConfig{
			CSVPath: "components.csv",
		},
		Refresh: RefreshConfig{
			Schedule:      "0 */6 * * *",
			PriceSelector: "a-price-whole",
			MinDelayMs:    2000,
			MaxDelayMs:    5000,
			TimeoutMs:     30000,
			Divisors:      map[string]int{"hotline.ua": 41},
		},
		Web:      WebConfig{Addr: ":8080"},
		Sessions: SessionsConfig{CacheSize: 512},
	}
}

// Load reads a JSON5 config file, applies defaults and env overrides.
// A missing file is not an error: defaults plus env are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to env overrides
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := json5.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	d := Default()
	if cfg.AI.APIBase == "" {
		cfg.AI.APIBase = d.AI.APIBase
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = d.AI.Model
	}
	if cfg.AI.TimeoutMs <= 0 {
		cfg.AI.TimeoutMs = d.AI.TimeoutMs
	}
	if cfg.DB.Path == "" {
		cfg.DB.Path = d.DB.Path
	}
	if cfg.Refresh.Schedule == "" {
		cfg.Refresh.Schedule = d.Refresh.Schedule
	}
	if cfg.Refresh.PriceSelector == "" {
		cfg.Refresh.PriceSelector = d.Refresh.PriceSelector
	}
	if cfg.Refresh.MinDelayMs <= 0 {
		cfg.Refresh.MinDelayMs = d.Refresh.MinDelayMs
	}
	if cfg.Refresh.MaxDelayMs < cfg.Refresh.MinDelayMs {
		cfg.Refresh.MaxDelayMs = cfg.Refresh.MinDelayMs
	}
	if cfg.Refresh.TimeoutMs <= 0 {
		cfg.Refresh.TimeoutMs = d.Refresh.TimeoutMs
	}
	if cfg.Refresh.Divisors == nil {
		cfg.Refresh.Divisors = d.Refresh.Divisors
	}
	if cfg.Web.Addr == "" {
		cfg.Web.Addr = d.Web.Addr
	}
	if cfg.Sessions.CacheSize <= 0 {
		cfg.Sessions.CacheSize = d.Sessions.CacheSize
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBotToken); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv(EnvAIAPIKey); v != "" {
		cfg.AI.APIKey = v
	}
}
