package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized on top of the config file.
const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvListenAddr   = "LISTEN_ADDR"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvJWTSecret    = "JWT_SECRET"
)

// Defaults applied when the config file omits values.
const (
	DefaultListen         = ":8318"
	DefaultGeminiModel    = "gemini-1.5-pro"
	DefaultGeminiBaseURL  = "https://generativelanguage.googleapis.com"
	DefaultGeminiTimeout  = 60 * time.Second
	DefaultInitialPoints  = 300
	DefaultGenerationCost = 5
	DefaultRedisPrefix    = "contentcrafter:rl"
)

// DatabaseConfig holds the database connection settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// GeminiConfig holds generative provider settings.
type GeminiConfig struct {
	APIKey  string        `yaml:"api-key"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base-url"`
	Timeout time.Duration `yaml:"timeout"`
}

// JWTConfig holds session token verification settings.
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// PointsConfig holds the point economy constants.
type PointsConfig struct {
	Initial        int64 `yaml:"initial"`
	GenerationCost int64 `yaml:"generation-cost"`
}

// RedisConfig holds Redis settings for the rate limiter backend.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// RateLimitConfig holds generation rate limit settings.
type RateLimitConfig struct {
	PerUser int         `yaml:"per-user"`
	Redis   RedisConfig `yaml:"redis"`
}

// Config holds resolved application configuration values.
type Config struct {
	Listen    string          `yaml:"listen"`
	Database  DatabaseConfig  `yaml:"database"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	JWT       JWTConfig       `yaml:"jwt"`
	Points    PointsConfig    `yaml:"points"`
	RateLimit RateLimitConfig `yaml:"rate-limit"`
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Listen: DefaultListen,
		Gemini: GeminiConfig{
			Model:   DefaultGeminiModel,
			BaseURL: DefaultGeminiBaseURL,
			Timeout: DefaultGeminiTimeout,
		},
		Points: PointsConfig{
			Initial:        DefaultInitialPoints,
			GenerationCost: DefaultGenerationCost,
		},
		RateLimit: RateLimitConfig{
			Redis: RedisConfig{Prefix: DefaultRedisPrefix},
		},
	}
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the config file, applies env overrides, and validates the result.
// A missing file is not an error; env overrides alone can supply a complete config.
func Load(configPath string) (Config, error) {
	cfg := Default()

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", configPath, errUnmarshal)
		}
	} else if !os.IsNotExist(errRead) {
		return Config{}, fmt.Errorf("config: read %s: %w", configPath, errRead)
	}

	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if listen := strings.TrimSpace(os.Getenv(EnvListenAddr)); listen != "" {
		cfg.Listen = listen
	}
	if key := strings.TrimSpace(os.Getenv(EnvGeminiAPIKey)); key != "" {
		cfg.Gemini.APIKey = key
	}
	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		cfg.JWT.Secret = secret
	}

	applyFallbacks(&cfg)

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return Config{}, fmt.Errorf("config: missing database dsn (set `database.dsn` in %s or env %s)", configPath, EnvDBConnection)
	}
	return cfg, nil
}

// applyFallbacks restores defaults for fields left empty by file and env.
func applyFallbacks(cfg *Config) {
	if strings.TrimSpace(cfg.Listen) == "" {
		cfg.Listen = DefaultListen
	}
	if strings.TrimSpace(cfg.Gemini.Model) == "" {
		cfg.Gemini.Model = DefaultGeminiModel
	}
	if strings.TrimSpace(cfg.Gemini.BaseURL) == "" {
		cfg.Gemini.BaseURL = DefaultGeminiBaseURL
	}
	if cfg.Gemini.Timeout <= 0 {
		cfg.Gemini.Timeout = DefaultGeminiTimeout
	}
	if cfg.Points.Initial < 0 {
		cfg.Points.Initial = DefaultInitialPoints
	}
	if cfg.Points.GenerationCost <= 0 {
		cfg.Points.GenerationCost = DefaultGenerationCost
	}
	if cfg.RateLimit.PerUser < 0 {
		cfg.RateLimit.PerUser = 0
	}
	if strings.TrimSpace(cfg.RateLimit.Redis.Prefix) == "" {
		cfg.RateLimit.Redis.Prefix = DefaultRedisPrefix
	}
	if cfg.RateLimit.Redis.DB < 0 {
		cfg.RateLimit.Redis.DB = 0
	}
}
