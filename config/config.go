package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MEDIAINTEL"

// Default Gemini endpoint and model.
const (
	DefaultLLMBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultLLMModel   = "gemini-2.0-flash"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Cache   CacheConfig   `yaml:"cache" envconfig:"CACHE"`
	Upload  UploadConfig  `yaml:"upload" envconfig:"UPLOAD"`
	LLM     LLMConfig     `yaml:"llm" envconfig:"LLM"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	Mode            string        `yaml:"mode" envconfig:"MODE"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// CacheConfig bounds the in-memory dataset store.
type CacheConfig struct {
	MaxDatasets int `yaml:"max_datasets" envconfig:"MAX_DATASETS"`
}

// UploadConfig limits uploaded files.
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes" envconfig:"MAX_BYTES"`
}

// LLMConfig selects and configures the summary model.
type LLMConfig struct {
	Provider string        `yaml:"provider" envconfig:"PROVIDER"`
	APIKey   string        `yaml:"api_key" envconfig:"API_KEY"`
	Model    string        `yaml:"model" envconfig:"MODEL"`
	BaseURL  string        `yaml:"base_url" envconfig:"BASE_URL"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	Language string        `yaml:"language" envconfig:"LANGUAGE"`
	// RatePerMinute limits summary requests; 0 disables the limiter.
	RatePerMinute int `yaml:"rate_per_minute" envconfig:"RATE_PER_MINUTE"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8090,
			Mode:            "release",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Cache: CacheConfig{
			MaxDatasets: 8,
		},
		Upload: UploadConfig{
			MaxBytes: 32 << 20,
		},
		LLM: LLMConfig{
			Provider:      "gemini",
			Model:         DefaultLLMModel,
			BaseURL:       DefaultLLMBaseURL,
			Timeout:       60 * time.Second,
			Language:      "id",
			RatePerMinute: 10,
		},
	}
}

// Load reads .env, the optional YAML file and the environment. Precedence is
// defaults < YAML file < environment.
func Load(configFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Defaults()

	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "_CONFIG_FILE")
	}
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config file %q: %w", configFile, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", configFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode: %q", c.Server.Mode)
	}
	if c.Cache.MaxDatasets < 1 {
		return fmt.Errorf("cache max datasets must be at least 1, got %d", c.Cache.MaxDatasets)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive, got %d", c.Upload.MaxBytes)
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "gemini", "chat", "genai":
	default:
		return fmt.Errorf("unknown llm provider: %q", c.LLM.Provider)
	}
	switch c.LLM.Language {
	case "id", "en":
	default:
		return fmt.Errorf("unsupported summary language: %q", c.LLM.Language)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be positive, got %s", c.LLM.Timeout)
	}
	if c.LLM.RatePerMinute < 0 {
		return fmt.Errorf("llm rate per minute cannot be negative, got %d", c.LLM.RatePerMinute)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
