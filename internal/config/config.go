package config

// Package config provides configuration management for netai.
//
// Configuration sources (priority order, high to low):
//   1. Environment variables (NETAI_* prefix)
//   2. YAML config file (optional)
//   3. Built-in defaults

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config contains all configuration fields.
type Config struct {
	// Server configuration
	Server struct {
		Host string
		Port int
		// RateLimitPerMin caps API requests per client IP. Zero disables.
		RateLimitPerMin int
	}

	// LLM provider configuration (OpenAI-compatible endpoint)
	LLM struct {
		BaseURL      string
		APIKey       string
		DefaultModel string
		Temperature  float64
		MaxTokens    int
		// MockMode substitutes the canned-response client; no network calls.
		MockMode bool
	}

	// Telemetry configuration
	Telemetry struct {
		// SimulateData selects the simulated measurement source and tracer.
		SimulateData bool
		// FetchTimeoutSeconds bounds each measurement/trace fetch.
		FetchTimeoutSeconds int
	}

	// Chat configuration
	Chat struct {
		// MaxHistory bounds a conversation's retained message count.
		MaxHistory int
		// ContextWindow is how many trailing messages are sent per turn.
		ContextWindow int
	}

	// Logging configuration
	Logging struct {
		Level      string
		Format     string
		FilePath   string
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
		Compress   bool
	}
}

// Manager loads configuration and watches the file for changes.
type Manager struct {
	v    *viper.Viper
	path string
}

// NewManager creates a manager for the given config file path. An empty
// path uses defaults and environment variables only.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load reads configuration from all sources and validates it.
func (m *Manager) Load() (*Config, error) {
	m.v = viper.New()
	if m.path != "" {
		m.v.SetConfigFile(m.path)
		m.v.SetConfigType("yaml")
	}

	m.v.SetEnvPrefix("NETAI")
	m.v.AutomaticEnv()
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(m.v)

	if m.path != "" {
		if err := m.v.ReadInConfig(); err != nil {
			// A missing file is fine; the path is optional.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := m.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watch re-reads the config file on change and hands the fresh Config to
// onChange. Invalid updates are dropped.
func (m *Manager) Watch(onChange func(*Config)) {
	if m.v == nil || m.path == "" {
		return
	}
	m.v.OnConfigChange(func(e fsnotify.Event) {
		cfg := &Config{}
		if err := m.v.Unmarshal(cfg); err != nil {
			return
		}
		if err := cfg.Validate(); err != nil {
			return
		}
		onChange(cfg)
	})
	m.v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.ratelimitpermin", 120)

	v.SetDefault("llm.baseurl", "https://llm.nrp-nautilus.io/v1")
	v.SetDefault("llm.apikey", "")
	v.SetDefault("llm.defaultmodel", "qwen3-vl")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.maxtokens", 2048)
	v.SetDefault("llm.mockmode", true)

	v.SetDefault("telemetry.simulatedata", true)
	v.SetDefault("telemetry.fetchtimeoutseconds", 30)

	v.SetDefault("chat.maxhistory", 50)
	v.SetDefault("chat.contextwindow", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.filepath", "")
	v.SetDefault("logging.maxsizemb", 100)
	v.SetDefault("logging.maxbackups", 10)
	v.SetDefault("logging.maxagedays", 30)
	v.SetDefault("logging.compress", true)
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("invalid temperature: %g (must be 0-2)", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 8192 {
		return fmt.Errorf("invalid max tokens: %d (must be 1-8192)", c.LLM.MaxTokens)
	}
	if c.Chat.MaxHistory < 2 {
		return fmt.Errorf("invalid max history: %d (must be >= 2)", c.Chat.MaxHistory)
	}
	if c.Chat.ContextWindow < 1 {
		return fmt.Errorf("invalid context window: %d (must be >= 1)", c.Chat.ContextWindow)
	}
	if c.Telemetry.FetchTimeoutSeconds < 1 {
		return fmt.Errorf("invalid fetch timeout: %d", c.Telemetry.FetchTimeoutSeconds)
	}
	return nil
}
