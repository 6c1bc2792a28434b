// Package config handles warrantyd configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/warrantyd/config.yaml, /etc/warrantyd/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "warrantyd", "config.yaml"))
	}

	paths = append(paths, "/etc/warrantyd/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all warrantyd configuration.
type Config struct {
	Listen    ListenConfig    `yaml:"listen"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Model     string          `yaml:"model"`
	Data      DataConfig      `yaml:"data"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Agent     AgentConfig     `yaml:"agent"`
	LogLevel  string          `yaml:"log_level"`
}

// ListenConfig defines the API server settings.
type ListenConfig struct {
	Address string `yaml:"address"` // Bind address (default: "" = all interfaces)
	Port    int    `yaml:"port"`
}

// AnthropicConfig defines Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
}

// DataConfig locates the CSV record store.
type DataConfig struct {
	// Dir is the directory holding the flat CSV tables (vehicles.csv,
	// warranties.csv, claims.csv, ...). Created on first write if absent.
	Dir string `yaml:"dir"`
}

// SessionsConfig defines conversation persistence settings.
type SessionsConfig struct {
	// Path is the SQLite database file for session checkpoints.
	// Empty disables persistence (sessions live in memory only).
	Path string `yaml:"path"`
}

// SMTPConfig defines outbound email delivery settings. When Host is
// empty the notifier runs in mock-delivery mode and reports that in
// its outcome payload instead of failing.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	// StartTLS selects plain-then-upgrade (port 587 style). False means
	// implicit TLS from the first byte (port 465 style).
	StartTLS bool `yaml:"starttls"`
}

// MQTTConfig defines the optional business-event publisher. Events are
// best-effort; an unset Broker disables publishing entirely.
type MQTTConfig struct {
	Broker     string `yaml:"broker"` // e.g. mqtt://broker.local:1883 or mqtts://...
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	TopicBase  string `yaml:"topic_base"`  // default "warrantyd"
	InstanceID string `yaml:"instance_id"` // default: hostname
}

// AgentConfig holds the conversation-loop tunables. The token
// thresholds and retry counts are configurable rather than hard-coded;
// the defaults match long-observed production behavior.
type AgentConfig struct {
	// TruncateTokens is the usage level above which the history is cut
	// to the last few messages (default 5000).
	TruncateTokens int `yaml:"truncate_tokens"`
	// StrictTokens is the usage level above which intermediate tool
	// messages are stripped before truncation (default 7000).
	StrictTokens int `yaml:"strict_tokens"`
	// TurnRetries is the number of times a turn is re-driven after an
	// apology or model failure before giving up (default 2).
	TurnRetries int `yaml:"turn_retries"`
	// MaxReprompts bounds the inner "respond with a real output" loop
	// (default 5).
	MaxReprompts int `yaml:"max_reprompts"`
	// ModelTimeoutSec bounds a single model invocation in seconds
	// (default 120).
	ModelTimeoutSec int `yaml:"model_timeout_sec"`
}

// ModelTimeout returns the per-invocation model deadline as a Duration.
func (a AgentConfig) ModelTimeout() time.Duration {
	return time.Duration(a.ModelTimeoutSec) * time.Second
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{Port: 8080},
		Model:  "claude-sonnet-4-20250514",
		Data:   DataConfig{Dir: "data"},
		SMTP:   SMTPConfig{Port: 587, StartTLS: true},
		MQTT:   MQTTConfig{TopicBase: "warrantyd"},
		Agent: AgentConfig{
			TruncateTokens:  5000,
			StrictTokens:    7000,
			TurnRetries:     2,
			MaxReprompts:    5,
			ModelTimeoutSec: 120,
		},
	}
}
