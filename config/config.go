// Package config persists the application settings document: last known
// ring address, the gesture mapping table, and LLM provider settings.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"

	"github.com/wizpr/ringctl/mapping"
)

// Settings is the full persisted configuration document.
type Settings struct {
	Theme          string              `json:"theme" default:"dark"`
	LogLevel       string              `json:"log_level" default:"info"`
	LastBLEAddress string              `json:"last_ble_address"`
	Mappings       map[string][]string `json:"mappings"`
	OpenAI         OpenAISettings      `json:"openai"`
	Ollama         OllamaSettings      `json:"ollama"`
	OpenAICompat   CompatSettings      `json:"openai_compat"`
}

// OpenAISettings configures the hosted OpenAI provider.
type OpenAISettings struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model" default:"gpt-4o-mini"`
	BaseURL string `json:"base_url"`
}

// OllamaSettings configures the local Ollama provider.
type OllamaSettings struct {
	BaseURL string `json:"base_url" default:"http://127.0.0.1:11434"`
	Model   string `json:"model" default:"llama3.1:8b"`
}

// CompatSettings configures a generic OpenAI-compatible server.
type CompatSettings struct {
	BaseURL string `json:"base_url" default:"http://127.0.0.1:8080"`
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
}

// DefaultSettings returns a fully populated settings document.
func DefaultSettings() *Settings {
	s := &Settings{}
	defaults.SetDefaults(s)
	s.Mappings = mapping.Defaults()
	return s
}

// normalize fills gaps a hand-edited or older document may have.
func (s *Settings) normalize() {
	defaults.SetDefaults(s)
	if s.Mappings == nil {
		s.Mappings = mapping.Defaults()
	}
}

// ParseLogLevel converts the document's log level to a logrus level,
// defaulting to info on unknown values.
func (s *Settings) ParseLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// NewLogger creates a logger configured per the settings document.
func (s *Settings) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(s.ParseLogLevel())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return logger
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "ringctl.json"
		}
		return filepath.Join(home, ".ringctl", "config.json")
	}
	return filepath.Join(dir, "ringctl", "config.json")
}
