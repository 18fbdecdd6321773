// Package config holds operator-level configuration for an hrbot process.
//
// Everything is resolved through Viper so each key can come from an env var
// with the HRBOT_ prefix (e.g. "openai_api_key" → HRBOT_OPENAI_API_KEY) or
// from hrbot.config.yaml in the working directory or ~/.hrbot.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeyPort             = "port"
	KeyDataDir          = "data_dir"
	KeyOpenAIAPIKey     = "openai_api_key"
	KeyOpenAIModel      = "openai_model"
	KeyEmployeeData     = "employee_data"
	KeyVectorEndpoint   = "vector_endpoint"
	KeyVectorAPIKey     = "vector_api_key"
	KeyVectorIndex      = "vector_index"
	KeyFrontendOrigin   = "frontend_origin"
	KeyMaxMessages      = "max_messages"
	KeySessionTimeout   = "session_timeout"
	KeySweepInterval    = "sweep_interval"
	KeyContextStaleness = "context_staleness"
)

// Defaults. Session bounds mirror the conversation store's documented
// semantics: keep the last 10 turns, expire sessions after 30 minutes of
// inactivity, sweep every 5 minutes, clear inferred context after 5 minutes.
const (
	DefaultPort             = 3001
	DefaultModel            = "gpt-4-turbo-preview"
	DefaultVectorIndex      = "hr-policies"
	DefaultFrontendOrigin   = "http://localhost:3000"
	DefaultMaxMessages      = 10
	DefaultSessionTimeout   = 30 * time.Minute
	DefaultSweepInterval    = 5 * time.Minute
	DefaultContextStaleness = 5 * time.Minute
)

// Config holds resolved operator-level configuration for an hrbot process.
type Config struct {
	Port           int    // HTTP listen port
	DataDir        string // base directory for local state (~/.hrbot)
	OpenAIAPIKey   string // model backend credential
	OpenAIModel    string // chat completion model
	EmployeeData   string // optional CSV path overriding the embedded roster
	VectorEndpoint string // optional remote policy-search endpoint
	VectorAPIKey   string // bearer token for the remote policy-search backend
	VectorIndex    string // remote policy-search index name
	FrontendOrigin string // allowed CORS origin for the chat UI

	MaxMessages      int           // turns retained per session
	SessionTimeout   time.Duration // idle time before a session is swept
	SweepInterval    time.Duration // how often the sweep runs
	ContextStaleness time.Duration // inferred-context expiry window
}

// AuditDBPath returns the full path to the guardrail audit SQLite database.
func (c *Config) AuditDBPath() string {
	return filepath.Join(c.DataDir, "audit.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o700)
}

// VectorConfigured reports whether a remote policy-search backend is set up.
func (c *Config) VectorConfigured() bool {
	return c.VectorEndpoint != "" && c.VectorAPIKey != ""
}

func init() {
	viper.SetEnvPrefix("HRBOT")
	viper.AutomaticEnv()
	viper.SetDefault(KeyPort, DefaultPort)
	viper.SetDefault(KeyOpenAIModel, DefaultModel)
	viper.SetDefault(KeyVectorIndex, DefaultVectorIndex)
	viper.SetDefault(KeyFrontendOrigin, DefaultFrontendOrigin)
	viper.SetDefault(KeyMaxMessages, DefaultMaxMessages)
	viper.SetDefault(KeySessionTimeout, DefaultSessionTimeout)
	viper.SetDefault(KeySweepInterval, DefaultSweepInterval)
	viper.SetDefault(KeyContextStaleness, DefaultContextStaleness)
}

// Load reads configuration from Viper (which merges env vars, config file,
// and defaults) and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             viper.GetInt(KeyPort),
		DataDir:          resolveDataDir(),
		OpenAIAPIKey:     viper.GetString(KeyOpenAIAPIKey),
		OpenAIModel:      viper.GetString(KeyOpenAIModel),
		EmployeeData:     viper.GetString(KeyEmployeeData),
		VectorEndpoint:   viper.GetString(KeyVectorEndpoint),
		VectorAPIKey:     viper.GetString(KeyVectorAPIKey),
		VectorIndex:      viper.GetString(KeyVectorIndex),
		FrontendOrigin:   viper.GetString(KeyFrontendOrigin),
		MaxMessages:      viper.GetInt(KeyMaxMessages),
		SessionTimeout:   viper.GetDuration(KeySessionTimeout),
		SweepInterval:    viper.GetDuration(KeySweepInterval),
		ContextStaleness: viper.GetDuration(KeyContextStaleness),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func resolveDataDir() string {
	if dir := viper.GetString(KeyDataDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hrbot"
	}
	return filepath.Join(home, ".hrbot")
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535 (got %d)", c.Port)
	}
	if c.MaxMessages <= 0 {
		return fmt.Errorf("max_messages must be positive (got %d)", c.MaxMessages)
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("session_timeout must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive")
	}
	if c.ContextStaleness <= 0 {
		return fmt.Errorf("context_staleness must be positive")
	}
	return nil
}
