package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	t.Setenv("HRBOT_PORT", "")
	t.Setenv("HRBOT_DATA_DIR", "")
	t.Setenv("HRBOT_OPENAI_API_KEY", "")
	t.Setenv("HRBOT_OPENAI_MODEL", "")
	t.Setenv("HRBOT_VECTOR_ENDPOINT", "")
	t.Setenv("HRBOT_VECTOR_API_KEY", "")
	t.Setenv("HRBOT_MAX_MESSAGES", "")
	t.Setenv("HRBOT_SESSION_TIMEOUT", "")
	viper.Reset()
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

func TestLoad_Defaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultModel, cfg.OpenAIModel)
	assert.Equal(t, DefaultVectorIndex, cfg.VectorIndex)
	assert.Equal(t, DefaultFrontendOrigin, cfg.FrontendOrigin)
	assert.Equal(t, DefaultMaxMessages, cfg.MaxMessages)
	assert.Equal(t, DefaultSessionTimeout, cfg.SessionTimeout)
	assert.False(t, cfg.VectorConfigured())
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	resetViper(t)
	t.Setenv("HRBOT_PORT", "8080")
	t.Setenv("HRBOT_OPENAI_MODEL", "gpt-4o")
	t.Setenv("HRBOT_SESSION_TIMEOUT", "45m")
	t.Setenv("HRBOT_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, 45*time.Minute, cfg.SessionTimeout)
}

func TestLoad_InvalidPort(t *testing.T) {
	resetViper(t)
	t.Setenv("HRBOT_PORT", "99999")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestLoad_InvalidMaxMessages(t *testing.T) {
	resetViper(t)
	t.Setenv("HRBOT_MAX_MESSAGES", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_messages")
}

func TestVectorConfigured(t *testing.T) {
	resetViper(t)
	t.Setenv("HRBOT_VECTOR_ENDPOINT", "https://vectorize.example.com")
	t.Setenv("HRBOT_VECTOR_API_KEY", "vk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.VectorConfigured())
}

func TestAuditDBPath(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	t.Setenv("HRBOT_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "audit.db"), cfg.AuditDBPath())
}
