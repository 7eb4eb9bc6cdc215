package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no config in the
// environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{"MODEL", "API_KEY", "ENDPOINT", "MAX_IN_FLIGHT", "RPS", "TIMEOUT"} {
		t.Setenv(EnvPrefix+"_"+key, "")
	}
	t.Setenv("OPENAI_API_KEY", "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "gpt-4-0125-preview", cfg.Model)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, time.Second, cfg.InitialBackoff)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: file-model\nmax_in_flight: 4\ntimeout: 30s\nrps: 2.5\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "file-model", cfg.Model)
	assert.Equal(t, 4, cfg.MaxInFlight)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.InDelta(t, 2.5, cfg.RPS, 1e-9)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parallel-prompt.yaml"), []byte("schema_model: tiny\n"), 0o644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "tiny", cfg.SchemaModel)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: file-model\nendpoint: http://file\n"), 0o644))
	t.Setenv("PARALLEL_PROMPT_MODEL", "env-model")
	t.Setenv("PARALLEL_PROMPT_ENDPOINT", "http://env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("model", "", "")
	flags.String("endpoint", "", "")
	require.NoError(t, flags.Set("model", "flag-model"))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "flag-model", cfg.Model)
	assert.Equal(t, "http://env", cfg.Endpoint)
}

func TestLoadAPIKeyFallback(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "sk-openai", cfg.APIKey)

	t.Setenv("PARALLEL_PROMPT_API_KEY", "sk-prefixed")
	cfg, err = Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "sk-prefixed", cfg.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PARALLEL_PROMPT_BURST=7\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("PARALLEL_PROMPT_BURST") })

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Burst)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative in flight", func(c *Config) { c.MaxInFlight = -1 }},
		{"negative rps", func(c *Config) { c.RPS = -2 }},
		{"no attempts", func(c *Config) { c.MaxAttempts = 0 }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
