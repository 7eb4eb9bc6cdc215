// Package config loads settings from flags, the environment, .env files and
// an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/giantswarm/parallel-prompt/internal/bench"
	"github.com/giantswarm/parallel-prompt/internal/judge"
	"github.com/giantswarm/parallel-prompt/internal/llm"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PARALLEL_PROMPT"

// Config holds the settings shared by all commands.
type Config struct {
	Endpoint    string `mapstructure:"endpoint"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	SchemaModel string `mapstructure:"schema_model"`
	JudgeModel  string `mapstructure:"judge_model"`

	// MaxInFlight caps concurrent requests. Zero means unbounded.
	MaxInFlight int `mapstructure:"max_in_flight"`
	// RPS limits requests per second. Zero disables the limit.
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`

	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	// Timeout bounds a whole command. Zero means no deadline.
	Timeout time.Duration `mapstructure:"timeout"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Endpoint:       "https://api.openai.com/v1",
		Model:          bench.DefaultModel,
		SchemaModel:    bench.DefaultSchemaModel,
		JudgeModel:     judge.DefaultJudgeModel,
		MaxInFlight:    16,
		Burst:          1,
		MaxAttempts:    llm.DefaultMaxAttempts,
		InitialBackoff: llm.DefaultInitialDelay,
	}
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"endpoint":      "endpoint",
	"api-key":       "api_key",
	"model":         "model",
	"schema-model":  "schema_model",
	"judge-model":   "judge_model",
	"max-in-flight": "max_in_flight",
	"rps":           "rps",
	"timeout":       "timeout",
}

// Load resolves the configuration. Precedence from high to low: flags that
// were set, PARALLEL_PROMPT_* environment variables, the config file,
// defaults. A .env file in the working directory is loaded into the
// environment first. OPENAI_API_KEY is used when no API key is configured.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	cfg := Default()
	v.SetDefault("endpoint", cfg.Endpoint)
	v.SetDefault("api_key", cfg.APIKey)
	v.SetDefault("model", cfg.Model)
	v.SetDefault("schema_model", cfg.SchemaModel)
	v.SetDefault("judge_model", cfg.JudgeModel)
	v.SetDefault("max_in_flight", cfg.MaxInFlight)
	v.SetDefault("rps", cfg.RPS)
	v.SetDefault("burst", cfg.Burst)
	v.SetDefault("max_attempts", cfg.MaxAttempts)
	v.SetDefault("initial_backoff", cfg.InitialBackoff)
	v.SetDefault("timeout", cfg.Timeout)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %q: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("parallel-prompt")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "parallel-prompt"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, cfg.Validate()
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.MaxInFlight < 0:
		return fmt.Errorf("max_in_flight must not be negative, got %d", c.MaxInFlight)
	case c.RPS < 0:
		return fmt.Errorf("rps must not be negative, got %g", c.RPS)
	case c.MaxAttempts < 1:
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	case c.Timeout < 0:
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}
