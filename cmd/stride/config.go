// Config loading for the stride CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/stride/internal/logging"
	"github.com/mesh-intelligence/stride/internal/paths"
	"github.com/mesh-intelligence/stride/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// registryFileName is the SQLite file created under the data dir.
	registryFileName = "registry.db"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# Stride CLI configuration

# Google service-account key with Sheets and Drive access (required).
# credentials_file: /path/to/service-account.json

# Data directory for the user->spreadsheet registry (optional;
# overridable by --data-dir).
# data_dir:

logging:
  level: info
  format: text

planner:
  model: gpt-4o-mini
  # api_key defaults to $OPENAI_API_KEY
  # base_url:

# rate_limit:
#   calls: 50
#   window: 1m
# cache_ttl: 30s
# max_active_goals: 10
`

// loadConfig reads config.yaml from the config directory, creating the
// directory and a commented default file on first run. A missing
// config.yaml is not an error; defaults and environment fill the gaps.
func loadConfig(configDir string) (types.Config, logging.Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return types.Config{}, logging.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return types.Config{}, logging.Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	def := types.Default()

	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("rate_limit.calls", def.RateLimit.Calls)
	v.SetDefault("rate_limit.window", def.RateLimit.Window)
	v.SetDefault("retry.max_attempts", def.Retry.MaxAttempts)
	v.SetDefault("retry.initial_backoff", def.Retry.InitialBackoff)
	v.SetDefault("retry.max_backoff", def.Retry.MaxBackoff)
	v.SetDefault("retry.backoff_factor", def.Retry.BackoffFactor)
	v.SetDefault("retry.jitter_factor", def.Retry.JitterFactor)
	v.SetDefault("planner_retry.max_attempts", def.PlannerRetry.MaxAttempts)
	v.SetDefault("planner_retry.initial_backoff", def.PlannerRetry.InitialBackoff)
	v.SetDefault("planner_retry.max_backoff", def.PlannerRetry.MaxBackoff)
	v.SetDefault("planner_retry.backoff_factor", def.PlannerRetry.BackoffFactor)
	v.SetDefault("planner_retry.jitter_factor", def.PlannerRetry.JitterFactor)
	v.SetDefault("cache_ttl", def.CacheTTL)
	v.SetDefault("max_active_goals", def.MaxActiveGoals)
	v.SetDefault("planner.model", def.Planner.Model)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return types.Config{}, logging.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	dataDir, err := paths.ResolveDataDir(flagDataDir, v.GetString("data_dir"))
	if err != nil {
		return types.Config{}, logging.Config{}, err
	}

	cfg := types.Config{
		CredentialsFile: v.GetString("credentials_file"),
		RegistryPath:    filepath.Join(dataDir, registryFileName),
		RateLimit: types.RateLimitPolicy{
			Calls:  v.GetInt("rate_limit.calls"),
			Window: v.GetDuration("rate_limit.window"),
		},
		Retry:          retryPolicy(v, "retry"),
		PlannerRetry:   retryPolicy(v, "planner_retry"),
		CacheTTL:       v.GetDuration("cache_ttl"),
		MaxActiveGoals: v.GetInt("max_active_goals"),
		Planner: types.PlannerConfig{
			Model:   v.GetString("planner.model"),
			APIKey:  v.GetString("planner.api_key"),
			BaseURL: v.GetString("planner.base_url"),
		},
	}
	if cfg.Planner.APIKey == "" {
		cfg.Planner.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	logCfg := logging.Config{
		Level:  v.GetString("logging.level"),
		Format: v.GetString("logging.format"),
	}
	return cfg, logCfg, nil
}

func retryPolicy(v *viper.Viper, key string) types.RetryPolicy {
	return types.RetryPolicy{
		MaxAttempts:    v.GetInt(key + ".max_attempts"),
		InitialBackoff: v.GetDuration(key + ".initial_backoff"),
		MaxBackoff:     v.GetDuration(key + ".max_backoff"),
		BackoffFactor:  v.GetFloat64(key + ".backoff_factor"),
		JitterFactor:   v.GetFloat64(key + ".jitter_factor"),
	}
}

// ensureDefaultConfigFile creates a commented config.yaml if the file
// does not exist yet.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
