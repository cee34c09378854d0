package types

import (
	"errors"
	"time"
)

// Config validation errors.
var (
	ErrCredentialsEmpty  = errors.New("credentials file must not be empty")
	ErrRegistryPathEmpty = errors.New("registry path must not be empty")
	ErrRateLimitInvalid  = errors.New("rate limit calls and window must be positive")
	ErrRetryInvalid      = errors.New("retry policy is malformed")
	ErrCacheTTLInvalid   = errors.New("cache TTL must be positive")
	ErrActiveCapInvalid  = errors.New("active goal cap must be positive")
)

// RateLimitPolicy bounds outbound backend calls per user: at most Calls
// within each rolling Window.
type RateLimitPolicy struct {
	Calls  int           `json:"calls" yaml:"calls"`
	Window time.Duration `json:"window" yaml:"window"`
}

// RetryPolicy shapes the exponential backoff applied to transient failures.
// The curve is a tuning parameter, not a semantic contract; deployments
// override it in config.
type RetryPolicy struct {
	MaxAttempts    int           `json:"max_attempts" yaml:"max_attempts"`
	InitialBackoff time.Duration `json:"initial_backoff" yaml:"initial_backoff"`
	MaxBackoff     time.Duration `json:"max_backoff" yaml:"max_backoff"`
	BackoffFactor  float64       `json:"backoff_factor" yaml:"backoff_factor"`
	JitterFactor   float64       `json:"jitter_factor" yaml:"jitter_factor"`
}

// Validate checks that the policy is well-formed.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 || p.InitialBackoff <= 0 || p.MaxBackoff < p.InitialBackoff {
		return ErrRetryInvalid
	}
	if p.BackoffFactor < 1.0 || p.JitterFactor < 0 || p.JitterFactor > 1 {
		return ErrRetryInvalid
	}
	return nil
}

// PlannerConfig selects the text-generation backend for plan creation.
type PlannerConfig struct {
	Model   string `json:"model" yaml:"model"`
	APIKey  string `json:"api_key" yaml:"api_key"`
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// Config holds every tuning knob of the storage core. Zero values are
// filled in by Default; Validate rejects configurations the core cannot
// run with.
type Config struct {
	// CredentialsFile is the Google service-account key used by the
	// spreadsheet gateway.
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`

	// RegistryPath is the SQLite file mapping users to spreadsheet IDs.
	RegistryPath string `json:"registry_path" yaml:"registry_path"`

	RateLimit    RateLimitPolicy `json:"rate_limit" yaml:"rate_limit"`
	Retry        RetryPolicy     `json:"retry" yaml:"retry"`
	PlannerRetry RetryPolicy     `json:"planner_retry" yaml:"planner_retry"`

	// CacheTTL bounds how long a read snapshot may be served.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// MaxActiveGoals caps simultaneously active goals per user.
	MaxActiveGoals int `json:"max_active_goals" yaml:"max_active_goals"`

	Planner PlannerConfig `json:"planner" yaml:"planner"`
}

// Default returns the configuration used when config.yaml omits a value.
func Default() Config {
	return Config{
		RateLimit: RateLimitPolicy{Calls: 50, Window: time.Minute},
		Retry: RetryPolicy{
			MaxAttempts:    5,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     30 * time.Second,
			BackoffFactor:  2.0,
			JitterFactor:   0.2,
		},
		PlannerRetry: RetryPolicy{
			MaxAttempts:    3,
			InitialBackoff: 2 * time.Second,
			MaxBackoff:     20 * time.Second,
			BackoffFactor:  2.0,
			JitterFactor:   0.2,
		},
		CacheTTL:       30 * time.Second,
		MaxActiveGoals: 10,
		Planner:        PlannerConfig{Model: "gpt-4o-mini"},
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.CredentialsFile == "" {
		return ErrCredentialsEmpty
	}
	if c.RegistryPath == "" {
		return ErrRegistryPathEmpty
	}
	if c.RateLimit.Calls < 1 || c.RateLimit.Window <= 0 {
		return ErrRateLimitInvalid
	}
	if err := c.Retry.Validate(); err != nil {
		return err
	}
	if err := c.PlannerRetry.Validate(); err != nil {
		return err
	}
	if c.CacheTTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if c.MaxActiveGoals < 1 {
		return ErrActiveCapInvalid
	}
	return nil
}
