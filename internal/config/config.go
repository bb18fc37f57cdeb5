// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and R744_ environment variables.
// - Validation failures wrap ErrInvalidConfig; provider failures wrap ErrLoadConfig.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// LogFile, when set, additionally writes logs to a rotating file.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8501".
	Addr string `koanf:"addr"`

	// ScalerPath and ModelPath locate the pre-fitted artifacts loaded at startup.
	ScalerPath string `koanf:"scaler_path"`
	ModelPath  string `koanf:"model_path"`

	// ImagePath locates the decorative header image.
	ImagePath string `koanf:"image_path"`

	// SessionCapacity bounds the number of operator sessions kept in memory.
	SessionCapacity int `koanf:"session_capacity"`

	// SessionTTLMinutes expires idle operator sessions.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`

	// CookieSecure marks the session cookie Secure (serve behind TLS).
	CookieSecure bool `koanf:"cookie_secure"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8501",
		ScalerPath:        "artifacts/scaler.json",
		ModelPath:         "artifacts/model.json",
		ImagePath:         "assets/ac.svg",
		SessionCapacity:   10_000,
		SessionTTLMinutes: 60,
	}
}

// SessionTTL returns the idle session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}
