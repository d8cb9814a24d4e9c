// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/r14dd/matchsentinel/internal/common"
	"github.com/r14dd/matchsentinel/internal/poll"
	"github.com/spf13/viper"
)

// Services holds the base URL of every backend the console talks to.
type Services struct {
	Transactions  string
	RuleEngine    string
	Cases         string
	Notifications string
	Reporting     string
	AI            string
}

// HTTP holds transport settings.
type HTTP struct {
	Timeout time.Duration
}

// Auth holds the optional bearer token sent to every service.
type Auth struct {
	Token string
}

// Storage holds the location of the local annotation database.
type Storage struct {
	Path string
}

// Refresh controls the console's periodic dashboard refresh. Zero disables it.
type Refresh struct {
	Interval time.Duration
}

// Config is the fully resolved console configuration.
type Config struct {
	Auth     Auth
	Services Services
	Storage  Storage
	Poll     poll.Options
	HTTP     HTTP
	Refresh  Refresh
}

// envFallbacks maps config keys to unprefixed environment variables that are
// consulted when neither the config file nor SENTINEL_* set a value.
var envFallbacks = map[string]string{
	"services.transactions":  "TRANSACTION_SERVICE_URL",
	"services.rule_engine":   "RULE_ENGINE_URL",
	"services.cases":         "CASE_SERVICE_URL",
	"services.notifications": "NOTIFICATION_SERVICE_URL",
	"services.reporting":     "REPORTING_SERVICE_URL",
	"services.ai":            "AI_SERVICE_URL",
	"auth.token":             "MATCHSENTINEL_TOKEN",
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("services.transactions", "http://localhost:8082")
	v.SetDefault("services.rule_engine", "http://localhost:8083")
	v.SetDefault("services.cases", "http://localhost:8084")
	v.SetDefault("services.notifications", "http://localhost:8085")
	v.SetDefault("services.reporting", "http://localhost:8086")
	v.SetDefault("services.ai", "http://localhost:8087")

	v.SetDefault("poll.max_attempts", poll.DefaultMaxAttempts)
	v.SetDefault("poll.interval", poll.DefaultInterval)

	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("refresh.interval", 15*time.Second)
	v.SetDefault("storage.path", "~/.local/share/sentinel/console.db")
}

// Load resolves configuration from v. Precedence is:
// 1. Viper (config file or SENTINEL_ env vars)
// 2. Unprefixed service environment variables (RULE_ENGINE_URL, ...)
// 3. Defaults
func Load(v *viper.Viper) (*Config, error) {
	get := func(key string) string {
		if v.InConfig(key) || os.Getenv(envKey(key)) != "" {
			return v.GetString(key)
		}
		if fallback, ok := envFallbacks[key]; ok {
			if val := os.Getenv(fallback); val != "" {
				return val
			}
		}
		return v.GetString(key)
	}

	cfg := &Config{
		Services: Services{
			Transactions:  trimURL(get("services.transactions")),
			RuleEngine:    trimURL(get("services.rule_engine")),
			Cases:         trimURL(get("services.cases")),
			Notifications: trimURL(get("services.notifications")),
			Reporting:     trimURL(get("services.reporting")),
			AI:            trimURL(get("services.ai")),
		},
		Poll: poll.Options{
			MaxAttempts: v.GetInt("poll.max_attempts"),
			Interval:    v.GetDuration("poll.interval"),
		},
		HTTP:    HTTP{Timeout: v.GetDuration("http.timeout")},
		Auth:    Auth{Token: get("auth.token")},
		Storage: Storage{Path: ExpandPath(v.GetString("storage.path"))},
		Refresh: Refresh{Interval: v.GetDuration("refresh.interval")},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every service URL is absolute and the poll budget is sane.
func (c *Config) Validate() error {
	urls := map[string]string{
		"services.transactions":  c.Services.Transactions,
		"services.rule_engine":   c.Services.RuleEngine,
		"services.cases":         c.Services.Cases,
		"services.notifications": c.Services.Notifications,
		"services.reporting":     c.Services.Reporting,
		"services.ai":            c.Services.AI,
	}
	for key, raw := range urls {
		if raw == "" {
			return fmt.Errorf("%w: %s", common.ErrMissingConfig, key)
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s must be an absolute URL, got %q", common.ErrInvalidConfig, key, raw)
		}
	}

	if c.Poll.MaxAttempts <= 0 {
		return fmt.Errorf("%w: poll.max_attempts must be positive", common.ErrInvalidConfig)
	}
	if c.Poll.Interval < 0 {
		return fmt.Errorf("%w: poll.interval must not be negative", common.ErrInvalidConfig)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("%w: http.timeout must be positive", common.ErrInvalidConfig)
	}
	if c.Refresh.Interval < 0 {
		return fmt.Errorf("%w: refresh.interval must not be negative", common.ErrInvalidConfig)
	}
	return nil
}

// EnvKeyReplacer maps nested keys onto SENTINEL_ environment variable names.
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

func envKey(key string) string {
	return "SENTINEL_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func trimURL(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
