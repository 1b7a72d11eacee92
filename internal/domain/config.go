package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ClientConfig holds client configuration loaded from .policyguard.yaml.
type ClientConfig struct {
	ServerURL string        `yaml:"server_url" json:"server_url"`
	UserID    string        `yaml:"user_id"    json:"user_id"`
	Timeout   time.Duration `yaml:"timeout"    json:"timeout,omitempty"`
	StateDir  string        `yaml:"state_dir"  json:"state_dir"`
	LogLevel  string        `yaml:"log_level"  json:"log_level,omitempty"`
	Watch     WatchConfig   `yaml:"watch"      json:"watch"`
}

// WatchConfig tunes the long-running watch mode.
type WatchConfig struct {
	Debounce        time.Duration `yaml:"debounce"         json:"debounce,omitempty"`
	HistorySchedule string        `yaml:"history_schedule" json:"history_schedule,omitempty"`
	MetricsAddr     string        `yaml:"metrics_addr"     json:"metrics_addr,omitempty"`
}

const (
	DefaultServerURL       = "http://localhost:8000"
	DefaultUserID          = "anonymous"
	DefaultStateDir        = ".policyguard"
	DefaultDebounce        = 500 * time.Millisecond
	DefaultHistorySchedule = "@every 5m"
)

// ValidLogLevels enumerates the accepted log_level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns the configuration used when no file exists.
// Timeout is zero: the transport default applies.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		ServerURL: DefaultServerURL,
		UserID:    DefaultUserID,
		StateDir:  DefaultStateDir,
		LogLevel:  "info",
		Watch: WatchConfig{
			Debounce:        DefaultDebounce,
			HistorySchedule: DefaultHistorySchedule,
		},
	}
}

// WithDefaults fills every unset field from DefaultConfig.
func (c ClientConfig) WithDefaults() ClientConfig {
	d := DefaultConfig()
	if c.ServerURL == "" {
		c.ServerURL = d.ServerURL
	}
	if c.UserID == "" {
		c.UserID = d.UserID
	}
	if c.StateDir == "" {
		c.StateDir = d.StateDir
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = d.Watch.Debounce
	}
	if c.Watch.HistorySchedule == "" {
		c.Watch.HistorySchedule = d.Watch.HistorySchedule
	}
	return c
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ClientConfig) Validate() error {
	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil {
			return fmt.Errorf("invalid server_url %q: %w", c.ServerURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("server_url %q must use http or https", c.ServerURL)
		}
		if u.Host == "" {
			return fmt.Errorf("server_url %q has no host", c.ServerURL)
		}
	}

	if strings.ContainsAny(c.UserID, "/?#") {
		return fmt.Errorf("user_id %q must not contain '/', '?' or '#'", c.UserID)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}

	if c.LogLevel != "" && !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("unknown log_level %q (valid: %s)", c.LogLevel, strings.Join(ValidLogLevels, ", "))
	}

	if c.Watch.HistorySchedule != "" {
		if _, err := cron.ParseStandard(c.Watch.HistorySchedule); err != nil {
			return fmt.Errorf("invalid watch.history_schedule %q: %w", c.Watch.HistorySchedule, err)
		}
	}

	return nil
}

func isValidLogLevel(level string) bool {
	for _, l := range ValidLogLevels {
		if strings.EqualFold(l, level) {
			return true
		}
	}
	return false
}
