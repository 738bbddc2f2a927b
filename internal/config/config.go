package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abelbrown/memescope/internal/api"
	"github.com/abelbrown/memescope/internal/notify"
	"github.com/abelbrown/memescope/internal/poll"
	"github.com/abelbrown/memescope/internal/search"
)

// Config is the persistent application configuration
type Config struct {
	API    APIConfig    `yaml:"api"`
	Search SearchConfig `yaml:"search"`
	Poll   PollConfig   `yaml:"poll"`
	UI     UIConfig     `yaml:"ui"`
	Log    LogConfig    `yaml:"log"`
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"` // collection calls only
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
}

// SearchConfig holds query pipeline settings
type SearchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// PollConfig holds portfolio polling settings
type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme                string `yaml:"theme"` // "dark" or "light"
	NotificationCap      int    `yaml:"notification_cap"`
	VisibleNotifications int    `yaml:"visible_notifications"`
	RecentSearches       int    `yaml:"recent_searches"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Events string `yaml:"events"` // JSONL diagnostics path, empty to disable
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       api.DefaultBaseURL,
			Timeout:       15 * time.Second,
			RatePerSecond: 10,
			Burst:         5,
		},
		Search: SearchConfig{
			Debounce: search.DefaultDelay,
		},
		Poll: PollConfig{
			Interval: poll.DefaultInterval,
		},
		UI: UIConfig{
			Theme:                "dark",
			NotificationCap:      notify.DefaultCapacity,
			VisibleNotifications: 3,
			RecentSearches:       5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".memescope", "config.yaml")
}

// Load reads config from path, or returns defaults when the file does not
// exist. Missing keys keep their default values. An empty path means
// ConfigPath().
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes config to path (ConfigPath() when empty)
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MEMESCOPE_API"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("MEMESCOPE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must not be negative")
	}
	if c.API.RatePerSecond < 0 {
		return errors.New("api.rate_per_second must not be negative")
	}
	if c.Search.Debounce <= 0 {
		return errors.New("search.debounce must be positive")
	}
	if c.Poll.Interval <= 0 {
		return errors.New("poll.interval must be positive")
	}
	if c.UI.NotificationCap <= 0 {
		return errors.New("ui.notification_cap must be positive")
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return fmt.Errorf("ui.theme %q must be dark or light", c.UI.Theme)
	}
	return nil
}

// ClientOptions converts the API section for api.New.
func (c *Config) ClientOptions() api.Options {
	return api.Options{
		BaseURL:       c.API.BaseURL,
		Timeout:       c.API.Timeout,
		RatePerSecond: c.API.RatePerSecond,
		Burst:         c.API.Burst,
	}
}
