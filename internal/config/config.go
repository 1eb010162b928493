// Package config resolves the credential and the optional config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "clickup"

	// ConfigFile is the optional settings filename inside Dir.
	ConfigFile = "config.yaml"

	// APIKeyEnv is the environment variable holding the API key.
	APIKeyEnv = "CLICKUP_API_KEY"

	DefaultBaseURL      = "https://api.clickup.com"
	DefaultTimeout      = 30 * time.Second
	DefaultPollAttempts = 4
	DefaultPollDelay    = 5 * time.Second
)

// ErrMissingAPIKey is returned by RequireAPIKey when the key is unset.
var ErrMissingAPIKey = errors.New(APIKeyEnv + " environment variable not found")

// Config holds settings for one invocation. It is not mutated after the
// dispatcher finishes building it.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIKey is the credential sent with every request.
	APIKey string

	BaseURL        string
	Timeout        time.Duration
	PollAttempts   int
	PollDelay      time.Duration
	AllowEmptyBody bool

	// Debug enables request tracing on stderr.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// JSON switches command output to raw JSON.
	JSON bool

	Logger *slog.Logger
}

// fileConfig mirrors config.yaml.
type fileConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	AllowEmptyBody bool          `yaml:"allow_empty_body"`
	Poll           struct {
		Attempts int           `yaml:"attempts"`
		Delay    time.Duration `yaml:"delay"`
	} `yaml:"poll"`
}

// New loads configuration from configDir (or the default directory when
// empty) and the process environment.
func New(configDir string) (*Config, error) {
	return Load(configDir, os.Getenv)
}

// Load is New with an injectable environment lookup.
func Load(configDir string, getenv func(string) string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:          dir,
		APIKey:       getenv(APIKeyEnv),
		BaseURL:      DefaultBaseURL,
		Timeout:      DefaultTimeout,
		PollAttempts: DefaultPollAttempts,
		PollDelay:    DefaultPollDelay,
	}

	data, err := os.ReadFile(cfg.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", cfg.Path(), err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", cfg.Path(), err)
	}
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.Timeout < 0 || fc.Poll.Delay < 0 || fc.Poll.Attempts < 0 {
		return nil, fmt.Errorf("parsing config %s: negative timeout, delay or attempts", cfg.Path())
	}
	if fc.Timeout > 0 {
		cfg.Timeout = fc.Timeout
	}
	if fc.Poll.Attempts > 0 {
		cfg.PollAttempts = fc.Poll.Attempts
	}
	if fc.Poll.Delay > 0 {
		cfg.PollDelay = fc.Poll.Delay
	}
	cfg.AllowEmptyBody = fc.AllowEmptyBody
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Path returns the path to the config file.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// RequireAPIKey returns ErrMissingAPIKey when no key is configured.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
