// ABOUTME: Configuration loading and parsing for vial-chat
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backend names accepted in store.backend.
const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// Config represents the complete vial-chat configuration
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Responder ResponderConfig `yaml:"responder"`
	Voice     VoiceConfig     `yaml:"voice"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StoreConfig holds message store configuration.
// Backend selects the document store implementation; the remaining fields
// apply to one backend or the other.
type StoreConfig struct {
	Backend         string `yaml:"backend"`          // "sqlite" or "firestore"
	Path            string `yaml:"path"`             // sqlite database file
	ProjectID       string `yaml:"project_id"`       // firestore project
	CredentialsFile string `yaml:"credentials_file"` // firestore service account key
	Collection      string `yaml:"collection"`       // firestore collection name
}

// ResponderConfig holds the remote inference endpoint configuration
type ResponderConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// VoiceConfig holds voice capture configuration
type VoiceConfig struct {
	Locale      string        `yaml:"locale"`
	SettleDelay time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	SettleDelayRaw string `yaml:"settle_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite backend")
		}
	case BackendFirestore:
		if c.Store.ProjectID == "" {
			return fmt.Errorf("store.project_id is required for the firestore backend")
		}
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q",
			BackendSQLite, BackendFirestore, c.Store.Backend)
	}

	if c.Responder.URL == "" {
		return fmt.Errorf("responder.url is required")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Responder.TimeoutRaw != "" {
		cfg.Responder.Timeout, err = time.ParseDuration(cfg.Responder.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing responder timeout %q: %w", cfg.Responder.TimeoutRaw, err)
		}
	}

	if cfg.Voice.SettleDelayRaw != "" {
		cfg.Voice.SettleDelay, err = time.ParseDuration(cfg.Voice.SettleDelayRaw)
		if err != nil {
			return fmt.Errorf("parsing voice settle_delay %q: %w", cfg.Voice.SettleDelayRaw, err)
		}
	}

	return nil
}
