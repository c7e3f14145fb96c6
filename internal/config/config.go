// ABOUTME: Configuration loading and parsing for voxnote
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete voxnote configuration
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Streaming   StreamingConfig   `yaml:"streaming"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	TokenServer TokenServerConfig `yaml:"token_server"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DatabaseConfig holds the local media store configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// StreamingConfig holds the live transcription endpoints
type StreamingConfig struct {
	// URL is the websocket endpoint of the streaming transcription service
	URL string `yaml:"url"`
	// TokenEndpoint issues the temporary credential used to dial URL
	TokenEndpoint string `yaml:"token_endpoint"`
}

// AnalysisConfig holds the batch analysis service configuration
type AnalysisConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`

	PollInterval time.Duration `yaml:"-"`
	PollTimeout  time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	PollIntervalRaw string `yaml:"poll_interval"`
	PollTimeoutRaw  string `yaml:"poll_timeout"`
}

// TokenServerConfig holds the temporary token server configuration
type TokenServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// ProviderURL is the provider's own token endpoint the server proxies to
	ProviderURL string `yaml:"provider_url"`
	APIKey      string `yaml:"api_key"`
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
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	// Streaming needs both halves of the handshake when configured
	if c.Streaming.URL != "" && c.Streaming.TokenEndpoint == "" {
		return fmt.Errorf("streaming.token_endpoint is required when streaming.url is set")
	}
	if c.Streaming.TokenEndpoint != "" && c.Streaming.URL == "" {
		return fmt.Errorf("streaming.url is required when streaming.token_endpoint is set")
	}

	// The token server cannot proxy without a provider endpoint and key
	if c.TokenServer.ListenAddr != "" {
		if c.TokenServer.ProviderURL == "" {
			return fmt.Errorf("token_server.provider_url is required when token_server.listen_addr is set")
		}
		if c.TokenServer.APIKey == "" {
			return fmt.Errorf("token_server.api_key is required when token_server.listen_addr is set")
		}
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Analysis.PollIntervalRaw != "" {
		cfg.Analysis.PollInterval, err = time.ParseDuration(cfg.Analysis.PollIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing poll_interval %q: %w", cfg.Analysis.PollIntervalRaw, err)
		}
	}

	if cfg.Analysis.PollTimeoutRaw != "" {
		cfg.Analysis.PollTimeout, err = time.ParseDuration(cfg.Analysis.PollTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing poll_timeout %q: %w", cfg.Analysis.PollTimeoutRaw, err)
		}
	}

	return nil
}
