// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "voxnote.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: "./voxnote.db"

streaming:
  url: "wss://api.example.com/v2/realtime/ws"
  token_endpoint: "http://localhost:8181/token"

analysis:
  base_url: "https://api.example.com"
  api_key: "key-123"
  poll_interval: "3s"
  poll_timeout: "10m"

token_server:
  listen_addr: ":8181"
  provider_url: "https://api.example.com/v2/realtime/token"
  api_key: "key-123"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify database config
	if cfg.Database.Path != "./voxnote.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./voxnote.db")
	}

	// Verify streaming config
	if cfg.Streaming.URL != "wss://api.example.com/v2/realtime/ws" {
		t.Errorf("Streaming.URL = %q, want %q", cfg.Streaming.URL, "wss://api.example.com/v2/realtime/ws")
	}
	if cfg.Streaming.TokenEndpoint != "http://localhost:8181/token" {
		t.Errorf("Streaming.TokenEndpoint = %q", cfg.Streaming.TokenEndpoint)
	}

	// Verify analysis config with duration parsing
	if cfg.Analysis.BaseURL != "https://api.example.com" {
		t.Errorf("Analysis.BaseURL = %q", cfg.Analysis.BaseURL)
	}
	if cfg.Analysis.APIKey != "key-123" {
		t.Errorf("Analysis.APIKey = %q, want %q", cfg.Analysis.APIKey, "key-123")
	}
	if cfg.Analysis.PollInterval != 3*time.Second {
		t.Errorf("Analysis.PollInterval = %v, want %v", cfg.Analysis.PollInterval, 3*time.Second)
	}
	if cfg.Analysis.PollTimeout != 10*time.Minute {
		t.Errorf("Analysis.PollTimeout = %v, want %v", cfg.Analysis.PollTimeout, 10*time.Minute)
	}

	// Verify token server config
	if cfg.TokenServer.ListenAddr != ":8181" {
		t.Errorf("TokenServer.ListenAddr = %q, want %q", cfg.TokenServer.ListenAddr, ":8181")
	}
	if cfg.TokenServer.ProviderURL != "https://api.example.com/v2/realtime/token" {
		t.Errorf("TokenServer.ProviderURL = %q", cfg.TokenServer.ProviderURL)
	}

	// Verify logging config
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("VOXNOTE_TEST_API_KEY", "expanded-key")
	t.Setenv("VOXNOTE_TEST_DB", "/tmp/expanded.db")

	configPath := writeConfig(t, `
database:
  path: "${VOXNOTE_TEST_DB}"

analysis:
  base_url: "https://api.example.com"
  api_key: "${VOXNOTE_TEST_API_KEY}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/expanded.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/expanded.db")
	}
	if cfg.Analysis.APIKey != "expanded-key" {
		t.Errorf("Analysis.APIKey = %q, want %q", cfg.Analysis.APIKey, "expanded-key")
	}
}

func TestLoad_UnsetEnvVarExpandsEmpty(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: "./voxnote.db"

analysis:
  api_key: "${VOXNOTE_DEFINITELY_UNSET_VAR}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Analysis.APIKey != "" {
		t.Errorf("Analysis.APIKey = %q, want empty", cfg.Analysis.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("Load() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("error = %v, want reading config file", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "database:\n  path: [unclosed")

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("error = %v, want parsing config file", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: "./voxnote.db"

analysis:
  poll_interval: "not-a-duration"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "poll_interval") {
		t.Errorf("error = %v, want poll_interval", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: "database.path",
		},
		{
			name: "streaming url without token endpoint",
			cfg: Config{
				Database:  DatabaseConfig{Path: "./db"},
				Streaming: StreamingConfig{URL: "wss://x"},
			},
			wantErr: "streaming.token_endpoint",
		},
		{
			name: "token endpoint without streaming url",
			cfg: Config{
				Database:  DatabaseConfig{Path: "./db"},
				Streaming: StreamingConfig{TokenEndpoint: "http://x"},
			},
			wantErr: "streaming.url",
		},
		{
			name: "token server without provider url",
			cfg: Config{
				Database:    DatabaseConfig{Path: "./db"},
				TokenServer: TokenServerConfig{ListenAddr: ":8181", APIKey: "k"},
			},
			wantErr: "token_server.provider_url",
		},
		{
			name: "token server without api key",
			cfg: Config{
				Database:    DatabaseConfig{Path: "./db"},
				TokenServer: TokenServerConfig{ListenAddr: ":8181", ProviderURL: "http://x"},
			},
			wantErr: "token_server.api_key",
		},
		{
			name: "minimal valid",
			cfg: Config{
				Database: DatabaseConfig{Path: "./db"},
			},
		},
		{
			name: "full valid",
			cfg: Config{
				Database:    DatabaseConfig{Path: "./db"},
				Streaming:   StreamingConfig{URL: "wss://x", TokenEndpoint: "http://x"},
				TokenServer: TokenServerConfig{ListenAddr: ":8181", ProviderURL: "http://x", APIKey: "k"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tc.wantErr)
			}
		})
	}
}
