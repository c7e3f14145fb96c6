// Package config handles configuration loading for voxnote.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and duration parsing.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from VOXNOTE_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/voxnote/voxnote.yaml
//  3. ~/.config/voxnote/voxnote.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	analysis:
//	  api_key: "${VOXNOTE_API_KEY}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	analysis:
//	  poll_interval: "3s"
//	  poll_timeout: "10m"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Database:
//
//	database:
//	  path: "~/.local/share/voxnote/voxnote.db"
//
// Live transcription:
//
//	streaming:
//	  url: "wss://api.example.com/v2/realtime/ws"
//	  token_endpoint: "http://localhost:8181/token"
//
// Batch analysis:
//
//	analysis:
//	  base_url: "https://api.example.com"
//	  api_key: "${VOXNOTE_API_KEY}"
//	  poll_interval: "3s"
//	  poll_timeout: "10m"
//
// Token server:
//
//	token_server:
//	  listen_addr: ":8181"
//	  provider_url: "https://api.example.com/v2/realtime/token"
//	  api_key: "${VOXNOTE_API_KEY}"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - Database path presence
//   - Streaming URL and token endpoint configured together
//   - Token server provider URL and API key when a listen address is set
//   - Duration format validity
//
// # Usage
//
// Load from a specific path:
//
//	cfg, err := config.Load("/etc/voxnote/voxnote.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
