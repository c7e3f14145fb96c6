// ABOUTME: The init command: interactive configuration setup
// ABOUTME: Writes a voxnote.yaml and prepares the data directory

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("voxnote configuration setup")
	fmt.Println("===========================")
	fmt.Println()

	// Default paths
	defaultConfigPath := getConfigPath()
	defaultDataPath := getDataPath()
	defaultDbPath := filepath.Join(defaultDataPath, "voxnote.db")

	// Output filename
	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	// Check if file exists
	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Database
	fmt.Println("\n--- Database Configuration ---")
	dbPath := prompt(reader, "SQLite database path", defaultDbPath)

	// Streaming
	fmt.Println("\n--- Live Transcription ---")
	streamURL := prompt(reader, "Streaming websocket URL (leave empty to disable)", "")
	var tokenEndpoint string
	if streamURL != "" {
		tokenEndpoint = prompt(reader, "Token endpoint", "http://localhost:8181/token")
	}

	// Analysis
	fmt.Println("\n--- Analysis Service ---")
	analysisURL := prompt(reader, "Analysis base URL (leave empty to disable)", "")
	var apiKeyRef string
	if analysisURL != "" {
		apiKeyRef = prompt(reader, "API key (or ${ENV_VAR} reference)", "${VOXNOTE_API_KEY}")
	}

	// Token server
	fmt.Println("\n--- Token Server ---")
	enableTokenServer := prompt(reader, "Serve temporary tokens locally?", "no")
	tokenServerEnabled := strings.ToLower(enableTokenServer) == "yes" || strings.ToLower(enableTokenServer) == "y"

	var listenAddr, providerURL string
	if tokenServerEnabled {
		listenAddr = prompt(reader, "Listen address", ":8181")
		providerURL = prompt(reader, "Provider token URL", "")
		if apiKeyRef == "" {
			apiKeyRef = prompt(reader, "API key (or ${ENV_VAR} reference)", "${VOXNOTE_API_KEY}")
		}
	}

	// Logging
	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	// Generate config
	var cfg strings.Builder
	cfg.WriteString("# voxnote configuration\n")
	cfg.WriteString("# Generated by voxnote init\n\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	cfg.WriteString("\n")

	if streamURL != "" {
		cfg.WriteString("streaming:\n")
		cfg.WriteString(fmt.Sprintf("  url: \"%s\"\n", streamURL))
		cfg.WriteString(fmt.Sprintf("  token_endpoint: \"%s\"\n", tokenEndpoint))
		cfg.WriteString("\n")
	}

	if analysisURL != "" {
		cfg.WriteString("analysis:\n")
		cfg.WriteString(fmt.Sprintf("  base_url: \"%s\"\n", analysisURL))
		cfg.WriteString(fmt.Sprintf("  api_key: \"%s\"\n", apiKeyRef))
		cfg.WriteString("  poll_interval: \"3s\"\n")
		cfg.WriteString("  poll_timeout: \"10m\"\n")
		cfg.WriteString("\n")
	}

	if tokenServerEnabled {
		cfg.WriteString("token_server:\n")
		cfg.WriteString(fmt.Sprintf("  listen_addr: \"%s\"\n", listenAddr))
		cfg.WriteString(fmt.Sprintf("  provider_url: \"%s\"\n", providerURL))
		cfg.WriteString(fmt.Sprintf("  api_key: \"%s\"\n", apiKeyRef))
		cfg.WriteString("\n")
	}

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	// Ensure config directory exists
	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write config file
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	// Ensure data directory exists
	dataDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Println("\nTo record:")
	fmt.Printf("  voxnote record --name \"My first note\"\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
