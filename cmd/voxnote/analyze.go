// ABOUTME: The analyze command: batch transcript, summary and sentiment
// ABOUTME: Runs a recording through the analysis service and stores the result

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/voxnote/voxnote/internal/analyze"
	"github.com/voxnote/voxnote/internal/store"
)

func runAnalyze(ctx context.Context) error {
	args := osArgs(2)
	if len(args) != 1 {
		return fmt.Errorf("usage: voxnote analyze <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Analysis.BaseURL == "" || cfg.Analysis.APIKey == "" {
		return fmt.Errorf("analysis is not configured (set analysis.base_url and analysis.api_key)")
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	m, err := st.GetMedia(ctx, id)
	if err != nil {
		return err
	}

	client, err := analyze.NewClient(analyze.Config{
		BaseURL:      cfg.Analysis.BaseURL,
		APIKey:       cfg.Analysis.APIKey,
		PollInterval: cfg.Analysis.PollInterval,
		PollTimeout:  cfg.Analysis.PollTimeout,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Analyzing %s (%d bytes)...\n", m.Name, len(m.Blob))

	result, err := client.Analyze(ctx, m.Blob, blobMIME(m.Name))
	if err != nil {
		return err
	}

	updated, err := st.UpdateMedia(ctx, id, store.MediaUpdate{
		Transcript: &result.Transcript,
		Summary:    &result.Summary,
		Sentiment:  &result.Sentiment,
	})
	if err != nil {
		return fmt.Errorf("saving analysis: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Analysis complete for recording %d\n", id)
	fmt.Println()
	if updated.Summary != "" {
		fmt.Printf("Summary:   %s\n", updated.Summary)
	}
	fmt.Printf("Sentiment: %s (confidence %.2f)\n", updated.Sentiment.Overall, updated.Sentiment.Confidence)
	if updated.Transcript != "" {
		fmt.Printf("Transcript: %s\n", truncate(updated.Transcript, 200))
	}
	return nil
}

// blobMIME infers the stored blob's MIME type from the recording filename.
// Recordings saved by this tool are always WAV; anything else is surfaced to
// the analysis client, which rejects formats it cannot normalize.
func blobMIME(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		return "audio/wav"
	case ".pcm", ".raw":
		return "audio/pcm"
	case "":
		return "application/octet-stream"
	default:
		return "audio/" + strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	}
}
