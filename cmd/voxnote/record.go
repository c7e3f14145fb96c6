// ABOUTME: The record command: capture, live transcript display, save
// ABOUTME: Reads 16kHz mono s16le PCM from a file or stdin

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/voxnote/voxnote/internal/capture"
	"github.com/voxnote/voxnote/internal/recorder"
	"github.com/voxnote/voxnote/internal/store"
	"github.com/voxnote/voxnote/internal/transcribe"
)

func runRecord(ctx context.Context) error {
	flags := flag.NewFlagSet("record", flag.ExitOnError)
	name := flags.String("name", "", "Recording name (default: Recording)")
	tagList := flags.String("tags", "", "Comma-separated tags, each name or name:color")
	input := flags.String("input", "-", "PCM input file, or - for stdin")
	if err := flags.Parse(osArgs(2)); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Streaming.URL == "" {
		return fmt.Errorf("streaming is not configured (set streaming.url and streaming.token_endpoint)")
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	var src capture.Source
	if *input == "-" {
		src = stdinSource()
	} else {
		src, err = capture.OpenPCMFile(*input)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
	}

	broadcaster := transcribe.NewBroadcaster(nil)
	session, err := recorder.NewSession(recorder.Config{
		Store:         st,
		TokenEndpoint: cfg.Streaming.TokenEndpoint,
		StreamURL:     cfg.Streaming.URL,
		Broadcaster:   broadcaster,
	})
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	color.New(color.FgHiBlack).Printf("    version: %s\n\n", version)

	updates, _ := broadcaster.Subscribe(ctx, session.ID())

	if err := session.Start(ctx, src); err != nil {
		return err
	}
	fmt.Println("  Recording. Press Ctrl+C to stop and save.")
	fmt.Println()

	// Show the live transcript until the user interrupts or the input ends
	gray := color.New(color.FgHiBlack)
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case u, ok := <-updates:
			if !ok {
				break loop
			}
			if u.Final {
				fmt.Printf("  %s\n", u.Segment)
			} else {
				gray.Printf("  %s\r", u.Segment)
			}
		}
	}

	// The interrupt context is spent; saving gets its own deadline
	saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	media, err := session.Stop(saveCtx, *name, parseTags(*tagList))
	if err != nil {
		return err
	}

	fmt.Println()
	color.New(color.FgGreen).Printf("  ✓ Saved recording %d: %s\n", media.ID, media.Name)
	if media.Transcript != "" {
		fmt.Printf("  Transcript: %s\n", media.Transcript)
	}
	return nil
}

// parseTags splits a comma-separated tag list. Each entry is a name with an
// optional :color suffix.
func parseTags(s string) []store.Tag {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var tags []store.Tag
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, clr, found := strings.Cut(entry, ":")
		tag := store.Tag{Name: name}
		if found {
			tag.Color = clr
		}
		tags = append(tags, tag)
	}
	return tags
}
