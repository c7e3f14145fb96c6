// ABOUTME: Entry point for the voxnote recording and note-taking CLI
// ABOUTME: Records audio with live transcription and manages the local media store

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"

	"github.com/voxnote/voxnote/internal/config"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
__   _______  ___ __   ___   ___ | |_ ___
\ \ / / _ \ \/ / '_ \ / _ \ / _ \| __/ _ \
 \ V / (_) >  <| | | | (_) | (_) | ||  __/
  \_/ \___/_/\_\_| |_|\___/ \___/ \__\___|
`

// getConfigPath returns the path to the voxnote config file.
// Priority: VOXNOTE_CONFIG env var > XDG_CONFIG_HOME/voxnote/voxnote.yaml > ~/.config/voxnote/voxnote.yaml
func getConfigPath() string {
	if envPath := os.Getenv("VOXNOTE_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "voxnote.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "voxnote", "voxnote.yaml")
}

// getDataPath returns the path to the voxnote data directory.
// Priority: XDG_DATA_HOME/voxnote > ~/.local/share/voxnote
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "voxnote")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: voxnote <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  init                      Create a new config file interactively")
		fmt.Println("  record                    Record audio with live transcription")
		fmt.Println("  list                      List saved recordings")
		fmt.Println("  show <id>                 Show one recording in detail")
		fmt.Println("  tag <id> <name[:color]>   Add a tag to a recording")
		fmt.Println("  untag <id> <name>         Remove a tag from a recording")
		fmt.Println("  rename <id> <name>        Rename a recording")
		fmt.Println("  delete <id> [id...]       Delete recordings")
		fmt.Println("  clear                     Delete all recordings")
		fmt.Println("  analyze <id>              Run transcript, summary and sentiment analysis")
		fmt.Println("  export <id>               Export a recording as HTML plus audio")
		fmt.Println("  token-server              Serve temporary streaming tokens")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit()
	case "record":
		err = runRecord(ctx)
	case "list":
		err = runList(ctx)
	case "show":
		err = runShow(ctx)
	case "tag":
		err = runTag(ctx)
	case "untag":
		err = runUntag(ctx)
	case "rename":
		err = runRename(ctx)
	case "delete":
		err = runDelete(ctx)
	case "clear":
		err = runClear(ctx)
	case "analyze":
		err = runAnalyze(ctx)
	case "export":
		err = runExport(ctx)
	case "token-server":
		err = runTokenServer(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file and installs the configured logger as the
// process default.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(setupLogger(cfg.Logging))
	return cfg, nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
