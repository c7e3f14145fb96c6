// ABOUTME: Media store commands: list, show, tag, rename, delete, clear
// ABOUTME: Formats recordings and their tags for the terminal

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/voxnote/voxnote/internal/capture"
	"github.com/voxnote/voxnote/internal/store"
)

// osArgs returns os.Args[n:], or nil when fewer arguments were given.
func osArgs(n int) []string {
	if len(os.Args) < n {
		return nil
	}
	return os.Args[n:]
}

func stdinSource() capture.Source {
	return capture.NewPCMSource(os.Stdin)
}

// openStore loads config and opens the media store. Callers must Close it.
func openStore() (*store.SQLiteStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return st, nil
}

// parseID parses a media ID argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid recording id %q", arg)
	}
	return id, nil
}

func runList(ctx context.Context) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	media, err := st.GetAllMedia(ctx)
	if err != nil {
		return err
	}
	if len(media) == 0 {
		fmt.Println("(no recordings)")
		return nil
	}
	store.SortByCreatedAtDesc(media)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tTAGS\tTRANSCRIPT")
	fmt.Fprintln(w, "--\t----\t-------\t----\t----------")
	for _, m := range media {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			m.ID, m.Name, m.CreatedAt.Format("Jan 02 15:04"),
			tagNames(m.Tags), truncate(m.Transcript, 40))
	}
	return w.Flush()
}

func runShow(ctx context.Context) error {
	args := osArgs(2)
	if len(args) != 1 {
		return fmt.Errorf("usage: voxnote show <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	m, err := st.GetMedia(ctx, id)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Printf("%s\n", m.Name)
	cyan.Println(strings.Repeat("-", len(m.Name)))
	fmt.Printf("ID:        %d\n", m.ID)
	fmt.Printf("Type:      %s\n", m.Type)
	fmt.Printf("Created:   %s\n", m.CreatedAt.Format(time.RFC1123))
	fmt.Printf("Size:      %d bytes\n", len(m.Blob))
	fmt.Printf("Tags:      %s\n", tagNames(m.Tags))
	if !m.Sentiment.IsZero() {
		fmt.Printf("Sentiment: %s (confidence %.2f)\n", m.Sentiment.Overall, m.Sentiment.Confidence)
	}
	if m.Summary != "" {
		fmt.Println()
		cyan.Println("Summary")
		fmt.Println(m.Summary)
	}
	if m.Transcript != "" {
		fmt.Println()
		cyan.Println("Transcript")
		fmt.Println(m.Transcript)
	}
	return nil
}

func runTag(ctx context.Context) error {
	args := osArgs(2)
	if len(args) != 2 {
		return fmt.Errorf("usage: voxnote tag <id> <name[:color]>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	added := parseTags(args[1])
	if len(added) == 0 {
		return fmt.Errorf("empty tag name")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	m, err := st.GetMedia(ctx, id)
	if err != nil {
		return err
	}

	tags := append(m.Tags, added...)
	updated, err := st.UpdateMedia(ctx, id, store.MediaUpdate{Tags: tags})
	if err != nil {
		return err
	}

	fmt.Printf("Tags: %s\n", tagNames(updated.Tags))
	return nil
}

func runUntag(ctx context.Context) error {
	args := osArgs(2)
	if len(args) != 2 {
		return fmt.Errorf("usage: voxnote untag <id> <name>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	name := strings.TrimSpace(args[1])

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	m, err := st.GetMedia(ctx, id)
	if err != nil {
		return err
	}

	// A non-nil empty slice clears the remaining tags
	kept := make([]store.Tag, 0, len(m.Tags))
	for _, t := range m.Tags {
		if !strings.EqualFold(t.Name, name) {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(m.Tags) {
		return fmt.Errorf("recording %d has no tag %q", id, name)
	}

	updated, err := st.UpdateMedia(ctx, id, store.MediaUpdate{Tags: kept})
	if err != nil {
		return err
	}

	fmt.Printf("Tags: %s\n", tagNames(updated.Tags))
	return nil
}

func runRename(ctx context.Context) error {
	args := osArgs(2)
	if len(args) != 2 {
		return fmt.Errorf("usage: voxnote rename <id> <name>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	updated, err := st.UpdateMedia(ctx, id, store.MediaUpdate{Name: &args[1]})
	if err != nil {
		return err
	}

	fmt.Printf("Renamed recording %d to %s\n", id, updated.Name)
	return nil
}

func runDelete(ctx context.Context) error {
	args := osArgs(2)
	if len(args) == 0 {
		return fmt.Errorf("usage: voxnote delete <id> [id...]")
	}
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteMediaBatch(ctx, ids); err != nil {
		return err
	}
	fmt.Printf("Deleted %d recording(s)\n", len(ids))
	return nil
}

func runClear(ctx context.Context) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	media, err := st.GetAllMedia(ctx)
	if err != nil {
		return err
	}
	if len(media) == 0 {
		fmt.Println("(no recordings)")
		return nil
	}

	fmt.Printf("Delete all %d recording(s)? [yes/no]: ", len(media))
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer != "yes" && answer != "y" {
		fmt.Println("Aborted.")
		return nil
	}

	if err := st.ClearMedia(ctx); err != nil {
		return err
	}
	fmt.Println("All recordings deleted.")
	return nil
}

func tagNames(tags []store.Tag) string {
	if len(tags) == 0 {
		return "(none)"
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
