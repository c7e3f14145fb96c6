// ABOUTME: The export command: write a recording as HTML notes plus audio
// ABOUTME: Renders the transcript and summary through goldmark

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/voxnote/voxnote/internal/store"
)

const exportPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>
`

func runExport(ctx context.Context) error {
	flags := flag.NewFlagSet("export", flag.ExitOnError)
	outDir := flags.String("out", ".", "Output directory")
	if err := flags.Parse(osArgs(2)); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: voxnote export [-out dir] <id>")
	}
	id, err := parseID(flags.Arg(0))
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

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	base := strings.TrimSuffix(m.Name, filepath.Ext(m.Name))

	audioPath := filepath.Join(*outDir, m.Name)
	if err := os.WriteFile(audioPath, m.Blob, 0644); err != nil {
		return fmt.Errorf("writing audio: %w", err)
	}

	page, err := renderNotes(m)
	if err != nil {
		return err
	}
	htmlPath := filepath.Join(*outDir, base+".html")
	if err := os.WriteFile(htmlPath, page, 0644); err != nil {
		return fmt.Errorf("writing notes: %w", err)
	}

	fmt.Printf("Exported %s\n", audioPath)
	fmt.Printf("Exported %s\n", htmlPath)
	return nil
}

// renderNotes builds a markdown document for the recording and renders it as
// a standalone HTML page.
func renderNotes(m *store.Media) ([]byte, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", m.Name)
	fmt.Fprintf(&md, "Recorded %s\n\n", m.CreatedAt.Format(time.RFC1123))

	if len(m.Tags) > 0 {
		fmt.Fprintf(&md, "Tags: %s\n\n", tagNames(m.Tags))
	}
	if !m.Sentiment.IsZero() {
		fmt.Fprintf(&md, "Sentiment: **%s** (confidence %.2f)\n\n", m.Sentiment.Overall, m.Sentiment.Confidence)
	}
	if m.Summary != "" {
		fmt.Fprintf(&md, "## Summary\n\n%s\n\n", m.Summary)
	}
	if m.Transcript != "" {
		fmt.Fprintf(&md, "## Transcript\n\n%s\n", m.Transcript)
	}

	renderer := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)

	var body bytes.Buffer
	if err := renderer.Convert([]byte(md.String()), &body); err != nil {
		return nil, fmt.Errorf("rendering notes: %w", err)
	}

	return []byte(fmt.Sprintf(exportPage, m.Name, body.String())), nil
}
