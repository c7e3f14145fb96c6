// ABOUTME: Recording filename encoding and parsing
// ABOUTME: Names carry capture date/time: YYYY-MM-DD_HH-MM-SS_Name.ext

package naming

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultBase is used when the user gives a recording no name.
const DefaultBase = "Recording"

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

	// YYYY-MM-DD_HH-MM-SS_Name.ext
	namePattern = regexp.MustCompile(
		`^(\d{4}-\d{2}-\d{2})_(\d{2}-\d{2}-\d{2})_(.+)\.([A-Za-z0-9]+)$`)
)

// Parsed holds the fields recovered from a recording filename.
type Parsed struct {
	Date time.Time // capture date, midnight local
	Time time.Time // capture date and time of day
	Base string    // user-facing name
	Ext  string    // extension without the dot
}

// Format builds a recording filename base (no extension) from the capture
// time and a display name. Characters outside [a-zA-Z0-9_-] in the name are
// replaced with underscores.
func Format(t time.Time, base string) string {
	if base == "" {
		base = DefaultBase
	}
	safe := unsafeChars.ReplaceAllString(base, "_")
	return fmt.Sprintf("%04d-%02d-%02d_%02d-%02d-%02d_%s",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), safe)
}

// Parse extracts the capture date/time, display name and extension from a
// recording filename produced by Format.
func Parse(filename string) (*Parsed, error) {
	m := namePattern.FindStringSubmatch(filename)
	if m == nil {
		return nil, fmt.Errorf("filename %q does not match the recording name format", filename)
	}

	stamp, err := time.ParseInLocation("2006-01-02 15-04-05", m[1]+" "+m[2], time.Local)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp in %q: %w", filename, err)
	}

	return &Parsed{
		Date: time.Date(stamp.Year(), stamp.Month(), stamp.Day(), 0, 0, 0, 0, stamp.Location()),
		Time: stamp,
		Base: m[3],
		Ext:  m[4],
	}, nil
}

// Extension maps a MIME type to the file extension used in recording names.
// Unknown types fall back to "dat".
func Extension(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "mp3"):
		return "mp3"
	case strings.Contains(mimeType, "wav"):
		return "wav"
	case strings.Contains(mimeType, "webm"):
		return "webm"
	case strings.Contains(mimeType, "mp4"):
		return "mp4"
	case strings.Contains(mimeType, "ogg"):
		return "ogg"
	case strings.Contains(mimeType, "mpeg"):
		return "mp3"
	case strings.Contains(mimeType, "quicktime"):
		return "mov"
	default:
		return "dat"
	}
}
