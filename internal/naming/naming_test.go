package naming

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Meeting(t *testing.T) {
	p, err := Parse("2024-06-10_15-30-00_Meeting.mp3")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.Local), p.Date)
	assert.Equal(t, time.Date(2024, 6, 10, 15, 30, 0, 0, time.Local), p.Time)
	assert.Equal(t, "Meeting", p.Base)
	assert.Equal(t, "mp3", p.Ext)
}

func TestParse_Malformed(t *testing.T) {
	for _, name := range []string{
		"",
		"Meeting.mp3",
		"2024-06-10_Meeting.mp3",
		"2024-06-10_15-30-00_Meeting",
	} {
		_, err := Parse(name)
		assert.Error(t, err, "name %q should not parse", name)
	}
}

func TestFormat(t *testing.T) {
	stamp := time.Date(2024, 6, 10, 15, 30, 0, 0, time.Local)

	assert.Equal(t, "2024-06-10_15-30-00_Meeting", Format(stamp, "Meeting"))
	assert.Equal(t, "2024-06-10_15-30-00_Recording", Format(stamp, ""))
	// Unsafe characters are replaced
	assert.Equal(t, "2024-06-10_15-30-00_Client_Call_", Format(stamp, "Client Call!"))
}

func TestFormat_RoundTrip(t *testing.T) {
	stamp := time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)
	name := Format(stamp, "Standup") + ".wav"

	p, err := Parse(name)
	require.NoError(t, err)
	assert.Equal(t, stamp, p.Time)
	assert.Equal(t, "Standup", p.Base)
	assert.Equal(t, "wav", p.Ext)
}

func TestExtension(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"audio/wav", "wav"},
		{"audio/webm;codecs=opus", "webm"},
		{"audio/mpeg", "mp3"},
		{"video/mp4", "mp4"},
		{"audio/ogg", "ogg"},
		{"video/quicktime", "mov"},
		{"application/octet-stream", "dat"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Extension(tt.mime), "mime %q", tt.mime)
	}
}
