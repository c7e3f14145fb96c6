package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeTags_CaseInsensitive(t *testing.T) {
	tags := dedupeTags([]Tag{
		{Name: "Meeting", Color: "#1976d2"},
		{Name: "meeting", Color: "#f44336"},
		{Name: "Urgent", Color: "#ff9800"},
		{Name: "MEETING", Color: "#4caf50"},
	})

	require.Len(t, tags, 2)
	assert.Equal(t, "Meeting", tags[0].Name)
	assert.Equal(t, "#1976d2", tags[0].Color, "first occurrence wins")
	assert.Equal(t, "Urgent", tags[1].Name)
}

func TestStore_ListTags_FirstColorWins(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.CreateMedia(ctx, &Media{
		Blob: []byte("x"), Type: MediaTypeAudio, Name: "a",
		Tags: []Tag{{Name: "Feedback", Color: "#4caf50"}},
	})
	require.NoError(t, err)

	// Same name, different case and color, on a later record
	_, err = store.CreateMedia(ctx, &Media{
		Blob: []byte("x"), Type: MediaTypeAudio, Name: "b",
		Tags: []Tag{{Name: "feedback", Color: "#f44336"}, {Name: "Urgent", Color: "#ff9800"}},
	})
	require.NoError(t, err)

	tags, err := store.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	byName := make(map[string]string)
	for _, tag := range tags {
		byName[normalizeTagName(tag.Name)] = tag.Color
	}
	assert.Equal(t, "#4caf50", byName["feedback"], "first registration keeps its color")
	assert.Equal(t, "#ff9800", byName["urgent"])
}

func TestStore_CreateMedia_DedupesRecordTags(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.CreateMedia(ctx, &Media{
		Blob: []byte("x"), Type: MediaTypeAudio, Name: "a",
		Tags: []Tag{
			{Name: "Client Call", Color: "#9c27b0"},
			{Name: "client call", Color: "#000000"},
		},
	})
	require.NoError(t, err)

	m, err := store.GetMedia(ctx, id)
	require.NoError(t, err)
	require.Len(t, m.Tags, 1)
	assert.Equal(t, "Client Call", m.Tags[0].Name)
}
