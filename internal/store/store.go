// ABOUTME: Store interface and data types for voxnote persistence
// ABOUTME: Defines Media, Tag, Todo structs and the MediaStore interface

package store

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// ErrSchemaTooNew is returned when the on-disk schema version is newer than
// this build expects. There is no downgrade path; treat as a configuration error.
var ErrSchemaTooNew = errors.New("database schema is newer than this version supports")

// Media type constants
const (
	MediaTypeAudio = "audio"
	MediaTypeVideo = "video"
)

// maxTagsPerRecord is a soft cap; the store logs but does not reject beyond it.
const maxTagsPerRecord = 100

// Tag is a display label attached to a media record.
// Names are compared case-insensitively; the first creation of a name wins
// its color for aggregation purposes.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SentimentDetails is the per-class breakdown of a sentiment result.
type SentimentDetails struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Sentiment is the overall sentiment of a recording's transcript.
type Sentiment struct {
	Overall    string           `json:"overall"`
	Confidence float64          `json:"confidence"`
	Details    SentimentDetails `json:"details"`
}

// NeutralSentiment returns the placeholder sentiment used until analysis runs.
func NeutralSentiment() Sentiment {
	return Sentiment{
		Overall:    "neutral",
		Confidence: 0,
		Details:    SentimentDetails{Positive: 0, Negative: 0, Neutral: 1},
	}
}

// IsZero reports whether s is the zero value (no sentiment assigned at all).
func (s Sentiment) IsZero() bool {
	return s == Sentiment{}
}

// Media is a captured recording with its metadata. The blob is written once
// at creation and never mutated; updates touch metadata fields only.
type Media struct {
	ID         int64
	Blob       []byte
	Type       string // "audio" or "video"
	Name       string // filename encoding capture date/time, see internal/naming
	CreatedAt  time.Time
	Transcript string
	Summary    string
	Sentiment  Sentiment
	Tags       []Tag
}

// MediaUpdate is a typed partial update for a media record. Nil fields keep
// the stored value. The blob and creation time are deliberately not
// updatable.
type MediaUpdate struct {
	Name       *string
	Type       *string
	Transcript *string
	Summary    *string
	Sentiment  *Sentiment
	Tags       []Tag // nil keeps stored tags; empty non-nil clears them
}

// Todo is a demo task record. It predates media support: schema version 1
// created the todos table before version 2 added media and tags.
type Todo struct {
	ID        int64
	Title     string
	Completed bool
	CreatedAt time.Time
}

// MediaStore defines the persistence operations for recordings and tags
type MediaStore interface {
	// Media
	CreateMedia(ctx context.Context, m *Media) (int64, error)
	GetMedia(ctx context.Context, id int64) (*Media, error)
	GetAllMedia(ctx context.Context) ([]*Media, error)
	UpdateMedia(ctx context.Context, id int64, upd MediaUpdate) (*Media, error)
	DeleteMedia(ctx context.Context, id int64) error
	DeleteMediaBatch(ctx context.Context, ids []int64) error
	ClearMedia(ctx context.Context) error

	// Tags (global aggregation table, first occurrence wins the color)
	ListTags(ctx context.Context) ([]Tag, error)

	// Todos (demo store kept from schema version 1)
	CreateTodo(ctx context.Context, todo *Todo) (int64, error)
	GetTodo(ctx context.Context, id int64) (*Todo, error)
	ListTodos(ctx context.Context) ([]*Todo, error)
	UpdateTodo(ctx context.Context, todo *Todo) error
	DeleteTodo(ctx context.Context, id int64) error
	ClearTodos(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}

// SortByCreatedAtDesc orders media newest-first. The store itself guarantees
// no ordering; this is the presentation-side sort callers are expected to use.
func SortByCreatedAtDesc(media []*Media) {
	sort.SliceStable(media, func(i, j int) bool {
		return media[i].CreatedAt.After(media[j].CreatedAt)
	})
}

// dedupeTags removes duplicate tag names case-insensitively, keeping the
// first occurrence. Order of surviving tags is preserved.
func dedupeTags(tags []Tag) []Tag {
	if len(tags) == 0 {
		return tags
	}
	seen := make(map[string]bool, len(tags))
	out := tags[:0:0]
	for _, t := range tags {
		key := normalizeTagName(t.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
