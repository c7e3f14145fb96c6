// ABOUTME: Global tag registry operations for the SQLite store
// ABOUTME: Tag names are case-insensitive and the first creation wins the color

package store

import (
	"context"
	"fmt"
	"strings"
)

// normalizeTagName is the single comparison policy for tag names. The
// source behavior mixed exact and lower-cased comparison across call sites;
// here everything goes through case-insensitive folding.
func normalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// registerTags upserts tags into the global registry. INSERT OR IGNORE with
// the NOCASE primary key means the first occurrence of a name keeps its
// color for display aggregation.
func (s *SQLiteStore) registerTags(ctx context.Context, tags []Tag) error {
	for _, t := range tags {
		if strings.TrimSpace(t.Name) == "" {
			continue
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO tags (name, color) VALUES (?, ?)`,
			t.Name, t.Color,
		)
		if err != nil {
			return fmt.Errorf("registering tag %q: %w", t.Name, err)
		}
	}
	return nil
}

// ListTags returns every tag ever attached to a record, ordered by name.
func (s *SQLiteStore) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, color FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.Name, &t.Color); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tag rows: %w", err)
	}
	return tags, nil
}
