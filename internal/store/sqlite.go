// ABOUTME: SQLite implementation of the MediaStore interface using modernc.org/sqlite
// ABOUTME: Owns versioned schema migration and CRUD for media, tags and todos

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// schemaVersion is the schema this build targets. Versions are tracked in
// PRAGMA user_version and migrations are additive only.
const schemaVersion = 2

// migrations[i] upgrades the schema from version i to version i+1. Each step
// must be an idempotent no-op if the target structures already exist.
var migrations = []string{
	// 0 -> 1: todos with a creation-date index
	`
		CREATE TABLE IF NOT EXISTS todos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_todos_created ON todos(created_at);
	`,
	// 1 -> 2: media with a creation-date index, plus the global tags table
	`
		CREATE TABLE IF NOT EXISTS media (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			blob BLOB NOT NULL,
			type TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			transcript TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			sentiment_overall TEXT NOT NULL DEFAULT 'neutral',
			sentiment_confidence REAL NOT NULL DEFAULT 0,
			sentiment_positive REAL NOT NULL DEFAULT 0,
			sentiment_negative REAL NOT NULL DEFAULT 0,
			sentiment_neutral REAL NOT NULL DEFAULT 1,
			tags_json TEXT NOT NULL DEFAULT '[]',

			CHECK (type IN ('audio', 'video'))
		);

		CREATE INDEX IF NOT EXISTS idx_media_created ON media(created_at);

		CREATE TABLE IF NOT EXISTS tags (
			name TEXT PRIMARY KEY COLLATE NOCASE,
			color TEXT NOT NULL
		);
	`,
}

// SQLiteStore implements the MediaStore interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// Pending schema migrations run automatically on open. Parent directories
// are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// migrate walks the schema from the on-disk version up to schemaVersion.
// Opening a database written by a newer build fails with ErrSchemaTooNew.
func (s *SQLiteStore) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	if version > schemaVersion {
		return fmt.Errorf("%w: on-disk version %d, supported version %d",
			ErrSchemaTooNew, version, schemaVersion)
	}

	for v := version; v < schemaVersion; v++ {
		if _, err := s.db.Exec(migrations[v]); err != nil {
			return fmt.Errorf("migrating schema from version %d to %d: %w", v, v+1, err)
		}
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			return fmt.Errorf("recording schema version %d: %w", v+1, err)
		}
		s.logger.Info("applied migration", "from", v, "to", v+1)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// CreateMedia inserts a new media record and returns the store-assigned ID.
// CreatedAt defaults to now, transcript/summary default to empty strings and
// sentiment defaults to the neutral placeholder when unset. Tags are deduped
// case-insensitively and registered in the global tags table.
func (s *SQLiteStore) CreateMedia(ctx context.Context, m *Media) (int64, error) {
	if m.Type != MediaTypeAudio && m.Type != MediaTypeVideo {
		return 0, fmt.Errorf("invalid media type %q", m.Type)
	}

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	sentiment := m.Sentiment
	if sentiment.IsZero() {
		sentiment = NeutralSentiment()
	}
	tags := dedupeTags(m.Tags)
	if len(tags) > maxTagsPerRecord {
		s.logger.Warn("tag list exceeds soft cap", "count", len(tags), "cap", maxTagsPerRecord)
	}

	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return 0, fmt.Errorf("encoding tags: %w", err)
	}

	query := `
		INSERT INTO media (blob, type, name, created_at, transcript, summary,
			sentiment_overall, sentiment_confidence,
			sentiment_positive, sentiment_negative, sentiment_neutral, tags_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		m.Blob,
		m.Type,
		m.Name,
		createdAt.UTC().Format(time.RFC3339),
		m.Transcript,
		m.Summary,
		sentiment.Overall,
		sentiment.Confidence,
		sentiment.Details.Positive,
		sentiment.Details.Negative,
		sentiment.Details.Neutral,
		string(tagsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting media: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading media id: %w", err)
	}

	if err := s.registerTags(ctx, tags); err != nil {
		return 0, err
	}

	s.logger.Debug("created media", "id", id, "name", m.Name, "type", m.Type, "size", len(m.Blob))
	return id, nil
}

const mediaColumns = `id, blob, type, name, created_at, transcript, summary,
	sentiment_overall, sentiment_confidence,
	sentiment_positive, sentiment_negative, sentiment_neutral, tags_json`

// GetMedia retrieves a media record by ID.
// Returns ErrNotFound if the record doesn't exist.
func (s *SQLiteStore) GetMedia(ctx context.Context, id int64) (*Media, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, id)
	return scanMedia(row)
}

// GetAllMedia returns every media record. The store makes no ordering
// guarantee; use SortByCreatedAtDesc for display.
func (s *SQLiteStore) GetAllMedia(ctx context.Context) ([]*Media, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media`)
	if err != nil {
		return nil, fmt.Errorf("querying media: %w", err)
	}
	defer rows.Close()

	var media []*Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating media rows: %w", err)
	}
	return media, nil
}

// UpdateMedia applies a partial update to an existing record. Nil fields in
// upd keep the stored values; the blob and creation time never change.
// Returns the post-merge record read back from storage.
// Returns ErrNotFound if no record with that ID exists.
func (s *SQLiteStore) UpdateMedia(ctx context.Context, id int64, upd MediaUpdate) (*Media, error) {
	existing, err := s.GetMedia(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	if upd.Name != nil {
		merged.Name = *upd.Name
	}
	if upd.Type != nil {
		if *upd.Type != MediaTypeAudio && *upd.Type != MediaTypeVideo {
			return nil, fmt.Errorf("invalid media type %q", *upd.Type)
		}
		merged.Type = *upd.Type
	}
	if upd.Transcript != nil {
		merged.Transcript = *upd.Transcript
	}
	if upd.Summary != nil {
		merged.Summary = *upd.Summary
	}
	if upd.Sentiment != nil {
		merged.Sentiment = *upd.Sentiment
	}
	if upd.Tags != nil {
		merged.Tags = dedupeTags(upd.Tags)
		if len(merged.Tags) > maxTagsPerRecord {
			s.logger.Warn("tag list exceeds soft cap", "count", len(merged.Tags), "cap", maxTagsPerRecord)
		}
	}

	tagsJSON, err := json.Marshal(merged.Tags)
	if err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}
	if merged.Tags == nil {
		tagsJSON = []byte("[]")
	}

	query := `
		UPDATE media
		SET type = ?, name = ?, transcript = ?, summary = ?,
			sentiment_overall = ?, sentiment_confidence = ?,
			sentiment_positive = ?, sentiment_negative = ?, sentiment_neutral = ?,
			tags_json = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		merged.Type,
		merged.Name,
		merged.Transcript,
		merged.Summary,
		merged.Sentiment.Overall,
		merged.Sentiment.Confidence,
		merged.Sentiment.Details.Positive,
		merged.Sentiment.Details.Negative,
		merged.Sentiment.Details.Neutral,
		string(tagsJSON),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating media: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	if upd.Tags != nil {
		if err := s.registerTags(ctx, merged.Tags); err != nil {
			return nil, err
		}
	}

	// Read back to verify the write landed
	saved, err := s.GetMedia(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("verifying media update: %w", err)
	}

	s.logger.Debug("updated media", "id", id, "name", saved.Name,
		"transcript_len", len(saved.Transcript), "summary_len", len(saved.Summary))
	return saved, nil
}

// DeleteMedia removes a media record. Deleting a missing ID is not an error.
func (s *SQLiteStore) DeleteMedia(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting media: %w", err)
	}
	s.logger.Debug("deleted media", "id", id)
	return nil
}

// DeleteMediaBatch removes multiple media records. The batch is not atomic:
// a failure partway through leaves earlier deletes applied.
func (s *SQLiteStore) DeleteMediaBatch(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if err := s.DeleteMedia(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ClearMedia removes every media record. Destructive; callers are expected
// to have confirmed with the user first.
func (s *SQLiteStore) ClearMedia(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM media`); err != nil {
		return fmt.Errorf("clearing media: %w", err)
	}
	s.logger.Info("cleared all media")
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanMedia
type scanner interface {
	Scan(dest ...any) error
}

func scanMedia(row scanner) (*Media, error) {
	var m Media
	var createdAt, tagsJSON string

	err := row.Scan(
		&m.ID,
		&m.Blob,
		&m.Type,
		&m.Name,
		&createdAt,
		&m.Transcript,
		&m.Summary,
		&m.Sentiment.Overall,
		&m.Sentiment.Confidence,
		&m.Sentiment.Details.Positive,
		&m.Sentiment.Details.Negative,
		&m.Sentiment.Details.Neutral,
		&tagsJSON,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning media row: %w", err)
	}

	m.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	if err := json.Unmarshal([]byte(tagsJSON), &m.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if len(m.Tags) == 0 {
		m.Tags = nil
	}

	return &m, nil
}

// Ensure SQLiteStore implements MediaStore interface
var _ MediaStore = (*SQLiteStore)(nil)
