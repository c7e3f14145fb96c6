// ABOUTME: Todo CRUD for the demo todo list that predates media support
// ABOUTME: Kept because schema version 1 is defined by this table

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateTodo inserts a todo and returns the store-assigned ID.
func (s *SQLiteStore) CreateTodo(ctx context.Context, todo *Todo) (int64, error) {
	createdAt := todo.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (title, completed, created_at) VALUES (?, ?, ?)`,
		todo.Title, todo.Completed, createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting todo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading todo id: %w", err)
	}
	return id, nil
}

// GetTodo retrieves a todo by ID.
// Returns ErrNotFound if the todo doesn't exist.
func (s *SQLiteStore) GetTodo(ctx context.Context, id int64) (*Todo, error) {
	var t Todo
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, completed, created_at FROM todos WHERE id = ?`, id,
	).Scan(&t.ID, &t.Title, &t.Completed, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying todo: %w", err)
	}

	t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &t, nil
}

// ListTodos returns all todos ordered by creation date.
func (s *SQLiteStore) ListTodos(ctx context.Context) ([]*Todo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, completed, created_at FROM todos ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer rows.Close()

	var todos []*Todo
	for rows.Next() {
		var t Todo
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning todo row: %w", err)
		}
		t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		todos = append(todos, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating todo rows: %w", err)
	}
	return todos, nil
}

// UpdateTodo updates a todo's title and completion state.
// Returns ErrNotFound if the todo doesn't exist.
func (s *SQLiteStore) UpdateTodo(ctx context.Context, todo *Todo) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE todos SET title = ?, completed = ? WHERE id = ?`,
		todo.Title, todo.Completed, todo.ID,
	)
	if err != nil {
		return fmt.Errorf("updating todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTodo removes a todo. Deleting a missing ID is not an error.
func (s *SQLiteStore) DeleteTodo(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	return nil
}

// ClearTodos removes every todo.
func (s *SQLiteStore) ClearTodos(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM todos`); err != nil {
		return fmt.Errorf("clearing todos: %w", err)
	}
	return nil
}

// SeedTodos inserts starter todos, but only when the table is empty.
func (s *SQLiteStore) SeedTodos(ctx context.Context, titles []string) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`).Scan(&count); err != nil {
		return fmt.Errorf("counting todos: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, title := range titles {
		if _, err := s.CreateTodo(ctx, &Todo{Title: title}); err != nil {
			return err
		}
	}
	return nil
}
