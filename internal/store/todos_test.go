package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_TodoCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.CreateTodo(ctx, &Todo{Title: "record standup notes"})
	require.NoError(t, err)

	todo, err := store.GetTodo(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "record standup notes", todo.Title)
	assert.False(t, todo.Completed)

	todo.Completed = true
	require.NoError(t, store.UpdateTodo(ctx, todo))

	todo, err = store.GetTodo(ctx, id)
	require.NoError(t, err)
	assert.True(t, todo.Completed)

	require.NoError(t, store.DeleteTodo(ctx, id))
	_, err = store.GetTodo(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	// Idempotent delete
	assert.NoError(t, store.DeleteTodo(ctx, id))
}

func TestStore_UpdateTodo_NotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.UpdateTodo(context.Background(), &Todo{ID: 999, Title: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SeedTodos_OnlyWhenEmpty(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedTodos(ctx, []string{"one", "two"}))

	todos, err := store.ListTodos(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 2)

	// Second seed is a no-op
	require.NoError(t, store.SeedTodos(ctx, []string{"three"}))
	todos, err = store.ListTodos(ctx)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}
