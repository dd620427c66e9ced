package queue

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soylemapp/soylem-client/internal/client/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE pending_mutations (
  seq     INTEGER PRIMARY KEY AUTOINCREMENT,
  action  TEXT NOT NULL,
  payload BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestEnqueueDrain_FIFOOrder(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, models.PendingMutation{
		Action:  models.MutationAdd,
		Payload: models.MutationPayload{ID: "1", Title: "cat"},
	}))
	require.NoError(t, r.Enqueue(ctx, models.PendingMutation{
		Action:  models.MutationUpdate,
		Payload: models.MutationPayload{ID: "1", Title: "kitten"},
	}))

	got, err := r.Drain(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.MutationAdd, got[0].Action)
	assert.Equal(t, "cat", got[0].Payload.Title)
	assert.Equal(t, models.MutationUpdate, got[1].Action)
	assert.Equal(t, "kitten", got[1].Payload.Title)
}

func TestDrain_DoesNotRemoveItems(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, models.PendingMutation{Action: models.MutationAdd}))

	first, err := r.Drain(ctx)
	require.NoError(t, err)
	second, err := r.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestClear_EmptiesQueue(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, models.PendingMutation{Action: models.MutationAdd}))
	require.NoError(t, r.Clear(ctx))

	got, err := r.Drain(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	// clearing an empty queue is fine
	require.NoError(t, r.Clear(ctx))
}

func TestDrain_EmptyQueueReturnsNil(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	got, err := r.Drain(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
