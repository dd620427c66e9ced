package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soylemapp/soylem-client/internal/client/models"
	"github.com/soylemapp/soylem-client/internal/dbx"
)

// SQLiteRepository implements Repository. FIFO order is the autoincrement
// sequence column, so an append never rewrites earlier items.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, m models.PendingMutation) error {
	payload, err := json.Marshal(m.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mutation payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO pending_mutations (action, payload) VALUES (?, ?)`,
		m.Action, payload)
	if err != nil {
		return fmt.Errorf("failed to enqueue mutation: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Drain(ctx context.Context) ([]models.PendingMutation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT action, payload FROM pending_mutations ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending mutations: %w", err)
	}
	defer rows.Close()

	var result []models.PendingMutation
	for rows.Next() {
		var m models.PendingMutation
		var payload []byte
		if err := rows.Scan(&m.Action, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan mutation row: %w", err)
		}
		if err := json.Unmarshal(payload, &m.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mutation payload: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mutation rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_mutations`)
	if err != nil {
		return fmt.Errorf("failed to clear pending mutations: %w", err)
	}
	return nil
}
