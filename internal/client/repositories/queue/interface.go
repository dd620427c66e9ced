// Package queue is the durable FIFO queue of mutations recorded while the
// device is offline.
//
// The caller contract (see the app watcher): on transition to online, Drain
// the queue, replay every item in order through the normal mutation APIs,
// and Clear only after the whole batch has been attempted. Failed items are
// logged and skipped, not requeued; a stricter design would requeue only
// the failures, but eventual delivery is not a product requirement here.
package queue

import (
	"context"

	"github.com/soylemapp/soylem-client/internal/client/models"
)

type Repository interface {
	// Enqueue appends m to the queue.
	Enqueue(ctx context.Context, m models.PendingMutation) error
	// Drain returns the pending mutations in enqueue order without
	// removing them.
	Drain(ctx context.Context) ([]models.PendingMutation, error)
	// Clear empties the queue unconditionally.
	Clear(ctx context.Context) error
}
