// Package cards persists the locally hydrated global card records, one raw
// JSON document per card id.
package cards

import "context"

type Repository interface {
	// Upsert stores doc as the current record for id.
	Upsert(ctx context.Context, id string, doc []byte) error
	// Delete removes the record for id. Deleting an absent id is a no-op:
	// no tombstone is kept.
	Delete(ctx context.Context, id string) error
	// List returns all stored records keyed by card id.
	List(ctx context.Context) (map[string][]byte, error)
}
