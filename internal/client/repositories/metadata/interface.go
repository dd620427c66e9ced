// Package metadata is a generic key-value store over the client database.
// It holds the sync checkpoint scalars, the auth tokens, the raw response
// caches and the override map blob, each under its own key.
package metadata

import "context"

type Repository interface {
	// Get returns the value for key, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
