// Package overrides keeps the per-card local asset substitutions: an image
// and/or audio path recorded on the device and merged over the server
// record at read time. The map lives in memory and is written through to
// the metadata store as a single JSON document on every change.
package overrides

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/soylemapp/soylem-client/internal/client/models"
	"github.com/soylemapp/soylem-client/internal/client/repositories/metadata"
)

// Store is safe for concurrent use, but two concurrent writes to the same
// card id are last-write-wins: each setter read-modify-writes the whole
// map. In practice these are user-initiated edits serialized by the UI.
type Store struct {
	meta metadata.Repository

	mu    sync.RWMutex
	cache map[string]models.OverrideEntry
}

func NewStore(meta metadata.Repository) *Store {
	return &Store{meta: meta, cache: make(map[string]models.OverrideEntry)}
}

// Load refreshes the in-memory mirror from durable storage. Call once at
// startup before the first read.
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.meta.Get(ctx, metadata.KeyLocalAssets)
	if err != nil {
		return err
	}

	m := make(map[string]models.OverrideEntry)
	if raw != nil {
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("failed to unmarshal override map: %w", err)
		}
	}

	s.mu.Lock()
	s.cache = m
	s.mu.Unlock()
	return nil
}

// SetImage records a local image override for cardID. A nil uri clears the
// field; when both fields become empty the entry is pruned entirely.
func (s *Store) SetImage(ctx context.Context, cardID string, uri *string) error {
	return s.set(ctx, cardID, func(e *models.OverrideEntry) {
		if uri == nil {
			e.Image = ""
		} else {
			e.Image = *uri
		}
	})
}

// SetAudio records a local audio override for cardID, with the same nil
// semantics as SetImage.
func (s *Store) SetAudio(ctx context.Context, cardID string, uri *string) error {
	return s.set(ctx, cardID, func(e *models.OverrideEntry) {
		if uri == nil {
			e.Audio = ""
		} else {
			e.Audio = *uri
		}
	})
}

func (s *Store) set(ctx context.Context, cardID string, apply func(*models.OverrideEntry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.cache[cardID]
	apply(&entry)

	if entry.Empty() {
		delete(s.cache, cardID)
	} else {
		s.cache[cardID] = entry
	}

	raw, err := json.Marshal(s.cache)
	if err != nil {
		return fmt.Errorf("failed to marshal override map: %w", err)
	}
	return s.meta.Set(ctx, metadata.KeyLocalAssets, raw)
}

// Map returns a copy of the current override map.
func (s *Store) Map() map[string]models.OverrideEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.OverrideEntry, len(s.cache))
	for k, v := range s.cache {
		out[k] = v
	}
	return out
}

// Get returns the override entry for cardID, or nil when none exists.
func (s *Store) Get(cardID string) *models.OverrideEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.cache[cardID]; ok {
		return &e
	}
	return nil
}

// MergeAll applies the current overrides to a card list, returning a new
// slice. Input cards are never mutated.
func (s *Store) MergeAll(cards []models.Card) []models.Card {
	out := make([]models.Card, len(cards))
	for i, c := range cards {
		out[i] = models.Merge(c, s.Get(c.ID))
	}
	return out
}
