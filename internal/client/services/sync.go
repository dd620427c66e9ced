// Package services contains the application services of the client: the
// manifest sync engine, personal card operations with offline queueing, and
// auth token upkeep.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/soylemapp/soylem-client/internal/client/models"
	"github.com/soylemapp/soylem-client/internal/client/repositories/cards"
	"github.com/soylemapp/soylem-client/internal/client/repositories/metadata"
	"github.com/soylemapp/soylem-client/internal/dbx"
	"github.com/soylemapp/soylem-client/internal/logging"
)

// CatalogAPI is the slice of the API client the sync engine needs.
type CatalogAPI interface {
	Manifest(ctx context.Context) (*models.Manifest, error)
	Changes(ctx context.Context, since string) ([]models.Change, error)
	CardByID(ctx context.Context, id string) (*models.Card, error)
}

// Preloader prefetches card images; failures must never surface.
type Preloader interface {
	Preload(ctx context.Context, cards []models.Card)
}

// SyncService reconciles the local catalog snapshot with the server using
// the manifest/changes protocol. Sync is idempotent and safe to call on
// every app foreground.
type SyncService struct {
	api       CatalogAPI
	db        *sql.DB
	cards     cards.Repository
	meta      metadata.Repository
	preloader Preloader
	log       logging.Logger
	now       func() time.Time
}

func NewSyncService(api CatalogAPI, db *sql.DB, preloader Preloader, log logging.Logger) *SyncService {
	return &SyncService{
		api:       api,
		db:        db,
		cards:     cards.NewSQLiteRepository(db),
		meta:      metadata.NewSQLiteRepository(db),
		preloader: preloader,
		log:       log,
		now:       time.Now,
	}
}

// Sync brings the local snapshot up to the server's manifest version and
// returns the materialized snapshot.
//
// Failure anywhere before the checkpoint commit leaves the previous
// checkpoint intact, so the next attempt retries the same change window.
func (s *SyncService) Sync(ctx context.Context) ([]models.Card, error) {
	m, err := s.api.Manifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}

	local := s.checkpointVersion(ctx)
	if m.Version == local {
		// no changes: serve the local snapshot without further fetches
		return s.Snapshot(ctx)
	}

	since := s.lastSyncTimestamp(ctx)
	changes, err := s.api.Changes(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch changes: %w", err)
	}

	// Change records are applied strictly in server order, never grouped
	// by action: a delete followed by a re-add of the same id must land in
	// that order.
	var updated []models.Card
	for _, ch := range changes {
		switch ch.Action {
		case models.ChangeAdd, models.ChangeUpdate:
			card, err := s.api.CardByID(ctx, ch.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to hydrate card %s: %w", ch.ID, err)
			}
			doc, err := json.Marshal(card)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal card %s: %w", ch.ID, err)
			}
			if err := s.cards.Upsert(ctx, card.ID, doc); err != nil {
				return nil, err
			}
			updated = append(updated, *card)
		case models.ChangeDelete:
			if err := s.cards.Delete(ctx, ch.ID); err != nil {
				return nil, err
			}
		default:
			s.log.Warn(ctx, "skipping unknown change action", "action", ch.Action, "id", ch.ID)
		}
	}

	// Version and timestamp move together or not at all.
	ts := s.now().UTC().Format(time.RFC3339)
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := metadata.NewSQLiteRepository(tx)
		if err := r.Set(ctx, metadata.KeyManifestVersion, []byte(strconv.FormatInt(m.Version, 10))); err != nil {
			return err
		}
		return r.Set(ctx, metadata.KeyLastSync, []byte(ts))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit checkpoint: %w", err)
	}

	s.log.Info(ctx, "catalog synced", "version", m.Version, "changes", len(changes), "updated", len(updated))

	if len(updated) > 0 && s.preloader != nil {
		s.preloader.Preload(ctx, updated)
	}

	return s.Snapshot(ctx)
}

// Snapshot materializes the full local card set. Records missing a
// thumbnail get one derived from the image location by convention.
func (s *SyncService) Snapshot(ctx context.Context) ([]models.Card, error) {
	docs, err := s.cards.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.Card, 0, len(docs))
	for id, doc := range docs {
		var c models.Card
		if err := json.Unmarshal(doc, &c); err != nil {
			s.log.Warn(ctx, "skipping unparseable card record", "id", id, "error", err)
			continue
		}
		if c.ThumbnailURI == "" {
			c.ThumbnailURI = models.DeriveThumbnail(c.ImageURI)
		}
		result = append(result, c)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// checkpointVersion reads the last-applied manifest version, defaulting to
// zero when absent or unparseable so a damaged checkpoint forces a full
// resync.
func (s *SyncService) checkpointVersion(ctx context.Context) int64 {
	raw, err := s.meta.Get(ctx, metadata.KeyManifestVersion)
	if err != nil || raw == nil {
		return 0
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// lastSyncTimestamp returns the stored last-sync timestamp, or the empty
// string when never synced (the server treats that as "all records").
func (s *SyncService) lastSyncTimestamp(ctx context.Context) string {
	raw, err := s.meta.Get(ctx, metadata.KeyLastSync)
	if err != nil || raw == nil {
		return ""
	}
	return string(raw)
}
