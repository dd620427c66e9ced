// Package app wires the client together: database, API client, connectivity
// watcher, sync engine, offline queue replay and the override store.
package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/soylemapp/soylem-client/internal/client/api"
	"github.com/soylemapp/soylem-client/internal/client/config"
	clientdb "github.com/soylemapp/soylem-client/internal/client/db"
	"github.com/soylemapp/soylem-client/internal/client/models"
	"github.com/soylemapp/soylem-client/internal/client/netx"
	"github.com/soylemapp/soylem-client/internal/client/overrides"
	"github.com/soylemapp/soylem-client/internal/client/preload"
	"github.com/soylemapp/soylem-client/internal/client/services"
	"github.com/soylemapp/soylem-client/internal/filex"
	"github.com/soylemapp/soylem-client/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	cfg *config.Config
	log logging.Logger

	db        *sql.DB
	repos     *clientdb.Repositories
	checker   netx.Checker
	watcher   *netx.Watcher
	overrides *overrides.Store
	assetDir  string

	Auth  *services.AuthService
	Cards *services.CardService
	Sync  *services.SyncService
}

func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, repos, err := clientdb.Init(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	assetDir, err := filex.EnsureDir(cfg.AssetDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// The manifest endpoint doubles as the reachability probe: it is cheap,
	// unauthenticated and exercises the same route the sync engine uses.
	checker := netx.NewProbeChecker(cfg.ServerBaseURL+"/api/global/cards/manifest", nil)

	apiClient := api.NewClient(cfg.ServerBaseURL, repos.Metadata, checker, log,
		api.WithHTTPClient(httpClient))

	preloader := preload.New(cfg.ServerBaseURL, httpClient, assetDir, log)

	a := &App{
		cfg:       cfg,
		log:       log,
		db:        db,
		repos:     repos,
		checker:   checker,
		watcher:   netx.NewWatcher(checker, cfg.OnlineCheckInterval, log),
		overrides: overrides.NewStore(repos.Metadata),
		assetDir:  assetDir,
		Auth:      services.NewAuthService(apiClient, repos.Metadata, log),
		Cards:     services.NewCardService(apiClient, repos.Queue, checker, log),
		Sync:      services.NewSyncService(apiClient, db, preloader, log),
	}

	if err := a.overrides.Load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// Run drives the background loops until ctx is cancelled: the connectivity
// watcher (replaying the offline queue and resyncing when the backend comes
// back) and the periodic catalog sync.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.Auth.EnsureFresh(ctx); err != nil {
		a.log.Warn(ctx, "session refresh at startup failed", "error", err)
	}

	if _, err := a.Sync.Sync(ctx); err != nil {
		a.log.Warn(ctx, "initial sync failed", "error", err)
	}

	go a.watcher.Run(ctx, func(ctx context.Context, online bool) {
		if !online {
			return
		}
		if err := a.Cards.Replay(ctx); err != nil {
			a.log.Warn(ctx, "queue replay failed", "error", err)
		}
		if _, err := a.Sync.Sync(ctx); err != nil {
			a.log.Warn(ctx, "sync after reconnect failed", "error", err)
		}
	})

	ticker := time.NewTicker(a.cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := a.Sync.Sync(ctx); err != nil {
				a.log.Warn(ctx, "periodic sync failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Catalog returns the current local snapshot with the user's local overrides
// applied on top.
func (a *App) Catalog(ctx context.Context) ([]models.Card, error) {
	snapshot, err := a.Sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return a.overrides.MergeAll(snapshot), nil
}

// OverrideImage promotes a user-picked image file into the asset directory
// and records it as the local image for the card. A nil path clears the
// override.
func (a *App) OverrideImage(ctx context.Context, cardID string, srcPath *string) error {
	if srcPath == nil {
		return a.overrides.SetImage(ctx, cardID, nil)
	}
	dst, err := filex.CopyInto(*srcPath, a.assetDir)
	if err != nil {
		return err
	}
	return a.overrides.SetImage(ctx, cardID, &dst)
}

// OverrideAudio promotes a user recording into the asset directory and
// records it as the local audio for the card. A nil path clears the override.
func (a *App) OverrideAudio(ctx context.Context, cardID string, srcPath *string) error {
	if srcPath == nil {
		return a.overrides.SetAudio(ctx, cardID, nil)
	}
	dst, err := filex.CopyInto(*srcPath, a.assetDir)
	if err != nil {
		return err
	}
	return a.overrides.SetAudio(ctx, cardID, &dst)
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
