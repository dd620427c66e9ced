// Package db opens the client's sqlite database, applies migrations and
// wires up the repositories.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/soylemapp/soylem-client/internal/client/migrations"
	"github.com/soylemapp/soylem-client/internal/client/repositories/cards"
	"github.com/soylemapp/soylem-client/internal/client/repositories/metadata"
	"github.com/soylemapp/soylem-client/internal/client/repositories/queue"
)

type Repositories struct {
	Metadata metadata.Repository
	Cards    cards.Repository
	Queue    queue.Repository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Init opens the database at dsn, runs migrations and returns the handle
// together with the repositories bound to it.
func Init(ctx context.Context, dsn string) (*sql.DB, *Repositories, error) {
	d, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := RunMigrations(ctx, d); err != nil {
		_ = d.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	repos := &Repositories{
		Metadata: metadata.NewSQLiteRepository(d),
		Cards:    cards.NewSQLiteRepository(d),
		Queue:    queue.NewSQLiteRepository(d),
	}
	return d, repos, nil
}
