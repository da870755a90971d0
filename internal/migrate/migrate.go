// Package migrate manages the embedded schema of the self-hosted backend.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/and161185/snapgram/migrations"
)

// withDB opens dsn through the pgx stdlib driver with goose pointed at the
// embedded migrations.
func withDB(ctx context.Context, dsn string, fn func(*sql.DB) error) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return fn(db)
}

// Up applies all pending migrations.
func Up(ctx context.Context, dsn string) error {
	return withDB(ctx, dsn, func(db *sql.DB) error {
		return goose.UpContext(ctx, db, ".")
	})
}

// Status prints applied and pending migrations through goose's logger.
func Status(ctx context.Context, dsn string) error {
	return withDB(ctx, dsn, func(db *sql.DB) error {
		return goose.StatusContext(ctx, db, ".")
	})
}

// Version returns the current schema version.
func Version(ctx context.Context, dsn string) (int64, error) {
	var v int64
	err := withDB(ctx, dsn, func(db *sql.DB) error {
		var err error
		v, err = goose.GetDBVersionContext(ctx, db)
		return err
	})
	return v, err
}

// Files lists the embedded migration files in order.
func Files() ([]string, error) {
	return fs.Glob(migrations.FS, "*.sql")
}
