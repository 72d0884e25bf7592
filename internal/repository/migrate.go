package repository

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/shelfmark/shelfmark-go/internal/repository/migrations"
)

// gooseUp is a seam for testing goose.UpContext.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded MySQL migrations to db.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("mysql"); err != nil {
		return err
	}
	return gooseUp(ctx, db, ".")
}
