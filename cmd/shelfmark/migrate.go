package main

import (
	"context"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/shelfmark/shelfmark-go/internal/config"
	"github.com/shelfmark/shelfmark-go/internal/repository"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Apply all pending migrations to the MySQL database named by DATABASE_DSN.
The MongoDB store creates its index on connect and needs no migration.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if err := loadEnvFile(); err != nil {
		return oops.Code("CONFIG_INVALID").With("path", envFile).Wrap(err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.Println("Connecting to database...")
	db, err := repository.NewDB(ctx, config.DatabaseDSN())
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()

	cmd.Println("Running migrations...")
	if err := repository.Migrate(ctx, db); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
