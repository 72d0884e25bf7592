package main

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var envFile string

// NewRootCmd creates the root command for the shelfmark CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shelfmark",
		Short: "shelfmark - user accounts and favourites API",
		Long: `shelfmark serves user registration, token login and a per-user
list of favourite items over HTTP.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadEnvFile loads the dotenv file if it exists. Variables already set in
// the environment win.
func loadEnvFile() error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("no .env file found, using environment variables", "path", envFile)
			return nil
		}
		return err
	}
	return nil
}
