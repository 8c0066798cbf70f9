package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-guidance/internal/db"
	"github.com/jonathan/career-guidance/internal/logging"
)

func newMigrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  "Creates the users, careers and recommendations tables. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			database, err := connect(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Migrate(cmd.Context()); err != nil {
				return err
			}
			logging.Info().Msg("schema applied")
			fmt.Fprintln(cmd.OutOrStdout(), "✓ schema applied")
			return nil
		},
	}
}

func connect(ctx context.Context, url string) (*db.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return db.Connect(ctx, url)
}
