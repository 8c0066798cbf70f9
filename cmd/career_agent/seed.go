package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-guidance/internal/logging"
	"github.com/jonathan/career-guidance/internal/schemas"
)

func newSeedCmd(load configLoader) *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the career catalog in the database",
		Long: "Validates a catalog file (or the built-in catalog when --catalog is omitted), " +
			"applies the schema and atomically replaces every stored career with it.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Validate before touching the database
			catalog, err := schemas.LoadCatalog(catalogPath)
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}

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
			if err := database.ReplaceCatalog(cmd.Context(), catalog.Careers); err != nil {
				return err
			}

			logging.Info().Int("careers", len(catalog.Careers)).Msg("catalog seeded")
			fmt.Fprintf(cmd.OutOrStdout(), "✓ seeded %d careers\n", len(catalog.Careers))
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to a career catalog JSON file (defaults to the built-in catalog)")
	return cmd
}
