package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-guidance/internal/observability"
	"github.com/jonathan/career-guidance/internal/schemas"
)

func newCatalogCmd() *cobra.Command {
	var (
		catalogPath string
		output      outputFlags
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate and print a career catalog",
		Long: "Checks a catalog file against the catalog JSON Schema and for duplicate career names, " +
			"then prints it. Without --catalog the built-in catalog is printed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := output.validate(); err != nil {
				return err
			}
			catalog, err := schemas.LoadCatalog(catalogPath)
			if err != nil {
				return fmt.Errorf("invalid catalog: %w", err)
			}
			return output.write(cmd, catalog, func(p *observability.Printer) {
				p.PrintCatalog(catalog.Careers)
			})
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to a career catalog JSON file (defaults to the built-in catalog)")
	output.register(cmd)
	return cmd
}
