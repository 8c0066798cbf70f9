package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-guidance/internal/observability"
	"github.com/jonathan/career-guidance/internal/schemas"
	"github.com/jonathan/career-guidance/internal/types"
)

func newRecommendCmd() *cobra.Command {
	var (
		catalogPath string
		skills      []string
		interests   []string
		matcher     string
		output      outputFlags
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend careers for a set of skills and interests",
		Long: "Scores every career in a catalog file (or the built-in catalog) against the given skills " +
			"and interests without a database, and prints the top careers, the missing skills and a learning path.",
		Example: `  career_agent recommend --skills JavaScript,React --interests technology
  career_agent recommend --catalog catalog.json --skills Python --format text`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := output.validate(); err != nil {
				return err
			}
			engine, err := engineFor(matcher)
			if err != nil {
				return err
			}
			catalog, err := schemas.LoadCatalog(catalogPath)
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}

			rec, err := engine.Recommend(types.UserProfile{Skills: skills, Interests: interests}, catalog.Careers)
			if err != nil {
				return fmt.Errorf("failed to recommend careers: %w", err)
			}
			return output.write(cmd, rec, func(p *observability.Printer) {
				p.PrintRecommendation(rec)
			})
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to a career catalog JSON file (defaults to the built-in catalog)")
	cmd.Flags().StringSliceVarP(&skills, "skills", "s", nil, "Comma-separated skills the user has")
	cmd.Flags().StringSliceVarP(&interests, "interests", "i", nil, "Comma-separated interests")
	cmd.Flags().StringVar(&matcher, "matcher", "substring", "Skill matcher: substring or alias")
	output.register(cmd)
	return cmd
}
