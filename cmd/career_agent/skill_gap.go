package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-guidance/internal/observability"
	"github.com/jonathan/career-guidance/internal/schemas"
	"github.com/jonathan/career-guidance/internal/types"
)

func newSkillGapCmd() *cobra.Command {
	var (
		catalogPath string
		careerName  string
		skills      []string
		matcher     string
		output      outputFlags
	)

	cmd := &cobra.Command{
		Use:   "skill-gap",
		Short: "Compare a set of skills against one career",
		Long:  "Reports which of a career's required skills are held and which are missing, with the career's learning resources.",
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

			report, err := engine.SkillGap(types.UserProfile{Skills: skills}, catalog.Careers, careerName)
			if err != nil {
				return fmt.Errorf("skill gap for %q: %w", careerName, err)
			}
			return output.write(cmd, report, func(p *observability.Printer) {
				p.PrintSkillGap(report)
			})
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to a career catalog JSON file (defaults to the built-in catalog)")
	cmd.Flags().StringVar(&careerName, "career", "", "Exact career name (required)")
	cmd.Flags().StringSliceVarP(&skills, "skills", "s", nil, "Comma-separated skills the user has")
	cmd.Flags().StringVar(&matcher, "matcher", "substring", "Skill matcher: substring or alias")
	output.register(cmd)

	if err := cmd.MarkFlagRequired("career"); err != nil {
		panic(fmt.Sprintf("failed to mark career flag as required: %v", err))
	}
	return cmd
}
